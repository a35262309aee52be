package models

// Defaults applied to chat completion requests when the caller omits a field
const (
	DefaultChatMaxTokens   = 150
	DefaultChatTemperature = float32(0.7)
)

// ChatMessage is a single turn in a chat completion conversation
type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant system"`
	Content string `json:"content" validate:"required"`
}

// ChatCompletionRequest represents the request payload for the chat
// completion passthrough. Model defaults to the configured model,
// max_tokens to 150 and temperature to 0.7 when omitted.
type ChatCompletionRequest struct {
	Messages    []ChatMessage `json:"messages" validate:"required,min=1,dive"`
	Model       string        `json:"model,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty" validate:"omitempty,gt=0"`
	Temperature *float32      `json:"temperature,omitempty" validate:"omitempty,gte=0,lte=2"`
}

// ApplyDefaults fills omitted tuning fields with the documented defaults.
// The model default comes from configuration, so the caller passes it in.
func (r *ChatCompletionRequest) ApplyDefaults(defaultModel string) {
	if r.Model == "" {
		r.Model = defaultModel
	}
	if r.MaxTokens == 0 {
		r.MaxTokens = DefaultChatMaxTokens
	}
	if r.Temperature == nil {
		temp := DefaultChatTemperature
		r.Temperature = &temp
	}
}

// Usage mirrors the completion service's token accounting
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatCompletionResponse represents the chat completion passthrough response
type ChatCompletionResponse struct {
	Message string `json:"message"`
	Model   string `json:"model"`
	Usage   Usage  `json:"usage"`
}
