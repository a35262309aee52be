package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"jobsift-utils/internal/config"
	"jobsift-utils/internal/logging"
	"jobsift-utils/internal/logging/types"
	"jobsift-utils/pkg/models"
	"jobsift-utils/pkg/utils"
)

// OpenAIProvider implements the completion provider interface against the
// OpenAI chat completions API. The base URL is configurable so compatible
// endpoints (or stubs in tests) can stand in for the real service.
type OpenAIProvider struct {
	config *config.Config
	client *http.Client
	logger types.Logger
}

// NewOpenAIProvider creates a new OpenAI provider instance
func NewOpenAIProvider(cfg *config.Config) *OpenAIProvider {
	return &OpenAIProvider{
		config: cfg,
		client: &http.Client{
			Timeout: cfg.LLM.Timeout,
		},
		logger: logging.GetGlobalLogger(),
	}
}

// Request/response shapes for the chat completions endpoint

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature *float32        `json:"temperature,omitempty"`
}

type openAIChoice struct {
	Index        int           `json:"index"`
	Message      openAIMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type openAIUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type openAIErrorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    any    `json:"code"`
}

type openAIChatResponse struct {
	ID      string           `json:"id"`
	Model   string           `json:"model"`
	Choices []openAIChoice   `json:"choices"`
	Usage   openAIUsage      `json:"usage"`
	Error   *openAIErrorBody `json:"error,omitempty"`
}

// Complete runs a chat completion against the configured endpoint
func (op *OpenAIProvider) Complete(ctx context.Context, req *models.ChatCompletionRequest) (*models.ChatCompletionResponse, error) {
	payload := openAIChatRequest{
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Messages:    make([]openAIMessage, 0, len(req.Messages)),
	}
	for _, msg := range req.Messages {
		payload.Messages = append(payload.Messages, openAIMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode completion request: %w", err)
	}

	endpoint := strings.TrimRight(op.config.LLM.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to build completion request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+op.config.LLM.APIKey)

	resp, err := op.client.Do(httpReq)
	if err != nil {
		return nil, utils.NewServiceUnavailableError(fmt.Sprintf("completion request failed: %v", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, utils.NewServiceUnavailableError(fmt.Sprintf("reading completion response: %v", err))
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, utils.NewRateLimitedError(upstreamErrorDetail(respBody))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		op.logger.Warn("Completion endpoint returned an error", map[string]interface{}{
			"status_code": resp.StatusCode,
			"provider":    op.GetProviderName(),
		})
		return nil, utils.NewServiceUnavailableError(fmt.Sprintf("completion endpoint returned status %d: %s", resp.StatusCode, upstreamErrorDetail(respBody)))
	}

	var parsed openAIChatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, utils.NewServiceUnavailableError(fmt.Sprintf("decoding completion response: %v", err))
	}
	if parsed.Error != nil {
		return nil, utils.NewServiceUnavailableError(parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return nil, utils.NewServiceUnavailableError("completion response contained no choices")
	}

	model := parsed.Model
	if model == "" {
		model = req.Model
	}

	return &models.ChatCompletionResponse{
		Message: parsed.Choices[0].Message.Content,
		Model:   model,
		Usage: models.Usage{
			PromptTokens:     parsed.Usage.PromptTokens,
			CompletionTokens: parsed.Usage.CompletionTokens,
			TotalTokens:      parsed.Usage.TotalTokens,
		},
	}, nil
}

// IsHealthy checks the provider by listing models, the cheapest
// authenticated call the API offers
func (op *OpenAIProvider) IsHealthy(ctx context.Context) error {
	if op.config.LLM.APIKey == "" {
		return fmt.Errorf("API key not configured, set LLM_API_KEY environment variable")
	}

	endpoint := strings.TrimRight(op.config.LLM.BaseURL, "/") + "/models"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build health check request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+op.config.LLM.APIKey)

	resp, err := op.client.Do(req)
	if err != nil {
		return fmt.Errorf("health check request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}
	return nil
}

// GetProviderName returns the name of the provider
func (op *OpenAIProvider) GetProviderName() string {
	return "openai"
}

// upstreamErrorDetail pulls the error message out of an API error body,
// falling back to a trimmed copy of the raw payload
func upstreamErrorDetail(body []byte) string {
	var wrapper struct {
		Error *openAIErrorBody `json:"error"`
	}
	if err := json.Unmarshal(body, &wrapper); err == nil && wrapper.Error != nil && wrapper.Error.Message != "" {
		return wrapper.Error.Message
	}
	detail := strings.TrimSpace(string(body))
	if len(detail) > 200 {
		detail = detail[:200] + "..."
	}
	return detail
}
