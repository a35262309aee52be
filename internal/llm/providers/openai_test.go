package providers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"jobsift-utils/internal/config"
	"jobsift-utils/internal/llm/providers"
	"jobsift-utils/pkg/models"
	"jobsift-utils/pkg/utils"
)

func providerConfig(baseURL string) *config.Config {
	cfg := &config.Config{}
	cfg.LLM.Provider = "openai"
	cfg.LLM.APIKey = "test-key"
	cfg.LLM.BaseURL = baseURL
	cfg.LLM.Model = "gpt-4o-mini"
	cfg.LLM.MaxTokens = 256
	cfg.LLM.Timeout = 5 * time.Second
	return cfg
}

func chatRequest() *models.ChatCompletionRequest {
	temp := float32(0.7)
	return &models.ChatCompletionRequest{
		Model:       "gpt-4o-mini",
		MaxTokens:   150,
		Temperature: &temp,
		Messages: []models.ChatMessage{
			{Role: "user", Content: "Say hello"},
		},
	}
}

func TestCompleteReturnsAssistantMessage(t *testing.T) {
	var gotAuth string
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":    "chatcmpl-123",
			"model": "gpt-4o-mini-2024",
			"choices": []map[string]interface{}{
				{"index": 0, "message": map[string]string{"role": "assistant", "content": "Hello there"}, "finish_reason": "stop"},
			},
			"usage": map[string]int{"prompt_tokens": 9, "completion_tokens": 3, "total_tokens": 12},
		})
	}))
	defer server.Close()

	provider := providers.NewOpenAIProvider(providerConfig(server.URL))

	resp, err := provider.Complete(context.Background(), chatRequest())
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}

	if resp.Message != "Hello there" {
		t.Errorf("message = %q, want %q", resp.Message, "Hello there")
	}
	if resp.Model != "gpt-4o-mini-2024" {
		t.Errorf("model = %q, want upstream model name", resp.Model)
	}
	if resp.Usage.PromptTokens != 9 || resp.Usage.CompletionTokens != 3 || resp.Usage.TotalTokens != 12 {
		t.Errorf("usage = %+v, want 9/3/12", resp.Usage)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("authorization header = %q", gotAuth)
	}
	if gotBody["model"] != "gpt-4o-mini" {
		t.Errorf("request model = %v", gotBody["model"])
	}
	if _, hasTemp := gotBody["temperature"]; !hasTemp {
		t.Error("request body missing temperature")
	}
}

func TestCompleteUpstreamFailuresMapToServiceUnavailable(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode int
	}{
		{"rate limited", http.StatusTooManyRequests, `{"error":{"message":"slow down"}}`, http.StatusServiceUnavailable},
		{"server error", http.StatusInternalServerError, `{"error":{"message":"boom"}}`, http.StatusServiceUnavailable},
		{"bad auth", http.StatusUnauthorized, `{"error":{"message":"bad key"}}`, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			provider := providers.NewOpenAIProvider(providerConfig(server.URL))

			_, err := provider.Complete(context.Background(), chatRequest())
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			customErr, ok := utils.AsCustomError(err)
			if !ok {
				t.Fatalf("error is %T, want *CustomError", err)
			}
			if customErr.Code != tt.wantCode {
				t.Errorf("error code = %d, want %d", customErr.Code, tt.wantCode)
			}
		})
	}
}

func TestCompleteEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
	}))
	defer server.Close()

	provider := providers.NewOpenAIProvider(providerConfig(server.URL))

	if _, err := provider.Complete(context.Background(), chatRequest()); err == nil {
		t.Fatal("expected error for empty choices, got nil")
	}
}

func TestIsHealthy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/models" {
			w.Write([]byte(`{"data":[]}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	provider := providers.NewOpenAIProvider(providerConfig(server.URL))
	if err := provider.IsHealthy(context.Background()); err != nil {
		t.Errorf("IsHealthy returned error against healthy endpoint: %v", err)
	}

	cfgNoKey := providerConfig(server.URL)
	cfgNoKey.LLM.APIKey = ""
	missingKey := providers.NewOpenAIProvider(cfgNoKey)
	if err := missingKey.IsHealthy(context.Background()); err == nil {
		t.Error("IsHealthy must fail without an API key")
	}
}
