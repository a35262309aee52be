package models_test

import (
	"testing"

	"jobsift-utils/pkg/models"
)

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    models.OutputFormat
		wantErr bool
	}{
		{"structured", models.OutputFormatStructured, false},
		{"raw", models.OutputFormatRaw, false},
		{"", models.OutputFormatStructured, false},
		{"markdown", "", true},
		{"STRUCTURED", "", true},
	}

	for _, tt := range tests {
		got, err := models.ParseOutputFormat(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseOutputFormat(%q) = %v, want error", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseOutputFormat(%q) returned error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseOutputFormat(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestExtractionRequestFormat(t *testing.T) {
	req := models.ExtractionRequest{URL: "https://www.linkedin.com/jobs/view/1"}
	got, err := req.Format()
	if err != nil {
		t.Fatalf("Format returned error for omitted extract_format: %v", err)
	}
	if got != models.OutputFormatStructured {
		t.Errorf("empty extract_format resolved to %v, want structured", got)
	}

	req.ExtractFormat = "raw"
	got, err = req.Format()
	if err != nil {
		t.Fatalf("Format returned error: %v", err)
	}
	if got != models.OutputFormatRaw {
		t.Errorf("extract_format raw resolved to %v, want raw", got)
	}

	req.ExtractFormat = "yaml"
	if _, err := req.Format(); err == nil {
		t.Error("Format accepted an unknown extract_format")
	}
}

func TestChatCompletionRequestApplyDefaults(t *testing.T) {
	req := &models.ChatCompletionRequest{
		Messages: []models.ChatMessage{{Role: "user", Content: "hi"}},
	}
	req.ApplyDefaults("gpt-4o-mini")

	if req.Model != "gpt-4o-mini" {
		t.Errorf("default model = %q, want gpt-4o-mini", req.Model)
	}
	if req.MaxTokens != models.DefaultChatMaxTokens {
		t.Errorf("default max_tokens = %d, want %d", req.MaxTokens, models.DefaultChatMaxTokens)
	}
	if req.Temperature == nil || *req.Temperature != models.DefaultChatTemperature {
		t.Errorf("default temperature = %v, want %v", req.Temperature, models.DefaultChatTemperature)
	}
}

func TestChatCompletionRequestKeepsExplicitValues(t *testing.T) {
	zero := float32(0)
	req := &models.ChatCompletionRequest{
		Messages:    []models.ChatMessage{{Role: "user", Content: "hi"}},
		Model:       "gpt-4o",
		MaxTokens:   32,
		Temperature: &zero,
	}
	req.ApplyDefaults("gpt-4o-mini")

	if req.Model != "gpt-4o" {
		t.Errorf("explicit model overwritten: %q", req.Model)
	}
	if req.MaxTokens != 32 {
		t.Errorf("explicit max_tokens overwritten: %d", req.MaxTokens)
	}
	if req.Temperature == nil || *req.Temperature != 0 {
		t.Error("explicit temperature 0.0 must survive defaulting")
	}
}
