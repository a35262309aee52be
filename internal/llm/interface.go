package llm

import (
	"context"

	"jobsift-utils/pkg/models"
)

// Provider defines the interface for completion providers
type Provider interface {
	// Complete runs a chat completion and returns the assistant's reply
	Complete(ctx context.Context, req *models.ChatCompletionRequest) (*models.ChatCompletionResponse, error)

	// IsHealthy checks if the provider is reachable and usable
	IsHealthy(ctx context.Context) error

	// GetProviderName returns the name of the provider
	GetProviderName() string
}
