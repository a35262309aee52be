package llm

import (
	"fmt"

	"jobsift-utils/internal/config"
	"jobsift-utils/internal/llm/providers"
)

// Factory creates completion provider instances
type Factory struct {
	config *config.Config
}

// NewFactory creates a new provider factory instance
func NewFactory(cfg *config.Config) *Factory {
	return &Factory{
		config: cfg,
	}
}

// CreateProvider creates a completion provider based on the configuration
func (f *Factory) CreateProvider() (Provider, error) {
	switch f.config.LLM.Provider {
	case "openai", "":
		return providers.NewOpenAIProvider(f.config), nil
	case "claude":
		return providers.NewClaudeProvider(f.config), nil
	default:
		return nil, fmt.Errorf("unsupported completion provider: %s", f.config.LLM.Provider)
	}
}

// GetSupportedProviders returns a list of supported provider names
func (f *Factory) GetSupportedProviders() []string {
	return []string{"openai", "claude"}
}
