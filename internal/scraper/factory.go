package scraper

import (
	"fmt"

	"jobsift-utils/internal/config"
	"jobsift-utils/internal/scraper/engines/firecrawl"
	"jobsift-utils/internal/scraper/engines/httpget"
)

// NewEngine creates the fetch engine named by the configuration
func NewEngine(cfg *config.Config) (Engine, error) {
	switch cfg.Scraper.Engine {
	case "http", "":
		return httpget.NewEngine(cfg), nil
	case "firecrawl":
		return firecrawl.NewEngine(cfg)
	default:
		return nil, fmt.Errorf("unsupported fetch engine: %s", cfg.Scraper.Engine)
	}
}

// SupportedEngines returns the list of supported engine names
func SupportedEngines() []string {
	return []string{"http", "firecrawl"}
}
