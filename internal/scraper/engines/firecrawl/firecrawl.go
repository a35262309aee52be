package firecrawl

import (
	"context"
	"fmt"
	"strings"

	"github.com/mendableai/firecrawl-go"

	"jobsift-utils/internal/config"
	"jobsift-utils/internal/logging"
	"jobsift-utils/internal/logging/types"
	"jobsift-utils/pkg/utils"
)

// Engine fetches pages through the Firecrawl API. Useful when plain GETs
// are consistently blocked; it still makes exactly one attempt per call.
type Engine struct {
	config *config.Config
	app    *firecrawl.FirecrawlApp
	logger types.Logger
}

// NewEngine creates a new Firecrawl engine instance
func NewEngine(cfg *config.Config) (*Engine, error) {
	logger := logging.GetGlobalLogger()

	app, err := firecrawl.NewFirecrawlApp(
		cfg.Firecrawl.APIKey,
		cfg.Firecrawl.APIURL,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firecrawl: %w", err)
	}

	logger.Info("Firecrawl engine initialized", map[string]interface{}{
		"api_url": cfg.Firecrawl.APIURL,
		"version": cfg.Firecrawl.Version,
	})

	return &Engine{
		config: cfg,
		app:    app,
		logger: logger,
	}, nil
}

// FetchPage fetches the URL through Firecrawl and returns the page content.
// HTML is preferred when available; markdown is used otherwise.
func (e *Engine) FetchPage(ctx context.Context, url string) (string, error) {
	scrapeParams := &firecrawl.ScrapeParams{
		Formats: e.config.Firecrawl.Formats,
	}

	e.logger.Debug("Fetching page via Firecrawl", map[string]interface{}{
		"url":    url,
		"engine": e.Name(),
	})

	doc, err := e.app.ScrapeURL(url, scrapeParams)
	if err != nil {
		return "", utils.NewFetchNetworkError(fmt.Sprintf("firecrawl fetch of %s failed: %v", url, err))
	}
	if doc == nil {
		return "", utils.NewEmptyPageError(fmt.Sprintf("firecrawl returned no document for %s", url))
	}

	var content string
	if doc.HTML != "" {
		content = doc.HTML
	} else if doc.Markdown != "" {
		content = doc.Markdown
	}

	if strings.TrimSpace(content) == "" {
		return "", utils.NewEmptyPageError(fmt.Sprintf("firecrawl document for %s contained no content", url))
	}

	e.logger.Debug("Page fetched via Firecrawl", map[string]interface{}{
		"url":            url,
		"content_length": len(content),
	})
	return content, nil
}

// Name returns the engine identifier
func (e *Engine) Name() string {
	return "firecrawl"
}

// IsHealthy checks if the engine is ready to fetch pages
func (e *Engine) IsHealthy() bool {
	return e.app != nil && e.config.Firecrawl.APIKey != ""
}

// Cleanup releases engine resources. The Firecrawl SDK holds none.
func (e *Engine) Cleanup() {}
