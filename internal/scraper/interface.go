package scraper

import (
	"context"
)

// Engine defines the interface for page fetching engines. An engine makes
// exactly one fetch attempt per call; retries are never performed.
type Engine interface {
	// FetchPage fetches the page at the given URL and returns its raw content
	FetchPage(ctx context.Context, url string) (string, error)

	// Name returns the engine identifier used in logs and task metadata
	Name() string

	// IsHealthy returns true if the engine is ready to fetch pages
	IsHealthy() bool

	// Cleanup releases any resources held by the engine
	Cleanup()
}
