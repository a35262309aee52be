package httpget

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"jobsift-utils/internal/config"
	"jobsift-utils/internal/logging"
	"jobsift-utils/internal/logging/types"
	"jobsift-utils/pkg/utils"
)

// maxBodySize caps how much of a response body is read (10 MB)
const maxBodySize = 10 << 20

// Engine fetches pages with a plain HTTP GET. It makes exactly one attempt
// per call and classifies failures so callers can map them to client errors
// without retrying.
type Engine struct {
	config *config.Config
	client *http.Client
	logger types.Logger
}

// NewEngine creates a new HTTP GET engine
func NewEngine(cfg *config.Config) *Engine {
	return &Engine{
		config: cfg,
		client: &http.Client{
			Timeout: cfg.Scraper.RequestTimeout,
		},
		logger: logging.GetGlobalLogger(),
	}
}

// FetchPage performs a single GET request against the URL and returns the
// response body. Blocked responses (999, 429, 403), other non-2xx statuses,
// network failures and empty bodies each surface as a distinct error.
func (e *Engine) FetchPage(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", utils.NewFetchNetworkError(fmt.Sprintf("building request for %s: %v", url, err))
	}

	// Browser-like headers; LinkedIn serves a stripped page to obvious bots
	req.Header.Set("User-Agent", e.config.Scraper.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	e.logger.Debug("Fetching page", map[string]interface{}{
		"url":    url,
		"engine": e.Name(),
	})

	resp, err := e.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", utils.NewFetchNetworkError(fmt.Sprintf("request to %s timed out after %s", url, e.config.Scraper.RequestTimeout))
		}
		return "", utils.NewFetchNetworkError(fmt.Sprintf("request to %s failed: %v", url, err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == 999 || resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusForbidden:
		// Anti-bot responses. Retrying identically would only dig the hole
		// deeper, so surface them to the caller immediately.
		e.logger.Warn("Page fetch blocked", map[string]interface{}{
			"url":         url,
			"status_code": resp.StatusCode,
		})
		return "", utils.NewFetchBlockedError(resp.StatusCode, fmt.Sprintf("target site refused the request for %s", url))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return "", utils.NewFetchStatusError(resp.StatusCode, fmt.Sprintf("unexpected status fetching %s", url))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", utils.NewFetchNetworkError(fmt.Sprintf("reading response body from %s: %v", url, err))
	}

	content := string(body)
	if strings.TrimSpace(content) == "" {
		return "", utils.NewEmptyPageError(fmt.Sprintf("response from %s contained no content", url))
	}

	e.logger.Debug("Page fetched", map[string]interface{}{
		"url":            url,
		"status_code":    resp.StatusCode,
		"content_length": len(content),
	})
	return content, nil
}

// Name returns the engine identifier
func (e *Engine) Name() string {
	return "http"
}

// IsHealthy returns true; a plain HTTP client has no external dependency to probe
func (e *Engine) IsHealthy() bool {
	return true
}

// Cleanup closes idle connections held by the client
func (e *Engine) Cleanup() {
	e.client.CloseIdleConnections()
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
