package httpget_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"jobsift-utils/internal/config"
	"jobsift-utils/internal/scraper/engines/httpget"
	"jobsift-utils/pkg/utils"
)

func engineConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Scraper.UserAgent = "Mozilla/5.0 (X11; Linux x86_64) TestAgent/1.0"
	cfg.Scraper.RequestTimeout = 2 * time.Second
	return cfg
}

func TestFetchPageReturnsBody(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("<html><body>job posting</body></html>"))
	}))
	defer server.Close()

	engine := httpget.NewEngine(engineConfig())

	content, err := engine.FetchPage(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("FetchPage returned error: %v", err)
	}
	if !strings.Contains(content, "job posting") {
		t.Errorf("content = %q", content)
	}
	if !strings.HasPrefix(gotUA, "Mozilla/5.0") {
		t.Errorf("user agent = %q, want a browser-like value", gotUA)
	}
}

func TestFetchPageBlockedStatuses(t *testing.T) {
	statuses := []int{999, http.StatusTooManyRequests, http.StatusForbidden}

	for _, status := range statuses {
		var hits int64
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt64(&hits, 1)
			w.WriteHeader(status)
		}))

		engine := httpget.NewEngine(engineConfig())

		_, err := engine.FetchPage(context.Background(), server.URL)
		if err == nil {
			t.Fatalf("status %d: expected error, got nil", status)
		}
		customErr, ok := utils.AsCustomError(err)
		if !ok {
			t.Fatalf("status %d: error is %T, want *CustomError", status, err)
		}
		if customErr.Code != http.StatusBadRequest {
			t.Errorf("status %d maps to %d, want 400", status, customErr.Code)
		}
		if !strings.Contains(customErr.Message, "blocked") {
			t.Errorf("status %d error %q does not name the block", status, customErr.Message)
		}
		if hits != 1 {
			t.Errorf("status %d fetched %d times, want exactly 1 (no retries)", status, hits)
		}
		server.Close()
	}
}

func TestFetchPageOtherErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	engine := httpget.NewEngine(engineConfig())

	_, err := engine.FetchPage(context.Background(), server.URL)
	if err == nil {
		t.Fatal("expected error for 404, got nil")
	}
	customErr, ok := utils.AsCustomError(err)
	if !ok {
		t.Fatalf("error is %T, want *CustomError", err)
	}
	if customErr.Code != http.StatusBadRequest {
		t.Errorf("404 maps to %d, want 400", customErr.Code)
	}
	if !strings.Contains(customErr.Message, "404") {
		t.Errorf("error %q does not name the upstream status", customErr.Message)
	}
}

func TestFetchPageEmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("   \n\t  "))
	}))
	defer server.Close()

	engine := httpget.NewEngine(engineConfig())

	_, err := engine.FetchPage(context.Background(), server.URL)
	if err == nil {
		t.Fatal("expected error for empty body, got nil")
	}
	customErr, ok := utils.AsCustomError(err)
	if !ok {
		t.Fatalf("error is %T, want *CustomError", err)
	}
	if !strings.Contains(customErr.Message, "empty") {
		t.Errorf("error %q does not name the empty body", customErr.Message)
	}
}

func TestFetchPageNetworkError(t *testing.T) {
	// Reserve a port, then close it so the connection is refused
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	engine := httpget.NewEngine(engineConfig())

	_, err := engine.FetchPage(context.Background(), url)
	if err == nil {
		t.Fatal("expected error for refused connection, got nil")
	}
	customErr, ok := utils.AsCustomError(err)
	if !ok {
		t.Fatalf("error is %T, want *CustomError", err)
	}
	if customErr.Code != http.StatusBadRequest {
		t.Errorf("network failure maps to %d, want 400", customErr.Code)
	}
}

func TestFetchPageTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer func() {
		close(release)
		server.Close()
	}()

	cfg := engineConfig()
	cfg.Scraper.RequestTimeout = 100 * time.Millisecond
	engine := httpget.NewEngine(cfg)

	start := time.Now()
	_, err := engine.FetchPage(context.Background(), server.URL)
	elapsed := time.Since(start)

	if err == nil {
		t.Fatal("expected timeout error, got nil")
	}
	if !strings.Contains(err.Error(), "timed out") {
		t.Errorf("error %q does not name the timeout", err.Error())
	}
	if elapsed > 2*time.Second {
		t.Errorf("fetch took %v, timeout did not bound the request", elapsed)
	}
}
