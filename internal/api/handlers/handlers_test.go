package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"jobsift-utils/internal/api/routes"
	"jobsift-utils/internal/background"
	"jobsift-utils/internal/config"
	"jobsift-utils/internal/llm"
	"jobsift-utils/internal/scraper/workers"
	"jobsift-utils/pkg/models"
	"jobsift-utils/pkg/utils"

	"github.com/labstack/echo/v4"
)

const jobPageHTML = `<html><head><script>tracking();</script></head><body>
<nav>Jobs People Learning</nav>
<main class="job-description">
<h1>Senior Backend Engineer (Go)</h1>
<p>Acme Corp is hiring a Senior Backend Engineer in Berlin to own our
ingestion pipeline, working with Go, Postgres and message queues.</p>
</main>
<footer>About Accessibility Privacy Policy</footer>
</body></html>`

const structuredReply = "```json\n" + `{"job_title":"Senior Backend Engineer (Go)","company":"Acme Corp","location":"Berlin, Germany","job_description":"## About the Role\nOwn the ingestion pipeline.\n\n## Requirements\n- Go experience\n- Postgres"}` + "\n```"

const jobURL = "https://www.linkedin.com/jobs/view/4015614845"

// stubEngine satisfies scraper.Engine with canned output so handler tests
// never touch the network for page fetches.
type stubEngine struct {
	html    string
	err     error
	fetches int64
}

func (s *stubEngine) FetchPage(ctx context.Context, url string) (string, error) {
	atomic.AddInt64(&s.fetches, 1)
	if s.err != nil {
		return "", s.err
	}
	return s.html, nil
}

func (s *stubEngine) Name() string    { return "stub" }
func (s *stubEngine) IsHealthy() bool { return true }
func (s *stubEngine) Cleanup()        {}

func (s *stubEngine) fetchCount() int64 { return atomic.LoadInt64(&s.fetches) }

// newBlockedError mirrors what the HTTP engine returns when LinkedIn answers
// with its bot-detection status.
func newBlockedError() error {
	return utils.NewFetchBlockedError(999, "LinkedIn returned HTTP 999")
}

// completionStub serves /models for health checks and /chat/completions with
// a fixed reply, echoing the requested model and counting completion calls.
func completionStub(reply string, completionCalls *int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/models":
			w.Write([]byte(`{"data":[]}`))
		case "/chat/completions":
			atomic.AddInt64(completionCalls, 1)
			var req struct {
				Model string `json:"model"`
			}
			json.NewDecoder(r.Body).Decode(&req)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"model": req.Model,
				"choices": []map[string]interface{}{
					{"message": map[string]string{"role": "assistant", "content": reply}},
				},
				"usage": map[string]int{"prompt_tokens": 100, "completion_tokens": 50, "total_tokens": 150},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func serverConfig(baseURL string) *config.Config {
	cfg := &config.Config{}
	cfg.Server.ReadTimeout = 5 * time.Second

	cfg.Workers.PoolSize = 2
	cfg.Workers.QueueSize = 16
	cfg.Workers.RateLimit = 6000
	cfg.Workers.Timeout = 10 * time.Second

	cfg.BackgroundTasks.MaxConcurrentTasks = 2
	cfg.BackgroundTasks.TaskTimeout = 10 * time.Second
	cfg.BackgroundTasks.CleanupInterval = time.Hour
	cfg.BackgroundTasks.MaxTaskAge = 24 * time.Hour

	cfg.LLM.Provider = "openai"
	cfg.LLM.APIKey = "test-key"
	cfg.LLM.BaseURL = baseURL
	cfg.LLM.Model = "gpt-4o-mini"
	cfg.LLM.MaxTokens = 2048
	cfg.LLM.Temperature = 0.1
	cfg.LLM.Timeout = 5 * time.Second

	cfg.Scraper.Engine = "http"
	cfg.Scraper.ContentFormat = "text"
	return cfg
}

type fixture struct {
	e               *echo.Echo
	engine          *stubEngine
	completionCalls *int64
	llmManager      *llm.Manager
}

// newFixture wires the full route table against a stubbed page fetch and a
// stubbed completion endpoint. startLLM=false leaves the completion manager
// unstarted to simulate a degraded provider.
func newFixture(t *testing.T, engine *stubEngine, reply string, startLLM bool) *fixture {
	t.Helper()

	var calls int64
	stub := httptest.NewServer(completionStub(reply, &calls))
	t.Cleanup(stub.Close)

	cfg := serverConfig(stub.URL)

	llmManager := llm.NewManager(cfg)
	if startLLM {
		if err := llmManager.Start(); err != nil {
			t.Fatalf("llm manager Start returned error: %v", err)
		}
		t.Cleanup(func() { llmManager.Stop() })
	}

	poolManager := workers.NewPoolManager(cfg, engine, llmManager)
	if err := poolManager.Initialize(); err != nil {
		t.Fatalf("pool manager Initialize returned error: %v", err)
	}
	t.Cleanup(func() { poolManager.Shutdown() })

	taskManager := background.NewTaskManager(cfg)
	if err := taskManager.Start(context.Background()); err != nil {
		t.Fatalf("task manager Start returned error: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		taskManager.Stop(ctx)
	})

	e := echo.New()
	routes.SetupRoutes(e, cfg, poolManager, llmManager, taskManager)

	return &fixture{e: e, engine: engine, completionCalls: &calls, llmManager: llmManager}
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("response is not valid JSON: %v\nbody: %s", err, rec.Body.String())
	}
}

func TestRootHelloWorld(t *testing.T) {
	f := newFixture(t, &stubEngine{html: jobPageHTML}, structuredReply, true)

	rec := f.do(t, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET / status = %d, want 200", rec.Code)
	}

	var body map[string]string
	decodeJSON(t, rec, &body)
	if len(body) != 1 || body["message"] != "Hello, World!" {
		t.Errorf("GET / body = %v, want exactly {\"message\": \"Hello, World!\"}", body)
	}
}

func TestHealthEndpoint(t *testing.T) {
	f := newFixture(t, &stubEngine{html: jobPageHTML}, structuredReply, true)

	rec := f.do(t, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /health status = %d, want 200", rec.Code)
	}

	var body map[string]string
	decodeJSON(t, rec, &body)
	if body["status"] != "healthy" || body["message"] != "API is running" {
		t.Errorf("GET /health body = %v, want status=healthy message=API is running", body)
	}
	if len(body) != 2 {
		t.Errorf("GET /health carries extra fields: %v", body)
	}
}

func TestHealthStaysHealthyWithDegradedProvider(t *testing.T) {
	// Completion manager never started: the liveness check must not care
	f := newFixture(t, &stubEngine{html: jobPageHTML}, structuredReply, false)

	rec := f.do(t, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /health status = %d with degraded provider, want 200", rec.Code)
	}

	var body map[string]string
	decodeJSON(t, rec, &body)
	if body["status"] != "healthy" {
		t.Errorf("GET /health status field = %q, want %q", body["status"], "healthy")
	}

	ready := f.do(t, http.MethodGet, "/health/ready", "")
	if ready.Code != http.StatusOK {
		t.Errorf("GET /health/ready status = %d, want 200 (degraded llm must not fail readiness)", ready.Code)
	}
}

func TestExtractJobStructuredEndToEnd(t *testing.T) {
	engine := &stubEngine{html: jobPageHTML}
	f := newFixture(t, engine, structuredReply, true)

	rec := f.do(t, http.MethodPost, "/linkedin/job", `{"url": "`+jobURL+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200\nbody: %s", rec.Code, rec.Body.String())
	}

	var result models.ExtractionResult
	decodeJSON(t, rec, &result)

	if !strings.Contains(result.JobTitle, "Senior Backend Engineer") {
		t.Errorf("job_title = %q, want it to contain %q", result.JobTitle, "Senior Backend Engineer")
	}
	if !strings.HasPrefix(result.JobDescription, "## ") {
		t.Errorf("job_description does not start with a markdown heading: %q", result.JobDescription)
	}
	if result.ExtractedURL != jobURL {
		t.Errorf("extracted_url = %q, must echo the request url %q", result.ExtractedURL, jobURL)
	}
	if result.ProcessingTime <= 0 {
		t.Errorf("processing_time = %v, want > 0", result.ProcessingTime)
	}
	if n := engine.fetchCount(); n != 1 {
		t.Errorf("page fetched %d times, want exactly 1", n)
	}
	if n := atomic.LoadInt64(f.completionCalls); n != 1 {
		t.Errorf("completion endpoint called %d times, want exactly 1", n)
	}
}

func TestExtractAliasRoute(t *testing.T) {
	f := newFixture(t, &stubEngine{html: jobPageHTML}, structuredReply, true)

	rec := f.do(t, http.MethodPost, "/extract/job-description", `{"url": "`+jobURL+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("alias status = %d, want 200\nbody: %s", rec.Code, rec.Body.String())
	}

	var result models.ExtractionResult
	decodeJSON(t, rec, &result)
	if !strings.Contains(result.JobTitle, "Senior Backend Engineer") {
		t.Errorf("alias job_title = %q, want it to contain %q", result.JobTitle, "Senior Backend Engineer")
	}
	if result.ExtractedURL != jobURL {
		t.Errorf("alias extracted_url = %q, want %q", result.ExtractedURL, jobURL)
	}
}

func TestExtractRejectsInvalidURLWithoutFetching(t *testing.T) {
	engine := &stubEngine{html: jobPageHTML}
	f := newFixture(t, engine, structuredReply, true)

	rec := f.do(t, http.MethodPost, "/linkedin/job", `{"url": "not-a-url"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400\nbody: %s", rec.Code, rec.Body.String())
	}

	var body models.ErrorResponse
	decodeJSON(t, rec, &body)
	if body.Error != "validation_failed" {
		t.Errorf("error code = %q, want %q", body.Error, "validation_failed")
	}

	if n := engine.fetchCount(); n != 0 {
		t.Errorf("invalid URL triggered %d fetch(es), want none", n)
	}
	if n := atomic.LoadInt64(f.completionCalls); n != 0 {
		t.Errorf("invalid URL triggered %d completion call(s), want none", n)
	}
}

func TestExtractMissingURL(t *testing.T) {
	engine := &stubEngine{html: jobPageHTML}
	f := newFixture(t, engine, structuredReply, true)

	rec := f.do(t, http.MethodPost, "/linkedin/job", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if n := engine.fetchCount(); n != 0 {
		t.Errorf("missing URL triggered %d fetch(es), want none", n)
	}
}

func TestExtractInvalidFormat(t *testing.T) {
	f := newFixture(t, &stubEngine{html: jobPageHTML}, structuredReply, true)

	rec := f.do(t, http.MethodPost, "/linkedin/job", `{"url": "`+jobURL+`", "extract_format": "markdown"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400\nbody: %s", rec.Code, rec.Body.String())
	}
}

func TestExtractBlockedFetchSurfacesClientError(t *testing.T) {
	engine := &stubEngine{err: newBlockedError()}
	f := newFixture(t, engine, structuredReply, true)

	rec := f.do(t, http.MethodPost, "/linkedin/job", `{"url": "`+jobURL+`"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400\nbody: %s", rec.Code, rec.Body.String())
	}

	var body models.ErrorResponse
	decodeJSON(t, rec, &body)
	if !strings.Contains(body.Message, "blocked") {
		t.Errorf("error message %q does not name the fetch block", body.Message)
	}
	if !strings.Contains(body.Message, "999") {
		t.Errorf("error message %q does not name the status code", body.Message)
	}

	if n := engine.fetchCount(); n != 1 {
		t.Errorf("blocked fetch attempted %d times, want exactly 1 (no retries)", n)
	}
	if n := atomic.LoadInt64(f.completionCalls); n != 0 {
		t.Errorf("blocked fetch still triggered %d completion call(s)", n)
	}
}

func TestExtractRawModeSkipsCompletionAndIsReproducible(t *testing.T) {
	engine := &stubEngine{html: jobPageHTML}
	f := newFixture(t, engine, structuredReply, true)

	body := `{"url": "` + jobURL + `", "extract_format": "raw"}`

	first := f.do(t, http.MethodPost, "/linkedin/job", body)
	if first.Code != http.StatusOK {
		t.Fatalf("raw status = %d, want 200\nbody: %s", first.Code, first.Body.String())
	}
	second := f.do(t, http.MethodPost, "/linkedin/job", body)
	if second.Code != http.StatusOK {
		t.Fatalf("second raw status = %d, want 200", second.Code)
	}

	var r1, r2 models.ExtractionResult
	decodeJSON(t, first, &r1)
	decodeJSON(t, second, &r2)

	if r1.JobDescription != r2.JobDescription {
		t.Errorf("raw output not reproducible:\nfirst:  %q\nsecond: %q", r1.JobDescription, r2.JobDescription)
	}
	if !strings.Contains(r1.JobDescription, "Senior Backend Engineer") {
		t.Errorf("raw description lost page text: %q", r1.JobDescription)
	}
	if r1.JobTitle != "" || r1.Company != "" || r1.Location != "" {
		t.Errorf("raw result must leave structured fields unset, got %+v", r1)
	}
	if n := atomic.LoadInt64(f.completionCalls); n != 0 {
		t.Errorf("raw mode triggered %d completion call(s), want none", n)
	}
}

func TestChatCompletionsPassthrough(t *testing.T) {
	f := newFixture(t, &stubEngine{html: jobPageHTML}, "Hello there!", true)

	rec := f.do(t, http.MethodPost, "/chat/completions", `{"messages": [{"role": "user", "content": "Say hello"}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200\nbody: %s", rec.Code, rec.Body.String())
	}

	var resp models.ChatCompletionResponse
	decodeJSON(t, rec, &resp)
	if resp.Message != "Hello there!" {
		t.Errorf("message = %q, want %q", resp.Message, "Hello there!")
	}
	if resp.Model != "gpt-4o-mini" {
		t.Errorf("model = %q, want the default %q applied", resp.Model, "gpt-4o-mini")
	}
	if resp.Usage.TotalTokens != 150 {
		t.Errorf("usage.total_tokens = %d, want 150", resp.Usage.TotalTokens)
	}
}

func TestChatCompletionsValidation(t *testing.T) {
	f := newFixture(t, &stubEngine{html: jobPageHTML}, "unused", true)

	tests := []struct {
		name string
		body string
	}{
		{"missing messages", `{}`},
		{"empty messages", `{"messages": []}`},
		{"bad role", `{"messages": [{"role": "robot", "content": "hi"}]}`},
		{"missing content", `{"messages": [{"role": "user"}]}`},
		{"temperature too high", `{"messages": [{"role": "user", "content": "hi"}], "temperature": 3.0}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/chat/completions", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400\nbody: %s", rec.Code, rec.Body.String())
			}
		})
	}

	if n := atomic.LoadInt64(f.completionCalls); n != 0 {
		t.Errorf("invalid requests reached the completion endpoint %d time(s)", n)
	}
}

func TestAsyncExtractFlow(t *testing.T) {
	engine := &stubEngine{html: jobPageHTML}
	f := newFixture(t, engine, structuredReply, true)

	rec := f.do(t, http.MethodPost, "/linkedin/job/async", `{"url": "`+jobURL+`"}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("async submit status = %d, want 202\nbody: %s", rec.Code, rec.Body.String())
	}

	var accepted models.AsyncExtractResponse
	decodeJSON(t, rec, &accepted)
	if accepted.ProcessID == "" {
		t.Fatal("async submit returned empty processId")
	}
	if accepted.Status != models.AsyncStatusAccepted {
		t.Errorf("async submit status field = %q, want ACCEPTED", accepted.Status)
	}

	var status struct {
		ProcessID string `json:"processId"`
		Status    string `json:"status"`
		Data      struct {
			Result  *models.ExtractionResult `json:"result"`
			Engine  string                   `json:"engine"`
			UsedLLM bool                     `json:"used_llm"`
		} `json:"data"`
		Error string `json:"error"`
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		poll := f.do(t, http.MethodGet, "/linkedin/job/async/"+accepted.ProcessID, "")
		if poll.Code != http.StatusOK {
			t.Fatalf("status poll = %d, want 200\nbody: %s", poll.Code, poll.Body.String())
		}
		decodeJSON(t, poll, &status)
		if status.Status == "SUCCESS" || status.Status == "FAILURE" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("task %s still %s after deadline", accepted.ProcessID, status.Status)
		}
		time.Sleep(25 * time.Millisecond)
	}

	if status.Status != "SUCCESS" {
		t.Fatalf("task finished as %s: %s", status.Status, status.Error)
	}
	if status.Data.Result == nil {
		t.Fatal("successful task carries no result")
	}
	if !strings.Contains(status.Data.Result.JobTitle, "Senior Backend Engineer") {
		t.Errorf("async job_title = %q, want it to contain %q", status.Data.Result.JobTitle, "Senior Backend Engineer")
	}
	if status.Data.Result.ExtractedURL != jobURL {
		t.Errorf("async extracted_url = %q, want %q", status.Data.Result.ExtractedURL, jobURL)
	}
	if !status.Data.UsedLLM {
		t.Error("structured async extraction should report used_llm = true")
	}
}

func TestAsyncStatusUnknownProcessID(t *testing.T) {
	f := newFixture(t, &stubEngine{html: jobPageHTML}, structuredReply, true)

	rec := f.do(t, http.MethodGet, "/linkedin/job/async/extract_unknown", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown process status = %d, want 404\nbody: %s", rec.Code, rec.Body.String())
	}
}

func TestWorkerStatsEndpoint(t *testing.T) {
	f := newFixture(t, &stubEngine{html: jobPageHTML}, structuredReply, true)

	rec := f.do(t, http.MethodGet, "/api/v1/workers/stats", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("worker stats status = %d, want 200\nbody: %s", rec.Code, rec.Body.String())
	}

	var body map[string]interface{}
	decodeJSON(t, rec, &body)
	if body["success"] != true {
		t.Errorf("worker stats success = %v, want true", body["success"])
	}
}
