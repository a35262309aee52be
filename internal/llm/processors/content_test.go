package processors_test

import (
	"strings"
	"testing"

	"jobsift-utils/internal/config"
	"jobsift-utils/internal/llm/processors"
)

const jobPageHTML = `<html>
<head><title>Job</title><script>window.trackticks = 1;</script></head>
<body>
<nav>Home | Jobs | Sign in</nav>
<main class="job-description">
<h1>Senior Backend Engineer</h1>
<p>Acme Corp is hiring a Senior Backend Engineer in Berlin to build
distributed ingestion pipelines and own our public API surface.</p>
<ul><li>5+ years with Go or similar</li><li>Experience with message queues</li></ul>
</main>
<footer>© Acme Corp</footer>
</body>
</html>`

func textConfig(maxTokens int) *config.Config {
	cfg := &config.Config{}
	cfg.Scraper.ContentFormat = "text"
	cfg.LLM.MaxTokens = maxTokens
	return cfg
}

func TestPrepareIsDeterministic(t *testing.T) {
	preparer := processors.NewContentPreparer(textConfig(8192))

	first, err := preparer.Prepare(jobPageHTML)
	if err != nil {
		t.Fatalf("Prepare returned error: %v", err)
	}
	second, err := preparer.Prepare(jobPageHTML)
	if err != nil {
		t.Fatalf("Prepare returned error on second run: %v", err)
	}

	if first != second {
		t.Error("Prepare produced different output for identical input")
	}
}

func TestPrepareStripsPageChrome(t *testing.T) {
	preparer := processors.NewContentPreparer(textConfig(8192))

	got, err := preparer.Prepare(jobPageHTML)
	if err != nil {
		t.Fatalf("Prepare returned error: %v", err)
	}

	if !strings.Contains(got, "Senior Backend Engineer") {
		t.Errorf("prepared content lost the job title: %q", got)
	}
	if strings.Contains(got, "window.track") {
		t.Errorf("prepared content still contains script text: %q", got)
	}
}

func TestPrepareTruncatesHeadFirst(t *testing.T) {
	// Budget of 10 tokens = 30 chars
	preparer := processors.NewContentPreparer(textConfig(10))

	long := "<html><body><main class=\"job\">" + strings.Repeat("backend engineering role ", 50) + "</main></body></html>"
	got, err := preparer.Prepare(long)
	if err != nil {
		t.Fatalf("Prepare returned error: %v", err)
	}

	if len(got) != 30+len("...") {
		t.Errorf("truncated length = %d, want %d", len(got), 30+len("..."))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("truncated content missing ellipsis: %q", got)
	}
	if !strings.HasPrefix(got, "backend engineering role") {
		t.Errorf("truncation did not keep the head of the content: %q", got)
	}
}

func TestPrepareMarkdownFormat(t *testing.T) {
	cfg := textConfig(8192)
	cfg.Scraper.ContentFormat = "markdown"
	preparer := processors.NewContentPreparer(cfg)

	got, err := preparer.Prepare(jobPageHTML)
	if err != nil {
		t.Fatalf("Prepare returned error: %v", err)
	}

	if !strings.Contains(got, "Senior Backend Engineer") {
		t.Errorf("markdown content lost the job title: %q", got)
	}
	if !strings.Contains(got, "#") {
		t.Errorf("markdown content has no headings: %q", got)
	}
	if strings.Contains(got, "<h1>") {
		t.Errorf("markdown content still contains HTML tags: %q", got)
	}
}

func TestExtractJobContentFallsBackToBody(t *testing.T) {
	cleaner := processors.NewHTMLCleaner()

	// No recognizable job containers at all
	html := `<html><body><div>Short page about a Staff Engineer opening at a robotics startup in Oslo.</div></body></html>`
	got, err := cleaner.ExtractJobContent(html)
	if err != nil {
		t.Fatalf("ExtractJobContent returned error: %v", err)
	}

	if !strings.Contains(got, "Staff Engineer") {
		t.Errorf("body fallback lost the content: %q", got)
	}
}
