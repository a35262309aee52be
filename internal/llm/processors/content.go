package processors

import (
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"jobsift-utils/internal/config"
)

// ContentPreparer turns raw fetched page content into model-ready text.
// Preparation is deterministic: the same input always yields the same
// output, including where truncation cuts off.
type ContentPreparer struct {
	cleaner  *HTMLCleaner
	format   string
	maxChars int
}

// NewContentPreparer creates a preparer from the scraper and LLM settings.
// The character budget approximates the model's token budget at roughly
// three characters per token.
func NewContentPreparer(cfg *config.Config) *ContentPreparer {
	return &ContentPreparer{
		cleaner:  NewHTMLCleaner(),
		format:   cfg.Scraper.ContentFormat,
		maxChars: cfg.LLM.MaxTokens * 3,
	}
}

// Prepare cleans the page content, renders it in the configured format and
// truncates it to the character budget
func (cp *ContentPreparer) Prepare(pageContent string) (string, error) {
	var prepared string
	var err error

	switch cp.format {
	case "markdown":
		prepared, err = cp.toMarkdown(pageContent)
	default:
		prepared, err = cp.cleaner.ExtractJobContent(pageContent)
	}
	if err != nil {
		return "", err
	}

	return cp.truncate(prepared), nil
}

// toMarkdown strips page chrome then converts the remaining markup to
// markdown. Conversion failures fall back to plain text extraction.
func (cp *ContentPreparer) toMarkdown(pageContent string) (string, error) {
	cleaned, err := cp.cleaner.CleanHTML(pageContent)
	if err != nil {
		return "", err
	}

	markdown, err := htmltomarkdown.ConvertString(cleaned)
	if err != nil {
		return cp.cleaner.ExtractJobContent(pageContent)
	}

	return strings.TrimSpace(markdown), nil
}

// truncate cuts the text at the character budget, head first
func (cp *ContentPreparer) truncate(text string) string {
	if cp.maxChars <= 0 || len(text) <= cp.maxChars {
		return text
	}
	return text[:cp.maxChars] + "..."
}
