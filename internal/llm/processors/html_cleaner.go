package processors

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HTMLCleaner strips page chrome and clutter from fetched HTML so the
// remaining text is mostly posting content
type HTMLCleaner struct {
	// Tags to remove completely
	removeTags []string
	// Attributes to keep (others will be removed)
	keepAttributes []string
}

var (
	commentRegex    = regexp.MustCompile(`<!--[\s\S]*?-->`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
	newlineRegex    = regexp.MustCompile(`\n{3,}`)
)

// NewHTMLCleaner creates a new HTML cleaner instance
func NewHTMLCleaner() *HTMLCleaner {
	return &HTMLCleaner{
		removeTags: []string{
			"script", "style", "noscript", "iframe", "object", "embed",
			"applet", "form", "input", "button", "select", "textarea",
			"nav", "header", "footer", "aside", "menu", "menuitem",
			"svg", "path", "g", "defs", "use", "symbol",
			"meta", "link", "title", "base",
		},
		keepAttributes: []string{
			"class", "id", "data-testid", "data-test", "aria-label", "title",
		},
	}
}

// CleanHTML removes unwanted elements and attributes but keeps the markup,
// for callers that convert the result to another format
func (hc *HTMLCleaner) CleanHTML(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	for _, tag := range hc.removeTags {
		doc.Find(tag).Remove()
	}

	hc.cleanAttributes(doc)
	hc.removeEmptyElements(doc)

	cleanedHTML, err := doc.Html()
	if err != nil {
		return "", err
	}

	cleanedHTML = commentRegex.ReplaceAllString(cleanedHTML, "")
	cleanedHTML = whitespaceRegex.ReplaceAllString(cleanedHTML, " ")

	return strings.TrimSpace(cleanedHTML), nil
}

// ExtractJobContent extracts the text most likely to contain the posting
func (hc *HTMLCleaner) ExtractJobContent(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	for _, tag := range hc.removeTags {
		doc.Find(tag).Remove()
	}

	// Common containers for job posting content
	jobSelectors := []string{
		"main", "[role='main']", "#main", ".main",
		".job", ".job-posting", ".job-detail", ".job-description",
		".posting", ".position", ".vacancy", ".opportunity",
		".content", ".description", ".details", ".info",
		"article", "section[class*='job']", "section[class*='posting']",
		"[data-testid*='job']", "[data-test*='job']", "[data-qa*='job']",
	}

	var contentParts []string

	for _, selector := range jobSelectors {
		doc.Find(selector).Each(func(i int, s *goquery.Selection) {
			if text := strings.TrimSpace(s.Text()); text != "" && len(text) > 50 {
				contentParts = append(contentParts, text)
			}
		})
	}

	// No recognizable containers; fall back to the whole body
	if len(contentParts) == 0 {
		if bodyText := doc.Find("body").Text(); bodyText != "" {
			contentParts = append(contentParts, bodyText)
		}
	}

	combinedContent := strings.Join(contentParts, "\n\n")

	return hc.cleanExtractedText(combinedContent), nil
}

// cleanAttributes removes attributes not on the keep list
func (hc *HTMLCleaner) cleanAttributes(doc *goquery.Document) {
	doc.Find("*").Each(func(i int, s *goquery.Selection) {
		if len(s.Nodes) == 0 {
			return
		}
		for _, attr := range s.Nodes[0].Attr {
			keep := false
			for _, keepAttr := range hc.keepAttributes {
				if attr.Key == keepAttr {
					keep = true
					break
				}
			}

			if !keep {
				s.RemoveAttr(attr.Key)
			}
		}
	})
}

// removeEmptyElements removes elements that contain only whitespace
func (hc *HTMLCleaner) removeEmptyElements(doc *goquery.Document) {
	doc.Find("*").Each(func(i int, s *goquery.Selection) {
		if strings.TrimSpace(s.Text()) == "" && s.Children().Length() == 0 {
			s.Remove()
		}
	})
}

// cleanExtractedText normalizes whitespace and strips browser nag text
func (hc *HTMLCleaner) cleanExtractedText(text string) string {
	text = whitespaceRegex.ReplaceAllString(text, " ")
	text = newlineRegex.ReplaceAllString(text, "\n\n")

	patterns := []string{
		`\bJavaScript\s+is\s+disabled\b.*?enabled\.`,
		`\bCookies?\s+are\s+disabled\b.*?enabled\.`,
		`\bPlease\s+enable\s+JavaScript\b.*?`,
		`\bThis\s+site\s+requires\s+JavaScript\b.*?`,
	}

	for _, pattern := range patterns {
		regex := regexp.MustCompile(pattern)
		text = regex.ReplaceAllString(text, "")
	}

	return strings.TrimSpace(text)
}
