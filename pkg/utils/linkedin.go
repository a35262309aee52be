package utils

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// LinkedInURLType represents the type of LinkedIn URL
type LinkedInURLType int

const (
	// LinkedInURLTypeUnknown for non-LinkedIn or unrecognized URLs
	LinkedInURLTypeUnknown LinkedInURLType = iota
	// LinkedInURLTypeJobView for direct job view URLs (/jobs/view/{id})
	LinkedInURLTypeJobView
	// LinkedInURLTypeJobCollection for collection URLs with currentJobId
	LinkedInURLTypeJobCollection
	// LinkedInURLTypeNonJob for LinkedIn URLs that aren't job postings
	LinkedInURLTypeNonJob
)

// LinkedInURLInfo contains parsed information about a LinkedIn URL
type LinkedInURLInfo struct {
	Type      LinkedInURLType
	JobID     string
	PublicURL string
}

var jobViewPathRegex = regexp.MustCompile(`^/jobs/view/(\d+)/?$`)

// ensureScheme prepends https:// to bare-host inputs so url.Parse fills in
// Host instead of treating the whole string as a path.
func ensureScheme(rawURL string) string {
	if strings.Contains(rawURL, "://") {
		return rawURL
	}
	return "https://" + rawURL
}

// IsLinkedInURL checks if the given URL belongs to LinkedIn
func IsLinkedInURL(rawURL string) bool {
	parsedURL, err := url.Parse(ensureScheme(rawURL))
	if err != nil {
		return false
	}

	hostname := strings.ToLower(parsedURL.Hostname())
	return hostname == "linkedin.com" || hostname == "www.linkedin.com"
}

// ParseLinkedInURL analyzes a LinkedIn URL and returns information about it
func ParseLinkedInURL(rawURL string) (*LinkedInURLInfo, error) {
	parsedURL, err := url.Parse(ensureScheme(rawURL))
	if err != nil {
		return nil, fmt.Errorf("invalid URL format: %w", err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return &LinkedInURLInfo{Type: LinkedInURLTypeUnknown}, nil
	}

	hostname := strings.ToLower(parsedURL.Hostname())
	if hostname != "linkedin.com" && hostname != "www.linkedin.com" {
		return &LinkedInURLInfo{Type: LinkedInURLTypeUnknown}, nil
	}

	path := strings.ToLower(parsedURL.Path)

	// Direct job view URL: /jobs/view/{id}. Query params (tracking, refId)
	// are ignored when building the canonical form.
	if matches := jobViewPathRegex.FindStringSubmatch(path); len(matches) == 2 {
		jobID := matches[1]
		return &LinkedInURLInfo{
			Type:      LinkedInURLTypeJobView,
			JobID:     jobID,
			PublicURL: buildPublicJobURL(jobID),
		}, nil
	}

	// Collection URL carrying the job ID in the query string, e.g.
	// /jobs/collections/recommended/?currentJobId=4015614845
	if strings.HasPrefix(path, "/jobs/") {
		if jobID := parsedURL.Query().Get("currentJobId"); jobID != "" && isNumeric(jobID) {
			return &LinkedInURLInfo{
				Type:      LinkedInURLTypeJobCollection,
				JobID:     jobID,
				PublicURL: buildPublicJobURL(jobID),
			}, nil
		}
		if strings.HasPrefix(path, "/jobs/view/") {
			// /jobs/view/ with a malformed or missing ID
			return &LinkedInURLInfo{Type: LinkedInURLTypeNonJob}, nil
		}
	}

	return &LinkedInURLInfo{Type: LinkedInURLTypeNonJob}, nil
}

// buildPublicJobURL constructs the canonical public job URL for a job ID
func buildPublicJobURL(jobID string) string {
	return fmt.Sprintf("https://www.linkedin.com/jobs/view/%s", jobID)
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ValidateLinkedInJobURL validates a raw URL string and returns the canonical
// public job URL to fetch. The input may omit the scheme or www prefix and
// may carry tracking query parameters; all accepted forms of the same job ID
// normalize to the same output. Rejections return a *CustomError mapping to
// HTTP 400.
func ValidateLinkedInJobURL(rawURL string) (string, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return "", NewValidationError("url must not be empty")
	}

	if !IsLinkedInURL(trimmed) {
		return "", NewValidationError(fmt.Sprintf("'%s' is not a LinkedIn URL", trimmed))
	}

	info, err := ParseLinkedInURL(trimmed)
	if err != nil {
		return "", NewValidationError(err.Error())
	}

	switch info.Type {
	case LinkedInURLTypeJobView, LinkedInURLTypeJobCollection:
		return info.PublicURL, nil
	case LinkedInURLTypeNonJob:
		return "", NewNotJobPostingError(fmt.Sprintf("'%s' does not point at a LinkedIn job posting", trimmed))
	default:
		return "", NewValidationError(fmt.Sprintf("'%s' could not be recognized as a LinkedIn job URL", trimmed))
	}
}

// ConvertToPublicLinkedInJobURL converts any supported LinkedIn job URL form
// to its canonical public form
func ConvertToPublicLinkedInJobURL(rawURL string) (string, error) {
	return ValidateLinkedInJobURL(rawURL)
}

// IsLinkedInJobURL checks whether the URL points at a LinkedIn job posting
func IsLinkedInJobURL(rawURL string) bool {
	info, err := ParseLinkedInURL(rawURL)
	if err != nil {
		return false
	}
	return info.Type == LinkedInURLTypeJobView || info.Type == LinkedInURLTypeJobCollection
}

// ExtractLinkedInJobID extracts the job ID from a LinkedIn job URL
func ExtractLinkedInJobID(rawURL string) (string, error) {
	info, err := ParseLinkedInURL(rawURL)
	if err != nil {
		return "", err
	}
	if info.JobID == "" {
		return "", fmt.Errorf("no job ID found in URL: %s", rawURL)
	}
	return info.JobID, nil
}
