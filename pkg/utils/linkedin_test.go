package utils_test

import (
	"strings"
	"testing"

	"jobsift-utils/pkg/utils"
)

func TestValidateLinkedInJobURLAcceptedForms(t *testing.T) {
	canonical := "https://www.linkedin.com/jobs/view/4015614845"

	tests := []struct {
		name string
		url  string
	}{
		{"canonical", "https://www.linkedin.com/jobs/view/4015614845"},
		{"no www", "https://linkedin.com/jobs/view/4015614845"},
		{"no scheme", "www.linkedin.com/jobs/view/4015614845"},
		{"bare host", "linkedin.com/jobs/view/4015614845"},
		{"http scheme", "http://www.linkedin.com/jobs/view/4015614845"},
		{"trailing slash", "https://www.linkedin.com/jobs/view/4015614845/"},
		{"tracking params", "https://www.linkedin.com/jobs/view/4015614845/?refId=abc123&trackingId=xyz"},
		{"collection url", "https://www.linkedin.com/jobs/collections/recommended/?currentJobId=4015614845"},
		{"search url with currentJobId", "https://www.linkedin.com/jobs/search/?currentJobId=4015614845&keywords=golang"},
		{"surrounding whitespace", "  https://www.linkedin.com/jobs/view/4015614845  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := utils.ValidateLinkedInJobURL(tt.url)
			if err != nil {
				t.Fatalf("ValidateLinkedInJobURL(%q) returned error: %v", tt.url, err)
			}
			if got != canonical {
				t.Errorf("ValidateLinkedInJobURL(%q) = %q, want %q", tt.url, got, canonical)
			}
		})
	}
}

func TestValidateLinkedInJobURLRejections(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"not a url", "not-a-url"},
		{"wrong host", "https://example.com/jobs/view/4015614845"},
		{"linkedin profile", "https://www.linkedin.com/in/someone"},
		{"linkedin company", "https://www.linkedin.com/company/acme"},
		{"non-numeric job id", "https://www.linkedin.com/jobs/view/abc"},
		{"missing job id", "https://www.linkedin.com/jobs/view/"},
		{"jobs search without id", "https://www.linkedin.com/jobs/search/?keywords=golang"},
		{"ftp scheme", "ftp://www.linkedin.com/jobs/view/4015614845"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := utils.ValidateLinkedInJobURL(tt.url)
			if err == nil {
				t.Fatalf("ValidateLinkedInJobURL(%q) = %q, want error", tt.url, got)
			}
			customErr, ok := utils.AsCustomError(err)
			if !ok {
				t.Fatalf("ValidateLinkedInJobURL(%q) error is %T, want *CustomError", tt.url, err)
			}
			if customErr.Code != 400 {
				t.Errorf("ValidateLinkedInJobURL(%q) error code = %d, want 400", tt.url, customErr.Code)
			}
		})
	}
}

func TestValidateLinkedInJobURLNormalizationIsStable(t *testing.T) {
	// All spellings of the same job ID collapse to one canonical form, and
	// validating the canonical form is a no-op.
	first, err := utils.ValidateLinkedInJobURL("linkedin.com/jobs/view/12345")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := utils.ValidateLinkedInJobURL(first)
	if err != nil {
		t.Fatalf("unexpected error re-validating %q: %v", first, err)
	}
	if first != second {
		t.Errorf("normalization not idempotent: %q != %q", first, second)
	}
}

func TestParseLinkedInURLTypes(t *testing.T) {
	tests := []struct {
		url      string
		wantType utils.LinkedInURLType
		wantID   string
	}{
		{"https://www.linkedin.com/jobs/view/999", utils.LinkedInURLTypeJobView, "999"},
		{"https://www.linkedin.com/jobs/collections/top-applicant/?currentJobId=777", utils.LinkedInURLTypeJobCollection, "777"},
		{"https://www.linkedin.com/feed/", utils.LinkedInURLTypeNonJob, ""},
		{"https://example.com/jobs/view/999", utils.LinkedInURLTypeUnknown, ""},
	}

	for _, tt := range tests {
		info, err := utils.ParseLinkedInURL(tt.url)
		if err != nil {
			t.Fatalf("ParseLinkedInURL(%q) returned error: %v", tt.url, err)
		}
		if info.Type != tt.wantType {
			t.Errorf("ParseLinkedInURL(%q) type = %v, want %v", tt.url, info.Type, tt.wantType)
		}
		if info.JobID != tt.wantID {
			t.Errorf("ParseLinkedInURL(%q) job ID = %q, want %q", tt.url, info.JobID, tt.wantID)
		}
	}
}

func TestExtractLinkedInJobID(t *testing.T) {
	id, err := utils.ExtractLinkedInJobID("https://www.linkedin.com/jobs/view/31337")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "31337" {
		t.Errorf("job ID = %q, want %q", id, "31337")
	}

	if _, err := utils.ExtractLinkedInJobID("https://www.linkedin.com/feed/"); err == nil {
		t.Error("expected error for non-job URL, got nil")
	}
}

func TestCustomErrorMessages(t *testing.T) {
	err := utils.NewFetchBlockedError(999, "LinkedIn anti-bot response")
	if got := err.Error(); !strings.Contains(got, "999") {
		t.Errorf("blocked error %q does not name the upstream status", got)
	}
	if err.Code != 400 {
		t.Errorf("blocked error code = %d, want 400", err.Code)
	}

	if code := utils.HTTPStatusForError(utils.NewServiceUnavailableError("provider down")); code != 503 {
		t.Errorf("service unavailable maps to %d, want 503", code)
	}
	if code := utils.HTTPStatusForError(utils.NewParseFailureError("bad json")); code != 422 {
		t.Errorf("parse failure maps to %d, want 422", code)
	}
}
