package models

import "fmt"

// OutputFormat selects how the extraction pipeline shapes job_description.
// Parsing it up front makes an invalid format a construction-time error
// instead of a string compared deep inside the pipeline.
type OutputFormat string

const (
	// OutputFormatStructured asks the completion service to restructure the
	// posting into titled markdown sections.
	OutputFormatStructured OutputFormat = "structured"

	// OutputFormatRaw returns the trimmed page text untouched; the completion
	// service is never called on this path.
	OutputFormatRaw OutputFormat = "raw"
)

// ParseOutputFormat parses a wire-level extract_format value. The empty
// string means the caller omitted the field and gets the structured default.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch s {
	case "", string(OutputFormatStructured):
		return OutputFormatStructured, nil
	case string(OutputFormatRaw):
		return OutputFormatRaw, nil
	default:
		return "", fmt.Errorf("unknown extract format: %q", s)
	}
}

// String returns the wire representation of the format
func (f OutputFormat) String() string {
	return string(f)
}

// Job holds the structured fields the completion service extracts from a
// job-posting page. Field tags match the HTTP response shape so the model's
// JSON answer unmarshals straight into it.
type Job struct {
	Title       string `json:"job_title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Description string `json:"job_description"`
}

// ExtractionResult is the payload returned for a completed extraction.
// ExtractedURL always echoes the url from the originating request; the
// canonical normalized URL is only used internally for the fetch.
type ExtractionResult struct {
	JobTitle       string  `json:"job_title,omitempty"`
	Company        string  `json:"company,omitempty"`
	Location       string  `json:"location,omitempty"`
	JobDescription string  `json:"job_description"`
	ExtractedURL   string  `json:"extracted_url"`
	ProcessingTime float64 `json:"processing_time"`
}
