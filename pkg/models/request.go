package models

// ExtractionRequest represents the request payload for extracting a job posting
type ExtractionRequest struct {
	URL           string `json:"url" validate:"required"`
	ExtractFormat string `json:"extract_format,omitempty" validate:"omitempty,oneof=structured raw"`
}

// Format resolves the wire-level extract_format into its tagged form,
// defaulting to structured when the field was omitted.
func (r *ExtractionRequest) Format() (OutputFormat, error) {
	return ParseOutputFormat(r.ExtractFormat)
}
