package models

import "time"

// APIStatus is the fixed liveness body served by GET /health. It reports
// process liveness only and never consults downstream dependencies.
type APIStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// HealthResponse represents the detailed health/status check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Uptime    time.Duration     `json:"uptime"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}
