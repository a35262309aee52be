package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// CustomError represents a custom application error. Code is the HTTP status
// the error maps to when it reaches a handler.
type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func (e *CustomError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	return e.Message
}

// AsCustomError unwraps err into a *CustomError if one is in the chain
func AsCustomError(err error) (*CustomError, bool) {
	var customErr *CustomError
	if errors.As(err, &customErr) {
		return customErr, true
	}
	return nil, false
}

// HTTPStatusForError returns the status code an error maps to, defaulting
// to 500 for errors that carry no code of their own
func HTTPStatusForError(err error) int {
	if customErr, ok := AsCustomError(err); ok {
		return customErr.Code
	}
	return http.StatusInternalServerError
}

// Common error constructors

func NewBadRequestError(message string) *CustomError {
	return &CustomError{
		Code:    http.StatusBadRequest,
		Message: message,
	}
}

func NewInternalServerError(message string) *CustomError {
	return &CustomError{
		Code:    http.StatusInternalServerError,
		Message: message,
	}
}

func NewTimeoutError(message string) *CustomError {
	return &CustomError{
		Code:    http.StatusRequestTimeout,
		Message: message,
	}
}

func NewValidationError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusBadRequest,
		Message: "URL validation failed",
		Detail:  detail,
	}
}

// NewNotJobPostingError returns an error when the URL doesn't point at a job posting
func NewNotJobPostingError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusBadRequest,
		Message: "URL is not a job posting",
		Detail:  detail,
	}
}

// Fetch errors. All map to 400: the request was well-formed but the page
// could not be retrieved, and retrying identically will not fix it.

func NewFetchNetworkError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusBadRequest,
		Message: "Page fetch failed",
		Detail:  detail,
	}
}

func NewFetchBlockedError(statusCode int, detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusBadRequest,
		Message: fmt.Sprintf("Page fetch blocked by target site (HTTP %d)", statusCode),
		Detail:  detail,
	}
}

func NewFetchStatusError(statusCode int, detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusBadRequest,
		Message: fmt.Sprintf("Page fetch returned HTTP %d", statusCode),
		Detail:  detail,
	}
}

func NewEmptyPageError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusBadRequest,
		Message: "Page fetch returned an empty body",
		Detail:  detail,
	}
}

// NewTooManyRequestsError returns an error when per-domain limits refuse a request
func NewTooManyRequestsError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusTooManyRequests,
		Message: "Too many requests for target domain",
		Detail:  detail,
	}
}

// NewServiceBusyError returns an error when the worker pool cannot accept more work
func NewServiceBusyError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusServiceUnavailable,
		Message: "Service is at capacity",
		Detail:  detail,
	}
}

// Completion-service errors

func NewServiceUnavailableError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusServiceUnavailable,
		Message: "Completion service unavailable",
		Detail:  detail,
	}
}

func NewRateLimitedError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusServiceUnavailable,
		Message: "Completion service rate limit exceeded",
		Detail:  detail,
	}
}

func NewParseFailureError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusUnprocessableEntity,
		Message: "Completion service returned unparseable output",
		Detail:  detail,
	}
}
