package handlers

import (
	"net/http"
	"time"

	"jobsift-utils/pkg/models"
	"jobsift-utils/pkg/utils"

	"github.com/labstack/echo/v4"
)

// errorLabel maps the HTTP status carried by a pipeline error to the stable
// machine-readable code used in error envelopes.
func errorLabel(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "validation_failed"
	case http.StatusRequestTimeout:
		return "request_timeout"
	case http.StatusUnprocessableEntity:
		return "unprocessable_response"
	case http.StatusTooManyRequests:
		return "rate_limited"
	case http.StatusServiceUnavailable:
		return "service_unavailable"
	default:
		return "internal_error"
	}
}

// pipelineErrorResponse writes the standard error envelope for a failure
// surfaced by the extraction or completion pipeline. Pipeline errors carry
// their own HTTP status; anything else maps to 500.
func pipelineErrorResponse(c echo.Context, requestID string, err error) error {
	status := utils.HTTPStatusForError(err)
	return c.JSON(status, models.ErrorResponse{
		Error:     errorLabel(status),
		Message:   err.Error(),
		RequestID: requestID,
		Timestamp: time.Now(),
	})
}
