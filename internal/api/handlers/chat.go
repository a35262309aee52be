package handlers

import (
	"net/http"
	"time"

	"jobsift-utils/internal/config"
	"jobsift-utils/internal/llm"
	"jobsift-utils/internal/logging"
	"jobsift-utils/pkg/models"
	"jobsift-utils/pkg/utils"

	"github.com/labstack/echo/v4"
)

// ChatCompletionsHandler handles the POST /chat/completions passthrough.
// The request is validated, filled with defaults and forwarded verbatim to
// the configured completion provider.
func ChatCompletionsHandler(cfg *config.Config, llmManager *llm.Manager) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := utils.GenerateRequestID()
		logger := logging.GetGlobalLogger()

		var req models.ChatCompletionRequest
		if err := c.Bind(&req); err != nil {
			logger.Error("Failed to parse chat completion request", map[string]interface{}{
				"request_id": requestID,
				"error":      err.Error(),
			})
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:     "invalid_request",
				Message:   "Invalid request body: " + err.Error(),
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		if err := validate.Struct(&req); err != nil {
			logger.Error("Chat completion request validation failed", map[string]interface{}{
				"request_id": requestID,
				"error":      err.Error(),
			})
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:     "validation_failed",
				Message:   err.Error(),
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		req.ApplyDefaults(cfg.LLM.Model)

		logger.Info("Processing chat completion request", map[string]interface{}{
			"request_id": requestID,
			"model":      req.Model,
			"messages":   len(req.Messages),
		})

		response, err := llmManager.Complete(c.Request().Context(), &req)
		if err != nil {
			logger.Error("Chat completion failed", map[string]interface{}{
				"request_id": requestID,
				"error":      err.Error(),
			})
			return pipelineErrorResponse(c, requestID, err)
		}

		logger.Info("Chat completion request completed", map[string]interface{}{
			"request_id":   requestID,
			"model":        response.Model,
			"total_tokens": response.Usage.TotalTokens,
		})

		return c.JSON(http.StatusOK, response)
	}
}
