package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"jobsift-utils/internal/background"
	"jobsift-utils/internal/config"
	"jobsift-utils/internal/logging"
	"jobsift-utils/internal/scraper/workers"
	"jobsift-utils/pkg/models"
	"jobsift-utils/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate = validator.New()

// ExtractJobHandler handles synchronous job extraction requests. The URL is
// validated and normalized before anything touches the network, so malformed
// input is rejected without a single fetch.
func ExtractJobHandler(cfg *config.Config, poolManager *workers.PoolManager) echo.HandlerFunc {
	return func(c echo.Context) error {
		startTime := time.Now()
		requestID := utils.GenerateRequestID()
		logger := logging.GetGlobalLogger()

		var req models.ExtractionRequest
		if err := c.Bind(&req); err != nil {
			logger.Error("Failed to parse extraction request", map[string]interface{}{
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
			logger.Error("Extraction request validation failed", map[string]interface{}{
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

		format, err := req.Format()
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:     "validation_failed",
				Message:   err.Error(),
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		canonicalURL, err := utils.ValidateLinkedInJobURL(req.URL)
		if err != nil {
			logger.Warn("URL validation failed", map[string]interface{}{
				"request_id": requestID,
				"url":        req.URL,
				"error":      err.Error(),
			})
			return pipelineErrorResponse(c, requestID, err)
		}

		logger.Info("Processing extraction request", map[string]interface{}{
			"request_id": requestID,
			"url":        req.URL,
			"canonical":  canonicalURL,
			"format":     format.String(),
		})

		ctx := c.Request().Context()
		jobResult, err := poolManager.SubmitExtraction(ctx, canonicalURL, req.URL, format)
		if err != nil {
			logger.Error("Failed to submit extraction job", map[string]interface{}{
				"request_id": requestID,
				"error":      err.Error(),
			})
			return pipelineErrorResponse(c, requestID, err)
		}

		if jobResult.Error != nil {
			logger.Error("Extraction job failed", map[string]interface{}{
				"request_id": requestID,
				"url":        req.URL,
				"error":      jobResult.Error.Error(),
			})
			return pipelineErrorResponse(c, requestID, jobResult.Error)
		}

		result := jobResult.Result

		logger.Info("Extraction request completed", map[string]interface{}{
			"request_id":      requestID,
			"job_title":       result.JobTitle,
			"company":         result.Company,
			"engine":          jobResult.Engine,
			"used_llm":        jobResult.UsedLLM,
			"processing_time": time.Since(startTime).String(),
		})

		return c.JSON(http.StatusOK, result)
	}
}

// ExtractJobAsyncHandler accepts an extraction request for background
// processing and returns a process ID immediately.
func ExtractJobAsyncHandler(cfg *config.Config, poolManager *workers.PoolManager, taskManager background.TaskManager) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := utils.GenerateRequestID()
		logger := logging.GetGlobalLogger()

		var req models.ExtractionRequest
		if err := c.Bind(&req); err != nil {
			logger.Error("Failed to parse async extraction request", map[string]interface{}{
				"request_id": requestID,
				"error":      err.Error(),
			})
			return c.JSON(http.StatusBadRequest, models.CreateAsyncErrorResponse(
				"invalid_request",
				"Invalid request body: "+err.Error(),
			))
		}

		if err := validate.Struct(&req); err != nil {
			logger.Error("Async extraction request validation failed", map[string]interface{}{
				"request_id": requestID,
				"error":      err.Error(),
			})
			return c.JSON(http.StatusBadRequest, models.CreateAsyncErrorResponse(
				"validation_failed",
				"Request validation failed: "+err.Error(),
			))
		}

		format, err := req.Format()
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.CreateAsyncErrorResponse(
				"validation_failed",
				err.Error(),
			))
		}

		canonicalURL, err := utils.ValidateLinkedInJobURL(req.URL)
		if err != nil {
			logger.Warn("URL validation failed", map[string]interface{}{
				"request_id": requestID,
				"url":        req.URL,
				"error":      err.Error(),
			})
			return c.JSON(http.StatusBadRequest, models.CreateAsyncErrorResponse(
				"validation_failed",
				err.Error(),
			))
		}

		processID := utils.GenerateProcessID()

		logger.Info("Submitting extraction task for background processing", map[string]interface{}{
			"request_id": requestID,
			"process_id": processID,
			"url":        req.URL,
			"format":     format.String(),
		})

		ctx := c.Request().Context()
		if err := taskManager.SubmitExtractTask(ctx, processID, canonicalURL, req.URL, format, poolManager); err != nil {
			logger.Error("Failed to submit background extraction task", map[string]interface{}{
				"request_id": requestID,
				"process_id": processID,
				"error":      err.Error(),
			})
			return c.JSON(http.StatusInternalServerError, models.CreateAsyncErrorResponse(
				"task_submission_failed",
				fmt.Sprintf("Failed to submit extraction task: %v", err),
				processID,
			))
		}

		return c.JSON(http.StatusAccepted, models.CreateAsyncExtractResponse(processID))
	}
}

// ExtractTaskStatusHandler reports the status of a background extraction
// task by process ID.
func ExtractTaskStatusHandler(taskManager background.TaskManager) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := utils.GenerateRequestID()
		logger := logging.GetGlobalLogger()

		processID := c.Param("processId")
		if processID == "" {
			return c.JSON(http.StatusBadRequest, models.CreateAsyncErrorResponse(
				"missing_process_id",
				"Process ID parameter is required",
			))
		}

		taskResult, err := taskManager.GetTaskResult(c.Request().Context(), processID)
		if err != nil {
			if errors.Is(err, background.ErrTaskNotFound) {
				return c.JSON(http.StatusNotFound, models.CreateAsyncErrorResponse(
					"task_not_found",
					"No task found for process ID: "+processID,
					processID,
				))
			}
			logger.Error("Failed to retrieve task result", map[string]interface{}{
				"request_id": requestID,
				"process_id": processID,
				"error":      err.Error(),
			})
			return c.JSON(http.StatusInternalServerError, models.CreateAsyncErrorResponse(
				"task_lookup_failed",
				"Failed to retrieve task status",
				processID,
			))
		}

		response := models.AsyncTaskStatusResponse{
			ProcessID:      taskResult.ProcessID,
			Status:         models.AsyncStatus(taskResult.Status),
			Error:          taskResult.Error,
			CreatedAt:      taskResult.CreatedAt,
			CompletedAt:    taskResult.CompletedAt,
			ProcessingTime: taskResult.ProcessingTime,
			Metadata:       taskResult.Metadata,
		}

		if data, ok := taskResult.Data.(*background.ExtractTaskData); ok {
			response.Data = &models.AsyncExtractCompletionData{
				Result:  data.Result,
				Engine:  data.Engine,
				UsedLLM: data.UsedLLM,
			}
		} else if taskResult.Data != nil {
			response.Data = taskResult.Data
		}

		return c.JSON(http.StatusOK, response)
	}
}
