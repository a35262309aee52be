package handlers

import (
	"net/http"
	"time"

	"jobsift-utils/internal/background"
	"jobsift-utils/internal/llm"
	"jobsift-utils/internal/logging"
	"jobsift-utils/internal/scraper/workers"
	"jobsift-utils/pkg/models"
	"jobsift-utils/pkg/utils"

	"github.com/labstack/echo/v4"
)

var startTime = time.Now()

// HealthHandler serves the liveness check. It reports that the process is
// up and serving requests and never consults downstream dependencies, so
// it answers 200 even when the completion provider is degraded.
func HealthHandler(c echo.Context) error {
	requestID := utils.GenerateRequestID()
	logger := logging.GetGlobalLogger()

	logger.Debug("Health check requested", map[string]interface{}{"request_id": requestID})

	return c.JSON(http.StatusOK, models.APIStatus{
		Status:  "healthy",
		Message: "API is running",
	})
}

// LivenessHandler handles liveness probe requests
func LivenessHandler(c echo.Context) error {
	response := models.HealthResponse{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   "1.0.0",
		Uptime:    time.Since(startTime),
	}

	return c.JSON(http.StatusOK, response)
}

// ReadinessHandler reports whether the service can take extraction traffic.
// The worker pool must be running; a degraded completion provider is
// reported but does not fail readiness, since raw extraction still works.
func ReadinessHandler(poolManager *workers.PoolManager, llmManager *llm.Manager) echo.HandlerFunc {
	return func(c echo.Context) error {
		checks := map[string]string{"api": "ok"}

		workersReady := poolManager.IsHealthy()
		if workersReady {
			checks["workers"] = "ok"
		} else {
			checks["workers"] = "unavailable"
		}

		if llmManager.IsHealthy() {
			checks["llm"] = "ok"
		} else {
			checks["llm"] = "degraded"
		}

		status := "ready"
		httpStatus := http.StatusOK
		if !workersReady {
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
		}

		return c.JSON(httpStatus, models.HealthResponse{
			Status:    status,
			Timestamp: time.Now(),
			Version:   "1.0.0",
			Uptime:    time.Since(startTime),
			Checks:    checks,
		})
	}
}

// StatusHandler provides detailed service status
func StatusHandler(poolManager *workers.PoolManager, llmManager *llm.Manager, taskManager background.TaskManager) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := utils.GenerateRequestID()
		logger := logging.GetGlobalLogger()

		logger.Debug("Status check requested", map[string]interface{}{"request_id": requestID})

		checks := map[string]string{"api": "operational"}

		if poolManager.IsHealthy() {
			checks["workers"] = "operational"
		} else {
			checks["workers"] = "unavailable"
		}

		if llmManager.IsHealthy() {
			checks["llm"] = "operational"
		} else {
			checks["llm"] = "degraded"
		}
		checks["llm_provider"] = llmManager.GetProviderName()

		if taskManager.IsHealthy() {
			checks["background_tasks"] = "operational"
		} else {
			checks["background_tasks"] = "unavailable"
		}

		response := models.HealthResponse{
			Status:    "operational",
			Timestamp: time.Now(),
			Version:   "1.0.0",
			Uptime:    time.Since(startTime),
			Checks:    checks,
		}

		return c.JSON(http.StatusOK, response)
	}
}
