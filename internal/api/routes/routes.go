package routes

import (
	"net/http"
	"time"

	"jobsift-utils/internal/api/handlers"
	"jobsift-utils/internal/api/middleware"
	"jobsift-utils/internal/background"
	"jobsift-utils/internal/config"
	"jobsift-utils/internal/llm"
	"jobsift-utils/internal/scraper/workers"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

// SetupRoutes configures all API routes
func SetupRoutes(e *echo.Echo, cfg *config.Config, poolManager *workers.PoolManager, llmManager *llm.Manager, taskManager background.TaskManager) {
	// Global middleware
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(middleware.CORSConfig())
	e.Use(middleware.RequestValidation())
	// Standard timeout for most endpoints, extra headroom for completion-bound ones
	e.Use(middleware.SelectiveTimeoutConfig(cfg.Server.ReadTimeout, 2*time.Minute))

	// Root route
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"message": "Hello, World!",
		})
	})

	// Health check routes
	health := e.Group("/health")
	{
		health.GET("", handlers.HealthHandler)
		health.GET("/live", handlers.LivenessHandler)
		health.GET("/ready", handlers.ReadinessHandler(poolManager, llmManager))
		health.GET("/workers", handlers.WorkerHealthHandler(poolManager))
	}

	// Status route
	e.GET("/status", handlers.StatusHandler(poolManager, llmManager, taskManager))

	// Chat completion passthrough
	e.POST("/chat/completions", handlers.ChatCompletionsHandler(cfg, llmManager))

	// Job extraction routes; /extract/job-description is kept as an alias
	// for clients that predate the /linkedin/job path
	extractHandler := handlers.ExtractJobHandler(cfg, poolManager)
	e.POST("/linkedin/job", extractHandler)
	e.POST("/extract/job-description", extractHandler)

	// Async extraction routes
	e.POST("/linkedin/job/async", handlers.ExtractJobAsyncHandler(cfg, poolManager, taskManager))
	e.GET("/linkedin/job/async/:processId", handlers.ExtractTaskStatusHandler(taskManager))

	// API v1 routes
	v1 := e.Group("/api/v1")
	{
		// Worker monitoring routes
		workers := v1.Group("/workers")
		{
			workers.GET("/stats", handlers.WorkerStatsHandler(poolManager))
			workers.GET("/status", handlers.DetailedWorkerStatusHandler(poolManager))
		}

		// Domain-specific routes
		domains := v1.Group("/domains")
		{
			domains.GET("/:domain/stats", handlers.DomainStatsHandler(poolManager))
		}
	}
}
