package middleware

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// extendedTimeoutPaths are the routes that wait on the completion service
// and therefore need more headroom than the standard request timeout.
var extendedTimeoutPaths = []string{
	"/chat/completions",
	"/linkedin/job",
	"/extract/job-description",
}

// TimeoutConfig returns timeout middleware configuration
func TimeoutConfig(timeout time.Duration) echo.MiddlewareFunc {
	return middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: timeout,
	})
}

// SelectiveTimeoutConfig applies the standard timeout to most endpoints and
// an extended timeout to the completion-bound ones. Async submission routes
// return immediately, so only the synchronous paths get the extension.
func SelectiveTimeoutConfig(standard, extended time.Duration) echo.MiddlewareFunc {
	standardTimeout := TimeoutConfig(standard)
	extendedTimeout := TimeoutConfig(extended)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		standardNext := standardTimeout(next)
		extendedNext := extendedTimeout(next)

		return func(c echo.Context) error {
			if needsExtendedTimeout(c.Request().URL.Path) {
				return extendedNext(c)
			}
			return standardNext(c)
		}
	}
}

func needsExtendedTimeout(path string) bool {
	path = strings.TrimRight(path, "/")
	for _, p := range extendedTimeoutPaths {
		if path == p {
			return true
		}
	}
	return false
}
