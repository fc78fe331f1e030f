package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/mudler/thinkstream/core/services"
)

// Metrics records the duration and outcome of every API request.
func Metrics(metrics *services.MetricsService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			if shouldSkipMetrics(path) {
				return next(c)
			}

			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				status = http.StatusInternalServerError
				var he *echo.HTTPError
				if errors.As(err, &he) {
					status = he.Code
				}
			}
			metrics.ObserveAPICall(c.Request().Method, categorizeEndpoint(path), status, time.Since(start))
			return err
		}
	}
}

func shouldSkipMetrics(path string) bool {
	switch path {
	case "/metrics", "/healthz", "/readyz":
		return true
	}
	return false
}

// categorizeEndpoint maps request paths to endpoint categories
func categorizeEndpoint(path string) string {
	if rest, ok := strings.CutPrefix(path, "/v1/reasoning/"); ok {
		if name, _, _ := strings.Cut(rest, "/"); name != "" {
			return name
		}
	}

	parts := strings.Split(strings.Trim(path, "/"), "/")
	if parts[0] != "" {
		return parts[0]
	}
	return "unknown"
}
