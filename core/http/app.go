package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/mudler/thinkstream/core/application"
	httpMiddleware "github.com/mudler/thinkstream/core/http/middleware"
	"github.com/mudler/thinkstream/core/http/routes"
	"github.com/mudler/thinkstream/core/schema"

	"github.com/mudler/xlog"
)

// @title thinkstream API
// @version 1.0.0
// @description Splits LLM output into reasoning and structured payload.
// @BasePath /

func API(application *application.Application) (*echo.Echo, error) {
	e := echo.New()

	// Set body limit
	if application.ApplicationConfig().UploadLimitMB > 0 {
		e.Use(middleware.BodyLimit(fmt.Sprintf("%dM", application.ApplicationConfig().UploadLimitMB)))
	}

	// Set error handler
	if !application.ApplicationConfig().OpaqueErrors {
		e.HTTPErrorHandler = func(err error, c echo.Context) {
			if c.Response().Committed {
				return
			}
			code := http.StatusInternalServerError
			message := err.Error()
			var he *echo.HTTPError
			if errors.As(err, &he) {
				code = he.Code
				if msg, ok := he.Message.(string); ok {
					message = msg
				}
			}

			c.JSON(code, schema.ErrorResponse{
				Error: &schema.APIError{Message: message, Code: code},
			})
		}
	} else {
		e.HTTPErrorHandler = func(err error, c echo.Context) {
			if c.Response().Committed {
				return
			}
			code := http.StatusInternalServerError
			var he *echo.HTTPError
			if errors.As(err, &he) {
				code = he.Code
			}
			c.NoContent(code)
		}
	}

	// Hide banner
	e.HideBanner = true
	e.HidePort = true

	e.Use(httpMiddleware.CorrelationID())

	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			start := time.Now()
			err := next(c)
			xlog.Info("HTTP request",
				"method", req.Method,
				"path", req.URL.Path,
				"status", c.Response().Status,
				"duration", time.Since(start),
				"id", c.Response().Header().Get(httpMiddleware.CorrelationIDHeader))
			return err
		}
	})

	// Recover middleware
	if !application.ApplicationConfig().Debug {
		e.Use(middleware.Recover())
	}

	// Metrics middleware
	if metricsService := application.MetricsService(); metricsService != nil {
		e.Use(httpMiddleware.Metrics(metricsService))
	}

	routes.HealthRoutes(e)
	routes.RegisterReasoningRoutes(e, application)

	return e, nil
}
