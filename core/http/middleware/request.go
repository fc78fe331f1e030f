package middleware

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type correlationIDKeyType string

// CorrelationIDKey to track request across process boundary
const CorrelationIDKey correlationIDKeyType = "correlationID"

const CorrelationIDHeader = "X-Correlation-ID"

// CorrelationID reuses the caller's X-Correlation-ID or generates a new one,
// echoes it in the response and stores it in the request context.
func CorrelationID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			correlationID := c.Request().Header.Get(CorrelationIDHeader)
			if correlationID == "" {
				correlationID = uuid.New().String()
			}
			c.Response().Header().Set(CorrelationIDHeader, correlationID)
			c.Set(string(CorrelationIDKey), correlationID)

			ctx := context.WithValue(c.Request().Context(), CorrelationIDKey, correlationID)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// GetCorrelationID returns the ID set by CorrelationID, or a fresh one when
// the middleware did not run.
func GetCorrelationID(c echo.Context) string {
	if id, ok := c.Get(string(CorrelationIDKey)).(string); ok && id != "" {
		return id
	}
	return uuid.New().String()
}
