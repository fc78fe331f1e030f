package thinkstream

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/mudler/thinkstream/core/application"
	"github.com/mudler/thinkstream/core/http/middleware"
	"github.com/mudler/thinkstream/core/schema"
	"github.com/mudler/thinkstream/pkg/reasoning"
	"github.com/mudler/xlog"
)

// ExtractEndpoint pulls every reasoning block out of a complete model output
// @Summary Extract reasoning blocks from text
// @Param request body schema.ExtractRequest true "query params"
// @Success 200 {object} schema.ExtractResponse "Response"
// @Router /v1/reasoning/extract [post]
func ExtractEndpoint(app *application.Application) echo.HandlerFunc {
	return func(c echo.Context) error {
		var text string
		if isPlainText(c) {
			body, err := readPlainText(c)
			if err != nil {
				return err
			}
			text = body
		} else {
			input := new(schema.ExtractRequest)
			if err := c.Bind(input); err != nil {
				return err
			}
			text = input.Text
		}

		resp := schema.NewExtractResponse(app.Runtime().Registry.Analyze(text))
		resp.ID = middleware.GetCorrelationID(c)
		xlog.Debug("Extract request", "id", resp.ID, "blocks", len(resp.Blocks))
		return c.JSON(http.StatusOK, resp)
	}
}

// LineEndpoint classifies a single line and returns its reasoning content
// @Summary Classify one line
// @Param request body schema.LineRequest true "query params"
// @Success 200 {object} schema.LineResponse "Response"
// @Router /v1/reasoning/line [post]
func LineEndpoint(app *application.Application) echo.HandlerFunc {
	return func(c echo.Context) error {
		input := new(schema.LineRequest)
		if err := c.Bind(input); err != nil {
			return err
		}

		registry := app.Runtime().Registry
		state := registry.Classify(input.Line)
		content := strings.TrimSpace(input.Line)
		if state != reasoning.StateNone {
			content = registry.Extract(input.Line)
		}
		return c.JSON(http.StatusOK, schema.LineResponse{State: state, Content: content})
	}
}

// FormatsEndpoint lists the reasoning formats currently recognised
// @Summary List reasoning formats
// @Success 200 {object} []reasoning.TagFormat "Response"
// @Router /v1/reasoning/formats [get]
func FormatsEndpoint(app *application.Application) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, app.Runtime().Registry.Formats())
	}
}

// StatsEndpoint returns the in-memory request statistics
// @Summary Request statistics
// @Success 200 {object} services.StatsSnapshot "Response"
// @Router /v1/reasoning/stats [get]
func StatsEndpoint(app *application.Application) echo.HandlerFunc {
	return func(c echo.Context) error {
		metrics := app.MetricsService()
		if metrics == nil {
			return echo.NewHTTPError(http.StatusNotFound, "metrics are disabled")
		}
		return c.JSON(http.StatusOK, metrics.Stats().Snapshot())
	}
}
