package routes

import (
	"github.com/labstack/echo/v4"
	"github.com/mudler/thinkstream/core/application"
	"github.com/mudler/thinkstream/core/http/endpoints/thinkstream"
)

func RegisterReasoningRoutes(router *echo.Echo, app *application.Application) {
	v1 := router.Group("/v1/reasoning")
	v1.POST("/classify", thinkstream.ClassifyEndpoint(app))
	v1.POST("/extract", thinkstream.ExtractEndpoint(app))
	v1.POST("/line", thinkstream.LineEndpoint(app))
	v1.GET("/formats", thinkstream.FormatsEndpoint(app))

	if metrics := app.MetricsService(); metrics != nil {
		v1.GET("/stats", thinkstream.StatsEndpoint(app))
		router.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	}
}
