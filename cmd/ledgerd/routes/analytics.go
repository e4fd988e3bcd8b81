package routes

import (
	"github.com/labstack/echo/v4"
	"github.com/remixlabs/ledger/cmd/ledgerd/container"
	"github.com/remixlabs/ledger/cmd/ledgerd/handlers"
)

// RegisterAnalyticsRoutes registers the analytics and export routes
func RegisterAnalyticsRoutes(e *echo.Echo, c *container.Container) {
	handler := handlers.NewAnalyticsHandler(c.Components, c.Analytics, c.Snapshot)

	g := e.Group("/api/v1")

	g.GET("/analytics/heatmap", handler.Heatmap)
	g.GET("/analytics/tiers", handler.TierAnalytics)
	g.GET("/analytics/evolution/:actor", handler.TierEvolution)
	g.GET("/snapshot", handler.Snapshot)
}
