package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/remixlabs/ledger/cmd/ledgerd/service"
	"github.com/remixlabs/ledger/common/bootstrap"
)

// AnalyticsHandler serves the read-only analytics and export endpoints
type AnalyticsHandler struct {
	components *bootstrap.Components
	analytics  *service.AnalyticsService
	snapshot   *service.SnapshotService
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(
	components *bootstrap.Components,
	analytics *service.AnalyticsService,
	snapshot *service.SnapshotService,
) *AnalyticsHandler {
	return &AnalyticsHandler{
		components: components,
		analytics:  analytics,
		snapshot:   snapshot,
	}
}

// Heatmap returns remix counts per actor, descending
// GET /api/v1/analytics/heatmap
func (h *AnalyticsHandler) Heatmap(c echo.Context) error {
	heatmap, err := h.analytics.Heatmap(c.Request().Context())
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, heatmap)
}

// TierAnalytics returns artifact counts per tier, including zero counts
// GET /api/v1/analytics/tiers
func (h *AnalyticsHandler) TierAnalytics(c echo.Context) error {
	counts, err := h.analytics.TierAnalytics(c.Request().Context())
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, counts)
}

// TierEvolution returns an actor's chronological tier timeline
// GET /api/v1/analytics/evolution/:actor
func (h *AnalyticsHandler) TierEvolution(c echo.Context) error {
	evolution, err := h.analytics.TierEvolution(c.Request().Context(), c.Param("actor"))
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, evolution)
}

// Snapshot exports the full ledger
// GET /api/v1/snapshot
func (h *AnalyticsHandler) Snapshot(c echo.Context) error {
	payload, err := h.snapshot.Export(c.Request().Context())
	if err != nil {
		return httpError(err)
	}

	return c.JSONBlob(http.StatusOK, payload)
}
