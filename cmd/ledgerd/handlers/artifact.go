package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/remixlabs/ledger/cmd/ledgerd/repository"
	"github.com/remixlabs/ledger/cmd/ledgerd/service"
	"github.com/remixlabs/ledger/common/bootstrap"
	"github.com/remixlabs/ledger/common/models"
	"github.com/remixlabs/ledger/common/tier"
)

// ArtifactHandler handles artifact lifecycle operations
type ArtifactHandler struct {
	components *bootstrap.Components
	ingest     *service.IngestService
	remix      *service.RemixService
	rights     *service.RightsService
	search     *service.SearchService
	analytics  *service.AnalyticsService
}

// NewArtifactHandler creates a new artifact handler
func NewArtifactHandler(
	components *bootstrap.Components,
	ingest *service.IngestService,
	remix *service.RemixService,
	rights *service.RightsService,
	search *service.SearchService,
	analytics *service.AnalyticsService,
) *ArtifactHandler {
	return &ArtifactHandler{
		components: components,
		ingest:     ingest,
		remix:      remix,
		rights:     rights,
		search:     search,
		analytics:  analytics,
	}
}

type ingestRequest struct {
	FileRef string `json:"file_ref"`
	Name    string `json:"name"`
	Actor   string `json:"actor"`
	Content []byte `json:"content"`
}

// Ingest creates a new artifact from an upload
// POST /api/v1/artifacts
func (h *ArtifactHandler) Ingest(c echo.Context) error {
	var req ingestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" || req.Actor == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name and actor are required")
	}

	artifactID, err := h.ingest.Ingest(c.Request().Context(), service.IngestRequest{
		FileRef: req.FileRef,
		Name:    req.Name,
		Actor:   req.Actor,
		Content: req.Content,
	})
	if err != nil {
		h.components.Logger.Warn("ingestion rejected", "actor", req.Actor, "name", req.Name, "error", err)
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, map[string]string{
		"artifact_id": artifactID,
	})
}

// Get retrieves an artifact by id
// GET /api/v1/artifacts/:id
func (h *ArtifactHandler) Get(c echo.Context) error {
	artifact, err := h.search.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, artifact)
}

// List searches artifacts with optional filters
// GET /api/v1/artifacts?q=&actor=&type=&tier=&expr=
func (h *ArtifactHandler) List(c echo.Context) error {
	query := repository.SearchQuery{
		Name:  c.QueryParam("q"),
		Actor: c.QueryParam("actor"),
		Type:  models.MediaKind(c.QueryParam("type")),
		Tier:  tier.Tier(c.QueryParam("tier")),
	}

	if query.Tier != "" && !tier.Valid(query.Tier) {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown tier filter")
	}

	artifacts, err := h.search.Search(c.Request().Context(), query, c.QueryParam("expr"))
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, artifacts)
}

type remixRequest struct {
	Actor         string `json:"actor"`
	NewArtifactID string `json:"new_artifact_id"`
}

// RecordRemix appends a lineage entry to the origin's history
// POST /api/v1/artifacts/:id/remixes
func (h *ArtifactHandler) RecordRemix(c echo.Context) error {
	var req remixRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Actor == "" || req.NewArtifactID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "actor and new_artifact_id are required")
	}

	originID := c.Param("id")
	if err := h.remix.Record(c.Request().Context(), originID, req.Actor, req.NewArtifactID); err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

// Crown certifies a remix with its resolved tier
// POST /api/v1/artifacts/:id/crown
func (h *ArtifactHandler) Crown(c echo.Context) error {
	var req remixRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Actor == "" || req.NewArtifactID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "actor and new_artifact_id are required")
	}

	originID := c.Param("id")
	resolvedTier, err := h.remix.Crown(c.Request().Context(), originID, req.Actor, req.NewArtifactID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"tier": resolvedTier,
	})
}

type graveyardRequest struct {
	Actor string `json:"actor"`
}

// Graveyard retires an artifact
// POST /api/v1/artifacts/:id/graveyard
func (h *ArtifactHandler) Graveyard(c echo.Context) error {
	var req graveyardRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Actor == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "actor is required")
	}

	if err := h.remix.Graveyard(c.Request().Context(), c.Param("id"), req.Actor); err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

// Lineage returns the direct remix history of an artifact
// GET /api/v1/artifacts/:id/lineage
func (h *ArtifactHandler) Lineage(c echo.Context) error {
	entries, err := h.analytics.Lineage(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, entries)
}

// Playlist returns the resolved one-level lineage sequence from a root
// GET /api/v1/artifacts/:id/playlist
func (h *ArtifactHandler) Playlist(c echo.Context) error {
	playlist, err := h.analytics.Playlist(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, playlist)
}

// Folder returns the canonical storage path segment for an artifact
// GET /api/v1/artifacts/:id/folder
func (h *ArtifactHandler) Folder(c echo.Context) error {
	artifact, err := h.search.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"path": models.Folderize(artifact),
	})
}

// Compare returns the side-by-side diff of two artifacts
// GET /api/v1/artifacts/compare?a=&b=
func (h *ArtifactHandler) Compare(c echo.Context) error {
	idA, idB := c.QueryParam("a"), c.QueryParam("b")
	if idA == "" || idB == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query parameters a and b are required")
	}

	comparison, err := h.analytics.Compare(c.Request().Context(), idA, idB)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, comparison)
}
