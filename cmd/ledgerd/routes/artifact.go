package routes

import (
	"github.com/labstack/echo/v4"
	"github.com/remixlabs/ledger/cmd/ledgerd/container"
	"github.com/remixlabs/ledger/cmd/ledgerd/handlers"
)

// RegisterArtifactRoutes registers the artifact lifecycle routes
func RegisterArtifactRoutes(e *echo.Echo, c *container.Container) {
	handler := handlers.NewArtifactHandler(
		c.Components,
		c.Ingest,
		c.Remix,
		c.Rights,
		c.Search,
		c.Analytics,
	)

	g := e.Group("/api/v1")

	g.POST("/artifacts", handler.Ingest)
	g.GET("/artifacts", handler.List)
	// Static route before the :id param so "compare" is never an id
	g.GET("/artifacts/compare", handler.Compare)
	g.GET("/artifacts/:id", handler.Get)
	g.POST("/artifacts/:id/remixes", handler.RecordRemix)
	g.POST("/artifacts/:id/crown", handler.Crown)
	g.POST("/artifacts/:id/graveyard", handler.Graveyard)
	g.GET("/artifacts/:id/lineage", handler.Lineage)
	g.GET("/artifacts/:id/playlist", handler.Playlist)
	g.GET("/artifacts/:id/folder", handler.Folder)
}
