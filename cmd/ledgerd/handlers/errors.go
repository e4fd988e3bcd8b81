package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/remixlabs/ledger/common/models"
	"github.com/remixlabs/ledger/common/tier"
)

// httpError maps the ledger error taxonomy onto HTTP status codes.
// DuplicateContent and Forbidden are business outcomes and must stay
// distinguishable from server errors.
func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "artifact not found")
	case errors.Is(err, models.ErrDuplicateContent):
		return echo.NewHTTPError(http.StatusConflict, "duplicate content for actor")
	case errors.Is(err, models.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, "operation forbidden")
	case errors.Is(err, models.ErrAlreadyCrowned):
		return echo.NewHTTPError(http.StatusConflict, "artifact already crowned")
	case errors.Is(err, models.ErrStoreUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "store unavailable, retry with backoff")
	case errors.Is(err, tier.ErrUnknownTier):
		return echo.NewHTTPError(http.StatusInternalServerError, "tier outside the fixed hierarchy")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
