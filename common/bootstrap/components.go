package bootstrap

import (
	"context"
	"fmt"

	"github.com/remixlabs/ledger/common/cache"
	"github.com/remixlabs/ledger/common/config"
	"github.com/remixlabs/ledger/common/db"
	"github.com/remixlabs/ledger/common/logger"
	"github.com/remixlabs/ledger/common/queue"
	"github.com/remixlabs/ledger/common/telemetry"
)

// Components holds all initialized service dependencies
type Components struct {
	Config    *config.Config
	Logger    *logger.Logger
	DB        *db.DB
	Queue     queue.Queue
	Cache     cache.Cache
	Telemetry *telemetry.Telemetry

	cleanupFuncs []func() error
}

// Shutdown performs graceful shutdown of all components.
// Should be called with defer after Setup().
func (c *Components) Shutdown(ctx context.Context) error {
	c.Logger.Info("shutting down components")

	var errs []error

	// Cleanup in reverse order (LIFO)
	for i := len(c.cleanupFuncs) - 1; i >= 0; i-- {
		if err := c.cleanupFuncs[i](); err != nil {
			errs = append(errs, err)
			c.Logger.Error("cleanup error", "error", err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}

	c.Logger.Info("shutdown complete")
	return nil
}

// Health checks health of all components
func (c *Components) Health(ctx context.Context) error {
	if c.DB != nil {
		if err := c.DB.Health(ctx); err != nil {
			return fmt.Errorf("database unhealthy: %w", err)
		}
	}

	// Memory queue and cache are always healthy

	return nil
}

// addCleanup registers a cleanup function
func (c *Components) addCleanup(fn func() error) {
	c.cleanupFuncs = append(c.cleanupFuncs, fn)
}
