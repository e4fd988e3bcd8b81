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

// Setup initializes all service components.
// This is the main entry point for the ledger binaries.
func Setup(ctx context.Context, serviceName string, opts ...Option) (*Components, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	components := &Components{
		cleanupFuncs: make([]func() error, 0),
	}

	// 1. Load configuration
	var err error
	if options.customConfig != nil {
		components.Config = options.customConfig
	} else {
		components.Config, err = config.Load(serviceName)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	// 2. Initialize logger
	if options.customLogger != nil {
		components.Logger = options.customLogger
	} else {
		components.Logger = logger.New(
			components.Config.Service.LogLevel,
			components.Config.Service.LogFormat,
		)
	}

	components.Logger.Info("initializing service",
		"service", serviceName,
		"environment", components.Config.Service.Environment,
	)

	// 3. Initialize database
	if !options.skipDB {
		components.Logger.Info("connecting to database")
		components.DB, err = db.New(ctx, components.Config, components.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		components.addCleanup(func() error {
			components.Logger.Info("closing database connection")
			components.DB.Close()
			return nil
		})

		if options.dbInitHook != nil {
			components.Logger.Info("running database init hook")
			if err := options.dbInitHook(components.DB); err != nil {
				components.Shutdown(ctx)
				return nil, fmt.Errorf("database init hook failed: %w", err)
			}
		}
	}

	// 4. Initialize event queue
	if !options.skipQueue {
		components.Logger.Info("initializing queue",
			"type", components.Config.Queue.Type,
		)

		switch components.Config.Queue.Type {
		case "memory":
			components.Queue = queue.NewMemoryQueue(components.Logger)
		default:
			return nil, fmt.Errorf("unknown queue type: %s", components.Config.Queue.Type)
		}

		components.addCleanup(func() error {
			components.Logger.Info("closing queue")
			return components.Queue.Close()
		})
	}

	// 5. Initialize cache
	if !options.skipCache && components.Config.Cache.Enabled {
		components.Logger.Info("initializing cache")

		components.Cache = cache.NewMemoryCache(components.Logger)

		components.addCleanup(func() error {
			components.Logger.Info("closing cache")
			return components.Cache.Close()
		})
	}

	// 6. Initialize telemetry
	if !options.skipTelemetry && components.Config.Telemetry.EnablePprof {
		components.Logger.Info("initializing telemetry")
		components.Telemetry = telemetry.New(
			components.Config.Telemetry.PprofPort,
			components.Logger,
		)

		if err := components.Telemetry.Start(ctx); err != nil {
			// Telemetry failure never blocks startup
			components.Logger.Warn("failed to start telemetry", "error", err)
		}
	}

	components.Logger.Info("service initialization complete",
		"service", serviceName,
		"db", components.DB != nil,
		"queue", components.Queue != nil,
		"cache", components.Cache != nil,
	)

	return components, nil
}

// MustSetup is like Setup but panics on error
func MustSetup(ctx context.Context, serviceName string, opts ...Option) *Components {
	components, err := Setup(ctx, serviceName, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to setup service %s: %v", serviceName, err))
	}
	return components
}
