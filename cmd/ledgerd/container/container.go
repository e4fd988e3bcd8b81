package container

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/remixlabs/ledger/cmd/ledgerd/repository"
	"github.com/remixlabs/ledger/cmd/ledgerd/service"
	"github.com/remixlabs/ledger/common/bootstrap"
	"github.com/remixlabs/ledger/common/cache"
	rediscommon "github.com/remixlabs/ledger/common/redis"
	"github.com/remixlabs/ledger/common/tier"
)

// Container holds all initialized services and repositories
type Container struct {
	Components *bootstrap.Components
	Redis      *rediscommon.Client

	Store        repository.Store
	TierProvider tier.ActorTierProvider

	Events    *service.EventPublisher
	Ingest    *service.IngestService
	Rights    *service.RightsService
	Remix     *service.RemixService
	Search    *service.SearchService
	Analytics *service.AnalyticsService
	Snapshot  *service.SnapshotService
}

// NewContainer initializes all services and repositories once
func NewContainer(ctx context.Context, components *bootstrap.Components) (*Container, error) {
	cfg := components.Config

	// Redis is optional: the ledger runs with the in-process cache when
	// it is disabled.
	var redisClient *rediscommon.Client
	if cfg.Redis.Enabled {
		raw := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := raw.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		redisClient = rediscommon.NewClient(raw, components.Logger)
	}

	store := repository.NewArtifactRepository(components.DB)
	tierProvider := tier.NewStaticProvider(cfg.Tiers.Seed)

	// Aggregate analytics cache against Redis when available, otherwise
	// the bootstrap memory cache.
	var analyticsCache cache.Cache
	if redisClient != nil {
		analyticsCache = rediscommon.NewCacheAdapter(redisClient)
	} else {
		analyticsCache = components.Cache
	}

	events := service.NewEventPublisher(components.Queue, components.Logger)

	rights := service.NewRightsService(store, tierProvider, components.Logger)
	ingest := service.NewIngestService(
		store,
		tierProvider,
		service.ExtensionExtractor{},
		service.ExtensionExtractor{},
		events,
		components.Logger,
	)
	// A nil *Client must stay a nil interface for the guard check.
	var crownGuard service.CrownGuard
	if redisClient != nil {
		crownGuard = redisClient
	}
	remix := service.NewRemixService(store, rights, events, crownGuard, components.Logger)
	search := service.NewSearchService(store, service.NewFilterEvaluator(), components.Logger)
	analytics := service.NewAnalyticsService(store, analyticsCache, cfg.Cache.DefaultTTL, components.Logger)
	snapshot := service.NewSnapshotService(store, components.Logger)

	c := &Container{
		Components:   components,
		Redis:        redisClient,
		Store:        store,
		TierProvider: tierProvider,
		Events:       events,
		Ingest:       ingest,
		Rights:       rights,
		Remix:        remix,
		Search:       search,
		Analytics:    analytics,
		Snapshot:     snapshot,
	}

	if err := c.subscribeInvalidation(ctx); err != nil {
		return nil, err
	}

	return c, nil
}

// subscribeInvalidation drops cached aggregate views whenever the ledger
// mutates
func (c *Container) subscribeInvalidation(ctx context.Context) error {
	if c.Components.Queue == nil {
		return nil
	}

	topics := []string{
		service.TopicIngested,
		service.TopicRemixRecorded,
		service.TopicCrowned,
		service.TopicGraveyarded,
	}

	for _, topic := range topics {
		err := c.Components.Queue.Subscribe(ctx, topic, func(ctx context.Context, _ string, _ []byte) error {
			c.Analytics.Invalidate(ctx)
			return nil
		})
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", topic, err)
		}
	}

	return nil
}
