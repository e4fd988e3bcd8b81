package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/remixlabs/ledger/cmd/ledgerd/repository"
	"github.com/remixlabs/ledger/common/logger"
	"github.com/remixlabs/ledger/common/models"
	"github.com/remixlabs/ledger/common/tier"
)

// Resolution is the outcome of remix rights resolution. Tier is
// tier.Unknown (with Crownable false) when the origin cannot be loaded;
// callers must check for the sentinel rather than an error.
type Resolution struct {
	Tier      tier.Tier `json:"tier"`
	Crownable bool      `json:"crownable"`
}

// RightsService computes the tier a remix inherits and whether it is
// eligible for crowning. Read-only.
type RightsService struct {
	store repository.Store
	tiers tier.ActorTierProvider
	log   *logger.Logger
}

// NewRightsService creates a new rights service
func NewRightsService(store repository.Store, tiers tier.ActorTierProvider, log *logger.Logger) *RightsService {
	return &RightsService{
		store: store,
		tiers: tiers,
		log:   log,
	}
}

// Resolve computes the remix tier and crownability for (origin, actor).
//
// The remix inherits the higher of the origin's tier and the actor's tier,
// so tier never decreases down a lineage chain. Crownability is an OR:
// either the lineage root or the remixing actor has reached the top tier.
// A missing origin is a soft failure (routine under concurrent
// graveyarding races), not an error.
func (s *RightsService) Resolve(ctx context.Context, originID, actor string) (Resolution, error) {
	unresolved := Resolution{Tier: tier.Unknown, Crownable: false}

	origin, err := s.store.Get(ctx, originID)
	if errors.Is(err, models.ErrNotFound) {
		s.log.Debug("rights resolution against missing origin", "origin_id", originID, "actor", actor)
		return unresolved, nil
	}
	if err != nil {
		return unresolved, fmt.Errorf("load origin: %w", err)
	}

	originTier := origin.Tier
	if originTier == "" {
		originTier = tier.Lowest()
	}

	actorTier, err := s.tiers.ActorTier(ctx, actor)
	if err != nil {
		return unresolved, fmt.Errorf("actor tier lookup: %w", err)
	}

	resolved, err := tier.Max(originTier, actorTier)
	if err != nil {
		return unresolved, fmt.Errorf("origin %s, actor %s: %w", originID, actor, err)
	}

	return Resolution{
		Tier:      resolved,
		Crownable: originTier == tier.Highest() || actorTier == tier.Highest(),
	}, nil
}
