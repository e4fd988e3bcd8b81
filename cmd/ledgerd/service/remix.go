package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/remixlabs/ledger/cmd/ledgerd/repository"
	"github.com/remixlabs/ledger/common/logger"
	"github.com/remixlabs/ledger/common/models"
	"github.com/remixlabs/ledger/common/tier"
)

const crownGuardTTL = 10 * time.Second

// CrownGuard is a short-lived cross-instance mutual exclusion primitive
// for crowning. The Redis client implements it via SETNX.
type CrownGuard interface {
	SetNX(ctx context.Context, key, value string, expiry time.Duration) (bool, error)
}

// RemixService records lineage, crowns remixes and graveyards artifacts
type RemixService struct {
	store  repository.Store
	rights *RightsService
	events *EventPublisher
	guard  CrownGuard
	log    *logger.Logger
}

// NewRemixService creates a new remix service. The crown guard is
// optional; when present a lost guard reports the conflict without racing
// the in-flight crown (the store's compare-and-set stays authoritative).
func NewRemixService(
	store repository.Store,
	rights *RightsService,
	events *EventPublisher,
	guard CrownGuard,
	log *logger.Logger,
) *RemixService {
	return &RemixService{
		store:  store,
		rights: rights,
		events: events,
		guard:  guard,
		log:    log,
	}
}

// Record appends a lineage entry to the origin's remix history. The remix
// artifact must already be ingested; this only links it into the origin's
// lineage and never touches the remix's own record.
//
// Not idempotent by design: calling twice records two entries. Callers
// needing at-most-once linkage must not retry blindly on ambiguous
// failures.
func (s *RemixService) Record(ctx context.Context, originID, actor, newArtifactID string) error {
	// The remix must exist as its own independently ingested record.
	if _, err := s.store.Get(ctx, newArtifactID); err != nil {
		return fmt.Errorf("load remix artifact: %w", err)
	}

	entry := models.RemixEntry{
		Action:        models.ActionRemixed,
		Actor:         actor,
		NewArtifactID: newArtifactID,
	}

	// A graveyarded origin's lineage is frozen. The store enforces this
	// inside the append itself, so a graveyard landing concurrently can
	// never be extended.
	if err := s.store.AppendRemix(ctx, originID, entry); err != nil {
		return fmt.Errorf("append lineage entry to %s: %w", originID, err)
	}

	s.log.Info("remix recorded",
		"origin_id", originID,
		"actor", actor,
		"new_artifact_id", newArtifactID,
	)

	s.events.Publish(ctx, TopicRemixRecorded, originID, actor, map[string]any{
		"new_artifact_id": newArtifactID,
	})

	return nil
}

// Crown certifies the remix at newArtifactID with the tier resolved from
// (originID, actor). First writer wins: the conditional store update only
// fires while the remix is uncrowned, so a lost race never downgrades the
// tier that already landed. A repeated crown that resolves to the tier
// already on the record is an idempotent success.
func (s *RemixService) Crown(ctx context.Context, originID, actor, newArtifactID string) (tier.Tier, error) {
	resolution, err := s.rights.Resolve(ctx, originID, actor)
	if err != nil {
		return tier.Unknown, fmt.Errorf("resolve rights: %w", err)
	}

	if !resolution.Crownable {
		return tier.Unknown, fmt.Errorf("%w: origin %s and actor %s hold no crowning rights",
			models.ErrForbidden, originID, actor)
	}

	if s.guard != nil {
		acquired, err := s.guard.SetNX(ctx, "ledger:crown:"+newArtifactID, actor, crownGuardTTL)
		if err != nil {
			// The guard is best-effort; the store compare-and-set below
			// stays authoritative.
			s.log.Warn("crown guard unavailable", "artifact_id", newArtifactID, "error", err)
		} else if !acquired {
			// Another crown is in flight; report its outcome instead of
			// racing it to the store.
			return s.crownOutcome(ctx, newArtifactID, resolution.Tier)
		}
	}

	won, err := s.store.CrownIfUncrowned(ctx, newArtifactID, resolution.Tier)
	if err != nil {
		return tier.Unknown, fmt.Errorf("crown artifact: %w", err)
	}

	if !won {
		return s.crownOutcome(ctx, newArtifactID, resolution.Tier)
	}

	s.log.Info("artifact crowned",
		"artifact_id", newArtifactID,
		"origin_id", originID,
		"actor", actor,
		"tier", resolution.Tier,
	)

	s.events.Publish(ctx, TopicCrowned, newArtifactID, actor, map[string]any{
		"origin_id": originID,
		"tier":      resolution.Tier,
	})

	return resolution.Tier, nil
}

// crownOutcome classifies a crown attempt that did not win the
// transition: idempotent success when the record already holds the
// resolved tier, otherwise the matching denial.
func (s *RemixService) crownOutcome(ctx context.Context, id string, resolved tier.Tier) (tier.Tier, error) {
	artifact, err := s.store.Get(ctx, id)
	if err != nil {
		return tier.Unknown, fmt.Errorf("load remix artifact: %w", err)
	}
	if artifact.Graveyarded {
		return tier.Unknown, fmt.Errorf("%w: artifact %s is graveyarded", models.ErrForbidden, id)
	}
	if artifact.Crowned && artifact.Tier == resolved {
		return artifact.Tier, nil
	}
	return tier.Unknown, fmt.Errorf("%w: artifact %s", models.ErrAlreadyCrowned, id)
}

// Graveyard retires the artifact. Terminal and idempotent: a second call
// is a no-op success and the original graveyarded_by/at are preserved.
// Rights checks live in the external authorization layer.
func (s *RemixService) Graveyard(ctx context.Context, artifactID, actor string) error {
	transitioned, err := s.store.GraveyardIfActive(ctx, artifactID, actor, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("graveyard artifact: %w", err)
	}

	if !transitioned {
		// Either already graveyarded (idempotent) or missing.
		if _, err := s.store.Get(ctx, artifactID); err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return models.ErrNotFound
			}
			return fmt.Errorf("load artifact: %w", err)
		}
		return nil
	}

	s.log.Info("artifact graveyarded", "artifact_id", artifactID, "actor", actor)

	s.events.Publish(ctx, TopicGraveyarded, artifactID, actor, nil)

	return nil
}
