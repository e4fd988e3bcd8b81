package repository

import (
	"context"
	"time"

	"github.com/remixlabs/ledger/common/models"
	"github.com/remixlabs/ledger/common/tier"
)

// SearchQuery holds the ANDed filters for artifact search. Zero-value
// fields are ignored. Name matching is a case-insensitive substring match.
type SearchQuery struct {
	Name  string
	Actor string
	Type  models.MediaKind
	Tier  tier.Tier
}

// Store is the durable artifact persistence contract. The Postgres
// implementation (ArtifactRepository) is authoritative; MemoryStore is the
// linear-scan reference used as a test fixture.
type Store interface {
	// Get returns the artifact or models.ErrNotFound.
	Get(ctx context.Context, id string) (*models.Artifact, error)

	// List returns every artifact. Analytics tolerate the slightly stale
	// snapshot this produces under concurrent writes.
	List(ctx context.Context) ([]*models.Artifact, error)

	// ListByActor returns an actor's artifacts, oldest first.
	ListByActor(ctx context.Context, actor string) ([]*models.Artifact, error)

	// ListByTier returns all artifacts currently at the given tier.
	ListByTier(ctx context.Context, t tier.Tier) ([]*models.Artifact, error)

	// Search applies the ANDed filters of q.
	Search(ctx context.Context, q SearchQuery) ([]*models.Artifact, error)

	// HasFingerprint reports whether the actor already owns an artifact
	// with this content fingerprint.
	HasFingerprint(ctx context.Context, actor, fingerprint string) (bool, error)

	// Upsert writes the full record (create-or-replace keyed by id).
	// Returns models.ErrDuplicateContent if another artifact of the same
	// actor already carries the same fingerprint.
	Upsert(ctx context.Context, artifact *models.Artifact) error

	// AppendRemix atomically appends one lineage entry at the storage
	// layer. Never read-modify-write: concurrent appends must all land.
	// Returns models.ErrForbidden when the artifact is graveyarded, so a
	// graveyard landing mid-operation can never extend frozen lineage.
	AppendRemix(ctx context.Context, id string, entry models.RemixEntry) error

	// CrownIfUncrowned is a compare-and-set: it sets crowned=true and the
	// resolved tier only if the artifact is currently uncrowned and not
	// graveyarded. Returns whether this call won the transition.
	CrownIfUncrowned(ctx context.Context, id string, t tier.Tier) (bool, error)

	// GraveyardIfActive marks the artifact retired if it isn't already.
	// Returns whether this call performed the transition; repeated calls
	// leave the original graveyarded_by/at untouched.
	GraveyardIfActive(ctx context.Context, id, actor string, at time.Time) (bool, error)
}
