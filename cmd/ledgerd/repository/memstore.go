package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/remixlabs/ledger/common/models"
	"github.com/remixlabs/ledger/common/tier"
)

// MemoryStore is the linear-scan reference implementation of Store.
// It preserves the same semantics as the Postgres store (atomic appends,
// conditional crown/graveyard transitions, per-actor fingerprint
// uniqueness) and backs the service test suites.
type MemoryStore struct {
	mu        sync.RWMutex
	artifacts map[string]*models.Artifact
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		artifacts: make(map[string]*models.Artifact),
	}
}

var _ Store = (*MemoryStore)(nil)

// Get returns a copy of the artifact or models.ErrNotFound
func (s *MemoryStore) Get(_ context.Context, id string) (*models.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	artifact, ok := s.artifacts[id]
	if !ok {
		return nil, models.ErrNotFound
	}

	return cloneArtifact(artifact), nil
}

// List returns every artifact, oldest first
func (s *MemoryStore) List(_ context.Context) ([]*models.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.scan(func(*models.Artifact) bool { return true }), nil
}

// ListByActor returns an actor's artifacts, oldest first
func (s *MemoryStore) ListByActor(_ context.Context, actor string) ([]*models.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.scan(func(a *models.Artifact) bool { return a.Actor == actor }), nil
}

// ListByTier returns all artifacts currently at the given tier
func (s *MemoryStore) ListByTier(_ context.Context, t tier.Tier) ([]*models.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.scan(func(a *models.Artifact) bool { return a.Tier == t }), nil
}

// Search applies the ANDed filters of q
func (s *MemoryStore) Search(_ context.Context, q SearchQuery) ([]*models.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	nameQuery := strings.ToLower(q.Name)

	return s.scan(func(a *models.Artifact) bool {
		if nameQuery != "" && !strings.Contains(strings.ToLower(a.Name), nameQuery) {
			return false
		}
		if q.Actor != "" && a.Actor != q.Actor {
			return false
		}
		if q.Type != "" && a.Type != q.Type {
			return false
		}
		if q.Tier != "" && a.Tier != q.Tier {
			return false
		}
		return true
	}), nil
}

// HasFingerprint reports whether the actor already owns this content
func (s *MemoryStore) HasFingerprint(_ context.Context, actor, fingerprint string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.artifacts {
		if a.Actor == actor && a.Fingerprint == fingerprint {
			return true, nil
		}
	}

	return false, nil
}

// Upsert writes the full record keyed by id
func (s *MemoryStore) Upsert(_ context.Context, artifact *models.Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.artifacts {
		if a.ID != artifact.ID && a.Actor == artifact.Actor && a.Fingerprint == artifact.Fingerprint {
			return models.ErrDuplicateContent
		}
	}

	stored := cloneArtifact(artifact)
	stored.Normalize()
	s.artifacts[artifact.ID] = stored
	return nil
}

// AppendRemix appends one lineage entry under the store lock. A
// graveyarded artifact's lineage is frozen at this layer, not above it.
func (s *MemoryStore) AppendRemix(_ context.Context, id string, entry models.RemixEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	artifact, ok := s.artifacts[id]
	if !ok {
		return models.ErrNotFound
	}
	if artifact.Graveyarded {
		return models.ErrForbidden
	}

	artifact.RemixHistory = append(artifact.RemixHistory, entry)
	return nil
}

// CrownIfUncrowned is the crowning compare-and-set
func (s *MemoryStore) CrownIfUncrowned(_ context.Context, id string, t tier.Tier) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	artifact, ok := s.artifacts[id]
	if !ok {
		return false, nil
	}
	if artifact.Crowned || artifact.Graveyarded {
		return false, nil
	}

	artifact.Crowned = true
	artifact.Tier = t
	return true, nil
}

// GraveyardIfActive marks the artifact retired if it isn't already
func (s *MemoryStore) GraveyardIfActive(_ context.Context, id, actor string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	artifact, ok := s.artifacts[id]
	if !ok {
		return false, nil
	}
	if artifact.Graveyarded {
		return false, nil
	}

	artifact.Graveyarded = true
	artifact.GraveyardedBy = &actor
	graveyardedAt := at
	artifact.GraveyardedAt = &graveyardedAt
	return true, nil
}

// scan returns copies of all artifacts matching the predicate, oldest
// first. Caller must hold at least the read lock.
func (s *MemoryStore) scan(match func(*models.Artifact) bool) []*models.Artifact {
	var out []*models.Artifact
	for _, a := range s.artifacts {
		if match(a) {
			out = append(out, cloneArtifact(a))
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out
}

// cloneArtifact deep-copies a record so callers never alias store state
func cloneArtifact(a *models.Artifact) *models.Artifact {
	clone := *a

	clone.Tags = make([]string, len(a.Tags))
	copy(clone.Tags, a.Tags)

	clone.RemixHistory = make([]models.RemixEntry, len(a.RemixHistory))
	copy(clone.RemixHistory, a.RemixHistory)

	if a.GraveyardedBy != nil {
		by := *a.GraveyardedBy
		clone.GraveyardedBy = &by
	}
	if a.GraveyardedAt != nil {
		at := *a.GraveyardedAt
		clone.GraveyardedAt = &at
	}

	return &clone
}
