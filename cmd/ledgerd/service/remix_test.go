package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/remixlabs/ledger/cmd/ledgerd/repository"
	"github.com/remixlabs/ledger/common/models"
	"github.com/remixlabs/ledger/common/tier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRemixService(store repository.Store, seed map[string]tier.Tier) *RemixService {
	rights := NewRightsService(store, tier.NewStaticProvider(seed), testLogger())
	events := NewEventPublisher(nil, testLogger())
	return NewRemixService(store, rights, events, nil, testLogger())
}

func TestRecordRemixAppendsToOrigin(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	now := time.Now().UTC()

	seedArtifact(t, store, "origin", "Jacob", tier.Mythic, now)
	seedArtifact(t, store, "remix", "Fan1", tier.General, now.Add(time.Second))

	svc := newRemixService(store, nil)
	require.NoError(t, svc.Record(ctx, "origin", "Fan1", "remix"))

	origin, err := store.Get(ctx, "origin")
	require.NoError(t, err)
	require.Len(t, origin.RemixHistory, 1)
	assert.Equal(t, models.ActionRemixed, origin.RemixHistory[0].Action)
	assert.Equal(t, "Fan1", origin.RemixHistory[0].Actor)
	assert.Equal(t, "remix", origin.RemixHistory[0].NewArtifactID)

	// The remix's own record is untouched.
	remix, err := store.Get(ctx, "remix")
	require.NoError(t, err)
	assert.Empty(t, remix.RemixHistory)
	assert.Equal(t, tier.General, remix.Tier)
}

func TestRecordRemixMissingArtifacts(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	seedArtifact(t, store, "origin", "Jacob", tier.Mythic, time.Now().UTC())

	svc := newRemixService(store, nil)

	assert.ErrorIs(t, svc.Record(ctx, "missing", "Fan1", "origin"), models.ErrNotFound)
	assert.ErrorIs(t, svc.Record(ctx, "origin", "Fan1", "missing"), models.ErrNotFound)
}

// lateGraveyardStore retires the origin right after the first successful
// read, simulating a graveyard landing between a caller's existence check
// and the lineage append.
type lateGraveyardStore struct {
	repository.Store
	originID string
	once     sync.Once
}

func (s *lateGraveyardStore) Get(ctx context.Context, id string) (*models.Artifact, error) {
	artifact, err := s.Store.Get(ctx, id)
	if err == nil {
		s.once.Do(func() {
			_, _ = s.Store.GraveyardIfActive(ctx, s.originID, "moderator", time.Now().UTC())
		})
	}
	return artifact, err
}

// A graveyard landing mid-record must not extend the frozen lineage: the
// append itself is conditional at the storage layer.
func TestRecordRemixGraveyardRaceRejected(t *testing.T) {
	ctx := context.Background()
	inner := repository.NewMemoryStore()
	now := time.Now().UTC()

	seedArtifact(t, inner, "origin", "Jacob", tier.Mythic, now)
	seedArtifact(t, inner, "remix", "Fan1", tier.General, now)

	store := &lateGraveyardStore{Store: inner, originID: "origin"}
	svc := newRemixService(store, nil)

	err := svc.Record(ctx, "origin", "Fan1", "remix")
	assert.ErrorIs(t, err, models.ErrForbidden)

	origin, err := inner.Get(ctx, "origin")
	require.NoError(t, err)
	assert.True(t, origin.Graveyarded)
	assert.Empty(t, origin.RemixHistory, "frozen lineage must not grow")
}

func TestRecordRemixBlockedOnGraveyardedOrigin(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	now := time.Now().UTC()

	seedArtifact(t, store, "origin", "Jacob", tier.Mythic, now)
	seedArtifact(t, store, "remix", "Fan1", tier.General, now)

	svc := newRemixService(store, nil)
	require.NoError(t, svc.Graveyard(ctx, "origin", "moderator"))

	err := svc.Record(ctx, "origin", "Fan1", "remix")
	assert.ErrorIs(t, err, models.ErrForbidden)

	origin, err := store.Get(ctx, "origin")
	require.NoError(t, err)
	assert.Empty(t, origin.RemixHistory, "graveyarded lineage must stay frozen")
}

// Append-only lineage under contention: N concurrent records all land.
func TestConcurrentRecordRemixLosesNothing(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	now := time.Now().UTC()

	seedArtifact(t, store, "origin", "Jacob", tier.Mythic, now)

	const n = 64
	for i := 0; i < n; i++ {
		seedArtifact(t, store, remixID(i), "Fan1", tier.General, now.Add(time.Duration(i)*time.Millisecond))
	}

	svc := newRemixService(store, nil)

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.Record(ctx, "origin", "Fan1", remixID(i))
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "record %d", i)
	}

	origin, err := store.Get(ctx, "origin")
	require.NoError(t, err)
	require.Len(t, origin.RemixHistory, n, "lost lineage entries under concurrency")

	seen := make(map[string]bool, n)
	for _, entry := range origin.RemixHistory {
		seen[entry.NewArtifactID] = true
	}
	assert.Len(t, seen, n)
}

func remixID(i int) string {
	return "remix-" + string(rune('a'+i/26)) + string(rune('a'+i%26))
}

func TestCrownAssignsResolvedTier(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	now := time.Now().UTC()

	seedArtifact(t, store, "origin", "Jacob", tier.Mythic, now)
	seedArtifact(t, store, "remix", "Fan1", tier.General, now.Add(time.Second))

	svc := newRemixService(store, nil)

	got, err := svc.Crown(ctx, "origin", "Fan1", "remix")
	require.NoError(t, err)
	assert.Equal(t, tier.Mythic, got)

	remix, err := store.Get(ctx, "remix")
	require.NoError(t, err)
	assert.True(t, remix.Crowned)
	assert.Equal(t, tier.Mythic, remix.Tier)
}

func TestCrownForbiddenWithoutTopTier(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	now := time.Now().UTC()

	seedArtifact(t, store, "origin", "someone", tier.Founder, now)
	seedArtifact(t, store, "remix", "Fan1", tier.General, now)

	svc := newRemixService(store, map[string]tier.Tier{"Fan1": tier.Legacy})

	_, err := svc.Crown(ctx, "origin", "Fan1", "remix")
	assert.ErrorIs(t, err, models.ErrForbidden)

	remix, err := store.Get(ctx, "remix")
	require.NoError(t, err)
	assert.False(t, remix.Crowned)
	assert.Equal(t, tier.General, remix.Tier, "denied crown must not touch the tier")
}

func TestCrownMissingOriginForbidden(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	seedArtifact(t, store, "remix", "Fan1", tier.General, time.Now().UTC())

	svc := newRemixService(store, nil)

	_, err := svc.Crown(ctx, "missing", "Fan1", "remix")
	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestCrownMissingRemixNotFound(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	seedArtifact(t, store, "origin", "Jacob", tier.Mythic, time.Now().UTC())

	svc := newRemixService(store, nil)

	_, err := svc.Crown(ctx, "origin", "Fan1", "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

// Crowning is single-shot: a repeat that resolves to the tier already on
// the record is an idempotent success and never downgrades.
func TestCrownRepeatIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	now := time.Now().UTC()

	seedArtifact(t, store, "origin", "Jacob", tier.Mythic, now)
	seedArtifact(t, store, "remix", "Fan1", tier.General, now)

	svc := newRemixService(store, nil)

	first, err := svc.Crown(ctx, "origin", "Fan1", "remix")
	require.NoError(t, err)

	second, err := svc.Crown(ctx, "origin", "Fan1", "remix")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	remix, err := store.Get(ctx, "remix")
	require.NoError(t, err)
	assert.Equal(t, tier.Mythic, remix.Tier)
	assert.True(t, remix.Crowned)
}

func TestCrownGraveyardedRemixForbidden(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	now := time.Now().UTC()

	seedArtifact(t, store, "origin", "Jacob", tier.Mythic, now)
	seedArtifact(t, store, "remix", "Fan1", tier.General, now)

	svc := newRemixService(store, nil)
	require.NoError(t, svc.Graveyard(ctx, "remix", "moderator"))

	_, err := svc.Crown(ctx, "origin", "Fan1", "remix")
	assert.ErrorIs(t, err, models.ErrForbidden)
}

// fakeGuard is a canned CrownGuard for exercising the lost-lock and
// guard-failure paths.
type fakeGuard struct {
	acquired bool
	err      error
	calls    int
}

func (g *fakeGuard) SetNX(_ context.Context, _, _ string, _ time.Duration) (bool, error) {
	g.calls++
	return g.acquired, g.err
}

// countingStore counts crown compare-and-set attempts.
type countingStore struct {
	repository.Store
	crownAttempts int
}

func (s *countingStore) CrownIfUncrowned(ctx context.Context, id string, t tier.Tier) (bool, error) {
	s.crownAttempts++
	return s.Store.CrownIfUncrowned(ctx, id, t)
}

// A lost guard means another crown is in flight: report the conflict
// without racing it to the store.
func TestCrownLostGuardSkipsStore(t *testing.T) {
	ctx := context.Background()
	inner := repository.NewMemoryStore()
	now := time.Now().UTC()

	seedArtifact(t, inner, "origin", "Jacob", tier.Mythic, now)
	seedArtifact(t, inner, "remix", "Fan1", tier.General, now)

	store := &countingStore{Store: inner}
	rights := NewRightsService(store, tier.NewStaticProvider(nil), testLogger())
	guard := &fakeGuard{acquired: false}
	svc := NewRemixService(store, rights, NewEventPublisher(nil, testLogger()), guard, testLogger())

	_, err := svc.Crown(ctx, "origin", "Fan1", "remix")
	assert.ErrorIs(t, err, models.ErrAlreadyCrowned)
	assert.Equal(t, 1, guard.calls)
	assert.Zero(t, store.crownAttempts, "lost guard must not reach the compare-and-set")

	remix, err := inner.Get(ctx, "remix")
	require.NoError(t, err)
	assert.False(t, remix.Crowned)
}

// A lost guard over an already-landed identical crown is still an
// idempotent success.
func TestCrownLostGuardIdempotentWhenLanded(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	now := time.Now().UTC()

	seedArtifact(t, store, "origin", "Jacob", tier.Mythic, now)
	seedArtifact(t, store, "remix", "Fan1", tier.General, now)

	won, err := store.CrownIfUncrowned(ctx, "remix", tier.Mythic)
	require.NoError(t, err)
	require.True(t, won)

	rights := NewRightsService(store, tier.NewStaticProvider(nil), testLogger())
	svc := NewRemixService(store, rights, NewEventPublisher(nil, testLogger()), &fakeGuard{acquired: false}, testLogger())

	got, err := svc.Crown(ctx, "origin", "Fan1", "remix")
	require.NoError(t, err)
	assert.Equal(t, tier.Mythic, got)
}

// Guard failures never block crowning; the store compare-and-set stays
// authoritative.
func TestCrownGuardFailureFallsThrough(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	now := time.Now().UTC()

	seedArtifact(t, store, "origin", "Jacob", tier.Mythic, now)
	seedArtifact(t, store, "remix", "Fan1", tier.General, now)

	rights := NewRightsService(store, tier.NewStaticProvider(nil), testLogger())
	guard := &fakeGuard{err: errors.New("connection refused")}
	svc := NewRemixService(store, rights, NewEventPublisher(nil, testLogger()), guard, testLogger())

	got, err := svc.Crown(ctx, "origin", "Fan1", "remix")
	require.NoError(t, err)
	assert.Equal(t, tier.Mythic, got)

	remix, err := store.Get(ctx, "remix")
	require.NoError(t, err)
	assert.True(t, remix.Crowned)
}

func TestGraveyardSetsAuditFields(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	seedArtifact(t, store, "target", "Jacob", tier.Mythic, time.Now().UTC())

	svc := newRemixService(store, nil)
	require.NoError(t, svc.Graveyard(ctx, "target", "moderator"))

	artifact, err := store.Get(ctx, "target")
	require.NoError(t, err)
	assert.True(t, artifact.Graveyarded)
	require.NotNil(t, artifact.GraveyardedBy)
	assert.Equal(t, "moderator", *artifact.GraveyardedBy)
	require.NotNil(t, artifact.GraveyardedAt)

	// Stable under repeated reads.
	again, err := store.Get(ctx, "target")
	require.NoError(t, err)
	assert.Equal(t, artifact.GraveyardedBy, again.GraveyardedBy)
	assert.Equal(t, artifact.GraveyardedAt, again.GraveyardedAt)
}

// Second graveyard is an idempotent no-op preserving the original audit
// fields.
func TestGraveyardIdempotent(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	seedArtifact(t, store, "target", "Jacob", tier.Mythic, time.Now().UTC())

	svc := newRemixService(store, nil)
	require.NoError(t, svc.Graveyard(ctx, "target", "first"))

	before, err := store.Get(ctx, "target")
	require.NoError(t, err)

	require.NoError(t, svc.Graveyard(ctx, "target", "second"))

	after, err := store.Get(ctx, "target")
	require.NoError(t, err)
	assert.Equal(t, "first", *after.GraveyardedBy)
	assert.Equal(t, *before.GraveyardedAt, *after.GraveyardedAt)
}

func TestGraveyardMissingNotFound(t *testing.T) {
	svc := newRemixService(repository.NewMemoryStore(), nil)
	err := svc.Graveyard(context.Background(), "missing", "moderator")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
