package service

import (
	"context"
	"strings"
	"testing"

	"github.com/remixlabs/ledger/cmd/ledgerd/repository"
	"github.com/remixlabs/ledger/common/models"
	"github.com/remixlabs/ledger/common/tier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIngestService(store repository.Store, seed map[string]tier.Tier) *IngestService {
	return NewIngestService(
		store,
		tier.NewStaticProvider(seed),
		ExtensionExtractor{},
		ExtensionExtractor{},
		NewEventPublisher(nil, testLogger()),
		testLogger(),
	)
}

func TestIngestCreatesArtifact(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := newIngestService(store, map[string]tier.Tier{"Jacob": tier.Mythic})

	id, err := svc.Ingest(ctx, IngestRequest{
		FileRef: "uploads/track.mp3",
		Name:    "Track One.mp3",
		Actor:   "Jacob",
		Content: []byte("track-bytes"),
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	artifact, err := store.Get(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, "Track One.mp3", artifact.Name)
	assert.Equal(t, "Jacob", artifact.Actor)
	assert.Equal(t, models.KindAudio, artifact.Type)
	assert.Equal(t, "mp3", artifact.Format)
	assert.Equal(t, tier.Mythic, artifact.Tier)
	assert.Equal(t, Fingerprint([]byte("track-bytes")), artifact.Fingerprint)
	assert.False(t, artifact.Crowned)
	assert.False(t, artifact.Graveyarded)
	assert.Nil(t, artifact.GraveyardedBy)
	assert.Nil(t, artifact.GraveyardedAt)
	assert.NotNil(t, artifact.Tags)
	assert.NotNil(t, artifact.RemixHistory)
	assert.Empty(t, artifact.RemixHistory)
	assert.False(t, artifact.CreatedAt.IsZero())
}

func TestIngestDedupScopedPerActor(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := newIngestService(store, nil)

	content := []byte("identical-bytes")

	_, err := svc.Ingest(ctx, IngestRequest{Name: "a.mp3", Actor: "Fan1", Content: content})
	require.NoError(t, err)

	// Same actor, same bytes: rejected even under a different name.
	_, err = svc.Ingest(ctx, IngestRequest{Name: "b.mp3", Actor: "Fan1", Content: content})
	require.ErrorIs(t, err, models.ErrDuplicateContent)

	// Different actor, same bytes: allowed.
	_, err = svc.Ingest(ctx, IngestRequest{Name: "a.mp3", Actor: "Fan2", Content: content})
	require.NoError(t, err)
}

func TestIngestUnknownActorGetsLowestTier(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := newIngestService(store, nil)

	id, err := svc.Ingest(ctx, IngestRequest{Name: "pic.png", Actor: "stranger", Content: []byte("png")})
	require.NoError(t, err)

	artifact, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, tier.General, artifact.Tier)
	assert.Equal(t, models.KindImage, artifact.Type)
}

func TestIngestRequiresActorAndName(t *testing.T) {
	ctx := context.Background()
	svc := newIngestService(repository.NewMemoryStore(), nil)

	_, err := svc.Ingest(ctx, IngestRequest{Name: "x.mp3", Content: []byte("x")})
	assert.Error(t, err)

	_, err = svc.Ingest(ctx, IngestRequest{Actor: "Fan1", Content: []byte("x")})
	assert.Error(t, err)
}

func TestArtifactIDsCollisionFree(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := newIngestService(store, nil)

	// Same actor, same name stem, same instant: the random suffix keeps
	// ids distinct.
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id, err := svc.Ingest(ctx, IngestRequest{
			Name:    "Same Name.mp3",
			Actor:   "Fan1",
			Content: []byte{byte(i)},
		})
		require.NoError(t, err)
		require.False(t, seen[id], "duplicate artifact id %s", id)
		seen[id] = true

		assert.True(t, strings.HasPrefix(id, "fan1-"), "id %s should start with sanitized actor", id)
		assert.Contains(t, id, "same-name")
	}
}

func TestFingerprintDeterministic(t *testing.T) {
	a := Fingerprint([]byte("content"))
	b := Fingerprint([]byte("content"))
	c := Fingerprint([]byte("different"))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.True(t, strings.HasPrefix(a, "sha256:"))
	assert.Len(t, strings.TrimPrefix(a, "sha256:"), 64)
}
