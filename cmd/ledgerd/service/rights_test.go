package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/remixlabs/ledger/cmd/ledgerd/repository"
	"github.com/remixlabs/ledger/common/logger"
	"github.com/remixlabs/ledger/common/models"
	"github.com/remixlabs/ledger/common/tier"
)

func testLogger() *logger.Logger {
	return logger.New("error", "json")
}

func seedArtifact(t *testing.T, store repository.Store, id, actor string, tr tier.Tier, createdAt time.Time) *models.Artifact {
	t.Helper()

	artifact := &models.Artifact{
		ID:           id,
		Name:         id + ".mp3",
		Actor:        actor,
		Type:         models.KindAudio,
		Format:       "mp3",
		Tags:         []string{"audio"},
		Fingerprint:  Fingerprint([]byte(id)),
		RemixHistory: []models.RemixEntry{},
		Tier:         tr,
		CreatedAt:    createdAt,
	}
	if err := store.Upsert(context.Background(), artifact); err != nil {
		t.Fatalf("seed artifact %s: %v", id, err)
	}
	return artifact
}

// Exhaustive tier-pair matrix: the remix tier is the max of both ranks
// (never less than either input) and crownability is an OR on the top
// tier.
func TestResolveTierPairs(t *testing.T) {
	ctx := context.Background()
	base := time.Now().UTC()

	for _, originTier := range tier.Ordered() {
		for _, actorTier := range tier.Ordered() {
			name := fmt.Sprintf("origin=%s/actor=%s", originTier, actorTier)
			t.Run(name, func(t *testing.T) {
				store := repository.NewMemoryStore()
				seedArtifact(t, store, "origin", "creator", originTier, base)

				provider := tier.NewStaticProvider(map[string]tier.Tier{
					"remixer": actorTier,
				})
				rights := NewRightsService(store, provider, testLogger())

				resolution, err := rights.Resolve(ctx, "origin", "remixer")
				if err != nil {
					t.Fatalf("Resolve failed: %v", err)
				}

				originRank, _ := tier.Rank(originTier)
				actorRank, _ := tier.Rank(actorTier)
				wantRank := originRank
				if actorRank > wantRank {
					wantRank = actorRank
				}

				gotRank, err := tier.Rank(resolution.Tier)
				if err != nil {
					t.Fatalf("resolved tier %q outside hierarchy: %v", resolution.Tier, err)
				}
				if gotRank != wantRank {
					t.Errorf("resolved rank %d, want %d (tier %s)", gotRank, wantRank, resolution.Tier)
				}
				if gotRank < originRank || gotRank < actorRank {
					t.Errorf("tier monotonicity violated: %s below an input", resolution.Tier)
				}

				wantCrownable := originTier == tier.Mythic || actorTier == tier.Mythic
				if resolution.Crownable != wantCrownable {
					t.Errorf("crownable = %v, want %v", resolution.Crownable, wantCrownable)
				}
			})
		}
	}
}

func TestResolveMissingOriginIsSoftFailure(t *testing.T) {
	store := repository.NewMemoryStore()
	provider := tier.NewStaticProvider(map[string]tier.Tier{"remixer": tier.Mythic})
	rights := NewRightsService(store, provider, testLogger())

	resolution, err := rights.Resolve(context.Background(), "nope", "remixer")
	if err != nil {
		t.Fatalf("missing origin must not error, got %v", err)
	}
	if resolution.Tier != tier.Unknown {
		t.Errorf("expected sentinel tier unknown, got %s", resolution.Tier)
	}
	if resolution.Crownable {
		t.Error("missing origin must not be crownable")
	}
}

func TestResolveUnknownActorDefaultsToLowest(t *testing.T) {
	store := repository.NewMemoryStore()
	seedArtifact(t, store, "origin", "creator", tier.Supporter, time.Now().UTC())

	rights := NewRightsService(store, tier.NewStaticProvider(nil), testLogger())

	resolution, err := rights.Resolve(context.Background(), "origin", "stranger")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if resolution.Tier != tier.Supporter {
		t.Errorf("expected origin tier supporter to win over general, got %s", resolution.Tier)
	}
	if resolution.Crownable {
		t.Error("supporter/general must not be crownable")
	}
}
