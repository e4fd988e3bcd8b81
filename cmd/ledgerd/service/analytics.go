package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/remixlabs/ledger/cmd/ledgerd/repository"
	"github.com/remixlabs/ledger/common/cache"
	"github.com/remixlabs/ledger/common/logger"
	"github.com/remixlabs/ledger/common/models"
	"github.com/remixlabs/ledger/common/tier"
)

const (
	heatmapCacheKey = "ledger:analytics:heatmap"
	tiersCacheKey   = "ledger:analytics:tiers"
)

// PlaylistItem is one resolved entry of a lineage playlist
type PlaylistItem struct {
	ID       string           `json:"id"`
	Artifact *models.Artifact `json:"artifact"`
}

// HeatmapEntry is one actor's aggregate remix count
type HeatmapEntry struct {
	Actor      string `json:"actor"`
	RemixCount int    `json:"remix_count"`
}

// EvolutionPoint is one step of an actor's tier timeline
type EvolutionPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Name      string    `json:"name"`
	Tier      tier.Tier `json:"tier"`
}

// FieldDiff is one differing field in an artifact comparison
type FieldDiff struct {
	Field string `json:"field"`
	A     any    `json:"a"`
	B     any    `json:"b"`
}

// Comparison is the side-by-side diff of two artifacts
type Comparison struct {
	A          *models.Artifact `json:"a"`
	B          *models.Artifact `json:"b"`
	Fields     []FieldDiff      `json:"fields"`
	MergePatch json.RawMessage  `json:"merge_patch"`
}

// AnalyticsService serves the read-only derived views. Pure
// transformations over store reads; aggregate views are cached briefly
// and invalidated on ledger mutations.
type AnalyticsService struct {
	store repository.Store
	cache cache.Cache
	ttl   time.Duration
	log   *logger.Logger
}

// NewAnalyticsService creates a new analytics service. Cache may be nil.
func NewAnalyticsService(store repository.Store, c cache.Cache, ttl time.Duration, log *logger.Logger) *AnalyticsService {
	return &AnalyticsService{
		store: store,
		cache: c,
		ttl:   ttl,
		log:   log,
	}
}

// Lineage returns the artifact's direct remix history (one level)
func (s *AnalyticsService) Lineage(ctx context.Context, artifactID string) ([]models.RemixEntry, error) {
	artifact, err := s.store.Get(ctx, artifactID)
	if err != nil {
		return nil, fmt.Errorf("load artifact: %w", err)
	}

	return artifact.RemixHistory, nil
}

// Playlist walks the root's recorded history into an ordered sequence of
// resolved records: the root first, then each remix. The traversal is
// shallow; a remix's own further remixes are not included.
func (s *AnalyticsService) Playlist(ctx context.Context, rootID string) ([]PlaylistItem, error) {
	root, err := s.store.Get(ctx, rootID)
	if err != nil {
		return nil, fmt.Errorf("load root: %w", err)
	}

	playlist := []PlaylistItem{{ID: root.ID, Artifact: root}}

	for _, entry := range root.RemixHistory {
		remix, err := s.store.Get(ctx, entry.NewArtifactID)
		if errors.Is(err, models.ErrNotFound) {
			// Lineage references an id that never landed or was purged
			// outside the ledger. Skip rather than fail the whole view.
			s.log.Warn("playlist references missing artifact",
				"root_id", rootID, "missing_id", entry.NewArtifactID)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("resolve playlist entry: %w", err)
		}
		playlist = append(playlist, PlaylistItem{ID: remix.ID, Artifact: remix})
	}

	return playlist, nil
}

// Heatmap aggregates remix counts per acting actor across all lineage
// entries, sorted descending by count
func (s *AnalyticsService) Heatmap(ctx context.Context) ([]HeatmapEntry, error) {
	if cached, ok := cacheGet[[]HeatmapEntry](ctx, s.cache, heatmapCacheKey); ok {
		return cached, nil
	}

	artifacts, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan artifacts: %w", err)
	}

	counts := make(map[string]int)
	for _, artifact := range artifacts {
		for _, entry := range artifact.RemixHistory {
			counts[entry.Actor]++
		}
	}

	heatmap := make([]HeatmapEntry, 0, len(counts))
	for actor, count := range counts {
		heatmap = append(heatmap, HeatmapEntry{Actor: actor, RemixCount: count})
	}

	sort.Slice(heatmap, func(i, j int) bool {
		if heatmap[i].RemixCount == heatmap[j].RemixCount {
			return heatmap[i].Actor < heatmap[j].Actor
		}
		return heatmap[i].RemixCount > heatmap[j].RemixCount
	})

	s.cacheSet(ctx, heatmapCacheKey, heatmap)
	return heatmap, nil
}

// TierAnalytics counts artifacts per tier bucket across the fixed
// hierarchy, including zero counts. One indexed query per tier keeps the
// view off the full-table scan.
func (s *AnalyticsService) TierAnalytics(ctx context.Context) (map[tier.Tier]int, error) {
	if cached, ok := cacheGet[map[tier.Tier]int](ctx, s.cache, tiersCacheKey); ok {
		return cached, nil
	}

	counts := make(map[tier.Tier]int, len(tier.Ordered()))
	for _, t := range tier.Ordered() {
		artifacts, err := s.store.ListByTier(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("list %s artifacts: %w", t, err)
		}
		counts[t] = len(artifacts)
	}

	s.cacheSet(ctx, tiersCacheKey, counts)
	return counts, nil
}

// TierEvolution builds one actor's chronological (timestamp, name, tier)
// timeline from their own artifacts
func (s *AnalyticsService) TierEvolution(ctx context.Context, actor string) ([]EvolutionPoint, error) {
	artifacts, err := s.store.ListByActor(ctx, actor)
	if err != nil {
		return nil, fmt.Errorf("list actor artifacts: %w", err)
	}

	evolution := make([]EvolutionPoint, 0, len(artifacts))
	for _, artifact := range artifacts {
		evolution = append(evolution, EvolutionPoint{
			Timestamp: artifact.CreatedAt,
			Name:      artifact.Name,
			Tier:      artifact.Tier,
		})
	}

	sort.Slice(evolution, func(i, j int) bool {
		return evolution[i].Timestamp.Before(evolution[j].Timestamp)
	})

	return evolution, nil
}

// Compare builds the side-by-side field diff of two artifacts plus the
// JSON merge patch that would turn A's document into B's
func (s *AnalyticsService) Compare(ctx context.Context, idA, idB string) (*Comparison, error) {
	a, err := s.store.Get(ctx, idA)
	if err != nil {
		return nil, fmt.Errorf("load artifact %s: %w", idA, err)
	}
	b, err := s.store.Get(ctx, idB)
	if err != nil {
		return nil, fmt.Errorf("load artifact %s: %w", idB, err)
	}

	docA, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal artifact %s: %w", idA, err)
	}
	docB, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("marshal artifact %s: %w", idB, err)
	}

	mergePatch, err := jsonpatch.CreateMergePatch(docA, docB)
	if err != nil {
		return nil, fmt.Errorf("diff artifacts: %w", err)
	}

	return &Comparison{
		A:          a,
		B:          b,
		Fields:     diffFields(docA, docB),
		MergePatch: mergePatch,
	}, nil
}

// Invalidate drops the cached aggregate views. Wired to the ledger event
// feed so mutations refresh analytics promptly.
func (s *AnalyticsService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	for _, key := range []string{heatmapCacheKey, tiersCacheKey} {
		if err := s.cache.Delete(ctx, key); err != nil {
			s.log.Warn("analytics cache invalidation failed", "key", key, "error", err)
		}
	}
}

// diffFields compares the two artifact documents field by field
func diffFields(docA, docB []byte) []FieldDiff {
	var mapA, mapB map[string]any
	if err := json.Unmarshal(docA, &mapA); err != nil {
		return nil
	}
	if err := json.Unmarshal(docB, &mapB); err != nil {
		return nil
	}

	fields := make(map[string]struct{}, len(mapA))
	for k := range mapA {
		fields[k] = struct{}{}
	}
	for k := range mapB {
		fields[k] = struct{}{}
	}

	var diffs []FieldDiff
	for field := range fields {
		va, vb := mapA[field], mapB[field]
		ja, _ := json.Marshal(va)
		jb, _ := json.Marshal(vb)
		if string(ja) != string(jb) {
			diffs = append(diffs, FieldDiff{Field: field, A: va, B: vb})
		}
	}

	sort.Slice(diffs, func(i, j int) bool { return diffs[i].Field < diffs[j].Field })
	return diffs
}

// cacheGet reads and decodes a cached view; a miss or decode failure
// falls back to recomputation
func cacheGet[T any](ctx context.Context, c cache.Cache, key string) (T, bool) {
	var zero T
	if c == nil {
		return zero, false
	}

	payload, found, err := c.Get(ctx, key)
	if err != nil || !found {
		return zero, false
	}

	var value T
	if err := json.Unmarshal(payload, &value); err != nil {
		return zero, false
	}
	return value, true
}

// cacheSet encodes and stores a computed view, best-effort
func (s *AnalyticsService) cacheSet(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.ttl); err != nil {
		s.log.Warn("analytics cache write failed", "key", key, "error", err)
	}
}
