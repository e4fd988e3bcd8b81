package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/remixlabs/ledger/cmd/ledgerd/repository"
	"github.com/remixlabs/ledger/common/logger"
	"github.com/remixlabs/ledger/common/models"
	"github.com/remixlabs/ledger/common/tier"
)

// IngestRequest carries one upload into the ledger. Content is the raw
// media bytes (for fingerprinting only; physical placement happened
// upstream), FileRef points at the already-placed file.
type IngestRequest struct {
	FileRef string
	Name    string
	Actor   string
	Content []byte
}

// IngestService validates new uploads and creates artifact records
type IngestService struct {
	store      repository.Store
	tiers      tier.ActorTierProvider
	extractor  MetadataExtractor
	normalizer FormatNormalizer
	events     *EventPublisher
	log        *logger.Logger
}

// NewIngestService creates a new ingest service
func NewIngestService(
	store repository.Store,
	tiers tier.ActorTierProvider,
	extractor MetadataExtractor,
	normalizer FormatNormalizer,
	events *EventPublisher,
	log *logger.Logger,
) *IngestService {
	return &IngestService{
		store:      store,
		tiers:      tiers,
		extractor:  extractor,
		normalizer: normalizer,
		events:     events,
		log:        log,
	}
}

// Ingest fingerprints the upload, rejects same-actor duplicates, builds
// the artifact record and persists it. Returns the new artifact id.
func (s *IngestService) Ingest(ctx context.Context, req IngestRequest) (string, error) {
	if req.Actor == "" {
		return "", fmt.Errorf("actor is required")
	}
	if req.Name == "" {
		return "", fmt.Errorf("name is required")
	}

	fingerprint := Fingerprint(req.Content)

	// Dedup is scoped per actor: two different creators may upload
	// byte-identical content.
	exists, err := s.store.HasFingerprint(ctx, req.Actor, fingerprint)
	if err != nil {
		return "", fmt.Errorf("dedup check: %w", err)
	}
	if exists {
		return "", fmt.Errorf("%w: %s", models.ErrDuplicateContent, fingerprint)
	}

	mediaKind, tags, err := s.extractor.Extract(ctx, req.FileRef, req.Name)
	if err != nil {
		return "", fmt.Errorf("metadata extraction: %w", err)
	}

	format, err := s.normalizer.Normalize(ctx, req.FileRef, req.Name)
	if err != nil {
		return "", fmt.Errorf("format normalization: %w", err)
	}

	actorTier, err := s.tiers.ActorTier(ctx, req.Actor)
	if err != nil {
		return "", fmt.Errorf("actor tier lookup: %w", err)
	}

	now := time.Now().UTC()
	artifact := &models.Artifact{
		ID:           newArtifactID(req.Actor, now, req.Name),
		Name:         req.Name,
		Actor:        req.Actor,
		Type:         mediaKind,
		Format:       format,
		Tags:         tags,
		Fingerprint:  fingerprint,
		RemixHistory: []models.RemixEntry{},
		Tier:         actorTier,
		Crowned:      false,
		Graveyarded:  false,
		CreatedAt:    now,
	}

	if err := s.store.Upsert(ctx, artifact); err != nil {
		return "", fmt.Errorf("persist artifact: %w", err)
	}

	s.log.Info("artifact ingested",
		"artifact_id", artifact.ID,
		"actor", artifact.Actor,
		"type", artifact.Type,
		"tier", artifact.Tier,
	)

	s.events.Publish(ctx, TopicIngested, artifact.ID, artifact.Actor, map[string]any{
		"type": artifact.Type,
		"tier": artifact.Tier,
	})

	return artifact.ID, nil
}

var idSanitizer = regexp.MustCompile(`[^a-z0-9]+`)

// newArtifactID derives a globally unique id from actor, ingestion time
// and the sanitized name. The uuid suffix keeps same-millisecond uploads
// by one actor collision-free.
func newArtifactID(actor string, at time.Time, name string) string {
	base := name
	if dot := strings.LastIndex(base, "."); dot > 0 {
		base = base[:dot]
	}

	sanitize := func(s string) string {
		s = idSanitizer.ReplaceAllString(strings.ToLower(s), "-")
		return strings.Trim(s, "-")
	}

	suffix := uuid.New().String()[:8]
	return fmt.Sprintf("%s-%d-%s-%s", sanitize(actor), at.UnixMilli(), sanitize(base), suffix)
}
