package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/remixlabs/ledger/common/db"
	"github.com/remixlabs/ledger/common/models"
	"github.com/remixlabs/ledger/common/tier"
)

// artifactColumns is the shared column list for artifact scans
const artifactColumns = `
	artifact_id, name, actor, media_type, format, tags, fingerprint,
	remix_history, tier, crowned, graveyarded, graveyarded_by,
	graveyarded_at, created_at`

// ArtifactRepository is the authoritative Postgres artifact store
type ArtifactRepository struct {
	db *db.DB
}

// NewArtifactRepository creates a new artifact repository
func NewArtifactRepository(db *db.DB) *ArtifactRepository {
	return &ArtifactRepository{db: db}
}

var _ Store = (*ArtifactRepository)(nil)

// Get retrieves an artifact by its ID
func (r *ArtifactRepository) Get(ctx context.Context, id string) (*models.Artifact, error) {
	query := `SELECT` + artifactColumns + `
		FROM artifact
		WHERE artifact_id = $1
	`

	artifact, err := scanArtifact(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, wrapStoreErr("get artifact", err)
	}

	return artifact, nil
}

// List returns every artifact, oldest first
func (r *ArtifactRepository) List(ctx context.Context) ([]*models.Artifact, error) {
	query := `SELECT` + artifactColumns + `
		FROM artifact
		ORDER BY created_at ASC
	`

	return r.queryArtifacts(ctx, "list artifacts", query)
}

// ListByActor returns an actor's artifacts, oldest first
func (r *ArtifactRepository) ListByActor(ctx context.Context, actor string) ([]*models.Artifact, error) {
	query := `SELECT` + artifactColumns + `
		FROM artifact
		WHERE actor = $1
		ORDER BY created_at ASC
	`

	return r.queryArtifacts(ctx, "list artifacts by actor", query, actor)
}

// ListByTier returns all artifacts currently at the given tier
func (r *ArtifactRepository) ListByTier(ctx context.Context, t tier.Tier) ([]*models.Artifact, error) {
	query := `SELECT` + artifactColumns + `
		FROM artifact
		WHERE tier = $1
		ORDER BY created_at ASC
	`

	return r.queryArtifacts(ctx, "list artifacts by tier", query, string(t))
}

// Search applies the ANDed filters of q as an indexed query
func (r *ArtifactRepository) Search(ctx context.Context, q SearchQuery) ([]*models.Artifact, error) {
	query := `SELECT` + artifactColumns + ` FROM artifact WHERE 1=1`
	var args []any

	if q.Name != "" {
		args = append(args, q.Name)
		query += fmt.Sprintf(" AND name ILIKE '%%' || $%d || '%%'", len(args))
	}
	if q.Actor != "" {
		args = append(args, q.Actor)
		query += fmt.Sprintf(" AND actor = $%d", len(args))
	}
	if q.Type != "" {
		args = append(args, string(q.Type))
		query += fmt.Sprintf(" AND media_type = $%d", len(args))
	}
	if q.Tier != "" {
		args = append(args, string(q.Tier))
		query += fmt.Sprintf(" AND tier = $%d", len(args))
	}

	query += " ORDER BY created_at ASC"

	return r.queryArtifacts(ctx, "search artifacts", query, args...)
}

// HasFingerprint reports whether the actor already owns this content
func (r *ArtifactRepository) HasFingerprint(ctx context.Context, actor, fingerprint string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM artifact WHERE actor = $1 AND fingerprint = $2
		)
	`

	var exists bool
	if err := r.db.QueryRow(ctx, query, actor, fingerprint).Scan(&exists); err != nil {
		return false, wrapStoreErr("check fingerprint", err)
	}

	return exists, nil
}

// Upsert writes the full record (create-or-replace keyed by id)
func (r *ArtifactRepository) Upsert(ctx context.Context, artifact *models.Artifact) error {
	query := `
		INSERT INTO artifact (
			artifact_id, name, actor, media_type, format, tags, fingerprint,
			remix_history, tier, crowned, graveyarded, graveyarded_by,
			graveyarded_at, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		)
		ON CONFLICT (artifact_id) DO UPDATE SET
			name = EXCLUDED.name,
			actor = EXCLUDED.actor,
			media_type = EXCLUDED.media_type,
			format = EXCLUDED.format,
			tags = EXCLUDED.tags,
			fingerprint = EXCLUDED.fingerprint,
			remix_history = EXCLUDED.remix_history,
			tier = EXCLUDED.tier,
			crowned = EXCLUDED.crowned,
			graveyarded = EXCLUDED.graveyarded,
			graveyarded_by = EXCLUDED.graveyarded_by,
			graveyarded_at = EXCLUDED.graveyarded_at,
			created_at = EXCLUDED.created_at
	`

	artifact.Normalize()

	_, err := r.db.Exec(ctx, query,
		artifact.ID,
		artifact.Name,
		artifact.Actor,
		string(artifact.Type),
		artifact.Format,
		artifact.Tags,
		artifact.Fingerprint,
		artifact.RemixHistory,
		string(artifact.Tier),
		artifact.Crowned,
		artifact.Graveyarded,
		artifact.GraveyardedBy,
		artifact.GraveyardedAt,
		artifact.CreatedAt,
	)
	if err != nil {
		return wrapStoreErr("upsert artifact", err)
	}

	return nil
}

// AppendRemix atomically appends one lineage entry. The append happens in
// the UPDATE itself so concurrent remixes of the same origin never lose
// entries to a read-modify-write race, and the graveyarded predicate keeps
// a concurrently frozen lineage closed without a separate read.
func (r *ArtifactRepository) AppendRemix(ctx context.Context, id string, entry models.RemixEntry) error {
	query := `
		UPDATE artifact
		SET remix_history = remix_history || $2::jsonb
		WHERE artifact_id = $1 AND graveyarded = FALSE
	`

	tag, err := r.db.Exec(ctx, query, id, []models.RemixEntry{entry})
	if err != nil {
		return wrapStoreErr("append remix", err)
	}
	if tag.RowsAffected() == 0 {
		// Zero rows is either a missing id or a frozen lineage.
		var graveyarded bool
		err := r.db.QueryRow(ctx,
			`SELECT graveyarded FROM artifact WHERE artifact_id = $1`, id,
		).Scan(&graveyarded)
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ErrNotFound
		}
		if err != nil {
			return wrapStoreErr("append remix", err)
		}
		if graveyarded {
			return models.ErrForbidden
		}
		return models.ErrNotFound
	}

	return nil
}

// CrownIfUncrowned is the crowning compare-and-set
func (r *ArtifactRepository) CrownIfUncrowned(ctx context.Context, id string, t tier.Tier) (bool, error) {
	query := `
		UPDATE artifact
		SET crowned = TRUE, tier = $2
		WHERE artifact_id = $1 AND crowned = FALSE AND graveyarded = FALSE
	`

	tag, err := r.db.Exec(ctx, query, id, string(t))
	if err != nil {
		return false, wrapStoreErr("crown artifact", err)
	}

	return tag.RowsAffected() == 1, nil
}

// GraveyardIfActive marks the artifact retired if it isn't already
func (r *ArtifactRepository) GraveyardIfActive(ctx context.Context, id, actor string, at time.Time) (bool, error) {
	query := `
		UPDATE artifact
		SET graveyarded = TRUE, graveyarded_by = $2, graveyarded_at = $3
		WHERE artifact_id = $1 AND graveyarded = FALSE
	`

	tag, err := r.db.Exec(ctx, query, id, actor, at)
	if err != nil {
		return false, wrapStoreErr("graveyard artifact", err)
	}

	return tag.RowsAffected() == 1, nil
}

// queryArtifacts runs a multi-row artifact query
func (r *ArtifactRepository) queryArtifacts(ctx context.Context, op, query string, args ...any) ([]*models.Artifact, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapStoreErr(op, err)
	}
	defer rows.Close()

	var artifacts []*models.Artifact
	for rows.Next() {
		artifact, err := scanArtifact(rows)
		if err != nil {
			return nil, wrapStoreErr(op, err)
		}
		artifacts = append(artifacts, artifact)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapStoreErr(op, err)
	}

	return artifacts, nil
}

// scanArtifact scans one artifact row and validates its tier against the
// fixed hierarchy. An out-of-hierarchy tier is data corruption and fails
// the read rather than being coerced.
func scanArtifact(row pgx.Row) (*models.Artifact, error) {
	artifact := &models.Artifact{}
	var mediaType, tierValue string

	err := row.Scan(
		&artifact.ID,
		&artifact.Name,
		&artifact.Actor,
		&mediaType,
		&artifact.Format,
		&artifact.Tags,
		&artifact.Fingerprint,
		&artifact.RemixHistory,
		&tierValue,
		&artifact.Crowned,
		&artifact.Graveyarded,
		&artifact.GraveyardedBy,
		&artifact.GraveyardedAt,
		&artifact.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	artifact.Type = models.MediaKind(mediaType)
	artifact.Tier = tier.Tier(tierValue)
	if !tier.Valid(artifact.Tier) {
		return nil, fmt.Errorf("artifact %s: %w: %q", artifact.ID, tier.ErrUnknownTier, tierValue)
	}

	artifact.Normalize()
	return artifact, nil
}

// wrapStoreErr maps storage-layer failures onto the ledger taxonomy
func wrapStoreErr(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrNotFound
	}
	if errors.Is(err, tier.ErrUnknownTier) {
		return fmt.Errorf("%s: %w", op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%s: %w", op, models.ErrDuplicateContent)
	}

	return fmt.Errorf("%s: %w: %v", op, models.ErrStoreUnavailable, err)
}
