package models

import (
	"time"

	"github.com/remixlabs/ledger/common/tier"
)

// MediaKind represents the media type of an artifact
type MediaKind string

const (
	KindAudio MediaKind = "audio"
	KindVideo MediaKind = "video"
	KindImage MediaKind = "image"
	KindText  MediaKind = "text"
	KindOther MediaKind = "other"
)

// RemixAction is the action recorded in a lineage entry
type RemixAction string

const (
	ActionRemixed RemixAction = "Remixed"
)

// RemixEntry is one append-only lineage record on an origin artifact.
// Entries are never removed or reordered.
type RemixEntry struct {
	// Action performed ('Remixed')
	Action RemixAction `json:"action"`

	// Actor who produced the remix
	Actor string `json:"actor"`

	// ID of the remix's own artifact record
	NewArtifactID string `json:"new_artifact_id"`
}

// Artifact represents a single ingested media item with provenance metadata.
// Maps to: artifact table
type Artifact struct {
	// Unique ledger ID, assigned at ingestion (actor + timestamp + name)
	ID string `db:"artifact_id" json:"artifact_id"`

	// Original filename/title
	Name string `db:"name" json:"name"`

	// Identity of the creator who ingested the artifact
	Actor string `db:"actor" json:"actor"`

	// Media kind derived from extracted metadata
	Type MediaKind `db:"media_type" json:"type"`

	// Normalized storage format
	Format string `db:"format" json:"format"`

	// Tags from extracted metadata; non-nil, defaulted at construction
	Tags []string `db:"tags" json:"tags"`

	// Content hash (sha256:abc123...) used for per-actor deduplication
	Fingerprint string `db:"fingerprint" json:"fingerprint"`

	// Append-only remix lineage; non-nil, defaulted at construction
	RemixHistory []RemixEntry `db:"remix_history" json:"remix_history"`

	// Current tier; set at ingestion and again at crowning
	Tier tier.Tier `db:"tier" json:"tier"`

	// Crowned transitions false -> true exactly once
	Crowned bool `db:"crowned" json:"crowned"`

	// Graveyarded is terminal once set
	Graveyarded   bool       `db:"graveyarded" json:"graveyarded"`
	GraveyardedBy *string    `db:"graveyarded_by" json:"graveyarded_by,omitempty"`
	GraveyardedAt *time.Time `db:"graveyarded_at" json:"graveyarded_at,omitempty"`

	// Audit fields
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// IsRemixed checks if any remix has been recorded against this artifact
func (a *Artifact) IsRemixed() bool {
	return len(a.RemixHistory) > 0
}

// Normalize backfills the collection fields so callers never see nil
// tags/history regardless of what the store returned.
func (a *Artifact) Normalize() {
	if a.Tags == nil {
		a.Tags = []string{}
	}
	if a.RemixHistory == nil {
		a.RemixHistory = []RemixEntry{}
	}
}
