package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/remixlabs/ledger/common/db"
)

// schema is the ledger DDL, applied idempotently on startup via the
// bootstrap DB init hook.
const schema = `
CREATE TABLE IF NOT EXISTS artifact (
	artifact_id    TEXT PRIMARY KEY,
	name           TEXT NOT NULL,
	actor          TEXT NOT NULL,
	media_type     TEXT NOT NULL,
	format         TEXT NOT NULL,
	tags           TEXT[] NOT NULL DEFAULT '{}',
	fingerprint    TEXT NOT NULL,
	remix_history  JSONB NOT NULL DEFAULT '[]'::jsonb,
	tier           TEXT NOT NULL,
	crowned        BOOLEAN NOT NULL DEFAULT FALSE,
	graveyarded    BOOLEAN NOT NULL DEFAULT FALSE,
	graveyarded_by TEXT,
	graveyarded_at TIMESTAMPTZ,
	created_at     TIMESTAMPTZ NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_artifact_actor_fingerprint
	ON artifact (actor, fingerprint);

CREATE INDEX IF NOT EXISTS idx_artifact_actor ON artifact (actor);

CREATE INDEX IF NOT EXISTS idx_artifact_tier ON artifact (tier);
`

// InitSchema applies the ledger schema
func InitSchema(database *db.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := database.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply ledger schema: %w", err)
	}

	return nil
}
