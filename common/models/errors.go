package models

import "errors"

// Ledger error taxonomy. Callers classify with errors.Is; the HTTP layer
// maps these to status codes.
var (
	// ErrNotFound targets a missing artifact id. Expected under races
	// (graveyarded/never existed) and surfaced distinctly from transient
	// failures.
	ErrNotFound = errors.New("artifact not found")

	// ErrDuplicateContent rejects a same-actor re-upload of identical
	// bytes at ingestion. A business outcome, not a system fault.
	ErrDuplicateContent = errors.New("duplicate content for actor")

	// ErrForbidden is a rights denial (not crownable, or lineage frozen
	// by graveyarding). Expected, user-facing.
	ErrForbidden = errors.New("operation forbidden")

	// ErrAlreadyCrowned reports a lost crown race: the artifact was
	// crowned by a concurrent caller with a different resolved tier.
	ErrAlreadyCrowned = errors.New("artifact already crowned")

	// ErrStoreUnavailable wraps transient storage failures. Retryable by
	// the caller with backoff; the ledger never retries internally.
	ErrStoreUnavailable = errors.New("artifact store unavailable")
)
