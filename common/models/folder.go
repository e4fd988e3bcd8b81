package models

import "strings"

// Folderize composes the canonical storage path segment for an artifact:
// actor / type / tier / (remixed|original) [/ crowned] [/ graveyard].
// Pure function; the external storage layer uses it to place media bytes,
// the ledger itself never moves files.
func Folderize(a *Artifact) string {
	segments := []string{
		a.Actor,
		string(a.Type),
		string(a.Tier),
	}

	if a.IsRemixed() {
		segments = append(segments, "remixed")
	} else {
		segments = append(segments, "original")
	}

	if a.Crowned {
		segments = append(segments, "crowned")
	}
	if a.Graveyarded {
		segments = append(segments, "graveyard")
	}

	return strings.Join(segments, "/")
}
