package service

import (
	"crypto/sha256"
	"fmt"
)

// Fingerprint computes the deterministic content hash used for per-actor
// deduplication. Pure function over the raw bytes.
func Fingerprint(content []byte) string {
	hash := sha256.Sum256(content)
	return fmt.Sprintf("sha256:%x", hash)
}
