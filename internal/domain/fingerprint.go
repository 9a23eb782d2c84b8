package domain

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint builds a cache key from a logical key and the exact content
// sent to the model. Same content under a different logical key is a
// different entry.
func Fingerprint(logicalKey, content string) string {
	sum := sha256.Sum256([]byte(content))
	return logicalKey + ":" + hex.EncodeToString(sum[:])
}
