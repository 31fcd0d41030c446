// Package checksum fingerprints document text for revisions and ETags.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of text.
func Sum(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}

// ETag returns a strong HTTP entity tag for a digest produced by Sum.
func ETag(sum string) string {
	return `"` + sum + `"`
}
