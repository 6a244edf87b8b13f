// Package checksum provides the digest used for day-list versioning.
// Handlers hash the serialized task list of a date and expose it as an
// ETag so concurrent edits can be detected.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
