package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashToken returns a hex digest used for opaque, filesystem-safe tokens.
func HashToken(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
