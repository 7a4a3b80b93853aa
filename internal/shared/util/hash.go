package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash returns the hex SHA-256 of s. Used for filesystem-safe staging namespaces.
func Hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
