// Package identity derives the organizer key that joins occurrences across
// platforms and pipeline runs.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// KeyLength is the number of hex characters kept from the digest.
const KeyLength = 12

// Normalize trims surrounding whitespace and lowercases name.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Resolve returns the organizer key for name: the first KeyLength hex
// characters of SHA-256 over the normalized UTF-8 bytes. An empty name
// resolves to the key of the empty string, so nameless rows group together.
func Resolve(name string) string {
	sum := sha256.Sum256([]byte(Normalize(name)))
	return hex.EncodeToString(sum[:])[:KeyLength]
}
