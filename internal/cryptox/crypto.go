// Package cryptox holds small hashing helpers for one-time secrets that are
// stored only as digests.
package cryptox

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Digest returns the hex SHA-256 of parts joined with ':'. Binding a secret
// to its owner this way makes the same secret hash differently per owner.
func Digest(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, ":")))
	return hex.EncodeToString(sum[:])
}
