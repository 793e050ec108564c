package core

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// HashString hashes a string
func HashString(s string) Hash {
	return NewHash([]byte(s))
}

// HashJSON hashes the canonical JSON encoding of v.
// Map keys are sorted by encoding/json, so equal values hash equally.
func HashJSON(v interface{}) (Hash, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("hash: marshal: %w", err)
	}
	return NewHash(data), nil
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// DeriveSeed maps a base seed and a stream name onto a stable sub-seed.
// Every consumer of randomness gets its own stream so lessons stay
// independent of execution order.
func DeriveSeed(base int64, name string) int64 {
	var buf strings.Builder
	buf.WriteString(fmt.Sprintf("%d:", base))
	buf.WriteString(name)
	sum := sha256.Sum256([]byte(buf.String()))
	derived := int64(binary.BigEndian.Uint64(sum[:8]) &^ (1 << 63))
	return derived
}

// FingerprintParts hashes an ordered set of string parts into a single
// fingerprint. Replays with identical parts produce identical fingerprints.
func FingerprintParts(parts ...string) Hash {
	var data strings.Builder
	for _, p := range parts {
		data.WriteString(p)
		data.WriteByte('\n')
	}
	return NewHash([]byte(data.String()))
}
