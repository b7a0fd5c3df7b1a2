package devbolt

import (
	"crypto/sha256"
	"encoding/binary"
)

// DefaultSeed is the hash seed used when neither the rollout nor the context
// supplies one. Changing it reshuffles every bucket assignment, so it is part
// of the cross-language compatibility contract.
const DefaultSeed = "devbolt"

// Bucket maps (flagName, identifier, seed) to a stable integer in [0,99].
//
// The scheme is fixed: SHA-256 over the UTF-8 bytes of
// "seed:flagName:identifier" (DefaultSeed when seed is empty), with the first
// four digest bytes read as a big-endian unsigned 32-bit integer, reduced
// modulo 100. That equals interpreting the first 8 hex characters of the
// digest, so any language's standard SHA-256 reproduces identical buckets.
func Bucket(flagName, identifier, seed string) int {
	if seed == "" {
		seed = DefaultSeed
	}
	sum := sha256.Sum256([]byte(seed + ":" + flagName + ":" + identifier))
	return int(binary.BigEndian.Uint32(sum[:4]) % 100)
}

// InRollout reports whether identifier falls inside a rollout percentage for
// flagName. The 0 and 100 endpoints short-circuit without hashing, which
// guards float rounding at the boundaries.
func InRollout(flagName, identifier string, percentage float64, seed string) bool {
	if percentage == 0 {
		return false
	}
	if percentage == 100 {
		return true
	}
	return float64(Bucket(flagName, identifier, seed)) < percentage
}
