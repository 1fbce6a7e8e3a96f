package randutil

import (
	"crypto/sha256"
	"encoding/binary"
	rand "math/rand/v2"
)

// HashSource turns a seed string into a uniform float in [0, 1) using
// SHA-256. Any evaluator holding the same seed computes the same value.
type HashSource struct{}

// UniformFloat returns the top 53 bits of the digest scaled to [0, 1).
func (HashSource) UniformFloat(seed string) float64 {
	sum := sha256.Sum256([]byte(seed))
	return float64(binary.BigEndian.Uint64(sum[:8])>>11) / (1 << 53)
}

// EntropySource ignores the seed and draws from a generator. Used where
// outcomes need not be reproducible by other observers.
type EntropySource struct {
	rng *rand.Rand
}

// NewEntropySource wraps rng.
func NewEntropySource(rng *rand.Rand) *EntropySource {
	return &EntropySource{rng: rng}
}

func (s *EntropySource) UniformFloat(string) float64 {
	return s.rng.Float64()
}
