// Package randutil holds the random sources used by the game: seeded PCG
// generators for shuffling and a hash source for deterministic collapse.
package randutil

import (
	"crypto/sha256"
	"encoding/binary"
	rand "math/rand/v2"
)

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// New returns a *rand.Rand seeded deterministically from the provided int64.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// NewFromString derives a generator from an arbitrary string such as a room
// ID, so a replayed room shuffles identically.
func NewFromString(seed string) *rand.Rand {
	sum := sha256.Sum256([]byte(seed))
	return New(int64(binary.BigEndian.Uint64(sum[:8])))
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
