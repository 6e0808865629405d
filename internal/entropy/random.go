// Package entropy provides the randomness used by stochastic checks.
// Runs are reproducible: every suite draws from its own source derived
// from the run seed and the suite ID. When no seed is configured one is
// drawn from crypto/rand and recorded in the report.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	"hash/fnv"
	mrand "math/rand"
)

// Source is a deterministic random source scoped to one suite.
type Source struct {
	seed int64
	rng  *mrand.Rand
}

// NewSource creates a source from an explicit seed.
func NewSource(seed int64) *Source {
	return &Source{seed: seed, rng: mrand.New(mrand.NewSource(seed))}
}

// ForSuite derives a suite-scoped source so results do not depend on
// the order in which suites are scheduled.
func ForSuite(runSeed int64, suiteID string) *Source {
	return NewSource(Derive(runSeed, suiteID))
}

// Derive mixes a run seed with a label into a new seed.
func Derive(runSeed int64, label string) int64 {
	h := fnv.New64a()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(runSeed))
	h.Write(buf[:])
	h.Write([]byte(label))
	return int64(h.Sum64() >> 1)
}

// Seed returns the seed the source was created with.
func (s *Source) Seed() int64 {
	return s.seed
}

// Float returns a float64 in [0, 1).
func (s *Source) Float() float64 {
	return s.rng.Float64()
}

// Intn returns an int in [0, n).
func (s *Source) Intn(n int) int {
	return s.rng.Intn(n)
}

// Bits returns a random binary string of length n.
func (s *Source) Bits(n int) string {
	b := make([]byte, n)
	for i := range b {
		if s.rng.Intn(2) == 1 {
			b[i] = '1'
		} else {
			b[i] = '0'
		}
	}
	return string(b)
}

// Normal returns a standard normal deviate.
func (s *Source) Normal() float64 {
	return s.rng.NormFloat64()
}

// CryptoSeed draws a positive seed from crypto/rand.
func CryptoSeed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// This should never happen; fall back to a fixed seed.
		return 42
	}
	return int64(binary.LittleEndian.Uint64(buf[:]) >> 1)
}

// ResolveSeed returns seed unless it is zero, in which case a fresh
// crypto seed is drawn.
func ResolveSeed(seed int64) int64 {
	if seed != 0 {
		return seed
	}
	return CryptoSeed()
}
