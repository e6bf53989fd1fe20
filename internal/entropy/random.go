// Package entropy provides the random source shared by every stochastic
// decision in a simulation. Seeded sources are reproducible; CryptoSource is
// available when a run should not be replayable.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand"
)

// Source supplies uniform reals in [0, 1) and integers in [0, n).
type Source interface {
	Float64() float64
	Intn(n int) int
}

// NewSource returns a deterministic source for the given seed.
func NewSource(seed int64) Source {
	return mrand.New(mrand.NewSource(seed))
}

// CryptoSource draws from crypto/rand. It is not reproducible.
type CryptoSource struct{}

// Float64 returns a random float64 in [0, 1).
func (CryptoSource) Float64() float64 {
	return cryptoRandFloat()
}

// Intn returns a random int in [0, n). Panics if n <= 0, like math/rand.
func (CryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("entropy: invalid argument to Intn")
	}
	return int(cryptoRandFloat() * float64(n))
}

// cryptoRandFloat generates a random float64 using crypto/rand.
func cryptoRandFloat() float64 {
	var buf [8]byte
	_, err := rand.Read(buf[:])
	if err != nil {
		// This should never happen but return 0.5 as a safe default.
		return 0.5
	}
	// Use only 53 bits for a uniform float64 in [0, 1).
	n := binary.LittleEndian.Uint64(buf[:]) >> 11
	return float64(n) / float64(1<<53)
}

// Scripted replays a fixed sequence of draws. Floats and ints are consumed
// from separate queues; an exhausted queue yields 0.
type Scripted struct {
	Floats []float64
	Ints   []int
}

// Float64 returns the next scripted float.
func (s *Scripted) Float64() float64 {
	if len(s.Floats) == 0 {
		return 0
	}
	v := s.Floats[0]
	s.Floats = s.Floats[1:]
	return v
}

// Intn returns the next scripted int, clamped into [0, n).
func (s *Scripted) Intn(n int) int {
	if len(s.Ints) == 0 {
		return 0
	}
	v := s.Ints[0]
	s.Ints = s.Ints[1:]
	if v >= n {
		v = n - 1
	}
	if v < 0 {
		v = 0
	}
	return v
}
