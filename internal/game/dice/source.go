package dice

import (
	"crypto/rand"
	"math/big"
	mrand "math/rand"
	"sync"
)

// cryptoSource implements Source using crypto/rand.
//
// Invariant: All values produced are cryptographically secure and uniformly
// distributed in [0, n) for any n > 0.
type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand.
//
// Postcondition: Every value returned by Intn is in [0, n).
func NewCryptoSource() Source {
	return &cryptoSource{}
}

// Intn returns a cryptographically secure random int in [0, n).
//
// Precondition: n > 0. Panics with "dice: Intn called with n <= 0" if n <= 0.
// Panics with "dice: crypto/rand failure: <err>" if crypto/rand fails.
func (c *cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	val, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("dice: crypto/rand failure: " + err.Error())
	}
	return int(val.Int64())
}

// SeededSource is a deterministic Source for replays and simulations.
// Position counts draws so a run can be reproduced from (seed, position).
type SeededSource struct {
	mu   sync.Mutex
	seed int64
	src  *mrand.Rand
	pos  int64
}

// NewSeededSource creates a deterministic Source from seed.
func NewSeededSource(seed int64) *SeededSource {
	return &SeededSource{seed: seed, src: mrand.New(mrand.NewSource(seed))}
}

// Intn returns a deterministic pseudo-random int in [0, n).
//
// Precondition: n > 0.
func (s *SeededSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pos++
	return s.src.Intn(n)
}

// Seed returns the seed this source was created with.
func (s *SeededSource) Seed() int64 { return s.seed }

// Position returns the number of draws made since creation.
func (s *SeededSource) Position() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos
}

// FixedSource replays a fixed sequence of values, wrapping when exhausted.
// Each value is reduced modulo n. Intended for tests that need exact rolls.
type FixedSource struct {
	mu     sync.Mutex
	values []int
	next   int
}

// NewFixedSource returns a FixedSource that replays values in order.
//
// Precondition: len(values) > 0.
func NewFixedSource(values ...int) *FixedSource {
	if len(values) == 0 {
		values = []int{0}
	}
	return &FixedSource{values: values}
}

// Intn returns the next queued value modulo n.
func (f *FixedSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	v := f.values[f.next%len(f.values)]
	f.next++
	if v < 0 {
		v = -v
	}
	return v % n
}
