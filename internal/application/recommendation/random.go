package recommendation

import (
	"math/rand"
	"sync"
	"time"
)

// RandomSource supplies the pseudo-random values used by the fallbacks.
// Tests inject a seeded or scripted source.
type RandomSource interface {
	// Intn returns a value in [0, n).
	Intn(n int) int
	// Float64 returns a value in [0, 1).
	Float64() float64
}

// lockedSource makes a *rand.Rand safe for concurrent requests.
type lockedSource struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandomSource returns a goroutine-safe source seeded with seed.
func NewRandomSource(seed int64) RandomSource {
	return &lockedSource{rnd: rand.New(rand.NewSource(seed))}
}

// NewTimeSeededSource is the production source.
func NewTimeSeededSource() RandomSource {
	return NewRandomSource(time.Now().UnixNano())
}

func (s *lockedSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Intn(n)
}

func (s *lockedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Float64()
}

// between returns an integer in [lo, hi].
func between(r RandomSource, lo, hi int) int {
	return lo + r.Intn(hi-lo+1)
}
