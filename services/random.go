package services

import (
	"math/rand/v2"
	"sync"
)

// RandomSource supplies the point draws and bonus trials. Implementations must be safe for
// concurrent use.
type RandomSource interface {
	// IntN returns a uniform value in [0, n).
	IntN(n int64) int64
	// Float64 returns a uniform value in [0, 1).
	Float64() float64
}

type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRandomSource returns a seeded, goroutine-safe source.
func NewRandomSource(seed uint64) RandomSource {
	return &lockedRand{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (l *lockedRand) IntN(n int64) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Int64N(n)
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

type globalRand struct{}

// SystemRandom draws from the runtime's auto-seeded generator.
func SystemRandom() RandomSource { return globalRand{} }

func (globalRand) IntN(n int64) int64 { return rand.Int64N(n) }
func (globalRand) Float64() float64   { return rand.Float64() }

// drawInRange returns a uniform value in [min, max].
func drawInRange(src RandomSource, min, max int64) int64 {
	if max <= min {
		return min
	}
	return min + src.IntN(max-min+1)
}
