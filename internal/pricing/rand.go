package pricing

import (
	"math/rand"
	"sync"
	"time"
)

// DrawSource yields an independent pseudo-random stream per (tick, ordinal)
// draw site. Nothing mutates process-wide RNG state, so concurrent ticks
// never perturb each other's sequences.
type DrawSource interface {
	Stream(tick int64, ordinal int) *rand.Rand
	Deterministic() bool
}

// SystemSource draws fresh unpredictable streams. Used outside demo mode.
type SystemSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewSystemSource creates a time-seeded source.
func NewSystemSource() *SystemSource {
	return &SystemSource{r: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (s *SystemSource) Stream(tick int64, ordinal int) *rand.Rand {
	s.mu.Lock()
	seed := s.r.Int63()
	s.mu.Unlock()
	return rand.New(rand.NewSource(seed))
}

func (s *SystemSource) Deterministic() bool { return false }

// SeededSource reproduces the same stream for the same (seed, tick, ordinal)
// across calls and processes. Used for demo runs.
type SeededSource struct {
	seed int64
}

// NewSeededSource creates a fixed-seed source.
func NewSeededSource(seed int64) SeededSource {
	return SeededSource{seed: seed}
}

func (s SeededSource) Stream(tick int64, ordinal int) *rand.Rand {
	return rand.New(rand.NewSource(mix(s.seed, tick, int64(ordinal))))
}

func (s SeededSource) Deterministic() bool { return true }

// mix folds seed, tick and ordinal into one well-spread 63-bit value
// (splitmix64 finalizer).
func mix(seed, tick, ordinal int64) int64 {
	z := uint64(seed)
	z ^= uint64(tick) * 0x9e3779b97f4a7c15
	z ^= uint64(ordinal) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	z ^= z >> 31
	return int64(z & 0x7fffffffffffffff)
}
