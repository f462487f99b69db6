package runtime

import "math/rand"

// RandomSource replaces a global RNG with explicit state threaded into the
// builtin layer. One source per evaluator instance.
type RandomSource struct {
	rng *rand.Rand
}

// NewRandomSource seeds a deterministic source; seed 0 is valid.
func NewRandomSource(seed int64) *RandomSource {
	return &RandomSource{rng: rand.New(rand.NewSource(seed))}
}

// Float64 returns a pseudo-random value in [0, 1).
func (r *RandomSource) Float64() float64 {
	return r.rng.Float64()
}

// IntN returns a pseudo-random value in [0, n). n must be positive.
func (r *RandomSource) IntN(n int64) int64 {
	return r.rng.Int63n(n)
}

// Reseed resets the source to a known state.
func (r *RandomSource) Reseed(seed int64) {
	r.rng = rand.New(rand.NewSource(seed))
}
