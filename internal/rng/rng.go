package rng

// Deterministic linear congruential generator used by worldgen.
// Same seed and call order always produce the same stream, which is what
// chunk regeneration relies on; math/rand gives no such cross-version promise.

const (
	multiplier = 1103515245
	increment  = 12345
	modulus    = 1 << 31
)

// LCG holds the generator state. Not safe for concurrent use; each
// generation call owns its own instance.
type LCG struct {
	state int64
}

// New creates a generator from a 32-bit seed.
func New(seed int32) *LCG {
	return &LCG{state: int64(seed) & (modulus - 1)}
}

// Next returns the next value in [0, 1).
func (r *LCG) Next() float64 {
	r.state = (r.state*multiplier + increment) & (modulus - 1)
	return float64(r.state) / float64(modulus)
}

// NextInt returns an integer in [min, max], both ends inclusive.
func (r *LCG) NextInt(min, max int) int {
	return min + int(r.Next()*float64(max-min+1))
}
