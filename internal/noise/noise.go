package noise

import (
	"math"

	"voxelforge/internal/rng"
)

// Seeded 2D lattice-gradient noise with fractal summation. Gradients are
// hashed through a shuffled permutation table, so the field is a pure
// function of the seed. This is not true Simplex noise; the contract is
// continuity, determinism and seed sensitivity, not a specific spectrum.

// Field is a 2D coherent noise field. Build one per generation call; the
// permutation table is cheap to derive and callers must not share state
// across requests.
type Field struct {
	// perm is a 256-entry table duplicated to 512 so corner lookups never
	// need a wrap-around check.
	perm [512]int
}

const invSqrt2 = 0.70710678118654752

// Eight unit-ish gradient directions; the hash picks one per lattice corner.
var gradients = [8][2]float64{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{invSqrt2, invSqrt2}, {-invSqrt2, invSqrt2},
	{invSqrt2, -invSqrt2}, {-invSqrt2, -invSqrt2},
}

// New builds a noise field from a seed by Fisher-Yates-shuffling [0..255]
// with the seeded generator.
func New(seed int32) *Field {
	f := &Field{}
	r := rng.New(seed)

	var table [256]int
	for i := range table {
		table[i] = i
	}
	for i := len(table) - 1; i > 0; i-- {
		j := r.NextInt(0, i)
		table[i], table[j] = table[j], table[i]
	}
	for i, v := range table {
		f.perm[i] = v
		f.perm[i+256] = v
	}
	return f
}

// fade is the smoothstep-like curve 6t^5 - 15t^4 + 10t^3.
func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func (f *Field) grad(hash int, x, y float64) float64 {
	g := gradients[hash&7]
	return g[0]*x + g[1]*y
}

// Noise2D returns coherent noise roughly in [-1, 1].
func (f *Field) Noise2D(x, y float64) float64 {
	fx := math.Floor(x)
	fy := math.Floor(y)
	xi := int(fx) & 255
	yi := int(fy) & 255
	xf := x - fx
	yf := y - fy

	u := fade(xf)
	v := fade(yf)

	aa := f.perm[f.perm[xi]+yi]
	ab := f.perm[f.perm[xi]+yi+1]
	ba := f.perm[f.perm[xi+1]+yi]
	bb := f.perm[f.perm[xi+1]+yi+1]

	x1 := lerp(f.grad(aa, xf, yf), f.grad(ba, xf-1, yf), u)
	x2 := lerp(f.grad(ab, xf, yf-1), f.grad(bb, xf-1, yf-1), u)
	return lerp(x1, x2, v)
}

// FBM sums octaves of Noise2D at increasing frequency and decreasing
// amplitude, normalized by the total amplitude so the result stays in the
// same range regardless of octave count.
func (f *Field) FBM(x, y float64, octaves int, lacunarity, persistence float64) float64 {
	amplitude := 1.0
	frequency := 1.0
	sum := 0.0
	norm := 0.0
	for o := 0; o < octaves; o++ {
		sum += f.Noise2D(x*frequency, y*frequency) * amplitude
		norm += amplitude
		amplitude *= persistence
		frequency *= lacunarity
	}
	if norm == 0 {
		return 0
	}
	return sum / norm
}
