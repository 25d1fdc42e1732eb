package heightfield

import (
	"fmt"
	"math"

	"github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"
)

// Noise is a coherent 2D noise basis with output in [0, 1].
type Noise interface {
	Noise2D(x, y float64) float64
}

// Basis names a Noise implementation.
type Basis string

const (
	BasisValue   Basis = "value"
	BasisPerlin  Basis = "perlin"
	BasisSimplex Basis = "simplex"
)

// NewNoise returns the basis for name seeded with seed.
func NewNoise(basis Basis, seed int64) (Noise, error) {
	switch basis {
	case BasisValue, "":
		return ValueNoise{Seed: seed}, nil
	case BasisPerlin:
		return newPerlinNoise(seed), nil
	case BasisSimplex:
		return simplexNoise{opensimplex.NewNormalized(seed)}, nil
	default:
		return nil, fmt.Errorf("unknown noise basis %q", basis)
	}
}

// ValueNoise is lattice value noise: hashed corner values blended with a
// quintic fade.
type ValueNoise struct {
	Seed int64
}

// fade is 6t^5 - 15t^4 + 10t^3
func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// hash2 is a SplitMix64 finaliser over the lattice coordinates.
func hash2(x, y, seed int64) uint64 {
	v := uint64(x) + (uint64(y) << 1) + uint64(seed)*0x9E3779B97F4A7C15
	v += 0x9E3779B97F4A7C15
	v = (v ^ (v >> 30)) * 0xBF58476D1CE4E5B9
	v = (v ^ (v >> 27)) * 0x94D049BB133111EB
	return v ^ (v >> 31)
}

func latticeValue(x, y, seed int64) float64 {
	return float64(hash2(x, y, seed)&0xFFFFFFFF) / float64(0xFFFFFFFF)
}

// Noise2D samples the noise at (x, y).
func (n ValueNoise) Noise2D(x, y float64) float64 {
	x0, y0 := math.Floor(x), math.Floor(y)
	fx, fy := fade(x-x0), fade(y-y0)
	ix, iy := int64(x0), int64(y0)

	v00 := latticeValue(ix, iy, n.Seed)
	v10 := latticeValue(ix+1, iy, n.Seed)
	v01 := latticeValue(ix, iy+1, n.Seed)
	v11 := latticeValue(ix+1, iy+1, n.Seed)

	return lerp(lerp(v00, v10, fx), lerp(v01, v11, fx), fy)
}

type perlinNoise struct {
	p *perlin.Perlin
}

func newPerlinNoise(seed int64) perlinNoise {
	return perlinNoise{perlin.NewPerlin(2, 2, 3, seed)}
}

func (n perlinNoise) Noise2D(x, y float64) float64 {
	v := 0.5 + 0.5*n.p.Noise2D(x, y)
	return math.Min(1, math.Max(0, v))
}

type simplexNoise struct {
	n opensimplex.Noise
}

func (n simplexNoise) Noise2D(x, y float64) float64 {
	return n.n.Eval2(x, y)
}
