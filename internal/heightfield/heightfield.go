// Package heightfield synthesises terrain elevation from layered noise and
// flattens it along paths.
package heightfield

import (
	"context"
	"runtime"
	"sync"

	"polyterrain/internal/mesh"
	"polyterrain/internal/profiling"
	"polyterrain/internal/rng"

	"github.com/go-gl/mathgl/mgl64"
)

// Params shapes the octave sum.
type Params struct {
	Octaves        int
	Persistence    float64
	FrequencyBase  float64
	ElevationScale float64
}

// Field evaluates elevation anywhere on the plane. It is read-only after
// construction and safe for concurrent use.
type Field struct {
	params Params
	seeds  []float64
	noise  Noise
}

// New draws one offset per octave from r, in octave order.
func New(p Params, noise Noise, r *rng.Generator) *Field {
	seeds := make([]float64, max(p.Octaves, 0))
	for i := range seeds {
		seeds[i] = r.RangeFloat(0, 100)
	}
	return NewWithSeeds(p, noise, seeds)
}

// NewWithSeeds uses explicit per-octave offsets.
func NewWithSeeds(p Params, noise Noise, seeds []float64) *Field {
	if noise == nil {
		noise = ValueNoise{}
	}
	return &Field{params: p, seeds: append([]float64(nil), seeds...), noise: noise}
}

// Params returns the field parameters.
func (f *Field) Params() Params { return f.params }

// Seeds returns a copy of the per-octave offsets.
func (f *Field) Seeds() []float64 { return append([]float64(nil), f.seeds...) }

// Elevation returns the natural terrain height at p.
//
// Amplitude starts at persistence^octaves and is divided by persistence
// after each octave while the frequency is multiplied by the frequency
// base, so with persistence < 1 the coarse late octaves dominate.
func (f *Field) Elevation(p mgl64.Vec2) float64 {
	amplitude := 1.0
	for i := 0; i < f.params.Octaves; i++ {
		amplitude *= f.params.Persistence
	}
	frequency := 1.0
	sum, norm := 0.0, 0.0

	for _, seed := range f.seeds {
		sample := f.noise.Noise2D(seed+p.X()*frequency, seed+p.Y()*frequency) - 0.5
		sum += sample * amplitude
		norm += amplitude
		amplitude /= f.params.Persistence
		frequency *= f.params.FrequencyBase
	}
	if norm == 0 {
		return 0
	}
	return sum / norm * f.params.ElevationScale
}

// Smoothed averages Elevation over a 3x3 stencil: p, the four axis
// neighbours at dist and the four diagonals at dist/2 on each axis.
func (f *Field) Smoothed(p mgl64.Vec2, dist float64) float64 {
	if dist <= 0 {
		return f.Elevation(p)
	}
	h := dist / 2
	offsets := [9]mgl64.Vec2{
		{0, 0},
		{-dist, 0}, {dist, 0}, {0, dist}, {0, -dist},
		{-h, h}, {h, h}, {-h, -h}, {h, -h},
	}
	sum := 0.0
	for _, o := range offsets {
		sum += f.Elevation(p.Add(o))
	}
	return sum / 9
}

// Compute evaluates Elevation for every vertex, indexed by vertex ID. Work
// is split across workers goroutines (runtime.NumCPU when <= 0).
func (f *Field) Compute(ctx context.Context, vertices []mesh.Vertex, workers int) ([]float64, error) {
	defer profiling.Track("heightfield.Compute")()

	out := make([]float64, len(vertices))
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	chunk := (len(vertices) + workers - 1) / max(workers, 1)
	if chunk == 0 {
		return out, ctx.Err()
	}

	var wg sync.WaitGroup
	for start := 0; start < len(vertices); start += chunk {
		end := min(start+chunk, len(vertices))
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				if (i-lo)&255 == 0 && ctx.Err() != nil {
					return
				}
				out[vertices[i].ID] = f.Elevation(vertices[i].Pos)
			}
		}(start, end)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
