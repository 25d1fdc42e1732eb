// Package sampling produces blue-noise point sets over a rectangle.
package sampling

import (
	"math"

	"polyterrain/internal/profiling"
	"polyterrain/internal/rng"

	"github.com/go-gl/mathgl/mgl64"
)

// DefaultAttempts is the number of candidates tried around an active point
// before it is retired.
const DefaultAttempts = 30

// Generate returns Poisson-disc samples over [0, region.X) x [0, region.Y)
// with no two points closer than radius. The stream is seeded from seed, so
// identical arguments always give the identical sequence, in insertion order.
func Generate(radius float64, region mgl64.Vec2, seed int) []mgl64.Vec2 {
	return GenerateWith(radius, region, DefaultAttempts, rng.New(seed))
}

// GenerateWith is Generate with an explicit attempt count and generator.
func GenerateWith(radius float64, region mgl64.Vec2, attempts int, r *rng.Generator) []mgl64.Vec2 {
	defer profiling.Track("sampling.Generate")()

	width, height := region.X(), region.Y()
	if !(radius > 0) || !(width > 0) || !(height > 0) {
		return nil
	}
	if attempts <= 0 {
		attempts = DefaultAttempts
	}

	// r/sqrt(2) keeps at most one sample per cell
	cell := radius / math.Sqrt2
	cols := int(math.Ceil(width / cell))
	rows := int(math.Ceil(height / cell))
	grid := make([]int, cols*rows)
	for i := range grid {
		grid[i] = -1
	}

	toCell := func(p mgl64.Vec2) (int, int) {
		cx := int(p.X() / cell)
		cy := int(p.Y() / cell)
		return min(max(cx, 0), cols-1), min(max(cy, 0), rows-1)
	}

	points := make([]mgl64.Vec2, 0, cols*rows/2+1)
	active := make([]int, 0, 64)
	r2 := radius * radius

	valid := func(p mgl64.Vec2) bool {
		if p.X() < 0 || p.X() >= width || p.Y() < 0 || p.Y() >= height {
			return false
		}
		cx, cy := toCell(p)
		for y := max(cy-2, 0); y <= min(cy+2, rows-1); y++ {
			for x := max(cx-2, 0); x <= min(cx+2, cols-1); x++ {
				idx := grid[y*cols+x]
				if idx >= 0 && points[idx].Sub(p).LenSqr() < r2 {
					return false
				}
			}
		}
		return true
	}

	insert := func(p mgl64.Vec2) {
		idx := len(points)
		points = append(points, p)
		active = append(active, idx)
		cx, cy := toCell(p)
		grid[cy*cols+cx] = idx
	}

	start := mgl64.Vec2{
		math.Min(r.RangeFloat(0, width), math.Nextafter(width, 0)),
		math.Min(r.RangeFloat(0, height), math.Nextafter(height, 0)),
	}
	insert(start)

	for len(active) > 0 {
		ai := r.Range(0, len(active))
		centre := points[active[ai]]

		found := false
		for k := 0; k < attempts; k++ {
			angle := r.RangeFloat(0, 2*math.Pi)
			dist := r.RangeFloat(radius, 2*radius)
			sin, cos := math.Sincos(angle)
			candidate := centre.Add(mgl64.Vec2{cos * dist, sin * dist})
			if valid(candidate) {
				insert(candidate)
				found = true
				break
			}
		}

		if !found {
			active[ai] = active[len(active)-1]
			active = active[:len(active)-1]
		}
	}

	return points
}
