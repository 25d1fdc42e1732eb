package physics

import (
	"polyterrain/internal/profiling"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// DefaultStep is the march length between surface tests.
	DefaultStep = 0.25
	// refineSteps halves the bracketing interval after the first crossing.
	refineSteps = 20
)

// RaycastResult stores the result of a raycast operation
type RaycastResult struct {
	Point    mgl64.Vec3
	Normal   mgl64.Vec3
	Triangle int
	Distance float64
	Hit      bool
}

// Raycast marches from start along direction and reports the first point at
// or below the terrain surface between minDist and maxDist. Samples outside
// the tile never hit. direction need not be normalised.
func (g *MeshGround) Raycast(start, direction mgl64.Vec3, minDist, maxDist float64) RaycastResult {
	defer profiling.Track("physics.Raycast")()

	result := RaycastResult{Triangle: -1}
	if direction.Len() == 0 || maxDist < minDist {
		return result
	}
	dir := direction.Normalize()

	below := func(dist float64) bool {
		pos := start.Add(dir.Mul(dist))
		y, _, ok := g.HeightAt(mgl64.Vec2{pos.X(), pos.Z()})
		return ok && pos.Y() <= y
	}

	prev := minDist
	for dist := minDist; ; dist += DefaultStep {
		if dist > maxDist {
			dist = maxDist
		}
		if below(dist) {
			lo, hi := prev, dist
			if hi > minDist {
				for i := 0; i < refineSteps; i++ {
					mid := (lo + hi) / 2
					if below(mid) {
						hi = mid
					} else {
						lo = mid
					}
				}
			}
			pos := start.Add(dir.Mul(hi))
			p := mgl64.Vec2{pos.X(), pos.Z()}
			y, n, _ := g.HeightAt(p)
			result.Point = mgl64.Vec3{pos.X(), y, pos.Z()}
			result.Normal = n
			result.Triangle = g.Locate(p)
			result.Distance = hi
			result.Hit = true
			return result
		}
		if dist >= maxDist {
			return result
		}
		prev = dist
	}
}
