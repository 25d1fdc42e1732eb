package heightfield

import (
	"math"

	"polyterrain/internal/mesh"

	"github.com/go-gl/mathgl/mgl64"
)

// FlattenParams controls how a path is carved into the elevations.
type FlattenParams struct {
	// Width is the planar distance within which elevation is set to the
	// path height minus Depth.
	Width float64
	// SmoothDistance is where the blend back to natural terrain ends.
	SmoothDistance float64
	// Depth is how far below the path the bed sits.
	Depth float64
}

// DefaultDepth is the bed depth used when FlattenParams.Depth is zero.
const DefaultDepth = 1.0

// FlattenPoint returns the flattened elevation of a vertex at pos with
// elevation y against path points given as (x, elevation, y).
func FlattenPoint(pos mgl64.Vec2, y float64, path []mgl64.Vec3, fp FlattenParams) float64 {
	if len(path) == 0 {
		return y
	}
	depth := fp.Depth
	if depth == 0 {
		depth = DefaultDepth
	}

	best, bestSq := 0, math.Inf(1)
	for i, p := range path {
		dx, dz := p.X()-pos.X(), p.Z()-pos.Y()
		if sq := dx*dx + dz*dz; sq < bestSq {
			best, bestSq = i, sq
		}
	}
	d := math.Sqrt(bestSq)
	bed := path[best].Y() - depth

	switch {
	case d <= fp.Width:
		return bed
	case d < fp.SmoothDistance:
		t := (d - fp.Width) / (fp.SmoothDistance - fp.Width)
		return bed + (y-bed)*t
	default:
		return y
	}
}

// Flatten rewrites elevations in place for every vertex near path.
func Flatten(elevations []float64, vertices []mesh.Vertex, path []mgl64.Vec3, fp FlattenParams) {
	if len(path) == 0 {
		return
	}
	for _, v := range vertices {
		elevations[v.ID] = FlattenPoint(v.Pos, elevations[v.ID], path, fp)
	}
}
