package placement

import (
	"math"

	"polyterrain/internal/rng"

	"github.com/go-gl/mathgl/mgl64"
)

// HouseParams configures the house search.
type HouseParams struct {
	Seed   int
	Region mgl64.Vec2
	// DistanceFromPath is how far to the side of the road the house sits.
	DistanceFromPath float64
	EdgeMargin       float64
	Attempts         int
	// Stride is the number of road points between the straightness probes.
	Stride int
	// MaxTurn is the largest allowed change of road heading, in degrees.
	MaxTurn       float64
	GuardDistance float64
	Animate       bool
}

// DefaultHouseParams returns the tuned settings for region.
func DefaultHouseParams(region mgl64.Vec2, seed int) HouseParams {
	return HouseParams{
		Seed:             seed,
		Region:           region,
		DistanceFromPath: 45,
		EdgeMargin:       35,
		Attempts:         100,
		Stride:           6,
		MaxTurn:          3,
		GuardDistance:    23,
	}
}

// House is a placed house plus the points around it that must stay clear
// and flat: the house position, one point further from the road, and one
// on each axis.
type House struct {
	Instance PlacedInstance
	Guards   []mgl64.Vec3
}

// minHousePoints is the shortest road that has room for the probes.
const minHousePoints = 17

// wrapDegrees maps a to (-180, 180].
func wrapDegrees(a float64) float64 {
	a = math.Mod(a, 360)
	if a > 180 {
		a -= 360
	} else if a <= -180 {
		a += 360
	}
	return a
}

// PlaceHouse looks for a straight stretch of road with room beside it.
func PlaceHouse(road []mgl64.Vec3, p HouseParams) (*House, bool) {
	n := len(road)
	if n < minHousePoints {
		return nil, false
	}
	r := rng.New(p.Seed)
	stride := max(p.Stride, 1)
	lo, hi := 8, n-8
	if lo < stride {
		lo = stride
	}
	if hi > n-stride {
		hi = n - stride
	}
	if hi <= lo {
		return nil, false
	}

	w, h := p.Region.X(), p.Region.Y()
	for a := 0; a < p.Attempts; a++ {
		i := r.Range(lo, hi)
		perpBack, rot1 := sideNormal(road[i-stride], road[i])
		_, rot2 := sideNormal(road[i], road[i+stride])

		pos := planar(road[i])
		var diff float64
		if r.Bool() {
			pos = pos.Add(perpBack.Mul(p.DistanceFromPath))
			diff = rot1 - rot2
		} else {
			pos = pos.Sub(perpBack.Mul(p.DistanceFromPath))
			diff = rot2 - rot1
			rot1 += 180
		}

		spawn := mgl64.Vec3{pos.X(), road[i].Y(), pos.Y()}
		inside := spawn.Z() > p.EdgeMargin && spawn.Z() < h-p.EdgeMargin &&
			spawn.X() > p.EdgeMargin && spawn.X() < w-p.EdgeMargin
		if !inside || math.Abs(wrapDegrees(diff)) >= p.MaxTurn {
			continue
		}

		g := p.GuardDistance
		return &House{
			Instance: PlacedInstance{
				Kind:     KindHouse,
				Position: spawn,
				Rotation: Yaw(rot1),
				Scale:    mgl64.Vec3{1, 1, 1},
				Animate:  p.Animate,
			},
			Guards: []mgl64.Vec3{
				spawn,
				spawn.Add(mgl64.Vec3{perpBack.X(), 0, perpBack.Y()}.Mul(g)),
				spawn.Add(mgl64.Vec3{-g, 0, 0}),
				spawn.Add(mgl64.Vec3{g, 0, 0}),
				spawn.Add(mgl64.Vec3{0, 0, g}),
				spawn.Add(mgl64.Vec3{0, 0, -g}),
			},
		}, true
	}
	return nil, false
}
