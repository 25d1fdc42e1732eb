package placement

import (
	"math"

	"polyterrain/internal/rng"

	"github.com/go-gl/mathgl/mgl64"
)

// perpendicular rotates v by 90 degrees counter-clockwise in the plane.
func perpendicular(v mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Vec2{-v.Y(), v.X()}
}

func planar(v mgl64.Vec3) mgl64.Vec2 { return mgl64.Vec2{v.X(), v.Z()} }

// sideNormal returns the unit perpendicular of the road direction from
// back to at, and its heading in degrees.
func sideNormal(back, at mgl64.Vec3) (mgl64.Vec2, float64) {
	d := planar(at).Sub(planar(back))
	if d.LenSqr() == 0 {
		return mgl64.Vec2{}, 0
	}
	perp := perpendicular(d).Normalize()
	return perp, mgl64.RadToDeg(math.Atan2(perp.X(), perp.Y()))
}

// LampParams configures the lamp row along the road.
type LampParams struct {
	Seed     int
	Every    int
	Distance float64
	Prefabs  int
	Animate  bool
}

// lookBack is how many road points back the lamp direction is measured.
const lookBack = 3

// PlaceLamps puts one lamp every Every road points on a single side of the
// road, all using the same prefab.
func PlaceLamps(road []mgl64.Vec3, p LampParams) []PlacedInstance {
	r := rng.New(p.Seed)
	left := r.Bool()
	prefab := r.Range(0, max(p.Prefabs, 1))
	every := max(p.Every, 1)

	var out []PlacedInstance
	for i := lookBack; i < len(road)-lookBack; i += every {
		perp, yaw := sideNormal(road[i-lookBack], road[i])
		pos := planar(road[i])
		if left {
			pos = pos.Add(perp.Mul(p.Distance))
		} else {
			pos = pos.Sub(perp.Mul(p.Distance))
			yaw += 180
		}

		inst := PlacedInstance{
			Kind:     KindLamp,
			Prefab:   prefab,
			Position: mgl64.Vec3{pos.X(), road[i].Y() - 1, pos.Y()},
			Rotation: Yaw(yaw),
			Animate:  p.Animate,
		}
		r.Fork(func(g *rng.Generator) {
			for k := range inst.Scale {
				inst.Scale[k] = 1 + g.RangeFloat(0.1, 0.4)
			}
		})
		out = append(out, inst)
	}
	return out
}
