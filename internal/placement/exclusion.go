package placement

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Zone is a circular no-spawn area. A zero Radius defers to the radius of
// the pass doing the check.
type Zone struct {
	Center mgl64.Vec3
	Radius float64
}

// ExclusionSet is the ordered, append-only list of zones shared by the
// placement passes of one run.
type ExclusionSet struct {
	zones []Zone
}

// Add appends one zone.
func (e *ExclusionSet) Add(center mgl64.Vec3, radius float64) {
	e.zones = append(e.zones, Zone{Center: center, Radius: radius})
}

// AddPoints appends a zone per point, all with the same radius.
func (e *ExclusionSet) AddPoints(points []mgl64.Vec3, radius float64) {
	for _, p := range points {
		e.Add(p, radius)
	}
}

// Len returns the number of zones.
func (e *ExclusionSet) Len() int { return len(e.zones) }

// Zones returns a copy of the zones in insertion order.
func (e *ExclusionSet) Zones() []Zone { return append([]Zone(nil), e.zones...) }

// Blocked reports whether p lies in any zone, measured in the plane.
// passRadius stands in for zones without their own radius.
func (e *ExclusionSet) Blocked(p mgl64.Vec3, passRadius float64) bool {
	for _, z := range e.zones {
		r := z.Radius
		if r == 0 {
			r = passRadius
		}
		dx, dz := p.X()-z.Center.X(), p.Z()-z.Center.Z()
		if dx*dx+dz*dz <= r*r {
			return true
		}
	}
	return false
}
