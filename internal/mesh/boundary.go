package mesh

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// Side is a bit set of rectangle edges. A corner carries two bits.
type Side uint8

const (
	SideLeft   Side = 1 << iota // x == 0
	SideRight                   // x == width
	SideBottom                  // y == 0
	SideTop                     // y == height
)

// SideNone means the point is not on the border.
const SideNone Side = 0

func (s Side) String() string {
	if s == SideNone {
		return "none"
	}
	names := []string{"left", "right", "bottom", "top"}
	out := ""
	for i, n := range names {
		if s&(1<<i) != 0 {
			if out != "" {
				out += "|"
			}
			out += n
		}
	}
	return out
}

// Inward returns the unit normal pointing into the rectangle from the edge.
// Corners get the normalised sum of their two edges.
func (s Side) Inward() mgl64.Vec2 {
	var n mgl64.Vec2
	if s&SideLeft != 0 {
		n[0] += 1
	}
	if s&SideRight != 0 {
		n[0] -= 1
	}
	if s&SideBottom != 0 {
		n[1] += 1
	}
	if s&SideTop != 0 {
		n[1] -= 1
	}
	if n.LenSqr() == 0 {
		return n
	}
	return n.Normalize()
}

// SidesOf classifies p against a rectangle of the given size within tol.
func SidesOf(p, size mgl64.Vec2, tol float64) Side {
	var s Side
	if math.Abs(p.X()) <= tol {
		s |= SideLeft
	}
	if math.Abs(p.X()-size.X()) <= tol {
		s |= SideRight
	}
	if math.Abs(p.Y()) <= tol {
		s |= SideBottom
	}
	if math.Abs(p.Y()-size.Y()) <= tol {
		s |= SideTop
	}
	return s
}

// Sides classifies a mesh vertex against the mesh rectangle.
func (m *Mesh) Sides(id int) Side {
	return SidesOf(m.Vertices[id].Pos, m.Size, sideEpsilon)
}

// RectangleBoundary returns the four corners of a size.X x size.Y rectangle
// plus evenly spaced points along each edge, no further apart than spacing.
// Points are listed counter-clockwise starting at the origin.
func RectangleBoundary(size mgl64.Vec2, spacing float64) []mgl64.Vec2 {
	w, h := size.X(), size.Y()
	edge := func(from, to mgl64.Vec2, length float64) []mgl64.Vec2 {
		n := 1
		if spacing > 0 {
			n = max(1, int(math.Ceil(length/spacing)))
		}
		out := make([]mgl64.Vec2, 0, n)
		for i := 0; i < n; i++ {
			t := float64(i) / float64(n)
			out = append(out, from.Add(to.Sub(from).Mul(t)))
		}
		return out
	}

	c00, c10, c11, c01 := mgl64.Vec2{0, 0}, mgl64.Vec2{w, 0}, mgl64.Vec2{w, h}, mgl64.Vec2{0, h}
	var pts []mgl64.Vec2
	pts = append(pts, edge(c00, c10, w)...)
	pts = append(pts, edge(c10, c11, h)...)
	pts = append(pts, edge(c11, c01, w)...)
	pts = append(pts, edge(c01, c00, h)...)
	// snap interpolation error back onto the border
	for i, p := range pts {
		s := SidesOf(p, size, 1e-6)
		if s&SideLeft != 0 {
			p[0] = 0
		}
		if s&SideRight != 0 {
			p[0] = w
		}
		if s&SideBottom != 0 {
			p[1] = 0
		}
		if s&SideTop != 0 {
			p[1] = h
		}
		pts[i] = p
	}
	return pts
}

// perimeter returns the counter-clockwise distance along the border from
// the origin to p.
func perimeter(p, size mgl64.Vec2) float64 {
	w, h := size.X(), size.Y()
	switch s := SidesOf(p, size, sideEpsilon); {
	case s&SideBottom != 0 && s&SideLeft == 0:
		return p.X()
	case s&SideRight != 0:
		return w + p.Y()
	case s&SideTop != 0:
		return w + h + (w - p.X())
	case s&SideLeft != 0:
		if p.Y() == 0 {
			return 0
		}
		return 2*w + h + (h - p.Y())
	default:
		return math.Inf(1)
	}
}

// PerimeterLoop returns boundary vertex IDs ordered counter-clockwise along
// the border starting at the origin corner.
func (m *Mesh) PerimeterLoop() []int {
	ids := m.BoundaryVertices()
	sort.SliceStable(ids, func(i, j int) bool {
		return perimeter(m.Vertices[ids[i]].Pos, m.Size) < perimeter(m.Vertices[ids[j]].Pos, m.Size)
	})
	return ids
}
