// Package mesh triangulates a planar point set over a rectangle and exposes
// the vertex, triangle and adjacency queries the rest of the pipeline needs.
package mesh

import (
	"errors"
	"fmt"
	"math"

	"polyterrain/internal/profiling"

	"github.com/fogleman/delaunay"
	"github.com/go-gl/mathgl/mgl64"
)

// ErrDegenerateInput is returned when fewer than three distinct,
// non-collinear points survive filtering.
var ErrDegenerateInput = errors.New("mesh: need at least 3 non-collinear points")

// Vertex labels.
const (
	LabelInterior = 0
	LabelBoundary = 1
)

// NoNeighbor marks a triangle edge on the mesh border.
const NoNeighbor = -1

// sideEpsilon is the tolerance used when deciding whether a point lies on
// the rectangle border.
const sideEpsilon = 1e-9

// Vertex is an immutable mesh vertex. Elevation is stored elsewhere, keyed
// by ID.
type Vertex struct {
	ID    int
	Pos   mgl64.Vec2
	Label int
}

// Triangle references three vertices counter-clockwise in (x, y). N[k] is the
// triangle across the edge opposite V[k], or NoNeighbor.
type Triangle struct {
	ID int
	V  [3]int
	N  [3]int
}

// Options controls how input points are filtered before triangulation.
type Options struct {
	// Size is the rectangle [0, Size.X] x [0, Size.Y].
	Size mgl64.Vec2
	// EdgeMergeDistance drops interior points this close to the border so
	// they do not form slivers against the boundary points.
	EdgeMergeDistance float64
}

// Mesh is a triangulated rectangle.
type Mesh struct {
	Size      mgl64.Vec2
	Vertices  []Vertex
	Triangles []Triangle
}

// Triangulate builds a mesh from interior points and boundary points.
// Interior points outside the rectangle, within EdgeMergeDistance of its
// border, or duplicated are dropped. Boundary points are labelled
// LabelBoundary. Vertex IDs follow input order (interior first).
func Triangulate(points, boundary []mgl64.Vec2, opts Options) (*Mesh, error) {
	defer profiling.Track("mesh.Triangulate")()

	w, h := opts.Size.X(), opts.Size.Y()
	seen := make(map[mgl64.Vec2]struct{}, len(points)+len(boundary))
	verts := make([]Vertex, 0, len(points)+len(boundary))

	add := func(p mgl64.Vec2, label int) {
		if _, dup := seen[p]; dup {
			return
		}
		seen[p] = struct{}{}
		verts = append(verts, Vertex{ID: len(verts), Pos: p, Label: label})
	}

	for _, p := range points {
		if w > 0 && h > 0 {
			if p.X() < 0 || p.X() > w || p.Y() < 0 || p.Y() > h {
				continue
			}
			border := math.Min(math.Min(p.X(), w-p.X()), math.Min(p.Y(), h-p.Y()))
			if border <= opts.EdgeMergeDistance {
				continue
			}
		}
		add(p, LabelInterior)
	}
	for _, p := range boundary {
		add(p, LabelBoundary)
	}

	if !hasArea(verts) {
		return nil, ErrDegenerateInput
	}

	input := make([]delaunay.Point, len(verts))
	for i, v := range verts {
		input[i] = delaunay.Point{X: v.Pos.X(), Y: v.Pos.Y()}
	}
	tri, err := delaunay.Triangulate(input)
	if err != nil {
		return nil, fmt.Errorf("could not triangulate %d points: %w", len(input), errors.Join(ErrDegenerateInput, err))
	}
	if len(tri.Triangles) == 0 {
		return nil, ErrDegenerateInput
	}

	m := &Mesh{
		Size:      opts.Size,
		Vertices:  verts,
		Triangles: make([]Triangle, len(tri.Triangles)/3),
	}
	for t := range m.Triangles {
		e := 3 * t
		tr := Triangle{
			ID: t,
			V:  [3]int{tri.Triangles[e], tri.Triangles[e+1], tri.Triangles[e+2]},
		}
		// half-edge e+k runs V[k] -> V[k+1], opposite V[k+2]
		for k := 0; k < 3; k++ {
			opp := tri.Halfedges[e+k]
			n := NoNeighbor
			if opp >= 0 {
				n = opp / 3
			}
			tr.N[(k+2)%3] = n
		}
		if m.cross(tr.V) < 0 {
			tr.V[1], tr.V[2] = tr.V[2], tr.V[1]
			tr.N[1], tr.N[2] = tr.N[2], tr.N[1]
		}
		m.Triangles[t] = tr
	}

	return m, nil
}

// hasArea reports whether verts contains three non-collinear points.
func hasArea(verts []Vertex) bool {
	if len(verts) < 3 {
		return false
	}
	a := verts[0].Pos
	for i := 1; i < len(verts); i++ {
		ab := verts[i].Pos.Sub(a)
		for j := i + 1; j < len(verts); j++ {
			ac := verts[j].Pos.Sub(a)
			if math.Abs(ab.X()*ac.Y()-ab.Y()*ac.X()) > 1e-12 {
				return true
			}
		}
		if ab.LenSqr() > 0 {
			// every remaining point is collinear with a and verts[i]
			return false
		}
	}
	return false
}

func (m *Mesh) cross(v [3]int) float64 {
	a, b, c := m.Vertices[v[0]].Pos, m.Vertices[v[1]].Pos, m.Vertices[v[2]].Pos
	ab, ac := b.Sub(a), c.Sub(a)
	return ab.X()*ac.Y() - ab.Y()*ac.X()
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int { return len(m.Vertices) }

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int { return len(m.Triangles) }

// Neighbors returns the IDs of the triangles sharing an edge with t.
func (m *Mesh) Neighbors(t int) []int {
	out := make([]int, 0, 3)
	for _, n := range m.Triangles[t].N {
		if n != NoNeighbor {
			out = append(out, n)
		}
	}
	return out
}

// Corners returns the planar positions of the three vertices of t.
func (m *Mesh) Corners(t int) (a, b, c mgl64.Vec2) {
	v := m.Triangles[t].V
	return m.Vertices[v[0]].Pos, m.Vertices[v[1]].Pos, m.Vertices[v[2]].Pos
}

// Centroid returns the planar centre of t.
func (m *Mesh) Centroid(t int) mgl64.Vec2 {
	a, b, c := m.Corners(t)
	return a.Add(b).Add(c).Mul(1.0 / 3.0)
}

// Barycentric returns the weights of p with respect to the corners of t.
// ok is false for a zero-area triangle.
func (m *Mesh) Barycentric(t int, p mgl64.Vec2) (wa, wb, wc float64, ok bool) {
	a, b, c := m.Corners(t)
	v0, v1, v2 := b.Sub(a), c.Sub(a), p.Sub(a)
	den := v0.X()*v1.Y() - v1.X()*v0.Y()
	if den == 0 {
		return 0, 0, 0, false
	}
	wb = (v2.X()*v1.Y() - v1.X()*v2.Y()) / den
	wc = (v0.X()*v2.Y() - v2.X()*v0.Y()) / den
	wa = 1 - wb - wc
	return wa, wb, wc, true
}

// Contains reports whether p lies inside t or on its edges.
func (m *Mesh) Contains(t int, p mgl64.Vec2) bool {
	wa, wb, wc, ok := m.Barycentric(t, p)
	if !ok {
		return false
	}
	const eps = -1e-9
	return wa >= eps && wb >= eps && wc >= eps
}

// Locate returns the first triangle, in ID order, containing p, or -1.
func (m *Mesh) Locate(p mgl64.Vec2) int {
	for t := range m.Triangles {
		if m.Contains(t, p) {
			return t
		}
	}
	return -1
}

// BoundaryVertices returns the IDs of all boundary-labelled vertices in ID
// order.
func (m *Mesh) BoundaryVertices() []int {
	var out []int
	for _, v := range m.Vertices {
		if v.Label == LabelBoundary {
			out = append(out, v.ID)
		}
	}
	return out
}
