// Package physics answers ground queries against the generated terrain
// surface: vertical drops for placement and general rays for picking.
package physics

import (
	"math"

	"polyterrain/internal/mesh"
	"polyterrain/internal/placement"
	"polyterrain/internal/profiling"

	"github.com/go-gl/mathgl/mgl64"
)

// DefaultCellSize is the bucket size of the triangle grid.
const DefaultCellSize = 10.0

// MeshGround is a placement.GroundQuery over a triangulated height field.
// Triangles are bucketed in a uniform grid so a lookup only tests the
// triangles overlapping one cell.
type MeshGround struct {
	m          *mesh.Mesh
	elevations []float64
	cell       float64
	cols, rows int
	cells      [][]int32
}

var _ placement.GroundQuery = (*MeshGround)(nil)

// NewMeshGround indexes m. elevations must hold one value per vertex and is
// read on every query, so later edits to it are visible.
func NewMeshGround(m *mesh.Mesh, elevations []float64, cellSize float64) *MeshGround {
	defer profiling.Track("physics.NewMeshGround")()

	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	g := &MeshGround{
		m:          m,
		elevations: elevations,
		cell:       cellSize,
		cols:       max(1, int(math.Ceil(m.Size.X()/cellSize))),
		rows:       max(1, int(math.Ceil(m.Size.Y()/cellSize))),
	}
	g.cells = make([][]int32, g.cols*g.rows)

	for _, tr := range m.Triangles {
		a, b, c := m.Corners(tr.ID)
		x0, y0 := g.cellOf(math.Min(a.X(), math.Min(b.X(), c.X())), math.Min(a.Y(), math.Min(b.Y(), c.Y())))
		x1, y1 := g.cellOf(math.Max(a.X(), math.Max(b.X(), c.X())), math.Max(a.Y(), math.Max(b.Y(), c.Y())))
		for cy := y0; cy <= y1; cy++ {
			for cx := x0; cx <= x1; cx++ {
				i := cy*g.cols + cx
				g.cells[i] = append(g.cells[i], int32(tr.ID))
			}
		}
	}
	return g
}

func (g *MeshGround) cellOf(x, y float64) (int, int) {
	cx := int(math.Floor(x / g.cell))
	cy := int(math.Floor(y / g.cell))
	return min(max(cx, 0), g.cols-1), min(max(cy, 0), g.rows-1)
}

// Locate returns the triangle under p, or -1 outside the tile.
func (g *MeshGround) Locate(p mgl64.Vec2) int {
	if p.X() < 0 || p.Y() < 0 || p.X() > g.m.Size.X() || p.Y() > g.m.Size.Y() {
		return -1
	}
	cx, cy := g.cellOf(p.X(), p.Y())
	for _, t := range g.cells[cy*g.cols+cx] {
		if g.m.Contains(int(t), p) {
			return int(t)
		}
	}
	return -1
}

// HeightAt interpolates the surface elevation at p and returns the upward
// face normal of the triangle it falls in.
func (g *MeshGround) HeightAt(p mgl64.Vec2) (y float64, normal mgl64.Vec3, ok bool) {
	t := g.Locate(p)
	if t < 0 {
		return 0, mgl64.Vec3{}, false
	}
	wa, wb, wc, ok := g.m.Barycentric(t, p)
	if !ok {
		return 0, mgl64.Vec3{}, false
	}
	v := g.m.Triangles[t].V
	y = wa*g.elevations[v[0]] + wb*g.elevations[v[1]] + wc*g.elevations[v[2]]
	return y, g.faceNormal(t), true
}

// faceNormal is the unit normal of triangle t with a non-negative y.
func (g *MeshGround) faceNormal(t int) mgl64.Vec3 {
	v := g.m.Triangles[t].V
	p := func(id int) mgl64.Vec3 {
		q := g.m.Vertices[id].Pos
		return mgl64.Vec3{q.X(), g.elevations[id], q.Y()}
	}
	a, b, c := p(v[0]), p(v[1]), p(v[2])
	n := c.Sub(a).Cross(b.Sub(a))
	if n.Len() == 0 {
		return placement.Up
	}
	n = n.Normalize()
	if n.Y() < 0 {
		n = n.Mul(-1)
	}
	return n
}

// QueryGround drops a vertical ray from origin. The surface must be at or
// below origin for a hit.
func (g *MeshGround) QueryGround(origin mgl64.Vec3) (placement.Hit, bool) {
	p := mgl64.Vec2{origin.X(), origin.Z()}
	y, n, ok := g.HeightAt(p)
	if !ok || y > origin.Y() {
		return placement.Hit{}, false
	}
	return placement.Hit{Point: mgl64.Vec3{p.X(), y, p.Y()}, Normal: n}, true
}
