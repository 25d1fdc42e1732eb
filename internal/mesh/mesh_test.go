package mesh

import (
	"errors"
	"testing"

	"polyterrain/internal/rng"
	"polyterrain/internal/sampling"

	"github.com/go-gl/mathgl/mgl64"
)

func buildTestMesh(t *testing.T, seed int) *Mesh {
	t.Helper()
	size := mgl64.Vec2{100, 100}
	points := sampling.Generate(8, size, seed)
	r := rng.New(seed)
	for i := 0; i < 10; i++ {
		points = append(points, mgl64.Vec2{r.RangeFloat(0, 100), r.RangeFloat(0, 100)})
	}
	m, err := Triangulate(points, RectangleBoundary(size, 8), Options{Size: size, EdgeMergeDistance: 2})
	if err != nil {
		t.Fatalf("Triangulate failed: %v", err)
	}
	return m
}

type edgeKey [2]int

func makeEdge(a, b int) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

func TestEdgeSharing(t *testing.T) {
	m := buildTestMesh(t, 3)
	counts := make(map[edgeKey]int)
	for _, tr := range m.Triangles {
		for k := 0; k < 3; k++ {
			counts[makeEdge(tr.V[k], tr.V[(k+1)%3])]++
		}
	}
	for e, n := range counts {
		a, b := m.Vertices[e[0]], m.Vertices[e[1]]
		onBorder := a.Label == LabelBoundary && b.Label == LabelBoundary &&
			m.Sides(a.ID)&m.Sides(b.ID) != 0
		if onBorder && n != 1 {
			t.Errorf("border edge %v shared by %d triangles", e, n)
		}
		if !onBorder && n != 2 {
			t.Errorf("interior edge %v shared by %d triangles", e, n)
		}
	}
}

func TestCornersAreBoundary(t *testing.T) {
	m := buildTestMesh(t, 5)
	corners := []mgl64.Vec2{{0, 0}, {100, 0}, {100, 100}, {0, 100}}
	for _, c := range corners {
		found := false
		for _, v := range m.Vertices {
			if v.Pos == c {
				found = true
				if v.Label != LabelBoundary {
					t.Errorf("corner %v has label %d", c, v.Label)
				}
			}
		}
		if !found {
			t.Errorf("corner %v missing from mesh", c)
		}
	}
}

func TestWindingAndNeighbors(t *testing.T) {
	m := buildTestMesh(t, 9)
	for _, tr := range m.Triangles {
		if m.cross(tr.V) <= 0 {
			t.Fatalf("triangle %d is not counter-clockwise", tr.ID)
		}
		for k, n := range tr.N {
			if n == NoNeighbor {
				continue
			}
			// the neighbour must share the edge opposite V[k]
			a, b := tr.V[(k+1)%3], tr.V[(k+2)%3]
			other := m.Triangles[n]
			shared := 0
			for _, v := range other.V {
				if v == a || v == b {
					shared++
				}
			}
			if shared != 2 {
				t.Errorf("triangle %d neighbour %d shares %d vertices on edge %d", tr.ID, n, shared, k)
			}
			back := false
			for _, nn := range other.N {
				if nn == tr.ID {
					back = true
				}
			}
			if !back {
				t.Errorf("adjacency %d -> %d is not symmetric", tr.ID, n)
			}
		}
	}
}

func TestDeterministicTriangulation(t *testing.T) {
	a := buildTestMesh(t, 11)
	b := buildTestMesh(t, 11)
	if a.VertexCount() != b.VertexCount() || a.TriangleCount() != b.TriangleCount() {
		t.Fatalf("counts differ: %d/%d vs %d/%d", a.VertexCount(), a.TriangleCount(), b.VertexCount(), b.TriangleCount())
	}
	for i := range a.Triangles {
		if a.Triangles[i] != b.Triangles[i] {
			t.Fatalf("triangle %d differs", i)
		}
	}
}

func TestDegenerateInput(t *testing.T) {
	cases := []struct {
		name   string
		points []mgl64.Vec2
	}{
		{"empty", nil},
		{"two points", []mgl64.Vec2{{1, 1}, {2, 2}}},
		{"duplicates", []mgl64.Vec2{{1, 1}, {1, 1}, {2, 2}}},
		{"collinear", []mgl64.Vec2{{1, 1}, {2, 2}, {3, 3}, {4, 4}}},
	}
	for _, tc := range cases {
		_, err := Triangulate(tc.points, nil, Options{})
		if !errors.Is(err, ErrDegenerateInput) {
			t.Errorf("%s: expected ErrDegenerateInput, got %v", tc.name, err)
		}
	}
}

func TestEdgeMergeDropsNearBorderPoints(t *testing.T) {
	size := mgl64.Vec2{10, 10}
	points := []mgl64.Vec2{{5, 5}, {0.5, 5}, {5, 9.9}, {20, 20}}
	m, err := Triangulate(points, RectangleBoundary(size, 10), Options{Size: size, EdgeMergeDistance: 1})
	if err != nil {
		t.Fatalf("Triangulate failed: %v", err)
	}
	interior := 0
	for _, v := range m.Vertices {
		if v.Label == LabelInterior {
			interior++
		}
	}
	if interior != 1 {
		t.Errorf("Expected 1 interior vertex, got %d", interior)
	}
	if m.VertexCount() != 5 {
		t.Errorf("Expected 5 vertices, got %d", m.VertexCount())
	}
}

func TestLocateAndContains(t *testing.T) {
	m := buildTestMesh(t, 2)
	probes := []mgl64.Vec2{{0, 0}, {50, 50}, {99.5, 0.5}, {100, 100}, {12.3, 87.6}}
	for _, p := range probes {
		tri := m.Locate(p)
		if tri < 0 {
			t.Errorf("Expected %v inside the mesh", p)
			continue
		}
		if !m.Contains(tri, p) {
			t.Errorf("Locate returned triangle %d not containing %v", tri, p)
		}
	}
	if m.Locate(mgl64.Vec2{-1, 50}) != -1 {
		t.Errorf("Expected point outside the rectangle not to be located")
	}
}

func TestRectangleBoundaryAndPerimeter(t *testing.T) {
	size := mgl64.Vec2{30, 20}
	pts := RectangleBoundary(size, 10)
	// 3 + 2 + 3 + 2 segments
	if len(pts) != 10 {
		t.Fatalf("Expected 10 boundary points, got %d", len(pts))
	}
	for _, p := range pts {
		if SidesOf(p, size, 0) == SideNone {
			t.Errorf("boundary point %v not on the border", p)
		}
	}

	m, err := Triangulate([]mgl64.Vec2{{15, 10}}, pts, Options{Size: size})
	if err != nil {
		t.Fatalf("Triangulate failed: %v", err)
	}
	loop := m.PerimeterLoop()
	if len(loop) != len(pts) {
		t.Fatalf("Expected %d loop vertices, got %d", len(pts), len(loop))
	}
	if m.Vertices[loop[0]].Pos != (mgl64.Vec2{0, 0}) {
		t.Errorf("Expected loop to start at origin, got %v", m.Vertices[loop[0]].Pos)
	}
	prev := -1.0
	for _, id := range loop {
		d := perimeter(m.Vertices[id].Pos, size)
		if d <= prev {
			t.Errorf("perimeter order not increasing at vertex %d", id)
		}
		prev = d
	}
}

func TestSides(t *testing.T) {
	size := mgl64.Vec2{10, 10}
	if s := SidesOf(mgl64.Vec2{0, 0}, size, 0); s != SideLeft|SideBottom {
		t.Errorf("origin: got %v", s)
	}
	if s := SidesOf(mgl64.Vec2{10, 4}, size, 0); s != SideRight {
		t.Errorf("right edge: got %v", s)
	}
	if n := SideTop.Inward(); n != (mgl64.Vec2{0, -1}) {
		t.Errorf("top inward: got %v", n)
	}
}
