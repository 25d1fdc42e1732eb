package physics

import (
	"math"
	"testing"

	"polyterrain/internal/mesh"
	"polyterrain/internal/sampling"

	"github.com/go-gl/mathgl/mgl64"
)

// planeGround is a 100x100 tile whose surface is y = 0.5x + 10.
func planeGround(t testing.TB) *MeshGround {
	t.Helper()
	size := mgl64.Vec2{100, 100}
	m, err := mesh.Triangulate(sampling.Generate(8, size, 2), mesh.RectangleBoundary(size, 10), mesh.Options{Size: size, EdgeMergeDistance: 1})
	if err != nil {
		t.Fatalf("Triangulate: %v", err)
	}
	elev := make([]float64, m.VertexCount())
	for _, v := range m.Vertices {
		elev[v.ID] = 0.5*v.Pos.X() + 10
	}
	return NewMeshGround(m, elev, 0)
}

// near compares componentwise with an absolute tolerance.
func near(a, b mgl64.Vec3, eps float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > eps {
			return false
		}
	}
	return true
}

func TestHeightAtInterpolates(t *testing.T) {
	g := planeGround(t)
	want := mgl64.Vec3{-0.5, 1, 0}.Normalize()
	for _, p := range []mgl64.Vec2{{0, 0}, {50, 50}, {12.3, 87.6}, {100, 100}, {99.9, 0.1}} {
		y, n, ok := g.HeightAt(p)
		if !ok {
			t.Fatalf("Expected ground at %v", p)
		}
		if math.Abs(y-(0.5*p.X()+10)) > 1e-9 {
			t.Errorf("HeightAt(%v) = %f, expected %f", p, y, 0.5*p.X()+10)
		}
		if !near(n, want, 1e-9) {
			t.Errorf("normal at %v = %v, expected %v", p, n, want)
		}
	}
	if _, _, ok := g.HeightAt(mgl64.Vec2{-1, 50}); ok {
		t.Errorf("Expected no ground outside the tile")
	}
}

func TestLocateMatchesLinearScan(t *testing.T) {
	g := planeGround(t)
	for _, p := range []mgl64.Vec2{{3, 4}, {50, 50}, {77.7, 12.1}, {99, 99}} {
		got := g.Locate(p)
		if got < 0 || !g.m.Contains(got, p) {
			t.Errorf("Locate(%v) = %d does not contain the point", p, got)
		}
	}
}

func TestQueryGround(t *testing.T) {
	g := planeGround(t)

	hit, ok := g.QueryGround(mgl64.Vec3{40, 100, 60})
	if !ok {
		t.Fatalf("Expected a hit from above")
	}
	if math.Abs(hit.Point.Y()-30) > 1e-9 || hit.Point.X() != 40 || hit.Point.Z() != 60 {
		t.Errorf("Unexpected hit point %v", hit.Point)
	}

	if _, ok := g.QueryGround(mgl64.Vec3{40, 5, 60}); ok {
		t.Errorf("Expected a miss from below the surface")
	}
	if _, ok := g.QueryGround(mgl64.Vec3{140, 100, 60}); ok {
		t.Errorf("Expected a miss outside the tile")
	}
}

func TestQueryGroundSeesElevationEdits(t *testing.T) {
	g := planeGround(t)
	for i := range g.elevations {
		g.elevations[i] = 3
	}
	hit, ok := g.QueryGround(mgl64.Vec3{10, 50, 10})
	if !ok || math.Abs(hit.Point.Y()-3) > 1e-9 {
		t.Errorf("Expected the flattened height 3, got %v (ok=%v)", hit.Point, ok)
	}
}

func TestRaycast(t *testing.T) {
	g := planeGround(t)

	// Test 1: straight down
	res := g.Raycast(mgl64.Vec3{50, 100, 50}, mgl64.Vec3{0, -1, 0}, 0, 200)
	if !res.Hit {
		t.Fatalf("Expected hit, got miss")
	}
	if math.Abs(res.Distance-65) > 1e-4 {
		t.Errorf("Expected distance 65, got %f", res.Distance)
	}
	if res.Triangle < 0 {
		t.Errorf("Expected a triangle id")
	}

	// Test 2: horizontal ray entering the slope at x = 20
	res = g.Raycast(mgl64.Vec3{-10, 20, 50}, mgl64.Vec3{2, 0, 0}, 0, 100)
	if !res.Hit || math.Abs(res.Point.X()-20) > 1e-3 {
		t.Errorf("Expected hit at x=20, got %+v", res)
	}

	// Test 3: stops short
	if res := g.Raycast(mgl64.Vec3{-10, 20, 50}, mgl64.Vec3{1, 0, 0}, 0, 20); res.Hit {
		t.Errorf("Expected miss due to maxDist, got %+v", res)
	}

	// Test 4: pointing away
	if res := g.Raycast(mgl64.Vec3{50, 100, 50}, mgl64.Vec3{0, 1, 0}, 0, 50); res.Hit {
		t.Errorf("Expected miss pointing up, got %+v", res)
	}

	// Test 5: zero direction
	if res := g.Raycast(mgl64.Vec3{50, 100, 50}, mgl64.Vec3{}, 0, 50); res.Hit {
		t.Errorf("Expected miss for a zero direction")
	}
}

func BenchmarkQueryGround(b *testing.B) {
	g := planeGround(b)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x := float64(i%100) + 0.5
		g.QueryGround(mgl64.Vec3{x, 500, 100 - x})
	}
}
