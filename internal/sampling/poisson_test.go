package sampling

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestMinimumDistance(t *testing.T) {
	points := Generate(5, mgl64.Vec2{100, 100}, 0)
	if len(points) < 100 {
		t.Fatalf("Expected a dense sample set, got %d points", len(points))
	}
	for i := 0; i < len(points); i++ {
		for j := i + 1; j < len(points); j++ {
			if d := points[i].Sub(points[j]).Len(); d < 5 {
				t.Fatalf("points %d and %d too close: %.4f", i, j, d)
			}
		}
	}
}

func TestPointsInsideRegion(t *testing.T) {
	region := mgl64.Vec2{80, 40}
	for _, p := range Generate(3, region, 17) {
		if p.X() < 0 || p.X() >= region.X() || p.Y() < 0 || p.Y() >= region.Y() {
			t.Fatalf("point %v outside region %v", p, region)
		}
	}
}

func TestDeterminism(t *testing.T) {
	a := Generate(5, mgl64.Vec2{100, 100}, 42)
	b := Generate(5, mgl64.Vec2{100, 100}, 42)
	if len(a) != len(b) {
		t.Fatalf("Expected same count, got %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("determinism failure at %d: %v vs %v", i, a[i], b[i])
		}
	}

	c := Generate(5, mgl64.Vec2{100, 100}, 43)
	same := len(a) == len(c)
	for i := 0; same && i < len(a); i++ {
		same = a[i] == c[i]
	}
	if same {
		t.Errorf("Expected different seeds to give different samples")
	}
}

func TestTinyRegion(t *testing.T) {
	points := Generate(5, mgl64.Vec2{1, 1}, 0)
	if len(points) > 1 {
		t.Errorf("Expected at most one point in a 1x1 region, got %d", len(points))
	}
}

func TestDegenerateArguments(t *testing.T) {
	cases := []struct {
		name   string
		radius float64
		region mgl64.Vec2
	}{
		{"zero radius", 0, mgl64.Vec2{10, 10}},
		{"negative radius", -1, mgl64.Vec2{10, 10}},
		{"empty region", 2, mgl64.Vec2{0, 10}},
	}
	for _, tc := range cases {
		if got := Generate(tc.radius, tc.region, 1); len(got) != 0 {
			t.Errorf("%s: expected no points, got %d", tc.name, len(got))
		}
	}
}

func BenchmarkGenerate300(b *testing.B) {
	for i := 0; i < b.N; i++ {
		Generate(12, mgl64.Vec2{300, 300}, i)
	}
}
