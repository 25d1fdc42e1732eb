package path

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestStraightLength(t *testing.T) {
	vp := FromPoints([]mgl64.Vec3{{0, 0, 0}, {3, 0, 4}, {3, 0, 14}})
	if vp.Length() != 15 {
		t.Fatalf("Expected length 15, got %v", vp.Length())
	}
	if p := vp.PointAt(0.5); !vecNear(p, mgl64.Vec3{3, 0, 6.5}, 1e-12) {
		t.Errorf("PointAt(0.5) = %v", p)
	}
	if p := vp.PointAt(2); p != (mgl64.Vec3{3, 0, 14}) {
		t.Errorf("PointAt clamps to the end, got %v", p)
	}
}

func TestNormalIsHorizontalAndPerpendicular(t *testing.T) {
	b := NewBezierPath([]mgl64.Vec3{{0, 0, 0}, {40, 10, 30}, {80, 0, 0}})
	vp := NewVertexPath(b)
	for i := 0; i <= 10; i++ {
		f := float64(i) / 10
		tan, n := vp.TangentAt(f), vp.NormalAt(f)
		if n.Y() != 0 {
			t.Fatalf("normal at %v not horizontal: %v", f, n)
		}
		if math.Abs(n.Len()-1) > 1e-9 {
			t.Fatalf("normal at %v not unit: %v", f, n)
		}
		if d := n.Dot(mgl64.Vec3{tan.X(), 0, tan.Z()}); math.Abs(d) > 1e-9 {
			t.Fatalf("normal at %v not perpendicular to tangent: %v", f, d)
		}
	}
}

func TestPointsAlongPathMonotonic(t *testing.T) {
	b := NewBezierPath([]mgl64.Vec3{{0, 0, 0}, {50, 5, 80}, {120, 0, 20}, {200, 3, 90}})
	vp := NewVertexPath(b)
	pts := vp.PointsAlongPath(6)
	if len(pts) < 10 {
		t.Fatalf("Expected many samples, got %d", len(pts))
	}
	if want := int(vp.Length()/6) + 1; len(pts) != want {
		t.Errorf("Expected %d samples, got %d", want, len(pts))
	}
	for i := 1; i < len(pts); i++ {
		d := pts[i].Sub(pts[i-1]).Len()
		if d > 6+1e-9 || d < 3 {
			t.Fatalf("sample %d spacing %v", i, d)
		}
	}
}

func TestSampleEvenlySpaced(t *testing.T) {
	vp := FromPoints([]mgl64.Vec3{{0, 0, 0}, {10, 0, 0}})
	pts := vp.SampleEvenlySpaced(6)
	if len(pts) != 6 {
		t.Fatalf("Expected 6 points, got %d", len(pts))
	}
	for i, p := range pts {
		if math.Abs(p.X()-float64(i)*2) > 1e-12 {
			t.Errorf("point %d = %v", i, p)
		}
	}
	if vp.SampleEvenlySpaced(0) != nil {
		t.Errorf("Expected nil for n = 0")
	}
}
