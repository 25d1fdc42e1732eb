package path

import (
	"math"
	"testing"

	"polyterrain/internal/rng"

	"github.com/go-gl/mathgl/mgl64"
)

type slopeHeights struct{}

func (slopeHeights) Smoothed(p mgl64.Vec2, _ float64) float64 { return p.X()*0.1 + p.Y()*0.05 }

func TestBuildRoadShape(t *testing.T) {
	size := mgl64.Vec2{300, 300}
	road := BuildRoad(rng.New(0), size, slopeHeights{}, DefaultRoadParams())

	b := road.Bezier
	if b.NumAnchors() != 5 {
		t.Fatalf("Expected 5 anchors after the two splits, got %d", b.NumAnchors())
	}
	first, last := b.Point(0), b.Point(b.NumPoints()-1)
	if math.Abs(first.Z()-(300-0.015)) > 1e-9 || math.Abs(last.Z()-0.015) > 1e-9 {
		t.Errorf("End anchors not on the edges: %v %v", first, last)
	}
	for a := 0; a < b.NumPoints(); a += 3 {
		p := b.Point(a)
		if want := (slopeHeights{}).Smoothed(mgl64.Vec2{p.X(), p.Z()}, 0); math.Abs(p.Y()-want) > 1e-9 {
			t.Errorf("anchor %d height %v, expected %v", a, p.Y(), want)
		}
	}
	if len(road.Points) < 40 {
		t.Errorf("Expected a long road, got %d points", len(road.Points))
	}
	if road.Points[0] != first {
		t.Errorf("Road samples should start at the first anchor")
	}
}

func TestBuildRoadDeterminism(t *testing.T) {
	size := mgl64.Vec2{300, 300}
	a := BuildRoad(rng.New(9), size, slopeHeights{}, DefaultRoadParams())
	b := BuildRoad(rng.New(9), size, slopeHeights{}, DefaultRoadParams())
	if len(a.Points) != len(b.Points) {
		t.Fatalf("Point counts differ: %d vs %d", len(a.Points), len(b.Points))
	}
	for i := range a.Points {
		if a.Points[i] != b.Points[i] {
			t.Fatalf("point %d differs", i)
		}
	}
}

func TestBuildRoadSmallRegion(t *testing.T) {
	r := rng.New(0)
	road := BuildRoad(r, mgl64.Vec2{100, 100}, slopeHeights{}, DefaultRoadParams())
	if len(road.Points) == 0 {
		t.Fatalf("Expected road points on a small region")
	}

	// six draws are always consumed
	ref := rng.New(0)
	for i := 0; i < 6; i++ {
		ref.Next()
	}
	if r.Checkpoint() != ref.Checkpoint() {
		t.Errorf("BuildRoad consumed an unexpected number of draws")
	}
}

func TestBuildRoadStaysOnTile(t *testing.T) {
	p := DefaultRoadParams()
	for _, side := range []float64{13, 40, 60, 100, 300} {
		size := mgl64.Vec2{side, side}
		for seed := 0; seed < 20; seed++ {
			road := BuildRoad(rng.New(seed), size, slopeHeights{}, p)
			for i, q := range road.Bezier.Points() {
				if q.X() < p.EdgeInset-1e-9 || q.X() > side-p.EdgeInset+1e-9 ||
					q.Z() < p.EdgeInset-1e-9 || q.Z() > side-p.EdgeInset+1e-9 {
					t.Errorf("size %v seed %d: control %d at %v is off the tile", side, seed, i, q)
				}
			}
			for i, q := range road.Points {
				if q.X() < 0 || q.X() > side || q.Z() < 0 || q.Z() > side {
					t.Fatalf("size %v seed %d: road point %d at %v is off the tile", side, seed, i, q)
				}
			}
		}
	}
}
