package placement

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func straightRoad(n int) []mgl64.Vec3 {
	pts := make([]mgl64.Vec3, n)
	for i := range pts {
		pts[i] = mgl64.Vec3{float64(i) * 6, 5, 150}
	}
	return pts
}

func TestPlaceLamps(t *testing.T) {
	road := straightRoad(40)
	lamps := PlaceLamps(road, LampParams{Seed: 1, Every: 6, Distance: 15, Prefabs: 3})

	want := 0
	for i := 3; i < len(road)-3; i += 6 {
		want++
	}
	if len(lamps) != want {
		t.Fatalf("Expected %d lamps, got %d", want, len(lamps))
	}
	side := lamps[0].Position.Z() - 150
	for _, l := range lamps {
		if math.Abs(math.Abs(l.Position.Z()-150)-15) > 1e-9 {
			t.Errorf("lamp %v not 15 units from the road", l.Position)
		}
		if (l.Position.Z()-150)*side <= 0 {
			t.Errorf("lamps on both sides of the road")
		}
		if l.Position.Y() != 4 {
			t.Errorf("Expected lamp y 4, got %v", l.Position.Y())
		}
		if l.Prefab != lamps[0].Prefab {
			t.Errorf("Expected one prefab for every lamp")
		}
		for k := 0; k < 3; k++ {
			if l.Scale[k] < 1.1 || l.Scale[k] > 1.4 {
				t.Errorf("scale %v out of range", l.Scale)
			}
		}
	}
}

func TestPlaceHouseOnStraightRoad(t *testing.T) {
	road := straightRoad(50)
	p := DefaultHouseParams(mgl64.Vec2{300, 300}, 4)
	house, ok := PlaceHouse(road, p)
	if !ok {
		t.Fatalf("Expected a house beside a straight road")
	}
	pos := house.Instance.Position
	if d := math.Abs(pos.Z() - 150); math.Abs(d-45) > 1e-9 {
		t.Errorf("house %.3f from the road, expected 45", d)
	}
	if len(house.Guards) != 6 || house.Guards[0] != pos {
		t.Fatalf("Expected the house and five guard points, got %v", house.Guards)
	}
	for _, g := range house.Guards[1:] {
		if d := g.Sub(pos).Len(); math.Abs(d-23) > 1e-9 {
			t.Errorf("guard %v is %.3f from the house", g, d)
		}
	}
}

func TestPlaceHouseRejectsCurves(t *testing.T) {
	// tight circle: heading changes by far more than 3 degrees per stride
	road := make([]mgl64.Vec3, 60)
	for i := range road {
		a := float64(i) * 0.2
		road[i] = mgl64.Vec3{150 + 40*math.Cos(a), 0, 150 + 40*math.Sin(a)}
	}
	if _, ok := PlaceHouse(road, DefaultHouseParams(mgl64.Vec2{300, 300}, 1)); ok {
		t.Errorf("Expected no house on a tight curve")
	}
}

func TestPlaceHouseShortRoad(t *testing.T) {
	if _, ok := PlaceHouse(straightRoad(16), DefaultHouseParams(mgl64.Vec2{300, 300}, 1)); ok {
		t.Errorf("Expected no house on a road with fewer than 17 points")
	}
}

func TestWrapDegrees(t *testing.T) {
	cases := map[float64]float64{0: 0, 359: -1, -359: 1, 180: 180, -180: 180, 540: 180}
	for in, want := range cases {
		if got := wrapDegrees(in); math.Abs(got-want) > 1e-9 {
			t.Errorf("wrapDegrees(%v) = %v, expected %v", in, got, want)
		}
	}
}
