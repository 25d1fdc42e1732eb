package placement

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// flatGround is a horizontal plane with a fixed normal.
type flatGround struct {
	height float64
	normal mgl64.Vec3
}

func (g flatGround) QueryGround(p mgl64.Vec3) (Hit, bool) {
	if p.Y() < g.height {
		return Hit{}, false
	}
	return Hit{Point: mgl64.Vec3{p.X(), g.height, p.Z()}, Normal: g.normal}, true
}

type noGround struct{}

func (noGround) QueryGround(mgl64.Vec3) (Hit, bool) { return Hit{}, false }

func treeConfig() PassConfig {
	return PassConfig{
		Kind:            KindTree,
		Seed:            3,
		Region:          mgl64.Vec2{150, 150},
		MinSpacing:      10,
		EdgeMargin:      6,
		Prefabs:         4,
		RayHeight:       100,
		CheckSlope:      true,
		MinNormalY:      0.8,
		Rotation:        RotateEuler,
		Euler:           [3]AngleRange{{-5, 5}, {0, 360}, {-5, 5}},
		UpOffset:        1,
		ScaleMin:        1.1,
		ScaleMax:        1.4,
		Gradient:        NewGradient(GradientKey{0, mgl32.Vec4{0, 0.4, 0, 1}}, GradientKey{1, mgl32.Vec4{0.2, 0.8, 0.1, 1}}),
		ExclusionRadius: 20,
	}
}

func TestPassPlacesOnFlatGround(t *testing.T) {
	ground := flatGround{height: 5, normal: Up}
	pass := NewPass(treeConfig(), ground, nil)
	placed := pass.Run()

	st := pass.Stats()
	if st.Accepted == 0 || st.Accepted != st.Candidates || len(placed) != st.Accepted {
		t.Fatalf("Expected every candidate accepted, got %+v", st)
	}
	for _, in := range placed {
		if in.Position.Y() != 6 {
			t.Fatalf("Expected y 6 (ground + 1), got %v", in.Position.Y())
		}
		if in.Position.X() < 3 || in.Position.X() > 147 || in.Position.Z() < 3 || in.Position.Z() > 147 {
			t.Fatalf("instance %v outside the margin", in.Position)
		}
		for k := 0; k < 3; k++ {
			if in.Scale[k] < 1.1 || in.Scale[k] > 1.4 {
				t.Fatalf("scale %v out of range", in.Scale)
			}
		}
		if in.Prefab < 0 || in.Prefab >= 4 || !in.HasColor {
			t.Fatalf("bad prefab or colour: %+v", in)
		}
	}
	for i := range placed {
		for j := i + 1; j < len(placed); j++ {
			if d := placed[i].Position.Sub(placed[j].Position).Len(); d < 10 {
				t.Fatalf("instances %d and %d only %.3f apart", i, j, d)
			}
		}
	}
}

func TestPassRejectsSteepGround(t *testing.T) {
	ground := flatGround{height: 0, normal: mgl64.Vec3{0.8, 0.6, 0}}
	pass := NewPass(treeConfig(), ground, nil)
	pass.Run()
	if st := pass.Stats(); st.Accepted != 0 || st.Steep != st.Candidates {
		t.Errorf("Expected all candidates too steep, got %+v", st)
	}
}

func TestPassCountsMisses(t *testing.T) {
	pass := NewPass(treeConfig(), noGround{}, nil)
	pass.Run()
	if st := pass.Stats(); st.Misses != st.Candidates || st.Accepted != 0 {
		t.Errorf("Expected only misses, got %+v", st)
	}
}

func TestPassExclusion(t *testing.T) {
	excl := &ExclusionSet{}
	centre := mgl64.Vec3{75, 0, 75}
	excl.Add(centre, 0)

	pass := NewPass(treeConfig(), flatGround{normal: Up}, excl)
	placed := pass.Run()
	if pass.Stats().Excluded == 0 {
		t.Fatalf("Expected some candidates inside the zone")
	}
	for _, in := range placed {
		dx, dz := in.Position.X()-centre.X(), in.Position.Z()-centre.Z()
		if math.Hypot(dx, dz) <= 20 {
			t.Fatalf("instance %v inside exclusion zone", in.Position)
		}
	}
}

// Rejections must not shift the draws of later candidates.
func TestPassDrawsIndependentOfRejections(t *testing.T) {
	free := NewPass(treeConfig(), flatGround{normal: Up}, nil).Run()

	excl := &ExclusionSet{}
	excl.Add(mgl64.Vec3{40, 0, 40}, 30)
	blocked := NewPass(treeConfig(), flatGround{normal: Up}, excl).Run()

	if len(blocked) >= len(free) {
		t.Fatalf("Expected fewer instances with an exclusion zone")
	}
	byPos := make(map[mgl64.Vec3]PlacedInstance, len(free))
	for _, in := range free {
		byPos[in.Position] = in
	}
	for _, in := range blocked {
		ref, ok := byPos[in.Position]
		if !ok {
			t.Fatalf("instance at %v not present in the unblocked run", in.Position)
		}
		if ref.Prefab != in.Prefab || ref.Rotation != in.Rotation || ref.Scale != in.Scale || ref.Color != in.Color {
			t.Fatalf("instance at %v drew different values", in.Position)
		}
	}
}

func TestPassStepResumes(t *testing.T) {
	whole := NewPass(treeConfig(), flatGround{normal: Up}, nil).Run()

	pass := NewPass(treeConfig(), flatGround{normal: Up}, nil)
	steps := 0
	for !pass.Step(7) {
		steps++
	}
	if steps == 0 {
		t.Fatalf("Expected more than one step")
	}
	got := pass.Placed()
	if len(got) != len(whole) {
		t.Fatalf("Expected %d instances, got %d", len(whole), len(got))
	}
	for i := range got {
		if got[i] != whole[i] {
			t.Fatalf("instance %d differs between chunked and whole runs", i)
		}
	}
}

func TestFootprintBlocksLaterPasses(t *testing.T) {
	excl := &ExclusionSet{}
	cfg := treeConfig()
	cfg.Footprint = 6
	first := NewPass(cfg, flatGround{normal: Up}, excl).Run()
	if excl.Len() != len(first) {
		t.Fatalf("Expected one zone per instance, got %d zones for %d instances", excl.Len(), len(first))
	}

	second := NewPass(cfg, flatGround{normal: Up}, excl)
	second.Run()
	if st := second.Stats(); st.Accepted != 0 {
		t.Errorf("Same candidates should all be blocked by the footprints, got %+v", st)
	}
}

func TestRotateToNormal(t *testing.T) {
	n := mgl64.Vec3{0.3, 0.9, 0.1}.Normalize()
	cfg := treeConfig()
	cfg.Rotation = RotateToNormal
	cfg.CheckSlope = false
	placed := NewPass(cfg, flatGround{normal: n}, nil).Run()
	if len(placed) == 0 {
		t.Fatalf("Expected instances")
	}
	if got := placed[0].Rotation.Rotate(Up); got.Sub(n).Len() > 1e-9 {
		t.Errorf("Expected up rotated onto %v, got %v", n, got)
	}
}

func TestExclusionSetBlocked(t *testing.T) {
	var e ExclusionSet
	e.Add(mgl64.Vec3{0, 100, 0}, 5)
	e.Add(mgl64.Vec3{50, 0, 0}, 0)

	if !e.Blocked(mgl64.Vec3{5, 0, 0}, 1) {
		t.Errorf("Distance equal to radius should block")
	}
	if e.Blocked(mgl64.Vec3{5.01, 0, 0}, 1) {
		t.Errorf("Point outside radius should not block")
	}
	if !e.Blocked(mgl64.Vec3{57, 0, 0}, 8) || e.Blocked(mgl64.Vec3{57, 0, 0}, 6) {
		t.Errorf("Zero-radius zone should use the pass radius")
	}
}

func TestGradientEvaluate(t *testing.T) {
	g := NewGradient(
		GradientKey{1, mgl32.Vec4{1, 1, 1, 1}},
		GradientKey{0, mgl32.Vec4{0, 0, 0, 1}},
	)
	if got := g.Evaluate(0.25); !got.ApproxEqual(mgl32.Vec4{0.25, 0.25, 0.25, 1}) {
		t.Errorf("Evaluate(0.25) = %v", got)
	}
	if got := g.Evaluate(-1); got != (mgl32.Vec4{0, 0, 0, 1}) {
		t.Errorf("Evaluate clamps low, got %v", got)
	}
	if got := g.Evaluate(3); got != (mgl32.Vec4{1, 1, 1, 1}) {
		t.Errorf("Evaluate clamps high, got %v", got)
	}
}

func TestEulerMatchesYaw(t *testing.T) {
	a, b := Euler(0, 90, 0), Yaw(90)
	v := mgl64.Vec3{1, 0, 0}
	if a.Rotate(v).Sub(b.Rotate(v)).Len() > 1e-12 {
		t.Errorf("Euler yaw and Yaw disagree: %v vs %v", a.Rotate(v), b.Rotate(v))
	}
}
