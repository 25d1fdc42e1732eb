package graphics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestCameraOrbitClampsPitch(t *testing.T) {
	c := NewCamera(900, 600)
	c.Orbit(400, 200)
	if c.Pitch != maxPitch {
		t.Errorf("Expected pitch %d, got %f", maxPitch, c.Pitch)
	}
	if c.Yaw != 40 {
		t.Errorf("Expected yaw to wrap to 40, got %f", c.Yaw)
	}
	c.Orbit(0, -500)
	if c.Pitch != minPitch {
		t.Errorf("Expected pitch %d, got %f", minPitch, c.Pitch)
	}
}

func TestCameraEyeDistance(t *testing.T) {
	c := NewCamera(900, 600)
	c.Frame(300)
	if c.Target != (mgl32.Vec3{150, 0, 150}) {
		t.Fatalf("Expected target at the tile centre, got %v", c.Target)
	}
	d := c.Eye().Sub(c.Target).Len()
	if !mgl32.FloatEqualThreshold(d, c.Distance, 1e-3) {
		t.Errorf("Expected eye %f from target, got %f", c.Distance, d)
	}
	if c.Eye().Y() <= 0 {
		t.Errorf("Expected the eye above the target")
	}

	c.Zoom(1000)
	if c.Distance != c.MaxDistance {
		t.Errorf("Expected zoom to clamp at %f, got %f", c.MaxDistance, c.Distance)
	}
}

func TestScreenRayThroughCentre(t *testing.T) {
	c := NewCamera(800, 600)
	c.Frame(100)
	c.Orbit(30, 10)

	origin, dir := c.ScreenRay(400, 300)
	want := c.Target.Sub(c.Eye()).Normalize()
	if dir.Dot(want) < 0.9999 {
		t.Errorf("Expected centre ray %v, got %v", want, dir)
	}
	if origin.Sub(c.Eye()).Len() > 1 {
		t.Errorf("Expected ray to start at the near plane, got %v (eye %v)", origin, c.Eye())
	}

	// the top of the window looks further up than the centre
	_, up := c.ScreenRay(400, 0)
	if up.Y() <= dir.Y() {
		t.Errorf("Expected top ray to point higher than centre ray")
	}
}
