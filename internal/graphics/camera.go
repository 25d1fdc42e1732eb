package graphics

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	minPitch = 5
	maxPitch = 89
)

// Camera orbits a target point. Yaw and Pitch are in degrees; yaw 0 looks
// along -z from the +z side.
type Camera struct {
	AspectRatio float32
	FOV         float32
	NearPlane   float32
	FarPlane    float32

	Target   mgl32.Vec3
	Distance float32
	Yaw      float32
	Pitch    float32

	MinDistance float32
	MaxDistance float32

	width, height int
}

func NewCamera(width, height int) *Camera {
	c := &Camera{
		FOV:         60.0,
		NearPlane:   0.1,
		FarPlane:    1000.0,
		Distance:    100,
		Pitch:       35,
		MinDistance: 5,
		MaxDistance: 2000,
	}
	c.SetViewport(width, height)
	return c
}

// SetViewport updates the aspect ratio for a window of the given size.
func (c *Camera) SetViewport(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.width, c.height = width, height
	c.AspectRatio = float32(width) / float32(height)
}

// Frame points the camera at the middle of a size x size tile.
func (c *Camera) Frame(size float32) {
	c.Target = mgl32.Vec3{size / 2, 0, size / 2}
	c.Distance = size * 1.3
	c.FarPlane = math32.Max(1000, size*6)
	c.MaxDistance = math32.Max(c.MaxDistance, size*4)
}

// Orbit turns the camera around the target.
func (c *Camera) Orbit(dYaw, dPitch float32) {
	c.Yaw = math32.Mod(c.Yaw+dYaw, 360)
	c.Pitch = mgl32.Clamp(c.Pitch+dPitch, minPitch, maxPitch)
}

// Zoom scales the orbit distance.
func (c *Camera) Zoom(factor float32) {
	if factor <= 0 {
		return
	}
	c.Distance = mgl32.Clamp(c.Distance*factor, c.MinDistance, c.MaxDistance)
}

// Eye returns the camera position.
func (c *Camera) Eye() mgl32.Vec3 {
	yaw := mgl32.DegToRad(c.Yaw)
	pitch := mgl32.DegToRad(c.Pitch)
	dir := mgl32.Vec3{
		math32.Cos(pitch) * math32.Sin(yaw),
		math32.Sin(pitch),
		math32.Cos(pitch) * math32.Cos(yaw),
	}
	return c.Target.Add(dir.Mul(c.Distance))
}

func (c *Camera) GetProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.AspectRatio, c.NearPlane, c.FarPlane)
}

func (c *Camera) GetViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Eye(), c.Target, mgl32.Vec3{0, 1, 0})
}

// ScreenRay returns the world-space ray under window pixel (x, y), with y
// growing downwards. dir is unit length.
func (c *Camera) ScreenRay(x, y float64) (origin, dir mgl32.Vec3) {
	if c.width == 0 || c.height == 0 {
		return c.Eye(), c.Target.Sub(c.Eye()).Normalize()
	}
	nx := float32(2*x/float64(c.width) - 1)
	ny := float32(1 - 2*y/float64(c.height))
	inv := c.GetProjectionMatrix().Mul4(c.GetViewMatrix()).Inv()

	unproject := func(z float32) mgl32.Vec3 {
		p := inv.Mul4x1(mgl32.Vec4{nx, ny, z, 1})
		return p.Vec3().Mul(1 / p.W())
	}
	near, far := unproject(-1), unproject(1)
	return near, far.Sub(near).Normalize()
}
