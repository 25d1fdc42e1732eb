// Package placement scatters decoration over the finished terrain by
// rejection sampling against ground slope and exclusion zones.
package placement

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// Up is the world up axis.
var Up = mgl64.Vec3{0, 1, 0}

// Hit is a ground intersection.
type Hit struct {
	Point  mgl64.Vec3
	Normal mgl64.Vec3
}

// GroundQuery casts a ray straight down from p. ok is false when nothing
// was hit, in which case the candidate is skipped.
type GroundQuery interface {
	QueryGround(p mgl64.Vec3) (Hit, bool)
}

// Kind is the decoration class of an instance.
type Kind uint8

const (
	KindTree Kind = iota
	KindRock
	KindGrass
	KindFlower
	KindLamp
	KindHouse
)

func (k Kind) String() string {
	switch k {
	case KindTree:
		return "tree"
	case KindRock:
		return "rock"
	case KindGrass:
		return "grass"
	case KindFlower:
		return "flower"
	case KindLamp:
		return "lamp"
	case KindHouse:
		return "house"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// PlacedInstance is one decoration handed to the instance consumer.
type PlacedInstance struct {
	Kind     Kind
	Prefab   int
	Position mgl64.Vec3
	Rotation mgl64.Quat
	Scale    mgl64.Vec3
	Color    mgl32.Vec4
	HasColor bool
	// Animate asks the consumer to grow the instance in.
	Animate bool
}

// Euler returns the rotation that applies z, then x, then y (degrees).
func Euler(x, y, z float64) mgl64.Quat {
	return mgl64.AnglesToQuat(mgl64.DegToRad(y), mgl64.DegToRad(x), mgl64.DegToRad(z), mgl64.YXZ)
}

// Yaw returns a rotation of deg degrees around Up.
func Yaw(deg float64) mgl64.Quat {
	return mgl64.QuatRotate(mgl64.DegToRad(deg), Up)
}
