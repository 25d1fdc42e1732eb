// Package path builds the road and river centrelines: cubic Bezier curves
// resampled by arc length into dense vertex paths.
package path

import (
	"github.com/go-gl/mathgl/mgl64"
)

// autoControlLength scales automatic control handles relative to the
// distance to the neighbouring anchor.
const autoControlLength = 0.3

// ControlMode decides what happens to the opposite handle when a control
// point moves.
type ControlMode uint8

const (
	// Aligned keeps the two handles of an anchor on one line.
	Aligned ControlMode = iota
	// Free moves each handle independently.
	Free
)

// BezierPath is an open chain of cubic segments stored as
// [a0, c, c, a1, c, c, a2, ...]. Anchors sit at indices divisible by 3.
type BezierPath struct {
	points []mgl64.Vec3
	Mode   ControlMode
}

// NewBezierPath threads a path through anchors with automatically placed,
// aligned control handles. At least two anchors are required; with fewer
// the path is a single point.
func NewBezierPath(anchors []mgl64.Vec3) *BezierPath {
	b := &BezierPath{Mode: Aligned}
	if len(anchors) == 0 {
		return b
	}
	b.points = append(b.points, anchors[0])
	for _, a := range anchors[1:] {
		b.points = append(b.points, mgl64.Vec3{}, mgl64.Vec3{}, a)
	}
	b.autoSetAllControls()
	return b
}

// NumPoints returns the number of anchors plus controls.
func (b *BezierPath) NumPoints() int { return len(b.points) }

// NumSegments returns the number of cubic segments.
func (b *BezierPath) NumSegments() int {
	if len(b.points) < 4 {
		return 0
	}
	return (len(b.points) - 1) / 3
}

// NumAnchors returns the number of anchors.
func (b *BezierPath) NumAnchors() int { return (len(b.points) + 2) / 3 }

// Point returns point i.
func (b *BezierPath) Point(i int) mgl64.Vec3 { return b.points[i] }

// Points returns a copy of every anchor and control.
func (b *BezierPath) Points() []mgl64.Vec3 {
	return append([]mgl64.Vec3(nil), b.points...)
}

// IsAnchor reports whether index i holds an anchor.
func IsAnchor(i int) bool { return i%3 == 0 }

// SegmentPoints returns the four points of segment seg.
func (b *BezierPath) SegmentPoints(seg int) [4]mgl64.Vec3 {
	i := seg * 3
	return [4]mgl64.Vec3{b.points[i], b.points[i+1], b.points[i+2], b.points[i+3]}
}

// Evaluate returns the point at parameter t in [0, 1] on segment seg.
func (b *BezierPath) Evaluate(seg int, t float64) mgl64.Vec3 {
	p := b.SegmentPoints(seg)
	return mgl64.CubicBezierCurve3D(mgl64.Clamp(t, 0, 1), p[0], p[1], p[2], p[3])
}

// MovePoint moves point i to pos. An anchor drags its two handles by the
// same offset. In Aligned mode a moved handle swings the opposite handle of
// its anchor onto the same line, keeping that handle's length.
func (b *BezierPath) MovePoint(i int, pos mgl64.Vec3) {
	if i < 0 || i >= len(b.points) {
		return
	}
	if IsAnchor(i) {
		delta := pos.Sub(b.points[i])
		b.points[i] = pos
		if i-1 >= 0 {
			b.points[i-1] = b.points[i-1].Add(delta)
		}
		if i+1 < len(b.points) {
			b.points[i+1] = b.points[i+1].Add(delta)
		}
		return
	}

	b.points[i] = pos
	if b.Mode != Aligned {
		return
	}
	nextIsAnchor := (i+1)%3 == 0
	anchor, opposite := i-1, i-2
	if nextIsAnchor {
		anchor, opposite = i+1, i+2
	}
	if opposite < 0 || opposite >= len(b.points) {
		return
	}
	dir := b.points[anchor].Sub(pos)
	if dir.LenSqr() == 0 {
		return
	}
	length := b.points[opposite].Sub(b.points[anchor]).Len()
	b.points[opposite] = b.points[anchor].Add(dir.Normalize().Mul(length))
}

// SetControl places control point i at pos without touching any other
// point. Anchor indices are ignored.
func (b *BezierPath) SetControl(i int, pos mgl64.Vec3) {
	if i < 0 || i >= len(b.points) || IsAnchor(i) {
		return
	}
	b.points[i] = pos
}

// SplitSegment inserts an anchor at parameter t of segment seg using de
// Casteljau subdivision, so the curve keeps its shape. It returns the index
// of the new anchor.
func (b *BezierPath) SplitSegment(seg int, t float64) int {
	t = mgl64.Clamp(t, 0, 1)
	p := b.SegmentPoints(seg)

	p01 := lerp3(p[0], p[1], t)
	p12 := lerp3(p[1], p[2], t)
	p23 := lerp3(p[2], p[3], t)
	a := lerp3(p01, p12, t)
	c := lerp3(p12, p23, t)
	mid := lerp3(a, c, t)

	i := seg * 3
	b.points[i+1] = p01
	b.points[i+2] = p23

	rest := append([]mgl64.Vec3{a, mid, c}, b.points[i+2:]...)
	b.points = append(b.points[:i+2], rest...)
	return i + 3
}

func lerp3(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

func (b *BezierPath) autoSetAllControls() {
	for a := 0; a < len(b.points); a += 3 {
		b.autoSetAnchorControls(a)
	}
	b.autoSetStartAndEndControls()
}

func (b *BezierPath) autoSetAnchorControls(anchor int) {
	pos := b.points[anchor]
	var dir mgl64.Vec3
	var dist [2]float64

	if anchor-3 >= 0 {
		off := b.points[anchor-3].Sub(pos)
		if l := off.Len(); l > 0 {
			dir = dir.Add(off.Mul(1 / l))
			dist[0] = l
		}
	}
	if anchor+3 < len(b.points) {
		off := b.points[anchor+3].Sub(pos)
		if l := off.Len(); l > 0 {
			dir = dir.Sub(off.Mul(1 / l))
			dist[1] = -l
		}
	}
	if dir.LenSqr() > 0 {
		dir = dir.Normalize()
	}
	for k := 0; k < 2; k++ {
		c := anchor + k*2 - 1
		if c >= 0 && c < len(b.points) {
			b.points[c] = pos.Add(dir.Mul(dist[k] * autoControlLength))
		}
	}
}

func (b *BezierPath) autoSetStartAndEndControls() {
	n := len(b.points)
	if n < 4 {
		return
	}
	if n == 4 {
		b.points[1] = b.points[0].Add(b.points[3].Sub(b.points[0]).Mul(0.25))
		b.points[2] = b.points[3].Add(b.points[0].Sub(b.points[3]).Mul(0.25))
		return
	}
	b.points[1] = b.points[0].Add(b.points[2]).Mul(0.5)
	b.points[n-2] = b.points[n-1].Add(b.points[n-3]).Mul(0.5)
}
