package path

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// samplesPerUnit is the flattening density along the estimated curve
	// length of each segment.
	samplesPerUnit    = 1.0
	minSegmentSamples = 10
)

// VertexPath is a dense polyline with cumulative arc length. The t
// parameter of its accessors is the fraction of total length.
type VertexPath struct {
	points []mgl64.Vec3
	dist   []float64
}

// NewVertexPath flattens b into a polyline.
func NewVertexPath(b *BezierPath) *VertexPath {
	if b.NumSegments() == 0 {
		if b.NumPoints() == 0 {
			return FromPoints(nil)
		}
		return FromPoints([]mgl64.Vec3{b.Point(0)})
	}
	pts := []mgl64.Vec3{b.Point(0)}
	for s := 0; s < b.NumSegments(); s++ {
		seg := b.SegmentPoints(s)
		chord := seg[3].Sub(seg[0]).Len()
		net := seg[1].Sub(seg[0]).Len() + seg[2].Sub(seg[1]).Len() + seg[3].Sub(seg[2]).Len()
		n := max(int(math.Ceil((chord+net)/2*samplesPerUnit)), minSegmentSamples)
		for k := 1; k <= n; k++ {
			pts = append(pts, b.Evaluate(s, float64(k)/float64(n)))
		}
	}
	return FromPoints(pts)
}

// FromPoints wraps an ordered polyline.
func FromPoints(points []mgl64.Vec3) *VertexPath {
	vp := &VertexPath{
		points: append([]mgl64.Vec3(nil), points...),
		dist:   make([]float64, len(points)),
	}
	for i := 1; i < len(points); i++ {
		vp.dist[i] = vp.dist[i-1] + points[i].Sub(points[i-1]).Len()
	}
	return vp
}

// NumPoints returns the polyline vertex count.
func (vp *VertexPath) NumPoints() int { return len(vp.points) }

// Vertex returns polyline vertex i.
func (vp *VertexPath) Vertex(i int) mgl64.Vec3 { return vp.points[i] }

// Length is the total arc length.
func (vp *VertexPath) Length() float64 {
	if len(vp.dist) == 0 {
		return 0
	}
	return vp.dist[len(vp.dist)-1]
}

// locate returns the polyline segment [i, i+1] holding distance d and the
// fraction along it.
func (vp *VertexPath) locate(d float64) (int, float64) {
	n := len(vp.points)
	if n < 2 {
		return 0, 0
	}
	d = mgl64.Clamp(d, 0, vp.Length())
	i := sort.SearchFloat64s(vp.dist, d) - 1
	if i < 0 {
		i = 0
	}
	if i > n-2 {
		i = n - 2
	}
	span := vp.dist[i+1] - vp.dist[i]
	if span == 0 {
		return i, 0
	}
	return i, (d - vp.dist[i]) / span
}

// PointAtDistance returns the point d units along the path.
func (vp *VertexPath) PointAtDistance(d float64) mgl64.Vec3 {
	switch len(vp.points) {
	case 0:
		return mgl64.Vec3{}
	case 1:
		return vp.points[0]
	}
	i, f := vp.locate(d)
	return lerp3(vp.points[i], vp.points[i+1], f)
}

// PointAt returns the point at fraction t of the length.
func (vp *VertexPath) PointAt(t float64) mgl64.Vec3 {
	return vp.PointAtDistance(mgl64.Clamp(t, 0, 1) * vp.Length())
}

// TangentAt returns the unit direction of travel at fraction t.
func (vp *VertexPath) TangentAt(t float64) mgl64.Vec3 {
	if len(vp.points) < 2 {
		return mgl64.Vec3{0, 0, 1}
	}
	i, _ := vp.locate(mgl64.Clamp(t, 0, 1) * vp.Length())
	// skip zero-length spans
	for j := i; j < len(vp.points)-1; j++ {
		if d := vp.points[j+1].Sub(vp.points[j]); d.LenSqr() > 0 {
			return d.Normalize()
		}
	}
	for j := i; j > 0; j-- {
		if d := vp.points[j].Sub(vp.points[j-1]); d.LenSqr() > 0 {
			return d.Normalize()
		}
	}
	return mgl64.Vec3{0, 0, 1}
}

// NormalAt returns the horizontal unit vector to the right of the tangent
// at fraction t.
func (vp *VertexPath) NormalAt(t float64) mgl64.Vec3 {
	tan := vp.TangentAt(t)
	n := mgl64.Vec3{-tan.Z(), 0, tan.X()}
	if n.LenSqr() == 0 {
		return mgl64.Vec3{1, 0, 0}
	}
	return n.Normalize()
}

// SampleEvenlySpaced returns n points at equal arc-length intervals from
// the start to the end of the path.
func (vp *VertexPath) SampleEvenlySpaced(n int) []mgl64.Vec3 {
	if n <= 0 || len(vp.points) == 0 {
		return nil
	}
	if n == 1 {
		return []mgl64.Vec3{vp.points[0]}
	}
	out := make([]mgl64.Vec3, n)
	for i := range out {
		out[i] = vp.PointAt(float64(i) / float64(n-1))
	}
	return out
}

// PointsAlongPath returns points every spacing units starting at the path
// start. The end point is not added unless it falls on the spacing.
func (vp *VertexPath) PointsAlongPath(spacing float64) []mgl64.Vec3 {
	if spacing <= 0 || len(vp.points) == 0 {
		return nil
	}
	length := vp.Length()
	out := make([]mgl64.Vec3, 0, int(length/spacing)+1)
	for k := 0; ; k++ {
		d := float64(k) * spacing
		if d > length {
			break
		}
		out = append(out, vp.PointAtDistance(d))
	}
	return out
}
