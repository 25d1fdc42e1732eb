package path

import (
	"polyterrain/internal/profiling"
	"polyterrain/internal/rng"

	"github.com/go-gl/mathgl/mgl64"
)

// HeightSampler provides smoothed natural elevation for anchor heights.
type HeightSampler interface {
	Smoothed(p mgl64.Vec2, dist float64) float64
}

// RoadParams shapes the road centreline.
type RoadParams struct {
	// Spacing between the returned road points.
	Spacing float64
	// HeightSmoothDistance is the stencil size used for anchor heights.
	HeightSmoothDistance float64
	// EdgeInset keeps the end anchors just inside the top and bottom edges.
	EdgeInset float64
}

// DefaultRoadParams returns the tuned road settings.
func DefaultRoadParams() RoadParams {
	return RoadParams{Spacing: 6, HeightSmoothDistance: 20, EdgeInset: 0.015}
}

// Road is a generated road centreline.
type Road struct {
	Bezier *BezierPath
	Path   *VertexPath
	// Points are sampled every Spacing units, as (x, elevation, y).
	Points []mgl64.Vec3
}

// drawRange is r.Range that falls back to lo when the bounds collapse on
// small regions. The draw is still consumed so the stream stays aligned.
func drawRange(r *rng.Generator, lo, hi int) int {
	if hi <= lo {
		hi = lo + 1
	}
	return r.Range(lo, hi)
}

// BuildRoad lays a road from the top edge, through a point near the middle,
// to the bottom edge. Draw order: first anchor x, middle offsets, last
// anchor x, handle x and y.
func BuildRoad(r *rng.Generator, size mgl64.Vec2, heights HeightSampler, p RoadParams) *Road {
	defer profiling.Track("path.BuildRoad")()

	w, h := size.X(), size.Y()
	iw, ih := int(w), int(h)

	lo, hi := p.EdgeInset, mgl64.Vec2{w - p.EdgeInset, h - p.EdgeInset}
	inside := func(q mgl64.Vec2) mgl64.Vec2 {
		return mgl64.Vec2{mgl64.Clamp(q.X(), lo, hi.X()), mgl64.Clamp(q.Y(), lo, hi.Y())}
	}

	first := inside(mgl64.Vec2{float64(drawRange(r, 30, iw-30)), h - p.EdgeInset})
	middle := inside(mgl64.Vec2{
		w/2 + float64(drawRange(r, -15, 15)),
		h/2 + float64(drawRange(r, -15, 15)),
	})
	last := inside(mgl64.Vec2{float64(drawRange(r, 30, iw-30)), p.EdgeInset})
	hx := drawRange(r, 10, iw-10)
	hy := drawRange(r, ih/2+40, ih-20)
	hq := inside(mgl64.Vec2{float64(hx), float64(hy)})
	handle := mgl64.Vec3{hq.X(), 0, hq.Y()}

	b := roadTemplate(size, p.EdgeInset)
	lift := func(q mgl64.Vec2) mgl64.Vec3 {
		return mgl64.Vec3{q.X(), heights.Smoothed(q, p.HeightSmoothDistance), q.Y()}
	}
	b.MovePoint(0, lift(first))
	b.MovePoint(6, lift(last))
	b.MovePoint(2, handle)
	b.MovePoint(3, lift(middle))

	// Moving anchors drags their handles along. Controls are kept on the
	// tile, and the curve stays inside their hull.
	for i := 0; i < b.NumPoints(); i++ {
		if IsAnchor(i) {
			continue
		}
		q := b.Point(i)
		c := inside(mgl64.Vec2{q.X(), q.Z()})
		b.SetControl(i, mgl64.Vec3{c.X(), q.Y(), c.Y()})
	}

	a1 := b.SplitSegment(0, 0.5)
	a2 := b.SplitSegment(2, 0.5)
	for _, a := range []int{a1, a2} {
		q := b.Point(a)
		b.MovePoint(a, lift(mgl64.Vec2{q.X(), q.Z()}))
	}

	vp := NewVertexPath(b)
	return &Road{Bezier: b, Path: vp, Points: vp.PointsAlongPath(p.Spacing)}
}

// roadTemplate is the three-anchor starting shape that BuildRoad moves into
// place: top-centre, centre, bottom-centre with S-shaped handles.
func roadTemplate(size mgl64.Vec2, inset float64) *BezierPath {
	w, h := size.X(), size.Y()
	reach := h / 6
	first := mgl64.Vec3{w / 2, 0, h - inset}
	last := mgl64.Vec3{w / 2, 0, inset}
	return &BezierPath{
		Mode: Aligned,
		points: []mgl64.Vec3{
			first,
			first.Sub(mgl64.Vec3{0, 0, reach}),
			{w / 3, 0, h * 23 / 30},
			{w / 2, 0, h / 2},
			{w * 2 / 3, 0, h * 7 / 30},
			last.Add(mgl64.Vec3{0, 0, reach}),
			last,
		},
	}
}
