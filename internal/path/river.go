package path

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"polyterrain/internal/mesh"
	"polyterrain/internal/profiling"
	"polyterrain/internal/rng"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	// ErrNoValidRiverEndpoints means no high/low boundary pair on different
	// rectangle edges was found.
	ErrNoValidRiverEndpoints = errors.New("path: no valid river endpoints")
	// ErrSearchExhausted means the route search hit its expansion cap or ran
	// out of open nodes before reaching the goal.
	ErrSearchExhausted = errors.New("path: river search exhausted")
)

// RiverParams tunes endpoint selection and the route search.
type RiverParams struct {
	UphillPenalty   float64
	CenterBias      float64
	StepWeight      float64
	HeuristicWeight float64

	MaxIterations    int
	EndpointAttempts int
	// Subsample keeps every Nth triangle of the route.
	Subsample int
	// EdgeSnap is the distance within which the end points are put exactly
	// on the border.
	EdgeSnap     float64
	HandleLength float64
	Spacing      float64
}

// DefaultRiverParams returns the tuned river settings.
func DefaultRiverParams() RiverParams {
	return RiverParams{
		UphillPenalty:    8,
		CenterBias:       0.5,
		StepWeight:       1,
		HeuristicWeight:  1,
		MaxIterations:    10000,
		EndpointAttempts: 300,
		Subsample:        20,
		EdgeSnap:         0.5,
		HandleLength:     20,
		Spacing:          6,
	}
}

// River is a routed river.
type River struct {
	Start, End         int // vertex IDs
	StartSide, EndSide mesh.Side
	// Route lists triangle IDs from the start triangle to the goal and
	// Cost the accumulated search cost at each of them.
	Route  []int
	Cost   []float64
	Bezier *BezierPath
	Path   *VertexPath
	Points []mgl64.Vec3
}

// RouteRiver picks a high and a low boundary vertex and connects them with
// a cost search over triangle adjacency.
func RouteRiver(ctx context.Context, r *rng.Generator, m *mesh.Mesh, elevations []float64, p RiverParams) (*River, error) {
	defer profiling.Track("path.RouteRiver")()

	start, end, err := riverEndpoints(r, m, elevations, p.EndpointAttempts)
	if err != nil {
		return nil, err
	}
	from := m.Locate(m.Vertices[start].Pos)
	to := m.Locate(m.Vertices[end].Pos)
	if from < 0 || to < 0 {
		return nil, fmt.Errorf("%w: endpoint outside mesh", ErrNoValidRiverEndpoints)
	}

	s := newSearch(m, elevations, p)
	route, cost, err := s.run(ctx, from, to)
	if err != nil {
		return nil, err
	}

	rv := &River{
		Start:     start,
		End:       end,
		StartSide: m.Sides(start),
		EndSide:   m.Sides(end),
		Route:     route,
		Cost:      cost,
	}

	pts := []mgl64.Vec3{s.vertex3(start)}
	for _, i := range subsample(len(route), p.Subsample) {
		pts = append(pts, s.center(route[i]))
	}
	pts = append(pts, s.vertex3(end))
	pts[0] = snapToEdge(pts[0], m.Size, p.EdgeSnap)
	pts[len(pts)-1] = snapToEdge(pts[len(pts)-1], m.Size, p.EdgeSnap)

	b := NewBezierPath(pts)
	n := b.NumPoints()
	in0, in1 := rv.StartSide.Inward(), rv.EndSide.Inward()
	b.SetControl(1, pts[0].Add(mgl64.Vec3{in0.X(), 0, in0.Y()}.Mul(p.HandleLength)))
	b.SetControl(n-2, pts[len(pts)-1].Add(mgl64.Vec3{in1.X(), 0, in1.Y()}.Mul(p.HandleLength)))

	rv.Bezier = b
	rv.Path = NewVertexPath(b)
	rv.Points = rv.Path.PointsAlongPath(p.Spacing)
	return rv, nil
}

// riverEndpoints draws the start from the highest 20% of the boundary and
// the end from the lowest 10%, on an edge the start does not touch.
func riverEndpoints(r *rng.Generator, m *mesh.Mesh, elevations []float64, attempts int) (int, int, error) {
	edge := m.BoundaryVertices()
	n := len(edge)
	if n < 2 {
		return 0, 0, ErrNoValidRiverEndpoints
	}
	sort.SliceStable(edge, func(i, j int) bool {
		ei, ej := elevations[edge[i]], elevations[edge[j]]
		if ei != ej {
			return ei > ej
		}
		return edge[i] < edge[j]
	})

	fn := float64(n)
	top := min(int(math.Floor(r.RangeFloat(0, fn*0.2))), n-1)
	start := edge[top]
	startSides := m.Sides(start)

	lo, hi := fn-fn*0.1, fn-1
	if !(hi > lo) {
		lo = hi - 1
	}
	for i := 0; i < attempts; i++ {
		k := min(int(math.Floor(r.RangeFloat(lo, hi))), n-1)
		end := edge[k]
		es := m.Sides(end)
		if end != start && es != mesh.SideNone && es&startSides == 0 {
			return start, end, nil
		}
	}
	return 0, 0, fmt.Errorf("%w after %d attempts", ErrNoValidRiverEndpoints, attempts)
}

// subsample returns every step-th index of [0, n) and always the last.
func subsample(n, step int) []int {
	if n == 0 {
		return nil
	}
	if step < 1 {
		step = 1
	}
	var out []int
	for i := 0; i < n; i += step {
		out = append(out, i)
	}
	if out[len(out)-1] != n-1 {
		out = append(out, n-1)
	}
	return out
}

func snapToEdge(p mgl64.Vec3, size mgl64.Vec2, tol float64) mgl64.Vec3 {
	snap := func(v, edge float64) float64 {
		if math.Abs(v-edge) <= tol {
			return edge
		}
		return v
	}
	x := snap(snap(p.X(), 0), size.X())
	z := snap(snap(p.Z(), 0), size.Y())
	return mgl64.Vec3{x, p.Y(), z}
}
