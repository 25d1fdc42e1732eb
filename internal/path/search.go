package path

import (
	"container/heap"
	"context"
	"fmt"
	"math"

	"polyterrain/internal/mesh"

	"github.com/go-gl/mathgl/mgl64"
)

// openNode is one entry of the open set. Stale entries (a cheaper path to
// the same triangle was pushed later) are skipped when popped.
type openNode struct {
	tri  int
	g, h float64
	seq  int
}

func (n openNode) f() float64 { return n.g + n.h }

type openSet []openNode

func (s openSet) Len() int { return len(s) }

func (s openSet) Less(i, j int) bool {
	if fi, fj := s[i].f(), s[j].f(); fi != fj {
		return fi < fj
	}
	if s[i].h != s[j].h {
		return s[i].h < s[j].h
	}
	return s[i].seq < s[j].seq
}

func (s openSet) Swap(i, j int) { s[i], s[j] = s[j], s[i] }

func (s *openSet) Push(x any) { *s = append(*s, x.(openNode)) }

func (s *openSet) Pop() any {
	old := *s
	n := old[len(old)-1]
	*s = old[:len(old)-1]
	return n
}

type search struct {
	m       *mesh.Mesh
	elev    []float64
	p       RiverParams
	centers []mgl64.Vec3
	mid     mgl64.Vec2
	halfDia float64
}

func newSearch(m *mesh.Mesh, elevations []float64, p RiverParams) *search {
	s := &search{
		m:       m,
		elev:    elevations,
		p:       p,
		centers: make([]mgl64.Vec3, m.TriangleCount()),
		mid:     m.Size.Mul(0.5),
		halfDia: m.Size.Len() / 2,
	}
	for t, tr := range m.Triangles {
		var sum mgl64.Vec3
		for _, v := range tr.V {
			sum = sum.Add(s.vertex3(v))
		}
		s.centers[t] = sum.Mul(1.0 / 3.0)
	}
	return s
}

// vertex3 lifts a vertex to (x, elevation, y).
func (s *search) vertex3(id int) mgl64.Vec3 {
	p := s.m.Vertices[id].Pos
	return mgl64.Vec3{p.X(), s.elev[id], p.Y()}
}

func (s *search) center(t int) mgl64.Vec3 { return s.centers[t] }

func planar(v mgl64.Vec3) mgl64.Vec2 { return mgl64.Vec2{v.X(), v.Z()} }

// stepCost is the cost of moving from triangle a to its neighbour b.
func (s *search) stepCost(a, b int) float64 {
	ca, cb := s.centers[a], s.centers[b]
	uphill := math.Max(0, mgl64.Round(cb.Y()-ca.Y(), 1))

	bias := 0.0
	if s.halfDia > 0 {
		bias = planar(cb).Sub(s.mid).Len() / s.halfDia
	}
	step := planar(cb).Sub(planar(ca)).Len()
	return s.p.UphillPenalty*uphill + s.p.CenterBias*bias + s.p.StepWeight*step
}

func (s *search) heuristic(t, goal int) float64 {
	return s.p.HeuristicWeight * s.centers[goal].Sub(s.centers[t]).Len()
}

// run returns the triangle route from start to goal with the accumulated
// cost at each step.
func (s *search) run(ctx context.Context, start, goal int) ([]int, []float64, error) {
	n := s.m.TriangleCount()
	g := make([]float64, n)
	parent := make([]int, n)
	closed := make([]bool, n)
	for i := range g {
		g[i] = math.Inf(1)
		parent[i] = -1
	}

	open := &openSet{}
	seq := 0
	g[start] = 0
	heap.Push(open, openNode{tri: start, g: 0, h: s.heuristic(start, goal), seq: seq})

	for iter := 0; open.Len() > 0; iter++ {
		if iter >= s.p.MaxIterations {
			return nil, nil, fmt.Errorf("%w: cap of %d expansions reached", ErrSearchExhausted, s.p.MaxIterations)
		}
		if iter&255 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
		}

		cur := heap.Pop(open).(openNode)
		if closed[cur.tri] || cur.g > g[cur.tri] {
			continue
		}
		closed[cur.tri] = true
		if cur.tri == goal {
			return s.walk(parent, g, goal)
		}

		for _, nb := range s.m.Neighbors(cur.tri) {
			if closed[nb] {
				continue
			}
			ng := g[cur.tri] + s.stepCost(cur.tri, nb)
			if ng < g[nb] {
				g[nb] = ng
				parent[nb] = cur.tri
				seq++
				heap.Push(open, openNode{tri: nb, g: ng, h: s.heuristic(nb, goal), seq: seq})
			}
		}
	}
	return nil, nil, fmt.Errorf("%w: goal unreachable", ErrSearchExhausted)
}

func (s *search) walk(parent []int, g []float64, goal int) ([]int, []float64, error) {
	var route []int
	for t := goal; t != -1; t = parent[t] {
		route = append(route, t)
	}
	for i, j := 0, len(route)-1; i < j; i, j = i+1, j-1 {
		route[i], route[j] = route[j], route[i]
	}
	cost := make([]float64, len(route))
	for i, t := range route {
		cost[i] = g[t]
	}
	return route, cost, nil
}
