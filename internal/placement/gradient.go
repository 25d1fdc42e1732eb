package placement

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// GradientKey is a colour at a position in [0, 1].
type GradientKey struct {
	Time  float64
	Color mgl32.Vec4
}

// Gradient blends linearly between its keys. Keys need not be sorted.
type Gradient struct {
	keys []GradientKey
}

// NewGradient sorts keys by time.
func NewGradient(keys ...GradientKey) *Gradient {
	g := &Gradient{keys: append([]GradientKey(nil), keys...)}
	sort.SliceStable(g.keys, func(i, j int) bool { return g.keys[i].Time < g.keys[j].Time })
	return g
}

// Keys returns a copy of the sorted keys.
func (g *Gradient) Keys() []GradientKey { return append([]GradientKey(nil), g.keys...) }

// Evaluate returns the colour at t, clamped to the first and last keys.
func (g *Gradient) Evaluate(t float64) mgl32.Vec4 {
	if g == nil || len(g.keys) == 0 {
		return mgl32.Vec4{1, 1, 1, 1}
	}
	if t <= g.keys[0].Time {
		return g.keys[0].Color
	}
	last := g.keys[len(g.keys)-1]
	if t >= last.Time {
		return last.Color
	}
	i := sort.Search(len(g.keys), func(i int) bool { return g.keys[i].Time > t })
	a, b := g.keys[i-1], g.keys[i]
	f := float32((t - a.Time) / (b.Time - a.Time))
	return a.Color.Add(b.Color.Sub(a.Color).Mul(f))
}
