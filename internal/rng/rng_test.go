package rng

import (
	"errors"
	"math"
	"testing"
)

func TestNextGoldenSequence(t *testing.T) {
	tests := []struct {
		seed int
		want []uint32
	}{
		{0, []uint32{2447114240, 3181346816, 149647360, 2526543360, 2551520704}},
		{42, []uint32{3452175084, 2793712033, 2415130053, 706821293, 794863800}},
		{-1, []uint32{2478309393, 3105554723, 1670541687}},
	}
	for _, tt := range tests {
		g := New(tt.seed)
		for i, want := range tt.want {
			if got := g.Next(); got != want {
				t.Errorf("seed %d draw %d: got %d, want %d", tt.seed, i, got, want)
			}
		}
	}
}

func TestMixedGoldenSequence(t *testing.T) {
	want := []uint32{3044493852, 2316887146, 888591329, 1112813540, 731950835}
	g := NewMixed(0)
	for i, w := range want {
		if got := g.Next(); got != w {
			t.Errorf("draw %d: got %d, want %d", i, got, w)
		}
	}
	if g.Transition() != Mixed {
		t.Errorf("Expected mixed transition, got %v", g.Transition())
	}
}

func TestRangeGolden(t *testing.T) {
	g := New(0)
	want := []int{40, 16, 60, 60, 4}
	for i, w := range want {
		if got := g.Range(0, 100); got != w {
			t.Errorf("draw %d: got %d, want %d", i, got, w)
		}
	}
}

func TestSameSeedSameStream(t *testing.T) {
	a, b := New(1234), New(1234)
	for i := 0; i < 1000; i++ {
		if x, y := a.Next(), b.Next(); x != y {
			t.Fatalf("streams diverged at %d: %d != %d", i, x, y)
		}
	}
}

func TestRangeBounds(t *testing.T) {
	g := New(7)
	for i := 0; i < 10000; i++ {
		v := g.Range(0, 100)
		if v < 0 || v >= 100 {
			t.Fatalf("Range(0,100) produced %d", v)
		}
	}
	for i := 0; i < 10000; i++ {
		v := g.Range(-15, 15)
		if v < -15 || v >= 15 {
			t.Fatalf("Range(-15,15) produced %d", v)
		}
	}
	for i := 0; i < 10000; i++ {
		v := g.RangeFloat(0, 360)
		if v < 0 || v > 360 {
			t.Fatalf("RangeFloat(0,360) produced %f", v)
		}
	}
}

func TestBoolSkew(t *testing.T) {
	g := New(99)
	const n = 100000
	trues := 0
	for i := 0; i < n; i++ {
		if g.Bool() {
			trues++
		}
	}
	got := float64(trues) / n
	want := 10.0 / 21.0
	if math.Abs(got-want) > 0.01 {
		t.Errorf("Bool true fraction %.4f, want %.4f +- 0.01", got, want)
	}
}

func TestInvalidRangePanics(t *testing.T) {
	cases := []func(g *Generator){
		func(g *Generator) { g.Range(5, 5) },
		func(g *Generator) { g.Range(10, 1) },
		func(g *Generator) { g.RangeFloat(1, 1) },
		func(g *Generator) { g.RangeFloat(math.NaN(), 1) },
	}
	for i, fn := range cases {
		func() {
			defer func() {
				r := recover()
				if r == nil {
					t.Errorf("case %d: expected panic", i)
					return
				}
				err, ok := r.(error)
				if !ok || !errors.Is(err, ErrInvalidRange) {
					t.Errorf("case %d: panic value %v does not wrap ErrInvalidRange", i, r)
				}
			}()
			fn(New(1))
		}()
	}
}

func TestCheckpointRestore(t *testing.T) {
	g := New(5)
	g.Next()
	cp := g.Checkpoint()
	first := []uint32{g.Next(), g.Next(), g.Next()}
	g.Restore(cp)
	for i, w := range first {
		if got := g.Next(); got != w {
			t.Errorf("after restore draw %d: got %d, want %d", i, got, w)
		}
	}
}

func TestForkLeavesMainStreamUntouched(t *testing.T) {
	a, b := New(11), New(11)
	a.Fork(func(g *Generator) {
		for i := 0; i < 17; i++ {
			g.RangeFloat(0, 1)
		}
	})
	for i := 0; i < 10; i++ {
		if x, y := a.Next(), b.Next(); x != y {
			t.Fatalf("fork leaked into main stream at %d", i)
		}
	}
}

func BenchmarkNext(b *testing.B) {
	g := New(1)
	for i := 0; i < b.N; i++ {
		g.Next()
	}
}
