package placement

import (
	"polyterrain/internal/profiling"
	"polyterrain/internal/rng"
	"polyterrain/internal/sampling"

	"github.com/go-gl/mathgl/mgl64"
)

// RotationMode selects how a pass orients its instances.
type RotationMode uint8

const (
	// RotateEuler draws three integer angles per candidate.
	RotateEuler RotationMode = iota
	// RotateToNormal aligns the instance up axis with the ground normal.
	RotateToNormal
)

// AngleRange is a half-open integer range of degrees, as drawn by
// rng.Generator.Range.
type AngleRange struct{ Min, Max int }

// PassConfig describes one scatter pass.
type PassConfig struct {
	Kind   Kind
	Seed   int
	Region mgl64.Vec2
	// MinSpacing is the Poisson radius between candidates.
	MinSpacing float64
	// EdgeMargin shrinks the sampled region; candidates are shifted by
	// half of it so the margin is split between opposite edges.
	EdgeMargin float64
	Prefabs    int
	RayHeight  float64

	CheckSlope bool
	MinNormalY float64

	Rotation RotationMode
	// Euler holds the x, y and z ranges for RotateEuler.
	Euler [3]AngleRange

	UpOffset float64
	// Each scale axis is ScaleBase + RangeFloat(ScaleMin, ScaleMax).
	ScaleBase, ScaleMin, ScaleMax float64
	Gradient                      *Gradient

	ExclusionRadius float64
	// Footprint, when positive, adds a zone of this radius around every
	// accepted instance so later candidates and passes keep clear.
	Footprint float64
	Animate   bool
}

// PassStats counts candidate outcomes.
type PassStats struct {
	Candidates int
	Misses     int
	Steep      int
	Excluded   int
	Accepted   int
}

// Pass is a resumable scatter pass. Candidate order, and with it the random
// stream, is fixed by the seed: every candidate consumes the same draws
// whether it is accepted or not.
type Pass struct {
	cfg     PassConfig
	r       *rng.Generator
	ground  GroundQuery
	exclude *ExclusionSet

	samples []mgl64.Vec2
	next    int
	placed  []PlacedInstance
	stats   PassStats
}

// NewPass samples the candidates of a pass. excl may be nil.
func NewPass(cfg PassConfig, ground GroundQuery, excl *ExclusionSet) *Pass {
	if excl == nil {
		excl = &ExclusionSet{}
	}
	region := cfg.Region.Sub(mgl64.Vec2{cfg.EdgeMargin, cfg.EdgeMargin})
	return &Pass{
		cfg:     cfg,
		r:       rng.New(cfg.Seed),
		ground:  ground,
		exclude: excl,
		samples: sampling.Generate(cfg.MinSpacing, region, cfg.Seed),
	}
}

// Config returns the pass configuration.
func (p *Pass) Config() PassConfig { return p.cfg }

// Remaining returns the number of unprocessed candidates.
func (p *Pass) Remaining() int { return len(p.samples) - p.next }

// Done reports whether every candidate has been processed.
func (p *Pass) Done() bool { return p.next >= len(p.samples) }

// Placed returns the instances accepted so far.
func (p *Pass) Placed() []PlacedInstance { return p.placed }

// Stats returns the candidate counters.
func (p *Pass) Stats() PassStats { return p.stats }

// Step processes up to budget candidates (all of them when budget <= 0)
// and reports whether the pass is finished.
func (p *Pass) Step(budget int) bool {
	defer profiling.Track("placement." + p.cfg.Kind.String())()

	for n := 0; !p.Done() && (budget <= 0 || n < budget); n++ {
		p.candidate(p.samples[p.next])
		p.next++
	}
	return p.Done()
}

// Run processes every remaining candidate.
func (p *Pass) Run() []PlacedInstance {
	p.Step(0)
	return p.placed
}

func (p *Pass) candidate(s mgl64.Vec2) {
	p.stats.Candidates++
	c := p.cfg

	prefab := p.r.Range(0, max(c.Prefabs, 1))
	rot := mgl64.QuatIdent()
	if c.Rotation == RotateEuler {
		x := p.r.Range(c.Euler[0].Min, c.Euler[0].Max)
		y := p.r.Range(c.Euler[1].Min, c.Euler[1].Max)
		z := p.r.Range(c.Euler[2].Min, c.Euler[2].Max)
		rot = Euler(float64(x), float64(y), float64(z))
	}

	half := c.EdgeMargin / 2
	hit, ok := p.ground.QueryGround(mgl64.Vec3{s.X() + half, c.RayHeight, s.Y() + half})
	if !ok {
		p.stats.Misses++
		return
	}
	if c.CheckSlope && hit.Normal.Y() < c.MinNormalY {
		p.stats.Steep++
		return
	}
	if p.exclude.Blocked(hit.Point, c.ExclusionRadius) {
		p.stats.Excluded++
		return
	}
	if c.Rotation == RotateToNormal {
		rot = mgl64.QuatBetweenVectors(Up, hit.Normal)
	}

	inst := PlacedInstance{
		Kind:     c.Kind,
		Prefab:   prefab,
		Position: hit.Point.Add(Up.Mul(c.UpOffset)),
		Rotation: rot,
		Animate:  c.Animate,
	}
	p.r.Fork(func(g *rng.Generator) {
		for i := range inst.Scale {
			inst.Scale[i] = c.ScaleBase + g.RangeFloat(c.ScaleMin, c.ScaleMax)
		}
		if c.Gradient != nil {
			inst.Color = c.Gradient.Evaluate(g.RangeFloat(0, 1))
			inst.HasColor = true
		}
	})

	p.placed = append(p.placed, inst)
	p.stats.Accepted++
	if c.Footprint > 0 {
		p.exclude.Add(inst.Position, c.Footprint)
	}
}
