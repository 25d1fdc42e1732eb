// Package config holds the generation parameters and the viewer's runtime
// settings.
package config

import (
	"errors"
	"fmt"
)

// ErrInvalidParams is wrapped by every Validate failure.
var ErrInvalidParams = errors.New("config: invalid parameters")

// Params is the complete set of options for one generation run.
type Params struct {
	Seed int     `yaml:"seed"`
	Size float64 `yaml:"size"`

	MinPointRadius    float64 `yaml:"min_point_radius"`
	RandomPoints      int     `yaml:"random_points"`
	BoundarySpacing   float64 `yaml:"boundary_spacing"`
	EdgeMergeDistance float64 `yaml:"edge_merge_distance"`
	TrianglesPerChunk int     `yaml:"triangles_per_chunk"`
	Workers           int     `yaml:"workers"`

	Noise   NoiseParams `yaml:"noise"`
	Base    BaseParams  `yaml:"base"`
	Road    RoadParams  `yaml:"road"`
	River   RiverParams `yaml:"river"`
	Lamps   LampParams  `yaml:"lamps"`
	House   HouseParams `yaml:"house"`
	Trees   Feature     `yaml:"trees"`
	Rocks   Feature     `yaml:"rocks"`
	Grass   Feature     `yaml:"grass"`
	Flowers Feature     `yaml:"flowers"`
}

// NoiseParams shapes the height field. FrequencyBase is the per-octave
// frequency multiplier.
type NoiseParams struct {
	Basis          string  `yaml:"basis"`
	Octaves        int     `yaml:"octaves"`
	Persistence    float64 `yaml:"persistence"`
	FrequencyBase  float64 `yaml:"frequency_base"`
	ElevationScale float64 `yaml:"elevation_scale"`
}

type BaseParams struct {
	Enabled     bool    `yaml:"enabled"`
	Animate     bool    `yaml:"animate"`
	TopLayer    float64 `yaml:"top_layer"`
	BottomLayer float64 `yaml:"bottom_layer"`
}

// RoadParams describes the road. Width is the ribbon half-width; the
// terrain is flattened out to Width + MinPointRadius + 6.
type RoadParams struct {
	Enabled              bool    `yaml:"enabled"`
	Animate              bool    `yaml:"animate"`
	Width                float64 `yaml:"width"`
	Thickness            float64 `yaml:"thickness"`
	SmoothDistance       float64 `yaml:"smooth_distance"`
	HeightSmoothDistance float64 `yaml:"height_smooth_distance"`
	Spacing              float64 `yaml:"spacing"`
}

type RiverParams struct {
	Enabled        bool    `yaml:"enabled"`
	Animate        bool    `yaml:"animate"`
	Width          float64 `yaml:"width"`
	Thickness      float64 `yaml:"thickness"`
	SmoothDistance float64 `yaml:"smooth_distance"`
	Depth          float64 `yaml:"depth"`
	Spacing        float64 `yaml:"spacing"`

	UphillPenalty   float64 `yaml:"uphill_penalty"`
	CenterBias      float64 `yaml:"center_bias"`
	StepWeight      float64 `yaml:"step_weight"`
	HeuristicWeight float64 `yaml:"heuristic_weight"`
	MaxIterations   int     `yaml:"max_iterations"`
	Subsample       int     `yaml:"subsample"`
}

type LampParams struct {
	Enabled  bool    `yaml:"enabled"`
	Animate  bool    `yaml:"animate"`
	Every    int     `yaml:"every"`
	Distance float64 `yaml:"distance"`
}

type HouseParams struct {
	Enabled          bool    `yaml:"enabled"`
	Animate          bool    `yaml:"animate"`
	DistanceFromPath float64 `yaml:"distance_from_path"`
	EdgeMargin       float64 `yaml:"edge_margin"`
}

// Feature configures one scatter pass. The exclusion radius around path
// and guard points is the road width plus ExclusionPadding.
type Feature struct {
	Enabled          bool    `yaml:"enabled"`
	Animate          bool    `yaml:"animate"`
	MinSpacing       float64 `yaml:"min_spacing"`
	EdgeMargin       float64 `yaml:"edge_margin"`
	RayHeight        float64 `yaml:"ray_height"`
	ExclusionPadding float64 `yaml:"exclusion_padding"`
}

// Default returns the tuned parameters for a 300x300 tile.
func Default() Params {
	return Params{
		Seed:              0,
		Size:              300,
		MinPointRadius:    12,
		RandomPoints:      30,
		BoundarySpacing:   12,
		EdgeMergeDistance: 0,
		TrianglesPerChunk: 20000,
		Workers:           0,
		Noise: NoiseParams{
			Basis:          "value",
			Octaves:        9,
			Persistence:    0.5,
			FrequencyBase:  0.49,
			ElevationScale: 250,
		},
		Base: BaseParams{Enabled: true, Animate: true, TopLayer: 13, BottomLayer: 120},
		Road: RoadParams{
			Enabled:              true,
			Animate:              true,
			Width:                4,
			Thickness:            0.5,
			SmoothDistance:       50,
			HeightSmoothDistance: 20,
			Spacing:              6,
		},
		River: RiverParams{
			Enabled:         true,
			Animate:         true,
			Width:           3,
			Thickness:       0.5,
			SmoothDistance:  30,
			Depth:           4,
			Spacing:         6,
			UphillPenalty:   8,
			CenterBias:      0.5,
			StepWeight:      1,
			HeuristicWeight: 1,
			MaxIterations:   10000,
			Subsample:       20,
		},
		Lamps:   LampParams{Enabled: true, Animate: true, Every: 6, Distance: 15},
		House:   HouseParams{Enabled: true, Animate: true, DistanceFromPath: 45, EdgeMargin: 35},
		Trees:   Feature{Enabled: true, Animate: true, MinSpacing: 18, EdgeMargin: 6, RayHeight: 100, ExclusionPadding: 18},
		Rocks:   Feature{Enabled: true, Animate: true, MinSpacing: 47, EdgeMargin: 6, RayHeight: 50, ExclusionPadding: 4},
		Grass:   Feature{Enabled: true, Animate: true, MinSpacing: 7, EdgeMargin: 8, RayHeight: 100, ExclusionPadding: 10},
		Flowers: Feature{Enabled: true, Animate: true, MinSpacing: 11, EdgeMargin: 10, RayHeight: 100, ExclusionPadding: 14},
	}
}

// FlattenWidth is the distance from the road centre line inside which the
// terrain sits just below the road.
func (p Params) FlattenWidth() float64 {
	return p.Road.Width + p.MinPointRadius + 6
}

// Validate checks the rules the schema cannot express.
func (p Params) Validate() error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidParams, fmt.Sprintf(format, args...))
	}
	switch {
	case p.Size <= 0:
		return fail("size must be positive, got %g", p.Size)
	case p.MinPointRadius <= 0:
		return fail("min_point_radius must be positive, got %g", p.MinPointRadius)
	case p.MinPointRadius >= p.Size:
		return fail("min_point_radius %g does not fit in size %g", p.MinPointRadius, p.Size)
	case p.Noise.Octaves < 1:
		return fail("noise.octaves must be at least 1, got %d", p.Noise.Octaves)
	case p.Noise.Persistence <= 0:
		return fail("noise.persistence must be positive, got %g", p.Noise.Persistence)
	case p.Road.Enabled && p.Road.SmoothDistance < p.FlattenWidth():
		return fail("road.smooth_distance %g is inside the flattened width %g", p.Road.SmoothDistance, p.FlattenWidth())
	case p.River.Enabled && p.River.SmoothDistance < p.River.Width:
		return fail("river.smooth_distance %g is inside river.width %g", p.River.SmoothDistance, p.River.Width)
	case p.Lamps.Enabled && p.Lamps.Every < 1:
		return fail("lamps.every must be at least 1, got %d", p.Lamps.Every)
	}
	features := []struct {
		name string
		f    Feature
	}{{"trees", p.Trees}, {"rocks", p.Rocks}, {"grass", p.Grass}, {"flowers", p.Flowers}}
	for _, x := range features {
		if x.f.Enabled && x.f.MinSpacing <= 0 {
			return fail("%s.min_spacing must be positive, got %g", x.name, x.f.MinSpacing)
		}
		if x.f.Enabled && x.f.EdgeMargin >= p.Size {
			return fail("%s.edge_margin %g leaves no room in size %g", x.name, x.f.EdgeMargin, p.Size)
		}
	}
	return nil
}
