package terrain

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"polyterrain/internal/config"
	"polyterrain/internal/heightfield"
	"polyterrain/internal/mesh"
	"polyterrain/internal/meshing"
	"polyterrain/internal/path"
	"polyterrain/internal/physics"
	"polyterrain/internal/placement"
	"polyterrain/internal/sampling"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// edgeInset keeps path ends and ribbons just inside the tile.
	edgeInset = 0.015
	// candidatesPerSlice is how many placement candidates run between
	// budget checks.
	candidatesPerSlice = 32
)

// stageFunc does some or all of a stage's work. It returns true once the
// stage is complete. A zero deadline means no time limit.
type stageFunc func(ctx context.Context, gc *GenerationContext, deadline time.Time) (bool, error)

type stage struct {
	name string
	fn   stageFunc
}

// pipeline lists the stages in their fixed order.
func pipeline(p config.Params) []stage {
	return []stage{
		{"mesh", buildMesh},
		{"elevations", computeElevations},
		{"road", buildRoad},
		{"river", routeRiver},
		{"lamps", placeLamps},
		{"house", placeHouse},
		{"flatten", flatten},
		{"surface", buildSurface},
		{"base", buildBase},
		{"rocks", scatter(rockPass(p))},
		{"trees", scatter(treePass(p))},
		{"grass", scatter(grassPass(p))},
		{"flowers", scatter(flowerPass(p))},
	}
}

func (gc *GenerationContext) workers() int {
	if gc.Params.Workers > 0 {
		return gc.Params.Workers
	}
	return runtime.NumCPU()
}

func buildMesh(_ context.Context, gc *GenerationContext, _ time.Time) (bool, error) {
	p := gc.Params
	points := sampling.Generate(p.MinPointRadius, gc.Size, p.Seed)

	// octave seeds come first on the main stream
	noise, err := heightfield.NewNoise(heightfield.Basis(p.Noise.Basis), int64(p.Seed))
	if err != nil {
		return false, err
	}
	gc.Field = heightfield.New(heightfield.Params{
		Octaves:        p.Noise.Octaves,
		Persistence:    p.Noise.Persistence,
		FrequencyBase:  p.Noise.FrequencyBase,
		ElevationScale: p.Noise.ElevationScale,
	}, noise, gc.RNG)

	for i := 0; i < p.RandomPoints; i++ {
		x := gc.RNG.RangeFloat(0, gc.Size.X())
		y := gc.RNG.RangeFloat(0, gc.Size.Y())
		points = append(points, mgl64.Vec2{x, y})
	}
	gc.Points = points

	spacing := p.BoundarySpacing
	if spacing <= 0 {
		spacing = p.MinPointRadius
	}
	m, err := mesh.Triangulate(points, mesh.RectangleBoundary(gc.Size, spacing), mesh.Options{
		Size:              gc.Size,
		EdgeMergeDistance: p.EdgeMergeDistance,
	})
	if err != nil {
		return false, fmt.Errorf("could not triangulate: %w", err)
	}
	gc.Mesh = m
	gc.Log.Printf("terrain: mesh %d vertices, %d triangles", m.VertexCount(), m.TriangleCount())
	return true, nil
}

func computeElevations(ctx context.Context, gc *GenerationContext, _ time.Time) (bool, error) {
	elev, err := gc.Field.Compute(ctx, gc.Mesh.Vertices, gc.workers())
	if err != nil {
		return false, err
	}
	gc.Elevations = elev
	return true, nil
}

func buildRoad(_ context.Context, gc *GenerationContext, _ time.Time) (bool, error) {
	rp := gc.Params.Road
	if !rp.Enabled {
		return true, nil
	}
	gc.Road = path.BuildRoad(gc.RNG, gc.Size, gc.Field, path.RoadParams{
		Spacing:              rp.Spacing,
		HeightSmoothDistance: rp.HeightSmoothDistance,
		EdgeInset:            edgeInset,
	})
	gc.Exclusion.AddPoints(gc.Road.Points, 0)

	gc.RoadMesh = meshing.BuildRibbon(gc.Road.Points, rp.Width, rp.Thickness)
	gc.RoadMesh.ClampXZ(gc.Size, edgeInset)
	gc.Log.Printf("terrain: road %d points, %.1f long", len(gc.Road.Points), gc.Road.Path.Length())
	return true, nil
}

func routeRiver(ctx context.Context, gc *GenerationContext, _ time.Time) (bool, error) {
	rv := gc.Params.River
	if !rv.Enabled {
		return true, nil
	}
	rp := path.DefaultRiverParams()
	rp.UphillPenalty = rv.UphillPenalty
	rp.CenterBias = rv.CenterBias
	rp.StepWeight = rv.StepWeight
	rp.HeuristicWeight = rv.HeuristicWeight
	rp.MaxIterations = rv.MaxIterations
	rp.Subsample = rv.Subsample
	rp.Spacing = rv.Spacing

	river, err := path.RouteRiver(ctx, gc.RNG, gc.Mesh, gc.Elevations, rp)
	switch {
	case errors.Is(err, path.ErrNoValidRiverEndpoints), errors.Is(err, path.ErrSearchExhausted):
		gc.RiverErr = err
		gc.Log.Printf("terrain: no river: %v", err)
		return true, nil
	case err != nil:
		return false, err
	}

	gc.River = river
	gc.Exclusion.AddPoints(river.Points, 0)
	gc.RiverMesh = meshing.BuildRibbon(river.Points, rv.Width, rv.Thickness)
	gc.RiverMesh.ClampXZ(gc.Size, edgeInset)
	gc.Log.Printf("terrain: river %s -> %s, %d points", river.StartSide, river.EndSide, len(river.Points))
	return true, nil
}

func placeLamps(_ context.Context, gc *GenerationContext, _ time.Time) (bool, error) {
	lp := gc.Params.Lamps
	if !lp.Enabled || gc.Road == nil {
		return true, nil
	}
	lamps := placement.PlaceLamps(gc.Road.Points, placement.LampParams{
		Seed:     gc.Params.Seed,
		Every:    lp.Every,
		Distance: lp.Distance,
		Prefabs:  gc.Catalog.PrefabCount(placement.KindLamp.String()),
		Animate:  lp.Animate,
	})
	gc.Instances = append(gc.Instances, lamps...)
	return true, nil
}

func placeHouse(_ context.Context, gc *GenerationContext, _ time.Time) (bool, error) {
	hp := gc.Params.House
	if !hp.Enabled || gc.Road == nil {
		return true, nil
	}
	params := placement.DefaultHouseParams(gc.Size, gc.Params.Seed)
	params.DistanceFromPath = hp.DistanceFromPath
	params.EdgeMargin = hp.EdgeMargin
	params.Animate = hp.Animate

	house, ok := placement.PlaceHouse(gc.Road.Points, params)
	if !ok {
		gc.Log.Printf("terrain: no straight stretch for the house")
		return true, nil
	}
	gc.House = house
	gc.Exclusion.AddPoints(house.Guards, 0)
	gc.Instances = append(gc.Instances, house.Instance)
	return true, nil
}

// flatten carves the river first and then levels the road and the house
// guards, so the road wins where the two cross.
func flatten(_ context.Context, gc *GenerationContext, _ time.Time) (bool, error) {
	p := gc.Params
	if gc.River != nil {
		heightfield.Flatten(gc.Elevations, gc.Mesh.Vertices, gc.River.Points, heightfield.FlattenParams{
			Width:          p.River.Width,
			SmoothDistance: p.River.SmoothDistance,
			Depth:          p.River.Depth,
		})
	}

	var level []mgl64.Vec3
	if gc.Road != nil {
		level = append(level, gc.Road.Points...)
	}
	if gc.House != nil {
		level = append(level, gc.House.Guards...)
	}
	if len(level) > 0 {
		heightfield.Flatten(gc.Elevations, gc.Mesh.Vertices, level, heightfield.FlattenParams{
			Width:          p.FlattenWidth(),
			SmoothDistance: p.Road.SmoothDistance,
			Depth:          heightfield.DefaultDepth,
		})
	}

	if gc.Ground == nil {
		gc.Ground = physics.NewMeshGround(gc.Mesh, gc.Elevations, 0)
	}
	return true, nil
}

func buildSurface(ctx context.Context, gc *GenerationContext, _ time.Time) (bool, error) {
	chunks, err := meshing.BuildSurface(ctx, gc.Mesh, gc.Elevations, gc.Params.TrianglesPerChunk, gc.workers())
	if err != nil {
		return false, err
	}
	gc.Surface = chunks
	return true, nil
}

func buildBase(_ context.Context, gc *GenerationContext, _ time.Time) (bool, error) {
	bp := gc.Params.Base
	if !bp.Enabled {
		return true, nil
	}
	gc.Base = meshing.BuildBase(gc.Mesh, gc.Elevations, bp.TopLayer, bp.BottomLayer)
	return true, nil
}

// scatter runs a placement pass in slices until it finishes or the
// deadline passes. The pass survives between calls, so a later call
// resumes with the same candidate and random stream.
func scatter(f config.Feature, build func(gc *GenerationContext) placement.PassConfig) stageFunc {
	var pass *placement.Pass
	var taken int
	return func(ctx context.Context, gc *GenerationContext, deadline time.Time) (bool, error) {
		if !f.Enabled {
			return true, nil
		}
		if pass == nil {
			cfg := build(gc)
			cfg.Seed = gc.Params.Seed
			cfg.Region = gc.Size
			cfg.MinSpacing = f.MinSpacing
			cfg.EdgeMargin = f.EdgeMargin
			cfg.RayHeight = f.RayHeight
			cfg.ExclusionRadius = gc.Params.Road.Width + f.ExclusionPadding
			cfg.Animate = f.Animate
			cfg.Prefabs = gc.Catalog.PrefabCount(cfg.Kind.String())
			cfg.Gradient = gc.gradient(cfg.Kind)
			pass = placement.NewPass(cfg, gc.Ground, gc.Exclusion)
		}

		for !pass.Done() {
			if err := ctx.Err(); err != nil {
				return false, err
			}
			pass.Step(candidatesPerSlice)
			placed := pass.Placed()
			gc.Instances = append(gc.Instances, placed[taken:]...)
			taken = len(placed)
			if !deadline.IsZero() && time.Now().After(deadline) {
				break
			}
		}
		if !pass.Done() {
			return false, nil
		}
		gc.Stats[pass.Config().Kind] = pass.Stats()
		st := pass.Stats()
		gc.Log.Printf("terrain: %s %d placed of %d (%d missed, %d steep, %d excluded)",
			pass.Config().Kind, st.Accepted, st.Candidates, st.Misses, st.Steep, st.Excluded)
		return true, nil
	}
}

// gradient converts the catalog gradient of kind, or returns nil.
func (gc *GenerationContext) gradient(kind placement.Kind) *placement.Gradient {
	set, ok := gc.Catalog.Set(kind.String())
	if !ok || set.Gradient == nil {
		return nil
	}
	keys := make([]placement.GradientKey, len(set.Gradient.Keys))
	for i, k := range set.Gradient.Keys {
		keys[i] = placement.GradientKey{Time: k.Time, Color: mgl32.Vec4(k.Color)}
	}
	return placement.NewGradient(keys...)
}

func rockPass(p config.Params) (config.Feature, func(*GenerationContext) placement.PassConfig) {
	return p.Rocks, func(*GenerationContext) placement.PassConfig {
		return placement.PassConfig{
			Kind:      placement.KindRock,
			Rotation:  placement.RotateEuler,
			Euler:     [3]placement.AngleRange{{Min: 0, Max: 360}, {Min: 0, Max: 360}, {Min: 0, Max: 360}},
			ScaleBase: 1,
			ScaleMin:  0.5,
			ScaleMax:  2,
		}
	}
}

func treePass(p config.Params) (config.Feature, func(*GenerationContext) placement.PassConfig) {
	return p.Trees, func(*GenerationContext) placement.PassConfig {
		return placement.PassConfig{
			Kind:       placement.KindTree,
			CheckSlope: true,
			MinNormalY: 0.8,
			Rotation:   placement.RotateEuler,
			Euler:      [3]placement.AngleRange{{Min: -5, Max: 5}, {Min: 0, Max: 360}, {Min: -5, Max: 5}},
			UpOffset:   1,
			ScaleMin:   1.1,
			ScaleMax:   1.4,
		}
	}
}

func grassPass(p config.Params) (config.Feature, func(*GenerationContext) placement.PassConfig) {
	return p.Grass, func(*GenerationContext) placement.PassConfig {
		return placement.PassConfig{
			Kind:       placement.KindGrass,
			CheckSlope: true,
			MinNormalY: 0.7,
			Rotation:   placement.RotateToNormal,
			UpOffset:   -1,
			ScaleMin:   70,
			ScaleMax:   80,
		}
	}
}

func flowerPass(p config.Params) (config.Feature, func(*GenerationContext) placement.PassConfig) {
	return p.Flowers, func(*GenerationContext) placement.PassConfig {
		return placement.PassConfig{
			Kind:       placement.KindFlower,
			CheckSlope: true,
			MinNormalY: 0.75,
			Rotation:   placement.RotateToNormal,
			ScaleMin:   0.8,
			ScaleMax:   1.2,
		}
	}
}
