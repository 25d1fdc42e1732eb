// Package terrain runs the generation pipeline: mesh, height field, paths,
// meshes and decoration, in a fixed order that is part of the
// reproducibility contract.
package terrain

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"log"
	"math"

	"polyterrain/internal/config"
	"polyterrain/internal/heightfield"
	"polyterrain/internal/mesh"
	"polyterrain/internal/meshing"
	"polyterrain/internal/path"
	"polyterrain/internal/placement"
	"polyterrain/internal/rng"
	"polyterrain/pkg/catalog"

	"github.com/go-gl/mathgl/mgl64"
)

// Options are the collaborators of a run. The zero value logs to
// log.Default, uses the embedded catalog and queries the generated mesh.
type Options struct {
	Logger  *log.Logger
	Catalog *catalog.Catalog
	Ground  placement.GroundQuery
}

// GenerationContext owns everything one run produces. Stages receive it by
// pointer and fill it in order.
type GenerationContext struct {
	Params  config.Params
	Size    mgl64.Vec2
	RNG     *rng.Generator
	Log     *log.Logger
	Catalog *catalog.Catalog

	Points     []mgl64.Vec2
	Mesh       *mesh.Mesh
	Field      *heightfield.Field
	Elevations []float64

	Road     *path.Road
	River    *path.River
	RiverErr error
	House    *placement.House

	Exclusion *placement.ExclusionSet
	Ground    placement.GroundQuery

	Surface   []*meshing.MeshData
	Base      *meshing.MeshData
	RoadMesh  *meshing.MeshData
	RiverMesh *meshing.MeshData

	Instances []placement.PlacedInstance
	Stats     map[placement.Kind]placement.PassStats
}

func newContext(p config.Params, opts Options) (*GenerationContext, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	cat := opts.Catalog
	if cat == nil {
		var err error
		if cat, err = catalog.Default(); err != nil {
			return nil, err
		}
	}
	return &GenerationContext{
		Params:    p,
		Size:      mgl64.Vec2{p.Size, p.Size},
		RNG:       rng.New(p.Seed),
		Log:       logger,
		Catalog:   cat,
		Ground:    opts.Ground,
		Exclusion: &placement.ExclusionSet{},
		Stats:     make(map[placement.Kind]placement.PassStats),
	}, nil
}

// Summary counts what a run produced.
type Summary struct {
	Seed        int            `json:"seed"`
	Vertices    int            `json:"vertices"`
	Triangles   int            `json:"triangles"`
	RoadPoints  int            `json:"road_points"`
	RiverPoints int            `json:"river_points"`
	House       bool           `json:"house"`
	Chunks      int            `json:"chunks"`
	Instances   map[string]int `json:"instances"`
}

// Summary returns the counts of gc.
func (gc *GenerationContext) Summary() Summary {
	s := Summary{
		Seed:      gc.Params.Seed,
		House:     gc.House != nil,
		Chunks:    len(gc.Surface),
		Instances: make(map[string]int),
	}
	if gc.Mesh != nil {
		s.Vertices = gc.Mesh.VertexCount()
		s.Triangles = gc.Mesh.TriangleCount()
	}
	if gc.Road != nil {
		s.RoadPoints = len(gc.Road.Points)
	}
	if gc.River != nil {
		s.RiverPoints = len(gc.River.Points)
	}
	for _, inst := range gc.Instances {
		s.Instances[inst.Kind.String()]++
	}
	return s
}

// Digest hashes the elevations and every placed instance. Two runs with
// the same parameters produce the same digest.
func (gc *GenerationContext) Digest() string {
	h := sha256.New()
	buf := make([]byte, 8)
	put := func(v float64) {
		binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
		h.Write(buf)
	}
	for _, e := range gc.Elevations {
		put(e)
	}
	for _, inst := range gc.Instances {
		put(float64(inst.Kind))
		put(float64(inst.Prefab))
		for _, v := range inst.Position {
			put(v)
		}
		put(inst.Rotation.W)
		for _, v := range inst.Rotation.V {
			put(v)
		}
		for _, v := range inst.Scale {
			put(v)
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
