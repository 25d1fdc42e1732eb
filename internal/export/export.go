package export

import (
	"fmt"
	"path/filepath"

	"polyterrain/internal/physics"
	"polyterrain/internal/terrain"
)

// Default file names inside an export directory.
const (
	ManifestFile  = "terrain.json"
	InstancesFile = "instances.json"
	MeshesFile    = "meshes.ptm.zst"
	HeightmapFile = "heightmap.tif"
	MapFile       = "map.svg"
)

// Options selects what Export writes. A zero HeightmapResolution or
// MapScale skips that output.
type Options struct {
	Instances           bool
	Meshes              bool
	HeightmapResolution int
	MapScale            float64
}

// DefaultOptions writes everything: a 257 pixel heightmap and a map at two
// pixels per unit.
func DefaultOptions() Options {
	return Options{
		Instances:           true,
		Meshes:              true,
		HeightmapResolution: 257,
		MapScale:            2,
	}
}

// Meshes lists the meshes of gc under the names the host uses.
func Meshes(gc *terrain.GenerationContext) []NamedMesh {
	var out []NamedMesh
	for i, md := range gc.Surface {
		out = append(out, NamedMesh{Name: fmt.Sprintf("surface_%d", i), Mesh: md})
	}
	if gc.Base != nil {
		out = append(out, NamedMesh{Name: "base", Mesh: gc.Base})
	}
	if gc.RoadMesh != nil {
		out = append(out, NamedMesh{Name: "road", Mesh: gc.RoadMesh})
	}
	if gc.RiverMesh != nil {
		out = append(out, NamedMesh{Name: "river", Mesh: gc.RiverMesh})
	}
	return out
}

// Export writes the outputs of a finished run into dir and returns the
// manifest it wrote last.
func Export(dir string, gc *terrain.GenerationContext, opts Options) (*Manifest, error) {
	m, err := NewManifest(gc)
	if err != nil {
		return nil, err
	}
	m.Files.Manifest = ManifestFile

	if opts.Instances {
		if err := WriteInstances(filepath.Join(dir, InstancesFile), Records(gc.Instances, gc.Catalog)); err != nil {
			return nil, fmt.Errorf("write instances: %w", err)
		}
		m.Files.Instances = InstancesFile
	}
	if opts.Meshes {
		if err := WriteMeshes(filepath.Join(dir, MeshesFile), Meshes(gc)); err != nil {
			return nil, fmt.Errorf("write meshes: %w", err)
		}
		m.Files.Meshes = MeshesFile
	}
	if opts.HeightmapResolution > 0 && gc.Mesh != nil {
		src, ok := gc.Ground.(HeightSource)
		if !ok {
			src = physics.NewMeshGround(gc.Mesh, gc.Elevations, 0)
		}
		info, err := WriteHeightmap(filepath.Join(dir, HeightmapFile), src, gc.Size, opts.HeightmapResolution)
		if err != nil {
			return nil, fmt.Errorf("write heightmap: %w", err)
		}
		m.Heightmap = &info
		m.Files.Heightmap = HeightmapFile
	}
	if opts.MapScale > 0 {
		if err := WriteMap(filepath.Join(dir, MapFile), gc, opts.MapScale); err != nil {
			return nil, fmt.Errorf("write map: %w", err)
		}
		m.Files.Map = MapFile
	}

	if err := WriteManifest(filepath.Join(dir, ManifestFile), m); err != nil {
		return nil, fmt.Errorf("write manifest: %w", err)
	}
	return m, nil
}
