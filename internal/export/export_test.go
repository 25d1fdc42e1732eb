package export

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"polyterrain/internal/config"
	"polyterrain/internal/meshing"
	"polyterrain/internal/terrain"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/image/tiff"
)

func smallRun(t *testing.T) *terrain.GenerationContext {
	t.Helper()
	p := config.Default()
	p.Seed = 3
	p.Size = 120
	p.MinPointRadius = 10
	p.BoundarySpacing = 10
	p.RandomPoints = 10
	p.Grass.MinSpacing = 12
	gc, err := terrain.Generate(context.Background(), p, terrain.Options{Logger: log.New(io.Discard, "", 0)})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return gc
}

func TestExportWritesEverything(t *testing.T) {
	gc := smallRun(t)
	dir := t.TempDir()

	m, err := Export(dir, gc, DefaultOptions())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	for _, name := range []string{ManifestFile, InstancesFile, MeshesFile, HeightmapFile, MapFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("Expected %s to exist: %v", name, err)
		}
	}

	got, err := ReadManifest(filepath.Join(dir, ManifestFile))
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if got.Digest != gc.Digest() || got.Digest != m.Digest {
		t.Errorf("Expected digest %s, got %s", gc.Digest(), got.Digest)
	}
	if got.Summary.Triangles != gc.Mesh.TriangleCount() {
		t.Errorf("Expected %d triangles in summary, got %d", gc.Mesh.TriangleCount(), got.Summary.Triangles)
	}
	if got.Heightmap == nil || got.Heightmap.Resolution != 257 || got.Heightmap.Max < got.Heightmap.Min {
		t.Errorf("Unexpected heightmap info %+v", got.Heightmap)
	}
	p, err := got.DecodeParams()
	if err != nil {
		t.Fatalf("DecodeParams: %v", err)
	}
	if p != gc.Params {
		t.Errorf("Expected params to survive the manifest")
	}

	records, err := ReadInstances(filepath.Join(dir, InstancesFile))
	if err != nil {
		t.Fatalf("ReadInstances: %v", err)
	}
	if len(records) != len(gc.Instances) {
		t.Fatalf("Expected %d instance records, got %d", len(gc.Instances), len(records))
	}
	for i, r := range records {
		if r.Kind != gc.Instances[i].Kind.String() || strings.Contains(r.Prefab, "#") {
			t.Errorf("Record %d: unexpected kind/prefab %s/%s", i, r.Kind, r.Prefab)
		}
	}

	meshes, err := ReadMeshes(filepath.Join(dir, MeshesFile))
	if err != nil {
		t.Fatalf("ReadMeshes: %v", err)
	}
	want := Meshes(gc)
	if len(meshes) != len(want) {
		t.Fatalf("Expected %d meshes, got %d", len(want), len(meshes))
	}
	for i := range want {
		if meshes[i].Name != want[i].Name || len(meshes[i].Mesh.Indices) != len(want[i].Mesh.Indices) {
			t.Errorf("Mesh %d: expected %s with %d indices", i, want[i].Name, len(want[i].Mesh.Indices))
		}
	}

	svgBytes, err := os.ReadFile(filepath.Join(dir, MapFile))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(svgBytes, []byte("<svg")) || !bytes.Contains(svgBytes, []byte(`id="surface"`)) {
		t.Errorf("Expected an svg document with a surface group")
	}
}

func TestExportSkipsDisabledOutputs(t *testing.T) {
	gc := smallRun(t)
	dir := t.TempDir()
	m, err := Export(dir, gc, Options{})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if m.Files.Meshes != "" || m.Files.Heightmap != "" || m.Heightmap != nil {
		t.Errorf("Expected only the manifest, got %+v", m.Files)
	}
	if _, err := os.Stat(filepath.Join(dir, MeshesFile)); !os.IsNotExist(err) {
		t.Errorf("Expected no mesh bundle")
	}
}

func TestMeshBundleRoundTrip(t *testing.T) {
	md := &meshing.MeshData{
		Positions: []mgl32.Vec3{{0, 1, 2}, {3, 4, 5}, {6, 7, 8}},
		Normals:   []mgl32.Vec3{{0, 1, 0}, {0, 1, 0}, {0, 1, 0}},
		UVs:       []mgl32.Vec2{{0, 0}, {1, 0}, {0, 1}},
		Indices:   []uint32{0, 1, 2},
		Submeshes: []meshing.Submesh{{Name: "top", Start: 0, Count: 3}},
	}
	path := filepath.Join(t.TempDir(), "m.ptm.zst")
	if err := WriteMeshes(path, []NamedMesh{{Name: "a", Mesh: md}, {Name: "empty"}}); err != nil {
		t.Fatalf("WriteMeshes: %v", err)
	}
	got, err := ReadMeshes(path)
	if err != nil {
		t.Fatalf("ReadMeshes: %v", err)
	}
	if len(got) != 2 || got[0].Name != "a" || got[1].Name != "empty" {
		t.Fatalf("Unexpected bundle entries %+v", got)
	}
	g := got[0].Mesh
	for i := range md.Positions {
		if g.Positions[i] != md.Positions[i] || g.Normals[i] != md.Normals[i] || g.UVs[i] != md.UVs[i] {
			t.Errorf("Vertex %d differs", i)
		}
	}
	if len(g.Indices) != 3 || g.Indices[2] != 2 {
		t.Errorf("Expected indices 0 1 2, got %v", g.Indices)
	}
	if s, ok := g.Submesh("top"); !ok || s.Count != 3 {
		t.Errorf("Expected submesh top with 3 indices, got %+v", s)
	}
	if got[1].Mesh.VertexCount() != 0 {
		t.Errorf("Expected empty mesh")
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := decodeMeshes(strings.NewReader("XXXX")); !errors.Is(err, ErrBadBundle) {
		t.Errorf("Expected ErrBadBundle, got %v", err)
	}
	var buf bytes.Buffer
	buf.WriteString(bundleMagic)
	buf.Write([]byte{9, 0, 0, 0, 0, 0, 0, 0})
	if _, err := decodeMeshes(&buf); !errors.Is(err, ErrBadBundle) {
		t.Errorf("Expected ErrBadBundle for version 9, got %v", err)
	}
}

type slope struct{}

func (slope) HeightAt(p mgl64.Vec2) (float64, mgl64.Vec3, bool) {
	return 0.5*p.X() + 10, mgl64.Vec3{0, 1, 0}, true
}

func TestHeightmap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "h.tif")
	info, err := WriteHeightmap(path, slope{}, mgl64.Vec2{100, 100}, 5)
	if err != nil {
		t.Fatalf("WriteHeightmap: %v", err)
	}
	if info.Min != 10 || info.Max != 60 {
		t.Errorf("Expected range [10, 60], got [%g, %g]", info.Min, info.Max)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := tiff.Decode(f)
	if err != nil {
		t.Fatalf("tiff.Decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 5 || b.Dy() != 5 {
		t.Fatalf("Expected 5x5 image, got %v", b)
	}
	at := func(x, y int) uint16 {
		return color.Gray16Model.Convert(img.At(x, y)).(color.Gray16).Y
	}
	for row := 0; row < 5; row++ {
		if at(0, row) != 0 || at(4, row) != 65535 || at(2, row) != 32768 {
			t.Errorf("Row %d: got %d %d %d", row, at(0, row), at(2, row), at(4, row))
		}
	}

	if _, _, err := SampleHeightmap(slope{}, mgl64.Vec2{1, 1}, 1); err == nil {
		t.Errorf("Expected an error for resolution 1")
	}
}

func TestParamsHash(t *testing.T) {
	a, err := ParamsHash(config.Default())
	if err != nil {
		t.Fatal(err)
	}
	b, _ := ParamsHash(config.Default())
	p := config.Default()
	p.Seed++
	c, _ := ParamsHash(p)
	if a != b || a == c {
		t.Errorf("Expected stable hashes that change with the seed")
	}
}
