package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"catalog.json": {Data: []byte(`{"sets": {
			"tree": {"gradient": "green", "prefabs": ["oak", "pine"]},
			"lamp": {"prefabs": ["post"]}
		}}`)},
		"prefabs/base.json": {Data: []byte(`{"mesh": "base.obj", "tint": true, "scale": [2, 2, 2], "tags": ["foliage"]}`)},
		"prefabs/oak.json":  {Data: []byte(`{"parent": "base"}`)},
		"prefabs/pine.json": {Data: []byte(`{"parent": "base", "mesh": "pine.obj", "tint": false}`)},
		"prefabs/post.json": {Data: []byte(`{"mesh": "post.obj"}`)},
		"gradients/green.json": {Data: []byte(`{"keys": [
			{"time": 1, "color": "#ffffff"},
			{"time": 0, "color": [0, 0.5, 0]}
		]}`)},
	}
}

func TestLoadChildPrefab(t *testing.T) {
	l := NewLoader(testFS())
	oak, err := l.LoadPrefab("oak")
	if err != nil {
		t.Fatalf("Failed to load prefab: %v", err)
	}
	if oak.Mesh != "base.obj" {
		t.Errorf("Expected mesh to be inherited as 'base.obj', got '%s'", oak.Mesh)
	}
	if !oak.Tinted() {
		t.Errorf("Expected oak to inherit tint")
	}
	if oak.Scale == nil || *oak.Scale != [3]float64{2, 2, 2} {
		t.Errorf("Expected inherited scale, got %v", oak.Scale)
	}
	if len(oak.Tags) != 1 || oak.Tags[0] != "foliage" {
		t.Errorf("Expected inherited tags, got %v", oak.Tags)
	}

	pine, err := l.LoadPrefab("pine")
	if err != nil {
		t.Fatalf("Failed to load prefab: %v", err)
	}
	if pine.Mesh != "pine.obj" || pine.Tinted() {
		t.Errorf("Expected pine overrides, got %+v", pine)
	}
}

func TestParentIsNotMutated(t *testing.T) {
	l := NewLoader(testFS())
	if _, err := l.LoadPrefab("pine"); err != nil {
		t.Fatal(err)
	}
	base, err := l.LoadPrefab("base")
	if err != nil {
		t.Fatal(err)
	}
	if base.Mesh != "base.obj" || !base.Tinted() {
		t.Errorf("Parent prefab in cache was mutated! Got %+v", base)
	}
}

func TestPrefabCache(t *testing.T) {
	l := NewLoader(testFS())
	a, _ := l.LoadPrefab("oak")
	b, _ := l.LoadPrefab("oak")
	if a != b {
		t.Errorf("Expected the cached prefab on the second load")
	}
}

func TestParentCycle(t *testing.T) {
	fsys := fstest.MapFS{
		"prefabs/a.json": {Data: []byte(`{"parent": "b"}`)},
		"prefabs/b.json": {Data: []byte(`{"parent": "a"}`)},
	}
	_, err := NewLoader(fsys).LoadPrefab("a")
	if !errors.Is(err, ErrParentCycle) {
		t.Errorf("Expected ErrParentCycle, got %v", err)
	}
}

func TestUnknownFieldRejected(t *testing.T) {
	fsys := fstest.MapFS{"prefabs/x.json": {Data: []byte(`{"mesh": "x.obj", "colour": "red"}`)}}
	if _, err := NewLoader(fsys).LoadPrefab("x"); err == nil {
		t.Errorf("Expected an error for an unknown field")
	}
}

func TestGradientSortedAndParsed(t *testing.T) {
	g, err := NewLoader(testFS()).LoadGradient("green")
	if err != nil {
		t.Fatalf("LoadGradient: %v", err)
	}
	if g.Keys[0].Time != 0 || g.Keys[1].Time != 1 {
		t.Fatalf("Expected keys sorted by time, got %+v", g.Keys)
	}
	if g.Keys[0].Color != (Color{0, 0.5, 0, 1}) {
		t.Errorf("Unexpected array colour %v", g.Keys[0].Color)
	}
	if g.Keys[1].Color != (Color{1, 1, 1, 1}) {
		t.Errorf("Unexpected hex colour %v", g.Keys[1].Color)
	}
}

func TestParseHex(t *testing.T) {
	c, err := ParseHex("#ff000080")
	if err != nil {
		t.Fatal(err)
	}
	if c[0] != 1 || c[1] != 0 || c[3] != float32(0x80)/255 {
		t.Errorf("Unexpected colour %v", c)
	}
	for _, bad := range []string{"#fff", "#gggggg", ""} {
		if _, err := ParseHex(bad); err == nil {
			t.Errorf("Expected an error for %q", bad)
		}
	}
}

func TestLoadCatalog(t *testing.T) {
	c, err := Load(testFS())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.PrefabCount("tree") != 2 || c.PrefabCount("lamp") != 1 || c.PrefabCount("rock") != 0 {
		t.Errorf("Unexpected prefab counts")
	}
	if p := c.Prefab("tree", 1); p == nil || p.Name != "pine" {
		t.Errorf("Expected pine at index 1, got %+v", p)
	}
	if c.Prefab("tree", 5) != nil {
		t.Errorf("Expected nil for an out of range prefab")
	}
	s, ok := c.Set("tree")
	if !ok || s.Gradient == nil || s.Gradient.Name != "green" {
		t.Errorf("Expected the green gradient on trees")
	}
	if kinds := c.Kinds(); len(kinds) != 2 || kinds[0] != "lamp" {
		t.Errorf("Unexpected kinds %v", kinds)
	}
}

func TestLoadFromDisk(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "prefabs"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "catalog.json"), []byte(`{"sets": {"rock": {"prefabs": ["stone"]}}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "prefabs", "stone.json"), []byte(`{"mesh": "stone.obj"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(os.DirFS(dir))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Prefab("rock", 0).Mesh != "stone.obj" {
		t.Errorf("Unexpected prefab %+v", c.Prefab("rock", 0))
	}
}

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	for _, kind := range []string{"tree", "rock", "grass", "flower", "lamp", "house"} {
		if c.PrefabCount(kind) == 0 {
			t.Errorf("Expected prefabs for %s", kind)
		}
	}
	if p := c.Prefab("flower", 0); p == nil || len(p.Tags) != 2 {
		t.Errorf("Expected flowers to inherit grass tags through two parents, got %+v", p)
	}
}
