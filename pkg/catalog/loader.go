// Package catalog loads the prefab catalog: which decoration models exist
// for each kind, how they inherit from one another and which colour
// gradient tints them.
package catalog

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.Config{
	EscapeHTML:             false,
	SortMapKeys:            true,
	DisallowUnknownFields:  true,
	CaseSensitive:          true,
	ValidateJsonRawMessage: true,
}.Froze()

// ErrParentCycle is returned when a prefab is its own ancestor.
var ErrParentCycle = errors.New("catalog: prefab parent cycle")

//go:embed defaults
var defaults embed.FS

type Loader struct {
	fsys          fs.FS
	prefabCache   map[string]*Prefab
	gradientCache map[string]*Gradient
	loading       map[string]bool
}

// NewLoader reads prefabs/<name>.json and gradients/<name>.json from fsys.
func NewLoader(fsys fs.FS) *Loader {
	return &Loader{
		fsys:          fsys,
		prefabCache:   make(map[string]*Prefab),
		gradientCache: make(map[string]*Gradient),
		loading:       make(map[string]bool),
	}
}

// LoadPrefab loads a prefab and merges in every unset field from its
// parent chain. Returned prefabs are shared through the cache and must not
// be modified.
func (l *Loader) LoadPrefab(name string) (*Prefab, error) {
	if p, ok := l.prefabCache[name]; ok {
		return p, nil
	}
	if l.loading[name] {
		return nil, fmt.Errorf("%w: %s", ErrParentCycle, name)
	}
	l.loading[name] = true
	defer delete(l.loading, name)

	data, err := fs.ReadFile(l.fsys, path.Join("prefabs", name+".json"))
	if err != nil {
		return nil, fmt.Errorf("could not read prefab file: %w", err)
	}

	var p Prefab
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("could not unmarshal prefab %s: %w", name, err)
	}
	p.Name = name

	if p.Parent != "" {
		parent, err := l.LoadPrefab(p.Parent)
		if err != nil {
			return nil, fmt.Errorf("could not load parent prefab '%s': %w", p.Parent, err)
		}
		if p.Mesh == "" {
			p.Mesh = parent.Mesh
		}
		if p.Tint == nil {
			p.Tint = parent.Tint
		}
		if p.Scale == nil {
			p.Scale = parent.Scale
		}
		if len(p.Tags) == 0 {
			p.Tags = append([]string(nil), parent.Tags...)
		}
	}

	l.prefabCache[name] = &p
	return &p, nil
}

// LoadGradient loads a gradient and sorts its keys by time.
func (l *Loader) LoadGradient(name string) (*Gradient, error) {
	if g, ok := l.gradientCache[name]; ok {
		return g, nil
	}

	data, err := fs.ReadFile(l.fsys, path.Join("gradients", name+".json"))
	if err != nil {
		return nil, fmt.Errorf("could not read gradient file: %w", err)
	}

	var g Gradient
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("could not unmarshal gradient %s: %w", name, err)
	}
	if len(g.Keys) == 0 {
		return nil, fmt.Errorf("gradient %s has no keys", name)
	}
	g.Name = name
	sort.SliceStable(g.Keys, func(i, j int) bool { return g.Keys[i].Time < g.Keys[j].Time })

	l.gradientCache[name] = &g
	return &g, nil
}

// Catalog maps decoration kinds to their sets.
type Catalog struct {
	sets map[string]*Set
}

// Load reads catalog.json from fsys and everything it references.
func Load(fsys fs.FS) (*Catalog, error) {
	data, err := fs.ReadFile(fsys, "catalog.json")
	if err != nil {
		return nil, fmt.Errorf("could not read catalog file: %w", err)
	}
	var idx index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("could not unmarshal catalog json: %w", err)
	}

	l := NewLoader(fsys)
	c := &Catalog{sets: make(map[string]*Set, len(idx.Sets))}
	for kind, entry := range idx.Sets {
		set := &Set{Kind: kind}
		for _, name := range entry.Prefabs {
			p, err := l.LoadPrefab(name)
			if err != nil {
				return nil, fmt.Errorf("set %s: %w", kind, err)
			}
			set.Prefabs = append(set.Prefabs, p)
		}
		if entry.Gradient != "" {
			g, err := l.LoadGradient(entry.Gradient)
			if err != nil {
				return nil, fmt.Errorf("set %s: %w", kind, err)
			}
			set.Gradient = g
		}
		c.sets[kind] = set
	}
	return c, nil
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	sub, err := fs.Sub(defaults, "defaults")
	if err != nil {
		return nil, err
	}
	return Load(sub)
}

// Set returns the set for kind.
func (c *Catalog) Set(kind string) (*Set, bool) {
	s, ok := c.sets[kind]
	return s, ok
}

// Kinds lists the kinds in the catalog in name order.
func (c *Catalog) Kinds() []string {
	out := make([]string, 0, len(c.sets))
	for k := range c.sets {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// PrefabCount returns how many prefabs kind has, 0 when it is missing.
func (c *Catalog) PrefabCount(kind string) int {
	if s, ok := c.sets[kind]; ok {
		return len(s.Prefabs)
	}
	return 0
}

// Prefab returns prefab i of kind, or nil.
func (c *Catalog) Prefab(kind string, i int) *Prefab {
	s, ok := c.sets[kind]
	if !ok || i < 0 || i >= len(s.Prefabs) {
		return nil
	}
	return s.Prefabs[i]
}
