package export

import (
	"fmt"
	"os"

	"polyterrain/internal/placement"
	"polyterrain/pkg/catalog"
)

// InstanceRecord is one placed instance in the exported instance list.
// Rotation is x, y, z, w.
type InstanceRecord struct {
	Kind     string      `json:"kind"`
	Prefab   string      `json:"prefab"`
	Index    int         `json:"index"`
	Position [3]float64  `json:"position"`
	Rotation [4]float64  `json:"rotation"`
	Scale    [3]float64  `json:"scale"`
	Color    *[4]float32 `json:"color,omitempty"`
	Animate  bool        `json:"animate,omitempty"`
}

// Records converts placed instances. Prefab names come from cat; an index
// the catalog does not know is written as "<kind>#<index>".
func Records(instances []placement.PlacedInstance, cat *catalog.Catalog) []InstanceRecord {
	out := make([]InstanceRecord, 0, len(instances))
	for _, inst := range instances {
		kind := inst.Kind.String()
		name := fmt.Sprintf("%s#%d", kind, inst.Prefab)
		if cat != nil {
			if p := cat.Prefab(kind, inst.Prefab); p != nil {
				name = p.Name
			}
		}
		r := InstanceRecord{
			Kind:     kind,
			Prefab:   name,
			Index:    inst.Prefab,
			Position: inst.Position,
			Rotation: [4]float64{inst.Rotation.V[0], inst.Rotation.V[1], inst.Rotation.V[2], inst.Rotation.W},
			Scale:    inst.Scale,
			Animate:  inst.Animate,
		}
		if inst.HasColor {
			c := [4]float32(inst.Color)
			r.Color = &c
		}
		out = append(out, r)
	}
	return out
}

// WriteInstances writes records as a JSON array.
func WriteInstances(path string, records []InstanceRecord) error {
	b, err := json.Marshal(records)
	if err != nil {
		return err
	}
	return writeFile(path, b)
}

// ReadInstances loads a list written by WriteInstances.
func ReadInstances(path string) ([]InstanceRecord, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out []InstanceRecord
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}
