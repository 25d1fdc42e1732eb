package catalog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Prefab describes one decoration model.
type Prefab struct {
	Name   string `json:"-"`
	Parent string `json:"parent"`
	Mesh   string `json:"mesh"`
	// Tint enables the gradient colour. Unset inherits from the parent.
	Tint  *bool       `json:"tint"`
	Scale *[3]float64 `json:"scale"`
	Tags  []string    `json:"tags"`
}

// Tinted reports whether instances of the prefab take a gradient colour.
func (p *Prefab) Tinted() bool { return p.Tint == nil || *p.Tint }

// Color is an RGBA colour. It decodes from "#rrggbb", "#rrggbbaa" or an
// array of three or four floats in [0, 1].
type Color [4]float32

func (c *Color) UnmarshalJSON(data []byte) error {
	// First, try to unmarshal as an array
	var arr []float32
	if err := json.Unmarshal(data, &arr); err == nil {
		if len(arr) != 3 && len(arr) != 4 {
			return fmt.Errorf("colour needs 3 or 4 components, got %d", len(arr))
		}
		*c = Color{arr[0], arr[1], arr[2], 1}
		if len(arr) == 4 {
			c[3] = arr[3]
		}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseHex(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

var errBadHex = errors.New("catalog: colour must be #rrggbb or #rrggbbaa")

// ParseHex parses "#rrggbb" or "#rrggbbaa".
func ParseHex(s string) (Color, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 && len(s) != 8 {
		return Color{}, fmt.Errorf("%w: %q", errBadHex, s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q", errBadHex, s)
	}
	if len(s) == 6 {
		v = v<<8 | 0xff
	}
	return Color{
		float32(v>>24&0xff) / 255,
		float32(v>>16&0xff) / 255,
		float32(v>>8&0xff) / 255,
		float32(v&0xff) / 255,
	}, nil
}

// GradientKey is one colour stop.
type GradientKey struct {
	Time  float64 `json:"time"`
	Color Color   `json:"color"`
}

// Gradient is a named list of colour stops.
type Gradient struct {
	Name string        `json:"-"`
	Keys []GradientKey `json:"keys"`
}

// Set is the prefab list and gradient used by one decoration kind.
type Set struct {
	Kind     string
	Gradient *Gradient
	Prefabs  []*Prefab
}

// index is the catalog.json document.
type index struct {
	Sets map[string]struct {
		Gradient string   `json:"gradient"`
		Prefabs  []string `json:"prefabs"`
	} `json:"sets"`
}
