// Package export writes a finished generation run to disk: a JSON manifest
// and instance list, a compressed mesh bundle, a 16-bit heightmap and an
// SVG overview map.
package export

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"polyterrain/internal/config"
	"polyterrain/internal/terrain"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.Config{
	EscapeHTML:             false,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
}.Froze()

// paramsJSON encodes config.Params under its yaml key names so the
// manifest and the config file use the same spelling.
var paramsJSON = jsoniter.Config{
	TagKey:      "yaml",
	SortMapKeys: true,
}.Froze()

// Files names the outputs of one export, relative to the export directory.
// Empty entries were not written.
type Files struct {
	Manifest  string `json:"manifest"`
	Instances string `json:"instances,omitempty"`
	Meshes    string `json:"meshes,omitempty"`
	Heightmap string `json:"heightmap,omitempty"`
	Map       string `json:"map,omitempty"`
}

// Manifest describes an exported run.
type Manifest struct {
	Seed       int                 `json:"seed"`
	Digest     string              `json:"digest"`
	ParamsHash string              `json:"params_hash"`
	Params     jsoniter.RawMessage `json:"params"`
	Summary    terrain.Summary     `json:"summary"`
	RiverError string              `json:"river_error,omitempty"`
	Heightmap  *HeightmapInfo      `json:"heightmap,omitempty"`
	Files      Files               `json:"files"`
}

// EncodeParams returns p as JSON with the config file's key names.
func EncodeParams(p config.Params) ([]byte, error) {
	return paramsJSON.Marshal(p)
}

// ParamsHash is the hex sha256 of EncodeParams(p). Runs with equal
// parameters share a hash.
func ParamsHash(p config.Params) (string, error) {
	raw, err := EncodeParams(p)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

// NewManifest fills a manifest from gc. Files and Heightmap are left for
// the caller.
func NewManifest(gc *terrain.GenerationContext) (*Manifest, error) {
	raw, err := EncodeParams(gc.Params)
	if err != nil {
		return nil, fmt.Errorf("encode params: %w", err)
	}
	sum := sha256.Sum256(raw)
	m := &Manifest{
		Seed:       gc.Params.Seed,
		Digest:     gc.Digest(),
		ParamsHash: hex.EncodeToString(sum[:]),
		Params:     raw,
		Summary:    gc.Summary(),
	}
	if gc.RiverErr != nil {
		m.RiverError = gc.RiverErr.Error()
	}
	return m, nil
}

// WriteManifest writes m as indented JSON.
func WriteManifest(path string, m *Manifest) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return writeFile(path, append(b, '\n'))
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (*Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &m, nil
}

// DecodeParams turns the manifest's params back into config.Params.
func (m *Manifest) DecodeParams() (config.Params, error) {
	p := config.Default()
	if err := paramsJSON.Unmarshal(m.Params, &p); err != nil {
		return config.Params{}, err
	}
	return p, nil
}

func writeFile(path string, b []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
