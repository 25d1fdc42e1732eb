package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed schema/params.schema.json
var paramsSchema []byte

const schemaURL = "mem://polyterrain/params.schema.json"

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, bytes.NewReader(paramsSchema)); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = c.Compile(schemaURL)
	})
	return schema, schemaErr
}

// Load reads a YAML parameter file. Keys missing from the file keep their
// Default values.
func Load(path string) (Params, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Params{}, err
	}
	p, err := Parse(raw)
	if err != nil {
		return Params{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Parse decodes a YAML document over Default, checking it against the
// embedded schema first and Validate after.
func Parse(raw []byte) (Params, error) {
	p := Default()

	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return p, err
	}
	if doc != nil {
		s, err := compiledSchema()
		if err != nil {
			return p, fmt.Errorf("could not compile parameter schema: %w", err)
		}
		if err := s.Validate(doc); err != nil {
			return p, fmt.Errorf("%w: %v", ErrInvalidParams, err)
		}
		if err := yaml.Unmarshal(raw, &p); err != nil {
			return p, err
		}
	}
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

// Marshal encodes p as YAML.
func Marshal(p Params) ([]byte, error) {
	return yaml.Marshal(p)
}
