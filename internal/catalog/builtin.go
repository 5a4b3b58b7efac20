package catalog

import (
	"context"
	_ "embed"
	"fmt"

	"go-page-builder/internal/model"

	"gopkg.in/yaml.v3"
)

//go:embed builtin.yaml
var builtinYAML []byte

const builtinVersion = "1.0.0"

type builtinFile struct {
	Components []model.ComponentDefinition `yaml:"components"`
}

// ParseBuiltins decodes and validates a built-in definition document. Every
// definition must name a known renderer and carry a unique id.
func ParseBuiltins(data []byte) ([]model.ComponentDefinition, error) {
	var doc builtinFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding built-in components: %w", err)
	}

	seen := make(map[string]bool, len(doc.Components))
	for i := range doc.Components {
		def := &doc.Components[i]
		if def.ID == "" {
			return nil, fmt.Errorf("built-in component #%d has no id", i)
		}
		if seen[def.ID] {
			return nil, fmt.Errorf("duplicate built-in component id %q", def.ID)
		}
		seen[def.ID] = true

		kind, ok := model.ParseBuiltinKind(string(def.Builtin))
		if !ok {
			return nil, fmt.Errorf("built-in component %q names unknown renderer %q", def.ID, def.Builtin)
		}
		def.Builtin = kind
		def.Kind = model.KindBuiltin
		def.IsActive = true
		if def.Version == "" {
			def.Version = builtinVersion
		}
	}
	return doc.Components, nil
}

// EmbeddedSource serves the built-in definitions compiled into the binary.
type EmbeddedSource struct {
	defs []model.ComponentDefinition
}

// NewEmbeddedSource parses the embedded definitions, failing fast on any
// definition that does not map to a renderer.
func NewEmbeddedSource() (*EmbeddedSource, error) {
	defs, err := ParseBuiltins(builtinYAML)
	if err != nil {
		return nil, err
	}
	return &EmbeddedSource{defs: defs}, nil
}

// MustEmbeddedSource is NewEmbeddedSource for program start-up and tests.
func MustEmbeddedSource() *EmbeddedSource {
	src, err := NewEmbeddedSource()
	if err != nil {
		panic(err)
	}
	return src
}

func (s *EmbeddedSource) ListBuiltin(ctx context.Context) ([]model.ComponentDefinition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]model.ComponentDefinition, len(s.defs))
	copy(out, s.defs)
	return out, nil
}
