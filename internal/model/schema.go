package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidOption is returned when a select field receives a value outside
// its declared options.
var ErrInvalidOption = errors.New("value is not one of the declared options")

// FieldKind is the editing control a property gets in the property panel.
type FieldKind string

const (
	FieldText      FieldKind = "text"
	FieldMultiline FieldKind = "multiline-text"
	FieldSelect    FieldKind = "single-select"
	FieldBoolean   FieldKind = "boolean"
	FieldColor     FieldKind = "color"
	FieldImage     FieldKind = "image-reference"
	FieldNumber    FieldKind = "number"
)

// PropertySpec declares one configurable property. Type uses the stored wire
// tags: string, select, boolean, color, image and number.
type PropertySpec struct {
	Type        string   `json:"type" yaml:"type"`
	Multiline   bool     `json:"multiline,omitempty" yaml:"multiline"`
	Default     Value    `json:"default,omitzero" yaml:"default"`
	Options     []string `json:"options,omitempty" yaml:"options"`
	Required    bool     `json:"required,omitempty" yaml:"required"`
	Description string   `json:"description,omitempty" yaml:"description"`
	Placeholder string   `json:"placeholder,omitempty" yaml:"placeholder"`
}

// Kind maps the wire tag to a field kind. Unknown tags fall back to text.
func (p PropertySpec) Kind() FieldKind {
	switch p.Type {
	case "string", "text", "":
		if p.Multiline {
			return FieldMultiline
		}
		return FieldText
	case "select":
		return FieldSelect
	case "boolean":
		return FieldBoolean
	case "color":
		return FieldColor
	case "image":
		return FieldImage
	case "number":
		return FieldNumber
	}
	return FieldText
}

// Parse converts raw form input into a value of the field's kind. Number
// input keeps its leading integer and becomes 0 when there is none.
func (p PropertySpec) Parse(raw string) (Value, error) {
	switch p.Kind() {
	case FieldNumber:
		return NumberValue(float64(leadingInt(raw))), nil
	case FieldBoolean:
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "true", "on", "1", "yes":
			return BoolValue(true), nil
		}
		return BoolValue(false), nil
	case FieldSelect:
		if !slices.Contains(p.Options, raw) {
			return Value{}, fmt.Errorf("%q: %w", raw, ErrInvalidOption)
		}
		return OptionValue(raw), nil
	}
	return StringValue(raw), nil
}

func leadingInt(raw string) int {
	s := strings.TrimSpace(raw)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

// Field is one entry of a Schema.
type Field struct {
	Key  string
	Spec PropertySpec
}

// Schema is an ordered property schema. Encoded form is a JSON/YAML object;
// decoding keeps the document's key order.
type Schema []Field

// Lookup returns the spec declared for key.
func (s Schema) Lookup(key string) (PropertySpec, bool) {
	for _, f := range s {
		if f.Key == key {
			return f.Spec, true
		}
	}
	return PropertySpec{}, false
}

func (s Schema) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		spec, err := json.Marshal(f.Spec)
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", f.Key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(spec)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (s *Schema) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*s = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("props schema must be an object, got %v", tok)
	}
	out := Schema{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)
		var spec PropertySpec
		if err := dec.Decode(&spec); err != nil {
			return fmt.Errorf("property %s: %w", key, err)
		}
		out = append(out, Field{Key: key, Spec: spec})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*s = out
	return nil
}

func (s *Schema) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: props schema must be a mapping", node.Line)
	}
	out := make(Schema, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		var spec PropertySpec
		if err := node.Content[i+1].Decode(&spec); err != nil {
			return fmt.Errorf("property %s: %w", key, err)
		}
		out = append(out, Field{Key: key, Spec: spec})
	}
	*s = out
	return nil
}
