package model

import (
	"encoding/json"
	"maps"
)

// Props maps property keys to values.
type Props map[string]Value

// Clone returns an independent copy.
func (p Props) Clone() Props {
	if p == nil {
		return Props{}
	}
	return maps.Clone(p)
}

// With returns a copy of p with key set to v.
func (p Props) With(key string, v Value) Props {
	out := p.Clone()
	out[key] = v
	return out
}

// Resolve overlays p on the schema defaults, so a renderer sees a value for
// every declared key that has one.
func (p Props) Resolve(schema Schema) Props {
	out := make(Props, len(schema)+len(p))
	for _, f := range schema {
		if !f.Spec.Default.IsZero() {
			out[f.Key] = f.Spec.Default
		}
	}
	for k, v := range p {
		if v.IsZero() {
			continue
		}
		out[k] = v
	}
	return out
}

// Text returns the string form of key, or fallback when it is absent or empty.
func (p Props) Text(key, fallback string) string {
	v, ok := p[key]
	if !ok || !v.Truthy() && v.Type() != ValueBool {
		return fallback
	}
	return v.String()
}

// Number returns the numeric value of key, or fallback when it is absent,
// zero or not numeric.
func (p Props) Number(key string, fallback float64) float64 {
	n, ok := p[key].AsNumber()
	if !ok || n == 0 {
		return fallback
	}
	return n
}

// Flag returns the boolean value of key, or fallback when key holds no bool.
func (p Props) Flag(key string, fallback bool) bool {
	b, ok := p[key].AsBool()
	if !ok {
		return fallback
	}
	return b
}

// ComponentInstance is one placement of a definition on the canvas.
type ComponentInstance struct {
	ID          string `json:"id"`
	ComponentID string `json:"componentId"`
	Type        Kind   `json:"type"`
	Props       Props  `json:"props"`
}

// Clone deep-copies the instance props.
func (c ComponentInstance) Clone() ComponentInstance {
	c.Props = c.Props.Clone()
	return c
}

// ContentStructure is the persisted, ordered page content.
type ContentStructure struct {
	Components []ComponentInstance `json:"components"`
}

// IndexOf returns the position of the instance with id, or -1.
func (c ContentStructure) IndexOf(id string) int {
	for i, inst := range c.Components {
		if inst.ID == id {
			return i
		}
	}
	return -1
}

// Clone deep-copies the structure.
func (c ContentStructure) Clone() ContentStructure {
	out := ContentStructure{Components: make([]ComponentInstance, len(c.Components))}
	for i, inst := range c.Components {
		out.Components[i] = inst.Clone()
	}
	return out
}

func (c ContentStructure) MarshalJSON() ([]byte, error) {
	type wire ContentStructure
	w := wire(c)
	if w.Components == nil {
		w.Components = []ComponentInstance{}
	}
	return json.Marshal(w)
}

// ParseContentStructure decodes stored page content. An empty payload is an
// empty structure.
func ParseContentStructure(data []byte) (ContentStructure, error) {
	var c ContentStructure
	if len(data) == 0 {
		return ContentStructure{Components: []ComponentInstance{}}, nil
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return ContentStructure{}, err
	}
	if c.Components == nil {
		c.Components = []ComponentInstance{}
	}
	return c, nil
}
