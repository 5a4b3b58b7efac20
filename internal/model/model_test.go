package model

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestSchemaKeepsDocumentOrder(t *testing.T) {
	raw := `{"title":{"type":"string","default":"Hi"},"delay":{"type":"number","default":3000},"aggressive":{"type":"boolean"}}`
	var s Schema
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		t.Fatalf("Unmarshal() failed: %v", err)
	}
	var keys []string
	for _, f := range s {
		keys = append(keys, f.Key)
	}
	want := []string{"title", "delay", "aggressive"}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("keys = %v, want %v", keys, want)
	}

	out, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal() failed: %v", err)
	}
	var again Schema
	if err := json.Unmarshal(out, &again); err != nil {
		t.Fatalf("Unmarshal(Marshal()) failed: %v", err)
	}
	if !reflect.DeepEqual(s, again) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", again, s)
	}
}

func TestSchemaYAMLOrder(t *testing.T) {
	doc := `
zeta: {type: string}
alpha: {type: select, options: [a, b], default: a}
`
	var s Schema
	if err := yaml.Unmarshal([]byte(doc), &s); err != nil {
		t.Fatalf("yaml.Unmarshal() failed: %v", err)
	}
	if len(s) != 2 || s[0].Key != "zeta" || s[1].Key != "alpha" {
		t.Fatalf("unexpected schema %+v", s)
	}
	if got := s[1].Spec.Default.String(); got != "a" {
		t.Errorf("default = %q, want a", got)
	}
}

func TestPropertySpecKind(t *testing.T) {
	tests := []struct {
		spec PropertySpec
		want FieldKind
	}{
		{PropertySpec{Type: "string"}, FieldText},
		{PropertySpec{Type: "string", Multiline: true}, FieldMultiline},
		{PropertySpec{Type: "select"}, FieldSelect},
		{PropertySpec{Type: "boolean"}, FieldBoolean},
		{PropertySpec{Type: "color"}, FieldColor},
		{PropertySpec{Type: "image"}, FieldImage},
		{PropertySpec{Type: "number"}, FieldNumber},
		{PropertySpec{Type: "gradient"}, FieldText},
	}
	for _, tt := range tests {
		if got := tt.spec.Kind(); got != tt.want {
			t.Errorf("Kind(%q) = %q, want %q", tt.spec.Type, got, tt.want)
		}
	}
}

func TestPropertySpecParse(t *testing.T) {
	num := PropertySpec{Type: "number"}
	for raw, want := range map[string]float64{"42": 42, "12abc": 12, "abc": 0, "": 0, "-7": -7, "3.9": 3} {
		v, err := num.Parse(raw)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", raw, err)
		}
		if n, _ := v.AsNumber(); n != want {
			t.Errorf("Parse(%q) = %v, want %v", raw, n, want)
		}
	}

	sel := PropertySpec{Type: "select", Options: []string{"h1", "h2"}}
	if _, err := sel.Parse("h7"); !errors.Is(err, ErrInvalidOption) {
		t.Errorf("Parse(h7) error = %v, want ErrInvalidOption", err)
	}
	v, err := sel.Parse("h1")
	if err != nil || v.Type() != ValueString || v.String() != "h1" {
		t.Errorf("Parse(h1) = %v, %v", v, err)
	}

	flag := PropertySpec{Type: "boolean"}
	if v, _ := flag.Parse("on"); !v.Truthy() {
		t.Error("Parse(on) should be true")
	}
	if v, _ := flag.Parse("false"); v.Truthy() {
		t.Error("Parse(false) should be false")
	}
}

func TestContentStructureRoundTrip(t *testing.T) {
	level, err := PropertySpec{Type: "select", Options: []string{"h1", "h2"}}.Parse("h1")
	if err != nil {
		t.Fatalf("Parse(h1) failed: %v", err)
	}
	c := ContentStructure{Components: []ComponentInstance{
		{ID: "a", ComponentID: "heading", Type: KindBuiltin, Props: Props{"text": StringValue("Hello"), "level": level, "align": OptionValue("center")}},
		{ID: "b", ComponentID: "exit-intent-demo", Type: KindBuiltin, Props: Props{"delay": NumberValue(7000), "aggressive": BoolValue(true)}},
	}}
	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("Marshal() failed: %v", err)
	}
	got, err := ParseContentStructure(data)
	if err != nil {
		t.Fatalf("ParseContentStructure() failed: %v", err)
	}
	if !reflect.DeepEqual(got, c) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, c)
	}

	empty, err := json.Marshal(ContentStructure{})
	if err != nil {
		t.Fatalf("Marshal(empty) failed: %v", err)
	}
	if string(empty) != `{"components":[]}` {
		t.Errorf("empty structure = %s", empty)
	}
}

func TestPropsAccessors(t *testing.T) {
	p := Props{
		"title":   StringValue(""),
		"delay":   NumberValue(0),
		"expire":  StringValue("7"),
		"enabled": BoolValue(false),
	}
	if got := p.Text("title", "Fallback"); got != "Fallback" {
		t.Errorf("Text(empty) = %q", got)
	}
	if got := p.Number("delay", 3000); got != 3000 {
		t.Errorf("Number(0) = %v, want fallback", got)
	}
	if got := p.Number("expire", 1); got != 7 {
		t.Errorf("Number(\"7\") = %v", got)
	}
	if p.Flag("enabled", true) {
		t.Error("Flag(explicit false) should be false")
	}
	if !p.Flag("missing", true) {
		t.Error("Flag(missing) should use fallback")
	}
}

func TestDefaultPropsAndResolve(t *testing.T) {
	def := ComponentDefinition{Schema: Schema{
		{Key: "text", Spec: PropertySpec{Type: "string", Default: StringValue("Your heading here")}},
		{Key: "url", Spec: PropertySpec{Type: "string"}},
	}}
	props := def.DefaultProps()
	if props["text"].String() != "Your heading here" || props["url"].Type() != ValueString || props["url"].String() != "" {
		t.Errorf("DefaultProps() = %+v", props)
	}

	resolved := Props{"url": StringValue("/x")}.Resolve(def.Schema)
	if resolved["text"].String() != "Your heading here" || resolved["url"].String() != "/x" {
		t.Errorf("Resolve() = %+v", resolved)
	}
}

func TestParseBuiltinKind(t *testing.T) {
	if k, ok := ParseBuiltinKind("Text Block"); !ok || k != BuiltinTextBlock {
		t.Errorf("ParseBuiltinKind(Text Block) = %q, %v", k, ok)
	}
	if _, ok := ParseBuiltinKind("carousel"); ok {
		t.Error("carousel should not be a builtin kind")
	}
}
