package propertypanel

import (
	"net/url"
	"regexp"
	"strings"

	"go-page-builder/internal/model"
)

// Control is one rendered form field.
type Control struct {
	Key         string
	Label       string
	Kind        model.FieldKind
	Required    bool
	Description string
	Placeholder string
	// Value is the text the field shows.
	Value   string
	Options []string
	// Checked and StateLabel describe a boolean toggle.
	Checked    bool
	StateLabel string
	// Preview is the image to show for an image reference.
	Preview string
}

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Controls returns one control per schema property, in schema order.
func (p *Panel) Controls() []Control {
	p.mu.Lock()
	props := p.instance.Props
	controls := make([]Control, 0, len(p.def.Schema))
	for _, f := range p.def.Schema {
		controls = append(controls, control(f, resolved(props, f)))
	}
	p.mu.Unlock()
	return controls
}

// resolved is the instance value, else the declared default, else empty.
func resolved(props model.Props, f model.Field) model.Value {
	if v, ok := props[f.Key]; ok && !v.IsZero() {
		return v
	}
	if !f.Spec.Default.IsZero() {
		return f.Spec.Default
	}
	return model.StringValue("")
}

func control(f model.Field, v model.Value) Control {
	c := Control{
		Key:         f.Key,
		Label:       Humanize(f.Key),
		Kind:        f.Spec.Kind(),
		Required:    f.Spec.Required,
		Description: f.Spec.Description,
		Placeholder: f.Spec.Placeholder,
		Value:       v.String(),
	}
	if c.Placeholder == "" {
		c.Placeholder = "Enter " + f.Key
	}
	switch c.Kind {
	case model.FieldSelect:
		c.Options = f.Spec.Options
		c.Placeholder = "Select " + f.Key
	case model.FieldBoolean:
		c.Checked = v.Truthy()
		c.StateLabel = "Disabled"
		if c.Checked {
			c.StateLabel = "Enabled"
		}
	case model.FieldColor:
		// The picker needs a full hex value; the text field keeps whatever
		// was typed.
		c.Placeholder = "#000000"
		if c.Value == "" {
			c.Value = "#000000"
		}
	case model.FieldImage:
		c.Placeholder = "Image URL or path"
		c.Preview = previewURL(c.Value)
	case model.FieldNumber:
		if c.Value == "" {
			c.Value = "0"
		}
	}
	return c
}

// PickerValue is the value for the color picker half of a color control.
func (c Control) PickerValue() string {
	if hexColor.MatchString(c.Value) {
		return c.Value
	}
	return "#000000"
}

// previewURL returns raw when it can be shown as an image.
func previewURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.ContainsAny(raw, "\"'()<>\\") {
		return ImagePlaceholder
	}
	if strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ImagePlaceholder
	}
	return raw
}
