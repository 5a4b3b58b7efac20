package composer

import (
	_ "embed"
	"fmt"

	"go-page-builder/internal/model"

	"gopkg.in/yaml.v3"
)

//go:embed funnels.yaml
var funnelsYAML []byte

// FunnelGroup sorts templates in the builder's template menu.
type FunnelGroup string

const (
	GroupConversion FunnelGroup = "conversion"
	GroupABTest     FunnelGroup = "ab-test"
	GroupExitIntent FunnelGroup = "exit-intent"
)

// FunnelComponent is one section of a template.
type FunnelComponent struct {
	ComponentID string      `yaml:"componentId" json:"componentId"`
	Props       model.Props `yaml:"props" json:"props"`
}

// FunnelTemplate is a curated page layout applied in one step.
type FunnelTemplate struct {
	ID          string            `yaml:"id" json:"id"`
	Name        string            `yaml:"name" json:"name"`
	Group       FunnelGroup       `yaml:"group" json:"group"`
	Description string            `yaml:"description" json:"description"`
	Components  []FunnelComponent `yaml:"components" json:"components"`
}

// FunnelSet is an ordered, read-only collection of templates.
type FunnelSet struct {
	templates []FunnelTemplate
	byID      map[string]int
}

// ParseFunnels decodes a template document. Ids must be unique and every
// template needs at least one component.
func ParseFunnels(data []byte) (*FunnelSet, error) {
	var doc struct {
		Templates []FunnelTemplate `yaml:"templates"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing funnel templates: %w", err)
	}
	set := &FunnelSet{byID: make(map[string]int, len(doc.Templates))}
	for i, t := range doc.Templates {
		if t.ID == "" {
			return nil, fmt.Errorf("funnel template %d has no id", i)
		}
		if _, dup := set.byID[t.ID]; dup {
			return nil, fmt.Errorf("duplicate funnel template %q", t.ID)
		}
		if len(t.Components) == 0 {
			return nil, fmt.Errorf("funnel template %q has no components", t.ID)
		}
		for j, c := range t.Components {
			if c.ComponentID == "" {
				return nil, fmt.Errorf("funnel template %q component %d has no componentId", t.ID, j)
			}
		}
		set.byID[t.ID] = len(set.templates)
		set.templates = append(set.templates, t)
	}
	return set, nil
}

// DefaultFunnels returns the built-in templates.
func DefaultFunnels() *FunnelSet {
	set, err := ParseFunnels(funnelsYAML)
	if err != nil {
		panic(err)
	}
	return set
}

// Lookup returns the template with id.
func (s *FunnelSet) Lookup(id string) (FunnelTemplate, bool) {
	i, ok := s.byID[id]
	if !ok {
		return FunnelTemplate{}, false
	}
	return s.templates[i], true
}

// Templates lists every template in document order.
func (s *FunnelSet) Templates() []FunnelTemplate {
	return s.templates
}

// Group lists the templates of one group.
func (s *FunnelSet) Group(g FunnelGroup) []FunnelTemplate {
	var out []FunnelTemplate
	for _, t := range s.templates {
		if t.Group == g {
			out = append(out, t)
		}
	}
	return out
}
