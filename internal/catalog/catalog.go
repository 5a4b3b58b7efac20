package catalog

import (
	"go-page-builder/internal/model"
)

// Catalog is an immutable snapshot of the built-in and custom definitions.
type Catalog struct {
	builtins []model.ComponentDefinition
	customs  []model.ComponentDefinition
	byID     map[string]*model.ComponentDefinition
}

// New builds a catalog. When a custom definition reuses a built-in id the
// built-in wins.
func New(builtins, customs []model.ComponentDefinition) *Catalog {
	c := &Catalog{
		builtins: builtins,
		customs:  customs,
		byID:     make(map[string]*model.ComponentDefinition, len(builtins)+len(customs)),
	}
	for i := range customs {
		c.byID[customs[i].ID] = &c.customs[i]
	}
	for i := range builtins {
		c.byID[builtins[i].ID] = &c.builtins[i]
	}
	return c
}

// Empty is the catalog before anything has loaded.
func Empty() *Catalog { return New(nil, nil) }

// Lookup finds a definition by id in either list.
func (c *Catalog) Lookup(id string) (*model.ComponentDefinition, bool) {
	def, ok := c.byID[id]
	return def, ok
}

func (c *Catalog) Builtins() []model.ComponentDefinition { return c.builtins }
func (c *Catalog) Customs() []model.ComponentDefinition  { return c.customs }
func (c *Catalog) Len() int                              { return len(c.builtins) + len(c.customs) }

// General returns the built-ins shown in the main library tab.
func (c *Catalog) General() []model.ComponentDefinition {
	return c.filter(func(d *model.ComponentDefinition) bool { return !d.IsExitIntent() })
}

// ExitIntent returns the built-ins shown in the exit-intent library tab.
func (c *Catalog) ExitIntent() []model.ComponentDefinition {
	return c.filter(func(d *model.ComponentDefinition) bool { return d.IsExitIntent() })
}

// Categories groups the built-ins by category, keeping first-seen order.
func (c *Catalog) Categories() ([]string, map[string][]model.ComponentDefinition) {
	var order []string
	groups := make(map[string][]model.ComponentDefinition)
	for _, d := range c.builtins {
		if _, ok := groups[d.Category]; !ok {
			order = append(order, d.Category)
		}
		groups[d.Category] = append(groups[d.Category], d)
	}
	return order, groups
}

func (c *Catalog) filter(keep func(*model.ComponentDefinition) bool) []model.ComponentDefinition {
	var out []model.ComponentDefinition
	for i := range c.builtins {
		if keep(&c.builtins[i]) {
			out = append(out, c.builtins[i])
		}
	}
	return out
}
