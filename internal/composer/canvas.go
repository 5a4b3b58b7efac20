package composer

import (
	"html/template"

	"go-page-builder/internal/model"
)

// CanvasItem is one instance as drawn in the builder canvas.
type CanvasItem struct {
	Instance model.ComponentInstance
	Name     string
	HTML     template.HTML
	Selected bool
	// Previewable marks exit-intent instances whose modal can be opened
	// on demand.
	Previewable bool
}
