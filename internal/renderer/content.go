package renderer

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"go-page-builder/internal/model"
)

// headingTmpl holds one template per heading level since html/template does
// not allow computed element names.
var headingTmpl = template.Must(template.New("heading").Funcs(funcs).Parse(headingLevels()))

func headingLevels() string {
	var b strings.Builder
	for i := 1; i <= 6; i++ {
		fmt.Fprintf(&b, `{{define "h%d"}}<h%d class="font-bold {{.Class}}" style="{{.Style}}">{{.Text}}</h%d>{{end}}`, i, i, i)
	}
	return b.String()
}

type headingData struct {
	Text  string
	Class string
	Style template.CSS
}

func (r *Renderer) renderHeading(_ *model.ComponentDefinition, p model.Props) (template.HTML, error) {
	level := p.Text("level", "h2")
	if headingTmpl.Lookup(level) == nil {
		level = "h2"
	}
	return execute(headingTmpl, level, headingData{
		Text:  p.Text("text", "Your heading here"),
		Class: alignClass(p.Text("textAlign", ""), "text-left"),
		Style: style("color", safeColor(p.Text("color", ""), "#000000")),
	})
}

var textBlockTmpl = template.Must(template.New("text-block").Parse(
	`<div class="prose {{.Size}} {{.Align}}" style="{{.Style}}">{{.Body}}</div>`,
))

type textBlockData struct {
	Size  string
	Align string
	Style template.CSS
	Body  template.HTML
}

// renderTextBlock renders the text as markdown. Raw HTML in the source is
// dropped by goldmark's default renderer.
func (r *Renderer) renderTextBlock(_ *model.ComponentDefinition, p model.Props) (template.HTML, error) {
	var body bytes.Buffer
	if err := r.md.Convert([]byte(p.Text("text", "Your text here")), &body); err != nil {
		return "", fmt.Errorf("converting text block markdown: %w", err)
	}
	size, ok := textSizeClasses[p.Text("fontSize", "")]
	if !ok {
		size = "text-base"
	}
	return execute(textBlockTmpl, "text-block", textBlockData{
		Size:  size,
		Align: alignClass(p.Text("textAlign", ""), "text-left"),
		Style: style("color", safeColor(p.Text("color", ""), "#000000")),
		Body:  template.HTML(body.String()),
	})
}
