// Package renderer turns a component definition plus instance props into
// HTML, and manages the exit-intent lifecycle of rendered instances.
package renderer

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"log/slog"

	"go-page-builder/internal/model"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
)

type renderFunc func(r *Renderer, def *model.ComponentDefinition, p model.Props) (template.HTML, error)

// registry maps every built-in kind to its render function. Catalog loading
// guarantees definitions only name kinds present here.
var registry = map[model.BuiltinKind]renderFunc{
	model.BuiltinExitDiscount:        (*Renderer).renderExitCard,
	model.BuiltinExitFreebie:         (*Renderer).renderExitCard,
	model.BuiltinExitNewsletter:      (*Renderer).renderExitCard,
	model.BuiltinExitDemo:            (*Renderer).renderExitCard,
	model.BuiltinExitSurvey:          (*Renderer).renderExitCard,
	model.BuiltinExitSocial:          (*Renderer).renderExitCard,
	model.BuiltinExitEcommerceFunnel: (*Renderer).renderExitFunnel,
	model.BuiltinExitSaaSFunnel:      (*Renderer).renderExitFunnel,
	model.BuiltinExitLeadGenFunnel:   (*Renderer).renderExitFunnel,
	model.BuiltinHeroClassic:         (*Renderer).renderHeroClassic,
	model.BuiltinHeroTrust:           (*Renderer).renderHeroTrust,
	model.BuiltinHeroUrgency:         (*Renderer).renderHeroUrgency,
	model.BuiltinHeroBenefit:         (*Renderer).renderHeroBenefit,
	model.BuiltinHeroStory:           (*Renderer).renderHeroStory,
	model.BuiltinSocialProofBar:      (*Renderer).renderSocialProofBar,
	model.BuiltinValuePropGrid:       (*Renderer).renderValuePropGrid,
	model.BuiltinFeatureShowcase:     (*Renderer).renderFeatureShowcase,
	model.BuiltinTestimonial:         (*Renderer).renderTestimonial,
	model.BuiltinCTASection:          (*Renderer).renderCTASection,
	model.BuiltinConversionForm:      (*Renderer).renderConversionForm,
	model.BuiltinTextBlock:           (*Renderer).renderTextBlock,
	model.BuiltinHeading:             (*Renderer).renderHeading,
}

// Supports reports whether kind has a render function.
func Supports(kind model.BuiltinKind) bool {
	_, ok := registry[kind]
	return ok
}

// Renderer renders component definitions. It is safe for concurrent use.
type Renderer struct {
	logger *slog.Logger
	md     goldmark.Markdown
}

// New creates a Renderer. A nil logger discards output.
func New(logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Renderer{
		logger: logger,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Typographer),
			goldmark.WithRendererOptions(
				htmlrenderer.WithHardWraps(),
				htmlrenderer.WithXHTML(),
			),
		),
	}
}

// Render produces the HTML for one instance of def. It never fails: render
// errors and unknown kinds become visible placeholders.
func (r *Renderer) Render(def *model.ComponentDefinition, p model.Props) template.HTML {
	if p == nil {
		p = model.Props{}
	}
	var (
		out template.HTML
		err error
	)
	switch def.Kind {
	case model.KindBuiltin:
		out, err = r.renderBuiltin(def, p)
	case model.KindCustom:
		out, err = r.renderCustom(def)
	default:
		out, err = execute(placeholderTmpl, "unsupported", string(def.Kind))
	}
	if err != nil {
		r.logger.Error("Failed to render component", "component", def.ID, "error", err)
		out, _ = execute(placeholderTmpl, "error", err.Error())
	}
	return out
}

func (r *Renderer) renderBuiltin(def *model.ComponentDefinition, p model.Props) (template.HTML, error) {
	kind, ok := builtinKindOf(def)
	if !ok {
		return execute(placeholderTmpl, "unknown", def.Name)
	}
	fn, ok := registry[kind]
	if !ok {
		return execute(placeholderTmpl, "unknown", def.Name)
	}
	return fn(r, def, p)
}

// builtinKindOf resolves the renderer for def from its declared kind, then
// its id, then its display name.
func builtinKindOf(def *model.ComponentDefinition) (model.BuiltinKind, bool) {
	for _, candidate := range []string{string(def.Builtin), def.ID, def.Name} {
		if candidate == "" {
			continue
		}
		if k, ok := model.ParseBuiltinKind(candidate); ok {
			return k, true
		}
	}
	return "", false
}

var placeholderTmpl = template.Must(template.New("placeholder").Parse(`
{{define "unknown"}}<div class="p-4 border border-dashed border-gray-300 rounded"><p class="text-sm text-gray-600">Unknown component: {{.}}</p></div>{{end}}
{{define "unsupported"}}<div class="p-4 border border-gray-200 rounded bg-gray-50"><p class="text-sm text-gray-600">Component type not supported</p><p class="text-xs text-gray-500 mt-1">Type: {{.}}</p></div>{{end}}
{{define "error"}}<div class="p-4 border border-red-200 rounded bg-red-50"><p class="text-sm text-red-600">Error rendering component</p><p class="text-xs text-red-500 mt-1">{{.}}</p></div>{{end}}
`))

func execute(t *template.Template, name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("executing %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}
