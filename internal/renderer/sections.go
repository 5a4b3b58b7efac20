package renderer

import (
	"html/template"

	"go-page-builder/internal/model"
)

var sectionTmpl = template.Must(template.New("sections").Funcs(funcs).Parse(`
{{define "social-proof-bar"}}<section class="py-10 px-6" style="{{.Style}}"><div class="max-w-6xl mx-auto text-center">
{{- if .Title}}<h2 class="text-2xl font-semibold mb-6">{{.Title}}</h2>{{end}}
{{- if eq .Variant "testimonials"}}<div class="grid md:grid-cols-3 gap-6">{{range .Rows}}<blockquote class="italic">&ldquo;{{.A}}&rdquo;{{if .B}}<footer class="not-italic text-sm mt-2">{{.B}}</footer>{{end}}</blockquote>{{end}}</div>
{{- else}}<dl class="grid grid-cols-2 md:grid-cols-4 gap-6">{{range .Rows}}<div><dt class="text-3xl font-bold">{{.A}}</dt><dd class="text-sm">{{.B}}</dd></div>{{end}}</dl>{{end}}
</div></section>{{end}}

{{define "value-prop-grid"}}<section class="py-16 px-6" style="{{.Style}}"><div class="max-w-6xl mx-auto">
<h2 class="text-3xl font-bold text-center mb-4">{{.Title}}</h2>
{{- if .Subtitle}}<p class="text-lg text-center mb-10 opacity-80">{{.Subtitle}}</p>{{end}}
<div class="grid gap-8 {{.Layout}}">{{range .Rows}}<div class="p-6 rounded-lg border"><h3 class="text-xl font-semibold mb-2">{{.A}}</h3><p>{{.B}}</p></div>{{end}}</div>
</div></section>{{end}}

{{define "feature-showcase"}}<section class="py-16 px-6" style="{{.Style}}"><div class="max-w-6xl mx-auto">
<h2 class="text-3xl font-bold text-center mb-10">{{.Title}}</h2>
<div class="feature-list {{.Layout}}">{{range $i, $f := .Rows}}<div class="feature mb-10 flex gap-8 items-center{{if and (eq $.Layout "alternating") (odd $i)}} flex-row-reverse{{end}}">
{{- if $.ShowImages}}<div class="w-1/2 h-48 bg-gray-200 rounded-lg" aria-hidden="true"></div>{{end}}
<div><h3 class="text-2xl font-semibold mb-2">{{$f.A}}</h3><p>{{$f.B}}</p></div></div>{{end}}</div>
</div></section>{{end}}

{{define "testimonial"}}<figure class="py-12 px-6 {{.Align}} {{if eq .Variant "card"}}max-w-2xl mx-auto rounded-lg shadow p-8{{end}}">
{{- if .Image}}<img class="w-16 h-16 rounded-full mx-auto mb-4" src="{{.Image}}" alt="{{.Author}}">{{end}}
<blockquote class="text-xl italic mb-4">&ldquo;{{.Quote}}&rdquo;</blockquote>
<figcaption><span class="font-semibold">{{.Author}}</span>{{if .AuthorTitle}}<span class="block text-sm opacity-75">{{.AuthorTitle}}</span>{{end}}</figcaption>
</figure>{{end}}

{{define "cta-section"}}<section class="py-16 px-6 text-center cta-{{.Variant}}" style="{{.Style}}"><div class="max-w-3xl mx-auto">
{{- if and (eq .Variant "urgency") .Eyebrow}}<p class="font-semibold mb-4">{{.Eyebrow}}</p>{{end}}
<h2 class="text-3xl md:text-4xl font-bold mb-4">{{.Title}}</h2>
{{- if .Subtitle}}<p class="text-lg mb-8 opacity-90">{{.Subtitle}}</p>{{end}}
<div class="flex flex-col sm:flex-row gap-4 justify-center">
{{- if .ButtonText}}<a class="btn btn-primary" href="{{.ButtonLink}}">{{.ButtonText}}</a>{{end -}}
{{- if .SecondaryText}}<a class="btn btn-outline" href="{{.SecondaryLink}}">{{.SecondaryText}}</a>{{end -}}
</div>
{{- if and (eq .Variant "risk-reversal") .Footnote}}<p class="text-sm mt-6 opacity-80">{{.Footnote}}</p>{{end}}
</div></section>{{end}}

{{define "conversion-form"}}<section class="py-16 px-6" style="{{.Style}}"><div class="max-w-lg mx-auto">
<h2 class="text-3xl font-bold text-center mb-2">{{.Title}}</h2>
{{- if .Subtitle}}<p class="text-center mb-8 opacity-80">{{.Subtitle}}</p>{{end}}
<form class="space-y-4" method="post" data-form-type="{{.Variant}}" onsubmit="return false">
{{- range $i, $f := .Rows}}<label class="block"><span class="block text-sm font-medium mb-1">{{$f.A}}{{if eq $f.C "required"}} *{{end}}</span><input class="w-full border rounded px-3 py-2" name="field{{$i}}" type="{{inputType $f.B}}"{{if eq $f.C "required"}} required{{end}}></label>{{end}}
<button class="btn btn-primary w-full" type="submit">{{.ButtonText}}</button>
{{- if .Footnote}}<p class="text-xs text-center opacity-70">{{.Footnote}}</p>{{end}}
</form></div></section>{{end}}
`))

type sectionData struct {
	Variant       string
	Title         string
	Subtitle      string
	Eyebrow       string
	Rows          []row
	Layout        string
	ShowImages    bool
	Quote         string
	Author        string
	AuthorTitle   string
	Image         string
	Align         string
	ButtonText    string
	ButtonLink    string
	SecondaryText string
	SecondaryLink string
	Footnote      string
	Style         template.CSS
}

func (r *Renderer) renderSocialProofBar(_ *model.ComponentDefinition, p model.Props) (template.HTML, error) {
	variant := p.Text("type", "stats")
	source := p.Text("stats", "")
	if variant == "testimonials" {
		source = p.Text("testimonials", "")
	}
	return execute(sectionTmpl, "social-proof-bar", sectionData{
		Variant: variant,
		Title:   p.Text("title", ""),
		Rows:    rows(source),
		Style:   heroStyle(p, "#f9fafb", "#374151"),
	})
}

func inputType(t string) string {
	switch t {
	case "email", "tel", "number", "url", "date":
		return t
	}
	return "text"
}

var gridLayouts = map[string]string{
	"2x2":      "md:grid-cols-2",
	"3-column": "md:grid-cols-3",
	"list":     "grid-cols-1",
}

func (r *Renderer) renderValuePropGrid(_ *model.ComponentDefinition, p model.Props) (template.HTML, error) {
	layout, ok := gridLayouts[p.Text("layout", "")]
	if !ok {
		layout = gridLayouts["2x2"]
	}
	return execute(sectionTmpl, "value-prop-grid", sectionData{
		Title:    p.Text("title", "Why Choose Us"),
		Subtitle: p.Text("subtitle", ""),
		Rows:     rows(p.Text("valueProps", "")),
		Layout:   layout,
		Style:    style("background-color", safeColor(p.Text("backgroundColor", ""), "#ffffff")),
	})
}

func (r *Renderer) renderFeatureShowcase(_ *model.ComponentDefinition, p model.Props) (template.HTML, error) {
	layout := p.Text("layout", "alternating")
	switch layout {
	case "alternating", "vertical", "grid":
	default:
		layout = "alternating"
	}
	return execute(sectionTmpl, "feature-showcase", sectionData{
		Title:      p.Text("title", "Features"),
		Rows:       rows(p.Text("features", "")),
		Layout:     layout,
		ShowImages: p.Flag("showImages", false),
		Style:      style("background-color", safeColor(p.Text("backgroundColor", ""), "#f9fafb")),
	})
}

func (r *Renderer) renderTestimonial(_ *model.ComponentDefinition, p model.Props) (template.HTML, error) {
	img, _ := safeImageURL(p.Text("avatar", ""))
	return execute(sectionTmpl, "testimonial", sectionData{
		Variant:     p.Text("style", "quote"),
		Quote:       p.Text("quote", "This product changed how we work."),
		Author:      p.Text("author", "Happy Customer"),
		AuthorTitle: p.Text("title", ""),
		Image:       img,
		Align:       alignClass(p.Text("textAlign", ""), "text-center"),
	})
}

func (r *Renderer) renderCTASection(_ *model.ComponentDefinition, p model.Props) (template.HTML, error) {
	return execute(sectionTmpl, "cta-section", sectionData{
		Variant:       p.Text("style", "simple"),
		Title:         p.Text("title", "Ready to get started?"),
		Subtitle:      p.Text("subtitle", ""),
		Eyebrow:       p.Text("urgencyText", ""),
		ButtonText:    p.Text("primaryButtonText", "Get Started"),
		ButtonLink:    p.Text("primaryButtonLink", "#"),
		SecondaryText: p.Text("secondaryButtonText", ""),
		SecondaryLink: p.Text("secondaryButtonLink", "#"),
		Footnote:      p.Text("riskReversal", ""),
		Style:         heroStyle(p, "#1f2937", "#ffffff"),
	})
}

func (r *Renderer) renderConversionForm(_ *model.ComponentDefinition, p model.Props) (template.HTML, error) {
	fields := rows(p.Text("fields", "Email Address|email|required"))
	return execute(sectionTmpl, "conversion-form", sectionData{
		Variant:    p.Text("formType", "signup"),
		Title:      p.Text("title", "Sign Up"),
		Subtitle:   p.Text("subtitle", ""),
		Rows:       fields,
		ButtonText: p.Text("submitText", "Submit"),
		Footnote:   p.Text("privacyText", ""),
		Style:      style("background-color", safeColor(p.Text("backgroundColor", ""), "#ffffff")),
	})
}
