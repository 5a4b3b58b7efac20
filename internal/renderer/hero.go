package renderer

import (
	"html/template"

	"go-page-builder/internal/model"
)

var heroTmpl = template.Must(template.New("hero").Funcs(funcs).Parse(`
{{define "buttons"}}{{if or .ButtonText .SecondaryText}}<div class="flex flex-col sm:flex-row gap-4 justify-center">
{{- if .ButtonText}}<a class="btn btn-primary" href="{{.ButtonLink}}">{{.ButtonText}}</a>{{end -}}
{{- if .SecondaryText}}<a class="btn btn-outline" href="{{.SecondaryLink}}">{{.SecondaryText}}</a>{{end -}}
</div>{{end}}{{end}}

{{define "hero-classic"}}<section class="py-20 px-6 {{.Align}}" style="{{.Style}}"><div class="max-w-4xl mx-auto">
<h1 class="text-4xl md:text-6xl font-bold mb-6">{{.Title}}</h1>
{{- if .Subtitle}}<p class="text-xl md:text-2xl mb-8 opacity-90">{{.Subtitle}}</p>{{end}}
{{template "buttons" .}}</div></section>{{end}}

{{define "hero-trust"}}<section class="py-20 px-6 text-center" style="{{.Style}}"><div class="max-w-4xl mx-auto">
<h1 class="text-4xl md:text-5xl font-bold mb-6">{{.Title}}</h1>
{{- if .Subtitle}}<p class="text-xl mb-8 opacity-90">{{.Subtitle}}</p>{{end}}
{{- if .Items}}<ul class="flex flex-wrap justify-center gap-4 mb-8 text-sm">{{range .Items}}<li>{{.}}</li>{{end}}</ul>{{end}}
{{- if .Quote}}<blockquote class="italic mb-8">&ldquo;{{.Quote}}&rdquo;{{if .QuoteAuthor}}<footer class="not-italic text-sm mt-2">{{.QuoteAuthor}}</footer>{{end}}</blockquote>{{end}}
{{template "buttons" .}}</div></section>{{end}}

{{define "hero-urgency"}}<section class="py-20 px-6 text-center" style="{{.Style}}"><div class="max-w-4xl mx-auto">
{{- if .Eyebrow}}<p class="inline-block px-4 py-1 rounded-full font-semibold mb-6" style="{{.AccentStyle}}">{{.Eyebrow}}</p>{{end}}
<h1 class="text-4xl md:text-5xl font-bold mb-6">{{.Title}}</h1>
{{- if .Subtitle}}<p class="text-xl mb-6 opacity-90">{{.Subtitle}}</p>{{end}}
{{- range .Items}}<p class="text-sm font-medium mb-2">{{.}}</p>{{end}}
{{template "buttons" .}}</div></section>{{end}}

{{define "hero-benefit"}}<section class="py-20 px-6 text-center" style="{{.Style}}"><div class="max-w-4xl mx-auto">
{{- if .Eyebrow}}<p class="text-lg font-semibold uppercase tracking-wide mb-4">{{.Eyebrow}}</p>{{end}}
<h1 class="text-4xl md:text-5xl font-bold mb-6">{{.Title}}</h1>
{{- if .Subtitle}}<p class="text-xl mb-6 opacity-90">{{.Subtitle}}</p>{{end}}
{{- if .Items}}<ul class="inline-block text-left mb-8">{{range .Items}}<li>&#10003; {{.}}</li>{{end}}</ul>{{end}}
{{- if .Quote}}<p class="italic mb-8 opacity-90">{{.Quote}}</p>{{end}}
{{template "buttons" .}}</div></section>{{end}}

{{define "hero-story"}}<section class="py-20 px-6" style="{{.Style}}"><div class="max-w-3xl mx-auto">
{{- if .Eyebrow}}<p class="text-xl italic mb-6 opacity-90">{{.Eyebrow}}</p>{{end}}
{{- if .Title}}<h1 class="text-4xl font-bold mb-6">{{.Title}}</h1>{{end}}
{{- if .Subtitle}}<p class="text-lg mb-6">{{.Subtitle}}</p>{{end}}
{{- range .Items}}<p class="font-semibold mb-4">{{.}}</p>{{end}}
{{template "buttons" .}}</div></section>{{end}}
`))

type heroData struct {
	Title         string
	Subtitle      string
	Eyebrow       string
	Items         []string
	Quote         string
	QuoteAuthor   string
	ButtonText    string
	ButtonLink    string
	SecondaryText string
	SecondaryLink string
	Align         string
	Style         template.CSS
	AccentStyle   template.CSS
}

func heroStyle(p model.Props, bg, fg string) template.CSS {
	return style(
		"background-color", safeColor(p.Text("backgroundColor", ""), bg),
		"color", safeColor(p.Text("textColor", ""), fg),
	)
}

func (r *Renderer) renderHeroClassic(_ *model.ComponentDefinition, p model.Props) (template.HTML, error) {
	decls := []string{
		"background-color", safeColor(p.Text("backgroundColor", ""), "#1f2937"),
		"color", safeColor(p.Text("textColor", ""), "#ffffff"),
	}
	if img, ok := safeImageURL(p.Text("backgroundImage", "")); ok {
		decls = append(decls,
			"background-image", `url("`+img+`")`,
			"background-size", "cover",
			"background-position", "center",
		)
	}
	return execute(heroTmpl, "hero-classic", heroData{
		Title:         p.Text("title", "Transform Your Business Today"),
		Subtitle:      p.Text("subtitle", ""),
		ButtonText:    p.Text("buttonText", ""),
		ButtonLink:    p.Text("buttonLink", "#"),
		SecondaryText: p.Text("secondaryButtonText", ""),
		SecondaryLink: p.Text("secondaryButtonLink", "#"),
		Align:         alignClass(p.Text("textAlign", ""), "text-center"),
		Style:         style(decls...),
	})
}

func (r *Renderer) renderHeroTrust(_ *model.ComponentDefinition, p model.Props) (template.HTML, error) {
	return execute(heroTmpl, "hero-trust", heroData{
		Title:       p.Text("title", "Trusted by Businesses Worldwide"),
		Subtitle:    p.Text("subtitle", ""),
		Items:       lines(p.Text("trustIndicators", "")),
		Quote:       p.Text("testimonialQuote", ""),
		QuoteAuthor: p.Text("testimonialAuthor", ""),
		ButtonText:  p.Text("buttonText", ""),
		ButtonLink:  p.Text("buttonLink", "#"),
		Style:       heroStyle(p, "#ffffff", "#1f2937"),
	})
}

func (r *Renderer) renderHeroUrgency(_ *model.ComponentDefinition, p model.Props) (template.HTML, error) {
	var items []string
	for _, key := range []string{"countdown", "scarcityText"} {
		if v := p.Text(key, ""); v != "" {
			items = append(items, v)
		}
	}
	return execute(heroTmpl, "hero-urgency", heroData{
		Eyebrow:     p.Text("urgencyText", ""),
		Title:       p.Text("title", "Don't Miss Out - This Deal Expires Soon!"),
		Subtitle:    p.Text("subtitle", ""),
		Items:       items,
		ButtonText:  p.Text("buttonText", ""),
		ButtonLink:  p.Text("buttonLink", "#"),
		Style:       heroStyle(p, "#dc2626", "#ffffff"),
		AccentStyle: style("background-color", safeColor(p.Text("accentColor", ""), "#fbbf24"), "color", "#1f2937"),
	})
}

func (r *Renderer) renderHeroBenefit(_ *model.ComponentDefinition, p model.Props) (template.HTML, error) {
	return execute(heroTmpl, "hero-benefit", heroData{
		Eyebrow:    p.Text("benefit", ""),
		Title:      p.Text("title", "Automate Your Workflow"),
		Subtitle:   p.Text("description", ""),
		Items:      lines(p.Text("benefits", "")),
		Quote:      p.Text("proof", ""),
		ButtonText: p.Text("buttonText", ""),
		ButtonLink: p.Text("buttonLink", "#"),
		Style:      heroStyle(p, "#059669", "#ffffff"),
	})
}

func (r *Renderer) renderHeroStory(_ *model.ComponentDefinition, p model.Props) (template.HTML, error) {
	var items []string
	if v := p.Text("callToAction", ""); v != "" {
		items = append(items, v)
	}
	return execute(heroTmpl, "hero-story", heroData{
		Eyebrow:    p.Text("storyHook", ""),
		Title:      p.Text("title", p.Text("transformation", "")),
		Subtitle:   p.Text("emotionalBenefit", ""),
		Items:      items,
		ButtonText: p.Text("buttonText", ""),
		ButtonLink: p.Text("buttonLink", "#"),
		Style:      heroStyle(p, "#4f46e5", "#ffffff"),
	})
}
