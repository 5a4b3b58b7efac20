package renderer

import (
	"html/template"

	"go-page-builder/internal/model"
)

// exitCard describes the canvas placeholder of a single-offer exit-intent
// component. The modal itself only appears once the detector fires.
type exitCard struct {
	label      string
	tone       string
	triggerKey string
	triggerDef string
	delay      float64
	cookie     float64
	// showThreshold swaps the cookie lifetime for the threshold in the
	// detail line.
	showThreshold bool
}

var exitCards = map[model.BuiltinKind]exitCard{
	model.BuiltinExitDiscount:   {label: "Discount Offer", tone: "orange", triggerKey: "discount", triggerDef: "20% OFF", delay: 3000, cookie: 1, showThreshold: true},
	model.BuiltinExitFreebie:    {label: "Free Resource", tone: "blue", triggerKey: "title", triggerDef: "Free Resource", delay: 5000, cookie: 7},
	model.BuiltinExitNewsletter: {label: "Newsletter", tone: "purple", triggerKey: "title", triggerDef: "Stay Connected", delay: 10000, cookie: 30},
	model.BuiltinExitDemo:       {label: "Demo Request", tone: "green", triggerKey: "title", triggerDef: "Quick Demo?", delay: 7000, cookie: 3},
	model.BuiltinExitSurvey:     {label: "Survey", tone: "yellow", triggerKey: "title", triggerDef: "Quick Question", delay: 2000, cookie: 7},
	model.BuiltinExitSocial:     {label: "Social Follow", tone: "indigo", triggerKey: "title", triggerDef: "Follow Us", delay: 15000, cookie: 14},
}

var exitIntentTmpl = template.Must(template.New("exit-intent").Parse(`
{{define "card"}}<div class="exit-intent-card p-4 border-2 border-dashed border-{{.Tone}}-300 rounded-lg bg-{{.Tone}}-50"><div class="text-center">
<h3 class="font-semibold text-{{.Tone}}-800 mb-2">Exit Intent: {{.Label}}</h3>
<p class="text-sm text-{{.Tone}}-600 mb-2">Triggers when users try to leave: {{.Trigger}}</p>
<p class="text-xs text-{{.Tone}}-500">{{.Detail}}</p>
</div></div>{{end}}

{{define "funnel"}}<div class="exit-intent-funnel p-6 border-2 border-{{.Tone}}-200 rounded-lg bg-{{.Tone}}-50">
<h3 class="font-bold text-{{.Tone}}-800 mb-3">Exit Intent: {{.Label}}</h3>
<div class="grid grid-cols-2 gap-4">{{range .Rows}}<div class="bg-white p-3 rounded"><p class="text-sm font-medium">{{.A}}</p><p class="text-xs text-gray-600">{{.B}}</p></div>{{end}}</div>
</div>{{end}}
`))

type exitCardData struct {
	Label   string
	Tone    string
	Trigger string
	Detail  string
}

func (r *Renderer) renderExitCard(def *model.ComponentDefinition, p model.Props) (template.HTML, error) {
	kind, _ := builtinKindOf(def)
	card := exitCards[kind]
	detail := "Delay: " + formatNumber(p.Number("delay", card.delay)) + "ms | "
	if card.showThreshold {
		detail += "Threshold: " + formatNumber(p.Number("threshold", 20)) + "px"
	} else {
		detail += "Cookie: " + formatNumber(p.Number("cookieExpire", card.cookie)) + " days"
	}
	return execute(exitIntentTmpl, "card", exitCardData{
		Label:   card.label,
		Tone:    card.tone,
		Trigger: p.Text(card.triggerKey, card.triggerDef),
		Detail:  detail,
	})
}

type exitFunnelData struct {
	Label string
	Tone  string
	Rows  []row
}

func (r *Renderer) renderExitFunnel(def *model.ComponentDefinition, p model.Props) (template.HTML, error) {
	kind, _ := builtinKindOf(def)
	var data exitFunnelData
	switch kind {
	case model.BuiltinExitEcommerceFunnel:
		data = exitFunnelData{Label: "E-commerce Funnel", Tone: "red", Rows: []row{
			{A: "Primary Offer", B: p.Text("primaryOffer", "discount")},
			{A: "Discount", B: p.Text("discountAmount", "15%")},
			{A: "Minimum Order", B: p.Text("minimumOrder", "$50")},
			{A: "Social Proof", B: p.Text("socialProof", "Join 25,000+ happy customers")},
		}}
	case model.BuiltinExitSaaSFunnel:
		data = exitFunnelData{Label: "SaaS Funnel", Tone: "blue", Rows: []row{
			{A: "Primary Offer", B: p.Text("primaryOffer", "extended-trial")},
			{A: "Trial Extension", B: p.Text("trialExtension", "30 days")},
			{A: "Demo Length", B: p.Text("demoLength", "15 minutes")},
			{A: "Value Proposition", B: p.Text("valueProposition", "See why 10,000+ teams choose us")},
		}}
	default:
		data = exitFunnelData{Label: "Lead Generation Funnel", Tone: "green", Rows: []row{
			{A: "Primary Offer", B: p.Text("primaryOffer", "ebook")},
			{A: "Social Proof", B: p.Text("socialProof", "Downloaded by 5,000+")},
			{A: "Lead Magnet", B: p.Text("leadMagnetTitle", "Ultimate Guide to [Your Topic]")},
		}}
	}
	return execute(exitIntentTmpl, "funnel", data)
}
