package renderer

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"slices"
	"sync"
	"time"

	"go-page-builder/internal/exitintent"
	"go-page-builder/internal/model"
)

// Variant selects the content of an exit-intent modal.
type Variant string

const (
	VariantDiscount   Variant = "discount"
	VariantFreebie    Variant = "freebie"
	VariantNewsletter Variant = "newsletter"
	VariantDemo       Variant = "demo"
	VariantSurvey     Variant = "survey"
	VariantSocial     Variant = "social"
)

var variantsByKind = map[model.BuiltinKind]Variant{
	model.BuiltinExitDiscount:   VariantDiscount,
	model.BuiltinExitFreebie:    VariantFreebie,
	model.BuiltinExitNewsletter: VariantNewsletter,
	model.BuiltinExitDemo:       VariantDemo,
	model.BuiltinExitSurvey:     VariantSurvey,
	model.BuiltinExitSocial:     VariantSocial,
}

// VariantOf returns the modal variant for a built-in kind. Funnel kinds and
// page sections have none.
func VariantOf(kind model.BuiltinKind) (Variant, bool) {
	v, ok := variantsByKind[kind]
	return v, ok
}

// hasForm reports whether the variant collects an email address.
func (v Variant) hasForm() bool {
	switch v {
	case VariantSurvey, VariantSocial:
		return false
	}
	return true
}

// ModalState is the lifecycle position of a Modal.
type ModalState int

const (
	ModalClosed ModalState = iota
	ModalOpen
	ModalSubmitting
	ModalSubmitted
)

func (s ModalState) String() string {
	switch s {
	case ModalOpen:
		return "open"
	case ModalSubmitting:
		return "submitting"
	case ModalSubmitted:
		return "submitted"
	}
	return "closed"
}

var (
	ErrModalNotOpen  = errors.New("modal is not open")
	ErrNoForm        = errors.New("modal variant has no form")
	ErrNoSurvey      = errors.New("modal variant has no survey")
	ErrUnknownAnswer = errors.New("answer is not one of the survey options")
)

const (
	DefaultSubmitDelay = time.Second
	DefaultAutoClose   = 2 * time.Second
)

// ModalOptions tunes modal timing. Zero durations use the defaults.
type ModalOptions struct {
	SubmitDelay time.Duration
	AutoClose   time.Duration
	Clock       exitintent.Clock
}

func (o ModalOptions) withDefaults() ModalOptions {
	if o.SubmitDelay <= 0 {
		o.SubmitDelay = DefaultSubmitDelay
	}
	if o.AutoClose <= 0 {
		o.AutoClose = DefaultAutoClose
	}
	if o.Clock == nil {
		o.Clock = exitintent.SystemClock
	}
	return o
}

// Modal is the overlay shown when an exit-intent detector fires. A
// submitted modal closes itself once AutoClose has elapsed.
type Modal struct {
	mu          sync.Mutex
	id          string
	variant     Variant
	props       model.Props
	opts        ModalOptions
	state       ModalState
	email       string
	answer      string
	submittedAt time.Time
}

// NewModal returns a closed modal for the instance id.
func NewModal(id string, v Variant, p model.Props, opts ModalOptions) *Modal {
	return &Modal{id: id, variant: v, props: p.Clone(), opts: opts.withDefaults()}
}

func (m *Modal) Variant() Variant { return m.variant }

// Open shows the modal with a fresh form.
func (m *Modal) Open() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = ModalOpen
	m.email = ""
	m.answer = ""
}

func (m *Modal) Close() {
	m.mu.Lock()
	m.state = ModalClosed
	m.mu.Unlock()
}

func (m *Modal) State() ModalState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stateLocked()
}

func (m *Modal) stateLocked() ModalState {
	if m.state == ModalSubmitted && m.opts.Clock.Now().Sub(m.submittedAt) >= m.opts.AutoClose {
		m.state = ModalClosed
	}
	return m.state
}

// Email returns the address captured by the last submission.
func (m *Modal) Email() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.email
}

// Answer returns the survey option the visitor picked, if any.
func (m *Modal) Answer() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.answer
}

// Submit captures email and blocks for the submit delay. A cancelled
// context returns the modal to Open.
func (m *Modal) Submit(ctx context.Context, email string) error {
	m.mu.Lock()
	if !m.variant.hasForm() {
		m.mu.Unlock()
		return ErrNoForm
	}
	if m.stateLocked() != ModalOpen {
		m.mu.Unlock()
		return ErrModalNotOpen
	}
	m.state = ModalSubmitting
	m.email = email
	m.mu.Unlock()

	timer := time.NewTimer(m.opts.SubmitDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		m.mu.Lock()
		if m.state == ModalSubmitting {
			m.state = ModalOpen
		}
		m.mu.Unlock()
		return fmt.Errorf("submitting modal %s: %w", m.id, ctx.Err())
	case <-timer.C:
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != ModalSubmitting {
		// Closed while the submission was in flight.
		return nil
	}
	m.state = ModalSubmitted
	m.submittedAt = m.opts.Clock.Now()
	return nil
}

// Choose records a survey answer and closes the modal.
func (m *Modal) Choose(option string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.variant != VariantSurvey {
		return ErrNoSurvey
	}
	if m.stateLocked() != ModalOpen {
		return ErrModalNotOpen
	}
	if !slices.Contains(m.surveyOptions(), option) {
		return fmt.Errorf("%q: %w", option, ErrUnknownAnswer)
	}
	m.answer = option
	m.state = ModalClosed
	return nil
}

func (m *Modal) surveyOptions() []string {
	opts := lines(m.props.Text("options", ""))
	if len(opts) == 0 {
		opts = []string{
			"Too expensive",
			"Not what I was looking for",
			"Need to think about it",
			"Found a better alternative",
			"Just browsing",
		}
	}
	return opts
}

var modalTmpl = template.Must(template.New("modal").Funcs(funcs).Parse(`
{{define "close"}}<button type="button" class="absolute right-2 top-2 h-8 w-8" data-modal-close aria-label="Close">&times;</button>{{end}}

{{define "form"}}<form class="space-y-4" data-modal-form>
<label class="block text-sm font-medium" for="email-{{.ID}}">{{.EmailLabel}}</label>
<input id="email-{{.ID}}" name="email" type="email" required placeholder="{{.Placeholder}}"{{if .Submitting}} disabled{{end}}>
<button type="submit" class="w-full btn bg-{{.Tone}}-600"{{if .Submitting}} disabled{{end}}>{{if .Submitting}}{{.BusyText}}{{else}}{{.ButtonText}}{{end}}</button>
{{- if .Footnote}}<p class="text-xs text-center text-gray-500">{{.Footnote}}</p>{{end}}
</form>{{end}}

{{define "success"}}<div class="text-center py-4"><h3 class="font-semibold text-green-600">{{.SuccessTitle}}</h3><p class="text-sm text-gray-600">{{.SuccessText}}</p></div>{{end}}

{{define "checklist"}}<div class="bg-gray-50 p-4 rounded-lg"><h4 class="font-medium mb-2">{{.ListTitle}}</h4><ul class="text-sm text-gray-600 space-y-1">{{range .Items}}<li><span class="text-green-500 mr-2">&#10003;</span>{{.}}</li>{{end}}</ul></div>{{end}}

{{define "modal"}}<div class="exit-intent-modal fixed inset-0 bg-black bg-opacity-50 flex items-center justify-center z-50 p-4" data-modal-id="{{.ID}}" data-modal-variant="{{.Variant}}" data-modal-state="{{.State}}">
<div class="card w-full max-w-md mx-auto bg-white rounded-lg">
<div class="text-center bg-{{.Tone}}-50 relative p-6">{{template "close" .}}
{{- if .Badge}}<span class="badge animate-pulse mb-2">{{.Badge}}</span>{{end}}
<h2 class="text-2xl text-{{.Tone}}-600">{{.Title}}</h2>
<p class="text-sm text-gray-600">{{.Subtitle}}</p>
</div>
<div class="p-6">
{{- if .Submitted}}{{template "success" .}}
{{- else if eq .Variant "survey"}}<div class="space-y-3">{{range .Items}}<button type="button" class="w-full text-left btn btn-outline" data-modal-answer="{{.}}">{{.}}</button>{{end}}</div>
<div class="mt-4 pt-4 border-t"><button type="button" class="w-full text-gray-500" data-modal-close>Skip</button></div>
{{- else if eq .Variant "social"}}<div class="space-y-3">{{range .Links}}<a class="w-full btn {{.C}}" href="{{.B}}" target="_blank" rel="noopener">{{.A}}</a>{{end}}</div>
<div class="mt-4 pt-4 border-t"><button type="button" class="w-full text-gray-500" data-modal-close>Maybe Later</button></div>
{{- else}}
{{- if .Description}}<p class="text-sm text-gray-600 mb-4 text-center">{{.Description}}</p>{{end}}
{{- if .Items}}{{template "checklist" .}}{{end}}
{{template "form" .}}
{{- end}}
</div></div></div>{{end}}
`))

type modalData struct {
	ID           string
	Variant      Variant
	State        ModalState
	Tone         string
	Badge        string
	Title        string
	Subtitle     string
	Description  string
	ListTitle    string
	Items        []string
	Links        []row
	EmailLabel   string
	Placeholder  string
	ButtonText   string
	BusyText     string
	Footnote     string
	SuccessTitle string
	SuccessText  string
	Submitting   bool
	Submitted    bool
}

// HTML renders the modal in its current state. A closed modal renders
// nothing.
func (m *Modal) HTML() (template.HTML, error) {
	m.mu.Lock()
	state := m.stateLocked()
	m.mu.Unlock()
	if state == ModalClosed {
		return "", nil
	}
	data := m.content()
	data.ID = m.id
	data.Variant = m.variant
	data.State = state
	data.Submitting = state == ModalSubmitting
	data.Submitted = state == ModalSubmitted
	return execute(modalTmpl, "modal", data)
}

func (m *Modal) content() modalData {
	p := m.props
	d := modalData{EmailLabel: "Email Address"}
	switch m.variant {
	case VariantFreebie:
		d.Tone = "blue"
		d.Title = p.Text("title", "Free Resource")
		d.Subtitle = p.Text("subtitle", "Download our exclusive guide before you leave!")
		d.ListTitle = "What you'll get:"
		d.Items = linesOr(p.Text("benefits", ""), "Comprehensive guide (PDF)", "Actionable tips and strategies", "Bonus templates included")
		d.Placeholder = "Enter your email for instant download"
		d.ButtonText, d.BusyText = "Download Free Guide", "Sending..."
		d.Footnote = "No spam. Unsubscribe anytime."
		d.SuccessTitle, d.SuccessText = "Download Sent!", "Check your email for the download link"
	case VariantNewsletter:
		d.Tone = "purple"
		d.Title = p.Text("title", "Stay Connected")
		d.Subtitle = p.Text("subtitle", "Get weekly tips and insights delivered to your inbox")
		d.Description = p.Text("description", "Join 10,000+ subscribers who get actionable insights every week")
		d.Placeholder = "Enter your email address"
		d.ButtonText, d.BusyText = "Subscribe Now", "Subscribing..."
		d.Footnote = "Weekly insights. No spam. Unsubscribe anytime."
		d.SuccessTitle, d.SuccessText = "Welcome Aboard!", "You'll receive your first newsletter soon"
	case VariantDemo:
		d.Tone = "green"
		d.Title = p.Text("title", "Quick Demo?")
		d.Subtitle = p.Text("subtitle", "See how it works in just 5 minutes")
		d.ListTitle = "What you'll see:"
		d.Items = linesOr(p.Text("demoPoints", ""), "Live product walkthrough", "Key features demonstration", "Q&A with product expert")
		d.EmailLabel = "Work Email"
		d.Placeholder = "Enter your work email"
		d.ButtonText, d.BusyText = "Schedule 5-Min Demo", "Scheduling..."
		d.Footnote = "No commitment required. Cancel anytime."
		d.SuccessTitle, d.SuccessText = "Demo Scheduled!", "Check your email for calendar invite"
	case VariantSurvey:
		d.Tone = "yellow"
		d.Title = p.Text("title", "Quick Question")
		d.Subtitle = p.Text("subtitle", "Help us improve - what made you want to leave?")
		d.Items = m.surveyOptions()
	case VariantSocial:
		d.Tone = "indigo"
		d.Title = p.Text("title", "Follow Us")
		d.Subtitle = p.Text("subtitle", "Stay updated with our latest content and offers")
		d.Links = []row{
			{A: "Follow on Facebook", B: p.Text("facebookUrl", "#"), C: "bg-blue-600"},
			{A: "Follow on Twitter", B: p.Text("twitterUrl", "#"), C: "bg-blue-400"},
			{A: "Follow on LinkedIn", B: p.Text("linkedinUrl", "#"), C: "bg-blue-700"},
			{A: "Follow on Instagram", B: p.Text("instagramUrl", "#"), C: "bg-pink-600"},
		}
	default:
		discount := p.Text("discount", "20% OFF")
		d.Tone = "red"
		d.Badge = p.Text("urgencyText", "WAIT! Don't Leave Yet")
		d.Title = discount
		d.Subtitle = p.Text("subtitle", "Get an exclusive discount before you go!")
		d.Placeholder = "Enter your email for the discount"
		d.ButtonText, d.BusyText = "Claim "+discount, "Sending..."
		d.Footnote = p.Text("terms", "Valid for 24 hours. One-time use only.")
		d.SuccessTitle, d.SuccessText = "Discount Sent!", "Check your email for the discount code"
	}
	return d
}

func linesOr(s string, fallback ...string) []string {
	if l := lines(s); len(l) > 0 {
		return l
	}
	return fallback
}
