package renderer

import (
	"fmt"
	"html/template"
	"strings"
	"sync"
	"time"

	"go-page-builder/internal/exitintent"
	"go-page-builder/internal/model"
)

// ResolvedInstance pairs a placed instance with its catalog definition.
type ResolvedInstance struct {
	Instance   model.ComponentInstance
	Definition *model.ComponentDefinition
}

// MountOptions configures the exit-intent machinery of a Mount.
type MountOptions struct {
	// Suppression is shared by every detector of the mount. Nil means an
	// in-memory flag.
	Suppression exitintent.Suppression
	Clock       exitintent.Clock
	Modal       ModalOptions
}

// SignalResult reports what a forwarded browser event did.
type SignalResult struct {
	// Fired lists the instances whose detector triggered.
	Fired []string `json:"fired"`
	// Opened lists the instances whose modal opened.
	Opened []string `json:"opened"`
	// ConfirmLeave asks the page for the native leave-confirmation prompt.
	ConfirmLeave bool `json:"confirmLeave"`
}

type mounted struct {
	ResolvedInstance
	props    model.Props
	detector *exitintent.Detector
	modal    *Modal
}

// Mount is a rendered content structure with live exit-intent detectors,
// one per exit-intent instance.
type Mount struct {
	r     *Renderer
	mu    sync.Mutex
	items []*mounted
	byID  map[string]*mounted
}

// Mount renders instances and activates a detector for every exit-intent
// instance among them.
func (r *Renderer) Mount(instances []ResolvedInstance, opts MountOptions) *Mount {
	if opts.Clock == nil {
		opts.Clock = exitintent.SystemClock
	}
	if opts.Modal.Clock == nil {
		opts.Modal.Clock = opts.Clock
	}
	if opts.Suppression == nil {
		opts.Suppression = exitintent.NewMemorySuppression(opts.Clock)
	}

	m := &Mount{r: r, byID: make(map[string]*mounted, len(instances))}
	for _, ri := range instances {
		item := &mounted{ResolvedInstance: ri}
		if ri.Definition != nil {
			item.props = ri.Instance.Props.Resolve(ri.Definition.Schema)
		} else {
			item.props = ri.Instance.Props.Clone()
		}
		if ri.Definition != nil && ri.Definition.IsExitIntent() {
			m.attach(item, opts)
		}
		m.items = append(m.items, item)
		m.byID[ri.Instance.ID] = item
	}
	return m
}

func (m *Mount) attach(item *mounted, opts MountOptions) {
	p := item.props
	if kind, ok := builtinKindOf(item.Definition); ok && item.Definition.Kind == model.KindBuiltin {
		if v, ok := VariantOf(kind); ok {
			item.modal = NewModal(item.Instance.ID, v, p, opts.Modal)
		}
	}
	enabled := p.Flag("enabled", true)
	item.detector = exitintent.New(exitintent.Options{
		Threshold:    int(p.Number("threshold", exitintent.DefaultThreshold)),
		Delay:        time.Duration(p.Number("delay", 3000)) * time.Millisecond,
		CookieExpire: int(p.Number("cookieExpire", exitintent.DefaultCookieExpire)),
		Aggressive:   p.Flag("aggressive", false),
		OnExitIntent: func() {
			if enabled && item.modal != nil {
				item.modal.Open()
			}
		},
	}, opts.Suppression, opts.Clock)
	item.detector.Activate()
	m.r.logger.Debug("Exit intent detector mounted", "instance", item.Instance.ID, "delay", item.detector.Options().Delay)
}

// Signal forwards a browser event to every detector.
func (m *Mount) Signal(sig exitintent.Signal) (SignalResult, error) {
	var res SignalResult
	if err := sig.Validate(); err != nil {
		return res, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.items {
		if item.detector == nil || !item.detector.Handle(sig) {
			continue
		}
		res.Fired = append(res.Fired, item.Instance.ID)
		if item.modal != nil && item.modal.State() == ModalOpen {
			res.Opened = append(res.Opened, item.Instance.ID)
		}
		if sig.Type == exitintent.SignalBeforeUnload {
			res.ConfirmLeave = true
		}
	}
	if len(res.Fired) > 0 {
		m.r.logger.Info("Exit intent detected", "signal", sig.Type, "fired", res.Fired)
	}
	return res, nil
}

// Preview opens the modal of instance id without involving its detector.
func (m *Mount) Preview(id string) error {
	modal, ok := m.Modal(id)
	if !ok {
		return fmt.Errorf("instance %s has no exit-intent modal", id)
	}
	modal.Open()
	return nil
}

// Modal returns the modal of instance id.
func (m *Mount) Modal(id string) (*Modal, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.byID[id]
	if !ok || item.modal == nil {
		return nil, false
	}
	return item.modal, true
}

// Detector returns the detector of instance id.
func (m *Mount) Detector(id string) (*exitintent.Detector, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.byID[id]
	if !ok || item.detector == nil {
		return nil, false
	}
	return item.detector, true
}

// Render draws every instance in order followed by any open modals.
func (m *Mount) Render() template.HTML {
	m.mu.Lock()
	defer m.mu.Unlock()
	var b strings.Builder
	var modals []template.HTML
	for _, item := range m.items {
		var body template.HTML
		if item.Definition == nil {
			body, _ = execute(placeholderTmpl, "unknown", item.Instance.ComponentID)
		} else {
			body = m.r.Render(item.Definition, item.props)
		}
		fmt.Fprintf(&b, `<div class="component-instance" data-instance-id="%s">%s</div>`,
			template.HTMLEscapeString(item.Instance.ID), body)
		if item.modal == nil {
			continue
		}
		html, err := item.modal.HTML()
		if err != nil {
			m.r.logger.Error("Failed to render exit intent modal", "instance", item.Instance.ID, "error", err)
			continue
		}
		if html != "" {
			modals = append(modals, html)
		}
	}
	for _, html := range modals {
		b.WriteString(string(html))
	}
	return template.HTML(b.String())
}

// Unmount deactivates every detector and closes every modal.
func (m *Mount) Unmount() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.items {
		if item.detector != nil {
			item.detector.Deactivate()
		}
		if item.modal != nil {
			item.modal.Close()
		}
	}
}
