// Package exitintent detects when a visitor is about to leave a page.
//
// A Detector starts Dormant, becomes Armed once its activation delay has
// elapsed, and latches into Triggered the first time a qualifying signal
// arrives. Triggering persists a suppression flag so later page views stay
// quiet until the flag expires.
package exitintent

import (
	"sync"
	"time"
)

// State is the detector's lifecycle position.
type State int

const (
	Dormant State = iota
	Armed
	Triggered
)

func (s State) String() string {
	switch s {
	case Armed:
		return "armed"
	case Triggered:
		return "triggered"
	}
	return "dormant"
}

const (
	DefaultThreshold    = 20
	DefaultDelay        = time.Second
	DefaultCookieExpire = 1
)

// Options configures a Detector. Zero values fall back to the defaults.
type Options struct {
	// Threshold is the distance in pixels from the top edge that counts as
	// leaving. Touch signals use twice this value.
	Threshold int
	// Delay is how long after activation the detector arms. A negative
	// delay arms immediately.
	Delay time.Duration
	// CookieExpire is the suppression lifetime in days.
	CookieExpire int
	// Aggressive also treats tab hiding and unload as exit intent.
	Aggressive bool
	// OnExitIntent runs once, when the detector triggers.
	OnExitIntent func()
}

func (o Options) withDefaults() Options {
	if o.Threshold <= 0 {
		o.Threshold = DefaultThreshold
	}
	if o.Delay < 0 {
		o.Delay = 0
	} else if o.Delay == 0 {
		o.Delay = DefaultDelay
	}
	if o.CookieExpire <= 0 {
		o.CookieExpire = DefaultCookieExpire
	}
	return o
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}

// Detector is safe for concurrent use; signals are processed one at a time.
type Detector struct {
	mu          sync.Mutex
	opts        Options
	clock       Clock
	store       Suppression
	activatedAt time.Time
	active      bool
	suppressed  bool
	triggered   bool
}

// New returns a Dormant detector. A nil clock means the wall clock.
func New(opts Options, store Suppression, clock Clock) *Detector {
	if clock == nil {
		clock = SystemClock
	}
	if store == nil {
		store = NewMemorySuppression(clock)
	}
	return &Detector{opts: opts.withDefaults(), clock: clock, store: store}
}

// Options returns the effective configuration.
func (d *Detector) Options() Options {
	return d.opts
}

// Activate mounts the detector. The suppression flag is read once here; a
// suppressed detector never arms for the rest of its lifetime.
func (d *Detector) Activate() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.active {
		return
	}
	d.active = true
	d.activatedAt = d.clock.Now()
	d.suppressed = d.store.Suppressed()
}

// Deactivate unmounts the detector. Signals are ignored afterwards.
func (d *Detector) Deactivate() {
	d.mu.Lock()
	d.active = false
	d.mu.Unlock()
}

// State reports the current state.
func (d *Detector) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stateLocked()
}

func (d *Detector) stateLocked() State {
	if d.triggered {
		return Triggered
	}
	if !d.active || d.suppressed {
		return Dormant
	}
	if d.clock.Now().Sub(d.activatedAt) < d.opts.Delay {
		return Dormant
	}
	return Armed
}

// PointerLeave handles the pointer leaving the document. It triggers when
// the pointer exits near the top edge while moving upward.
func (d *Detector) PointerLeave(clientY, movementY float64) bool {
	return d.signal(func() bool {
		return clientY <= float64(d.opts.Threshold) && movementY < 0
	})
}

// TouchStart handles a touch that begins near the top of the viewport.
func (d *Detector) TouchStart(clientY float64) bool {
	return d.signal(func() bool {
		return clientY <= float64(2*d.opts.Threshold)
	})
}

// VisibilityChange handles the page becoming hidden. Only aggressive
// detectors react to it.
func (d *Detector) VisibilityChange(hidden bool) bool {
	return d.signal(func() bool {
		return d.opts.Aggressive && hidden
	})
}

// BeforeUnload handles imminent navigation away. It returns true when the
// caller should ask the browser for its native leave-confirmation prompt.
func (d *Detector) BeforeUnload() bool {
	return d.signal(func() bool {
		return d.opts.Aggressive
	})
}

// signal runs qualifies against an armed detector and fires on success.
func (d *Detector) signal(qualifies func() bool) bool {
	d.mu.Lock()
	if d.stateLocked() != Armed || !qualifies() {
		d.mu.Unlock()
		return false
	}
	cb := d.fireLocked()
	d.mu.Unlock()
	if cb != nil {
		cb()
	}
	return true
}

// Trigger fires the detector programmatically, subject to the same
// one-shot latch. It does not require the detector to be armed.
func (d *Detector) Trigger() bool {
	d.mu.Lock()
	if d.triggered {
		d.mu.Unlock()
		return false
	}
	cb := d.fireLocked()
	d.mu.Unlock()
	if cb != nil {
		cb()
	}
	return true
}

func (d *Detector) fireLocked() func() {
	d.triggered = true
	// A failed write only means the visitor may see the prompt again.
	_ = d.store.Suppress(time.Duration(d.opts.CookieExpire) * 24 * time.Hour)
	return d.opts.OnExitIntent
}

// Reset clears the latch and the persisted flag so the detector can fire
// again.
func (d *Detector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.triggered = false
	d.suppressed = false
	_ = d.store.Clear()
}
