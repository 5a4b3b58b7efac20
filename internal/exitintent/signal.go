package exitintent

import "fmt"

// SignalType names a browser event forwarded to detectors.
type SignalType string

const (
	SignalPointerLeave     SignalType = "pointerleave"
	SignalTouchStart       SignalType = "touchstart"
	SignalVisibilityChange SignalType = "visibilitychange"
	SignalBeforeUnload     SignalType = "beforeunload"
)

// Signal is a browser event as reported by the page script.
type Signal struct {
	Type      SignalType `json:"type"`
	ClientY   float64    `json:"clientY"`
	MovementY float64    `json:"movementY"`
	Hidden    bool       `json:"hidden"`
}

// Validate rejects unknown signal types.
func (s Signal) Validate() error {
	switch s.Type {
	case SignalPointerLeave, SignalTouchStart, SignalVisibilityChange, SignalBeforeUnload:
		return nil
	}
	return fmt.Errorf("unknown signal type %q", s.Type)
}

// Handle routes s to the matching handler and reports whether it fired.
func (d *Detector) Handle(s Signal) bool {
	switch s.Type {
	case SignalPointerLeave:
		return d.PointerLeave(s.ClientY, s.MovementY)
	case SignalTouchStart:
		return d.TouchStart(s.ClientY)
	case SignalVisibilityChange:
		return d.VisibilityChange(s.Hidden)
	case SignalBeforeUnload:
		return d.BeforeUnload()
	}
	return false
}
