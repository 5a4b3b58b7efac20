package main

import (
	"sync"
	"time"

	"go-page-builder/internal/exitintent"
	"go-page-builder/internal/renderer"

	"github.com/google/uuid"
)

// visitor is one page view with live exit-intent detectors.
type visitor struct {
	pageID      string
	mount       *renderer.Mount
	suppression *exitintent.CookieSuppression

	mu       sync.Mutex
	lastSeen time.Time
}

func (v *visitor) touch(now time.Time) {
	v.mu.Lock()
	v.lastSeen = now
	v.mu.Unlock()
}

func (v *visitor) idleSince(cutoff time.Time) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastSeen.Before(cutoff)
}

// addVisitor registers v under a fresh session id.
func (app *application) addVisitor(v *visitor) string {
	id := uuid.NewString()
	v.touch(app.clock.Now())
	app.visitorsMu.Lock()
	app.visitors[id] = v
	app.visitorsMu.Unlock()
	return id
}

// lookupVisitor returns the session for id if it belongs to pageID.
func (app *application) lookupVisitor(id, pageID string) (*visitor, bool) {
	app.visitorsMu.Lock()
	v, ok := app.visitors[id]
	app.visitorsMu.Unlock()
	if !ok || v.pageID != pageID {
		return nil, false
	}
	v.touch(app.clock.Now())
	return v, true
}

// sweep unmounts visitors idle for longer than the session TTL. A zero now
// evicts everyone.
func (app *application) sweep(now time.Time) int {
	app.visitorsMu.Lock()
	var evicted []*visitor
	for id, v := range app.visitors {
		if now.IsZero() || v.idleSince(now.Add(-app.cfg.Server.SessionTTL)) {
			evicted = append(evicted, v)
			delete(app.visitors, id)
		}
	}
	app.visitorsMu.Unlock()

	for _, v := range evicted {
		v.mount.Unmount()
	}
	return len(evicted)
}
