package exitintent

import (
	"net/http"
	"sync"
	"time"
)

// CookieName is the flag shared by every detector on a site.
const CookieName = "exitIntentShown"

// Suppression persists the "already shown" flag outside the detector.
type Suppression interface {
	Suppressed() bool
	Suppress(ttl time.Duration) error
	Clear() error
}

// MemorySuppression keeps the flag in process memory.
type MemorySuppression struct {
	mu      sync.Mutex
	clock   Clock
	expires time.Time
}

func NewMemorySuppression(clock Clock) *MemorySuppression {
	if clock == nil {
		clock = SystemClock
	}
	return &MemorySuppression{clock: clock}
}

func (m *MemorySuppression) Suppressed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.expires.IsZero() && m.clock.Now().Before(m.expires)
}

func (m *MemorySuppression) Suppress(ttl time.Duration) error {
	m.mu.Lock()
	m.expires = m.clock.Now().Add(ttl)
	m.mu.Unlock()
	return nil
}

func (m *MemorySuppression) Clear() error {
	m.mu.Lock()
	m.expires = time.Time{}
	m.mu.Unlock()
	return nil
}

// CookieSuppression reads the flag from a request cookie and buffers
// changes until Flush writes them to a response.
type CookieSuppression struct {
	mu      sync.Mutex
	clock   Clock
	present bool
	pending []*http.Cookie
}

// CookieSuppressionFromRequest snapshots the flag carried by r.
func CookieSuppressionFromRequest(r *http.Request, clock Clock) *CookieSuppression {
	if clock == nil {
		clock = SystemClock
	}
	c := &CookieSuppression{clock: clock}
	if ck, err := r.Cookie(CookieName); err == nil && ck.Value == "true" {
		c.present = true
	}
	return c
}

func (c *CookieSuppression) Suppressed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.present
}

func (c *CookieSuppression) Suppress(ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.present = true
	c.pending = append(c.pending, &http.Cookie{
		Name:     CookieName,
		Value:    "true",
		Path:     "/",
		Expires:  c.clock.Now().Add(ttl).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (c *CookieSuppression) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.present = false
	c.pending = append(c.pending, &http.Cookie{
		Name:    CookieName,
		Value:   "",
		Path:    "/",
		Expires: time.Unix(0, 0).UTC(),
		MaxAge:  -1,
	})
	return nil
}

// Flush writes buffered cookie changes to w. Only the latest change matters
// to the browser, so only that one is sent.
func (c *CookieSuppression) Flush(w http.ResponseWriter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.pending) == 0 {
		return
	}
	http.SetCookie(w, c.pending[len(c.pending)-1])
	c.pending = nil
}
