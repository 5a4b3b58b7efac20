package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"go-page-builder/internal/config"
	"go-page-builder/internal/exitintent"
	"go-page-builder/internal/model"
	"go-page-builder/internal/storage"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type testServer struct {
	app   *application
	h     http.Handler
	clock *fakeClock
	pages *storage.SQLiteStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := &config.Config{
		Server:  config.ServerConfig{SessionTTL: 30 * time.Minute},
		Exit:    config.ExitConfig{SubmitDelay: time.Millisecond, AutoClose: 2 * time.Second},
		Request: config.RequestConfig{Timeout: time.Minute},
	}
	pages, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "pages.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { pages.Close() })

	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	app, err := newApplication(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), pages, nil, clock)
	if err != nil {
		t.Fatalf("newApplication() error = %v", err)
	}
	app.refreshCatalog(context.Background())
	return &testServer{app: app, h: app.routes(), clock: clock, pages: pages}
}

func (ts *testServer) createPage(t *testing.T, published bool, instances ...model.ComponentInstance) *model.Page {
	t.Helper()
	page := &model.Page{
		WebsiteID:   "site-1",
		Title:       "Spring Sale",
		Slug:        "sale-" + time.Now().Format("150405.000000000"),
		IsPublished: published,
		Content:     model.ContentStructure{Components: instances},
	}
	if err := ts.pages.CreatePage(context.Background(), page); err != nil {
		t.Fatalf("CreatePage() error = %v", err)
	}
	return page
}

func (ts *testServer) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	ts.h.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) post(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.h.ServeHTTP(rec, req)
	return rec
}

var sessionAttr = regexp.MustCompile(`data-session-id="([^"]+)"`)

func sessionOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	m := sessionAttr.FindStringSubmatch(rec.Body.String())
	if m == nil {
		t.Fatalf("page has no session id:\n%s", rec.Body.String())
	}
	return m[1]
}

func discountInstance() model.ComponentInstance {
	return model.ComponentInstance{
		ID:          "exit-1",
		ComponentID: "exit-intent-discount",
		Type:        model.KindBuiltin,
		Props: model.Props{
			"delay":    model.NumberValue(3000),
			"discount": model.StringValue("25% OFF"),
		},
	}
}

func exitPointer(session string) map[string]any {
	return map[string]any{"session": session, "type": "pointerleave", "clientY": 5, "movementY": -12}
}

func TestHandlePageRequest(t *testing.T) {
	ts := newTestServer(t)
	page := ts.createPage(t, true,
		model.ComponentInstance{ID: "h-1", ComponentID: "heading", Props: model.Props{"text": model.StringValue("Big savings")}},
		discountInstance(),
	)

	rec := ts.get("/p/" + page.ID)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, want := range []string{
		"<title>Spring Sale</title>",
		"Big savings",
		`src="/static/exit-intent.js"`,
		`data-exit-intent-url="/p/` + page.ID + `/exit-intent"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Contains(body, "data-modal-id") || strings.Contains(body, "Preview") {
		t.Errorf("published page should render without modals or preview banner")
	}
	sessionOf(t, rec)
}

func TestHandlePageRequest_NotAvailable(t *testing.T) {
	ts := newTestServer(t)
	draft := ts.createPage(t, false)

	if rec := ts.get("/p/" + draft.ID); rec.Code != http.StatusNotFound {
		t.Errorf("unpublished page status = %d, want 404", rec.Code)
	}
	if rec := ts.get("/p/missing"); rec.Code != http.StatusNotFound {
		t.Errorf("missing page status = %d, want 404", rec.Code)
	}
}

func TestExitIntentFlow(t *testing.T) {
	ts := newTestServer(t)
	page := ts.createPage(t, true, discountInstance())
	session := sessionOf(t, ts.get("/p/"+page.ID))
	signalURL := "/p/" + page.ID + "/exit-intent/signal"

	// Still inside the activation delay.
	rec := ts.post(t, signalURL, exitPointer(session))
	var res signalResponse
	json.NewDecoder(rec.Body).Decode(&res)
	if len(res.Fired) != 0 {
		t.Fatalf("detector fired before its delay: %+v", res)
	}

	ts.clock.Advance(4 * time.Second)
	rec = ts.post(t, signalURL, map[string]any{"session": session, "type": "pointerleave", "clientY": 300, "movementY": -12})
	res = signalResponse{}
	json.NewDecoder(rec.Body).Decode(&res)
	if len(res.Fired) != 0 {
		t.Fatalf("pointer far from the top edge should not fire")
	}

	rec = ts.post(t, signalURL, exitPointer(session))
	if rec.Code != http.StatusOK {
		t.Fatalf("signal status = %d, body = %s", rec.Code, rec.Body.String())
	}
	res = signalResponse{}
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.Opened) != 1 || res.Opened[0] != "exit-1" || len(res.Modals) != 1 {
		t.Fatalf("signal result = %+v", res)
	}
	if !strings.Contains(string(res.Modals[0].HTML), "25% OFF") {
		t.Errorf("modal markup missing the discount: %s", res.Modals[0].HTML)
	}
	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == exitintent.CookieName {
			cookie = c
		}
	}
	if cookie == nil || cookie.Value != "true" {
		t.Fatalf("suppression cookie not set: %v", rec.Result().Cookies())
	}

	// One-shot: a second exit does nothing.
	rec = ts.post(t, signalURL, exitPointer(session))
	res = signalResponse{}
	json.NewDecoder(rec.Body).Decode(&res)
	if len(res.Fired) != 0 {
		t.Errorf("detector fired twice")
	}

	modalURL := "/p/" + page.ID + "/exit-intent/exit-1"
	rec = ts.post(t, modalURL+"/submit", map[string]string{"session": session, "email": "a@example.com"})
	if rec.Code != http.StatusOK {
		t.Fatalf("submit status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var mres modalResponse
	json.NewDecoder(rec.Body).Decode(&mres)
	if mres.State != "submitted" || len(mres.Modals) != 1 || !strings.Contains(string(mres.Modals[0].HTML), `data-modal-state="submitted"`) {
		t.Errorf("submit response = %+v", mres)
	}

	rec = ts.post(t, modalURL+"/submit", map[string]string{"session": session, "email": "b@example.com"})
	if rec.Code != http.StatusConflict {
		t.Errorf("second submit status = %d, want 409", rec.Code)
	}

	rec = ts.post(t, modalURL+"/close", map[string]string{"session": session})
	mres = modalResponse{}
	json.NewDecoder(rec.Body).Decode(&mres)
	if mres.State != "closed" || len(mres.Modals) != 1 || mres.Modals[0].HTML != "" {
		t.Errorf("close response = %+v", mres)
	}

	// A later visit carrying the cookie never arms.
	rec = ts.get("/p/"+page.ID, cookie)
	next := sessionOf(t, rec)
	ts.clock.Advance(10 * time.Second)
	rec = ts.post(t, signalURL, exitPointer(next))
	res = signalResponse{}
	json.NewDecoder(rec.Body).Decode(&res)
	if len(res.Fired) != 0 {
		t.Errorf("suppressed visitor saw the modal again")
	}
}

func TestSurveyChoose(t *testing.T) {
	ts := newTestServer(t)
	page := ts.createPage(t, true, model.ComponentInstance{
		ID:          "survey-1",
		ComponentID: "exit-intent-survey",
		Props:       model.Props{"delay": model.NumberValue(1000)},
	})
	session := sessionOf(t, ts.get("/p/"+page.ID))
	ts.clock.Advance(2 * time.Second)
	ts.post(t, "/p/"+page.ID+"/exit-intent/signal", exitPointer(session))

	modalURL := "/p/" + page.ID + "/exit-intent/survey-1"
	if rec := ts.post(t, modalURL+"/submit", map[string]string{"session": session, "email": "x@example.com"}); rec.Code != http.StatusBadRequest {
		t.Errorf("survey submit status = %d, want 400", rec.Code)
	}
	if rec := ts.post(t, modalURL+"/choose", map[string]string{"session": session, "answer": "Free pizza"}); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown answer status = %d, want 400", rec.Code)
	}
	rec := ts.post(t, modalURL+"/choose", map[string]string{"session": session, "answer": "Just browsing"})
	var mres modalResponse
	json.NewDecoder(rec.Body).Decode(&mres)
	if rec.Code != http.StatusOK || mres.State != "closed" {
		t.Errorf("choose: status = %d, response = %+v", rec.Code, mres)
	}
}

func TestSignalRejections(t *testing.T) {
	ts := newTestServer(t)
	page := ts.createPage(t, true, discountInstance())
	other := ts.createPage(t, true)
	session := sessionOf(t, ts.get("/p/"+page.ID))

	if rec := ts.post(t, "/p/"+page.ID+"/exit-intent/signal", exitPointer("nope")); rec.Code != http.StatusNotFound {
		t.Errorf("unknown session status = %d", rec.Code)
	}
	if rec := ts.post(t, "/p/"+other.ID+"/exit-intent/signal", exitPointer(session)); rec.Code != http.StatusNotFound {
		t.Errorf("session used on another page status = %d", rec.Code)
	}
	rec := ts.post(t, "/p/"+page.ID+"/exit-intent/signal", map[string]any{"session": session, "type": "scroll"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown signal type status = %d", rec.Code)
	}
	if rec := ts.post(t, "/p/"+page.ID+"/exit-intent/h-9/close", map[string]string{"session": session}); rec.Code != http.StatusNotFound {
		t.Errorf("modal of unknown instance status = %d", rec.Code)
	}
}

func TestSweepEvictsIdleVisitors(t *testing.T) {
	ts := newTestServer(t)
	page := ts.createPage(t, true, discountInstance())
	stale := sessionOf(t, ts.get("/p/"+page.ID))
	ts.clock.Advance(20 * time.Minute)
	fresh := sessionOf(t, ts.get("/p/"+page.ID))
	ts.clock.Advance(15 * time.Minute)

	if n := ts.app.sweep(ts.clock.Now()); n != 1 {
		t.Fatalf("sweep evicted %d, want 1", n)
	}
	if _, ok := ts.app.lookupVisitor(stale, page.ID); ok {
		t.Errorf("stale visitor still present")
	}
	if _, ok := ts.app.lookupVisitor(fresh, page.ID); !ok {
		t.Errorf("fresh visitor evicted")
	}
}

func TestStaticShim(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.get("/static/exit-intent.js")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "sendBeacon") {
		t.Errorf("static shim: status = %d", rec.Code)
	}
}
