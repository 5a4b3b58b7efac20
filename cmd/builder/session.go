package main

import (
	"context"
	"fmt"
	"sync"

	"go-page-builder/internal/composer"
	"go-page-builder/internal/model"
	"go-page-builder/internal/propertypanel"
)

// editSession is one open page in the builder. The engine holds the
// unsaved content; dirty tracks whether it differs from the stored page.
type editSession struct {
	pageID    string
	websiteID string
	engine    *composer.Engine

	mu       sync.Mutex
	dirty    bool
	panel    *propertypanel.Panel
	panelFor string
}

func (s *editSession) isDirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

func (s *editSession) markSaved() {
	s.mu.Lock()
	s.dirty = false
	s.mu.Unlock()
}

// resetPanel drops the cached panel so the next request rebuilds it from
// the engine's current props.
func (s *editSession) resetPanel() {
	s.mu.Lock()
	s.panel = nil
	s.panelFor = ""
	s.mu.Unlock()
}

// currentPanel returns the panel for the selected instance, building a new
// one when the selection changed.
func (s *editSession) currentPanel(media propertypanel.MediaSource) (*propertypanel.Panel, bool) {
	sel, ok := s.engine.Selected()
	if !ok {
		s.resetPanel()
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.panel != nil && s.panelFor == sel.ID {
		return s.panel, true
	}
	p, ok := s.engine.Panel(media, s.websiteID)
	if !ok {
		s.panel, s.panelFor = nil, ""
		return nil, false
	}
	s.panel, s.panelFor = p, sel.ID
	return p, true
}

// session returns the open session for pageID, opening one from the store
// if needed.
func (app *builderApplication) session(ctx context.Context, pageID string) (*editSession, error) {
	app.sessionsMu.Lock()
	defer app.sessionsMu.Unlock()
	if s, ok := app.sessions[pageID]; ok {
		return s, nil
	}

	page, err := app.pages.GetPage(ctx, pageID)
	if err != nil {
		return nil, fmt.Errorf("opening page %s: %w", pageID, err)
	}
	s := &editSession{
		pageID:    page.ID,
		websiteID: page.WebsiteID,
		engine: composer.New(
			composer.WithLogger(app.logger.With("page", page.ID)),
			composer.WithFunnels(app.funnels),
			composer.WithCatalog(app.currentCatalog()),
			composer.WithContent(page.Content),
		),
	}
	s.engine.OnChange(func(model.ContentStructure) {
		s.mu.Lock()
		s.dirty = true
		s.mu.Unlock()
	})
	app.sessions[pageID] = s
	app.logger.Debug("Opened editing session", "page", pageID, "components", len(page.Content.Components))
	return s, nil
}

func (app *builderApplication) openSessions() []*editSession {
	app.sessionsMu.Lock()
	defer app.sessionsMu.Unlock()
	out := make([]*editSession, 0, len(app.sessions))
	for _, s := range app.sessions {
		out = append(out, s)
	}
	return out
}

// closeSession discards the session and any unsaved changes. It reports
// whether a session was open.
func (app *builderApplication) closeSession(pageID string) bool {
	app.sessionsMu.Lock()
	s, ok := app.sessions[pageID]
	delete(app.sessions, pageID)
	app.sessionsMu.Unlock()
	if ok {
		s.engine.Close()
	}
	return ok
}

func (app *builderApplication) closeSessions() {
	for _, s := range app.openSessions() {
		if s.isDirty() {
			app.logger.Warn("Discarding unsaved changes", "page", s.pageID)
		}
		app.closeSession(s.pageID)
	}
}
