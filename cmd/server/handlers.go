package main

import (
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"net/http"

	"go-page-builder/internal/exitintent"
	"go-page-builder/internal/renderer"
	"go-page-builder/internal/storage"
	"go-page-builder/internal/templating"

	"github.com/go-chi/chi/v5"
)

const (
	scriptURL    = "/static/exit-intent.js"
	maxBodyBytes = 64 << 10
)

// modalUpdate tells the page script to replace one modal's markup. An
// empty HTML removes the modal.
type modalUpdate struct {
	ID   string        `json:"id"`
	HTML template.HTML `json:"html"`
}

type signalResponse struct {
	renderer.SignalResult
	Modals []modalUpdate `json:"modals"`
}

type modalResponse struct {
	State  string        `json:"state"`
	Modals []modalUpdate `json:"modals"`
}

// signalRequest is a browser event plus the session it belongs to.
type signalRequest struct {
	Session string `json:"session"`
	exitintent.Signal
}

type modalRequest struct {
	Session string `json:"session"`
	Email   string `json:"email"`
	Answer  string `json:"answer"`
}

// handlePageRequest renders a published page and mounts its exit-intent
// detectors for this view.
func (app *application) handlePageRequest(w http.ResponseWriter, r *http.Request) {
	pageID := chi.URLParam(r, "pageID")
	page, err := app.pageEngine.LoadPage(r.Context(), pageID, true)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, templating.ErrNotPublished) {
			app.logger.Debug("Page not available", "page", pageID, "error", err)
			http.NotFound(w, r)
			return
		}
		app.logger.Error("Error loading page", "page", pageID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	suppression := exitintent.CookieSuppressionFromRequest(r, app.clock)
	mount := app.pageEngine.Mount(page, renderer.MountOptions{
		Suppression: suppression,
		Clock:       app.clock,
		Modal: renderer.ModalOptions{
			SubmitDelay: app.cfg.Exit.SubmitDelay,
			AutoClose:   app.cfg.Exit.AutoClose,
		},
	})
	sessionID := app.addVisitor(&visitor{pageID: page.ID, mount: mount, suppression: suppression})

	doc, err := app.pageEngine.Document(templating.PageData{
		Page:          page,
		Body:          mount.Render(),
		SessionID:     sessionID,
		ScriptURL:     scriptURL,
		ExitIntentURL: "/p/" + page.ID + "/exit-intent",
	})
	if err != nil {
		app.logger.Error("Error rendering page", "page", pageID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := io.WriteString(w, doc); err != nil {
		app.logger.Error("Error writing page response", "page", pageID, "error", err)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

func (app *application) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		app.logger.Error("Error writing JSON response", "error", err)
	}
}

func (app *application) writeError(w http.ResponseWriter, status int, msg string) {
	app.writeJSON(w, status, map[string]string{"error": msg})
}

// handleSignal forwards a browser event to the visitor's detectors and
// returns the markup of every modal that opened.
func (app *application) handleSignal(w http.ResponseWriter, r *http.Request) {
	var req signalRequest
	if err := decodeBody(w, r, &req); err != nil {
		app.writeError(w, http.StatusBadRequest, "invalid signal body")
		return
	}
	v, ok := app.lookupVisitor(req.Session, chi.URLParam(r, "pageID"))
	if !ok {
		app.writeError(w, http.StatusNotFound, "unknown or expired session")
		return
	}

	res, err := v.mount.Signal(req.Signal)
	if err != nil {
		app.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	out := signalResponse{SignalResult: res, Modals: []modalUpdate{}}
	for _, id := range res.Opened {
		if u, ok := app.modalUpdate(v, id); ok {
			out.Modals = append(out.Modals, u)
		}
	}
	v.suppression.Flush(w)
	app.writeJSON(w, http.StatusOK, out)
}

func (app *application) modalUpdate(v *visitor, id string) (modalUpdate, bool) {
	m, ok := v.mount.Modal(id)
	if !ok {
		return modalUpdate{}, false
	}
	html, err := m.HTML()
	if err != nil {
		app.logger.Error("Failed to render modal", "instance", id, "error", err)
		return modalUpdate{}, false
	}
	return modalUpdate{ID: id, HTML: html}, true
}

// withModal decodes a modal request and resolves the visitor's modal.
func (app *application) withModal(w http.ResponseWriter, r *http.Request) (*visitor, *renderer.Modal, modalRequest, bool) {
	var req modalRequest
	if err := decodeBody(w, r, &req); err != nil {
		app.writeError(w, http.StatusBadRequest, "invalid request body")
		return nil, nil, req, false
	}
	v, ok := app.lookupVisitor(req.Session, chi.URLParam(r, "pageID"))
	if !ok {
		app.writeError(w, http.StatusNotFound, "unknown or expired session")
		return nil, nil, req, false
	}
	instanceID := chi.URLParam(r, "instanceID")
	m, ok := v.mount.Modal(instanceID)
	if !ok {
		app.writeError(w, http.StatusNotFound, "no modal for instance "+instanceID)
		return nil, nil, req, false
	}
	return v, m, req, true
}

func (app *application) respondModal(w http.ResponseWriter, v *visitor, id string, m *renderer.Modal) {
	out := modalResponse{State: m.State().String(), Modals: []modalUpdate{}}
	if u, ok := app.modalUpdate(v, id); ok {
		out.Modals = append(out.Modals, u)
	}
	app.writeJSON(w, http.StatusOK, out)
}

func modalErrorStatus(err error) int {
	switch {
	case errors.Is(err, renderer.ErrNoForm), errors.Is(err, renderer.ErrNoSurvey), errors.Is(err, renderer.ErrUnknownAnswer):
		return http.StatusBadRequest
	case errors.Is(err, renderer.ErrModalNotOpen):
		return http.StatusConflict
	}
	return http.StatusServiceUnavailable
}

// handleModalSubmit captures the email form. The request blocks for the
// configured submit delay.
func (app *application) handleModalSubmit(w http.ResponseWriter, r *http.Request) {
	v, m, req, ok := app.withModal(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "instanceID")
	if err := m.Submit(r.Context(), req.Email); err != nil {
		app.logger.Debug("Modal submission rejected", "instance", id, "error", err)
		app.writeError(w, modalErrorStatus(err), err.Error())
		return
	}
	app.logger.Info("Exit intent form submitted", "page", v.pageID, "instance", id, "variant", m.Variant())
	app.respondModal(w, v, id, m)
}

func (app *application) handleModalChoose(w http.ResponseWriter, r *http.Request) {
	v, m, req, ok := app.withModal(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "instanceID")
	if err := m.Choose(req.Answer); err != nil {
		app.writeError(w, modalErrorStatus(err), err.Error())
		return
	}
	app.logger.Info("Exit survey answered", "page", v.pageID, "instance", id, "answer", req.Answer)
	app.respondModal(w, v, id, m)
}

func (app *application) handleModalClose(w http.ResponseWriter, r *http.Request) {
	v, m, _, ok := app.withModal(w, r)
	if !ok {
		return
	}
	m.Close()
	app.respondModal(w, v, chi.URLParam(r, "instanceID"), m)
}
