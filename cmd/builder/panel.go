package main

import (
	"errors"
	"net/http"

	"go-page-builder/internal/model"
	"go-page-builder/internal/propertypanel"
	"go-page-builder/internal/renderer"
	"go-page-builder/internal/templating"

	"github.com/go-chi/chi/v5"
	"github.com/justinas/nosurf"
)

const emptyPanelHTML = `<div class="property-panel p-4 text-center text-gray-500"><p class="text-sm">Select a component to edit its properties</p></div>`

// renderPanel writes the panel for the session's selected instance.
func (app *builderApplication) renderPanel(w http.ResponseWriter, r *http.Request, s *editSession) {
	p, ok := s.currentPanel(app.pages)
	if !ok {
		app.writeHTML(w, emptyPanelHTML)
		return
	}
	base := "/pages/" + s.pageID + "/panel"
	html, err := p.Render(propertypanel.RenderOptions{
		Action:      base,
		MediaAction: base + "/media",
		CSRFToken:   nosurf.Token(r),
	})
	if err != nil {
		app.logger.Error("Error rendering property panel", "page", s.pageID, "error", err)
		app.htmxError(w, "Failed to render the property panel", http.StatusInternalServerError)
		return
	}
	app.writeHTML(w, string(html))
}

func (app *builderApplication) panelHandler(w http.ResponseWriter, r *http.Request) {
	s, err := app.session(r.Context(), chi.URLParam(r, "pageID"))
	if err != nil {
		app.logger.Warn("panelHandler: cannot open page", "error", err)
		app.htmxError(w, "Page not found", statusFor(err))
		return
	}
	app.renderPanel(w, r, s)
}

// panelEditHandler applies one form field. Image fields go through the
// asset selection path so an open media picker closes.
func (app *builderApplication) panelEditHandler(w http.ResponseWriter, r *http.Request) {
	s, err := app.session(r.Context(), chi.URLParam(r, "pageID"))
	if err != nil {
		app.htmxError(w, "Page not found", statusFor(err))
		return
	}
	if err := r.ParseForm(); err != nil {
		app.logger.Error("panelEditHandler: Error parsing form", "error", err)
		app.htmxError(w, "Bad Request - Could not parse form", http.StatusBadRequest)
		return
	}
	p, ok := s.currentPanel(app.pages)
	if !ok {
		app.htmxError(w, "No component is selected", http.StatusConflict)
		return
	}

	key, value := r.PostForm.Get("key"), r.PostForm.Get("value")
	if isImageControl(p, key) {
		err = p.SelectAsset(key, model.MediaAsset{FilePath: value})
	} else {
		err = p.Edit(key, value)
	}
	if err != nil {
		app.logger.Debug("Rejected property edit", "page", s.pageID, "key", key, "error", err)
		msg := "Invalid value for " + propertypanel.Humanize(key)
		if errors.Is(err, propertypanel.ErrUnknownProperty) {
			msg = "Unknown property " + key
		}
		app.htmxError(w, msg, http.StatusUnprocessableEntity)
		return
	}
	app.renderPanel(w, r, s)
}

func isImageControl(p *propertypanel.Panel, key string) bool {
	for _, c := range p.Controls() {
		if c.Key == key {
			return c.Kind == model.FieldImage
		}
	}
	return false
}

// mediaPickerHandler opens the picker for the image property named by the
// key query parameter.
func (app *builderApplication) mediaPickerHandler(w http.ResponseWriter, r *http.Request) {
	s, err := app.session(r.Context(), chi.URLParam(r, "pageID"))
	if err != nil {
		app.htmxError(w, "Page not found", statusFor(err))
		return
	}
	p, ok := s.currentPanel(app.pages)
	if !ok {
		app.htmxError(w, "No component is selected", http.StatusConflict)
		return
	}
	key := r.URL.Query().Get("key")
	if _, err := p.OpenMediaPicker(r.Context(), key); err != nil {
		app.logger.Debug("Cannot open media picker", "key", key, "error", err)
		app.htmxError(w, propertypanel.Humanize(key)+" is not an image property", http.StatusBadRequest)
		return
	}
	app.renderPanel(w, r, s)
}

func (app *builderApplication) mediaPickerCloseHandler(w http.ResponseWriter, r *http.Request) {
	s, err := app.session(r.Context(), chi.URLParam(r, "pageID"))
	if err != nil {
		app.htmxError(w, "Page not found", statusFor(err))
		return
	}
	if p, ok := s.currentPanel(app.pages); ok {
		p.CloseMediaPicker()
	}
	app.renderPanel(w, r, s)
}

// previewHandler renders the session's unsaved content as a full page.
// ?modal=<instance id> shows that exit-intent instance's modal open.
func (app *builderApplication) previewHandler(w http.ResponseWriter, r *http.Request) {
	s, err := app.session(r.Context(), chi.URLParam(r, "pageID"))
	if err != nil {
		app.logger.Warn("previewHandler: cannot open page", "error", err)
		http.Error(w, http.StatusText(statusFor(err)), statusFor(err))
		return
	}
	page, err := app.pages.GetPage(r.Context(), s.pageID)
	if err != nil {
		http.Error(w, http.StatusText(statusFor(err)), statusFor(err))
		return
	}
	page.Content = s.engine.Content()

	m := app.pageEngine.Mount(page, renderer.MountOptions{
		Modal: renderer.ModalOptions{SubmitDelay: app.cfg.Exit.SubmitDelay, AutoClose: app.cfg.Exit.AutoClose},
	})
	defer m.Unmount()
	if id := r.URL.Query().Get("modal"); id != "" {
		if err := m.Preview(id); err != nil {
			app.logger.Debug("Cannot preview modal", "instance", id, "error", err)
		}
	}

	doc, err := app.pageEngine.Document(templating.PageData{Page: page, Body: m.Render(), Preview: true})
	if err != nil {
		app.logger.Error("Error rendering preview", "page", s.pageID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	app.writeHTML(w, doc)
}
