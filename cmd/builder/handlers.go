package main

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"go-page-builder/internal/composer"
	"go-page-builder/internal/model"

	"github.com/go-chi/chi/v5"
)

// catalogView groups definitions the way the builder sidebar shows them.
type catalogView struct {
	Ready      bool                                   `json:"ready"`
	General    []model.ComponentDefinition            `json:"general"`
	ExitIntent []model.ComponentDefinition            `json:"exitIntent"`
	Custom     []model.ComponentDefinition            `json:"custom"`
	Categories []string                               `json:"categories"`
	ByCategory map[string][]model.ComponentDefinition `json:"byCategory"`
}

func (app *builderApplication) catalogHandler(w http.ResponseWriter, r *http.Request) {
	c := app.currentCatalog()
	order, byCategory := c.Categories()
	app.writeJSON(w, http.StatusOK, catalogView{
		Ready:      c.Len() > 0,
		General:    c.General(),
		ExitIntent: c.ExitIntent(),
		Custom:     c.Customs(),
		Categories: order,
		ByCategory: byCategory,
	})
}

func (app *builderApplication) catalogReloadHandler(w http.ResponseWriter, r *http.Request) {
	c := app.reloadCatalog(r.Context())
	app.writeJSON(w, http.StatusOK, map[string]int{"builtin": len(c.Builtins()), "custom": len(c.Customs())})
}

func (app *builderApplication) funnelListHandler(w http.ResponseWriter, r *http.Request) {
	group := composer.FunnelGroup(r.URL.Query().Get("group"))
	templates := app.funnels.Templates()
	if group != "" {
		templates = app.funnels.Group(group)
	}
	app.writeJSON(w, http.StatusOK, templates)
}

// --- Pages ---

func (app *builderApplication) pageListHandler(w http.ResponseWriter, r *http.Request) {
	websiteID := r.URL.Query().Get("website")
	if websiteID == "" {
		app.errorJSON(w, r, http.StatusBadRequest, errors.New("missing website query parameter"))
		return
	}
	pages, err := app.pages.ListPages(r.Context(), websiteID)
	if err != nil {
		app.fail(w, r, err)
		return
	}
	app.writeJSON(w, http.StatusOK, pages)
}

type pageCreateRequest struct {
	WebsiteID string `json:"websiteId"`
	Title     string `json:"title"`
	Slug      string `json:"slug"`
	SortOrder int    `json:"sortOrder"`
	// Funnel optionally seeds the page from a funnel template.
	Funnel string `json:"funnel"`
}

func (app *builderApplication) pageCreateHandler(w http.ResponseWriter, r *http.Request) {
	var req pageCreateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		app.errorJSON(w, r, http.StatusBadRequest, err)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.WebsiteID == "" || req.Title == "" || req.Slug == "" {
		app.errorJSON(w, r, http.StatusBadRequest, errors.New("websiteId, title and slug are required"))
		return
	}

	page := &model.Page{WebsiteID: req.WebsiteID, Title: req.Title, Slug: req.Slug, SortOrder: req.SortOrder}
	if req.Funnel != "" {
		tmpl, ok := app.funnels.Lookup(req.Funnel)
		if !ok {
			app.errorJSON(w, r, http.StatusBadRequest, errors.New("unknown funnel template "+req.Funnel))
			return
		}
		e := composer.New(
			composer.WithFunnels(app.funnels),
			composer.WithCatalog(app.currentCatalog()),
			composer.WithLogger(app.logger),
		)
		e.ApplyFunnelTemplate(tmpl.ID)
		page.Content = e.Content()
	}

	if err := app.pages.CreatePage(r.Context(), page); err != nil {
		app.fail(w, r, err)
		return
	}
	app.logger.Info("Created page", "page", page.ID, "website", page.WebsiteID, "slug", page.Slug)
	app.writeJSON(w, http.StatusCreated, page)
}

// pageView is an open page as the editor sees it: stored metadata plus the
// session's possibly unsaved content.
type pageView struct {
	Page     *model.Page              `json:"page"`
	Content  model.ContentStructure   `json:"content"`
	Selected *model.ComponentInstance `json:"selected"`
	Dirty    bool                     `json:"dirty"`
}

func (app *builderApplication) viewOf(r *http.Request, s *editSession) (pageView, error) {
	page, err := app.pages.GetPage(r.Context(), s.pageID)
	if err != nil {
		return pageView{}, err
	}
	v := pageView{Page: page, Content: s.engine.Content(), Dirty: s.isDirty()}
	if sel, ok := s.engine.Selected(); ok {
		v.Selected = &sel
	}
	return v, nil
}

// respondSession writes the session's current view.
func (app *builderApplication) respondSession(w http.ResponseWriter, r *http.Request, s *editSession) {
	v, err := app.viewOf(r, s)
	if err != nil {
		app.fail(w, r, err)
		return
	}
	app.writeJSON(w, http.StatusOK, v)
}

// withSession resolves {pageID} to an open editing session.
func (app *builderApplication) withSession(w http.ResponseWriter, r *http.Request) (*editSession, bool) {
	s, err := app.session(r.Context(), chi.URLParam(r, "pageID"))
	if err != nil {
		app.fail(w, r, err)
		return nil, false
	}
	return s, true
}

func (app *builderApplication) pageGetHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := app.withSession(w, r)
	if !ok {
		return
	}
	app.respondSession(w, r, s)
}

func (app *builderApplication) pageDeleteHandler(w http.ResponseWriter, r *http.Request) {
	pageID := chi.URLParam(r, "pageID")
	app.closeSession(pageID)
	if err := app.pages.DeletePage(r.Context(), pageID); err != nil {
		app.fail(w, r, err)
		return
	}
	app.logger.Info("Deleted page", "page", pageID)
	w.WriteHeader(http.StatusNoContent)
}

var canvasTmpl = template.Must(template.New("canvas").Parse(`<div class="canvas space-y-2" data-droppable-id="canvas">
{{- range $i, $item := .Items }}
<div class="canvas-item relative border-2 rounded-lg {{ if $item.Selected }}border-blue-500{{ else }}border-transparent{{ end }}" data-instance-id="{{ $item.Instance.ID }}" data-index="{{ $i }}">
<div class="canvas-item-label text-xs text-gray-500">{{ $item.Name }}</div>
{{ $item.HTML }}
{{- if $item.Previewable }}
<a class="btn btn-sm mt-2" href="/pages/{{ $.PageID }}/preview?modal={{ $item.Instance.ID }}" target="_blank" data-exit-intent-preview>Preview Modal</a>
{{- end }}
</div>
{{- else }}
<div class="text-center text-gray-400 py-16">Drag components here to start building</div>
{{- end }}
</div>`))

func (app *builderApplication) canvasHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := app.withSession(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	data := struct {
		PageID string
		Items  []composer.CanvasItem
	}{s.pageID, s.engine.Canvas(app.renderer)}
	if err := canvasTmpl.Execute(&buf, data); err != nil {
		app.logger.Error("Error executing canvas template", "page", s.pageID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	app.writeHTML(w, buf.String())
}

func (app *builderApplication) dragEndHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := app.withSession(w, r)
	if !ok {
		return
	}
	var drag composer.DragResult
	if err := decodeJSON(w, r, &drag); err != nil {
		app.errorJSON(w, r, http.StatusBadRequest, err)
		return
	}
	if s.engine.HandleDragEnd(drag) {
		app.logger.Debug("Applied drag", "page", s.pageID, "draggable", drag.DraggableID, "from", drag.Source.DroppableID)
	}
	app.respondSession(w, r, s)
}

func (app *builderApplication) instanceRemoveHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := app.withSession(w, r)
	if !ok {
		return
	}
	instanceID := chi.URLParam(r, "instanceID")
	if !s.engine.RemoveInstanceByID(instanceID) {
		app.errorJSON(w, r, http.StatusNotFound, errors.New("no instance "+instanceID+" on this page"))
		return
	}
	s.resetPanel()
	app.respondSession(w, r, s)
}

// instanceMoveHandler reorders without a pointer drag, e.g. from keyboard
// controls on the canvas.
func (app *builderApplication) instanceMoveHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := app.withSession(w, r)
	if !ok {
		return
	}
	var req struct {
		To *int `json:"to"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		app.errorJSON(w, r, http.StatusBadRequest, err)
		return
	}
	if req.To == nil {
		app.errorJSON(w, r, http.StatusBadRequest, errors.New("to is required"))
		return
	}
	instanceID := chi.URLParam(r, "instanceID")
	if s.engine.Content().IndexOf(instanceID) < 0 {
		app.errorJSON(w, r, http.StatusNotFound, errors.New("no instance "+instanceID+" on this page"))
		return
	}
	s.engine.Move(instanceID, *req.To)
	app.respondSession(w, r, s)
}

func (app *builderApplication) instancePropsHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := app.withSession(w, r)
	if !ok {
		return
	}
	var props model.Props
	if err := decodeJSON(w, r, &props); err != nil {
		app.errorJSON(w, r, http.StatusBadRequest, err)
		return
	}
	instanceID := chi.URLParam(r, "instanceID")
	if !s.engine.UpdateInstanceProps(instanceID, props) {
		app.errorJSON(w, r, http.StatusNotFound, errors.New("no instance "+instanceID+" on this page"))
		return
	}
	s.resetPanel()
	app.respondSession(w, r, s)
}

func (app *builderApplication) selectHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := app.withSession(w, r)
	if !ok {
		return
	}
	var req struct {
		InstanceID string `json:"instanceId"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		app.errorJSON(w, r, http.StatusBadRequest, err)
		return
	}
	if !s.engine.SelectInstance(req.InstanceID) {
		app.errorJSON(w, r, http.StatusNotFound, errors.New("no instance "+req.InstanceID+" on this page"))
		return
	}
	app.respondSession(w, r, s)
}

func (app *builderApplication) deselectHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := app.withSession(w, r)
	if !ok {
		return
	}
	s.engine.ClearSelection()
	s.resetPanel()
	app.respondSession(w, r, s)
}

func (app *builderApplication) funnelApplyHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := app.withSession(w, r)
	if !ok {
		return
	}
	var req struct {
		TemplateID string `json:"templateId"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		app.errorJSON(w, r, http.StatusBadRequest, err)
		return
	}
	if !s.engine.ApplyFunnelTemplate(req.TemplateID) {
		app.errorJSON(w, r, http.StatusNotFound, errors.New("unknown funnel template "+req.TemplateID))
		return
	}
	s.resetPanel()
	app.logger.Info("Applied funnel template", "page", s.pageID, "template", req.TemplateID)
	app.respondSession(w, r, s)
}

func (app *builderApplication) pageSaveHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := app.withSession(w, r)
	if !ok {
		return
	}
	content := s.engine.Content()
	if err := app.pages.SavePageContent(r.Context(), s.pageID, content); err != nil {
		app.fail(w, r, err)
		return
	}
	s.markSaved()
	app.logger.Info("Saved page content", "page", s.pageID, "components", len(content.Components))
	app.respondSession(w, r, s)
}

// pageRevertHandler discards unsaved edits and reloads the stored content.
func (app *builderApplication) pageRevertHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := app.withSession(w, r)
	if !ok {
		return
	}
	page, err := app.pages.GetPage(r.Context(), s.pageID)
	if err != nil {
		app.fail(w, r, err)
		return
	}
	s.engine.SetContent(page.Content)
	s.markSaved()
	s.resetPanel()
	app.logger.Info("Reverted unsaved changes", "page", s.pageID)
	app.respondSession(w, r, s)
}

func (app *builderApplication) pagePublishHandler(w http.ResponseWriter, r *http.Request) {
	pageID := chi.URLParam(r, "pageID")
	var req struct {
		Published bool `json:"published"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		app.errorJSON(w, r, http.StatusBadRequest, err)
		return
	}
	if err := app.pages.SetPublished(r.Context(), pageID, req.Published); err != nil {
		app.fail(w, r, err)
		return
	}
	page, err := app.pages.GetPage(r.Context(), pageID)
	if err != nil {
		app.fail(w, r, err)
		return
	}
	app.logger.Info("Changed page visibility", "page", pageID, "published", req.Published)
	app.writeJSON(w, http.StatusOK, page)
}

func (app *builderApplication) sessionCloseHandler(w http.ResponseWriter, r *http.Request) {
	if !app.closeSession(chi.URLParam(r, "pageID")) {
		app.errorJSON(w, r, http.StatusNotFound, errors.New("page is not open"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Media ---

func (app *builderApplication) assetListHandler(w http.ResponseWriter, r *http.Request) {
	page, err := app.pages.GetPage(r.Context(), chi.URLParam(r, "pageID"))
	if err != nil {
		app.fail(w, r, err)
		return
	}
	assets, err := app.pages.ListAssets(r.Context(), page.WebsiteID, r.URL.Query().Get("type"))
	if err != nil {
		app.fail(w, r, err)
		return
	}
	app.writeJSON(w, http.StatusOK, assets)
}

// assetCreateHandler records an already uploaded file.
func (app *builderApplication) assetCreateHandler(w http.ResponseWriter, r *http.Request) {
	page, err := app.pages.GetPage(r.Context(), chi.URLParam(r, "pageID"))
	if err != nil {
		app.fail(w, r, err)
		return
	}
	var asset model.MediaAsset
	if err := decodeJSON(w, r, &asset); err != nil {
		app.errorJSON(w, r, http.StatusBadRequest, err)
		return
	}
	asset.WebsiteID = page.WebsiteID
	if asset.FilePath == "" || asset.MimeType == "" {
		app.errorJSON(w, r, http.StatusBadRequest, errors.New("file_path and mime_type are required"))
		return
	}
	if err := app.pages.AddAsset(r.Context(), &asset); err != nil {
		app.fail(w, r, err)
		return
	}
	app.writeJSON(w, http.StatusCreated, asset)
}
