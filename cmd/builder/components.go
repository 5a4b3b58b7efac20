package main

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	"go-page-builder/internal/componentmanager"
	"go-page-builder/internal/model"

	"github.com/go-chi/chi/v5"
)

// componentListHandler lists stored custom components, newest first.
// ?all=true includes soft-deleted ones.
func (app *builderApplication) componentListHandler(w http.ResponseWriter, r *http.Request) {
	defs, err := app.components.Store().ReadAll()
	if err != nil {
		app.fail(w, r, err)
		return
	}
	includeInactive := r.URL.Query().Get("all") == "true"
	out := make([]*model.ComponentDefinition, 0, len(defs))
	for _, d := range defs {
		if d.IsActive || includeInactive {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	app.writeJSON(w, http.StatusOK, out)
}

func (app *builderApplication) componentCreateHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Category string `json:"category"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		app.errorJSON(w, r, http.StatusBadRequest, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		app.errorJSON(w, r, http.StatusBadRequest, errors.New("name is required"))
		return
	}
	def, err := app.components.CreateComponent(req.Name, req.Category)
	if err != nil {
		app.fail(w, r, err)
		return
	}
	app.reloadCatalog(r.Context())
	w.Header().Set("HX-Trigger", showMessage("Component '"+def.Name+"' created.", "success"))
	app.writeJSON(w, http.StatusCreated, def)
}

type componentUpdateRequest struct {
	Name        *string       `json:"name"`
	Description *string       `json:"description"`
	Category    *string       `json:"category"`
	Code        *string       `json:"component_code"`
	Styles      *string       `json:"styles"`
	Schema      *model.Schema `json:"props_schema"`
	IsPublic    *bool         `json:"is_public"`
}

func (app *builderApplication) componentUpdateHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "componentID")
	var req componentUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		app.errorJSON(w, r, http.StatusBadRequest, err)
		return
	}
	def, err := app.components.UpdateComponent(id, componentmanager.Update{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Code:        req.Code,
		Styles:      req.Styles,
		Schema:      req.Schema,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		app.fail(w, r, err)
		return
	}
	app.reloadCatalog(r.Context())
	app.writeJSON(w, http.StatusOK, def)
}

// componentDeleteHandler soft deletes by default; ?force=true removes the
// source folder and metadata.
func (app *builderApplication) componentDeleteHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "componentID")
	force := r.URL.Query().Get("force") == "true"

	name := id
	if def, err := app.components.Store().LoadComponent(id); err == nil {
		name = def.Name
	}
	if err := app.components.DeleteComponent(id, force); err != nil {
		app.logger.Error("componentDeleteHandler: delete failed", "id", id, "force", force, "error", err)
		w.Header().Set("HX-Trigger", showMessage("Failed to delete component '"+name+"': "+err.Error(), "error"))
		app.errorJSON(w, r, statusFor(err), err)
		return
	}
	app.reloadCatalog(r.Context())

	msg := "Component '" + name + "' removed."
	if force {
		msg = "Component '" + name + "' permanently deleted."
	}
	w.Header().Set("HX-Trigger", showMessage(msg, "success"))
	w.WriteHeader(http.StatusNoContent)
}

func (app *builderApplication) componentPurgeHandler(w http.ResponseWriter, r *http.Request) {
	n, err := app.components.PurgeInactive()
	if err != nil {
		app.fail(w, r, err)
		return
	}
	app.writeJSON(w, http.StatusOK, map[string]int{"purged": n})
}

func (app *builderApplication) componentSyncHandler(w http.ResponseWriter, r *http.Request) {
	def, err := app.components.SyncSources(chi.URLParam(r, "componentID"))
	if err != nil {
		app.fail(w, r, err)
		return
	}
	app.reloadCatalog(r.Context())
	app.writeJSON(w, http.StatusOK, def)
}

func (app *builderApplication) componentValidateHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		app.errorJSON(w, r, http.StatusBadRequest, err)
		return
	}
	app.writeJSON(w, http.StatusOK, componentmanager.ValidateCode(req.Code))
}
