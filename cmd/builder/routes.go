package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/justinas/nosurf"
)

// routes sets up the HTTP router for the builder.
func (app *builderApplication) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(app.cfg.Request.Timeout))

	r.Route("/api", func(r chi.Router) {
		r.Get("/catalog", app.catalogHandler)
		r.Post("/catalog/reload", app.catalogReloadHandler)
		r.Get("/funnels", app.funnelListHandler)

		r.Route("/pages", func(r chi.Router) {
			r.Get("/", app.pageListHandler)
			r.Post("/", app.pageCreateHandler)

			r.Route("/{pageID}", func(r chi.Router) {
				r.Get("/", app.pageGetHandler)
				r.Delete("/", app.pageDeleteHandler)
				r.Get("/canvas", app.canvasHandler)
				r.Post("/drag-end", app.dragEndHandler)
				r.Delete("/instances/{instanceID}", app.instanceRemoveHandler)
				r.Put("/instances/{instanceID}/props", app.instancePropsHandler)
				r.Post("/instances/{instanceID}/move", app.instanceMoveHandler)
				r.Put("/selection", app.selectHandler)
				r.Delete("/selection", app.deselectHandler)
				r.Post("/funnel", app.funnelApplyHandler)
				r.Post("/save", app.pageSaveHandler)
				r.Post("/revert", app.pageRevertHandler)
				r.Put("/published", app.pagePublishHandler)
				r.Delete("/session", app.sessionCloseHandler)
				r.Get("/assets", app.assetListHandler)
				r.Post("/assets", app.assetCreateHandler)
			})
		})

		r.Route("/components", func(r chi.Router) {
			r.Get("/", app.componentListHandler)
			r.Post("/", app.componentCreateHandler)
			r.Post("/validate", app.componentValidateHandler)
			r.Post("/purge", app.componentPurgeHandler)
			r.Put("/{componentID}", app.componentUpdateHandler)
			r.Delete("/{componentID}", app.componentDeleteHandler)
			r.Post("/{componentID}/sync", app.componentSyncHandler)
		})
	})

	// HTML fragments and form posts carry a CSRF token.
	r.Group(func(r chi.Router) {
		r.Use(app.csrf)
		r.Get("/pages/{pageID}/panel", app.panelHandler)
		r.Post("/pages/{pageID}/panel", app.panelEditHandler)
		r.Get("/pages/{pageID}/panel/media", app.mediaPickerHandler)
		r.Post("/pages/{pageID}/panel/media/close", app.mediaPickerCloseHandler)
		r.Get("/pages/{pageID}/preview", app.previewHandler)
	})

	return r
}

// csrf wraps next with nosurf. Rejected posts get an HX-Trigger error
// message instead of a bare 400 body.
func (app *builderApplication) csrf(next http.Handler) http.Handler {
	h := nosurf.New(next)
	h.SetBaseCookie(http.Cookie{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	h.SetFailureHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.logger.Warn("CSRF check failed", "path", r.URL.Path, "reason", nosurf.Reason(r))
		w.Header().Set("HX-Trigger", showMessage("Your session expired. Reload the page and try again.", "error"))
		w.Header().Set("HX-Reswap", "none")
		w.WriteHeader(http.StatusBadRequest)
	}))
	return h
}
