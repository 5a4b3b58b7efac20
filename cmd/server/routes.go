package main

import (
	"net/http"

	"go-page-builder/internal/templating"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// routes sets up the HTTP router for published pages.
func (app *application) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(app.cfg.Request.Timeout))

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(templating.Static()))))

	r.Route("/p/{pageID}", func(r chi.Router) {
		r.Get("/", app.handlePageRequest)
		r.Post("/exit-intent/signal", app.handleSignal)
		r.Post("/exit-intent/{instanceID}/submit", app.handleModalSubmit)
		r.Post("/exit-intent/{instanceID}/choose", app.handleModalChoose)
		r.Post("/exit-intent/{instanceID}/close", app.handleModalClose)
	})

	return r
}
