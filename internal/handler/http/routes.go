package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Get("/api/health", h.health)
	})

	// data routes, scoped to the authenticated principal
	router.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Get("/api/{collection}", h.listSince)
		r.Get("/api/{collection}/ids", h.listIDs)
		r.Post("/api/{collection}/fetch", h.fetch)
		r.Put("/api/{collection}/{id}", h.upsert)
		r.Delete("/api/{collection}/{id}", h.delete)
	})

	return router
}
