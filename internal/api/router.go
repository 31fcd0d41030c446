package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Config holds the router dependencies. Events, if non-nil, is mounted at
// GET /events inside the auth group.
type Config struct {
	Document       DocumentService
	Renderer       Renderer
	Events         http.Handler
	ExportFilename string
	AuthEnabled    bool
	Token          string
}

// NewRouter creates a chi router with all API routes mounted.
func NewRouter(cfg Config) chi.Router {
	h := NewHandler(cfg.Document, cfg.Renderer, cfg.ExportFilename)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(cfg.AuthEnabled, cfg.Token))

	r.Get("/document", h.GetDocument)
	r.Put("/document", h.PutDocument)
	r.Get("/document/export", h.ExportDocument)
	r.Get("/document/outline", h.Outline)

	r.Post("/transform", h.Transform)
	r.Get("/complete", h.Complete)

	if cfg.Events != nil {
		r.Get("/events", cfg.Events.ServeHTTP)
	}

	return r
}
