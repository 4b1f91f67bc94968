package presentation

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers health, generation, job and design routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/health", h.Health)
	r.Get("/api/health", h.Health)

	r.Post("/api/generate", h.Generate)
	r.Get("/api/designs", h.Designs)

	r.Get("/api/job/{id}", h.GetJob)
	r.Get("/api/job/{id}/outline", h.GetOutline)
	r.Get("/api/download/{id}", h.Download)
	r.Get("/api/file-info/{id}", h.FileInfo)
}
