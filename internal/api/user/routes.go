package user

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers plan, user and admin routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/api/plans", h.Plans)
	r.Get("/api/user/{id}", h.Stats)
	r.Post("/api/user/{id}/plan", h.UpdatePlan)
	r.Post("/api/admin/activate", h.ActivateAdmin)
	r.Post("/api/admin/deactivate", h.DeactivateAdmin)
}
