package journal

import (
	"github.com/go-chi/chi/v5"

	"github.com/emberlog/emberlog/internal/rbac"
)

// MountRoutes registers journal routes guarded by permission middleware.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAny(rbac.PermEmotionsView))
		r.Get("/emotions", h.listEmotions)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAll(rbac.PermEmotionsEdit))
		r.Post("/emotions", h.createEmotion)
		r.Put("/emotions/{id}", h.updateEmotion)
		r.Delete("/emotions/{id}", h.deleteEmotion)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAny(rbac.PermDaysView))
		r.Get("/days", h.listDays)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAll(rbac.PermDaysEdit))
		r.Post("/days", h.createDay)
		r.Put("/days/{date}", h.updateDay)
		r.Delete("/days/{date}", h.deleteDay)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAll(rbac.PermOwnersManage))
		r.Get("/owners", h.listOwners)
		r.Delete("/owners/{id}", h.deleteOwner)
	})
}
