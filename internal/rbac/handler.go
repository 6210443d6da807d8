package rbac

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/emberlog/emberlog/internal/platform/httpx"
	"github.com/emberlog/emberlog/internal/shared"
)

// Handler exposes the role registry over HTTP.
type Handler struct {
	logger   *slog.Logger
	registry *Registry
	resolver *Resolver
	guard    Middleware
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, registry *Registry, resolver *Resolver, guard Middleware) *Handler {
	return &Handler{logger: logger, registry: registry, resolver: resolver, guard: guard}
}

// MountRoutes registers rbac routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/permissions", h.myPermissions)
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAny(PermRolesView))
		r.Get("/roles", h.listRoles)
	})
}

type roleView struct {
	Name        string       `json:"name"`
	Permissions []Permission `json:"permissions"`
	Extends     []string     `json:"extends,omitempty"`
	IsDefault   bool         `json:"is_default"`
}

// myPermissions returns the caller's resolved permission closure.
func (h *Handler) myPermissions(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.Owner() == "" {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login required")
		return
	}
	perms, err := h.resolver.Resolve(sess.Role())
	if err != nil {
		h.logger.Error("resolve session role", slog.String("role", sess.Role()), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"role":        sess.Role(),
		"permissions": perms,
	})
}

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	roles := h.registry.Roles()
	out := make([]roleView, 0, len(roles))
	for _, role := range roles {
		perms, err := h.resolver.Resolve(role.Name)
		if err != nil {
			h.logger.Error("resolve role", slog.String("role", role.Name), slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
			return
		}
		out = append(out, roleView{
			Name:        role.Name,
			Permissions: perms,
			Extends:     role.Extends,
			IsDefault:   role.IsDefault,
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"roles": out})
}
