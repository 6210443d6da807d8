package rbac

import (
	"log/slog"
	"net/http"

	"github.com/emberlog/emberlog/internal/platform/httpx"
	"github.com/emberlog/emberlog/internal/shared"
)

// Middleware wires permission checks for HTTP handlers. The role under
// check comes from the session; resolution is a pure in-memory lookup.
type Middleware struct {
	Resolver *Resolver
	Logger   *slog.Logger
}

// RequireAny ensures the session role holds at least one of the permissions.
func (m Middleware) RequireAny(perms ...Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(perms) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			role, ok := m.currentRole(r)
			if !ok {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login required")
				return
			}
			for _, perm := range perms {
				if m.Resolver.HasPermission(role, perm) {
					next.ServeHTTP(w, r)
					return
				}
			}
			httpx.Problem(w, http.StatusForbidden, "Forbidden", "missing permission")
		})
	}
}

// RequireAll ensures the session role holds every listed permission.
func (m Middleware) RequireAll(perms ...Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := m.currentRole(r)
			if !ok && len(perms) > 0 {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login required")
				return
			}
			for _, perm := range perms {
				if !m.Resolver.HasPermission(role, perm) {
					httpx.Problem(w, http.StatusForbidden, "Forbidden", "missing permission")
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) currentRole(r *http.Request) (string, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.Owner() == "" {
		return "", false
	}
	role := sess.Role()
	if role == "" {
		if m.Logger != nil {
			m.Logger.Warn("session without role", slog.String("owner", sess.Owner()))
		}
		return "", false
	}
	return role, true
}
