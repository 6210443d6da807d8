package rbac

import (
	"errors"
	"sort"
)

// ErrUnknownRole indicates a role name outside the loaded registry.
var ErrUnknownRole = errors.New("rbac: unknown role")

// Resolver answers permission-closure queries against a loaded registry.
// It is pure: the registry is immutable after load, closures are already
// materialized, and every method is safe for unsynchronized concurrent use.
type Resolver struct {
	registry *Registry
}

// NewResolver constructs a Resolver over the registry.
func NewResolver(registry *Registry) *Resolver {
	return &Resolver{registry: registry}
}

// Resolve returns the full permission closure of the role: its direct
// grants unioned with the closures of every role it extends.
func (r *Resolver) Resolve(role string) ([]Permission, error) {
	closure, ok := r.registry.closures[role]
	if !ok {
		return nil, ErrUnknownRole
	}
	perms := make([]Permission, 0, len(closure))
	for perm := range closure {
		perms = append(perms, perm)
	}
	sort.Slice(perms, func(i, j int) bool { return perms[i] < perms[j] })
	return perms, nil
}

// HasPermission reports whether perm is in the role's closure. Unknown
// roles hold no permissions.
func (r *Resolver) HasPermission(role string, perm Permission) bool {
	closure, ok := r.registry.closures[role]
	if !ok {
		return false
	}
	_, granted := closure[perm]
	return granted
}

// DefaultRole exposes the registry's default role name.
func (r *Resolver) DefaultRole() string {
	return r.registry.DefaultRole().Name
}
