package rbac

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// ErrConfig marks a malformed role registry. It is fatal at startup and
// never surfaces from request handling.
var ErrConfig = errors.New("rbac: invalid role registry")

// Registry is the immutable role configuration loaded once at process
// start. Permission closures are computed during construction, so lookups
// afterwards are plain map reads and safe for concurrent use.
type Registry struct {
	roles       map[string]Role
	order       []string
	defaultRole string
	closures    map[string]map[Permission]struct{}
}

type registryFile struct {
	Roles []roleSpec `yaml:"roles"`
}

type roleSpec struct {
	Name        string   `yaml:"name"`
	Permissions []string `yaml:"permissions"`
	Extends     []string `yaml:"extends"`
	Default     bool     `yaml:"default"`
}

// BuiltinRegistry returns the registry used when no roles file is configured.
func BuiltinRegistry() *Registry {
	reg, err := NewRegistry([]Role{
		{
			Name:      "user",
			IsDefault: true,
			Permissions: []Permission{
				PermEmotionsView, PermEmotionsEdit,
				PermDaysView, PermDaysEdit,
			},
		},
		{
			Name: "auditor",
			Permissions: []Permission{
				PermEmotionsView, PermDaysView,
				PermRolesView, PermPermissionsView,
			},
		},
		{
			Name:        "admin",
			Extends:     []string{"user", "auditor"},
			Permissions: []Permission{PermOwnersManage},
		},
	})
	if err != nil {
		// The built-in registry is covered by tests; reaching this means
		// the binary itself is broken.
		panic(err)
	}
	return reg
}

// LoadRegistryFile parses the YAML roles file at path and validates it.
func LoadRegistryFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrConfig, path, err)
	}
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrConfig, path, err)
	}
	roles := make([]Role, 0, len(file.Roles))
	for _, spec := range file.Roles {
		role := Role{
			Name:      spec.Name,
			Extends:   spec.Extends,
			IsDefault: spec.Default,
		}
		for _, p := range spec.Permissions {
			role.Permissions = append(role.Permissions, Permission(p))
		}
		roles = append(roles, role)
	}
	return NewRegistry(roles)
}

// NewRegistry validates the supplied roles and precomputes permission
// closures. Validation failures are ErrConfig: duplicate or empty role
// names, unknown permission tokens, unknown extends targets, extends
// cycles, and anything but exactly one default role.
func NewRegistry(roles []Role) (*Registry, error) {
	if len(roles) == 0 {
		return nil, fmt.Errorf("%w: no roles defined", ErrConfig)
	}

	reg := &Registry{
		roles:    make(map[string]Role, len(roles)),
		closures: make(map[string]map[Permission]struct{}, len(roles)),
	}
	for _, role := range roles {
		if role.Name == "" {
			return nil, fmt.Errorf("%w: role with empty name", ErrConfig)
		}
		if _, exists := reg.roles[role.Name]; exists {
			return nil, fmt.Errorf("%w: duplicate role %q", ErrConfig, role.Name)
		}
		for _, perm := range role.Permissions {
			if !perm.Known() {
				return nil, fmt.Errorf("%w: role %q grants unknown permission %q", ErrConfig, role.Name, perm)
			}
		}
		reg.roles[role.Name] = role
		reg.order = append(reg.order, role.Name)
	}

	for _, role := range roles {
		for _, parent := range role.Extends {
			if _, ok := reg.roles[parent]; !ok {
				return nil, fmt.Errorf("%w: role %q extends unknown role %q", ErrConfig, role.Name, parent)
			}
		}
		if role.IsDefault {
			if reg.defaultRole != "" {
				return nil, fmt.Errorf("%w: multiple default roles (%q, %q)", ErrConfig, reg.defaultRole, role.Name)
			}
			reg.defaultRole = role.Name
		}
	}
	if reg.defaultRole == "" {
		return nil, fmt.Errorf("%w: no default role", ErrConfig)
	}

	for name := range reg.roles {
		closure, err := reg.closureOf(name, map[string]bool{})
		if err != nil {
			return nil, err
		}
		reg.closures[name] = closure
	}

	sort.Strings(reg.order)
	return reg, nil
}

// closureOf walks the extends graph depth-first, carrying the set of roles
// on the current path so a cyclic registry is rejected instead of looping.
func (r *Registry) closureOf(name string, onPath map[string]bool) (map[Permission]struct{}, error) {
	if onPath[name] {
		return nil, fmt.Errorf("%w: extends cycle through role %q", ErrConfig, name)
	}
	if cached, ok := r.closures[name]; ok {
		return cached, nil
	}
	onPath[name] = true
	defer delete(onPath, name)

	role := r.roles[name]
	closure := make(map[Permission]struct{}, len(role.Permissions))
	for _, perm := range role.Permissions {
		closure[perm] = struct{}{}
	}
	for _, parent := range role.Extends {
		parentClosure, err := r.closureOf(parent, onPath)
		if err != nil {
			return nil, err
		}
		for perm := range parentClosure {
			closure[perm] = struct{}{}
		}
	}
	return closure, nil
}

// DefaultRole returns the single role marked default, validated at load.
func (r *Registry) DefaultRole() Role {
	return r.roles[r.defaultRole]
}

// Role looks up a role by name.
func (r *Registry) Role(name string) (Role, bool) {
	role, ok := r.roles[name]
	return role, ok
}

// Roles lists all roles ordered by name.
func (r *Registry) Roles() []Role {
	out := make([]Role, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.roles[name])
	}
	return out
}
