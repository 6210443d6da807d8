package rbac

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestNewRegistryRejectsEmptySet(t *testing.T) {
	if _, err := NewRegistry(nil); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
}

func TestNewRegistryRejectsDuplicateNames(t *testing.T) {
	_, err := NewRegistry([]Role{
		{Name: "user", IsDefault: true},
		{Name: "user"},
	})
	if !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
}

func TestNewRegistryRejectsUnknownPermission(t *testing.T) {
	_, err := NewRegistry([]Role{
		{Name: "user", IsDefault: true, Permissions: []Permission{"no.such.permission"}},
	})
	if !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
}

func TestNewRegistryRejectsUnknownExtends(t *testing.T) {
	_, err := NewRegistry([]Role{
		{Name: "user", IsDefault: true, Extends: []string{"ghost"}},
	})
	if !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
}

func TestNewRegistryRequiresExactlyOneDefault(t *testing.T) {
	_, err := NewRegistry([]Role{{Name: "user"}, {Name: "admin"}})
	if !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig for zero defaults, got %v", err)
	}

	_, err = NewRegistry([]Role{
		{Name: "user", IsDefault: true},
		{Name: "admin", IsDefault: true},
	})
	if !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig for two defaults, got %v", err)
	}
}

func TestNewRegistryRejectsExtendsCycle(t *testing.T) {
	_, err := NewRegistry([]Role{
		{Name: "a", IsDefault: true, Extends: []string{"b"}},
		{Name: "b", Extends: []string{"c"}},
		{Name: "c", Extends: []string{"a"}},
	})
	if !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig for cycle, got %v", err)
	}
}

func TestNewRegistrySelfCycle(t *testing.T) {
	_, err := NewRegistry([]Role{
		{Name: "a", IsDefault: true, Extends: []string{"a"}},
	})
	if !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig for self-cycle, got %v", err)
	}
}

func TestNewRegistryDiamondIsNotACycle(t *testing.T) {
	reg, err := NewRegistry([]Role{
		{Name: "base", IsDefault: true, Permissions: []Permission{PermEmotionsView}},
		{Name: "left", Extends: []string{"base"}, Permissions: []Permission{PermEmotionsEdit}},
		{Name: "right", Extends: []string{"base"}, Permissions: []Permission{PermDaysView}},
		{Name: "top", Extends: []string{"left", "right"}},
	})
	if err != nil {
		t.Fatalf("diamond inheritance must load, got %v", err)
	}
	closure := reg.closures["top"]
	for _, perm := range []Permission{PermEmotionsView, PermEmotionsEdit, PermDaysView} {
		if _, ok := closure[perm]; !ok {
			t.Fatalf("top closure missing %s", perm)
		}
	}
}

func TestBuiltinRegistry(t *testing.T) {
	reg := BuiltinRegistry()
	if reg.DefaultRole().Name != "user" {
		t.Fatalf("expected default role user, got %q", reg.DefaultRole().Name)
	}
	if len(reg.Roles()) != 3 {
		t.Fatalf("expected 3 builtin roles, got %d", len(reg.Roles()))
	}
}

func TestLoadRegistryFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roles.yml")
	content := `roles:
  - name: user
    default: true
    permissions:
      - journal.emotions.view
      - journal.days.view
  - name: admin
    extends: [user]
    permissions:
      - admin.owners.manage
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write roles file: %v", err)
	}

	reg, err := LoadRegistryFile(path)
	if err != nil {
		t.Fatalf("load registry: %v", err)
	}
	if reg.DefaultRole().Name != "user" {
		t.Fatalf("expected default user, got %q", reg.DefaultRole().Name)
	}
	if _, ok := reg.closures["admin"][PermEmotionsView]; !ok {
		t.Fatal("admin must inherit journal.emotions.view from user")
	}
}

func TestLoadRegistryFileErrors(t *testing.T) {
	if _, err := LoadRegistryFile(filepath.Join(t.TempDir(), "missing.yml")); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig for missing file, got %v", err)
	}

	path := filepath.Join(t.TempDir(), "broken.yml")
	if err := os.WriteFile(path, []byte("roles: ["), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := LoadRegistryFile(path); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig for broken yaml, got %v", err)
	}
}
