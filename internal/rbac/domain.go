package rbac

// Permission is an atomic capability token from a closed enumeration.
type Permission string

// All permissions known to the platform.
const (
	PermEmotionsView    Permission = "journal.emotions.view"
	PermEmotionsEdit    Permission = "journal.emotions.edit"
	PermDaysView        Permission = "journal.days.view"
	PermDaysEdit        Permission = "journal.days.edit"
	PermRolesView       Permission = "rbac.roles.view"
	PermPermissionsView Permission = "rbac.permissions.view"
	PermOwnersManage    Permission = "admin.owners.manage"
)

// AllPermissions lists the closed permission set.
func AllPermissions() []Permission {
	return []Permission{
		PermEmotionsView,
		PermEmotionsEdit,
		PermDaysView,
		PermDaysEdit,
		PermRolesView,
		PermPermissionsView,
		PermOwnersManage,
	}
}

// Known reports whether p belongs to the closed enumeration.
func (p Permission) Known() bool {
	for _, known := range AllPermissions() {
		if p == known {
			return true
		}
	}
	return false
}

// Role is a named permission bundle with optional inheritance.
type Role struct {
	Name        string
	Permissions []Permission
	Extends     []string
	IsDefault   bool
}
