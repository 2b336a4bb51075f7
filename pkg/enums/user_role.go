package enums

import "fmt"

// UserRole gates write permissions across the application.
type UserRole string

const (
	UserRoleAdmin  UserRole = "Admin"
	UserRoleEditor UserRole = "Editor"
	UserRoleViewer UserRole = "Viewer"
)

var validUserRoles = []UserRole{
	UserRoleAdmin,
	UserRoleEditor,
	UserRoleViewer,
}

// String implements fmt.Stringer.
func (r UserRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known UserRole.
func (r UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// CanEdit reports whether the role is allowed to mutate data.
func (r UserRole) CanEdit() bool {
	return r == UserRoleAdmin || r == UserRoleEditor
}

// ParseUserRole converts raw input into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}
