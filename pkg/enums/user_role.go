package enums

import "fmt"

// UserRole is the closed set of roles a store user can hold.
type UserRole string

const (
	UserRoleStaff   UserRole = "staff"
	UserRoleManager UserRole = "manager"
	UserRoleAdmin   UserRole = "admin"
)

var validUserRoles = map[UserRole]struct{}{
	UserRoleStaff:   {},
	UserRoleManager: {},
	UserRoleAdmin:   {},
}

func (r UserRole) IsValid() bool {
	_, ok := validUserRoles[r]
	return ok
}

func (r UserRole) String() string {
	return string(r)
}

// ParseUserRole converts a raw string into a UserRole or fails.
func ParseUserRole(value string) (UserRole, error) {
	role := UserRole(value)
	if !role.IsValid() {
		return "", fmt.Errorf("invalid user role %q", value)
	}
	return role, nil
}
