package models

// UserRole represents the roles recognised by the RBAC middleware.
type UserRole string

const (
	RoleAdmin        UserRole = "ADMIN"
	RoleProfessional UserRole = "PROFESSIONAL"
	RoleClient       UserRole = "CLIENT"
)

// Valid reports whether r is a role the API knows.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleProfessional, RoleClient:
		return true
	}
	return false
}
