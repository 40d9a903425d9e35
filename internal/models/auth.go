package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims is the access-token payload issued by the identity service.
type JWTClaims struct {
	UserID         string   `json:"user_id"`
	Role           UserRole `json:"role"`
	Email          string   `json:"email"`
	FullName       string   `json:"full_name"`
	ProfessionalID string   `json:"professional_id,omitempty"`
	jwt.RegisteredClaims
}

// CanManageProfessional reports whether the caller may change data owned by professionalID.
func (c *JWTClaims) CanManageProfessional(professionalID string) bool {
	if c == nil {
		return false
	}
	if c.Role == RoleAdmin {
		return true
	}
	return c.Role == RoleProfessional && c.ProfessionalID != "" && c.ProfessionalID == professionalID
}
