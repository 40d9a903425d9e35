package middleware

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/shop-booking-api/internal/models"
)

func TestRequireRoles(t *testing.T) {
	r := newRouter(JWT(testValidator), RequireRoles(models.RoleAdmin, models.RoleProfessional))

	assert.Equal(t, http.StatusOK, get(r, "/professionals/pro-1", "admin").Code)
	assert.Equal(t, http.StatusOK, get(r, "/professionals/pro-1", "pro").Code)
	assert.Equal(t, http.StatusForbidden, get(r, "/professionals/pro-1", "client").Code)
}

func TestRequireRolesWithoutClaims(t *testing.T) {
	r := newRouter(RequireRoles(models.RoleAdmin))

	assert.Equal(t, http.StatusUnauthorized, get(r, "/professionals/pro-1", "").Code)
}

func TestRequireProfessionalAccess(t *testing.T) {
	r := newRouter(JWT(testValidator), RequireProfessionalAccess("id"))

	assert.Equal(t, http.StatusOK, get(r, "/professionals/pro-1", "pro").Code)
	assert.Equal(t, http.StatusForbidden, get(r, "/professionals/pro-2", "pro").Code)
	assert.Equal(t, http.StatusOK, get(r, "/professionals/pro-2", "admin").Code)
	assert.Equal(t, http.StatusForbidden, get(r, "/professionals/pro-1", "client").Code)
}
