package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/shop-booking-api/internal/middleware"
	"github.com/noah-isme/shop-booking-api/internal/models"
	appErrors "github.com/noah-isme/shop-booking-api/pkg/errors"
	"github.com/noah-isme/shop-booking-api/pkg/response"
)

// requireClaims writes a 401 and returns nil when the request is anonymous.
func requireClaims(c *gin.Context) *models.JWTClaims {
	claims, ok := middleware.Claims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil
	}
	return claims
}

// bindJSON decodes the body into dest, answering 400 on malformed input.
func bindJSON(c *gin.Context, dest interface{}, message string) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Validation(err, message))
		return false
	}
	return true
}
