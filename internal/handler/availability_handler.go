package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/shop-booking-api/internal/dto"
	"github.com/noah-isme/shop-booking-api/internal/models"
	appErrors "github.com/noah-isme/shop-booking-api/pkg/errors"
	"github.com/noah-isme/shop-booking-api/pkg/response"
)

type availabilityService interface {
	Availability(ctx context.Context, professionalID, rawDate string) (*dto.AvailabilityResponse, error)
	Agenda(ctx context.Context, rawDate, professionalID string) (*dto.AgendaResponse, error)
}

// AvailabilityHandler serves free slots and day agendas.
type AvailabilityHandler struct {
	service availabilityService
}

// NewAvailabilityHandler constructs the handler.
func NewAvailabilityHandler(service availabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{service: service}
}

// Availability godoc
// @Summary Free start times of a professional on a date
// @Tags Availability
// @Produce json
// @Param id path string true "Professional ID"
// @Param date query string true "Venue date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /professionals/{id}/availability [get]
func (h *AvailabilityHandler) Availability(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date is required"))
		return
	}
	resp, err := h.service.Availability(c.Request.Context(), c.Param("id"), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}

// Agenda godoc
// @Summary Occupancy grid of a date
// @Description Each cell is FREE, CLOSED, ANCHOR (first cell of a claim, with its span) or CONTINUATION.
// @Tags Availability
// @Produce json
// @Param date query string true "Venue date (YYYY-MM-DD)"
// @Param professional_id query string false "Professional ID; omitted gives the venue-wide view"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /agenda [get]
func (h *AvailabilityHandler) Agenda(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date is required"))
		return
	}
	professionalID := c.Query("professional_id")
	if claims := requireClaims(c); claims == nil {
		return
	} else if claims.Role == models.RoleProfessional && !claims.CanManageProfessional(professionalID) {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "professionals may only view their own agenda"))
		return
	}
	agenda, err := h.service.Agenda(c.Request.Context(), date, professionalID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, agenda)
}
