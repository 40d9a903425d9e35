package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/shop-booking-api/internal/dto"
	"github.com/noah-isme/shop-booking-api/pkg/response"
)

type scheduleTemplateService interface {
	Template(ctx context.Context, professionalID string) (*dto.ScheduleTemplateResponse, error)
	Upsert(ctx context.Context, professionalID string, req dto.UpsertScheduleTemplateRequest) (*dto.ScheduleTemplateResponse, error)
}

// ScheduleHandler manages weekly schedule templates.
type ScheduleHandler struct {
	service scheduleTemplateService
}

// NewScheduleHandler constructs handler.
func NewScheduleHandler(service scheduleTemplateService) *ScheduleHandler {
	return &ScheduleHandler{service: service}
}

// Get godoc
// @Summary Get a professional's weekly template
// @Description Professionals without a stored template get the venue default and is_default=true.
// @Tags Schedules
// @Produce json
// @Param id path string true "Professional ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /professionals/{id}/schedule [get]
func (h *ScheduleHandler) Get(c *gin.Context) {
	template, err := h.service.Template(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, template)
}

// Upsert godoc
// @Summary Replace a professional's weekly template
// @Tags Schedules
// @Accept json
// @Produce json
// @Param id path string true "Professional ID"
// @Param payload body dto.UpsertScheduleTemplateRequest true "Seven day entries, Monday first"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /professionals/{id}/schedule [put]
func (h *ScheduleHandler) Upsert(c *gin.Context) {
	var req dto.UpsertScheduleTemplateRequest
	if !bindJSON(c, &req, "invalid schedule payload") {
		return
	}
	template, err := h.service.Upsert(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, template)
}
