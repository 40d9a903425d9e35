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

type appointmentService interface {
	Create(ctx context.Context, req dto.CreateAppointmentRequest) (*models.Appointment, error)
	Reschedule(ctx context.Context, appointmentID string, req dto.RescheduleAppointmentRequest) (*models.Appointment, error)
	Get(ctx context.Context, id string) (*models.Appointment, error)
	ListForProfessional(ctx context.Context, professionalID string, query dto.AppointmentQuery) ([]models.Appointment, error)
	CreatePaymentPreference(ctx context.Context, appointmentID string, option models.PaymentOption) (*models.PaymentPreference, error)
	PaymentPreferences(ctx context.Context, appointmentID string) ([]models.PaymentPreference, error)
}

// AppointmentHandler exposes the appointment ledger.
type AppointmentHandler struct {
	service appointmentService
}

// NewAppointmentHandler constructs the handler.
func NewAppointmentHandler(service appointmentService) *AppointmentHandler {
	return &AppointmentHandler{service: service}
}

// ListForProfessional godoc
// @Summary List a professional's appointments
// @Tags Appointments
// @Produce json
// @Param id path string true "Professional ID"
// @Param from query string false "First venue date (YYYY-MM-DD), default today"
// @Param to query string false "Last venue date (YYYY-MM-DD), default from+30 days"
// @Param include_cancelled query bool false "Include cancelled appointments"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /professionals/{id}/appointments [get]
func (h *AppointmentHandler) ListForProfessional(c *gin.Context) {
	var query dto.AppointmentQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid query parameters"))
		return
	}
	appointments, err := h.service.ListForProfessional(c.Request.Context(), c.Param("id"), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, appointments, map[string]interface{}{"count": len(appointments)})
}

// Create godoc
// @Summary Book an appointment
// @Description Clients always book for themselves; staff may book on behalf of client_id.
// @Tags Appointments
// @Accept json
// @Produce json
// @Param payload body dto.CreateAppointmentRequest true "Appointment payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /appointments [post]
func (h *AppointmentHandler) Create(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req dto.CreateAppointmentRequest
	if !bindJSON(c, &req, "invalid appointment payload") {
		return
	}
	if claims.Role == models.RoleClient || req.ClientID == "" {
		req.ClientID = claims.UserID
	}
	appt, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, appt)
}

// Reschedule godoc
// @Summary Move an appointment to a new start
// @Tags Appointments
// @Accept json
// @Produce json
// @Param id path string true "Appointment ID"
// @Param payload body dto.RescheduleAppointmentRequest true "New start"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /appointments/{id}/reschedule [put]
func (h *AppointmentHandler) Reschedule(c *gin.Context) {
	if !h.authorize(c) {
		return
	}
	var req dto.RescheduleAppointmentRequest
	if !bindJSON(c, &req, "invalid reschedule payload") {
		return
	}
	appt, err := h.service.Reschedule(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, appt)
}

// CreatePaymentPreference godoc
// @Summary Open a checkout for an appointment
// @Tags Appointments
// @Accept json
// @Produce json
// @Param id path string true "Appointment ID"
// @Param payload body dto.PaymentPreferenceRequest true "TOTAL or DEPOSIT"
// @Success 201 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Security BearerAuth
// @Router /appointments/{id}/payment-preference [post]
func (h *AppointmentHandler) CreatePaymentPreference(c *gin.Context) {
	if !h.authorize(c) {
		return
	}
	var req dto.PaymentPreferenceRequest
	if !bindJSON(c, &req, "invalid payment preference payload") {
		return
	}
	pref, err := h.service.CreatePaymentPreference(c.Request.Context(), c.Param("id"), req.Option)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, pref)
}

// PaymentPreferences godoc
// @Summary List checkouts opened for an appointment
// @Tags Appointments
// @Produce json
// @Param id path string true "Appointment ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /appointments/{id}/payment-preferences [get]
func (h *AppointmentHandler) PaymentPreferences(c *gin.Context) {
	if !h.authorize(c) {
		return
	}
	prefs, err := h.service.PaymentPreferences(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, prefs)
}

// authorize loads the appointment named by the path and admits its client,
// its professional and admins.
func (h *AppointmentHandler) authorize(c *gin.Context) bool {
	claims := requireClaims(c)
	if claims == nil {
		return false
	}
	appt, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return false
	}
	if appt.ClientID != claims.UserID && !claims.CanManageProfessional(appt.ProfessionalID) {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "appointment belongs to another client"))
		return false
	}
	return true
}
