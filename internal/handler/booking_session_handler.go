package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/shop-booking-api/internal/booking"
	"github.com/noah-isme/shop-booking-api/internal/dto"
	appErrors "github.com/noah-isme/shop-booking-api/pkg/errors"
	"github.com/noah-isme/shop-booking-api/pkg/response"
)

type bookingSessionService interface {
	Start(ctx context.Context, clientID string, req dto.StartBookingSessionRequest) (booking.View, error)
	Get(clientID, id string) (booking.View, error)
	Delete(clientID, id string) error
	SelectService(clientID, id string, req dto.SelectServiceRequest) (booking.View, error)
	SelectProfessional(ctx context.Context, clientID, id string, req dto.SelectProfessionalRequest) (booking.View, error)
	SelectDate(ctx context.Context, clientID, id string, req dto.SelectDateRequest) (booking.View, error)
	SelectTime(clientID, id string, req dto.SelectTimeRequest) (booking.View, error)
	SelectPaymentOption(clientID, id string, req dto.SelectPaymentOptionRequest) (booking.View, error)
	Back(clientID, id string, req dto.BackRequest) (booking.View, error)
	Submit(ctx context.Context, clientID, id string) (booking.View, error)
}

// BookingSessionHandler drives the step-by-step booking flow.
type BookingSessionHandler struct {
	service bookingSessionService
}

// NewBookingSessionHandler constructs the handler.
func NewBookingSessionHandler(service bookingSessionService) *BookingSessionHandler {
	return &BookingSessionHandler{service: service}
}

// Start godoc
// @Summary Open a booking session
// @Tags Booking
// @Accept json
// @Produce json
// @Param payload body dto.StartBookingSessionRequest false "Optional appointment to reschedule"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /booking-sessions [post]
func (h *BookingSessionHandler) Start(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req dto.StartBookingSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, appErrors.Validation(err, "invalid session payload"))
		return
	}
	view, err := h.service.Start(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, view)
}

// Get godoc
// @Summary Current state of a booking session
// @Tags Booking
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /booking-sessions/{id} [get]
func (h *BookingSessionHandler) Get(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	view, err := h.service.Get(claims.UserID, c.Param("id"))
	h.respond(c, view, err)
}

// Delete godoc
// @Summary Abandon a booking session
// @Tags Booking
// @Param id path string true "Session ID"
// @Success 204
// @Security BearerAuth
// @Router /booking-sessions/{id} [delete]
func (h *BookingSessionHandler) Delete(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	if err := h.service.Delete(claims.UserID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SelectService godoc
// @Summary Choose the service
// @Tags Booking
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.SelectServiceRequest true "Service"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /booking-sessions/{id}/service [put]
func (h *BookingSessionHandler) SelectService(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req dto.SelectServiceRequest
	if !bindJSON(c, &req, "invalid service selection") {
		return
	}
	view, err := h.service.SelectService(claims.UserID, c.Param("id"), req)
	h.respond(c, view, err)
}

// SelectProfessional godoc
// @Summary Choose the professional
// @Tags Booking
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.SelectProfessionalRequest true "Professional"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /booking-sessions/{id}/professional [put]
func (h *BookingSessionHandler) SelectProfessional(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req dto.SelectProfessionalRequest
	if !bindJSON(c, &req, "invalid professional selection") {
		return
	}
	view, err := h.service.SelectProfessional(c.Request.Context(), claims.UserID, c.Param("id"), req)
	h.respond(c, view, err)
}

// SelectDate godoc
// @Summary Choose the date and load its free slots
// @Tags Booking
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.SelectDateRequest true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /booking-sessions/{id}/date [put]
func (h *BookingSessionHandler) SelectDate(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req dto.SelectDateRequest
	if !bindJSON(c, &req, "invalid date selection") {
		return
	}
	view, err := h.service.SelectDate(c.Request.Context(), claims.UserID, c.Param("id"), req)
	h.respond(c, view, err)
}

// SelectTime godoc
// @Summary Choose one of the free start times
// @Tags Booking
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.SelectTimeRequest true "Time (HH:MM)"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /booking-sessions/{id}/time [put]
func (h *BookingSessionHandler) SelectTime(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req dto.SelectTimeRequest
	if !bindJSON(c, &req, "invalid time selection") {
		return
	}
	view, err := h.service.SelectTime(claims.UserID, c.Param("id"), req)
	h.respond(c, view, err)
}

// SelectPaymentOption godoc
// @Summary Choose how to pay
// @Tags Booking
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.SelectPaymentOptionRequest true "TOTAL, DEPOSIT or LOCAL"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /booking-sessions/{id}/payment-option [put]
func (h *BookingSessionHandler) SelectPaymentOption(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req dto.SelectPaymentOptionRequest
	if !bindJSON(c, &req, "invalid payment option") {
		return
	}
	view, err := h.service.SelectPaymentOption(claims.UserID, c.Param("id"), req)
	h.respond(c, view, err)
}

// Back godoc
// @Summary Return to an earlier step
// @Tags Booking
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.BackRequest true "Target step"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /booking-sessions/{id}/back [post]
func (h *BookingSessionHandler) Back(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req dto.BackRequest
	if !bindJSON(c, &req, "invalid step") {
		return
	}
	view, err := h.service.Back(claims.UserID, c.Param("id"), req)
	h.respond(c, view, err)
}

// Submit godoc
// @Summary Book, reschedule or open the checkout
// @Description Answers 200 with the session view; a FAILED state carries the failure message.
// @Tags Booking
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /booking-sessions/{id}/submit [post]
func (h *BookingSessionHandler) Submit(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	view, err := h.service.Submit(c.Request.Context(), claims.UserID, c.Param("id"))
	h.respond(c, view, err)
}

func (h *BookingSessionHandler) respond(c *gin.Context, view booking.View, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}
