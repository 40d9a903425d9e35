package dto

import (
	"time"

	"github.com/noah-isme/shop-booking-api/internal/models"
)

// CreateAppointmentRequest books a new appointment.
type CreateAppointmentRequest struct {
	ProfessionalID string    `json:"professional_id" validate:"required"`
	ServiceID      string    `json:"service_id" validate:"required"`
	ClientID       string    `json:"client_id"`
	StartAt        time.Time `json:"start_at" validate:"required"`
}

// RescheduleAppointmentRequest moves an appointment to a new start.
type RescheduleAppointmentRequest struct {
	StartAt time.Time `json:"start_at" validate:"required"`
}

// PaymentPreferenceRequest asks for a checkout for an appointment.
type PaymentPreferenceRequest struct {
	Option models.PaymentOption `json:"payment_option" validate:"required,oneof=TOTAL DEPOSIT"`
}

// AppointmentQuery filters appointment listings.
type AppointmentQuery struct {
	From             string `form:"from"`
	To               string `form:"to"`
	IncludeCancelled bool   `form:"include_cancelled"`
}
