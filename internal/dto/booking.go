package dto

import "github.com/noah-isme/shop-booking-api/internal/models"

// StartBookingSessionRequest opens a booking session. RescheduleOf switches
// the session to moving an existing appointment.
type StartBookingSessionRequest struct {
	RescheduleOf string `json:"reschedule_of"`
}

// SelectServiceRequest picks the service of a session.
type SelectServiceRequest struct {
	ServiceID string `json:"service_id" validate:"required"`
}

// SelectProfessionalRequest picks the professional of a session.
type SelectProfessionalRequest struct {
	ProfessionalID string `json:"professional_id" validate:"required"`
}

// SelectDateRequest picks the calendar date, formatted YYYY-MM-DD.
type SelectDateRequest struct {
	Date string `json:"date" validate:"required"`
}

// SelectTimeRequest picks the start time, formatted HH:MM.
type SelectTimeRequest struct {
	Time string `json:"time" validate:"required"`
}

// SelectPaymentOptionRequest picks how the client pays.
type SelectPaymentOptionRequest struct {
	Option models.PaymentOption `json:"payment_option" validate:"required,oneof=TOTAL DEPOSIT LOCAL"`
}

// BackRequest returns a session to an earlier step.
type BackRequest struct {
	Step string `json:"step" validate:"required"`
}
