package models

import "time"

// AppointmentStatus captures the operational lifecycle of an appointment.
type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "PENDING"
	AppointmentConfirmed AppointmentStatus = "CONFIRMED"
	AppointmentCompleted AppointmentStatus = "COMPLETED"
	AppointmentCharged   AppointmentStatus = "CHARGED"
	AppointmentCancelled AppointmentStatus = "CANCELLED"
)

// Occupies reports whether an appointment in this status holds its interval.
func (s AppointmentStatus) Occupies() bool {
	return s != AppointmentCancelled
}

// Reschedulable reports whether the appointment can still move.
func (s AppointmentStatus) Reschedulable() bool {
	return s == AppointmentPending || s == AppointmentConfirmed
}

// Appointment is a booked interval [StartAt, StartAt+DurationMinutes).
type Appointment struct {
	ID              string            `db:"id" json:"id"`
	ProfessionalID  string            `db:"professional_id" json:"professional_id"`
	ServiceID       string            `db:"service_id" json:"service_id"`
	ClientID        string            `db:"client_id" json:"client_id"`
	StartAt         time.Time         `db:"start_at" json:"start_at"`
	DurationMinutes int               `db:"duration_minutes" json:"duration_minutes"`
	Status          AppointmentStatus `db:"status" json:"status"`
	CreatedAt       time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time         `db:"updated_at" json:"updated_at"`
}

// EndAt returns the exclusive end of the appointment.
func (a Appointment) EndAt() time.Time {
	return a.StartAt.Add(time.Duration(a.DurationMinutes) * time.Minute)
}

// AppointmentFilter narrows appointment listings.
type AppointmentFilter struct {
	ProfessionalID   string
	From             time.Time
	To               time.Time
	IncludeCancelled bool
}

// DayRange is the [Start, End) span of one venue calendar date.
type DayRange struct {
	Start time.Time
	End   time.Time
}
