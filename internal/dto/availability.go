package dto

import (
	"time"

	"github.com/noah-isme/shop-booking-api/internal/availability"
	"github.com/noah-isme/shop-booking-api/internal/models"
)

// AvailabilityResponse lists the free start times of one professional on one date.
type AvailabilityResponse struct {
	ProfessionalID string             `json:"professional_id"`
	Date           string             `json:"date"`
	Timezone       string             `json:"timezone"`
	Slots          []time.Time        `json:"slots"`
	Times          []models.TimeOfDay `json:"times"`
}

// AgendaResponse is the occupancy projection of a date.
type AgendaResponse struct {
	Date           string                  `json:"date"`
	ProfessionalID string                  `json:"professional_id,omitempty"`
	FullDayClosed  bool                    `json:"full_day_closed"`
	Cells          []availability.CellView `json:"cells"`
}
