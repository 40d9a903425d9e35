package dto

import "time"

// CreateBlockRequest defines the payload for blocking time.
type CreateBlockRequest struct {
	ProfessionalID *string   `json:"professional_id"`
	StartAt        time.Time `json:"start_at" validate:"required"`
	EndAt          time.Time `json:"end_at" validate:"required"`
	Reason         string    `json:"reason" validate:"max=255"`
	IsGeneral      bool      `json:"is_general"`
}

// BlockQuery filters block listings by venue date.
type BlockQuery struct {
	Date           string `form:"date" validate:"required"`
	ProfessionalID string `form:"professional_id"`
}
