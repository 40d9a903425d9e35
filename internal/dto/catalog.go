package dto

import "github.com/noah-isme/shop-booking-api/internal/models"

// CatalogResponse bundles the lists a booking client needs to start.
type CatalogResponse struct {
	Services      []models.Service      `json:"services"`
	Professionals []models.Professional `json:"professionals"`
	Featured      []models.Service      `json:"featured"`
	CacheHit      bool                  `json:"-"`
}

// ScheduleTemplateResponse is a professional's effective weekly template.
type ScheduleTemplateResponse struct {
	ProfessionalID string                `json:"professional_id"`
	IsDefault      bool                  `json:"is_default"`
	Days           models.WeeklyTemplate `json:"days"`
}

// UpsertScheduleTemplateRequest replaces a professional's weekly template.
type UpsertScheduleTemplateRequest struct {
	Days models.WeeklyTemplate `json:"days" validate:"required,len=7,dive"`
}
