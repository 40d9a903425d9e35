package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/shop-booking-api/internal/availability"
	"github.com/noah-isme/shop-booking-api/internal/dto"
	"github.com/noah-isme/shop-booking-api/internal/models"
	appErrors "github.com/noah-isme/shop-booking-api/pkg/errors"
)

// ScheduleTemplateService reads and replaces professionals' weekly templates.
type ScheduleTemplateService struct {
	catalog       *CatalogService
	professionals professionalRepository
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewScheduleTemplateService builds the service.
func NewScheduleTemplateService(catalog *CatalogService, professionals professionalRepository, validate *validator.Validate, logger *zap.Logger) *ScheduleTemplateService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleTemplateService{catalog: catalog, professionals: professionals, validator: validate, logger: logger}
}

// Template returns the stored template, or the default flagged as such.
func (s *ScheduleTemplateService) Template(ctx context.Context, professionalID string) (*dto.ScheduleTemplateResponse, error) {
	pro, err := s.catalog.GetProfessional(ctx, professionalID)
	if err != nil {
		return nil, err
	}
	return &dto.ScheduleTemplateResponse{
		ProfessionalID: pro.ID,
		IsDefault:      len(pro.WeeklyTemplate) != models.DaysPerWeek,
		Days:           availability.ResolveTemplate(pro.WeeklyTemplate),
	}, nil
}

// Upsert validates and stores a template, then drops the cached professionals.
func (s *ScheduleTemplateService) Upsert(ctx context.Context, professionalID string, req dto.UpsertScheduleTemplateRequest) (*dto.ScheduleTemplateResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid schedule payload")
	}
	if err := req.Days.Validate(); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	if _, err := s.catalog.GetProfessional(ctx, professionalID); err != nil {
		return nil, err
	}
	if err := s.professionals.UpdateTemplate(ctx, professionalID, req.Days); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store schedule")
	}
	s.catalog.InvalidateProfessionals(ctx)
	s.logger.Info("schedule template updated", zap.String("professional_id", professionalID))

	return &dto.ScheduleTemplateResponse{ProfessionalID: professionalID, Days: req.Days}, nil
}
