package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/shop-booking-api/internal/dto"
	"github.com/noah-isme/shop-booking-api/internal/events"
	"github.com/noah-isme/shop-booking-api/internal/models"
	appErrors "github.com/noah-isme/shop-booking-api/pkg/errors"
)

type blockRepository interface {
	List(ctx context.Context, filter models.BlockFilter) ([]models.Block, error)
	Create(ctx context.Context, block *models.Block) error
	Delete(ctx context.Context, id string) (bool, error)
}

// BlockService manages general closures and particular blocks. Changes are
// visible to the next availability computation without invalidation.
type BlockService struct {
	repo         blockRepository
	catalog      *CatalogService
	availability *AvailabilityService
	emitter      eventEmitter
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewBlockService constructs a BlockService.
func NewBlockService(repo blockRepository, catalog *CatalogService, availabilitySvc *AvailabilityService, publisher events.Publisher, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *BlockService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BlockService{
		repo:         repo,
		catalog:      catalog,
		availability: availabilitySvc,
		emitter:      newEventEmitter(publisher, metrics, logger),
		validator:    validate,
		logger:       logger,
	}
}

// Create stores a block. General blocks close every date they touch;
// particular blocks must name a professional and stay within venue hours of
// a single date.
func (s *BlockService) Create(ctx context.Context, req dto.CreateBlockRequest) (*models.Block, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid block payload")
	}
	if !req.StartAt.Before(req.EndAt) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start_at must be before end_at")
	}

	var professionalID *string
	if req.ProfessionalID != nil {
		if trimmed := strings.TrimSpace(*req.ProfessionalID); trimmed != "" {
			professionalID = &trimmed
		}
	}

	if req.IsGeneral {
		if professionalID != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "general blocks apply to every professional")
		}
	} else {
		if professionalID == nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "professional_id is required for particular blocks")
		}
		if _, err := s.catalog.GetProfessional(ctx, *professionalID); err != nil {
			return nil, err
		}
		if !s.withinVenueHours(req) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "particular blocks must fall within venue hours of a single date")
		}
	}

	block := &models.Block{
		ProfessionalID: professionalID,
		StartAt:        req.StartAt.UTC(),
		EndAt:          req.EndAt.UTC(),
		Reason:         strings.TrimSpace(req.Reason),
		IsGeneral:      req.IsGeneral,
	}
	if err := s.repo.Create(ctx, block); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create block")
	}

	s.logger.Info("block created", zap.String("block_id", block.ID), zap.Bool("general", block.IsGeneral))
	s.emitter.emit(ctx, events.BlockCreated, block.ID, block)
	return block, nil
}

// Delete removes a block. A missing id yields NotFound and changes nothing.
func (s *BlockService) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete block")
	}
	if !deleted {
		return appErrors.Clone(appErrors.ErrNotFound, "block not found")
	}
	s.logger.Info("block deleted", zap.String("block_id", id))
	s.emitter.emit(ctx, events.BlockDeleted, id, map[string]string{"id": id})
	return nil
}

// List returns the blocks touching a venue date, optionally narrowed to the
// general blocks plus one professional's particular blocks.
func (s *BlockService) List(ctx context.Context, query dto.BlockQuery) ([]models.Block, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Validation(err, "date is required")
	}
	date, err := s.availability.ParseDate(query.Date)
	if err != nil {
		return nil, err
	}
	day := s.availability.DayRange(date)
	blocks, err := s.repo.List(ctx, models.BlockFilter{From: day.Start, To: day.End, ProfessionalID: query.ProfessionalID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list blocks")
	}
	if blocks == nil {
		blocks = []models.Block{}
	}
	return blocks, nil
}

func (s *BlockService) withinVenueHours(req dto.CreateBlockRequest) bool {
	engine := s.availability.Engine()
	date := engine.Date(req.StartAt)
	grid := engine.Grid()
	opens := grid.Open.On(date)
	closes := grid.Close.On(date)
	return !req.StartAt.Before(opens) && !req.EndAt.After(closes)
}
