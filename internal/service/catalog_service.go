package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/shop-booking-api/internal/dto"
	"github.com/noah-isme/shop-booking-api/internal/models"
	appErrors "github.com/noah-isme/shop-booking-api/pkg/errors"
)

type serviceRepository interface {
	ListActive(ctx context.Context) ([]models.Service, error)
	FindByID(ctx context.Context, id string) (*models.Service, error)
}

type professionalRepository interface {
	List(ctx context.Context) ([]models.Professional, error)
	FindByID(ctx context.Context, id string) (*models.Professional, error)
	UpdateTemplate(ctx context.Context, id string, template models.WeeklyTemplate) error
}

// CatalogServiceConfig tunes catalog caching.
type CatalogServiceConfig struct {
	ServicesTTL      time.Duration
	ProfessionalsTTL time.Duration
	FeaturedMax      int
}

// CatalogService serves services and professionals, cached in Redis.
type CatalogService struct {
	services      serviceRepository
	professionals professionalRepository
	cache         *CacheService
	logger        *zap.Logger
	cfg           CatalogServiceConfig
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(services serviceRepository, professionals professionalRepository, cache *CacheService, logger *zap.Logger, cfg CatalogServiceConfig) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ServicesTTL <= 0 {
		cfg.ServicesTTL = time.Hour
	}
	if cfg.ProfessionalsTTL <= 0 {
		cfg.ProfessionalsTTL = 30 * time.Minute
	}
	if cfg.FeaturedMax <= 0 {
		cfg.FeaturedMax = 6
	}
	return &CatalogService{
		services:      services,
		professionals: professionals,
		cache:         cache,
		logger:        logger,
		cfg:           cfg,
	}
}

// ListServices returns the active services, featured first.
func (s *CatalogService) ListServices(ctx context.Context) ([]models.Service, error) {
	services, _, err := s.listServices(ctx)
	return services, err
}

func (s *CatalogService) listServices(ctx context.Context) ([]models.Service, bool, error) {
	services, hit, err := cacheThrough(ctx, s.cache, cacheKeyServices, s.cfg.ServicesTTL, s.services.ListActive)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load services")
	}
	if services == nil {
		services = []models.Service{}
	}
	return services, hit, nil
}

// ListProfessionals returns every professional.
func (s *CatalogService) ListProfessionals(ctx context.Context) ([]models.Professional, error) {
	professionals, _, err := s.listProfessionals(ctx)
	return professionals, err
}

func (s *CatalogService) listProfessionals(ctx context.Context) ([]models.Professional, bool, error) {
	professionals, hit, err := cacheThrough(ctx, s.cache, cacheKeyProfessionals, s.cfg.ProfessionalsTTL, s.professionals.List)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load professionals")
	}
	if professionals == nil {
		professionals = []models.Professional{}
	}
	return professionals, hit, nil
}

// Featured returns at most FeaturedMax featured services.
func (s *CatalogService) Featured(ctx context.Context) ([]models.Service, error) {
	services, err := s.ListServices(ctx)
	if err != nil {
		return nil, err
	}
	return featuredOf(services, s.cfg.FeaturedMax), nil
}

// Catalog bundles services, professionals and the featured subset. Both
// lists load concurrently; CacheHit is set when both came from the cache.
func (s *CatalogService) Catalog(ctx context.Context) (*dto.CatalogResponse, error) {
	var (
		services                      []models.Service
		professionals                 []models.Professional
		servicesHit, professionalsHit bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		services, servicesHit, err = s.listServices(gctx)
		return err
	})
	g.Go(func() (err error) {
		professionals, professionalsHit, err = s.listProfessionals(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &dto.CatalogResponse{
		Services:      services,
		Professionals: professionals,
		Featured:      featuredOf(services, s.cfg.FeaturedMax),
		CacheHit:      servicesHit && professionalsHit,
	}, nil
}

// GetService loads one service from the database.
func (s *CatalogService) GetService(ctx context.Context, id string) (*models.Service, error) {
	svc, err := s.services.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "service not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load service")
	}
	return svc, nil
}

// GetProfessional loads one professional from the database.
func (s *CatalogService) GetProfessional(ctx context.Context, id string) (*models.Professional, error) {
	pro, err := s.professionals.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "professional not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load professional")
	}
	return pro, nil
}

// InvalidateProfessionals drops the cached professional list.
func (s *CatalogService) InvalidateProfessionals(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, cacheKeyProfessionals+"*"); err != nil {
		s.logger.Warn("invalidate professionals cache", zap.Error(err))
	}
}

// Warmup fills the cache so the first clients skip the database.
func (s *CatalogService) Warmup(ctx context.Context) error {
	if !s.cache.Enabled() {
		return nil
	}
	if _, err := s.ListServices(ctx); err != nil {
		return err
	}
	if _, err := s.ListProfessionals(ctx); err != nil {
		return err
	}
	s.logger.Info("catalog cache warmed")
	return nil
}

func featuredOf(services []models.Service, limit int) []models.Service {
	featured := make([]models.Service, 0, limit)
	for _, svc := range services {
		if len(featured) == limit {
			break
		}
		if svc.IsFeatured {
			featured = append(featured, svc)
		}
	}
	return featured
}
