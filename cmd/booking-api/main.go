package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/shop-booking-api/api/swagger"
	"github.com/noah-isme/shop-booking-api/internal/availability"
	"github.com/noah-isme/shop-booking-api/internal/events"
	"github.com/noah-isme/shop-booking-api/internal/handler"
	"github.com/noah-isme/shop-booking-api/internal/middleware"
	"github.com/noah-isme/shop-booking-api/internal/payment"
	"github.com/noah-isme/shop-booking-api/internal/repository"
	"github.com/noah-isme/shop-booking-api/internal/service"
	"github.com/noah-isme/shop-booking-api/pkg/cache"
	"github.com/noah-isme/shop-booking-api/pkg/clock"
	"github.com/noah-isme/shop-booking-api/pkg/config"
	"github.com/noah-isme/shop-booking-api/pkg/database"
	"github.com/noah-isme/shop-booking-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/shop-booking-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/shop-booking-api/pkg/middleware/requestid"
)

// @title Shop Booking API
// @version 1.0.0
// @description Appointment booking for a single venue: catalog, availability, blocks and step-by-step booking sessions.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const sessionSweepInterval = time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	metricsSvc := service.NewMetricsService()

	var (
		cacheRepo  service.CacheRepository
		redisCache *repository.CacheRepository
	)
	if redisClient, err := cache.NewRedis(ctx, cfg.Redis); err != nil {
		logr.Warn("redis unavailable, catalog cache disabled", zap.Error(err))
	} else {
		redisCache = repository.NewCacheRepository(redisClient, logr)
		defer redisCache.Close()
		cacheRepo = redisCache
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Catalog.ServicesCacheTTL, logr, cfg.Catalog.CacheEnabled && cacheRepo != nil)

	grid, err := availability.ParseGrid(cfg.Venue.Open, cfg.Venue.Close, cfg.Venue.SlotGranularity)
	if err != nil {
		logr.Fatal("invalid venue grid", zap.Error(err))
	}
	policy := availability.HidePastSlots
	if !cfg.Booking.HidePastSlots {
		policy = availability.ShowPastSlots
	}
	location := cfg.Venue.Location()
	engine := availability.NewEngine(grid, location, clock.System(), policy)

	serviceRepo := repository.NewServiceRepository(db)
	professionalRepo := repository.NewProfessionalRepository(db)
	blockRepo := repository.NewBlockRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db)
	preferenceRepo := repository.NewPaymentPreferenceRepository(db)

	publisher := events.NewAsyncPublisher(ctx, events.NewPublisher(cfg.Events.Brokers, cfg.Events.Topic, logr), logr, metricsSvc.RecordEventDropped)
	defer publisher.Close() //nolint:errcheck

	validate := validator.New()

	catalogSvc := service.NewCatalogService(serviceRepo, professionalRepo, cacheSvc, logr, service.CatalogServiceConfig{
		ServicesTTL:      cfg.Catalog.ServicesCacheTTL,
		ProfessionalsTTL: cfg.Catalog.ProfessionalsTTL,
		FeaturedMax:      cfg.Catalog.FeaturedServicesMax,
	})
	templateSvc := service.NewScheduleTemplateService(catalogSvc, professionalRepo, validate, logr)
	availabilitySvc := service.NewAvailabilityService(engine, catalogSvc, blockRepo, appointmentRepo, metricsSvc, logr)
	provider := payment.NewProvider(cfg.Payments.StripeSecretKey, cfg.Payments.SuccessURL, cfg.Payments.CancelURL)
	appointmentSvc := service.NewAppointmentService(
		appointmentRepo,
		preferenceRepo,
		provider,
		catalogSvc,
		availabilitySvc,
		publisher,
		metricsSvc,
		validate,
		logr,
		service.AppointmentServiceConfig{Currency: cfg.Payments.Currency},
	)
	blockSvc := service.NewBlockService(blockRepo, catalogSvc, availabilitySvc, publisher, metricsSvc, validate, logr)
	sessionSvc := service.NewBookingSessionService(catalogSvc, availabilitySvc, appointmentSvc, metricsSvc, validate, logr, service.BookingSessionConfig{
		TTL:      cfg.Booking.SessionTTL,
		Location: location,
	})
	authSvc := service.NewAuthService(service.AuthConfig{AccessTokenSecret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer})

	if cfg.Catalog.CacheWarmupOnBoot {
		if err := catalogSvc.Warmup(ctx); err != nil {
			logr.Warn("catalog cache warmup failed", zap.Error(err))
		}
	}
	go sessionSvc.RunSweeper(ctx, sessionSweepInterval)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/ready", "/metrics"))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc, "/metrics", "/health", "/ready"))
	r.Use(middleware.ResponseMeta())

	metricsHandler := handler.NewMetricsHandler(metricsSvc, readinessChecks(db.PingContext, redisCache))
	handler.RegisterOps(r, metricsHandler)
	handler.RegisterRoutes(r.Group(cfg.APIPrefix), handler.Handlers{
		Catalog:        handler.NewCatalogHandler(catalogSvc),
		Schedule:       handler.NewScheduleHandler(templateSvc),
		Availability:   handler.NewAvailabilityHandler(availabilitySvc),
		Appointments:   handler.NewAppointmentHandler(appointmentSvc),
		Blocks:         handler.NewBlockHandler(blockSvc),
		BookingSession: handler.NewBookingSessionHandler(sessionSvc),
		Metrics:        metricsHandler,
	}, authSvc)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "venue_tz", location.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

func readinessChecks(pingDB handler.ReadinessCheck, redisCache *repository.CacheRepository) map[string]handler.ReadinessCheck {
	checks := map[string]handler.ReadinessCheck{"postgres": pingDB}
	if redisCache != nil {
		checks["redis"] = redisCache.Ping
	}
	return checks
}
