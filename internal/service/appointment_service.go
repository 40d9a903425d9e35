package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/shop-booking-api/internal/booking"
	"github.com/noah-isme/shop-booking-api/internal/dto"
	"github.com/noah-isme/shop-booking-api/internal/events"
	"github.com/noah-isme/shop-booking-api/internal/models"
	"github.com/noah-isme/shop-booking-api/internal/payment"
	"github.com/noah-isme/shop-booking-api/internal/repository"
	appErrors "github.com/noah-isme/shop-booking-api/pkg/errors"
)

const defaultAppointmentRange = 30 * 24 * time.Hour

type appointmentRepository interface {
	List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, error)
	FindByID(ctx context.Context, id string) (*models.Appointment, error)
	Create(ctx context.Context, appt *models.Appointment, day models.DayRange) error
	Reschedule(ctx context.Context, id string, start time.Time, day models.DayRange) (*models.Appointment, error)
}

type paymentPreferenceRepository interface {
	Create(ctx context.Context, pref *models.PaymentPreference) error
	ListByAppointment(ctx context.Context, appointmentID string) ([]models.PaymentPreference, error)
}

// AppointmentServiceConfig tunes payments.
type AppointmentServiceConfig struct {
	Currency string
}

// AppointmentService books, moves and charges appointments. It is the
// gateway booking flows submit through.
type AppointmentService struct {
	repo         appointmentRepository
	preferences  paymentPreferenceRepository
	provider     payment.Provider
	catalog      *CatalogService
	availability *AvailabilityService
	emitter      eventEmitter
	metrics      *MetricsService
	validator    *validator.Validate
	logger       *zap.Logger
	currency     string
}

var _ booking.Gateway = (*AppointmentService)(nil)

// NewAppointmentService constructs an AppointmentService.
func NewAppointmentService(
	repo appointmentRepository,
	preferences paymentPreferenceRepository,
	provider payment.Provider,
	catalog *CatalogService,
	availabilitySvc *AvailabilityService,
	publisher events.Publisher,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg AppointmentServiceConfig,
) *AppointmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if provider == nil {
		provider = payment.Disabled{}
	}
	if cfg.Currency == "" {
		cfg.Currency = "ars"
	}
	return &AppointmentService{
		repo:         repo,
		preferences:  preferences,
		provider:     provider,
		catalog:      catalog,
		availability: availabilitySvc,
		emitter:      newEventEmitter(publisher, metrics, logger),
		metrics:      metrics,
		validator:    validate,
		logger:       logger,
		currency:     cfg.Currency,
	}
}

// Create validates the payload and books the appointment.
func (s *AppointmentService) Create(ctx context.Context, req dto.CreateAppointmentRequest) (*models.Appointment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid appointment payload")
	}
	return s.CreateAppointment(ctx, booking.AppointmentRequest{
		ProfessionalID: req.ProfessionalID,
		ServiceID:      req.ServiceID,
		ClientID:       req.ClientID,
		StartAt:        req.StartAt,
	})
}

// CreateAppointment books a new appointment whose start must be a free slot.
func (s *AppointmentService) CreateAppointment(ctx context.Context, req booking.AppointmentRequest) (*models.Appointment, error) {
	svc, err := s.catalog.GetService(ctx, req.ServiceID)
	if err != nil {
		return nil, err
	}
	if !svc.IsActive {
		return nil, appErrors.Clone(appErrors.ErrValidation, "service is not offered")
	}
	if err := s.ensureFree(ctx, "create", req.ProfessionalID, req.StartAt, ""); err != nil {
		return nil, err
	}

	appt := &models.Appointment{
		ProfessionalID:  req.ProfessionalID,
		ServiceID:       svc.ID,
		ClientID:        req.ClientID,
		StartAt:         req.StartAt.UTC(),
		DurationMinutes: svc.DurationMinutes,
		Status:          models.AppointmentPending,
	}
	if err := s.repo.Create(ctx, appt, s.availability.DayRange(req.StartAt)); err != nil {
		return nil, s.ledgerError("create", err)
	}

	s.metrics.RecordBooking("create", "ok")
	s.logger.Info("appointment created",
		zap.String("appointment_id", appt.ID),
		zap.String("professional_id", appt.ProfessionalID),
		zap.Time("start_at", appt.StartAt),
	)
	s.emitter.emit(ctx, events.AppointmentCreated, appt.ID, appt)
	return appt, nil
}

// RescheduleAppointment moves an appointment to start.
func (s *AppointmentService) RescheduleAppointment(ctx context.Context, appointmentID string, start time.Time) (*models.Appointment, error) {
	current, err := s.Get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if !current.Status.Reschedulable() {
		return nil, appErrors.Clone(appErrors.ErrConflict, "appointment can no longer be rescheduled")
	}
	if err := s.ensureFree(ctx, "reschedule", current.ProfessionalID, start, current.ID); err != nil {
		return nil, err
	}

	updated, err := s.repo.Reschedule(ctx, appointmentID, start.UTC(), s.availability.DayRange(start))
	if err != nil {
		return nil, s.ledgerError("reschedule", err)
	}

	s.metrics.RecordBooking("reschedule", "ok")
	s.logger.Info("appointment rescheduled",
		zap.String("appointment_id", updated.ID),
		zap.Time("from", current.StartAt),
		zap.Time("to", updated.StartAt),
	)
	s.emitter.emit(ctx, events.AppointmentRescheduled, updated.ID, map[string]interface{}{
		"appointment":    updated,
		"previous_start": current.StartAt,
	})
	return updated, nil
}

// Reschedule validates the payload and moves the appointment.
func (s *AppointmentService) Reschedule(ctx context.Context, appointmentID string, req dto.RescheduleAppointmentRequest) (*models.Appointment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid reschedule payload")
	}
	return s.RescheduleAppointment(ctx, appointmentID, req.StartAt)
}

// Get returns one appointment.
func (s *AppointmentService) Get(ctx context.Context, id string) (*models.Appointment, error) {
	appt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "appointment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load appointment")
	}
	return appt, nil
}

// ListForProfessional lists a professional's appointments in a date range.
// Without bounds the range starts today and spans 30 days.
func (s *AppointmentService) ListForProfessional(ctx context.Context, professionalID string, query dto.AppointmentQuery) ([]models.Appointment, error) {
	if _, err := s.catalog.GetProfessional(ctx, professionalID); err != nil {
		return nil, err
	}
	engine := s.availability.Engine()
	from := engine.Today()
	if query.From != "" {
		parsed, err := s.availability.ParseDate(query.From)
		if err != nil {
			return nil, err
		}
		from = parsed
	}
	to := from.Add(defaultAppointmentRange)
	if query.To != "" {
		parsed, err := s.availability.ParseDate(query.To)
		if err != nil {
			return nil, err
		}
		to = parsed.AddDate(0, 0, 1)
	}
	if !to.After(from) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "to must not be before from")
	}

	appointments, err := s.repo.List(ctx, models.AppointmentFilter{
		ProfessionalID:   professionalID,
		From:             from,
		To:               to,
		IncludeCancelled: query.IncludeCancelled,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list appointments")
	}
	if appointments == nil {
		appointments = []models.Appointment{}
	}
	return appointments, nil
}

// CreatePaymentPreference opens a checkout for the amount the option charges now.
func (s *AppointmentService) CreatePaymentPreference(ctx context.Context, appointmentID string, option models.PaymentOption) (*models.PaymentPreference, error) {
	if option != models.PaymentTotal && option != models.PaymentDeposit {
		return nil, appErrors.Clone(appErrors.ErrValidation, "payment option must be TOTAL or DEPOSIT")
	}
	appt, err := s.Get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	svc, err := s.catalog.GetService(ctx, appt.ServiceID)
	if err != nil {
		return nil, err
	}
	pro, err := s.catalog.GetProfessional(ctx, appt.ProfessionalID)
	if err != nil {
		return nil, err
	}
	if !booking.OptionAllowed(option, pro) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "this professional only accepts payment at the venue")
	}
	pricing := booking.ComputePricing(svc, pro, option)
	if pricing.PayNow <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "nothing to charge online")
	}

	checkout, err := s.provider.CreateCheckout(ctx, payment.CheckoutRequest{
		AppointmentID: appt.ID,
		Description:   svc.Name + " with " + pro.Name,
		Option:        option,
		Amount:        pricing.PayNow,
		Currency:      s.currency,
	})
	if err != nil {
		s.metrics.RecordPaymentPreference(string(option), false)
		s.logger.Warn("checkout creation failed", zap.String("appointment_id", appt.ID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrPaymentPreference.Code, appErrors.ErrPaymentPreference.Status, appErrors.ErrPaymentPreference.Message)
	}

	pref := &models.PaymentPreference{
		AppointmentID: appt.ID,
		Option:        option,
		Amount:        pricing.PayNow,
		Currency:      s.currency,
		ProviderRef:   checkout.ProviderRef,
		RedirectURL:   checkout.RedirectURL,
	}
	if err := s.preferences.Create(ctx, pref); err != nil {
		s.metrics.RecordPaymentPreference(string(option), false)
		return nil, appErrors.Wrap(err, appErrors.ErrPaymentPreference.Code, appErrors.ErrPaymentPreference.Status, appErrors.ErrPaymentPreference.Message)
	}
	s.metrics.RecordPaymentPreference(string(option), true)
	return pref, nil
}

// PaymentPreferences lists the checkouts created for an appointment.
func (s *AppointmentService) PaymentPreferences(ctx context.Context, appointmentID string) ([]models.PaymentPreference, error) {
	if _, err := s.Get(ctx, appointmentID); err != nil {
		return nil, err
	}
	prefs, err := s.preferences.ListByAppointment(ctx, appointmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list payment preferences")
	}
	if prefs == nil {
		prefs = []models.PaymentPreference{}
	}
	return prefs, nil
}

func (s *AppointmentService) ensureFree(ctx context.Context, kind, professionalID string, start time.Time, excludeID string) error {
	free, err := s.availability.IsFreeSlot(ctx, professionalID, start, excludeID)
	if err != nil {
		return err
	}
	if !free {
		s.metrics.RecordBooking(kind, "conflict")
		return appErrors.ErrSlotUnavailable
	}
	return nil
}

func (s *AppointmentService) ledgerError(kind string, err error) error {
	switch {
	case errors.Is(err, repository.ErrSlotTaken):
		s.metrics.RecordBooking(kind, "conflict")
		return appErrors.Wrap(err, appErrors.ErrSlotUnavailable.Code, appErrors.ErrSlotUnavailable.Status, appErrors.ErrSlotUnavailable.Message)
	case errors.Is(err, repository.ErrNotReschedulable):
		return appErrors.Clone(appErrors.ErrConflict, "appointment can no longer be rescheduled")
	case errors.Is(err, sql.ErrNoRows):
		return appErrors.Clone(appErrors.ErrNotFound, "appointment or professional not found")
	}
	s.metrics.RecordBooking(kind, "error")
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store appointment")
}
