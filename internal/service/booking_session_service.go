package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/shop-booking-api/internal/booking"
	"github.com/noah-isme/shop-booking-api/internal/dto"
	"github.com/noah-isme/shop-booking-api/internal/models"
	"github.com/noah-isme/shop-booking-api/pkg/clock"
	appErrors "github.com/noah-isme/shop-booking-api/pkg/errors"
)

type sessionGateway interface {
	booking.Gateway
	Get(ctx context.Context, id string) (*models.Appointment, error)
}

type catalogLoader interface {
	ListServices(ctx context.Context) ([]models.Service, error)
	ListProfessionals(ctx context.Context) ([]models.Professional, error)
}

// BookingSessionConfig tunes session storage.
type BookingSessionConfig struct {
	TTL      time.Duration
	Location *time.Location
	Clock    clock.Clock
}

type bookingSession struct {
	flow      *booking.Flow
	expiresAt time.Time
}

// BookingSessionService keeps booking flows in memory, one per session id.
// Sessions expire after TTL without activity; abandoning one has no side effects.
type BookingSessionService struct {
	mu       sync.Mutex
	sessions map[string]*bookingSession

	catalog   catalogLoader
	slots     booking.SlotSource
	gateway   sessionGateway
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	ttl       time.Duration
	location  *time.Location
	clock     clock.Clock
}

// NewBookingSessionService constructs the service.
func NewBookingSessionService(catalog catalogLoader, slots booking.SlotSource, gateway sessionGateway, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg BookingSessionConfig) *BookingSessionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Minute
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.System()
	}
	return &BookingSessionService{
		sessions:  make(map[string]*bookingSession),
		catalog:   catalog,
		slots:     slots,
		gateway:   gateway,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		ttl:       cfg.TTL,
		location:  cfg.Location,
		clock:     cfg.Clock,
	}
}

// Start opens a session for clientID. With RescheduleOf set the session moves
// that appointment and starts with its service and professional selected.
func (s *BookingSessionService) Start(ctx context.Context, clientID string, req dto.StartBookingSessionRequest) (booking.View, error) {
	var original *models.Appointment
	if req.RescheduleOf != "" {
		appt, err := s.gateway.Get(ctx, req.RescheduleOf)
		if err != nil {
			return booking.View{}, err
		}
		if clientID != "" && appt.ClientID != "" && appt.ClientID != clientID {
			return booking.View{}, appErrors.Clone(appErrors.ErrForbidden, "appointment belongs to another client")
		}
		if !appt.Status.Reschedulable() {
			return booking.View{}, appErrors.Clone(appErrors.ErrConflict, "appointment can no longer be rescheduled")
		}
		original = appt
	}

	flow := booking.NewFlow(booking.Options{
		ID:           uuid.NewString(),
		ClientID:     clientID,
		RescheduleOf: req.RescheduleOf,
		Location:     s.location,
		Clock:        s.clock,
		Slots:        s.slots,
		Gateway:      s.gateway,
		Logger:       s.logger,
	})
	services, servicesErr := s.catalog.ListServices(ctx)
	professionals, professionalsErr := s.catalog.ListProfessionals(ctx)
	flow.LoadCatalog(ctx, services, professionals, errors.Join(servicesErr, professionalsErr))

	if original != nil {
		if err := flow.SelectService(original.ServiceID); err != nil {
			return booking.View{}, err
		}
		if err := flow.SelectProfessional(ctx, original.ProfessionalID); err != nil {
			return booking.View{}, err
		}
	}

	s.mu.Lock()
	s.sessions[flow.ID()] = &bookingSession{flow: flow, expiresAt: s.clock.Now().Add(s.ttl)}
	active := len(s.sessions)
	s.mu.Unlock()
	s.metrics.SetActiveSessions(active)

	s.logger.Debug("booking session started", zap.String("session_id", flow.ID()), zap.String("reschedule_of", req.RescheduleOf))
	return flow.Snapshot(), nil
}

// Get returns the session view.
func (s *BookingSessionService) Get(clientID, id string) (booking.View, error) {
	flow, err := s.flow(clientID, id)
	if err != nil {
		return booking.View{}, err
	}
	return flow.Snapshot(), nil
}

// Delete abandons a session.
func (s *BookingSessionService) Delete(clientID, id string) error {
	if _, err := s.flow(clientID, id); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.sessions, id)
	active := len(s.sessions)
	s.mu.Unlock()
	s.metrics.SetActiveSessions(active)
	return nil
}

// SelectService sets the session's service.
func (s *BookingSessionService) SelectService(clientID, id string, req dto.SelectServiceRequest) (booking.View, error) {
	return s.apply(clientID, id, req, func(flow *booking.Flow) error {
		return flow.SelectService(req.ServiceID)
	})
}

// SelectProfessional sets the session's professional.
func (s *BookingSessionService) SelectProfessional(ctx context.Context, clientID, id string, req dto.SelectProfessionalRequest) (booking.View, error) {
	return s.apply(clientID, id, req, func(flow *booking.Flow) error {
		return flow.SelectProfessional(ctx, req.ProfessionalID)
	})
}

// SelectDate sets the session's date.
func (s *BookingSessionService) SelectDate(ctx context.Context, clientID, id string, req dto.SelectDateRequest) (booking.View, error) {
	return s.apply(clientID, id, req, func(flow *booking.Flow) error {
		date, err := time.ParseInLocation(time.DateOnly, req.Date, s.location)
		if err != nil {
			return appErrors.Clone(appErrors.ErrValidation, "date must use the YYYY-MM-DD format")
		}
		return flow.SelectDate(ctx, date)
	})
}

// SelectTime sets the session's start time.
func (s *BookingSessionService) SelectTime(clientID, id string, req dto.SelectTimeRequest) (booking.View, error) {
	return s.apply(clientID, id, req, func(flow *booking.Flow) error {
		t, err := models.ParseTimeOfDay(req.Time)
		if err != nil {
			return appErrors.Clone(appErrors.ErrValidation, "time must use the HH:MM format")
		}
		return flow.SelectTime(t)
	})
}

// SelectPaymentOption sets how the client pays.
func (s *BookingSessionService) SelectPaymentOption(clientID, id string, req dto.SelectPaymentOptionRequest) (booking.View, error) {
	return s.apply(clientID, id, req, func(flow *booking.Flow) error {
		return flow.SelectPaymentOption(req.Option)
	})
}

// Back returns the session to an earlier step.
func (s *BookingSessionService) Back(clientID, id string, req dto.BackRequest) (booking.View, error) {
	return s.apply(clientID, id, req, func(flow *booking.Flow) error {
		return flow.Back(booking.State(req.Step))
	})
}

// Submit books the session's selection.
func (s *BookingSessionService) Submit(ctx context.Context, clientID, id string) (booking.View, error) {
	flow, err := s.flow(clientID, id)
	if err != nil {
		return booking.View{}, err
	}
	view, err := flow.Submit(ctx)
	if err != nil {
		return booking.View{}, err
	}
	s.logger.Info("booking session submitted", zap.String("session_id", id), zap.String("state", string(view.State)))
	return view, nil
}

// Sweep drops expired sessions and returns how many were removed.
func (s *BookingSessionService) Sweep() int {
	now := s.clock.Now()
	s.mu.Lock()
	removed := 0
	for id, session := range s.sessions {
		if now.After(session.expiresAt) {
			delete(s.sessions, id)
			removed++
		}
	}
	active := len(s.sessions)
	s.mu.Unlock()
	s.metrics.SetActiveSessions(active)
	if removed > 0 {
		s.logger.Debug("expired booking sessions removed", zap.Int("count", removed))
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx ends.
func (s *BookingSessionService) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

func (s *BookingSessionService) apply(clientID, id string, req interface{}, step func(*booking.Flow) error) (booking.View, error) {
	if err := s.validator.Struct(req); err != nil {
		return booking.View{}, appErrors.Validation(err, "invalid booking step payload")
	}
	flow, err := s.flow(clientID, id)
	if err != nil {
		return booking.View{}, err
	}
	if err := step(flow); err != nil {
		return booking.View{}, err
	}
	return flow.Snapshot(), nil
}

// flow looks up a live session and extends its expiry. Sessions of other
// clients look missing.
func (s *BookingSessionService) flow(clientID, id string) (*booking.Flow, error) {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok || now.After(session.expiresAt) {
		delete(s.sessions, id)
		return nil, appErrors.Clone(appErrors.ErrNotFound, "booking session not found")
	}
	if session.flow.ClientID() != clientID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "booking session not found")
	}
	session.expiresAt = now.Add(s.ttl)
	return session.flow, nil
}
