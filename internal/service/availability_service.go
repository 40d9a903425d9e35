package service

import (
	"context"
	"iter"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/shop-booking-api/internal/availability"
	"github.com/noah-isme/shop-booking-api/internal/dto"
	"github.com/noah-isme/shop-booking-api/internal/models"
	appErrors "github.com/noah-isme/shop-booking-api/pkg/errors"
)

type blockLister interface {
	List(ctx context.Context, filter models.BlockFilter) ([]models.Block, error)
}

type appointmentLister interface {
	List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, error)
}

// AvailabilityService feeds the engine with fresh ledger data. Results are
// never cached.
type AvailabilityService struct {
	engine       *availability.Engine
	catalog      *CatalogService
	blocks       blockLister
	appointments appointmentLister
	metrics      *MetricsService
	logger       *zap.Logger
}

// NewAvailabilityService constructs an AvailabilityService.
func NewAvailabilityService(engine *availability.Engine, catalog *CatalogService, blocks blockLister, appointments appointmentLister, metrics *MetricsService, logger *zap.Logger) *AvailabilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{
		engine:       engine,
		catalog:      catalog,
		blocks:       blocks,
		appointments: appointments,
		metrics:      metrics,
		logger:       logger,
	}
}

// Engine exposes the underlying engine.
func (s *AvailabilityService) Engine() *availability.Engine { return s.engine }

// DayRange returns the venue calendar date containing t.
func (s *AvailabilityService) DayRange(t time.Time) models.DayRange {
	start := s.engine.Date(t)
	return models.DayRange{Start: start, End: start.AddDate(0, 0, 1)}
}

// ParseDate reads a YYYY-MM-DD query value.
func (s *AvailabilityService) ParseDate(raw string) (time.Time, error) {
	date, err := s.engine.ParseDate(raw)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "date must use the YYYY-MM-DD format")
	}
	return date, nil
}

// Slots returns the free start times of a professional on date. Dates before
// today are rejected.
func (s *AvailabilityService) Slots(ctx context.Context, professionalID string, date time.Time) (iter.Seq[time.Time], error) {
	return s.slots(ctx, professionalID, date, "")
}

// AvailableSlots materialises Slots.
func (s *AvailabilityService) AvailableSlots(ctx context.Context, professionalID string, date time.Time) ([]time.Time, error) {
	return s.FreeSlots(ctx, professionalID, date, "")
}

// FreeSlots materialises the free slots of a day, ignoring
// excludeAppointmentID when it is set. It serves booking flows as their slot
// source, so a reschedule session sees the same slots the reschedule endpoint
// accepts.
func (s *AvailabilityService) FreeSlots(ctx context.Context, professionalID string, date time.Time, excludeAppointmentID string) ([]time.Time, error) {
	seq, err := s.slots(ctx, professionalID, date, excludeAppointmentID)
	if err != nil {
		return nil, err
	}
	slots := slices.Collect(seq)
	if slots == nil {
		slots = []time.Time{}
	}
	s.metrics.ObserveFreeSlots(len(slots))
	return slots, nil
}

// Availability answers the availability endpoint.
func (s *AvailabilityService) Availability(ctx context.Context, professionalID, rawDate string) (*dto.AvailabilityResponse, error) {
	date, err := s.ParseDate(rawDate)
	if err != nil {
		return nil, err
	}
	slots, err := s.AvailableSlots(ctx, professionalID, date)
	if err != nil {
		return nil, err
	}
	times := make([]models.TimeOfDay, 0, len(slots))
	for _, slot := range slots {
		times = append(times, models.Of(slot))
	}
	return &dto.AvailabilityResponse{
		ProfessionalID: professionalID,
		Date:           date.Format(time.DateOnly),
		Timezone:       s.engine.Location().String(),
		Slots:          slots,
		Times:          times,
	}, nil
}

// IsFreeSlot reports whether start is one of the professional's free slots.
// excludeAppointmentID ignores an appointment being moved.
func (s *AvailabilityService) IsFreeSlot(ctx context.Context, professionalID string, start time.Time, excludeAppointmentID string) (bool, error) {
	seq, err := s.slots(ctx, professionalID, start, excludeAppointmentID)
	if err != nil {
		return false, err
	}
	for slot := range seq {
		if slot.Equal(start) {
			return true, nil
		}
	}
	return false, nil
}

// Agenda projects a date for rendering. An empty professionalID gives the
// all-professionals view on the default template.
func (s *AvailabilityService) Agenda(ctx context.Context, rawDate, professionalID string) (*dto.AgendaResponse, error) {
	date, err := s.ParseDate(rawDate)
	if err != nil {
		return nil, err
	}
	var template models.WeeklyTemplate
	if professionalID != "" {
		pro, err := s.catalog.GetProfessional(ctx, professionalID)
		if err != nil {
			return nil, err
		}
		template = pro.WeeklyTemplate
	}
	input, err := s.dayInput(ctx, professionalID, template, date, "")
	if err != nil {
		return nil, err
	}
	projection := s.engine.Project(input)
	return &dto.AgendaResponse{
		Date:           date.Format(time.DateOnly),
		ProfessionalID: professionalID,
		FullDayClosed:  projection.FullDayClosed,
		Cells:          projection.Layout(),
	}, nil
}

func (s *AvailabilityService) slots(ctx context.Context, professionalID string, date time.Time, excludeAppointmentID string) (iter.Seq[time.Time], error) {
	if s.engine.IsPast(date) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must not be in the past")
	}
	pro, err := s.catalog.GetProfessional(ctx, professionalID)
	if err != nil {
		return nil, err
	}
	input, err := s.dayInput(ctx, pro.ID, pro.WeeklyTemplate, date, excludeAppointmentID)
	if err != nil {
		return nil, err
	}
	return s.engine.Slots(input), nil
}

func (s *AvailabilityService) dayInput(ctx context.Context, professionalID string, template models.WeeklyTemplate, date time.Time, excludeAppointmentID string) (availability.DayInput, error) {
	day := s.DayRange(date)
	started := time.Now()
	defer func() { s.metrics.ObserveDBQuery("availability_inputs", time.Since(started)) }()

	blocks, err := s.blocks.List(ctx, models.BlockFilter{From: day.Start, To: day.End, ProfessionalID: professionalID})
	if err != nil {
		return availability.DayInput{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load blocks")
	}
	appointments, err := s.appointments.List(ctx, models.AppointmentFilter{From: day.Start, To: day.End, ProfessionalID: professionalID})
	if err != nil {
		return availability.DayInput{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load appointments")
	}
	if excludeAppointmentID != "" {
		appointments = slices.DeleteFunc(appointments, func(a models.Appointment) bool { return a.ID == excludeAppointmentID })
	}
	return availability.DayInput{
		Date:           day.Start,
		Template:       template,
		ProfessionalID: professionalID,
		Blocks:         blocks,
		Appointments:   appointments,
	}, nil
}
