package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/shop-booking-api/internal/availability"
	"github.com/noah-isme/shop-booking-api/internal/models"
	appErrors "github.com/noah-isme/shop-booking-api/pkg/errors"
)

func TestAvailabilityDefaultTemplateMonday(t *testing.T) {
	f := newFixture()

	resp, err := f.availability.Availability(context.Background(), "pro-local", "2030-01-07")
	require.NoError(t, err)

	// 09:00-13:00 and 17:00-22:00 in 30 minute cells.
	assert.Len(t, resp.Slots, 18)
	assert.Equal(t, models.MustTimeOfDay("09:00"), resp.Times[0])
	assert.Equal(t, models.MustTimeOfDay("21:30"), resp.Times[len(resp.Times)-1])
	assert.Equal(t, "2030-01-07", resp.Date)
}

func TestAvailabilityExcludesAppointmentsAndBlocks(t *testing.T) {
	f := newFixture()
	day := testMonday()
	pro := "pro-local"
	f.appointments.items = []models.Appointment{
		{ID: "a1", ProfessionalID: pro, StartAt: atTime(day, "10:00"), DurationMinutes: 60, Status: models.AppointmentConfirmed},
		{ID: "a2", ProfessionalID: pro, StartAt: atTime(day, "12:00"), DurationMinutes: 30, Status: models.AppointmentCancelled},
	}
	f.blocks.items = []models.Block{
		{ID: "b1", ProfessionalID: &pro, StartAt: atTime(day, "17:00"), EndAt: atTime(day, "18:00")},
	}

	slots, err := f.availability.AvailableSlots(context.Background(), pro, day)
	require.NoError(t, err)

	starts := make([]string, 0, len(slots))
	for _, s := range slots {
		starts = append(starts, s.In(testLoc).Format("15:04"))
	}
	assert.NotContains(t, starts, "10:00")
	assert.NotContains(t, starts, "10:30")
	assert.Contains(t, starts, "12:00")
	assert.NotContains(t, starts, "17:00")
	assert.NotContains(t, starts, "17:30")
	assert.Len(t, starts, 14)

	require.NotEmpty(t, f.blocks.filters)
	assert.Equal(t, day, f.blocks.filters[0].From)
	assert.Equal(t, day.AddDate(0, 0, 1), f.blocks.filters[0].To)
}

func TestAvailabilityGeneralBlockClosesDay(t *testing.T) {
	f := newFixture()
	day := testMonday()
	f.blocks.items = []models.Block{{ID: "g", IsGeneral: true, StartAt: atTime(day, "15:00"), EndAt: atTime(day, "16:00")}}

	slots, err := f.availability.AvailableSlots(context.Background(), "pro-local", day)
	require.NoError(t, err)

	assert.Empty(t, slots)
	assert.NotNil(t, slots)
}

func TestAvailabilityRejectsPastDate(t *testing.T) {
	f := newFixture()

	_, err := f.availability.Availability(context.Background(), "pro-local", "2029-12-31")

	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestAvailabilityRejectsMalformedDate(t *testing.T) {
	f := newFixture()

	_, err := f.availability.Availability(context.Background(), "pro-local", "07/01/2030")

	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestAvailabilityUnknownProfessional(t *testing.T) {
	f := newFixture()

	_, err := f.availability.AvailableSlots(context.Background(), "ghost", testMonday())

	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestAvailabilityIsFreeSlotIgnoresMovedAppointment(t *testing.T) {
	f := newFixture()
	day := testMonday()
	f.appointments.items = []models.Appointment{
		{ID: "a1", ProfessionalID: "pro-local", StartAt: atTime(day, "10:00"), DurationMinutes: 30, Status: models.AppointmentPending},
	}
	ctx := context.Background()

	free, err := f.availability.IsFreeSlot(ctx, "pro-local", atTime(day, "10:00"), "")
	require.NoError(t, err)
	assert.False(t, free)

	free, err = f.availability.IsFreeSlot(ctx, "pro-local", atTime(day, "10:00"), "a1")
	require.NoError(t, err)
	assert.True(t, free)

	free, err = f.availability.IsFreeSlot(ctx, "pro-local", atTime(day, "10:15"), "")
	require.NoError(t, err)
	assert.False(t, free)
}

func TestAgendaShowsAnchorsAndContinuations(t *testing.T) {
	f := newFixture()
	day := testMonday()
	f.appointments.items = []models.Appointment{
		{ID: "a1", ProfessionalID: "pro-local", StartAt: atTime(day, "10:00"), DurationMinutes: 90, Status: models.AppointmentConfirmed},
	}

	agenda, err := f.availability.Agenda(context.Background(), "2030-01-07", "pro-local")
	require.NoError(t, err)

	assert.False(t, agenda.FullDayClosed)
	require.Len(t, agenda.Cells, 26)
	byTime := map[string]availability.CellView{}
	for _, cell := range agenda.Cells {
		byTime[cell.Time.String()] = cell
	}
	assert.Equal(t, availability.CellAnchor, byTime["10:00"].State)
	assert.Equal(t, 3, byTime["10:00"].Span)
	assert.Equal(t, availability.CellContinuation, byTime["10:30"].State)
	assert.Equal(t, availability.CellContinuation, byTime["11:00"].State)
	assert.Equal(t, availability.CellFree, byTime["11:30"].State)
	assert.Equal(t, availability.CellClosed, byTime["14:00"].State)
}

func TestAvailabilityObservesFreeSlotMetric(t *testing.T) {
	f := newFixture()

	_, err := f.availability.AvailableSlots(context.Background(), "pro-local", testMonday())
	require.NoError(t, err)

	assert.Equal(t, uint64(1), f.metrics.Snapshot().DBQueryCount)
	assert.WithinDuration(t, time.Now(), f.metrics.Snapshot().GeneratedAt, time.Minute)
}
