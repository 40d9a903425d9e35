package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/shop-booking-api/internal/booking"
	"github.com/noah-isme/shop-booking-api/internal/dto"
	"github.com/noah-isme/shop-booking-api/internal/models"
	appErrors "github.com/noah-isme/shop-booking-api/pkg/errors"
)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newSessionService(f *fixture, clk *manualClock) *BookingSessionService {
	return NewBookingSessionService(f.catalog, f.availability, f.appointment, f.metrics, nil, nil, BookingSessionConfig{
		TTL:      10 * time.Minute,
		Location: testLoc,
		Clock:    clk,
	})
}

func TestBookingSessionBooksWithDeposit(t *testing.T) {
	f := newFixture()
	sessions := newSessionService(f, &manualClock{now: testNow})
	ctx := context.Background()

	view, err := sessions.Start(ctx, "client-1", dto.StartBookingSessionRequest{})
	require.NoError(t, err)
	id := view.ID
	assert.Equal(t, booking.StateSelectingService, view.State)

	_, err = sessions.SelectService("client-1", id, dto.SelectServiceRequest{ServiceID: "svc-color"})
	require.NoError(t, err)
	_, err = sessions.SelectProfessional(ctx, "client-1", id, dto.SelectProfessionalRequest{ProfessionalID: "pro-deposit"})
	require.NoError(t, err)
	view, err = sessions.SelectDate(ctx, "client-1", id, dto.SelectDateRequest{Date: "2030-01-07"})
	require.NoError(t, err)
	assert.Len(t, view.AvailableSlots, 18)

	_, err = sessions.SelectPaymentOption("client-1", id, dto.SelectPaymentOptionRequest{Option: models.PaymentDeposit})
	require.NoError(t, err)
	view, err = sessions.SelectTime("client-1", id, dto.SelectTimeRequest{Time: "10:00"})
	require.NoError(t, err)
	assert.Equal(t, int64(500), view.Pricing.PayNow)
	assert.Equal(t, int64(1500), view.Pricing.BalanceDue)

	view, err = sessions.Submit(ctx, "client-1", id)
	require.NoError(t, err)

	assert.Equal(t, booking.StateRedirecting, view.State)
	require.NotNil(t, view.Result)
	assert.Equal(t, "https://checkout.stripe.test/cs_test_1", view.Result.RedirectURL)
	require.Len(t, f.appointments.created, 1)
	assert.Equal(t, "client-1", f.appointments.created[0].ClientID)
	assert.Equal(t, int64(500), f.provider.requests[0].Amount)
}

func TestBookingSessionLocalPaymentSkipsCheckout(t *testing.T) {
	f := newFixture()
	sessions := newSessionService(f, &manualClock{now: testNow})
	ctx := context.Background()

	view, err := sessions.Start(ctx, "client-1", dto.StartBookingSessionRequest{})
	require.NoError(t, err)
	id := view.ID
	_, err = sessions.SelectService("client-1", id, dto.SelectServiceRequest{ServiceID: "svc-cut"})
	require.NoError(t, err)
	view, err = sessions.SelectProfessional(ctx, "client-1", id, dto.SelectProfessionalRequest{ProfessionalID: "pro-local"})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentLocal, view.Selection.PaymentOption)

	_, err = sessions.SelectDate(ctx, "client-1", id, dto.SelectDateRequest{Date: "2030-01-07"})
	require.NoError(t, err)
	_, err = sessions.SelectTime("client-1", id, dto.SelectTimeRequest{Time: "09:30"})
	require.NoError(t, err)

	view, err = sessions.Submit(ctx, "client-1", id)
	require.NoError(t, err)

	assert.Equal(t, booking.StateSucceeded, view.State)
	assert.Empty(t, f.provider.requests)
}

func TestBookingSessionReschedulePreselects(t *testing.T) {
	f := newFixture()
	day := testMonday()
	f.appointments.items = []models.Appointment{
		{ID: "a1", ProfessionalID: "pro-deposit", ServiceID: "svc-color", ClientID: "client-1", StartAt: atTime(day, "10:00"), DurationMinutes: 60, Status: models.AppointmentConfirmed},
	}
	sessions := newSessionService(f, &manualClock{now: testNow})
	ctx := context.Background()

	_, err := sessions.Start(ctx, "client-2", dto.StartBookingSessionRequest{RescheduleOf: "a1"})
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	view, err := sessions.Start(ctx, "client-1", dto.StartBookingSessionRequest{RescheduleOf: "a1"})
	require.NoError(t, err)
	assert.Equal(t, booking.StateSelectingDate, view.State)
	assert.Equal(t, "a1", view.RescheduleOf)

	view, err = sessions.SelectDate(ctx, "client-1", view.ID, dto.SelectDateRequest{Date: "2030-01-07"})
	require.NoError(t, err)
	// The appointment being moved does not block its own cells.
	assert.Contains(t, view.AvailableSlots, models.MustTimeOfDay("10:00"))

	_, err = sessions.SelectTime("client-1", view.ID, dto.SelectTimeRequest{Time: "17:00"})
	require.NoError(t, err)
	view, err = sessions.Submit(ctx, "client-1", view.ID)
	require.NoError(t, err)

	assert.Equal(t, booking.StateSucceeded, view.State)
	assert.Equal(t, []string{"a1"}, f.appointments.rescheduled)
	assert.Empty(t, f.appointments.created)
	assert.Empty(t, f.provider.requests)
}

func TestBookingSessionRescheduleOverlappingItself(t *testing.T) {
	f := newFixture()
	day := testMonday()
	f.appointments.items = []models.Appointment{
		{ID: "a1", ProfessionalID: "pro-deposit", ServiceID: "svc-color", ClientID: "client-1", StartAt: atTime(day, "10:00"), DurationMinutes: 60, Status: models.AppointmentConfirmed},
	}
	sessions := newSessionService(f, &manualClock{now: testNow})
	ctx := context.Background()

	view, err := sessions.Start(ctx, "client-1", dto.StartBookingSessionRequest{RescheduleOf: "a1"})
	require.NoError(t, err)
	view, err = sessions.SelectDate(ctx, "client-1", view.ID, dto.SelectDateRequest{Date: "2030-01-07"})
	require.NoError(t, err)
	assert.Contains(t, view.AvailableSlots, models.MustTimeOfDay("10:30"))

	restFree, err := f.availability.IsFreeSlot(ctx, "pro-deposit", atTime(day, "10:30"), "a1")
	require.NoError(t, err)
	assert.True(t, restFree)

	_, err = sessions.SelectTime("client-1", view.ID, dto.SelectTimeRequest{Time: "10:30"})
	require.NoError(t, err)
	view, err = sessions.Submit(ctx, "client-1", view.ID)
	require.NoError(t, err)

	assert.Equal(t, booking.StateSucceeded, view.State)
	assert.Equal(t, []string{"a1"}, f.appointments.rescheduled)
	require.NotNil(t, view.Result)
	require.NotNil(t, view.Result.Appointment)
	assert.True(t, view.Result.Appointment.StartAt.Equal(atTime(day, "10:30")))
}

func TestBookingSessionSlotsStillBlockedByOtherAppointments(t *testing.T) {
	f := newFixture()
	day := testMonday()
	f.appointments.items = []models.Appointment{
		{ID: "a1", ProfessionalID: "pro-deposit", ServiceID: "svc-color", ClientID: "client-1", StartAt: atTime(day, "10:00"), DurationMinutes: 60, Status: models.AppointmentConfirmed},
	}
	sessions := newSessionService(f, &manualClock{now: testNow})
	ctx := context.Background()

	view, err := sessions.Start(ctx, "client-2", dto.StartBookingSessionRequest{})
	require.NoError(t, err)
	_, err = sessions.SelectService("client-2", view.ID, dto.SelectServiceRequest{ServiceID: "svc-color"})
	require.NoError(t, err)
	_, err = sessions.SelectProfessional(ctx, "client-2", view.ID, dto.SelectProfessionalRequest{ProfessionalID: "pro-deposit"})
	require.NoError(t, err)
	view, err = sessions.SelectDate(ctx, "client-2", view.ID, dto.SelectDateRequest{Date: "2030-01-07"})
	require.NoError(t, err)

	assert.NotContains(t, view.AvailableSlots, models.MustTimeOfDay("10:00"))
	assert.NotContains(t, view.AvailableSlots, models.MustTimeOfDay("10:30"))
}

func TestBookingSessionIsPrivateToClient(t *testing.T) {
	f := newFixture()
	sessions := newSessionService(f, &manualClock{now: testNow})

	view, err := sessions.Start(context.Background(), "client-1", dto.StartBookingSessionRequest{})
	require.NoError(t, err)

	_, err = sessions.Get("client-2", view.ID)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestBookingSessionExpires(t *testing.T) {
	f := newFixture()
	clk := &manualClock{now: testNow}
	sessions := newSessionService(f, clk)

	view, err := sessions.Start(context.Background(), "client-1", dto.StartBookingSessionRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), f.metrics.Snapshot().ActiveBookingSessions)

	clk.Advance(5 * time.Minute)
	_, err = sessions.Get("client-1", view.ID)
	require.NoError(t, err)

	clk.Advance(9 * time.Minute)
	assert.Equal(t, 0, sessions.Sweep())

	clk.Advance(2 * time.Minute)
	assert.Equal(t, 1, sessions.Sweep())
	_, err = sessions.Get("client-1", view.ID)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
	assert.Equal(t, int64(0), f.metrics.Snapshot().ActiveBookingSessions)
}

func TestBookingSessionValidatesPayloads(t *testing.T) {
	f := newFixture()
	sessions := newSessionService(f, &manualClock{now: testNow})
	ctx := context.Background()

	view, err := sessions.Start(ctx, "client-1", dto.StartBookingSessionRequest{})
	require.NoError(t, err)

	_, err = sessions.SelectService("client-1", view.ID, dto.SelectServiceRequest{})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = sessions.SelectService("client-1", view.ID, dto.SelectServiceRequest{ServiceID: "svc-cut"})
	require.NoError(t, err)
	_, err = sessions.SelectProfessional(ctx, "client-1", view.ID, dto.SelectProfessionalRequest{ProfessionalID: "pro-local"})
	require.NoError(t, err)
	_, err = sessions.SelectDate(ctx, "client-1", view.ID, dto.SelectDateRequest{Date: "07-01-2030"})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = sessions.SelectPaymentOption("client-1", view.ID, dto.SelectPaymentOptionRequest{Option: "CASH"})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	require.NoError(t, sessions.Delete("client-1", view.ID))
	_, err = sessions.Get("client-1", view.ID)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}
