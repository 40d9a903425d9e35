package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/shop-booking-api/internal/booking"
	"github.com/noah-isme/shop-booking-api/internal/dto"
	appErrors "github.com/noah-isme/shop-booking-api/pkg/errors"
)

type bookingSessionServiceStub struct {
	clientID string
	start    dto.StartBookingSessionRequest
	calls    []string
	submit   error
}

func (s *bookingSessionServiceStub) view(clientID, id string, state booking.State, call string) (booking.View, error) {
	s.clientID = clientID
	s.calls = append(s.calls, call)
	if id == "missing" {
		return booking.View{}, appErrors.Clone(appErrors.ErrNotFound, "booking session not found")
	}
	return booking.View{ID: id, State: state}, nil
}

func (s *bookingSessionServiceStub) Start(ctx context.Context, clientID string, req dto.StartBookingSessionRequest) (booking.View, error) {
	s.start = req
	return s.view(clientID, "sess-1", booking.StateSelectingService, "start")
}

func (s *bookingSessionServiceStub) Get(clientID, id string) (booking.View, error) {
	return s.view(clientID, id, booking.StateSelectingService, "get")
}

func (s *bookingSessionServiceStub) Delete(clientID, id string) error {
	_, err := s.view(clientID, id, "", "delete")
	return err
}

func (s *bookingSessionServiceStub) SelectService(clientID, id string, req dto.SelectServiceRequest) (booking.View, error) {
	return s.view(clientID, id, booking.StateSelectingProfessional, "service:"+req.ServiceID)
}

func (s *bookingSessionServiceStub) SelectProfessional(ctx context.Context, clientID, id string, req dto.SelectProfessionalRequest) (booking.View, error) {
	return s.view(clientID, id, booking.StateSelectingDate, "professional:"+req.ProfessionalID)
}

func (s *bookingSessionServiceStub) SelectDate(ctx context.Context, clientID, id string, req dto.SelectDateRequest) (booking.View, error) {
	return s.view(clientID, id, booking.StateSelectingTime, "date:"+req.Date)
}

func (s *bookingSessionServiceStub) SelectTime(clientID, id string, req dto.SelectTimeRequest) (booking.View, error) {
	return s.view(clientID, id, booking.StateSelectingTime, "time:"+req.Time)
}

func (s *bookingSessionServiceStub) SelectPaymentOption(clientID, id string, req dto.SelectPaymentOptionRequest) (booking.View, error) {
	return s.view(clientID, id, booking.StateSelectingTime, "payment:"+string(req.Option))
}

func (s *bookingSessionServiceStub) Back(clientID, id string, req dto.BackRequest) (booking.View, error) {
	return s.view(clientID, id, booking.State(req.Step), "back:"+req.Step)
}

func (s *bookingSessionServiceStub) Submit(ctx context.Context, clientID, id string) (booking.View, error) {
	if s.submit != nil {
		return booking.View{}, s.submit
	}
	return s.view(clientID, id, booking.StateRedirecting, "submit")
}

func TestBookingSessionHandlerStartWithoutBody(t *testing.T) {
	stub := &bookingSessionServiceStub{}
	h := NewBookingSessionHandler(stub)
	c, w := newContext(t, http.MethodPost, "/booking-sessions", nil, clientClaims)

	h.Start(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "u-client", stub.clientID)
	assert.Empty(t, stub.start.RescheduleOf)
	var view booking.View
	decodeData(t, w, &view)
	assert.Equal(t, booking.StateSelectingService, view.State)
}

func TestBookingSessionHandlerStartReschedule(t *testing.T) {
	stub := &bookingSessionServiceStub{}
	h := NewBookingSessionHandler(stub)
	c, w := newContext(t, http.MethodPost, "/booking-sessions", dto.StartBookingSessionRequest{RescheduleOf: "appt-1"}, clientClaims)

	h.Start(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "appt-1", stub.start.RescheduleOf)
}

func TestBookingSessionHandlerRequiresClaims(t *testing.T) {
	h := NewBookingSessionHandler(&bookingSessionServiceStub{})
	c, w := newContext(t, http.MethodGet, "/booking-sessions/sess-1", nil, nil, "id", "sess-1")

	h.Get(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBookingSessionHandlerSteps(t *testing.T) {
	stub := &bookingSessionServiceStub{}
	h := NewBookingSessionHandler(stub)
	steps := []struct {
		call   gin.HandlerFunc
		body   interface{}
		method string
	}{
		{call: h.SelectService, body: dto.SelectServiceRequest{ServiceID: "svc-1"}, method: http.MethodPut},
		{call: h.SelectProfessional, body: dto.SelectProfessionalRequest{ProfessionalID: "pro-1"}, method: http.MethodPut},
		{call: h.SelectDate, body: dto.SelectDateRequest{Date: "2030-01-07"}, method: http.MethodPut},
		{call: h.SelectTime, body: dto.SelectTimeRequest{Time: "14:00"}, method: http.MethodPut},
		{call: h.SelectPaymentOption, body: dto.SelectPaymentOptionRequest{Option: "DEPOSIT"}, method: http.MethodPut},
		{call: h.Back, body: dto.BackRequest{Step: "SELECTING_DATE"}, method: http.MethodPost},
		{call: h.Submit, method: http.MethodPost},
	}
	for _, step := range steps {
		c, w := newContext(t, step.method, "/booking-sessions/sess-1", step.body, clientClaims, "id", "sess-1")
		step.call(c)
		require.Equal(t, http.StatusOK, w.Code)
	}

	assert.Equal(t, []string{
		"service:svc-1",
		"professional:pro-1",
		"date:2030-01-07",
		"time:14:00",
		"payment:DEPOSIT",
		"back:SELECTING_DATE",
		"submit",
	}, stub.calls)
}

func TestBookingSessionHandlerSubmitInFlight(t *testing.T) {
	h := NewBookingSessionHandler(&bookingSessionServiceStub{submit: appErrors.ErrSubmissionInFlight})
	c, w := newContext(t, http.MethodPost, "/booking-sessions/sess-1/submit", nil, clientClaims, "id", "sess-1")

	h.Submit(c)

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "SUBMISSION_IN_FLIGHT", decode(t, w).Error.Code)
}

func TestBookingSessionHandlerMissingSession(t *testing.T) {
	h := NewBookingSessionHandler(&bookingSessionServiceStub{})
	c, w := newContext(t, http.MethodDelete, "/booking-sessions/missing", nil, clientClaims, "id", "missing")

	h.Delete(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
