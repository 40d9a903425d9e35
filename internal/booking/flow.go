// Package booking drives a client through service, professional, date and
// time selection and submits the resulting appointment.
package booking

import (
	"context"
	"errors"
	"reflect"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/shop-booking-api/internal/models"
	"github.com/noah-isme/shop-booking-api/pkg/clock"
	appErrors "github.com/noah-isme/shop-booking-api/pkg/errors"
)

// State is a step of the booking flow.
type State string

const (
	StateSelectingService      State = "SELECTING_SERVICE"
	StateSelectingProfessional State = "SELECTING_PROFESSIONAL"
	StateSelectingDate         State = "SELECTING_DATE"
	StateSelectingTime         State = "SELECTING_TIME"
	StateSubmitting            State = "SUBMITTING"
	StateSucceeded             State = "SUCCEEDED"
	StateRedirecting           State = "REDIRECTING"
	StateFailed                State = "FAILED"
)

// selectionSteps lists the selection states in flow order.
var selectionSteps = []State{
	StateSelectingService,
	StateSelectingProfessional,
	StateSelectingDate,
	StateSelectingTime,
}

func stepIndex(s State) int {
	return slices.Index(selectionSteps, s)
}

// Terminal reports whether no further interaction is meaningful.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateRedirecting
}

const (
	genericFailureMessage = "We could not complete your booking. Please try again."
	paymentFailureMessage = "Your appointment is booked, but the payment could not be started. You can retry the payment from your appointments."
)

// AppointmentRequest is what the gateway needs to book a new appointment.
type AppointmentRequest struct {
	ProfessionalID string
	ServiceID      string
	ClientID       string
	StartAt        time.Time
}

// Gateway performs the side effects of a submission.
type Gateway interface {
	CreateAppointment(ctx context.Context, req AppointmentRequest) (*models.Appointment, error)
	RescheduleAppointment(ctx context.Context, appointmentID string, start time.Time) (*models.Appointment, error)
	CreatePaymentPreference(ctx context.Context, appointmentID string, option models.PaymentOption) (*models.PaymentPreference, error)
}

// SlotSource lists the free start times of a professional on a date.
// excludeAppointmentID, when set, leaves that appointment's cells free.
type SlotSource interface {
	FreeSlots(ctx context.Context, professionalID string, date time.Time, excludeAppointmentID string) ([]time.Time, error)
}

// Selection holds the client's raw choices.
type Selection struct {
	ServiceID      string
	ProfessionalID string
	Date           time.Time
	Time           *models.TimeOfDay
	PaymentOption  models.PaymentOption
}

// Result is the outcome of the last submission.
type Result struct {
	Appointment       *models.Appointment       `json:"appointment,omitempty"`
	PaymentPreference *models.PaymentPreference `json:"payment_preference,omitempty"`
	RedirectURL       string                    `json:"redirect_url,omitempty"`
	Message           string                    `json:"message,omitempty"`
	PaymentFailed     bool                      `json:"payment_failed,omitempty"`
}

// Options configures a Flow.
type Options struct {
	ID       string
	ClientID string
	// RescheduleOf turns the flow into a reschedule of that appointment.
	RescheduleOf string
	Location     *time.Location
	Clock        clock.Clock
	Slots        SlotSource
	Gateway      Gateway
	Logger       *zap.Logger
}

// Flow is one client's booking session. All methods are safe for concurrent
// use; network calls made during Submit run without holding the lock so a
// concurrent Submit is rejected instead of queued.
type Flow struct {
	mu sync.Mutex

	id           string
	clientID     string
	rescheduleOf string
	location     *time.Location
	clock        clock.Clock
	slots        SlotSource
	gateway      Gateway
	logger       *zap.Logger

	state     State
	selection Selection
	inFlight  bool

	services      []models.Service
	professionals []models.Professional
	catalogError  string

	serviceInfo      *models.Service
	professionalInfo *models.Professional

	availableSlots []time.Time
	slotsError     string
	slotsKey       slotsKey

	// pendingPayment is an appointment created by a submission whose
	// payment preference failed; the next Submit only retries the payment.
	pendingPayment *models.Appointment
	result         *Result
}

type slotsKey struct {
	professionalID string
	date           time.Time
	template       models.WeeklyTemplate
}

// NewFlow starts a flow at service selection.
func NewFlow(opts Options) *Flow {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Clock == nil {
		opts.Clock = clock.System()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Flow{
		id:           opts.ID,
		clientID:     opts.ClientID,
		rescheduleOf: opts.RescheduleOf,
		location:     opts.Location,
		clock:        opts.Clock,
		slots:        opts.Slots,
		gateway:      opts.Gateway,
		logger:       opts.Logger,
		state:        StateSelectingService,
		selection:    Selection{PaymentOption: models.PaymentTotal},
	}
}

// ID returns the flow identifier.
func (f *Flow) ID() string { return f.id }

// ClientID returns the client that owns the flow.
func (f *Flow) ClientID() string { return f.clientID }

// LoadCatalog replaces the known services and professionals. A load error
// leaves empty lists and a message instead of failing the flow.
func (f *Flow) LoadCatalog(ctx context.Context, services []models.Service, professionals []models.Professional, loadErr error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.services = f.services[:0]
	for _, svc := range services {
		if svc.IsActive {
			f.services = append(f.services, svc)
		}
	}
	f.professionals = append([]models.Professional(nil), professionals...)
	f.catalogError = ""
	if loadErr != nil {
		f.catalogError = "The catalog could not be loaded. Please try again later."
		f.logger.Warn("booking catalog load failed", zap.String("flow_id", f.id), zap.Error(loadErr))
	}
	f.resolveService()
	f.resolveProfessional()
	f.recomputeSlots(ctx, false)
}

// SelectService records the chosen service.
func (f *Flow) SelectService(serviceID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.ensureSelectable(StateSelectingService); err != nil {
		return err
	}
	if serviceID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "service_id is required")
	}
	f.selection.ServiceID = serviceID
	f.resolveService()
	f.selectionChanged(StateSelectingService)
	return nil
}

// SelectProfessional records the chosen professional and applies the
// payment-option policy once the professional is resolved.
func (f *Flow) SelectProfessional(ctx context.Context, professionalID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.ensureSelectable(StateSelectingProfessional); err != nil {
		return err
	}
	if professionalID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "professional_id is required")
	}
	f.selection.ProfessionalID = professionalID
	f.resolveProfessional()
	f.recomputeSlots(ctx, true)
	f.selectionChanged(StateSelectingProfessional)
	return nil
}

// SelectDate records the chosen calendar date. Dates before today are rejected.
func (f *Flow) SelectDate(ctx context.Context, date time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.ensureSelectable(StateSelectingDate); err != nil {
		return err
	}
	day := f.dateOf(date)
	if day.Before(clock.Today(f.clock, f.location)) {
		return appErrors.Clone(appErrors.ErrValidation, "date must not be in the past")
	}
	f.selection.Date = day
	f.recomputeSlots(ctx, true)
	f.selectionChanged(StateSelectingDate)
	return nil
}

// SelectTime records the chosen start time, which must be one of the
// currently available slots.
func (f *Flow) SelectTime(t models.TimeOfDay) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.ensureSelectable(StateSelectingTime); err != nil {
		return err
	}
	if f.selection.Date.IsZero() {
		return appErrors.Clone(appErrors.ErrValidation, "select a date first")
	}
	start := t.On(f.selection.Date)
	if !slices.ContainsFunc(f.availableSlots, start.Equal) {
		return appErrors.Clone(appErrors.ErrValidation, "selected time is not available")
	}
	tod := t
	f.selection.Time = &tod
	f.selectionChanged(StateSelectingTime)
	return nil
}

// SelectPaymentOption records how the client wants to pay.
func (f *Flow) SelectPaymentOption(option models.PaymentOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.inFlight {
		return appErrors.ErrSubmissionInFlight
	}
	if !f.selectable() {
		return appErrors.ErrInvalidTransition
	}
	if f.rescheduleOf != "" {
		return appErrors.Clone(appErrors.ErrValidation, "payment option cannot change when rescheduling")
	}
	if !option.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "unknown payment option")
	}
	if !OptionAllowed(option, f.professionalInfo) {
		if f.professionalInfo != nil && !f.professionalInfo.RequiresDeposit() {
			return appErrors.Clone(appErrors.ErrValidation, "this professional only accepts payment at the venue")
		}
		return appErrors.Clone(appErrors.ErrValidation, "this professional requires online prepayment")
	}
	f.selection.PaymentOption = option
	f.pendingPayment = nil
	return nil
}

// Back returns to an earlier selection step without clearing choices.
func (f *Flow) Back(target State) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.inFlight {
		return appErrors.ErrSubmissionInFlight
	}
	targetIdx := stepIndex(target)
	if targetIdx < 0 {
		return appErrors.Clone(appErrors.ErrValidation, "unknown step")
	}
	if !f.selectable() || targetIdx > f.currentIndex() {
		return appErrors.ErrInvalidTransition
	}
	f.state = target
	return nil
}

// Submit books the selection. Without a chosen time it returns a validation
// error and leaves the state untouched. A second call while one is running
// gets ErrSubmissionInFlight.
func (f *Flow) Submit(ctx context.Context) (View, error) {
	f.mu.Lock()
	if f.inFlight {
		f.mu.Unlock()
		return View{}, appErrors.ErrSubmissionInFlight
	}
	if f.state != StateSelectingTime && f.state != StateFailed {
		f.mu.Unlock()
		return View{}, appErrors.ErrInvalidTransition
	}
	if f.selection.Time == nil || f.selection.Date.IsZero() {
		f.mu.Unlock()
		return View{}, appErrors.Clone(appErrors.ErrValidation, "select a time before submitting")
	}
	if f.selection.ProfessionalID == "" || (f.rescheduleOf == "" && f.selection.ServiceID == "") {
		f.mu.Unlock()
		return View{}, appErrors.Clone(appErrors.ErrValidation, "service and professional are required")
	}
	if f.gateway == nil {
		f.mu.Unlock()
		return View{}, appErrors.Clone(appErrors.ErrInternal, "booking gateway not configured")
	}

	f.inFlight = true
	f.state = StateSubmitting
	f.result = nil
	sel := f.selection
	start := sel.Time.On(sel.Date)
	pending := f.pendingPayment
	rescheduleOf := f.rescheduleOf
	clientID := f.clientID
	f.mu.Unlock()

	state, result := f.submit(ctx, sel, start, pending, rescheduleOf, clientID)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlight = false
	f.state = state
	f.result = result
	if result.PaymentFailed {
		f.pendingPayment = result.Appointment
	} else {
		f.pendingPayment = nil
	}
	return f.viewLocked(), nil
}

func (f *Flow) submit(ctx context.Context, sel Selection, start time.Time, pending *models.Appointment, rescheduleOf, clientID string) (State, *Result) {
	if rescheduleOf != "" {
		appt, err := f.gateway.RescheduleAppointment(ctx, rescheduleOf, start)
		if err != nil {
			f.logger.Warn("reschedule failed", zap.String("flow_id", f.id), zap.String("appointment_id", rescheduleOf), zap.Error(err))
			return StateFailed, &Result{Message: FailureMessage(err)}
		}
		return StateSucceeded, &Result{Appointment: appt}
	}

	appt := pending
	if appt == nil {
		created, err := f.gateway.CreateAppointment(ctx, AppointmentRequest{
			ProfessionalID: sel.ProfessionalID,
			ServiceID:      sel.ServiceID,
			ClientID:       clientID,
			StartAt:        start,
		})
		if err != nil {
			f.logger.Warn("appointment submission failed", zap.String("flow_id", f.id), zap.Error(err))
			return StateFailed, &Result{Message: FailureMessage(err)}
		}
		appt = created
	}

	if sel.PaymentOption == models.PaymentLocal {
		return StateSucceeded, &Result{Appointment: appt}
	}

	pref, err := f.gateway.CreatePaymentPreference(ctx, appt.ID, sel.PaymentOption)
	if err != nil {
		f.logger.Warn("payment preference failed", zap.String("flow_id", f.id), zap.String("appointment_id", appt.ID), zap.Error(err))
		return StateFailed, &Result{Appointment: appt, Message: paymentFailureMessage, PaymentFailed: true}
	}
	return StateRedirecting, &Result{Appointment: appt, PaymentPreference: pref, RedirectURL: pref.RedirectURL}
}

// FailureMessage extracts a client-facing message from err, falling back to
// a generic one for internal or unknown failures.
func FailureMessage(err error) string {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) && appErr.Message != "" && appErr.Status < 500 {
		return appErr.Message
	}
	return genericFailureMessage
}

func (f *Flow) selectable() bool {
	return f.state == StateFailed || stepIndex(f.state) >= 0
}

// currentIndex treats FAILED as the time step so every choice can be revised.
func (f *Flow) currentIndex() int {
	if f.state == StateFailed {
		return len(selectionSteps) - 1
	}
	return stepIndex(f.state)
}

func (f *Flow) ensureSelectable(step State) error {
	if f.inFlight {
		return appErrors.ErrSubmissionInFlight
	}
	if !f.selectable() {
		return appErrors.ErrInvalidTransition
	}
	if stepIndex(step) > f.currentIndex() {
		return appErrors.Clone(appErrors.ErrInvalidTransition, "complete the previous steps first")
	}
	return nil
}

// selectionChanged moves the cursor to the first incomplete step after step.
func (f *Flow) selectionChanged(step State) {
	f.pendingPayment = nil
	last := len(selectionSteps) - 1
	next := stepIndex(step) + 1
	for next < last && f.stepComplete(selectionSteps[next]) {
		next++
	}
	f.state = selectionSteps[min(next, last)]
}

func (f *Flow) stepComplete(step State) bool {
	switch step {
	case StateSelectingService:
		return f.selection.ServiceID != ""
	case StateSelectingProfessional:
		return f.selection.ProfessionalID != ""
	case StateSelectingDate:
		return !f.selection.Date.IsZero()
	}
	return false
}

func (f *Flow) resolveService() {
	f.serviceInfo = nil
	for i := range f.services {
		if f.services[i].ID == f.selection.ServiceID {
			svc := f.services[i]
			f.serviceInfo = &svc
			return
		}
	}
}

func (f *Flow) resolveProfessional() {
	var resolved *models.Professional
	for i := range f.professionals {
		if f.professionals[i].ID == f.selection.ProfessionalID {
			pro := f.professionals[i]
			resolved = &pro
			break
		}
	}
	changed := !reflect.DeepEqual(resolved, f.professionalInfo)
	f.professionalInfo = resolved
	if changed && f.rescheduleOf == "" {
		f.selection.PaymentOption = ApplyPaymentPolicy(f.selection.PaymentOption, resolved)
	}
}

// recomputeSlots refreshes the available slots. Unless force is set it only
// runs when professional, date or template changed since the last run.
func (f *Flow) recomputeSlots(ctx context.Context, force bool) {
	key := slotsKey{professionalID: f.selection.ProfessionalID, date: f.selection.Date}
	if f.professionalInfo != nil {
		key.template = f.professionalInfo.WeeklyTemplate
	}
	if !force && reflect.DeepEqual(key, f.slotsKey) {
		return
	}
	f.slotsKey = key
	f.availableSlots = nil
	f.slotsError = ""
	if f.professionalInfo == nil || key.date.IsZero() || f.slots == nil {
		return
	}
	slots, err := f.slots.FreeSlots(ctx, key.professionalID, key.date, f.rescheduleOf)
	if err != nil {
		f.slotsError = FailureMessage(err)
		f.logger.Warn("slot computation failed", zap.String("flow_id", f.id), zap.Error(err))
		return
	}
	f.availableSlots = append([]time.Time{}, slots...)
}

func (f *Flow) dateOf(t time.Time) time.Time {
	local := t.In(f.location)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, f.location)
}
