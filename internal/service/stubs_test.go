package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/noah-isme/shop-booking-api/internal/availability"
	"github.com/noah-isme/shop-booking-api/internal/events"
	"github.com/noah-isme/shop-booking-api/internal/models"
	"github.com/noah-isme/shop-booking-api/internal/payment"
	"github.com/noah-isme/shop-booking-api/internal/repository"
	"github.com/noah-isme/shop-booking-api/pkg/clock"
	appErrors "github.com/noah-isme/shop-booking-api/pkg/errors"
)

var testLoc = time.FixedZone("ART", -3*60*60)

// testNow is a Tuesday morning before every date used below.
var testNow = time.Date(2030, 1, 1, 8, 0, 0, 0, testLoc)

func testMonday() time.Time {
	return time.Date(2030, 1, 7, 0, 0, 0, 0, testLoc)
}

func atTime(day time.Time, hhmm string) time.Time {
	return models.MustTimeOfDay(hhmm).On(day)
}

type serviceRepoStub struct {
	items     []models.Service
	listCalls int
	err       error
}

func (s *serviceRepoStub) ListActive(context.Context) ([]models.Service, error) {
	s.listCalls++
	if s.err != nil {
		return nil, s.err
	}
	var out []models.Service
	for _, svc := range s.items {
		if svc.IsActive {
			out = append(out, svc)
		}
	}
	return out, nil
}

func (s *serviceRepoStub) FindByID(_ context.Context, id string) (*models.Service, error) {
	for _, svc := range s.items {
		if svc.ID == id {
			found := svc
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

type professionalRepoStub struct {
	items     map[string]models.Professional
	listCalls int
	updated   map[string]models.WeeklyTemplate
}

func (s *professionalRepoStub) List(context.Context) ([]models.Professional, error) {
	s.listCalls++
	out := make([]models.Professional, 0, len(s.items))
	for _, id := range []string{"pro-local", "pro-deposit"} {
		if pro, ok := s.items[id]; ok {
			out = append(out, pro)
		}
	}
	return out, nil
}

func (s *professionalRepoStub) FindByID(_ context.Context, id string) (*models.Professional, error) {
	pro, ok := s.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &pro, nil
}

func (s *professionalRepoStub) UpdateTemplate(_ context.Context, id string, template models.WeeklyTemplate) error {
	pro, ok := s.items[id]
	if !ok {
		return sql.ErrNoRows
	}
	pro.WeeklyTemplate = template
	s.items[id] = pro
	if s.updated == nil {
		s.updated = map[string]models.WeeklyTemplate{}
	}
	s.updated[id] = template
	return nil
}

type blockRepoStub struct {
	items   []models.Block
	filters []models.BlockFilter
}

func (s *blockRepoStub) List(_ context.Context, filter models.BlockFilter) ([]models.Block, error) {
	s.filters = append(s.filters, filter)
	return append([]models.Block(nil), s.items...), nil
}

func (s *blockRepoStub) Create(_ context.Context, block *models.Block) error {
	block.ID = "block-" + string(rune('a'+len(s.items)))
	s.items = append(s.items, *block)
	return nil
}

func (s *blockRepoStub) Delete(_ context.Context, id string) (bool, error) {
	for i, b := range s.items {
		if b.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

type appointmentRepoStub struct {
	mu          sync.Mutex
	items       []models.Appointment
	createErr   error
	created     []models.Appointment
	days        []models.DayRange
	rescheduled []string
}

func (s *appointmentRepoStub) List(_ context.Context, filter models.AppointmentFilter) ([]models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Appointment
	for _, a := range s.items {
		if filter.ProfessionalID != "" && a.ProfessionalID != filter.ProfessionalID {
			continue
		}
		if !filter.IncludeCancelled && a.Status == models.AppointmentCancelled {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (s *appointmentRepoStub) FindByID(_ context.Context, id string) (*models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.items {
		if a.ID == id {
			found := a
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *appointmentRepoStub) Create(_ context.Context, appt *models.Appointment, day models.DayRange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	appt.ID = "appt-new"
	s.items = append(s.items, *appt)
	s.created = append(s.created, *appt)
	s.days = append(s.days, day)
	return nil
}

func (s *appointmentRepoStub) Reschedule(_ context.Context, id string, start time.Time, _ models.DayRange) (*models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, a := range s.items {
		if a.ID == id {
			if !a.Status.Reschedulable() {
				return nil, repository.ErrNotReschedulable
			}
			s.items[i].StartAt = start
			s.rescheduled = append(s.rescheduled, id)
			updated := s.items[i]
			return &updated, nil
		}
	}
	return nil, sql.ErrNoRows
}

type preferenceRepoStub struct {
	items []models.PaymentPreference
}

func (s *preferenceRepoStub) Create(_ context.Context, pref *models.PaymentPreference) error {
	pref.ID = "pref-1"
	s.items = append(s.items, *pref)
	return nil
}

func (s *preferenceRepoStub) ListByAppointment(_ context.Context, appointmentID string) ([]models.PaymentPreference, error) {
	var out []models.PaymentPreference
	for _, p := range s.items {
		if p.AppointmentID == appointmentID {
			out = append(out, p)
		}
	}
	return out, nil
}

type providerStub struct {
	requests []payment.CheckoutRequest
	err      error
}

func (p *providerStub) CreateCheckout(_ context.Context, req payment.CheckoutRequest) (*payment.Checkout, error) {
	p.requests = append(p.requests, req)
	if p.err != nil {
		return nil, p.err
	}
	return &payment.Checkout{ProviderRef: "cs_test_1", RedirectURL: "https://checkout.stripe.test/cs_test_1"}, nil
}

type publisherStub struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *publisherStub) Publish(_ context.Context, evt events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

func (p *publisherStub) Close() error { return nil }

func (p *publisherStub) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, evt := range p.events {
		out = append(out, evt.Type)
	}
	return out
}

// memoryCache is an in-process CacheRepository storing JSON like Redis does.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	ttls    map[string]time.Duration
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (c *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = raw
	c.ttls[key] = ttl
	return nil
}

func (c *memoryCache) DeleteByPattern(_ context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	return nil
}

type fixture struct {
	services      *serviceRepoStub
	professionals *professionalRepoStub
	blocks        *blockRepoStub
	appointments  *appointmentRepoStub
	preferences   *preferenceRepoStub
	provider      *providerStub
	publisher     *publisherStub
	cache         *memoryCache
	metrics       *MetricsService

	catalog      *CatalogService
	availability *AvailabilityService
	appointment  *AppointmentService
	block        *BlockService
}

func newFixture() *fixture {
	f := &fixture{
		services: &serviceRepoStub{items: []models.Service{
			{ID: "svc-cut", Name: "Haircut", Price: 1500, DurationMinutes: 30, IsActive: true, IsFeatured: true},
			{ID: "svc-color", Name: "Color", Price: 2000, DurationMinutes: 60, IsActive: true},
			{ID: "svc-retired", Name: "Retired", Price: 100, DurationMinutes: 30},
		}},
		professionals: &professionalRepoStub{items: map[string]models.Professional{
			"pro-local":   {ID: "pro-local", Name: "Ana"},
			"pro-deposit": {ID: "pro-deposit", Name: "Bruno", DepositAmount: 500},
		}},
		blocks:       &blockRepoStub{},
		appointments: &appointmentRepoStub{},
		preferences:  &preferenceRepoStub{},
		provider:     &providerStub{},
		publisher:    &publisherStub{},
		cache:        newMemoryCache(),
		metrics:      NewMetricsService(),
	}
	cache := NewCacheService(f.cache, f.metrics, time.Minute, nil, true)
	f.catalog = NewCatalogService(f.services, f.professionals, cache, nil, CatalogServiceConfig{FeaturedMax: 1})
	engine := availability.NewEngine(availability.DefaultGrid(), testLoc, clock.Fixed(testNow), availability.HidePastSlots)
	f.availability = NewAvailabilityService(engine, f.catalog, f.blocks, f.appointments, f.metrics, nil)
	f.appointment = NewAppointmentService(f.appointments, f.preferences, f.provider, f.catalog, f.availability, f.publisher, f.metrics, nil, nil, AppointmentServiceConfig{Currency: "ars"})
	f.block = NewBlockService(f.blocks, f.catalog, f.availability, f.publisher, f.metrics, nil, nil)
	return f
}
