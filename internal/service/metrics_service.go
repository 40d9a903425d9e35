package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/shop-booking-api/internal/models"
)

// Outcome label values shared by the booking, payment and event counters.
const (
	outcomeOK       = "ok"
	outcomeConflict = "conflict"
	outcomeError    = "error"
)

func outcomeOf(success bool) string {
	if success {
		return outcomeOK
	}
	return outcomeError
}

// MetricsService owns a private Prometheus registry and keeps running totals
// for the JSON summary. Every method is safe on a nil receiver.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Histogram
	cacheWrite      prometheus.Histogram
	cacheLookups    *prometheus.CounterVec
	cacheHitRatio   prometheus.Gauge
	dbQueryDuration *prometheus.HistogramVec
	freeSlots       prometheus.Histogram
	bookings        *prometheus.CounterVec
	payments        *prometheus.CounterVec
	events          *prometheus.CounterVec
	eventsDropped   *prometheus.CounterVec
	sessions        prometheus.Gauge

	cacheHits      atomic.Uint64
	cacheMisses    atomic.Uint64
	requests       atomic.Uint64
	requestNanos   atomic.Uint64
	dbQueries      atomic.Uint64
	dbQueryNanos   atomic.Uint64
	booked         atomic.Uint64
	conflicts      atomic.Uint64
	dropped        atomic.Uint64
	activeSessions atomic.Int64
}

// NewMetricsService registers the HTTP, cache, availability and booking
// collectors together with the Go runtime and process collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(registry)

	m := &MetricsService{
		registry: registry,
		handler:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),

		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests by route pattern",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route pattern",
		}, []string{"method", "path", "status"}),
		cacheLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_latency_seconds",
			Help:    "Catalog cache read latency",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		}),
		cacheWrite: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_write_seconds",
			Help:    "Catalog cache write latency",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		}),
		cacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_lookups_total",
			Help: "Catalog cache lookups by result",
		}, []string{"result"}),
		cacheHitRatio: f.NewGauge(prometheus.GaugeOpts{
			Name: "cache_hit_ratio",
			Help: "Catalog cache hits over lookups since start",
		}),
		dbQueryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Duration of database round trips by query label",
			Buckets: prometheus.DefBuckets,
		}, []string{"query"}),
		freeSlots: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "availability_free_slots",
			Help:    "Free slots returned per availability computation",
			Buckets: prometheus.LinearBuckets(0, 4, 8),
		}),
		bookings: f.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_submissions_total",
			Help: "Appointment submissions by kind and outcome",
		}, []string{"kind", "outcome"}),
		payments: f.NewCounterVec(prometheus.CounterOpts{
			Name: "payment_preferences_total",
			Help: "Payment preference requests by option and outcome",
		}, []string{"option", "outcome"}),
		events: f.NewCounterVec(prometheus.CounterOpts{
			Name: "domain_events_published_total",
			Help: "Domain events handed to the event publisher",
		}, []string{"type", "outcome"}),
		eventsDropped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "domain_events_dropped_total",
			Help: "Domain events abandoned after exhausting broker retries",
		}, []string{"type"}),
		sessions: f.NewGauge(prometheus.GaugeOpts{
			Name: "booking_sessions_active",
			Help: "Booking sessions currently held in memory",
		}),
	}
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records one served request. path must be the route
// pattern, never the raw URL.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, took time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, code).Observe(took.Seconds())
	m.requestTotal.WithLabelValues(method, path, code).Inc()
	m.requests.Add(1)
	m.requestNanos.Add(uint64(took.Nanoseconds()))
}

// RecordCacheOperation records a catalog cache read.
func (m *MetricsService) RecordCacheOperation(hit bool, took time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(took.Seconds())
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
		m.cacheHits.Add(1)
	} else {
		m.cacheLookups.WithLabelValues("miss").Inc()
		m.cacheMisses.Add(1)
	}
	m.cacheHitRatio.Set(ratio(m.cacheHits.Load(), m.cacheMisses.Load()))
}

// ObserveCacheWrite records a catalog cache write.
func (m *MetricsService) ObserveCacheWrite(took time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(took.Seconds())
}

// ObserveDBQuery records a labelled database round trip.
func (m *MetricsService) ObserveDBQuery(label string, took time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(took.Seconds())
	m.dbQueries.Add(1)
	m.dbQueryNanos.Add(uint64(took.Nanoseconds()))
}

// ObserveFreeSlots records how many free slots an availability query produced.
func (m *MetricsService) ObserveFreeSlots(count int) {
	if m == nil {
		return
	}
	m.freeSlots.Observe(float64(count))
}

// RecordBooking counts an appointment submission. kind is "create" or
// "reschedule"; outcome is "ok", "conflict" or "error".
func (m *MetricsService) RecordBooking(kind, outcome string) {
	if m == nil {
		return
	}
	m.bookings.WithLabelValues(kind, outcome).Inc()
	switch outcome {
	case outcomeOK:
		m.booked.Add(1)
	case outcomeConflict:
		m.conflicts.Add(1)
	}
}

// RecordPaymentPreference counts a payment preference attempt.
func (m *MetricsService) RecordPaymentPreference(option string, success bool) {
	if m == nil {
		return
	}
	m.payments.WithLabelValues(option, outcomeOf(success)).Inc()
}

// RecordEvent counts an event handed to the publisher.
func (m *MetricsService) RecordEvent(eventType string, success bool) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(eventType, outcomeOf(success)).Inc()
}

// RecordEventDropped counts an event the async publisher gave up on.
func (m *MetricsService) RecordEventDropped(eventType string) {
	if m == nil {
		return
	}
	m.eventsDropped.WithLabelValues(eventType).Inc()
	m.dropped.Add(1)
}

// SetActiveSessions reports the number of live booking sessions.
func (m *MetricsService) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.sessions.Set(float64(n))
	m.activeSessions.Store(int64(n))
}

// Snapshot returns the running totals behind GET /metrics/summary.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	hits, misses := m.cacheHits.Load(), m.cacheMisses.Load()
	requests, dbQueries := m.requests.Load(), m.dbQueries.Load()

	return models.SystemMetrics{
		CacheHitRatio:            ratio(hits, misses),
		CacheHits:                hits,
		CacheMisses:              misses,
		RequestsTotal:            requests,
		AverageRequestDurationMs: averageMillis(m.requestNanos.Load(), requests),
		DBQueryCount:             dbQueries,
		AverageDBQueryDurationMs: averageMillis(m.dbQueryNanos.Load(), dbQueries),
		AppointmentsBooked:       m.booked.Load(),
		SlotConflicts:            m.conflicts.Load(),
		EventsDropped:            m.dropped.Load(),
		ActiveBookingSessions:    m.activeSessions.Load(),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}

func ratio(hits, misses uint64) float64 {
	if hits+misses == 0 {
		return 0
	}
	return float64(hits) / float64(hits+misses)
}

func averageMillis(totalNanos, count uint64) float64 {
	if count == 0 {
		return 0
	}
	return float64(totalNanos) / float64(count) / float64(time.Millisecond)
}
