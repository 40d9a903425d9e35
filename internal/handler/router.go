package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/shop-booking-api/internal/middleware"
	"github.com/noah-isme/shop-booking-api/internal/models"
)

// Handlers groups every API handler mounted by RegisterRoutes.
type Handlers struct {
	Catalog        *CatalogHandler
	Schedule       *ScheduleHandler
	Availability   *AvailabilityHandler
	Appointments   *AppointmentHandler
	Blocks         *BlockHandler
	BookingSession *BookingSessionHandler
	Metrics        *MetricsHandler
}

// RegisterRoutes mounts the booking API on api. Catalog and availability
// reads are public; everything else requires a bearer token.
func RegisterRoutes(api *gin.RouterGroup, h Handlers, tokens middleware.TokenValidator) {
	auth := middleware.JWT(tokens)
	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleProfessional)
	ownsProfessional := middleware.RequireProfessionalAccess("id")

	api.GET("/services", h.Catalog.Services)
	api.GET("/catalog", h.Catalog.Catalog)

	professionals := api.Group("/professionals")
	professionals.GET("", h.Catalog.Professionals)
	professionals.GET("/:id/schedule", h.Schedule.Get)
	professionals.PUT("/:id/schedule", auth, ownsProfessional, h.Schedule.Upsert)
	professionals.GET("/:id/availability", h.Availability.Availability)
	professionals.GET("/:id/appointments", auth, ownsProfessional, h.Appointments.ListForProfessional)

	api.GET("/agenda", auth, staff, h.Availability.Agenda)

	appointments := api.Group("/appointments", auth)
	appointments.POST("", h.Appointments.Create)
	appointments.PUT("/:id/reschedule", h.Appointments.Reschedule)
	appointments.POST("/:id/payment-preference", h.Appointments.CreatePaymentPreference)
	appointments.GET("/:id/payment-preferences", h.Appointments.PaymentPreferences)

	blocks := api.Group("/blocks", auth, staff)
	blocks.GET("", h.Blocks.List)
	blocks.POST("", h.Blocks.Create)
	blocks.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), h.Blocks.Delete)

	sessions := api.Group("/booking-sessions", auth)
	sessions.POST("", h.BookingSession.Start)
	sessions.GET("/:id", h.BookingSession.Get)
	sessions.DELETE("/:id", h.BookingSession.Delete)
	sessions.PUT("/:id/service", h.BookingSession.SelectService)
	sessions.PUT("/:id/professional", h.BookingSession.SelectProfessional)
	sessions.PUT("/:id/date", h.BookingSession.SelectDate)
	sessions.PUT("/:id/time", h.BookingSession.SelectTime)
	sessions.PUT("/:id/payment-option", h.BookingSession.SelectPaymentOption)
	sessions.POST("/:id/back", h.BookingSession.Back)
	sessions.POST("/:id/submit", h.BookingSession.Submit)

	api.GET("/metrics/summary", auth, middleware.RequireRoles(models.RoleAdmin), h.Metrics.Snapshot)
}

// RegisterOps mounts the probes and the Prometheus endpoint at the root.
func RegisterOps(r gin.IRoutes, h *MetricsHandler) {
	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)
	r.GET("/metrics", h.Prometheus)
}
