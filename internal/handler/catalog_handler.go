package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/shop-booking-api/internal/dto"
	"github.com/noah-isme/shop-booking-api/internal/middleware"
	"github.com/noah-isme/shop-booking-api/internal/models"
	"github.com/noah-isme/shop-booking-api/pkg/response"
)

type catalogService interface {
	ListServices(ctx context.Context) ([]models.Service, error)
	ListProfessionals(ctx context.Context) ([]models.Professional, error)
	Catalog(ctx context.Context) (*dto.CatalogResponse, error)
}

// CatalogHandler exposes the read-only catalog.
type CatalogHandler struct {
	service catalogService
}

// NewCatalogHandler builds a catalog handler.
func NewCatalogHandler(service catalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// Services godoc
// @Summary List active services
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /services [get]
func (h *CatalogHandler) Services(c *gin.Context) {
	services, err := h.service.ListServices(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, services)
}

// Professionals godoc
// @Summary List professionals
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /professionals [get]
func (h *CatalogHandler) Professionals(c *gin.Context) {
	professionals, err := h.service.ListProfessionals(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, professionals)
}

// Catalog godoc
// @Summary Services, professionals and featured services in one payload
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /catalog [get]
func (h *CatalogHandler) Catalog(c *gin.Context) {
	catalog, err := h.service.Catalog(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, catalog.CacheHit)
	response.JSON(c, http.StatusOK, catalog, middleware.Meta(c))
}
