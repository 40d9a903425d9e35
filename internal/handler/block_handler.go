package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/shop-booking-api/internal/dto"
	"github.com/noah-isme/shop-booking-api/internal/models"
	appErrors "github.com/noah-isme/shop-booking-api/pkg/errors"
	"github.com/noah-isme/shop-booking-api/pkg/response"
)

type blockService interface {
	Create(ctx context.Context, req dto.CreateBlockRequest) (*models.Block, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, query dto.BlockQuery) ([]models.Block, error)
}

// BlockHandler manages blocked time.
type BlockHandler struct {
	service blockService
}

// NewBlockHandler constructs the handler.
func NewBlockHandler(service blockService) *BlockHandler {
	return &BlockHandler{service: service}
}

// List godoc
// @Summary List blocks touching a date
// @Tags Blocks
// @Produce json
// @Param date query string true "Venue date (YYYY-MM-DD)"
// @Param professional_id query string false "Narrow particular blocks to one professional"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /blocks [get]
func (h *BlockHandler) List(c *gin.Context) {
	var query dto.BlockQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid query parameters"))
		return
	}
	blocks, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, blocks)
}

// Create godoc
// @Summary Block time
// @Description General blocks (admins only) close the venue; particular blocks close one professional.
// @Tags Blocks
// @Accept json
// @Produce json
// @Param payload body dto.CreateBlockRequest true "Block payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /blocks [post]
func (h *BlockHandler) Create(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req dto.CreateBlockRequest
	if !bindJSON(c, &req, "invalid block payload") {
		return
	}
	if claims.Role != models.RoleAdmin {
		if req.IsGeneral || req.ProfessionalID == nil || !claims.CanManageProfessional(*req.ProfessionalID) {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "professionals may only block their own time"))
			return
		}
	}
	block, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, block)
}

// Delete godoc
// @Summary Remove a block
// @Tags Blocks
// @Param id path string true "Block ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /blocks/{id} [delete]
func (h *BlockHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
