package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-planner-api/internal/dto"
	"github.com/noah-isme/course-planner-api/internal/middleware"
	"github.com/noah-isme/course-planner-api/internal/models"
	appErrors "github.com/noah-isme/course-planner-api/pkg/errors"
	"github.com/noah-isme/course-planner-api/pkg/response"
)

type catalogService interface {
	Import(ctx context.Context, req dto.CatalogImportRequest, actorID string) (*dto.CatalogDetailResponse, error)
	List(ctx context.Context, query dto.CatalogQuery) ([]dto.CatalogSummaryResponse, *models.Pagination, error)
	Get(ctx context.Context, id string) (*dto.CatalogDetailResponse, error)
	Delete(ctx context.Context, id string) error
}

// CatalogHandler exposes stored semester catalogs.
type CatalogHandler struct {
	service catalogService
}

// NewCatalogHandler constructs the handler.
func NewCatalogHandler(svc catalogService) *CatalogHandler {
	return &CatalogHandler{service: svc}
}

// Import godoc
// @Summary Import a catalog produced by the spreadsheet ETL
// @Tags Catalogs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CatalogImportRequest true "ETL output"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /catalogs [post]
func (h *CatalogHandler) Import(c *gin.Context) {
	claims := middleware.CurrentClaims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.CatalogImportRequest
	if err := bindJSON(c, &req, "invalid catalog payload"); err != nil {
		response.Error(c, err)
		return
	}
	catalog, err := h.service.Import(c.Request.Context(), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, catalog)
}

// List godoc
// @Summary List stored catalogs
// @Tags Catalogs
// @Produce json
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /catalogs [get]
func (h *CatalogHandler) List(c *gin.Context) {
	var query dto.CatalogQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}
	items, pagination, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Catalog with its subject graph
// @Tags Catalogs
// @Produce json
// @Param id path string true "Catalog ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /catalogs/{id} [get]
func (h *CatalogHandler) Get(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	catalog, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, catalog, nil)
}

// Delete godoc
// @Summary Delete a catalog
// @Tags Catalogs
// @Security BearerAuth
// @Param id path string true "Catalog ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /catalogs/{id} [delete]
func (h *CatalogHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
