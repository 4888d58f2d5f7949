package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-planner-api/internal/dto"
	"github.com/noah-isme/course-planner-api/internal/service"
	appErrors "github.com/noah-isme/course-planner-api/pkg/errors"
	"github.com/noah-isme/course-planner-api/pkg/response"
)

type plannerService interface {
	Manual(ctx context.Context, req dto.PlanRequest) (*dto.PlanResponse, error)
	Auto(ctx context.Context, req dto.AutoPlanRequest) (*dto.PlanResponse, bool, error)
}

type gridExporter interface {
	Export(ctx context.Context, req dto.PlanRequest, format service.ExportFormat) (*service.ExportFile, error)
}

// PlannerHandler exposes the calendar and auto scheduling endpoints.
type PlannerHandler struct {
	service  plannerService
	exporter gridExporter
}

// NewPlannerHandler constructs the handler.
func NewPlannerHandler(svc plannerService, exporter gridExporter) *PlannerHandler {
	return &PlannerHandler{service: svc, exporter: exporter}
}

// Calendar godoc
// @Summary Render the timetable for the current selections
// @Tags Planner
// @Accept json
// @Produce json
// @Param payload body dto.PlanRequest true "Subject graph or catalog reference"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /planner/calendar [post]
func (h *PlannerHandler) Calendar(c *gin.Context) {
	var req dto.PlanRequest
	if err := bindJSON(c, &req, "invalid plan payload"); err != nil {
		response.Error(c, err)
		return
	}
	start := time.Now()
	plan, err := h.service.Manual(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plan, nil, withProcessingMeta(c, false, start))
}

// Auto godoc
// @Summary Pick the least conflicting class per displayed subject
// @Description Results are deterministic for a given request; cyclicIndex walks the ranked candidates.
// @Tags Planner
// @Accept json
// @Produce json
// @Param payload body dto.AutoPlanRequest true "Auto plan request"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 504 {object} response.Envelope
// @Router /planner/auto [post]
func (h *PlannerHandler) Auto(c *gin.Context) {
	var req dto.AutoPlanRequest
	if err := bindJSON(c, &req, "invalid auto plan payload"); err != nil {
		response.Error(c, err)
		return
	}
	start := time.Now()
	plan, cacheHit, err := h.service.Auto(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plan, nil, withProcessingMeta(c, cacheHit, start))
}

// Export godoc
// @Summary Download the rendered timetable
// @Tags Planner
// @Accept json
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Param payload body dto.PlanRequest true "Subject graph or catalog reference"
// @Success 200 {file} file
// @Router /planner/export [post]
func (h *PlannerHandler) Export(c *gin.Context) {
	if h.exporter == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrUnavailable, "export is not configured"))
		return
	}
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.PlanRequest
	if err := bindJSON(c, &req, "invalid plan payload"); err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.exporter.Export(c.Request.Context(), req, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
