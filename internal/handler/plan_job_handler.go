package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-planner-api/internal/dto"
	appErrors "github.com/noah-isme/course-planner-api/pkg/errors"
	"github.com/noah-isme/course-planner-api/pkg/response"
)

type planJobService interface {
	Submit(ctx context.Context, req dto.PlanJobRequest) (*dto.PlanJobResponse, error)
	Get(ctx context.Context, id string) (*dto.PlanJobResponse, error)
}

// PlanJobHandler exposes background planner runs.
type PlanJobHandler struct {
	service planJobService
}

// NewPlanJobHandler constructs the handler.
func NewPlanJobHandler(svc planJobService) *PlanJobHandler {
	return &PlanJobHandler{service: svc}
}

// Submit godoc
// @Summary Queue a manual or auto planner run
// @Tags Planner
// @Accept json
// @Produce json
// @Param payload body dto.PlanJobRequest true "Planner job"
// @Success 202 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /planner/jobs [post]
func (h *PlanJobHandler) Submit(c *gin.Context) {
	var req dto.PlanJobRequest
	if err := bindJSON(c, &req, "invalid planner job payload"); err != nil {
		response.Error(c, err)
		return
	}
	job, err := h.service.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Location", strings.TrimSuffix(c.Request.URL.Path, "/")+"/"+job.ID)
	response.Accepted(c, job)
}

// Get godoc
// @Summary Planner job status and result
// @Tags Planner
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /planner/jobs/{id} [get]
func (h *PlanJobHandler) Get(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "job id is required"))
		return
	}
	job, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}
