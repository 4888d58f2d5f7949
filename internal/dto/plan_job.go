package dto

import "github.com/noah-isme/course-planner-api/internal/models"

// PlanJobRequest queues a planner run. ClientSequence is echoed back so a
// caller can drop responses older than its latest request.
type PlanJobRequest struct {
	Mode           models.PlanMode `json:"mode" validate:"required,oneof=manual auto"`
	ClientSequence int64           `json:"clientSequence" validate:"min=0"`
	Request        AutoPlanRequest `json:"request"`
}

// PlanJobResponse reports a job's state and, once it succeeded, its result.
type PlanJobResponse struct {
	models.PlanJob
	Result *PlanResponse `json:"result,omitempty"`
}
