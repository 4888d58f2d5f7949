package models

import "time"

// PlanJobStatus captures the background planner job lifecycle.
type PlanJobStatus string

const (
	PlanJobQueued    PlanJobStatus = "QUEUED"
	PlanJobRunning   PlanJobStatus = "RUNNING"
	PlanJobSucceeded PlanJobStatus = "SUCCEEDED"
	PlanJobFailed    PlanJobStatus = "FAILED"
)

// Done reports whether the status is terminal.
func (s PlanJobStatus) Done() bool {
	return s == PlanJobSucceeded || s == PlanJobFailed
}

// PlanMode selects manual rendering or auto scheduling.
type PlanMode string

const (
	PlanModeManual PlanMode = "manual"
	PlanModeAuto   PlanMode = "auto"
)

// PlanJob is the bookkeeping record of a queued planner run.
type PlanJob struct {
	ID             string        `json:"jobId"`
	Sequence       uint64        `json:"sequence"`
	ClientSequence int64         `json:"clientSequence"`
	Mode           PlanMode      `json:"mode"`
	Status         PlanJobStatus `json:"status"`
	Attempts       int           `json:"attempts"`
	Error          string        `json:"error,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
	StartedAt      *time.Time    `json:"startedAt,omitempty"`
	FinishedAt     *time.Time    `json:"finishedAt,omitempty"`
}
