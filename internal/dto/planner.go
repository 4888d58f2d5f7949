package dto

import (
	"github.com/noah-isme/course-planner-api/internal/planner"
)

// SegmentPayload is one weekly block of a class. Dates accept "YYYY-MM-DD"
// strings or YYYYMMDD numbers.
type SegmentPayload struct {
	StartDate    planner.Date `json:"startDate"`
	EndDate      planner.Date `json:"endDate" validate:"gtefield=StartDate"`
	DayOfWeek    int          `json:"dayOfWeek" validate:"min=0,max=6"`
	StartSession int          `json:"startSession" validate:"min=1,max=16"`
	EndSession   int          `json:"endSession" validate:"min=1,max=16,gtefield=StartSession"`
}

// ClassPayload is one selectable section of a subject.
type ClassPayload struct {
	Code     string           `json:"code" validate:"required,max=64"`
	Teacher  string           `json:"teacher,omitempty" validate:"max=200"`
	Majors   []string         `json:"majors,omitempty" validate:"dive,required"`
	Segments []SegmentPayload `json:"segments" validate:"dive"`
}

// SubjectPayload carries a subject with the caller's display toggle and
// current choice.
type SubjectPayload struct {
	Name              string         `json:"name" validate:"required,max=200"`
	DisplayOnCalendar bool           `json:"displayOnCalendar"`
	SelectedClass     string         `json:"selectedClass,omitempty"`
	Classes           []ClassPayload `json:"classes" validate:"dive"`
}

// MajorPayload groups the subjects offered to one cohort.
type MajorPayload struct {
	Name     string           `json:"name" validate:"required,max=100"`
	Subjects []SubjectPayload `json:"subjects" validate:"dive"`
}

// SubjectSelection overlays display and selection state onto a stored
// catalog. An empty Major applies it to every cohort offering the subject.
type SubjectSelection struct {
	Major             string `json:"major,omitempty"`
	Subject           string `json:"subject" validate:"required"`
	DisplayOnCalendar bool   `json:"displayOnCalendar"`
	SelectedClass     string `json:"selectedClass,omitempty"`
}

// OccupantPayload identifies a class sitting in a grid cell.
type OccupantPayload struct {
	Subject   string `json:"subject"`
	ClassCode string `json:"classCode"`
	Teacher   string `json:"teacher,omitempty"`
}

// GridCell is one occupied (date, session) slot.
type GridCell struct {
	Date     planner.Date      `json:"date"`
	Session  int               `json:"session" validate:"min=1,max=16"`
	Conflict bool              `json:"conflict"`
	Classes  []OccupantPayload `json:"classes" validate:"dive"`
}

// DateWindow bounds the grid's date axis.
type DateWindow struct {
	From planner.Date `json:"from"`
	To   planner.Date `json:"to" validate:"gtefield=From"`
}

// PlanRequest renders the grid for the current selections. Exactly one of
// CatalogID and Majors must be set. Dates default to the span of the
// catalog and sessions to 1..16.
type PlanRequest struct {
	CatalogID  string             `json:"catalogId,omitempty" validate:"omitempty,uuid"`
	Majors     []MajorPayload     `json:"majors,omitempty" validate:"omitempty,dive"`
	Selections []SubjectSelection `json:"selections,omitempty" validate:"omitempty,dive"`
	Dates      *DateWindow        `json:"dates,omitempty"`
	Sessions   []int              `json:"sessions,omitempty" validate:"omitempty,max=16,dive,min=1,max=16"`
	Grid       []GridCell         `json:"grid,omitempty" validate:"omitempty,dive"`
}

// AutoPlanRequest asks the server to pick the classes. CyclicIndex selects
// the k-th best combination, wrapping around the candidate list.
type AutoPlanRequest struct {
	PlanRequest
	Band        string `json:"band,omitempty" validate:"max=40"`
	CyclicIndex int    `json:"cyclicIndex" validate:"min=0"`
}

// AssignmentPayload is the class an auto run chose for a subject and the
// cohorts it was applied to.
type AssignmentPayload struct {
	Subject   string   `json:"subject"`
	ClassCode string   `json:"classCode"`
	Majors    []string `json:"majors"`
}

// PlanResponse is the rendered grid and the updated subject graph.
type PlanResponse struct {
	Mode          string              `json:"mode"`
	Found         bool                `json:"found"`
	IsConflict    bool                `json:"isConflict"`
	ConflictSlots int                 `json:"conflictSlots"`
	Overlap       int                 `json:"overlap"`
	Candidates    int                 `json:"candidates"`
	Index         int                 `json:"index"`
	Band          string              `json:"band,omitempty"`
	Dates         DateWindow          `json:"dates"`
	Sessions      []int               `json:"sessions"`
	Grid          []GridCell          `json:"grid"`
	Majors        []MajorPayload      `json:"majors"`
	Assignment    []AssignmentPayload `json:"assignment,omitempty"`
}
