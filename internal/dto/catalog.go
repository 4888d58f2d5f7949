package dto

import (
	"time"

	"github.com/noah-isme/course-planner-api/internal/planner"
)

// ImportSchedule is one weekly block as emitted by the spreadsheet ETL.
// Dates are YYYYMMDD integers and dayOfWeekStandard counts from Sunday = 0.
type ImportSchedule struct {
	StartDate         planner.Date `json:"startDate"`
	EndDate           planner.Date `json:"endDate"`
	DayOfWeekStandard int          `json:"dayOfWeekStandard"`
	StartSession      int          `json:"startSession"`
	EndSession        int          `json:"endSession"`
}

// ImportClass is a class code's data in the ETL output.
type ImportClass struct {
	Teacher   string           `json:"teacher"`
	Schedules []ImportSchedule `json:"schedules"`
}

// CatalogImportRequest is the ETL JSON document:
// majors -> subject -> class code -> class.
type CatalogImportRequest struct {
	Title   string                                       `json:"title" validate:"required,max=200"`
	MinDate planner.Date                                 `json:"minDate"`
	MaxDate planner.Date                                 `json:"maxDate" validate:"gtefield=MinDate"`
	Majors  map[string]map[string]map[string]ImportClass `json:"majors" validate:"required,min=1"`
}

// CatalogQuery pages through stored catalogs.
type CatalogQuery struct {
	Page     int `form:"page" validate:"omitempty,min=1"`
	PageSize int `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

// CatalogSummaryResponse describes a stored catalog.
type CatalogSummaryResponse struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	MinDate   planner.Date `json:"minDate"`
	MaxDate   planner.Date `json:"maxDate"`
	Majors    int          `json:"majors"`
	Subjects  int          `json:"subjects"`
	Classes   int          `json:"classes"`
	CreatedBy string       `json:"createdBy,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
}

// CatalogDetailResponse is a catalog with its full subject graph.
type CatalogDetailResponse struct {
	CatalogSummaryResponse
	Graph []MajorPayload `json:"graph"`
}
