package models

import (
	"time"

	"github.com/noah-isme/course-planner-api/internal/planner"
)

// Catalog is one imported semester offering.
type Catalog struct {
	ID        string       `db:"id" json:"id"`
	Title     string       `db:"title" json:"title"`
	MinDate   planner.Date `db:"min_date" json:"minDate"`
	MaxDate   planner.Date `db:"max_date" json:"maxDate"`
	CreatedBy string       `db:"created_by" json:"createdBy"`
	CreatedAt time.Time    `db:"created_at" json:"createdAt"`
}

// CatalogSummary is a catalog row with its entry counts.
type CatalogSummary struct {
	Catalog
	Majors   int `db:"majors" json:"majors"`
	Subjects int `db:"subjects" json:"subjects"`
	Classes  int `db:"classes" json:"classes"`
}

// CatalogEntry places one class option under a cohort and subject. Position
// keeps the import order.
type CatalogEntry struct {
	ID        string `db:"id"`
	CatalogID string `db:"catalog_id"`
	Position  int    `db:"position"`
	Major     string `db:"major"`
	Subject   string `db:"subject"`
	ClassCode string `db:"class_code"`
	Teacher   string `db:"teacher"`
}

// CatalogSegment is one weekly block of a class. Segments belong to the
// (subject, class code) pair and are shared by every cohort offering it.
type CatalogSegment struct {
	ID           string       `db:"id"`
	CatalogID    string       `db:"catalog_id"`
	Subject      string       `db:"subject"`
	ClassCode    string       `db:"class_code"`
	Position     int          `db:"position"`
	StartDate    planner.Date `db:"start_date"`
	EndDate      planner.Date `db:"end_date"`
	Weekday      int          `db:"weekday"`
	StartSession int          `db:"start_session"`
	EndSession   int          `db:"end_session"`
}
