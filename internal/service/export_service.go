package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/course-planner-api/internal/dto"
	"github.com/noah-isme/course-planner-api/pkg/export"
	appErrors "github.com/noah-isme/course-planner-api/pkg/errors"
)

// ExportFormat names a rendered grid format.
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

var weekdayNames = [...]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type manualPlanner interface {
	Manual(ctx context.Context, req dto.PlanRequest) (*dto.PlanResponse, error)
}

// ExportFile is a rendered grid ready to be sent as an attachment.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders manual plans as CSV or PDF tables of the occupied
// slots.
type ExportService struct {
	planner manualPlanner
	csv     csvRenderer
	pdf     pdfRenderer
	logger  *zap.Logger
}

// NewExportService constructs an ExportService. Nil renderers fall back to
// the pkg/export implementations.
func NewExportService(planner manualPlanner, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{planner: planner, csv: csv, pdf: pdf, logger: logger}
}

// ParseExportFormat accepts csv or pdf, case-insensitively. Empty means csv.
func ParseExportFormat(raw string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(ExportCSV):
		return ExportCSV, nil
	case string(ExportPDF):
		return ExportPDF, nil
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

// Export materializes the request and renders its grid.
func (s *ExportService) Export(ctx context.Context, req dto.PlanRequest, format ExportFormat) (*ExportFile, error) {
	plan, err := s.planner.Manual(ctx, req)
	if err != nil {
		return nil, err
	}
	dataset := gridDataset(plan)
	base := fmt.Sprintf("plan_%s_%s", plan.Dates.From, plan.Dates.To)

	var (
		body        []byte
		contentType string
	)
	switch format {
	case ExportPDF:
		title := fmt.Sprintf("Timetable %s to %s", plan.Dates.From, plan.Dates.To)
		if plan.IsConflict {
			title += fmt.Sprintf(" (%d conflicting slots)", plan.ConflictSlots)
		}
		body, err = s.pdf.Render(dataset, title)
		contentType = "application/pdf"
	default:
		format = ExportCSV
		body, err = s.csv.Render(dataset)
		contentType = "text/csv"
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	s.logger.Debug("plan exported", zap.String("format", string(format)), zap.Int("rows", len(dataset.Rows)), zap.Int("bytes", len(body)))
	return &ExportFile{Filename: base + "." + string(format), ContentType: contentType, Body: body}, nil
}

func gridDataset(plan *dto.PlanResponse) export.Dataset {
	data := export.Dataset{
		Headers: []string{"date", "weekday", "session", "classes", "conflict"},
		Widths:  []float64{1.2, 1.2, 0.8, 5, 0.8},
		Rows:    make([]map[string]string, 0, len(plan.Grid)),
	}
	for _, cell := range plan.Grid {
		names := make([]string, 0, len(cell.Classes))
		for _, oc := range cell.Classes {
			label := oc.Subject + " " + oc.ClassCode
			if oc.Teacher != "" {
				label += " (" + oc.Teacher + ")"
			}
			names = append(names, label)
		}
		conflict := "no"
		if cell.Conflict {
			conflict = "yes"
		}
		data.Rows = append(data.Rows, map[string]string{
			"date":     cell.Date.String(),
			"weekday":  weekdayNames[cell.Date.Weekday()],
			"session":  fmt.Sprintf("%d", cell.Session),
			"classes":  strings.Join(names, "; "),
			"conflict": conflict,
		})
	}
	return data
}
