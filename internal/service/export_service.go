package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/prepdeck/study-planner-api/internal/models"
	appErrors "github.com/prepdeck/study-planner-api/pkg/errors"
	"github.com/prepdeck/study-planner-api/pkg/export"
)

type exportPlanRepo interface {
	FindByID(ctx context.Context, studentID, id string) (*models.StudyPlan, error)
}

type exportSessionRepo interface {
	List(ctx context.Context, studentID string, filter models.SessionFilter) ([]models.StudySession, int, error)
}

// ExportService renders a completed plan's session schedule as CSV or PDF.
type ExportService struct {
	plans    exportPlanRepo
	sessions exportSessionRepo
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	enabled  bool
	logger   *zap.Logger
}

// ExportServiceParams configures construction.
type ExportServiceParams struct {
	Plans    exportPlanRepo
	Sessions exportSessionRepo
	Enabled  bool
	Logger   *zap.Logger
}

// NewExportService constructs the exporter.
func NewExportService(params ExportServiceParams) *ExportService {
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	return &ExportService{
		plans:    params.Plans,
		sessions: params.Sessions,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		enabled:  params.Enabled,
		logger:   params.Logger,
	}
}

// ExportPlan renders the plan's schedule in the requested format. Supported
// formats are "csv" and "pdf".
func (s *ExportService) ExportPlan(ctx context.Context, studentID, planID, format string) ([]byte, string, error) {
	if !s.enabled {
		return nil, "", appErrors.Clone(appErrors.ErrForbidden, "exports are disabled")
	}

	plan, err := s.plans.FindByID(ctx, studentID, planID)
	if err != nil {
		return nil, "", err
	}
	if plan.Status != models.PlanStatusComplete {
		return nil, "", appErrors.Clone(appErrors.ErrPlanState, "only completed plans can be exported")
	}

	sessions, _, err := s.sessions.List(ctx, studentID, models.SessionFilter{PlanID: planID, PageSize: 500})
	if err != nil {
		return nil, "", err
	}

	schedule := export.Schedule{
		Title:   fmt.Sprintf("Study plan %s", plan.ID),
		Summary: plan.Summary,
		Rows:    make([]export.ScheduleRow, 0, len(sessions)),
	}
	for _, session := range sessions {
		schedule.Rows = append(schedule.Rows, export.ScheduleRow{
			Date:       session.ScheduledDate.Format("2006-01-02"),
			TimeOfDay:  string(session.TimeOfDay),
			Topic:      session.Topic,
			Difficulty: string(session.Difficulty),
			Duration:   fmt.Sprintf("%d", session.DurationMinutes),
			Status:     string(session.Status),
		})
	}

	switch format {
	case "csv", "":
		payload, err := s.csv.Render(schedule)
		return payload, "text/csv", err
	case "pdf":
		payload, err := s.pdf.Render(schedule)
		return payload, "application/pdf", err
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}
