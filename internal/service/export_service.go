package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/clinic-scheduler-api/internal/dto"
	"github.com/noah-isme/clinic-scheduler-api/internal/models"
	"github.com/noah-isme/clinic-scheduler-api/internal/scheduling"
	appErrors "github.com/noah-isme/clinic-scheduler-api/pkg/errors"
	"github.com/noah-isme/clinic-scheduler-api/pkg/export"
)

// Report kinds.
const (
	ReportWorkload = "workload"
	ReportCoverage = "coverage"
	ReportHistory  = "history"
)

type weeklyAnalytics interface {
	ListWorkloads(ctx context.Context, week time.Time) ([]models.TherapistWorkload, error)
	ListCoverage(ctx context.Context, week time.Time) ([]models.ChildCoverage, error)
}

type historyLister interface {
	AllHistory(ctx context.Context) ([]models.ScheduleHistory, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
}

type renderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExportService renders weekly reports and optionally persists them.
type ExportService struct {
	analytics weeklyAnalytics
	history   historyLister
	storage   fileStorage
	csv       renderer
	pdf       renderer
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService constructs an ExportService. storage may be nil when reports are only streamed.
func NewExportService(analytics weeklyAnalytics, history historyLister, storage fileStorage, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		analytics: analytics,
		history:   history,
		storage:   storage,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Generate renders the report of kind for the week containing week.
func (s *ExportService) Generate(ctx context.Context, kind string, week time.Time, format string) (*dto.ReportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = export.FormatCSV
	}
	var r renderer
	switch format {
	case export.FormatCSV:
		r = s.csv
	case export.FormatPDF:
		r = s.pdf
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported format "+format)
	}

	var (
		dataset export.Dataset
		err     error
	)
	switch kind {
	case ReportWorkload:
		dataset, err = s.workloadDataset(ctx, week)
	case ReportCoverage:
		dataset, err = s.coverageDataset(ctx, week)
	case ReportHistory:
		dataset, err = s.historyDataset(ctx, week)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported report "+kind)
	}
	if err != nil {
		return nil, err
	}

	payload, err := r.Render(dataset)
	if err != nil {
		return nil, internalError(err, "failed to render report")
	}
	filename := fmt.Sprintf("%s_%s_%s.%s", kind, scheduling.FormatDate(scheduling.WeekStart(week)), s.now().Format("20060102_150405"), format)
	s.logger.Info("report rendered", zap.String("report", kind), zap.String("format", format), zap.Int("rows", len(dataset.Rows)))
	return &dto.ReportFile{Filename: filename, ContentType: export.ContentType(format), Payload: payload}, nil
}

// Store writes a rendered report to the configured storage and returns where it landed.
func (s *ExportService) Store(file *dto.ReportFile) (string, error) {
	if s.storage == nil {
		return "", appErrors.Clone(appErrors.ErrInternal, "report storage not configured")
	}
	path, err := s.storage.Save(file.Filename, file.Payload)
	if err != nil {
		return "", internalError(err, "failed to store report")
	}
	return path, nil
}

func (s *ExportService) workloadDataset(ctx context.Context, week time.Time) (export.Dataset, error) {
	workloads, err := s.analytics.ListWorkloads(ctx, week)
	if err != nil {
		return export.Dataset{}, err
	}
	data := export.Dataset{
		Title:   "Therapist workload, week of " + scheduling.FormatDate(scheduling.WeekStart(week)),
		Headers: []string{"Therapist", "Sessions", "Hours", "Max Hours", "Percentage", "Status"},
	}
	for _, w := range workloads {
		data.Rows = append(data.Rows, map[string]string{
			"Therapist":  w.TherapistName,
			"Sessions":   strconv.Itoa(w.SessionCount),
			"Hours":      formatHours(w.HoursScheduled),
			"Max Hours":  formatHours(w.MaxHours),
			"Percentage": strconv.Itoa(w.Percentage) + "%",
			"Status":     string(w.Status),
		})
	}
	return data, nil
}

func (s *ExportService) coverageDataset(ctx context.Context, week time.Time) (export.Dataset, error) {
	coverage, err := s.analytics.ListCoverage(ctx, week)
	if err != nil {
		return export.Dataset{}, err
	}
	data := export.Dataset{
		Title:   "Therapy coverage, week of " + scheduling.FormatDate(scheduling.WeekStart(week)),
		Headers: []string{"Child", "Specialty", "Required", "Scheduled", "Percentage", "Status"},
	}
	for _, child := range coverage {
		for _, therapy := range child.Therapies {
			data.Rows = append(data.Rows, map[string]string{
				"Child":      child.ChildName,
				"Specialty":  therapy.Specialty,
				"Required":   formatHours(therapy.HoursRequired),
				"Scheduled":  formatHours(therapy.HoursScheduled),
				"Percentage": strconv.Itoa(therapy.Percentage) + "%",
				"Status":     string(therapy.Status),
			})
		}
	}
	return data, nil
}

// historyDataset lists ledger entries recorded during the week, newest first.
func (s *ExportService) historyDataset(ctx context.Context, week time.Time) (export.Dataset, error) {
	entries, err := s.history.AllHistory(ctx)
	if err != nil {
		return export.Dataset{}, internalError(err, "failed to load history")
	}
	data := export.Dataset{
		Title:   "Schedule changes, week of " + scheduling.FormatDate(scheduling.WeekStart(week)),
		Headers: []string{"Changed At", "Schedule", "Change", "Fields", "By", "Reason"},
	}
	for _, entry := range entries {
		if !scheduling.IsSameWeek(entry.ChangedAt, week) {
			continue
		}
		data.Rows = append(data.Rows, map[string]string{
			"Changed At": entry.ChangedAt.UTC().Format(time.RFC3339),
			"Schedule":   entry.ScheduleID,
			"Change":     string(entry.ChangeType),
			"Fields":     strings.Join(entry.ChangedFields, ", "),
			"By":         entry.ChangedBy,
			"Reason":     entry.Reason,
		})
	}
	return data, nil
}

func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', 2, 64)
}
