package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/noah-isme/clinic-scheduler-api/internal/models"
	"github.com/noah-isme/clinic-scheduler-api/internal/scheduling"
)

var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorDim    = lipgloss.Color("#928374")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
)

// WorkloadStyle colours a workload status.
func WorkloadStyle(status models.WorkloadStatus) lipgloss.Style {
	switch status {
	case models.WorkloadOverloaded:
		return StyleRed
	case models.WorkloadNearLimit:
		return StyleYellow
	default:
		return StyleGreen
	}
}

// CoverageStyle colours a coverage status.
func CoverageStyle(status models.CoverageStatus) lipgloss.Style {
	switch status {
	case models.CoverageMissing:
		return StyleRed
	case models.CoveragePartial:
		return StyleYellow
	default:
		return StyleGreen
	}
}

// FormatWorkloads renders one row per therapist.
func FormatWorkloads(week string, workloads []models.TherapistWorkload) string {
	if len(workloads) == 0 {
		return StyleDim.Render("No therapists for week of "+week) + "\n"
	}
	rows := make([][]string, 0, len(workloads))
	for _, w := range workloads {
		rows = append(rows, []string{
			w.TherapistName,
			fmt.Sprintf("%d", w.SessionCount),
			hours(w.HoursScheduled),
			hours(w.MaxHours),
			fmt.Sprintf("%d%%", w.Percentage),
			WorkloadStyle(w.Status).Render(string(w.Status)),
		})
	}
	return "Workload for week of " + week + "\n\n" +
		RenderTable([]string{"THERAPIST", "SESSIONS", "HOURS", "MAX", "LOAD", "STATUS"}, rows)
}

// FormatCoverage renders one row per child and specialty.
func FormatCoverage(week string, coverage []models.ChildCoverage) string {
	rows := make([][]string, 0)
	for _, child := range coverage {
		for _, therapy := range child.Therapies {
			rows = append(rows, []string{
				child.ChildName,
				therapy.Specialty,
				hours(therapy.HoursRequired),
				hours(therapy.HoursScheduled),
				fmt.Sprintf("%d%%", therapy.Percentage),
				CoverageStyle(therapy.Status).Render(string(therapy.Status)),
			})
		}
	}
	if len(rows) == 0 {
		return StyleDim.Render("No therapy goals for week of "+week) + "\n"
	}
	return "Coverage for week of " + week + "\n\n" +
		RenderTable([]string{"CHILD", "SPECIALTY", "REQUIRED", "BOOKED", "COVERED", "STATUS"}, rows)
}

// FormatValidation renders the verdict of a candidate check with its findings.
func FormatValidation(result models.ValidationResult, conflicts []models.Conflict) string {
	var b strings.Builder
	if result.IsValid {
		b.WriteString(StyleGreen.Render("VALID"))
	} else {
		b.WriteString(StyleRed.Render("REJECTED"))
	}
	b.WriteString("\n")
	for _, issue := range result.Errors {
		fmt.Fprintf(&b, "  %s %s: %s\n", StyleRed.Render("error"), issue.Rule, issue.Message)
	}
	for _, issue := range result.Warnings {
		fmt.Fprintf(&b, "  %s %s: %s\n", StyleYellow.Render("warning"), issue.Rule, issue.Message)
	}
	for _, c := range conflicts {
		fmt.Fprintf(&b, "  %s %s with %s on %s at %s\n",
			StyleDim.Render("conflict"), c.Type, c.ScheduleID, scheduling.FormatDate(c.Date), c.Time)
	}
	return b.String()
}

func hours(v float64) string {
	return fmt.Sprintf("%.2fh", v)
}
