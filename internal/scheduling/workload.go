package scheduling

import (
	"fmt"
	"math"
	"time"

	"github.com/noah-isme/clinic-scheduler-api/internal/models"
)

// ComputeWorkload derives a therapist's load for the week containing week.
// Every active session costs its duration plus one break; the final break of the week is not charged.
// It returns nil when therapist is nil.
func ComputeWorkload(therapist *models.Therapist, week time.Time, schedules []models.Schedule, rules Rules) *models.TherapistWorkload {
	if therapist == nil {
		return nil
	}
	start, end := WeekRange(week)

	var total, sessions int
	for _, s := range schedules {
		if s.TherapistID != therapist.ID || !s.Active() || !IsSameWeek(s.Date, week) {
			continue
		}
		total += s.Duration + rules.BreakMinutes
		sessions++
	}
	adjusted := total - rules.BreakMinutes
	if adjusted < 0 {
		adjusted = 0
	}

	hours := roundTo(float64(adjusted)/60, 2)
	percentage := 0
	if therapist.WeeklyWorkloadHours > 0 {
		percentage = int(math.Round(hours / therapist.WeeklyWorkloadHours * 100))
	}

	status := classifyWorkload(percentage, rules)
	remaining := math.Max(0, roundTo(therapist.WeeklyWorkloadHours-hours, 2))

	return &models.TherapistWorkload{
		TherapistID:      therapist.ID,
		TherapistName:    therapist.Name,
		WeekStart:        start,
		WeekEnd:          end,
		SessionCount:     sessions,
		HoursScheduled:   hours,
		MaxHours:         therapist.WeeklyWorkloadHours,
		Percentage:       percentage,
		Status:           status,
		RemainingHours:   remaining,
		SuggestedActions: suggestActions(status, hours, therapist.WeeklyWorkloadHours, remaining),
	}
}

func classifyWorkload(percentage int, rules Rules) models.WorkloadStatus {
	switch {
	case percentage >= rules.OverloadPercent:
		return models.WorkloadOverloaded
	case percentage >= rules.NearLimitPercent:
		return models.WorkloadNearLimit
	default:
		return models.WorkloadAvailable
	}
}

func suggestActions(status models.WorkloadStatus, hours, maxHours, remaining float64) []string {
	switch status {
	case models.WorkloadOverloaded:
		actions := []string{
			"Do not book new sessions for this therapist this week",
			"Move sessions to a therapist with spare capacity",
		}
		if excess := roundTo(hours-maxHours, 2); excess > 0 {
			actions = append(actions, fmt.Sprintf("Reduce %.2fh to return within capacity", excess))
		}
		return actions
	case models.WorkloadNearLimit:
		return []string{
			fmt.Sprintf("Only %.2fh of capacity left this week", remaining),
			"Prefer short sessions for any remaining bookings",
		}
	default:
		actions := []string{fmt.Sprintf("%.2fh available for new sessions", remaining)}
		if remaining >= 4 {
			actions = append(actions, "Can take on a new patient this week")
		}
		return actions
	}
}

func roundTo(value float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	return math.Round(value*factor) / factor
}
