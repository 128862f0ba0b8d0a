package scheduling

import (
	"math"
	"time"

	"github.com/noah-isme/clinic-scheduler-api/internal/models"
)

// AttributionMode decides which specialties a session's minutes count toward.
type AttributionMode string

const (
	// AttributeTherapistSpecialties credits every specialty the session's therapist holds.
	AttributeTherapistSpecialties AttributionMode = "therapist_specialties"
	// AttributeActivity credits only the specialty named by the session's activity.
	AttributeActivity AttributionMode = "activity"
)

// ComputeCoverage reconciles a child's weekly goals against booked sessions.
// One row is returned per weekly therapy, in declaration order. A nil child yields nil.
func ComputeCoverage(child *models.Child, week time.Time, schedules []models.Schedule, therapists []models.Therapist, mode AttributionMode) []models.TherapyCoverage {
	if child == nil {
		return nil
	}

	byID := make(map[string]*models.Therapist, len(therapists))
	for i := range therapists {
		byID[therapists[i].ID] = &therapists[i]
	}

	minutes := make(map[string]int)
	for _, s := range schedules {
		if s.ChildID != child.ID || !s.Active() || !IsSameWeek(s.Date, week) {
			continue
		}
		for _, specialty := range creditedSpecialties(s, byID[s.TherapistID], child.WeeklyTherapies, mode) {
			minutes[specialty] += s.Duration
		}
	}

	coverage := make([]models.TherapyCoverage, 0, len(child.WeeklyTherapies))
	for _, therapy := range child.WeeklyTherapies {
		hours := roundTo(float64(minutes[NormalizeSpecialty(therapy.Specialty)])/60, 2)
		percentage := coveragePercentage(hours, therapy.HoursRequired)
		coverage = append(coverage, models.TherapyCoverage{
			Specialty:      therapy.Specialty,
			HoursRequired:  therapy.HoursRequired,
			HoursScheduled: hours,
			Percentage:     percentage,
			Status:         classifyCoverage(percentage),
		})
	}
	return coverage
}

func creditedSpecialties(s models.Schedule, therapist *models.Therapist, goals []models.WeeklyTherapy, mode AttributionMode) []string {
	if mode == AttributeActivity {
		if goal := matchGoal(s.Activity, goals); goal != "" {
			return []string{goal}
		}
		return nil
	}
	if therapist == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(therapist.Specialties))
	out := make([]string, 0, len(therapist.Specialties))
	for _, specialty := range therapist.Specialties {
		key := NormalizeSpecialty(specialty)
		if _, ok := seen[key]; ok || key == "" {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}

// matchGoal finds the goal an activity label refers to, preferring an exact match.
func matchGoal(activity string, goals []models.WeeklyTherapy) string {
	label := NormalizeSpecialty(activity)
	for _, goal := range goals {
		if NormalizeSpecialty(goal.Specialty) == label {
			return label
		}
	}
	for _, goal := range goals {
		if labelsMatch(activity, goal.Specialty) {
			return NormalizeSpecialty(goal.Specialty)
		}
	}
	return ""
}

func coveragePercentage(scheduled, required float64) int {
	if required <= 0 {
		return 100
	}
	return int(math.Min(100, math.Round(scheduled/required*100)))
}

func classifyCoverage(percentage int) models.CoverageStatus {
	switch {
	case percentage >= 100:
		return models.CoverageComplete
	case percentage == 0:
		return models.CoverageMissing
	default:
		return models.CoveragePartial
	}
}
