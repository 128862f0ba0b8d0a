package scheduling

import (
	"fmt"
	"strings"

	"github.com/noah-isme/clinic-scheduler-api/internal/models"
)

// ValidationContext is everything the validator needs to judge a candidate.
// Candidate.ID, when set, excludes that session's stored state from every rule.
type ValidationContext struct {
	Candidate Candidate
	Existing  []models.Schedule
	Therapist *models.Therapist
}

// Validate runs the double-booking, mandatory-break, daily-limit and specialty rules.
// It is a pure function of its inputs.
func Validate(ctx ValidationContext, rules Rules) models.ValidationResult {
	result := models.ValidationResult{
		Errors:   []models.ValidationIssue{},
		Warnings: []models.ValidationIssue{},
	}

	span, err := SessionInterval(ctx.Candidate.Time, ctx.Candidate.Duration)
	if err != nil {
		result.Errors = append(result.Errors, models.ValidationIssue{
			Rule:     "input",
			Severity: models.SeverityError,
			Message:  err.Error(),
		})
		return result
	}

	sameDay := therapistDay(ctx.Candidate, ctx.Existing)

	collect(&result, checkDoubleBooking(span, sameDay))
	collect(&result, checkMandatoryBreak(span, sameDay, rules.BreakMinutes))
	collect(&result, checkDailyLimit(ctx.Candidate.Duration, sameDay, rules))
	collect(&result, checkSpecialty(ctx.Candidate.Activity, ctx.Therapist))

	result.IsValid = true
	for _, issue := range result.Errors {
		if issue.Severity == models.SeverityError {
			result.IsValid = false
			break
		}
	}
	return result
}

type timedSession struct {
	schedule models.Schedule
	span     Interval
}

// therapistDay returns the therapist's other active sessions on the candidate's day.
func therapistDay(candidate Candidate, existing []models.Schedule) []timedSession {
	var out []timedSession
	for _, s := range existing {
		if s.TherapistID != candidate.TherapistID || !competesWith(s, candidate, candidate.ID) {
			continue
		}
		span, err := SessionInterval(s.Time, s.Duration)
		if err != nil {
			continue
		}
		out = append(out, timedSession{schedule: s, span: span})
	}
	return out
}

func checkDoubleBooking(span Interval, sessions []timedSession) []models.ValidationIssue {
	var issues []models.ValidationIssue
	for _, ts := range sessions {
		if !span.Overlaps(ts.span) {
			continue
		}
		issues = append(issues, models.ValidationIssue{
			Rule:       models.RuleDoubleBooking,
			Severity:   models.SeverityError,
			Message:    fmt.Sprintf("therapist already has a session %s-%s", ts.schedule.Time, FormatClock(ts.span.End)),
			ScheduleID: ts.schedule.ID,
		})
	}
	return issues
}

func checkMandatoryBreak(span Interval, sessions []timedSession, breakMinutes int) []models.ValidationIssue {
	var issues []models.ValidationIssue
	for _, ts := range sessions {
		gap := span.GapTo(ts.span)
		if gap <= 0 || gap >= breakMinutes {
			continue
		}
		issues = append(issues, models.ValidationIssue{
			Rule:       models.RuleMandatoryBreak,
			Severity:   models.SeverityError,
			Message:    fmt.Sprintf("only %d minutes between this session and the one at %s; %d required", gap, ts.schedule.Time, breakMinutes),
			ScheduleID: ts.schedule.ID,
		})
	}
	return issues
}

func checkDailyLimit(duration int, sessions []timedSession, rules Rules) []models.ValidationIssue {
	minutes := duration
	for _, ts := range sessions {
		minutes += ts.schedule.Duration
	}
	hours := float64(minutes) / 60
	warnAt := rules.MaxDailyHours * rules.DailyWarningRatio

	switch {
	case hours > rules.MaxDailyHours:
		return []models.ValidationIssue{{
			Rule:     models.RuleDailyLimit,
			Severity: models.SeverityError,
			Message:  fmt.Sprintf("daily total of %.2fh exceeds the %.2fh limit", hours, rules.MaxDailyHours),
		}}
	case hours > warnAt:
		return []models.ValidationIssue{{
			Rule:     models.RuleDailyLimit,
			Severity: models.SeverityWarning,
			Message:  fmt.Sprintf("daily total of %.2fh is approaching the %.2fh limit", hours, rules.MaxDailyHours),
		}}
	}
	return nil
}

func checkSpecialty(activity string, therapist *models.Therapist) []models.ValidationIssue {
	if therapist == nil || strings.TrimSpace(activity) == "" {
		return nil
	}
	if HoldsSpecialty(therapist, activity) {
		return nil
	}
	return []models.ValidationIssue{{
		Rule:     models.RuleSpecialtyMatch,
		Severity: models.SeverityWarning,
		Message:  fmt.Sprintf("%s does not list %q among their specialties", therapist.Name, activity),
	}}
}

// HoldsSpecialty reports whether activity and one of the therapist's specialties contain each other, ignoring case.
func HoldsSpecialty(therapist *models.Therapist, activity string) bool {
	if therapist == nil {
		return false
	}
	for _, specialty := range therapist.Specialties {
		if labelsMatch(activity, specialty) {
			return true
		}
	}
	return false
}

func labelsMatch(a, b string) bool {
	a, b = NormalizeSpecialty(a), NormalizeSpecialty(b)
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// NormalizeSpecialty folds a specialty label for comparison.
func NormalizeSpecialty(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

func collect(result *models.ValidationResult, issues []models.ValidationIssue) {
	for _, issue := range issues {
		if issue.Severity == models.SeverityError {
			result.Errors = append(result.Errors, issue)
		} else {
			result.Warnings = append(result.Warnings, issue)
		}
	}
}
