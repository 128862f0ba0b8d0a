package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/clinic-scheduler-api/internal/models"
)

func rulesOf(result models.ValidationResult) []string {
	var out []string
	for _, issue := range append(append([]models.ValidationIssue{}, result.Errors...), result.Warnings...) {
		out = append(out, issue.Rule)
	}
	return out
}

func TestValidateDoubleBooking(t *testing.T) {
	ctx := ValidationContext{
		Candidate: Candidate{TherapistID: "t1", ChildID: "c2", Date: monday, Time: "09:30", Duration: 30, Activity: "Fonoaudiologia"},
		Existing:  []models.Schedule{session("s1", "t1", "c1", monday, "09:00", 60)},
		Therapist: therapist("t1", 20, "Fonoaudiologia"),
	}

	result := Validate(ctx, DefaultRules())
	assert.False(t, result.IsValid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, models.RuleDoubleBooking, result.Errors[0].Rule)
	assert.Equal(t, "s1", result.Errors[0].ScheduleID)
}

func TestValidateMandatoryBreak(t *testing.T) {
	existing := []models.Schedule{session("s1", "t1", "c1", monday, "09:00", 60)}
	th := therapist("t1", 20, "Fonoaudiologia")

	tight := Validate(ValidationContext{
		Candidate: Candidate{TherapistID: "t1", ChildID: "c2", Date: monday, Time: "10:05", Duration: 55, Activity: "Fonoaudiologia"},
		Existing:  existing,
		Therapist: th,
	}, DefaultRules())
	assert.False(t, tight.IsValid)
	assert.Equal(t, []string{models.RuleMandatoryBreak}, rulesOf(tight))

	before := Validate(ValidationContext{
		Candidate: Candidate{TherapistID: "t1", ChildID: "c2", Date: monday, Time: "07:55", Duration: 60, Activity: "Fonoaudiologia"},
		Existing:  existing,
		Therapist: th,
	}, DefaultRules())
	assert.Equal(t, []string{models.RuleMandatoryBreak}, rulesOf(before))

	relaxed := Validate(ValidationContext{
		Candidate: Candidate{TherapistID: "t1", ChildID: "c2", Date: monday, Time: "10:20", Duration: 40, Activity: "Fonoaudiologia"},
		Existing:  existing,
		Therapist: th,
	}, DefaultRules())
	assert.True(t, relaxed.IsValid)
	assert.Empty(t, relaxed.Errors)
}

func TestValidateBackToBackIsNotABreakViolation(t *testing.T) {
	result := Validate(ValidationContext{
		Candidate: Candidate{TherapistID: "t1", Date: monday, Time: "10:00", Duration: 60},
		Existing:  []models.Schedule{session("s1", "t1", "c1", monday, "09:00", 60)},
	}, DefaultRules())
	assert.True(t, result.IsValid)
}

func TestValidateDailyLimit(t *testing.T) {
	existing := []models.Schedule{
		session("s1", "t1", "c1", monday, "07:00", 180),
		session("s2", "t1", "c2", monday, "10:30", 180),
	}
	th := therapist("t1", 40, "Fonoaudiologia")

	warn := Validate(ValidationContext{
		Candidate: Candidate{TherapistID: "t1", ChildID: "c3", Date: monday, Time: "14:00", Duration: 60, Activity: "Fonoaudiologia"},
		Existing:  existing,
		Therapist: th,
	}, DefaultRules())
	assert.True(t, warn.IsValid)
	require.Len(t, warn.Warnings, 1)
	assert.Equal(t, models.RuleDailyLimit, warn.Warnings[0].Rule)
	assert.Equal(t, models.SeverityWarning, warn.Warnings[0].Severity)

	existing = append(existing, session("s3", "t1", "c3", monday, "14:00", 120))
	over := Validate(ValidationContext{
		Candidate: Candidate{TherapistID: "t1", ChildID: "c4", Date: monday, Time: "16:30", Duration: 60, Activity: "Fonoaudiologia"},
		Existing:  existing,
		Therapist: th,
	}, DefaultRules())
	assert.False(t, over.IsValid)
	assert.Equal(t, []string{models.RuleDailyLimit}, rulesOf(over))
}

func TestValidateExcludesCandidatePriorState(t *testing.T) {
	existing := []models.Schedule{session("s1", "t1", "c1", monday, "09:00", 60)}
	result := Validate(ValidationContext{
		Candidate: Candidate{ID: "s1", TherapistID: "t1", ChildID: "c1", Date: monday, Time: "09:30", Duration: 60},
		Existing:  existing,
	}, DefaultRules())
	assert.True(t, result.IsValid)
}

func TestValidateSpecialtyMismatchIsOnlyAWarning(t *testing.T) {
	th := therapist("t1", 20, "Fonoaudiologia")

	match := Validate(ValidationContext{
		Candidate: Candidate{TherapistID: "t1", Date: monday, Time: "09:00", Duration: 60, Activity: "fonoaudiologia infantil"},
		Therapist: th,
	}, DefaultRules())
	assert.Empty(t, match.Warnings)

	mismatch := Validate(ValidationContext{
		Candidate: Candidate{TherapistID: "t1", Date: monday, Time: "09:00", Duration: 60, Activity: "Psicologia"},
		Therapist: th,
	}, DefaultRules())
	assert.True(t, mismatch.IsValid)
	require.Len(t, mismatch.Warnings, 1)
	assert.Equal(t, models.RuleSpecialtyMatch, mismatch.Warnings[0].Rule)
}

func TestValidateIsIdempotent(t *testing.T) {
	existing := []models.Schedule{
		session("s1", "t1", "c1", monday, "09:00", 60),
		session("s2", "t1", "c2", monday, "10:05", 60),
	}
	ctx := ValidationContext{
		Candidate: Candidate{TherapistID: "t1", ChildID: "c3", Date: monday, Time: "09:30", Duration: 45, Activity: "Psicologia"},
		Existing:  existing,
		Therapist: therapist("t1", 20, "Fonoaudiologia"),
	}
	snapshot := append([]models.Schedule{}, existing...)

	first := Validate(ctx, DefaultRules())
	second := Validate(ctx, DefaultRules())
	assert.Equal(t, first, second)
	assert.Equal(t, snapshot, existing)
}

func TestValidateMalformedInput(t *testing.T) {
	result := Validate(ValidationContext{Candidate: Candidate{TherapistID: "t1", Date: monday, Time: "25:00", Duration: 60}}, DefaultRules())
	assert.False(t, result.IsValid)
	require.Len(t, result.Errors, 1)
}
