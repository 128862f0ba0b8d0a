package models

import (
	"fmt"
	"time"
)

// Severity grades a scheduling finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// ConflictType names which resource two sessions compete for.
type ConflictType string

const (
	ConflictTherapistOverlap ConflictType = "therapist_overlap"
	ConflictChildOverlap     ConflictType = "child_overlap"
)

// Conflict describes an existing session overlapping a candidate.
type Conflict struct {
	Type        ConflictType `json:"type"`
	Severity    Severity     `json:"severity"`
	ScheduleID  string       `json:"schedule_id"`
	TherapistID string       `json:"therapist_id"`
	ChildID     string       `json:"child_id"`
	Date        time.Time    `json:"date"`
	Time        string       `json:"time"`
	Duration    int          `json:"duration"`
	Message     string       `json:"message"`
}

// Validation rule identifiers.
const (
	RuleDoubleBooking  = "double_booking"
	RuleMandatoryBreak = "mandatory_break"
	RuleDailyLimit     = "daily_limit"
	RuleSpecialtyMatch = "specialty_match"
	RuleChildOverlap   = "child_overlap"
)

// ValidationIssue is one finding of a validation rule.
type ValidationIssue struct {
	Rule       string   `json:"rule"`
	Severity   Severity `json:"severity"`
	Message    string   `json:"message"`
	ScheduleID string   `json:"schedule_id,omitempty"`
}

// ValidationResult aggregates the findings of every rule.
type ValidationResult struct {
	IsValid  bool              `json:"is_valid"`
	Errors   []ValidationIssue `json:"errors"`
	Warnings []ValidationIssue `json:"warnings"`
}

// ScheduleValidationError is returned when a gated mutation breaks a blocking rule.
type ScheduleValidationError struct {
	Result    ValidationResult `json:"result"`
	Conflicts []Conflict       `json:"conflicts,omitempty"`
}

// Error implements the error interface.
func (e *ScheduleValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if len(e.Result.Errors) > 0 {
		return fmt.Sprintf("schedule rejected: %s", e.Result.Errors[0].Message)
	}
	if len(e.Conflicts) > 0 {
		return fmt.Sprintf("schedule rejected: %s", e.Conflicts[0].Message)
	}
	return "schedule rejected"
}
