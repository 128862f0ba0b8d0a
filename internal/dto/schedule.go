package dto

import (
	"time"

	"github.com/noah-isme/clinic-scheduler-api/internal/models"
)

// CreateScheduleRequest books a new session.
type CreateScheduleRequest struct {
	ChildID      string `json:"child_id" validate:"required"`
	TherapistID  string `json:"therapist_id" validate:"required"`
	Date         string `json:"date" validate:"required"`
	Time         string `json:"time" validate:"required,len=5"`
	Duration     int    `json:"duration" validate:"omitempty,gt=0,lte=720"`
	Activity     string `json:"activity" validate:"required,max=120"`
	Observations string `json:"observations" validate:"max=2000"`
}

// UpdateScheduleRequest patches a session. Only non-nil fields are considered.
type UpdateScheduleRequest struct {
	ChildID      *string `json:"child_id" validate:"omitempty,min=1"`
	TherapistID  *string `json:"therapist_id" validate:"omitempty,min=1"`
	Date         *string `json:"date"`
	Time         *string `json:"time" validate:"omitempty,len=5"`
	Duration     *int    `json:"duration" validate:"omitempty,gt=0,lte=720"`
	Activity     *string `json:"activity" validate:"omitempty,max=120"`
	Status       *string `json:"status" validate:"omitempty,oneof=scheduled completed cancelled rescheduled"`
	Observations *string `json:"observations" validate:"omitempty,max=2000"`
	Reason       string  `json:"reason" validate:"max=500"`
}

// MoveScheduleRequest relocates a session, optionally handing it to another therapist.
type MoveScheduleRequest struct {
	Date        string `json:"date" validate:"required"`
	Time        string `json:"time" validate:"required,len=5"`
	TherapistID string `json:"therapist_id"`
	Reason      string `json:"reason" validate:"max=500"`
}

// StatusChangeRequest carries the optional reason for cancel/complete.
type StatusChangeRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// CandidateRequest describes a hypothetical session for validation, conflicts and suggestions.
type CandidateRequest struct {
	ScheduleID  string `json:"schedule_id"`
	ChildID     string `json:"child_id"`
	TherapistID string `json:"therapist_id" validate:"required"`
	Date        string `json:"date" validate:"required"`
	Time        string `json:"time" validate:"required,len=5"`
	Duration    int    `json:"duration" validate:"omitempty,gt=0,lte=720"`
	Activity    string `json:"activity"`
}

// SuggestionRequest asks for therapists able to take a session.
type SuggestionRequest struct {
	ScheduleID string `json:"schedule_id"`
	ChildID    string `json:"child_id" validate:"required"`
	Date       string `json:"date" validate:"required"`
	Time       string `json:"time" validate:"required,len=5"`
	Duration   int    `json:"duration" validate:"omitempty,gt=0,lte=720"`
	Activity   string `json:"activity" validate:"required"`
}

// ValidationResponse bundles rule findings with the raw conflict list.
type ValidationResponse struct {
	Validation models.ValidationResult `json:"validation"`
	Conflicts  []models.Conflict       `json:"conflicts"`
}

// WorkloadDelta is a therapist's weekly load before and after a proposed change.
type WorkloadDelta struct {
	TherapistID string                    `json:"therapist_id"`
	WeekStart   time.Time                 `json:"week_start"`
	Before      *models.TherapistWorkload `json:"before"`
	After       *models.TherapistWorkload `json:"after"`
}

// CoverageDelta is a child's weekly coverage before and after a proposed change.
type CoverageDelta struct {
	ChildID   string                   `json:"child_id"`
	WeekStart time.Time                `json:"week_start"`
	Before    []models.TherapyCoverage `json:"before"`
	After     []models.TherapyCoverage `json:"after"`
}

// MovePreview is the read-only impact of a proposed move.
type MovePreview struct {
	ScheduleID string                  `json:"schedule_id"`
	Allowed    bool                    `json:"allowed"`
	Validation models.ValidationResult `json:"validation"`
	Conflicts  []models.Conflict       `json:"conflicts"`
	Workloads  []WorkloadDelta         `json:"workloads"`
	Coverage   []CoverageDelta         `json:"coverage"`
}

// TherapistSuggestion ranks a therapist who could take a session.
type TherapistSuggestion struct {
	Therapist  models.Therapist          `json:"therapist"`
	Workload   *models.TherapistWorkload `json:"workload"`
	Validation models.ValidationResult   `json:"validation"`
}

// AvailableSlot is a start time where a session would pass every blocking rule.
type AvailableSlot struct {
	Time     string                   `json:"time"`
	Warnings []models.ValidationIssue `json:"warnings"`
}
