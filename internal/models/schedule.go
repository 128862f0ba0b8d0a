package models

import "time"

// ScheduleStatus enumerates the lifecycle states of a therapy session.
type ScheduleStatus string

const (
	ScheduleStatusScheduled   ScheduleStatus = "scheduled"
	ScheduleStatusCompleted   ScheduleStatus = "completed"
	ScheduleStatusCancelled   ScheduleStatus = "cancelled"
	ScheduleStatusRescheduled ScheduleStatus = "rescheduled"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s ScheduleStatus) Valid() bool {
	switch s {
	case ScheduleStatusScheduled, ScheduleStatusCompleted, ScheduleStatusCancelled, ScheduleStatusRescheduled:
		return true
	}
	return false
}

// Schedule is a single therapy session booked for one child with one therapist.
type Schedule struct {
	ID           string         `json:"id"`
	ChildID      string         `json:"child_id"`
	TherapistID  string         `json:"therapist_id"`
	Date         time.Time      `json:"date"`
	Time         string         `json:"time"`
	Duration     int            `json:"duration"`
	Activity     string         `json:"activity"`
	Status       ScheduleStatus `json:"status"`
	Observations string         `json:"observations,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	UpdatedBy    string         `json:"updated_by,omitempty"`
}

// Active reports whether the session still occupies therapist and child time.
func (s Schedule) Active() bool {
	return s.Status != ScheduleStatusCancelled
}

// ScheduleFilter describes query params for listing sessions.
type ScheduleFilter struct {
	TherapistID string
	ChildID     string
	Status      ScheduleStatus
	Week        *time.Time
	Date        *time.Time
	Page        int
	PageSize    int
}
