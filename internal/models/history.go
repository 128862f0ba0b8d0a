package models

import "time"

// ChangeType classifies a ledger entry.
type ChangeType string

const (
	ChangeTypeCreated     ChangeType = "created"
	ChangeTypeUpdated     ChangeType = "updated"
	ChangeTypeCancelled   ChangeType = "cancelled"
	ChangeTypeRescheduled ChangeType = "rescheduled"
	ChangeTypeCompleted   ChangeType = "completed"
)

// Snapshot is a partial view of a schedule keyed by JSON field name.
type Snapshot map[string]interface{}

// ScheduleHistory is one append-only ledger entry describing a committed mutation.
type ScheduleHistory struct {
	ID             string     `json:"id"`
	Sequence       int64      `json:"sequence"`
	ScheduleID     string     `json:"schedule_id"`
	ChangeType     ChangeType `json:"change_type"`
	PreviousValues Snapshot   `json:"previous_values"`
	NewValues      Snapshot   `json:"new_values"`
	ChangedFields  []string   `json:"changed_fields"`
	Reason         string     `json:"reason,omitempty"`
	ChangedBy      string     `json:"changed_by"`
	ChangedAt      time.Time  `json:"changed_at"`
}

// HistoryFilter narrows ledger listings.
type HistoryFilter struct {
	ScheduleID string
	ChangeType ChangeType
	ChangedBy  string
	Page       int
	PageSize   int
}

// HistoryEvent is the broker message emitted for each ledger entry.
type HistoryEvent struct {
	EventID    string          `json:"event_id"`
	Type       string          `json:"type"`
	Entry      ScheduleHistory `json:"entry"`
	OccurredAt time.Time       `json:"occurred_at"`
}
