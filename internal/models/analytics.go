package models

import "time"

// WorkloadStatus classifies a therapist's weekly load.
type WorkloadStatus string

const (
	WorkloadAvailable  WorkloadStatus = "available"
	WorkloadNearLimit  WorkloadStatus = "near_limit"
	WorkloadOverloaded WorkloadStatus = "overloaded"
)

// TherapistWorkload is the derived weekly load of one therapist, including break overhead.
type TherapistWorkload struct {
	TherapistID      string         `json:"therapist_id"`
	TherapistName    string         `json:"therapist_name"`
	WeekStart        time.Time      `json:"week_start"`
	WeekEnd          time.Time      `json:"week_end"`
	SessionCount     int            `json:"session_count"`
	HoursScheduled   float64        `json:"hours_scheduled"`
	MaxHours         float64        `json:"max_hours"`
	Percentage       int            `json:"percentage"`
	Status           WorkloadStatus `json:"status"`
	RemainingHours   float64        `json:"remaining_hours"`
	SuggestedActions []string       `json:"suggested_actions"`
}

// CoverageStatus classifies how much of a weekly goal is booked.
type CoverageStatus string

const (
	CoverageComplete CoverageStatus = "complete"
	CoveragePartial  CoverageStatus = "partial"
	CoverageMissing  CoverageStatus = "missing"
)

// TherapyCoverage compares booked hours against one weekly therapy goal.
type TherapyCoverage struct {
	Specialty      string         `json:"specialty"`
	HoursRequired  float64        `json:"hours_required"`
	HoursScheduled float64        `json:"hours_scheduled"`
	Percentage     int            `json:"percentage"`
	Status         CoverageStatus `json:"status"`
}

// ChildCoverage groups the coverage rows of a child for a week.
type ChildCoverage struct {
	ChildID   string            `json:"child_id"`
	ChildName string            `json:"child_name"`
	WeekStart time.Time         `json:"week_start"`
	WeekEnd   time.Time         `json:"week_end"`
	Therapies []TherapyCoverage `json:"therapies"`
}

// SystemMetrics is a lightweight snapshot of process-level counters.
type SystemMetrics struct {
	CacheHitRatio            float64           `json:"cache_hit_ratio"`
	CacheHits                uint64            `json:"cache_hits"`
	CacheMisses              uint64            `json:"cache_misses"`
	RequestsTotal            uint64            `json:"requests_total"`
	AverageRequestDurationMs float64           `json:"average_request_duration_ms"`
	LedgerEntries            uint64            `json:"ledger_entries"`
	Mutations                map[string]uint64 `json:"mutations"`
	Goroutines               int               `json:"goroutines"`
	GeneratedAt              time.Time         `json:"generated_at"`
}
