package models

import "time"

// Therapist delivers sessions in one or more specialties.
type Therapist struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	LicenseNumber       string    `json:"license_number,omitempty"`
	Specialties         []string  `json:"specialties"`
	WeeklyWorkloadHours float64   `json:"weekly_workload_hours"`
	Color               string    `json:"color"`
	Email               string    `json:"email,omitempty"`
	Phone               string    `json:"phone,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// TherapistFilter narrows therapist listings.
type TherapistFilter struct {
	Search    string
	Specialty string
	Page      int
	PageSize  int
}

// TherapistPalette is the fixed set of display colours handed out to therapists.
var TherapistPalette = []string{
	"#3B82F6",
	"#10B981",
	"#F59E0B",
	"#EF4444",
	"#8B5CF6",
	"#EC4899",
	"#14B8A6",
	"#F97316",
	"#6366F1",
	"#84CC16",
}
