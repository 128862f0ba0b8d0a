package models

import "time"

// Guardian is a responsible adult for a child.
type Guardian struct {
	Name         string `json:"name" validate:"required"`
	Relationship string `json:"relationship,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Email        string `json:"email,omitempty" validate:"omitempty,email"`
}

// WeeklyTherapy is the target number of hours per week for one specialty.
type WeeklyTherapy struct {
	Specialty     string  `json:"specialty" validate:"required"`
	HoursRequired float64 `json:"hours_required" validate:"gte=0"`
}

// Child is a patient receiving therapy at the clinic.
type Child struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	BirthDate       *time.Time      `json:"birth_date,omitempty"`
	Gender          string          `json:"gender,omitempty"`
	Diagnosis       string          `json:"diagnosis,omitempty"`
	Guardians       []Guardian      `json:"guardians"`
	WeeklyTherapies []WeeklyTherapy `json:"weekly_therapies"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ChildFilter narrows child listings.
type ChildFilter struct {
	Search   string
	Page     int
	PageSize int
}
