package dto

import "github.com/noah-isme/clinic-scheduler-api/internal/models"

// CreateChildRequest registers a child.
type CreateChildRequest struct {
	Name            string                 `json:"name" validate:"required,max=200"`
	BirthDate       string                 `json:"birth_date"`
	Gender          string                 `json:"gender" validate:"max=32"`
	Diagnosis       string                 `json:"diagnosis" validate:"max=500"`
	Guardians       []models.Guardian      `json:"guardians" validate:"dive"`
	WeeklyTherapies []models.WeeklyTherapy `json:"weekly_therapies" validate:"dive"`
}

// UpdateChildRequest replaces the editable fields of a child.
type UpdateChildRequest = CreateChildRequest

// CreateTherapistRequest registers a therapist. Color is assigned from the palette when empty.
type CreateTherapistRequest struct {
	Name                string   `json:"name" validate:"required,max=200"`
	LicenseNumber       string   `json:"license_number" validate:"max=64"`
	Specialties         []string `json:"specialties" validate:"required,min=1,dive,required"`
	WeeklyWorkloadHours float64  `json:"weekly_workload_hours" validate:"gt=0,lte=168"`
	Color               string   `json:"color" validate:"omitempty,hexcolor"`
	Email               string   `json:"email" validate:"omitempty,email"`
	Phone               string   `json:"phone" validate:"max=32"`
}

// UpdateTherapistRequest replaces the editable fields of a therapist.
type UpdateTherapistRequest = CreateTherapistRequest
