package scheduling

import (
	"time"

	"github.com/noah-isme/clinic-scheduler-api/internal/models"
)

var monday = time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

func session(id, therapistID, childID string, day time.Time, clock string, duration int) models.Schedule {
	return models.Schedule{
		ID:          id,
		TherapistID: therapistID,
		ChildID:     childID,
		Date:        day,
		Time:        clock,
		Duration:    duration,
		Activity:    "Fonoaudiologia",
		Status:      models.ScheduleStatusScheduled,
	}
}

func therapist(id string, hours float64, specialties ...string) *models.Therapist {
	return &models.Therapist{ID: id, Name: "Therapist " + id, WeeklyWorkloadHours: hours, Specialties: specialties}
}
