package scheduling

import (
	"fmt"
	"time"

	"github.com/noah-isme/clinic-scheduler-api/internal/models"
)

// Candidate is a proposed session, either new or the moved position of an existing one.
type Candidate struct {
	ID          string
	ChildID     string
	TherapistID string
	Date        time.Time
	Time        string
	Duration    int
	Activity    string
}

// CandidateFromSchedule lifts a stored session into a candidate.
func CandidateFromSchedule(s models.Schedule) Candidate {
	return Candidate{
		ID:          s.ID,
		ChildID:     s.ChildID,
		TherapistID: s.TherapistID,
		Date:        s.Date,
		Time:        s.Time,
		Duration:    s.Duration,
		Activity:    s.Activity,
	}
}

// FindConflicts lists active sessions on the candidate's day that overlap it for the same
// therapist or the same child. A single session may yield both conflict types.
// Sessions whose clock cannot be parsed are skipped; a malformed candidate yields nil.
func FindConflicts(candidate Candidate, existing []models.Schedule, excludeID string) []models.Conflict {
	span, err := SessionInterval(candidate.Time, candidate.Duration)
	if err != nil {
		return nil
	}

	var conflicts []models.Conflict
	for _, s := range existing {
		if !competesWith(s, candidate, excludeID) {
			continue
		}
		other, err := SessionInterval(s.Time, s.Duration)
		if err != nil || !span.Overlaps(other) {
			continue
		}
		if s.TherapistID == candidate.TherapistID {
			conflicts = append(conflicts, newConflict(models.ConflictTherapistOverlap, s,
				fmt.Sprintf("therapist already booked %s-%s", s.Time, FormatClock(other.End))))
		}
		if s.ChildID == candidate.ChildID {
			conflicts = append(conflicts, newConflict(models.ConflictChildOverlap, s,
				fmt.Sprintf("child already has a session %s-%s", s.Time, FormatClock(other.End))))
		}
	}
	return conflicts
}

// HasBlockingConflicts reports whether any conflict has error severity.
func HasBlockingConflicts(conflicts []models.Conflict) bool {
	for _, c := range conflicts {
		if c.Severity == models.SeverityError {
			return true
		}
	}
	return false
}

func competesWith(s models.Schedule, candidate Candidate, excludeID string) bool {
	if !s.Active() || !IsSameDay(s.Date, candidate.Date) {
		return false
	}
	if excludeID != "" && s.ID == excludeID {
		return false
	}
	return true
}

func newConflict(kind models.ConflictType, s models.Schedule, message string) models.Conflict {
	return models.Conflict{
		Type:        kind,
		Severity:    models.SeverityError,
		ScheduleID:  s.ID,
		TherapistID: s.TherapistID,
		ChildID:     s.ChildID,
		Date:        s.Date,
		Time:        s.Time,
		Duration:    s.Duration,
		Message:     message,
	}
}
