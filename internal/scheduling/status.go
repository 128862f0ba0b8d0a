package scheduling

import "github.com/noah-isme/clinic-scheduler-api/internal/models"

// CanTransition reports whether a session may move from one status to another.
// Without strict mode every known status is reachable; strict mode treats completed and
// cancelled as terminal.
func CanTransition(from, to models.ScheduleStatus, strict bool) bool {
	if !to.Valid() {
		return false
	}
	if from == to || !strict {
		return true
	}
	switch from {
	case models.ScheduleStatusCompleted, models.ScheduleStatusCancelled:
		return false
	}
	return true
}

// ChangeTypeFor maps the status a mutation ends in to its ledger change type.
func ChangeTypeFor(status models.ScheduleStatus) models.ChangeType {
	switch status {
	case models.ScheduleStatusCancelled:
		return models.ChangeTypeCancelled
	case models.ScheduleStatusRescheduled:
		return models.ChangeTypeRescheduled
	case models.ScheduleStatusCompleted:
		return models.ChangeTypeCompleted
	default:
		return models.ChangeTypeUpdated
	}
}
