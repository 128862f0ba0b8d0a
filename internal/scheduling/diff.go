package scheduling

import (
	"fmt"
	"math"
	"time"

	"github.com/noah-isme/clinic-scheduler-api/internal/models"
)

// Snapshot field names, in the order they are reported.
const (
	FieldID           = "id"
	FieldChildID      = "child_id"
	FieldTherapistID  = "therapist_id"
	FieldDate         = "date"
	FieldTime         = "time"
	FieldDuration     = "duration"
	FieldActivity     = "activity"
	FieldStatus       = "status"
	FieldObservations = "observations"
	FieldCreatedAt    = "created_at"
	FieldUpdatedAt    = "updated_at"
	FieldUpdatedBy    = "updated_by"
)

var snapshotFields = []string{
	FieldID, FieldChildID, FieldTherapistID, FieldDate, FieldTime, FieldDuration,
	FieldActivity, FieldStatus, FieldObservations, FieldCreatedAt, FieldUpdatedAt, FieldUpdatedBy,
}

var mutableFields = map[string]struct{}{
	FieldChildID: {}, FieldTherapistID: {}, FieldDate: {}, FieldTime: {}, FieldDuration: {},
	FieldActivity: {}, FieldStatus: {}, FieldObservations: {},
}

// SnapshotOf captures every field of a session with JSON-stable values.
func SnapshotOf(s models.Schedule) models.Snapshot {
	return models.Snapshot{
		FieldID:           s.ID,
		FieldChildID:      s.ChildID,
		FieldTherapistID:  s.TherapistID,
		FieldDate:         FormatDate(s.Date),
		FieldTime:         s.Time,
		FieldDuration:     s.Duration,
		FieldActivity:     s.Activity,
		FieldStatus:       string(s.Status),
		FieldObservations: s.Observations,
		FieldCreatedAt:    s.CreatedAt.UTC().Format(time.RFC3339Nano),
		FieldUpdatedAt:    s.UpdatedAt.UTC().Format(time.RFC3339Nano),
		FieldUpdatedBy:    s.UpdatedBy,
	}
}

// SnapshotFields lists the keys present in snap in reporting order.
func SnapshotFields(snap models.Snapshot) []string {
	fields := make([]string, 0, len(snap))
	for _, name := range snapshotFields {
		if _, ok := snap[name]; ok {
			fields = append(fields, name)
		}
	}
	return fields
}

// Diff compares requested changes against the current snapshot. Only mutable fields whose
// value differs are reported; previous and next hold those fields alone.
func Diff(current, changes models.Snapshot) (changed []string, previous, next models.Snapshot) {
	changed = []string{}
	previous = models.Snapshot{}
	next = models.Snapshot{}
	for _, name := range snapshotFields {
		value, ok := changes[name]
		if !ok {
			continue
		}
		if _, mutable := mutableFields[name]; !mutable {
			continue
		}
		if valuesEqual(current[name], value) {
			continue
		}
		changed = append(changed, name)
		previous[name] = current[name]
		next[name] = value
	}
	return changed, previous, next
}

// ApplySnapshot writes the mutable fields of snap onto s. Values may come straight from
// JSON decoding, so numbers are accepted as any numeric type.
func ApplySnapshot(s *models.Schedule, snap models.Snapshot) error {
	for name, value := range snap {
		var err error
		switch name {
		case FieldChildID:
			s.ChildID, err = asString(name, value)
		case FieldTherapistID:
			s.TherapistID, err = asString(name, value)
		case FieldTime:
			s.Time, err = asString(name, value)
		case FieldActivity:
			s.Activity, err = asString(name, value)
		case FieldObservations:
			s.Observations, err = asString(name, value)
		case FieldStatus:
			var status string
			status, err = asString(name, value)
			s.Status = models.ScheduleStatus(status)
		case FieldDate:
			var raw string
			if raw, err = asString(name, value); err == nil {
				s.Date, err = ParseDate(raw)
			}
		case FieldDuration:
			s.Duration, err = asInt(name, value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func asString(field string, value interface{}) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case nil:
		return "", nil
	case models.ScheduleStatus:
		return string(v), nil
	}
	return "", fmt.Errorf("field %s: expected string, got %T", field, value)
}

func asInt(field string, value interface{}) (int, error) {
	if f, ok := toFloat(value); ok {
		if f != math.Trunc(f) {
			return 0, fmt.Errorf("field %s: expected whole number, got %v", field, f)
		}
		return int(f), nil
	}
	return 0, fmt.Errorf("field %s: expected number, got %T", field, value)
}

func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

func valuesEqual(a, b interface{}) bool {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}
	if sa, err := asString("", a); err == nil {
		sb, err := asString("", b)
		return err == nil && sa == sb
	}
	return a == b
}
