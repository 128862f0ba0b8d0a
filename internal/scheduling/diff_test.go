package scheduling

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/clinic-scheduler-api/internal/models"
)

func TestSnapshotFieldsCoverEveryField(t *testing.T) {
	s := session("s1", "t1", "c1", monday, "09:00", 60)
	s.CreatedAt = time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	snap := SnapshotOf(s)

	assert.Equal(t, snapshotFields, SnapshotFields(snap))
	assert.Equal(t, "2025-01-06", snap[FieldDate])
	assert.Equal(t, 60, snap[FieldDuration])
}

func TestDiffReportsOnlyChangedMutableFields(t *testing.T) {
	current := SnapshotOf(session("s1", "t1", "c1", monday, "09:00", 60))
	changes := models.Snapshot{
		FieldTime:      "10:00",
		FieldDuration:  60.0,
		FieldActivity:  "Fonoaudiologia",
		FieldID:        "other",
		FieldUpdatedAt: "2030-01-01T00:00:00Z",
	}

	changed, previous, next := Diff(current, changes)
	assert.Equal(t, []string{FieldTime}, changed)
	assert.Equal(t, models.Snapshot{FieldTime: "09:00"}, previous)
	assert.Equal(t, models.Snapshot{FieldTime: "10:00"}, next)
}

func TestDiffEmptyWhenNothingChanges(t *testing.T) {
	current := SnapshotOf(session("s1", "t1", "c1", monday, "09:00", 60))
	changed, previous, next := Diff(current, models.Snapshot{FieldStatus: "scheduled"})
	assert.Empty(t, changed)
	assert.Empty(t, previous)
	assert.Empty(t, next)
}

func TestApplySnapshotAcceptsDecodedJSON(t *testing.T) {
	raw := []byte(`{"date":"2025-01-08","time":"11:00","duration":45,"status":"rescheduled","observations":"moved"}`)
	var snap models.Snapshot
	require.NoError(t, json.Unmarshal(raw, &snap))

	s := session("s1", "t1", "c1", monday, "09:00", 60)
	require.NoError(t, ApplySnapshot(&s, snap))
	assert.Equal(t, "2025-01-08", FormatDate(s.Date))
	assert.Equal(t, "11:00", s.Time)
	assert.Equal(t, 45, s.Duration)
	assert.Equal(t, models.ScheduleStatusRescheduled, s.Status)
	assert.Equal(t, "moved", s.Observations)
}

func TestApplySnapshotRejectsWrongTypes(t *testing.T) {
	s := session("s1", "t1", "c1", monday, "09:00", 60)
	assert.Error(t, ApplySnapshot(&s, models.Snapshot{FieldDuration: "sixty"}))
	assert.Error(t, ApplySnapshot(&s, models.Snapshot{FieldDuration: 45.5}))
	assert.Error(t, ApplySnapshot(&s, models.Snapshot{FieldDate: "tomorrow"}))
}
