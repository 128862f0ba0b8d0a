package repository

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/clinic-scheduler-api/internal/models"
)

func TestClinicStoreScheduleLifecycleBumpsVersion(t *testing.T) {
	store := NewClinicStore()
	ctx := context.Background()
	start := store.Version()

	schedule := &models.Schedule{ID: "s1", TherapistID: "t1", ChildID: "c1", Time: "09:00", Duration: 60, Status: models.ScheduleStatusScheduled}
	created := &models.ScheduleHistory{ID: "h1", ScheduleID: "s1", ChangeType: models.ChangeTypeCreated, ChangedAt: time.Now()}
	require.NoError(t, store.InsertSchedule(ctx, schedule, created))
	assert.Equal(t, int64(1), created.Sequence)
	assert.Greater(t, store.Version(), start)

	assert.ErrorIs(t, store.InsertSchedule(ctx, schedule, nil), ErrDuplicateID)

	schedule.Status = models.ScheduleStatusCancelled
	v := store.Version()
	require.NoError(t, store.SaveSchedule(ctx, schedule, nil))
	assert.Greater(t, store.Version(), v)

	found, err := store.FindSchedule(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, models.ScheduleStatusCancelled, found.Status)

	_, err = store.FindSchedule(ctx, "missing")
	assert.ErrorIs(t, err, ErrRecordNotFound)
	assert.ErrorIs(t, store.SaveSchedule(ctx, &models.Schedule{ID: "missing"}, nil), ErrRecordNotFound)
}

func TestClinicStoreHistoryOrdering(t *testing.T) {
	store := NewClinicStore()
	ctx := context.Background()
	at := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)

	require.NoError(t, store.InsertSchedule(ctx, &models.Schedule{ID: "s1"}, &models.ScheduleHistory{ID: "h1", ScheduleID: "s1", ChangedAt: at}))
	require.NoError(t, store.SaveSchedule(ctx, &models.Schedule{ID: "s1"}, &models.ScheduleHistory{ID: "h2", ScheduleID: "s1", ChangedAt: at}))
	require.NoError(t, store.SaveSchedule(ctx, &models.Schedule{ID: "s1"}, &models.ScheduleHistory{ID: "h3", ScheduleID: "s1", ChangedAt: at.Add(time.Minute)}))
	require.NoError(t, store.InsertSchedule(ctx, &models.Schedule{ID: "s2"}, &models.ScheduleHistory{ID: "h4", ScheduleID: "s2", ChangedAt: at.Add(-time.Hour)}))

	history, err := store.History(ctx, "s1")
	require.NoError(t, err)
	ids := []string{history[0].ID, history[1].ID, history[2].ID}
	assert.Equal(t, []string{"h3", "h2", "h1"}, ids)

	all, err := store.AllHistory(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "h4", all[3].ID)

	empty, err := store.History(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestClinicStoreReturnsCopies(t *testing.T) {
	store := NewClinicStore()
	ctx := context.Background()
	require.NoError(t, store.CreateTherapist(ctx, &models.Therapist{ID: "t1", Specialties: []string{"Psicologia"}}))

	found, err := store.FindTherapist(ctx, "t1")
	require.NoError(t, err)
	found.Specialties[0] = "changed"

	again, err := store.FindTherapist(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "Psicologia", again.Specialties[0])
}

func TestDecodeSnapshotAndSeed(t *testing.T) {
	payload := `{
		"children": [{"id": "c1", "name": "Ana", "birth_date": "2019-03-02", "weekly_therapies": [{"specialty": "Fonoaudiologia", "hours_required": 2}]}],
		"therapists": [{"id": "t1", "name": "Dr. Lima", "specialties": ["Fonoaudiologia"], "weekly_workload_hours": 20}],
		"schedules": [{"id": "s1", "child_id": "c1", "therapist_id": "t1", "date": "2025-01-06", "time": "09:00", "activity": "Fonoaudiologia"}]
	}`
	snap, err := DecodeSnapshot(strings.NewReader(payload), 45)
	require.NoError(t, err)
	require.Len(t, snap.Schedules, 1)
	assert.Equal(t, 45, snap.Schedules[0].Duration)
	assert.Equal(t, models.ScheduleStatusScheduled, snap.Schedules[0].Status)

	store := NewClinicStore()
	require.NoError(t, store.Seed(context.Background(), snap))
	schedules, err := store.ListSchedules(context.Background())
	require.NoError(t, err)
	assert.Len(t, schedules, 1)
	history, err := store.AllHistory(context.Background())
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestDecodeSnapshotRejectsMalformedRecords(t *testing.T) {
	cases := []string{
		`{"schedules": [{"id": "s1", "date": "06/01/2025", "time": "09:00"}]}`,
		`{"schedules": [{"id": "s1", "date": "2025-01-06", "time": "9am"}]}`,
		`{"schedules": [{"id": "s1", "date": "2025-01-06", "time": "09:00", "status": "lost"}]}`,
		`{"therapists": [{"id": "t1", "weekly_workload_hours": 0}]}`,
		`{"therapists": [{"id": "t1", "specialties": [], "weekly_workload_hours": 20}]}`,
		`{"therapists": [{"id": "t1", "specialties": [" "], "weekly_workload_hours": 20}]}`,
		`{"children": [{"id": "c1", "weekly_therapies": [{"specialty": "Fono", "hours_required": 1}, {"specialty": "fono ", "hours_required": 2}]}]}`,
	}
	for _, payload := range cases {
		_, err := DecodeSnapshot(strings.NewReader(payload), 60)
		assert.Error(t, err, payload)
	}
}

func TestDecodeSnapshotFoldsDuplicateTherapistSpecialties(t *testing.T) {
	payload := `{"therapists": [{"id": "t1", "specialties": ["Fonoaudiologia", " fonoaudiologia", "Psicologia"], "weekly_workload_hours": 20}]}`
	snap, err := DecodeSnapshot(strings.NewReader(payload), 60)
	require.NoError(t, err)
	require.Len(t, snap.Therapists, 1)
	assert.Equal(t, []string{"Fonoaudiologia", "Psicologia"}, snap.Therapists[0].Specialties)
}

func TestSeedRejectsDanglingReferences(t *testing.T) {
	base := `"children": [{"id": "c1", "name": "Ana"}],
		"therapists": [{"id": "t1", "name": "Carla", "specialties": ["Fonoaudiologia"], "weekly_workload_hours": 20}]`
	cases := map[string]string{
		"unknown child":     `{` + base + `, "schedules": [{"id": "s1", "child_id": "ghost", "therapist_id": "t1", "date": "2025-01-06", "time": "09:00"}]}`,
		"unknown therapist": `{` + base + `, "schedules": [{"id": "s1", "child_id": "c1", "therapist_id": "nobody", "date": "2025-01-06", "time": "09:00"}]}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			snap, err := DecodeSnapshot(strings.NewReader(payload), 60)
			require.NoError(t, err)

			store := NewClinicStore()
			err = store.Seed(context.Background(), snap)
			require.ErrorIs(t, err, ErrRecordNotFound)

			children, err := store.ListChildren(context.Background())
			require.NoError(t, err)
			assert.Empty(t, children)
			assert.Equal(t, uint64(0), store.Version())
		})
	}
}
