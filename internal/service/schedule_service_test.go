package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/clinic-scheduler-api/internal/dto"
	"github.com/noah-isme/clinic-scheduler-api/internal/models"
	"github.com/noah-isme/clinic-scheduler-api/internal/repository"
	"github.com/noah-isme/clinic-scheduler-api/pkg/config"
	appErrors "github.com/noah-isme/clinic-scheduler-api/pkg/errors"
)

type ledgerStub struct {
	mu       sync.Mutex
	appended []models.ScheduleHistory
	stored   []models.ScheduleHistory
	err      error
}

func (l *ledgerStub) Append(ctx context.Context, entry *models.ScheduleHistory) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.appended = append(l.appended, *entry)
	return l.err
}

func (l *ledgerStub) ListAll(ctx context.Context) ([]models.ScheduleHistory, error) {
	return l.stored, nil
}

type publisherStub struct {
	entries []models.ScheduleHistory
}

func (p *publisherStub) PublishHistory(entry models.ScheduleHistory) {
	p.entries = append(p.entries, entry)
}

func testSchedulingConfig() config.SchedulingConfig {
	return config.SchedulingConfig{
		BreakMinutes:      15,
		MaxDailyHours:     8,
		NearLimitPercent:  80,
		DefaultDuration:   60,
		EnforceValidation: true,
		DayStart:          "08:00",
		DayEnd:            "12:00",
		SlotMinutes:       60,
	}
}

type scheduleFixture struct {
	store     *repository.ClinicStore
	ledger    *ledgerStub
	publisher *publisherStub
	metrics   *MetricsService
	svc       *ScheduleService
}

func newScheduleFixture(t *testing.T, cfg config.SchedulingConfig) *scheduleFixture {
	t.Helper()
	ctx := context.Background()
	store := repository.NewClinicStore()
	require.NoError(t, store.CreateChild(ctx, &models.Child{
		ID:   "c1",
		Name: "Ana",
		WeeklyTherapies: []models.WeeklyTherapy{
			{Specialty: "Fonoaudiologia", HoursRequired: 2},
		},
	}))
	require.NoError(t, store.CreateChild(ctx, &models.Child{ID: "c2", Name: "Bruno"}))
	require.NoError(t, store.CreateTherapist(ctx, &models.Therapist{ID: "t1", Name: "Carla", Specialties: []string{"Fonoaudiologia"}, WeeklyWorkloadHours: 10}))
	require.NoError(t, store.CreateTherapist(ctx, &models.Therapist{ID: "t2", Name: "Diego", Specialties: []string{"Fonoaudiologia", "Psicologia"}, WeeklyWorkloadHours: 40}))

	fx := &scheduleFixture{
		store:     store,
		ledger:    &ledgerStub{},
		publisher: &publisherStub{},
		metrics:   NewMetricsService(),
	}
	fx.svc = NewScheduleService(store, fx.ledger, fx.publisher, fx.metrics, cfg, nil, nil)

	clock := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	fx.svc.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	seq := 0
	fx.svc.newID = func() string {
		seq++
		return fmt.Sprintf("id-%d", seq)
	}
	return fx
}

func createReq(therapistID, childID, date, clock string, duration int) dto.CreateScheduleRequest {
	return dto.CreateScheduleRequest{
		ChildID:     childID,
		TherapistID: therapistID,
		Date:        date,
		Time:        clock,
		Duration:    duration,
		Activity:    "Fonoaudiologia",
	}
}

func TestScheduleServiceCreateRecordsLedgerEntry(t *testing.T) {
	fx := newScheduleFixture(t, testSchedulingConfig())
	ctx := context.Background()

	schedule, err := fx.svc.Create(ctx, createReq("t1", "c1", "2025-01-06", "09:00", 0), "reception")
	require.NoError(t, err)
	assert.Equal(t, 60, schedule.Duration)
	assert.Equal(t, models.ScheduleStatusScheduled, schedule.Status)
	assert.Equal(t, "reception", schedule.UpdatedBy)

	history, err := fx.svc.History(ctx, schedule.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	entry := history[0]
	assert.Equal(t, models.ChangeTypeCreated, entry.ChangeType)
	assert.Empty(t, entry.PreviousValues)
	assert.Equal(t, "2025-01-06", entry.NewValues["date"])
	assert.Contains(t, entry.ChangedFields, "therapist_id")
	assert.Equal(t, int64(1), entry.Sequence)

	require.Len(t, fx.ledger.appended, 1)
	require.Len(t, fx.publisher.entries, 1)
	assert.Equal(t, entry.ID, fx.publisher.entries[0].ID)
	assert.Equal(t, uint64(1), fx.metrics.Snapshot().LedgerEntries)
}

func TestScheduleServiceCreateRejectsRuleViolations(t *testing.T) {
	fx := newScheduleFixture(t, testSchedulingConfig())
	ctx := context.Background()
	_, err := fx.svc.Create(ctx, createReq("t1", "c1", "2025-01-06", "09:00", 60), "")
	require.NoError(t, err)

	cases := []struct {
		name string
		req  dto.CreateScheduleRequest
		rule string
	}{
		{"therapist overlap", createReq("t1", "c2", "2025-01-06", "09:30", 60), models.RuleDoubleBooking},
		{"short break", createReq("t1", "c2", "2025-01-06", "10:05", 60), models.RuleMandatoryBreak},
		{"child overlap", createReq("t2", "c1", "2025-01-06", "09:15", 30), models.RuleChildOverlap},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := fx.svc.Create(ctx, tc.req, "")
			require.Error(t, err)
			assert.ErrorIs(t, err, appErrors.ErrScheduleRejected)

			var appErr *appErrors.Error
			require.True(t, errors.As(err, &appErr))
			rejection, ok := appErr.Details.(*models.ScheduleValidationError)
			require.True(t, ok)
			assert.Equal(t, rejection.Error(), err.Error())
			var rules []string
			for _, issue := range rejection.Result.Errors {
				rules = append(rules, issue.Rule)
			}
			for _, c := range rejection.Conflicts {
				if c.Type == models.ConflictChildOverlap {
					rules = append(rules, models.RuleChildOverlap)
				}
			}
			assert.Contains(t, rules, tc.rule)
		})
	}

	all, _, err := fx.svc.List(ctx, models.ScheduleFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestScheduleServiceCreateAllowsBackToBackAndUnenforcedMode(t *testing.T) {
	fx := newScheduleFixture(t, testSchedulingConfig())
	ctx := context.Background()
	_, err := fx.svc.Create(ctx, createReq("t1", "c1", "2025-01-06", "09:00", 60), "")
	require.NoError(t, err)
	_, err = fx.svc.Create(ctx, createReq("t1", "c2", "2025-01-06", "10:00", 60), "")
	require.NoError(t, err)

	cfg := testSchedulingConfig()
	cfg.EnforceValidation = false
	lax := newScheduleFixture(t, cfg)
	_, err = lax.svc.Create(ctx, createReq("t1", "c1", "2025-01-06", "09:00", 60), "")
	require.NoError(t, err)
	_, err = lax.svc.Create(ctx, createReq("t1", "c2", "2025-01-06", "09:30", 60), "")
	require.NoError(t, err)
}

func TestScheduleServiceCreateUnknownReferences(t *testing.T) {
	fx := newScheduleFixture(t, testSchedulingConfig())
	ctx := context.Background()

	_, err := fx.svc.Create(ctx, createReq("ghost", "c1", "2025-01-06", "09:00", 60), "")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = fx.svc.Create(ctx, createReq("t1", "c1", "06/01/2025", "09:00", 60), "")
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = fx.svc.Create(ctx, createReq("t1", "c1", "2025-01-06", "9h00", 60), "")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestScheduleServiceUpdateDiffsFields(t *testing.T) {
	fx := newScheduleFixture(t, testSchedulingConfig())
	ctx := context.Background()
	created, err := fx.svc.Create(ctx, createReq("t1", "c1", "2025-01-06", "09:00", 60), "")
	require.NoError(t, err)

	notes := "brought new toys"
	updated, err := fx.svc.Update(ctx, created.ID, dto.UpdateScheduleRequest{Observations: &notes, Reason: "session notes"}, "carla")
	require.NoError(t, err)
	assert.Equal(t, notes, updated.Observations)

	history, err := fx.svc.History(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	latest := history[0]
	assert.Equal(t, models.ChangeTypeUpdated, latest.ChangeType)
	assert.Equal(t, []string{"observations"}, latest.ChangedFields)
	assert.Equal(t, "", latest.PreviousValues["observations"])
	assert.Equal(t, notes, latest.NewValues["observations"])
	assert.Equal(t, "session notes", latest.Reason)
	assert.Equal(t, "carla", latest.ChangedBy)
}

func TestScheduleServiceUpdateWithoutChangesSkipsLedger(t *testing.T) {
	fx := newScheduleFixture(t, testSchedulingConfig())
	ctx := context.Background()
	created, err := fx.svc.Create(ctx, createReq("t1", "c1", "2025-01-06", "09:00", 60), "")
	require.NoError(t, err)

	same := created.Activity
	updated, err := fx.svc.Update(ctx, created.ID, dto.UpdateScheduleRequest{Activity: &same}, "")
	require.NoError(t, err)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	history, err := fx.svc.History(ctx, created.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
	assert.Len(t, fx.ledger.appended, 1)
}

func TestScheduleServiceUpdateGatesPlacementChanges(t *testing.T) {
	fx := newScheduleFixture(t, testSchedulingConfig())
	ctx := context.Background()
	_, err := fx.svc.Create(ctx, createReq("t1", "c1", "2025-01-06", "09:00", 60), "")
	require.NoError(t, err)
	second, err := fx.svc.Create(ctx, createReq("t1", "c2", "2025-01-06", "11:00", 60), "")
	require.NoError(t, err)

	clash := "09:30"
	_, err = fx.svc.Update(ctx, second.ID, dto.UpdateScheduleRequest{Time: &clash}, "")
	assert.ErrorIs(t, err, appErrors.ErrScheduleRejected)

	longer := 90
	_, err = fx.svc.Update(ctx, second.ID, dto.UpdateScheduleRequest{Duration: &longer}, "")
	require.NoError(t, err)
}

func TestScheduleServiceUpdateStatusOnlyIsNotGated(t *testing.T) {
	fx := newScheduleFixture(t, testSchedulingConfig())
	ctx := context.Background()
	day := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	// Stored before the break rule applied: only five minutes apart.
	for _, s := range []models.Schedule{
		{ID: "a", ChildID: "c1", TherapistID: "t1", Date: day, Time: "09:00", Duration: 60, Activity: "Fonoaudiologia", Status: models.ScheduleStatusScheduled},
		{ID: "b", ChildID: "c2", TherapistID: "t1", Date: day, Time: "10:05", Duration: 60, Activity: "Fonoaudiologia", Status: models.ScheduleStatusScheduled},
	} {
		s := s
		require.NoError(t, fx.store.InsertSchedule(ctx, &s, nil))
	}

	completed := string(models.ScheduleStatusCompleted)
	updated, err := fx.svc.Update(ctx, "b", dto.UpdateScheduleRequest{Status: &completed}, "")
	require.NoError(t, err)
	assert.Equal(t, models.ScheduleStatusCompleted, updated.Status)

	cancelled := string(models.ScheduleStatusCancelled)
	_, err = fx.svc.Update(ctx, "a", dto.UpdateScheduleRequest{Status: &cancelled}, "")
	require.NoError(t, err)

	_, err = fx.svc.Create(ctx, createReq("t1", "c2", "2025-01-06", "09:00", 30), "")
	require.NoError(t, err)

	// Reactivating a cancelled session puts it back on the calendar, so it is checked again.
	scheduled := string(models.ScheduleStatusScheduled)
	_, err = fx.svc.Update(ctx, "a", dto.UpdateScheduleRequest{Status: &scheduled}, "")
	assert.ErrorIs(t, err, appErrors.ErrScheduleRejected)
}

func TestScheduleServiceUnknownScheduleIsNotFound(t *testing.T) {
	fx := newScheduleFixture(t, testSchedulingConfig())
	ctx := context.Background()

	notes := "x"
	_, err := fx.svc.Update(ctx, "missing", dto.UpdateScheduleRequest{Observations: &notes}, "")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	_, err = fx.svc.Cancel(ctx, "missing", "", "")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	_, err = fx.svc.History(ctx, "missing")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	_, err = fx.svc.Move(ctx, "missing", dto.MoveScheduleRequest{Date: "2025-01-07", Time: "09:00"}, "")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestScheduleServiceMoveMarksRescheduled(t *testing.T) {
	fx := newScheduleFixture(t, testSchedulingConfig())
	ctx := context.Background()
	created, err := fx.svc.Create(ctx, createReq("t1", "c1", "2025-01-06", "09:00", 60), "")
	require.NoError(t, err)

	// Moving within its own slot must not conflict with itself.
	moved, err := fx.svc.Move(ctx, created.ID, dto.MoveScheduleRequest{Date: "2025-01-06", Time: "09:30", Reason: "late arrival"}, "")
	require.NoError(t, err)
	assert.Equal(t, models.ScheduleStatusRescheduled, moved.Status)
	assert.Equal(t, "09:30", moved.Time)

	history, err := fx.svc.History(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.ChangeTypeRescheduled, history[0].ChangeType)
	assert.Equal(t, []string{"time", "status"}, history[0].ChangedFields)

	handed, err := fx.svc.Move(ctx, created.ID, dto.MoveScheduleRequest{Date: "2025-01-08", Time: "14:00", TherapistID: "t2"}, "")
	require.NoError(t, err)
	assert.Equal(t, "t2", handed.TherapistID)
	assert.Equal(t, "2025-01-08", handed.Date.Format("2006-01-02"))
}

func TestScheduleServiceCancelAndComplete(t *testing.T) {
	fx := newScheduleFixture(t, testSchedulingConfig())
	ctx := context.Background()
	first, err := fx.svc.Create(ctx, createReq("t1", "c1", "2025-01-06", "09:00", 60), "")
	require.NoError(t, err)
	second, err := fx.svc.Create(ctx, createReq("t1", "c2", "2025-01-06", "11:00", 60), "")
	require.NoError(t, err)

	cancelled, err := fx.svc.Cancel(ctx, first.ID, "family travel", "")
	require.NoError(t, err)
	assert.Equal(t, models.ScheduleStatusCancelled, cancelled.Status)

	completed, err := fx.svc.Complete(ctx, second.ID, "", "")
	require.NoError(t, err)
	assert.Equal(t, models.ScheduleStatusCompleted, completed.Status)

	entries, _, err := fx.svc.AllHistory(ctx, models.HistoryFilter{ChangeType: models.ChangeTypeCancelled})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "family travel", entries[0].Reason)

	// A cancelled slot no longer blocks new bookings.
	_, err = fx.svc.Create(ctx, createReq("t1", "c2", "2025-01-06", "09:00", 60), "")
	require.NoError(t, err)

	snapshot := fx.metrics.Snapshot()
	assert.Equal(t, uint64(1), snapshot.Mutations[string(models.ChangeTypeCancelled)])
	assert.Equal(t, uint64(1), snapshot.Mutations[string(models.ChangeTypeCompleted)])
}

func TestScheduleServiceStrictTransitions(t *testing.T) {
	cfg := testSchedulingConfig()
	cfg.StrictTransitions = true
	fx := newScheduleFixture(t, cfg)
	ctx := context.Background()
	created, err := fx.svc.Create(ctx, createReq("t1", "c1", "2025-01-06", "09:00", 60), "")
	require.NoError(t, err)

	_, err = fx.svc.Cancel(ctx, created.ID, "", "")
	require.NoError(t, err)
	_, err = fx.svc.Complete(ctx, created.ID, "", "")
	assert.ErrorIs(t, err, appErrors.ErrInvalidTransition)

	lax := newScheduleFixture(t, testSchedulingConfig())
	created, err = lax.svc.Create(ctx, createReq("t1", "c1", "2025-01-06", "09:00", 60), "")
	require.NoError(t, err)
	_, err = lax.svc.Cancel(ctx, created.ID, "", "")
	require.NoError(t, err)
	_, err = lax.svc.Complete(ctx, created.ID, "", "")
	require.NoError(t, err)
}

func TestScheduleServiceLedgerFailureDoesNotUndoCommit(t *testing.T) {
	fx := newScheduleFixture(t, testSchedulingConfig())
	fx.ledger.err = errors.New("connection refused")
	ctx := context.Background()

	created, err := fx.svc.Create(ctx, createReq("t1", "c1", "2025-01-06", "09:00", 60), "")
	require.NoError(t, err)
	_, err = fx.svc.Get(ctx, created.ID)
	require.NoError(t, err)
}

func TestScheduleServiceListFilters(t *testing.T) {
	fx := newScheduleFixture(t, testSchedulingConfig())
	ctx := context.Background()
	_, err := fx.svc.Create(ctx, createReq("t1", "c1", "2025-01-07", "09:00", 60), "")
	require.NoError(t, err)
	_, err = fx.svc.Create(ctx, createReq("t1", "c2", "2025-01-06", "11:00", 60), "")
	require.NoError(t, err)
	_, err = fx.svc.Create(ctx, createReq("t2", "c2", "2025-01-14", "09:00", 60), "")
	require.NoError(t, err)

	week := time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC)
	items, pagination, err := fx.svc.List(ctx, models.ScheduleFilter{TherapistID: "t1", Week: &week})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "2025-01-06", items[0].Date.Format("2006-01-02"))
	assert.Equal(t, 2, pagination.TotalCount)

	_, _, err = fx.svc.List(ctx, models.ScheduleFilter{Status: "unknown"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestScheduleServiceRestoreFromLedger(t *testing.T) {
	fx := newScheduleFixture(t, testSchedulingConfig())
	ctx := context.Background()
	at := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)

	// Values as they come back from JSONB: numbers decode to float64.
	fx.ledger.stored = []models.ScheduleHistory{
		{
			ID: "h1", Sequence: 1, ScheduleID: "s1", ChangeType: models.ChangeTypeCreated, ChangedBy: "ana", ChangedAt: at,
			NewValues: models.Snapshot{
				"id": "s1", "child_id": "c1", "therapist_id": "t1", "date": "2025-01-06", "time": "09:00",
				"duration": float64(45), "activity": "Fonoaudiologia", "status": "scheduled", "observations": "",
			},
		},
		{
			ID: "h2", Sequence: 2, ScheduleID: "s1", ChangeType: models.ChangeTypeRescheduled, ChangedBy: "bia", ChangedAt: at.Add(time.Hour),
			PreviousValues: models.Snapshot{"time": "09:00", "status": "scheduled"},
			NewValues:      models.Snapshot{"time": "13:00", "status": "rescheduled"},
		},
	}

	replayed, err := fx.svc.RestoreFromLedger(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, replayed)

	restored, err := fx.svc.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 45, restored.Duration)
	assert.Equal(t, "13:00", restored.Time)
	assert.Equal(t, models.ScheduleStatusRescheduled, restored.Status)
	assert.Equal(t, "bia", restored.UpdatedBy)
	assert.True(t, restored.CreatedAt.Equal(at))

	history, err := fx.svc.History(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "h2", history[0].ID)

	// New entries continue the restored sequence.
	created, err := fx.svc.Create(ctx, createReq("t2", "c2", "2025-01-06", "09:00", 60), "")
	require.NoError(t, err)
	history, err = fx.svc.History(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), history[0].Sequence)
}

func TestScheduleServicePreviewMoveLeavesStateUntouched(t *testing.T) {
	fx := newScheduleFixture(t, testSchedulingConfig())
	ctx := context.Background()
	created, err := fx.svc.Create(ctx, createReq("t1", "c1", "2025-01-06", "09:00", 60), "")
	require.NoError(t, err)
	version := fx.store.Version()

	preview, err := fx.svc.PreviewMove(ctx, created.ID, dto.MoveScheduleRequest{Date: "2025-01-13", Time: "10:00", TherapistID: "t2"})
	require.NoError(t, err)
	assert.True(t, preview.Allowed)
	assert.Equal(t, version, fx.store.Version())

	require.Len(t, preview.Workloads, 2)
	assert.Equal(t, "t1", preview.Workloads[0].TherapistID)
	assert.Equal(t, 1, preview.Workloads[0].Before.SessionCount)
	assert.Equal(t, 0, preview.Workloads[0].After.SessionCount)
	assert.Equal(t, "t2", preview.Workloads[1].TherapistID)
	assert.Equal(t, 1, preview.Workloads[1].After.SessionCount)

	require.Len(t, preview.Coverage, 2)
	assert.Equal(t, 1.0, preview.Coverage[0].Before[0].HoursScheduled)
	assert.Equal(t, 0.0, preview.Coverage[0].After[0].HoursScheduled)
	assert.Equal(t, 1.0, preview.Coverage[1].After[0].HoursScheduled)

	stored, err := fx.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "t1", stored.TherapistID)
}

func TestScheduleServiceValidateAndConflicts(t *testing.T) {
	fx := newScheduleFixture(t, testSchedulingConfig())
	ctx := context.Background()
	_, err := fx.svc.Create(ctx, createReq("t1", "c1", "2025-01-06", "09:00", 60), "")
	require.NoError(t, err)

	res, err := fx.svc.Validate(ctx, dto.CandidateRequest{TherapistID: "t1", ChildID: "c2", Date: "2025-01-06", Time: "09:30", Activity: "Psicologia"})
	require.NoError(t, err)
	assert.False(t, res.Validation.IsValid)
	assert.NotEmpty(t, res.Validation.Warnings)
	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, models.ConflictTherapistOverlap, res.Conflicts[0].Type)

	conflicts, err := fx.svc.DetectConflicts(ctx, dto.CandidateRequest{TherapistID: "t2", ChildID: "c2", Date: "2025-01-06", Time: "09:30"})
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestScheduleServiceSuggestionsRankByLoad(t *testing.T) {
	fx := newScheduleFixture(t, testSchedulingConfig())
	ctx := context.Background()
	_, err := fx.svc.Create(ctx, createReq("t1", "c1", "2025-01-07", "09:00", 60), "")
	require.NoError(t, err)

	suggestions, err := fx.svc.Suggestions(ctx, dto.SuggestionRequest{ChildID: "c2", Date: "2025-01-06", Time: "14:00", Activity: "fonoaudiologia"})
	require.NoError(t, err)
	require.Len(t, suggestions, 2)
	assert.Equal(t, "t2", suggestions[0].Therapist.ID)
	assert.Equal(t, "t1", suggestions[1].Therapist.ID)

	busy, err := fx.svc.Suggestions(ctx, dto.SuggestionRequest{ChildID: "c2", Date: "2025-01-07", Time: "09:30", Activity: "Fonoaudiologia"})
	require.NoError(t, err)
	require.Len(t, busy, 1)
	assert.Equal(t, "t2", busy[0].Therapist.ID)

	none, err := fx.svc.Suggestions(ctx, dto.SuggestionRequest{ChildID: "c2", Date: "2025-01-06", Time: "14:00", Activity: "Terapia Ocupacional"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestScheduleServiceAvailableSlots(t *testing.T) {
	fx := newScheduleFixture(t, testSchedulingConfig())
	ctx := context.Background()
	_, err := fx.svc.Create(ctx, createReq("t1", "c1", "2025-01-06", "09:00", 60), "")
	require.NoError(t, err)

	slots, err := fx.svc.AvailableSlots(ctx, "t1", "2025-01-06", 60, "")
	require.NoError(t, err)
	var times []string
	for _, slot := range slots {
		times = append(times, slot.Time)
	}
	// 08:00 and 10:00 touch the booked session; 11:00 ends exactly at day end.
	assert.Equal(t, []string{"08:00", "10:00", "11:00"}, times)

	_, err = fx.svc.AvailableSlots(ctx, "ghost", "2025-01-06", 60, "")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
