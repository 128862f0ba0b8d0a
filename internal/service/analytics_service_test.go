package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/clinic-scheduler-api/internal/models"
	"github.com/noah-isme/clinic-scheduler-api/internal/repository"
	appErrors "github.com/noah-isme/clinic-scheduler-api/pkg/errors"
)

type countingStore struct {
	*repository.ClinicStore
	scheduleCalls int
}

func (c *countingStore) ListSchedules(ctx context.Context) ([]models.Schedule, error) {
	c.scheduleCalls++
	return c.ClinicStore.ListSchedules(ctx)
}

var analyticsWeek = time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC)

func newAnalyticsFixture(t *testing.T) (*scheduleFixture, *countingStore, *AnalyticsService) {
	t.Helper()
	fx := newScheduleFixture(t, testSchedulingConfig())
	counting := &countingStore{ClinicStore: fx.store}
	cache := NewCacheService(repository.NewMemoryCacheRepository(64, time.Minute), fx.metrics, time.Minute, zap.NewNop(), true)
	svc := NewAnalyticsService(counting, cache, fx.metrics, testSchedulingConfig(), zap.NewNop())
	return fx, counting, svc
}

func TestAnalyticsWorkloadIsCachedUntilNextMutation(t *testing.T) {
	fx, counting, svc := newAnalyticsFixture(t)
	ctx := context.Background()
	_, err := fx.svc.Create(ctx, createReq("t1", "c1", "2025-01-06", "09:00", 60), "")
	require.NoError(t, err)

	workload, cached, err := svc.Workload(ctx, "t1", analyticsWeek)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 1.0, workload.HoursScheduled)
	assert.Equal(t, 10, workload.Percentage)
	assert.Equal(t, time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), workload.WeekStart)

	again, cached, err := svc.Workload(ctx, "t1", analyticsWeek)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, workload.HoursScheduled, again.HoursScheduled)
	assert.Equal(t, 1, counting.scheduleCalls)

	_, err = fx.svc.Create(ctx, createReq("t1", "c2", "2025-01-07", "09:00", 120), "")
	require.NoError(t, err)

	fresh, cached, err := svc.Workload(ctx, "t1", analyticsWeek)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 3.25, fresh.HoursScheduled)
	assert.Equal(t, 2, fresh.SessionCount)

	metrics := fx.metrics.Snapshot()
	assert.Equal(t, uint64(1), metrics.CacheHits)
	// Derivation is in-memory and stays out of the database histogram.
	assert.False(t, fx.metrics.dbQueryDuration.DeleteLabelValues("derive_workload"))
	assert.True(t, fx.metrics.dbQueryDuration.DeleteLabelValues("history_append"))
}

func TestAnalyticsUnknownEntities(t *testing.T) {
	_, _, svc := newAnalyticsFixture(t)
	ctx := context.Background()

	_, _, err := svc.Workload(ctx, "ghost", analyticsWeek)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	_, _, err = svc.Coverage(ctx, "ghost", analyticsWeek)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestAnalyticsListWorkloadsAndAlerts(t *testing.T) {
	fx, _, svc := newAnalyticsFixture(t)
	ctx := context.Background()
	// Carla has a 10h week; 9h of sessions plus breaks puts them near the limit.
	for i, day := range []string{"2025-01-06", "2025-01-07", "2025-01-08"} {
		_, err := fx.svc.Create(ctx, createReq("t1", []string{"c1", "c2", "c1"}[i], day, "08:00", 180), "")
		require.NoError(t, err)
	}

	workloads, err := svc.ListWorkloads(ctx, analyticsWeek)
	require.NoError(t, err)
	require.Len(t, workloads, 2)
	assert.Equal(t, "t1", workloads[0].TherapistID)
	assert.Equal(t, models.WorkloadNearLimit, workloads[0].Status)
	assert.Equal(t, 9.5, workloads[0].HoursScheduled)
	assert.Equal(t, "t2", workloads[1].TherapistID)

	alerts, err := svc.WorkloadAlerts(ctx, analyticsWeek)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "t1", alerts[0].TherapistID)

	quiet, err := svc.WorkloadAlerts(ctx, analyticsWeek.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.Empty(t, quiet)
}

func TestAnalyticsCoverage(t *testing.T) {
	fx, _, svc := newAnalyticsFixture(t)
	ctx := context.Background()
	_, err := fx.svc.Create(ctx, createReq("t1", "c1", "2025-01-06", "09:00", 90), "")
	require.NoError(t, err)

	coverage, cached, err := svc.Coverage(ctx, "c1", analyticsWeek)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, "Ana", coverage.ChildName)
	require.Len(t, coverage.Therapies, 1)
	assert.Equal(t, 1.5, coverage.Therapies[0].HoursScheduled)
	assert.Equal(t, 75, coverage.Therapies[0].Percentage)
	assert.Equal(t, models.CoveragePartial, coverage.Therapies[0].Status)

	_, cached, err = svc.Coverage(ctx, "c1", analyticsWeek)
	require.NoError(t, err)
	assert.True(t, cached)

	all, err := svc.ListCoverage(ctx, analyticsWeek)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "c2", all[1].ChildID)
	assert.Empty(t, all[1].Therapies)
}

func TestAnalyticsWithoutCache(t *testing.T) {
	fx := newScheduleFixture(t, testSchedulingConfig())
	svc := NewAnalyticsService(fx.store, nil, nil, testSchedulingConfig(), nil)
	workload, cached, err := svc.Workload(context.Background(), "t2", analyticsWeek)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, models.WorkloadAvailable, workload.Status)
	assert.Empty(t, svc.SystemMetrics().Mutations)
}
