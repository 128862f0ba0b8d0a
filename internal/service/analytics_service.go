package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/clinic-scheduler-api/internal/models"
	"github.com/noah-isme/clinic-scheduler-api/internal/scheduling"
	"github.com/noah-isme/clinic-scheduler-api/pkg/config"
)

// AnalyticsStore describes the read side required by AnalyticsService.
type AnalyticsStore interface {
	Version() uint64
	FindChild(ctx context.Context, id string) (*models.Child, error)
	ListChildren(ctx context.Context) ([]models.Child, error)
	FindTherapist(ctx context.Context, id string) (*models.Therapist, error)
	ListTherapists(ctx context.Context) ([]models.Therapist, error)
	ListSchedules(ctx context.Context) ([]models.Schedule, error)
}

// AnalyticsService derives weekly workload and coverage with cache integration.
type AnalyticsService struct {
	store   AnalyticsStore
	cache   *CacheService
	metrics *MetricsService
	rules   scheduling.Rules
	logger  *zap.Logger
}

// NewAnalyticsService constructs an analytics service.
func NewAnalyticsService(store AnalyticsStore, cache *CacheService, metrics *MetricsService, cfg config.SchedulingConfig, logger *zap.Logger) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{store: store, cache: cache, metrics: metrics, rules: scheduling.RulesFromConfig(cfg), logger: logger}
}

// Workload returns one therapist's load for the week containing week. The boolean indicates
// whether the value came from cache.
func (s *AnalyticsService) Workload(ctx context.Context, therapistID string, week time.Time) (*models.TherapistWorkload, bool, error) {
	key := DerivedKey("workload", therapistID, week, s.store.Version())
	var cached models.TherapistWorkload
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, true, nil
	}

	therapist, err := s.store.FindTherapist(ctx, therapistID)
	if err != nil {
		return nil, false, lookupError(err, "therapist")
	}
	schedules, err := s.store.ListSchedules(ctx)
	if err != nil {
		return nil, false, internalError(err, "failed to list schedules")
	}

	workload := scheduling.ComputeWorkload(therapist, week, schedules, s.rules)

	if err := s.cache.Set(ctx, key, workload, 0); err != nil {
		s.logger.Warn("cache workload", zap.Error(err))
	}
	return workload, false, nil
}

// ListWorkloads returns every therapist's load for the week, heaviest first.
func (s *AnalyticsService) ListWorkloads(ctx context.Context, week time.Time) ([]models.TherapistWorkload, error) {
	key := DerivedKey("workloads", "all", week, s.store.Version())
	var cached []models.TherapistWorkload
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, nil
	}

	therapists, err := s.store.ListTherapists(ctx)
	if err != nil {
		return nil, internalError(err, "failed to list therapists")
	}
	schedules, err := s.store.ListSchedules(ctx)
	if err != nil {
		return nil, internalError(err, "failed to list schedules")
	}

	workloads := make([]models.TherapistWorkload, 0, len(therapists))
	for i := range therapists {
		workloads = append(workloads, *scheduling.ComputeWorkload(&therapists[i], week, schedules, s.rules))
	}
	sort.SliceStable(workloads, func(i, j int) bool {
		if workloads[i].Percentage != workloads[j].Percentage {
			return workloads[i].Percentage > workloads[j].Percentage
		}
		return workloads[i].TherapistName < workloads[j].TherapistName
	})

	if err := s.cache.Set(ctx, key, workloads, 0); err != nil {
		s.logger.Warn("cache workloads", zap.Error(err))
	}
	return workloads, nil
}

// WorkloadAlerts returns therapists who are near or above their weekly limit.
func (s *AnalyticsService) WorkloadAlerts(ctx context.Context, week time.Time) ([]models.TherapistWorkload, error) {
	workloads, err := s.ListWorkloads(ctx, week)
	if err != nil {
		return nil, err
	}
	alerts := make([]models.TherapistWorkload, 0)
	for _, w := range workloads {
		if w.Status != models.WorkloadAvailable {
			alerts = append(alerts, w)
		}
	}
	return alerts, nil
}

// Coverage reconciles one child's weekly goals with booked sessions.
func (s *AnalyticsService) Coverage(ctx context.Context, childID string, week time.Time) (*models.ChildCoverage, bool, error) {
	key := DerivedKey("coverage", childID, week, s.store.Version())
	var cached models.ChildCoverage
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, true, nil
	}

	child, err := s.store.FindChild(ctx, childID)
	if err != nil {
		return nil, false, lookupError(err, "child")
	}
	schedules, therapists, err := s.coverageInputs(ctx)
	if err != nil {
		return nil, false, err
	}
	coverage := s.childCoverage(child, week, schedules, therapists)

	if err := s.cache.Set(ctx, key, coverage, 0); err != nil {
		s.logger.Warn("cache coverage", zap.Error(err))
	}
	return coverage, false, nil
}

// ListCoverage returns the coverage of every child for the week.
func (s *AnalyticsService) ListCoverage(ctx context.Context, week time.Time) ([]models.ChildCoverage, error) {
	children, err := s.store.ListChildren(ctx)
	if err != nil {
		return nil, internalError(err, "failed to list children")
	}
	schedules, therapists, err := s.coverageInputs(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.ChildCoverage, 0, len(children))
	for i := range children {
		out = append(out, *s.childCoverage(&children[i], week, schedules, therapists))
	}
	return out, nil
}

// SystemMetrics returns the instrumentation snapshot.
func (s *AnalyticsService) SystemMetrics() models.SystemMetrics {
	return s.metrics.Snapshot()
}

func (s *AnalyticsService) coverageInputs(ctx context.Context) ([]models.Schedule, []models.Therapist, error) {
	schedules, err := s.store.ListSchedules(ctx)
	if err != nil {
		return nil, nil, internalError(err, "failed to list schedules")
	}
	therapists, err := s.store.ListTherapists(ctx)
	if err != nil {
		return nil, nil, internalError(err, "failed to list therapists")
	}
	return schedules, therapists, nil
}

func (s *AnalyticsService) childCoverage(child *models.Child, week time.Time, schedules []models.Schedule, therapists []models.Therapist) *models.ChildCoverage {
	start, end := scheduling.WeekRange(week)
	return &models.ChildCoverage{
		ChildID:   child.ID,
		ChildName: child.Name,
		WeekStart: start,
		WeekEnd:   end,
		Therapies: scheduling.ComputeCoverage(child, week, schedules, therapists, s.rules.Attribution),
	}
}
