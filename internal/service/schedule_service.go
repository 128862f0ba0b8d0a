package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/clinic-scheduler-api/internal/dto"
	"github.com/noah-isme/clinic-scheduler-api/internal/models"
	"github.com/noah-isme/clinic-scheduler-api/internal/scheduling"
	"github.com/noah-isme/clinic-scheduler-api/pkg/config"
	appErrors "github.com/noah-isme/clinic-scheduler-api/pkg/errors"
)

type scheduleStore interface {
	FindChild(ctx context.Context, id string) (*models.Child, error)
	ListChildren(ctx context.Context) ([]models.Child, error)
	FindTherapist(ctx context.Context, id string) (*models.Therapist, error)
	ListTherapists(ctx context.Context) ([]models.Therapist, error)
	FindSchedule(ctx context.Context, id string) (*models.Schedule, error)
	ListSchedules(ctx context.Context) ([]models.Schedule, error)
	InsertSchedule(ctx context.Context, schedule *models.Schedule, entry *models.ScheduleHistory) error
	SaveSchedule(ctx context.Context, schedule *models.Schedule, entry *models.ScheduleHistory) error
	History(ctx context.Context, scheduleID string) ([]models.ScheduleHistory, error)
	AllHistory(ctx context.Context) ([]models.ScheduleHistory, error)
	Restore(ctx context.Context, schedules []models.Schedule, history []models.ScheduleHistory)
}

type ledgerMirror interface {
	Append(ctx context.Context, entry *models.ScheduleHistory) error
	ListAll(ctx context.Context) ([]models.ScheduleHistory, error)
}

type historyPublisher interface {
	PublishHistory(entry models.ScheduleHistory)
}

// ScheduleService owns session mutations and the history ledger.
type ScheduleService struct {
	store     scheduleStore
	ledger    ledgerMirror
	events    historyPublisher
	metrics   *MetricsService
	cfg       config.SchedulingConfig
	rules     scheduling.Rules
	validator *validator.Validate
	logger    *zap.Logger

	now   func() time.Time
	newID func() string

	// mu serialises the validate-then-commit pipeline of mutations.
	mu sync.Mutex
}

// NewScheduleService constructs the service. ledger and events may be nil.
func NewScheduleService(store scheduleStore, ledger ledgerMirror, events historyPublisher, metrics *MetricsService, cfg config.SchedulingConfig, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultDuration <= 0 {
		cfg.DefaultDuration = 60
	}
	return &ScheduleService{
		store:     store,
		ledger:    ledger,
		events:    events,
		metrics:   metrics,
		cfg:       cfg,
		rules:     scheduling.RulesFromConfig(cfg),
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

// Get returns one session.
func (s *ScheduleService) Get(ctx context.Context, id string) (*models.Schedule, error) {
	schedule, err := s.store.FindSchedule(ctx, id)
	if err != nil {
		return nil, lookupError(err, "schedule")
	}
	return schedule, nil
}

// List returns sessions matching filter ordered by date then time.
func (s *ScheduleService) List(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, *models.Pagination, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown status filter")
	}
	all, err := s.store.ListSchedules(ctx)
	if err != nil {
		return nil, nil, internalError(err, "failed to list schedules")
	}
	matched := make([]models.Schedule, 0, len(all))
	for _, schedule := range all {
		if filter.TherapistID != "" && schedule.TherapistID != filter.TherapistID {
			continue
		}
		if filter.ChildID != "" && schedule.ChildID != filter.ChildID {
			continue
		}
		if filter.Status != "" && schedule.Status != filter.Status {
			continue
		}
		if filter.Week != nil && !scheduling.IsSameWeek(schedule.Date, *filter.Week) {
			continue
		}
		if filter.Date != nil && !scheduling.IsSameDay(schedule.Date, *filter.Date) {
			continue
		}
		matched = append(matched, schedule)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].Date.Equal(matched[j].Date) {
			return matched[i].Date.Before(matched[j].Date)
		}
		return matched[i].Time < matched[j].Time
	})
	page, pagination := paginate(matched, filter.Page, filter.PageSize)
	return page, pagination, nil
}

// Create books a new session and records its creation in the ledger.
// When enforcement is on, blocking rule violations and overlaps reject the booking.
func (s *ScheduleService) Create(ctx context.Context, req dto.CreateScheduleRequest, actor string) (*models.Schedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid schedule payload")
	}
	if req.Duration == 0 {
		req.Duration = s.cfg.DefaultDuration
	}
	date, err := scheduling.ParseDate(req.Date)
	if err != nil {
		return nil, validationError(err, err.Error())
	}
	if _, err := scheduling.SessionInterval(req.Time, req.Duration); err != nil {
		return nil, validationError(err, err.Error())
	}
	if _, err := s.store.FindChild(ctx, req.ChildID); err != nil {
		return nil, lookupError(err, "child")
	}
	therapist, err := s.store.FindTherapist(ctx, req.TherapistID)
	if err != nil {
		return nil, lookupError(err, "therapist")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	candidate := scheduling.Candidate{
		ChildID:     req.ChildID,
		TherapistID: req.TherapistID,
		Date:        date,
		Time:        req.Time,
		Duration:    req.Duration,
		Activity:    strings.TrimSpace(req.Activity),
	}
	if s.cfg.EnforceValidation {
		if err := s.gate(ctx, candidate, therapist); err != nil {
			return nil, err
		}
	}

	actor = actorOrSystem(actor)
	now := s.now()
	schedule := &models.Schedule{
		ID:           s.newID(),
		ChildID:      candidate.ChildID,
		TherapistID:  candidate.TherapistID,
		Date:         date,
		Time:         candidate.Time,
		Duration:     candidate.Duration,
		Activity:     candidate.Activity,
		Status:       models.ScheduleStatusScheduled,
		Observations: req.Observations,
		CreatedAt:    now,
		UpdatedAt:    now,
		UpdatedBy:    actor,
	}
	snapshot := scheduling.SnapshotOf(*schedule)
	entry := &models.ScheduleHistory{
		ID:             s.newID(),
		ScheduleID:     schedule.ID,
		ChangeType:     models.ChangeTypeCreated,
		PreviousValues: models.Snapshot{},
		NewValues:      snapshot,
		ChangedFields:  scheduling.SnapshotFields(snapshot),
		ChangedBy:      actor,
		ChangedAt:      now,
	}
	if err := s.store.InsertSchedule(ctx, schedule, entry); err != nil {
		return nil, internalError(err, "failed to create schedule")
	}
	s.afterCommit(ctx, entry.ChangeType, entry)

	s.logger.Info("schedule created",
		zap.String("schedule_id", schedule.ID),
		zap.String("therapist_id", schedule.TherapistID),
		zap.String("child_id", schedule.ChildID),
		zap.String("actor", actor))
	return schedule, nil
}

// Update patches a session. The record and its updated_at always change; a ledger entry is
// appended only when at least one field differs. Placement changes are gated like Create.
func (s *ScheduleService) Update(ctx context.Context, id string, req dto.UpdateScheduleRequest, actor string) (*models.Schedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid schedule payload")
	}
	changes, err := s.changesFromRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.store.FindSchedule(ctx, id)
	if err != nil {
		return nil, lookupError(err, "schedule")
	}
	return s.commit(ctx, current, mutation{
		changes:   changes,
		statusSet: req.Status != nil,
		reason:    req.Reason,
		actor:     actor,
		gate:      s.cfg.EnforceValidation && touchesPlacement(current, changes),
	})
}

// Move relocates a session to a new day and time, optionally to another therapist, and marks
// it rescheduled. The move runs the same gate as Create, ignoring the session's own slot.
func (s *ScheduleService) Move(ctx context.Context, id string, req dto.MoveScheduleRequest, actor string) (*models.Schedule, error) {
	changes, err := s.moveChanges(ctx, req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.store.FindSchedule(ctx, id)
	if err != nil {
		return nil, lookupError(err, "schedule")
	}
	moved, err := s.commit(ctx, current, mutation{
		changes:   changes,
		statusSet: true,
		reason:    req.Reason,
		actor:     actor,
		gate:      s.cfg.EnforceValidation,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("schedule moved",
		zap.String("schedule_id", id),
		zap.String("date", scheduling.FormatDate(moved.Date)),
		zap.String("time", moved.Time))
	return moved, nil
}

// Cancel marks a session cancelled. Sessions are never deleted.
func (s *ScheduleService) Cancel(ctx context.Context, id, reason, actor string) (*models.Schedule, error) {
	return s.setStatus(ctx, id, models.ScheduleStatusCancelled, reason, actor)
}

// Complete marks a session as delivered.
func (s *ScheduleService) Complete(ctx context.Context, id, reason, actor string) (*models.Schedule, error) {
	return s.setStatus(ctx, id, models.ScheduleStatusCompleted, reason, actor)
}

// History returns the ledger of one session, newest first.
func (s *ScheduleService) History(ctx context.Context, scheduleID string) ([]models.ScheduleHistory, error) {
	if _, err := s.store.FindSchedule(ctx, scheduleID); err != nil {
		return nil, lookupError(err, "schedule")
	}
	entries, err := s.store.History(ctx, scheduleID)
	if err != nil {
		return nil, internalError(err, "failed to load schedule history")
	}
	return entries, nil
}

// AllHistory returns the full ledger, newest first, narrowed by filter.
func (s *ScheduleService) AllHistory(ctx context.Context, filter models.HistoryFilter) ([]models.ScheduleHistory, *models.Pagination, error) {
	entries, err := s.store.AllHistory(ctx)
	if err != nil {
		return nil, nil, internalError(err, "failed to load history")
	}
	matched := make([]models.ScheduleHistory, 0, len(entries))
	for _, entry := range entries {
		if filter.ScheduleID != "" && entry.ScheduleID != filter.ScheduleID {
			continue
		}
		if filter.ChangeType != "" && entry.ChangeType != filter.ChangeType {
			continue
		}
		if filter.ChangedBy != "" && entry.ChangedBy != filter.ChangedBy {
			continue
		}
		matched = append(matched, entry)
	}
	page, pagination := paginate(matched, filter.Page, filter.PageSize)
	return page, pagination, nil
}

// RestoreFromLedger rebuilds sessions by replaying the durable ledger over the seeded state.
// It returns the number of entries replayed.
func (s *ScheduleService) RestoreFromLedger(ctx context.Context) (int, error) {
	if s.ledger == nil {
		return 0, nil
	}
	entries, err := s.ledger.ListAll(ctx)
	if err != nil {
		return 0, internalError(err, "failed to read ledger")
	}
	if len(entries) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seeded, err := s.store.ListSchedules(ctx)
	if err != nil {
		return 0, internalError(err, "failed to list schedules")
	}
	order := make([]string, 0, len(seeded)+len(entries))
	byID := make(map[string]*models.Schedule, len(seeded))
	for i := range seeded {
		byID[seeded[i].ID] = &seeded[i]
		order = append(order, seeded[i].ID)
	}

	for _, entry := range entries {
		schedule, exists := byID[entry.ScheduleID]
		if entry.ChangeType == models.ChangeTypeCreated && !exists {
			schedule = &models.Schedule{ID: entry.ScheduleID, CreatedAt: entry.ChangedAt}
			byID[entry.ScheduleID] = schedule
			order = append(order, entry.ScheduleID)
		} else if !exists {
			s.logger.Warn("ledger entry for unknown schedule skipped", zap.String("entry_id", entry.ID), zap.String("schedule_id", entry.ScheduleID))
			continue
		}
		if err := scheduling.ApplySnapshot(schedule, entry.NewValues); err != nil {
			return 0, internalError(err, "failed to replay ledger entry "+entry.ID)
		}
		schedule.UpdatedAt = entry.ChangedAt
		schedule.UpdatedBy = entry.ChangedBy
	}

	schedules := make([]models.Schedule, 0, len(order))
	for _, id := range order {
		schedules = append(schedules, *byID[id])
	}
	s.store.Restore(ctx, schedules, entries)
	s.logger.Info("ledger replayed", zap.Int("entries", len(entries)), zap.Int("schedules", len(schedules)))
	return len(entries), nil
}

type mutation struct {
	changes   models.Snapshot
	statusSet bool
	reason    string
	actor     string
	gate      bool
}

// commit applies a mutation to current. Caller holds s.mu.
func (s *ScheduleService) commit(ctx context.Context, current *models.Schedule, m mutation) (*models.Schedule, error) {
	if status, ok := m.changes[scheduling.FieldStatus].(string); ok {
		if !scheduling.CanTransition(current.Status, models.ScheduleStatus(status), s.rules.StrictTransitions) {
			return nil, appErrors.Clone(appErrors.ErrInvalidTransition,
				"cannot change status from "+string(current.Status)+" to "+status)
		}
	}

	updated := *current
	if err := scheduling.ApplySnapshot(&updated, m.changes); err != nil {
		return nil, validationError(err, err.Error())
	}

	if m.gate && updated.Active() {
		therapist, err := s.store.FindTherapist(ctx, updated.TherapistID)
		if err != nil {
			return nil, lookupError(err, "therapist")
		}
		if err := s.gate(ctx, scheduling.CandidateFromSchedule(updated), therapist); err != nil {
			return nil, err
		}
	}

	changed, previous, next := scheduling.Diff(scheduling.SnapshotOf(*current), m.changes)

	actor := actorOrSystem(m.actor)
	now := s.now()
	updated.UpdatedAt = now
	updated.UpdatedBy = actor

	changeType := models.ChangeTypeUpdated
	if m.statusSet {
		changeType = scheduling.ChangeTypeFor(updated.Status)
	}

	var entry *models.ScheduleHistory
	if len(changed) > 0 {
		entry = &models.ScheduleHistory{
			ID:             s.newID(),
			ScheduleID:     updated.ID,
			ChangeType:     changeType,
			PreviousValues: previous,
			NewValues:      next,
			ChangedFields:  changed,
			Reason:         strings.TrimSpace(m.reason),
			ChangedBy:      actor,
			ChangedAt:      now,
		}
	}
	if err := s.store.SaveSchedule(ctx, &updated, entry); err != nil {
		return nil, internalError(err, "failed to update schedule")
	}
	s.afterCommit(ctx, changeType, entry)

	s.logger.Info("schedule updated",
		zap.String("schedule_id", updated.ID),
		zap.String("change_type", string(changeType)),
		zap.Strings("changed_fields", changed),
		zap.String("actor", actor))
	return &updated, nil
}

func (s *ScheduleService) setStatus(ctx context.Context, id string, status models.ScheduleStatus, reason, actor string) (*models.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.store.FindSchedule(ctx, id)
	if err != nil {
		return nil, lookupError(err, "schedule")
	}
	return s.commit(ctx, current, mutation{
		changes:   models.Snapshot{scheduling.FieldStatus: string(status)},
		statusSet: true,
		reason:    reason,
		actor:     actor,
	})
}

// gate rejects candidates that break a blocking rule or overlap another session.
func (s *ScheduleService) gate(ctx context.Context, candidate scheduling.Candidate, therapist *models.Therapist) error {
	schedules, err := s.store.ListSchedules(ctx)
	if err != nil {
		return internalError(err, "failed to list schedules")
	}
	result := scheduling.Validate(scheduling.ValidationContext{
		Candidate: candidate,
		Existing:  schedules,
		Therapist: therapist,
	}, s.rules)
	conflicts := scheduling.FindConflicts(candidate, schedules, candidate.ID)
	if result.IsValid && !scheduling.HasBlockingConflicts(conflicts) {
		return nil
	}

	rules := make([]string, 0, len(result.Errors)+1)
	for _, issue := range result.Errors {
		rules = append(rules, issue.Rule)
	}
	for _, c := range conflicts {
		if c.Type == models.ConflictChildOverlap {
			rules = append(rules, models.RuleChildOverlap)
			break
		}
	}
	s.metrics.RecordRejection(rules...)

	rejection := &models.ScheduleValidationError{Result: result, Conflicts: conflicts}
	s.logger.Warn("schedule rejected",
		zap.String("therapist_id", candidate.TherapistID),
		zap.String("child_id", candidate.ChildID),
		zap.Strings("rules", rules))
	return appErrors.WithDetails(appErrors.ErrScheduleRejected, rejection.Error(), rejection, nil)
}

// afterCommit mirrors and publishes a committed entry. Neither failure undoes the commit.
func (s *ScheduleService) afterCommit(ctx context.Context, changeType models.ChangeType, entry *models.ScheduleHistory) {
	s.metrics.RecordMutation(changeType, entry != nil)
	if entry == nil {
		return
	}
	if s.ledger != nil {
		start := time.Now()
		err := s.ledger.Append(ctx, entry)
		s.metrics.ObserveDBQuery("history_append", time.Since(start))
		if err != nil {
			s.logger.Warn("ledger mirror append failed", zap.String("entry_id", entry.ID), zap.Error(err))
		}
	}
	if s.events != nil {
		s.events.PublishHistory(*entry)
	}
}

func (s *ScheduleService) changesFromRequest(ctx context.Context, req dto.UpdateScheduleRequest) (models.Snapshot, error) {
	changes := models.Snapshot{}
	if req.ChildID != nil {
		if _, err := s.store.FindChild(ctx, *req.ChildID); err != nil {
			return nil, lookupError(err, "child")
		}
		changes[scheduling.FieldChildID] = *req.ChildID
	}
	if req.TherapistID != nil {
		if _, err := s.store.FindTherapist(ctx, *req.TherapistID); err != nil {
			return nil, lookupError(err, "therapist")
		}
		changes[scheduling.FieldTherapistID] = *req.TherapistID
	}
	if req.Date != nil {
		date, err := scheduling.ParseDate(*req.Date)
		if err != nil {
			return nil, validationError(err, err.Error())
		}
		changes[scheduling.FieldDate] = scheduling.FormatDate(date)
	}
	if req.Time != nil {
		if _, err := scheduling.ParseClock(*req.Time); err != nil {
			return nil, validationError(err, err.Error())
		}
		changes[scheduling.FieldTime] = *req.Time
	}
	if req.Duration != nil {
		changes[scheduling.FieldDuration] = *req.Duration
	}
	if req.Activity != nil {
		changes[scheduling.FieldActivity] = strings.TrimSpace(*req.Activity)
	}
	if req.Status != nil {
		status := models.ScheduleStatus(*req.Status)
		if !status.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown status "+*req.Status)
		}
		changes[scheduling.FieldStatus] = string(status)
	}
	if req.Observations != nil {
		changes[scheduling.FieldObservations] = *req.Observations
	}
	return changes, nil
}

func (s *ScheduleService) moveChanges(ctx context.Context, req dto.MoveScheduleRequest) (models.Snapshot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid move payload")
	}
	date, err := scheduling.ParseDate(req.Date)
	if err != nil {
		return nil, validationError(err, err.Error())
	}
	if _, err := scheduling.ParseClock(req.Time); err != nil {
		return nil, validationError(err, err.Error())
	}
	changes := models.Snapshot{
		scheduling.FieldDate:   scheduling.FormatDate(date),
		scheduling.FieldTime:   req.Time,
		scheduling.FieldStatus: string(models.ScheduleStatusRescheduled),
	}
	if req.TherapistID != "" {
		if _, err := s.store.FindTherapist(ctx, req.TherapistID); err != nil {
			return nil, lookupError(err, "therapist")
		}
		changes[scheduling.FieldTherapistID] = req.TherapistID
	}
	return changes, nil
}

// touchesPlacement reports whether changes move the session or bring a cancelled one back.
// Completing or cancelling in place is never gated.
func touchesPlacement(current *models.Schedule, changes models.Snapshot) bool {
	for _, field := range []string{
		scheduling.FieldDate, scheduling.FieldTime, scheduling.FieldDuration,
		scheduling.FieldTherapistID, scheduling.FieldChildID,
	} {
		if _, ok := changes[field]; ok {
			return true
		}
	}
	if status, ok := changes[scheduling.FieldStatus].(string); ok {
		return !current.Active() && models.ScheduleStatus(status) != models.ScheduleStatusCancelled
	}
	return false
}
