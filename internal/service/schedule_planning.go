package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/noah-isme/clinic-scheduler-api/internal/dto"
	"github.com/noah-isme/clinic-scheduler-api/internal/models"
	"github.com/noah-isme/clinic-scheduler-api/internal/scheduling"
)

// Validate runs the rule set against a hypothetical session without saving anything.
func (s *ScheduleService) Validate(ctx context.Context, req dto.CandidateRequest) (*dto.ValidationResponse, error) {
	candidate, therapist, err := s.candidateFromRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	schedules, err := s.store.ListSchedules(ctx)
	if err != nil {
		return nil, internalError(err, "failed to list schedules")
	}
	return &dto.ValidationResponse{
		Validation: scheduling.Validate(scheduling.ValidationContext{
			Candidate: candidate,
			Existing:  schedules,
			Therapist: therapist,
		}, s.rules),
		Conflicts: nonNilConflicts(scheduling.FindConflicts(candidate, schedules, candidate.ID)),
	}, nil
}

// DetectConflicts lists every active session overlapping the candidate.
func (s *ScheduleService) DetectConflicts(ctx context.Context, req dto.CandidateRequest) ([]models.Conflict, error) {
	candidate, _, err := s.candidateFromRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	schedules, err := s.store.ListSchedules(ctx)
	if err != nil {
		return nil, internalError(err, "failed to list schedules")
	}
	return nonNilConflicts(scheduling.FindConflicts(candidate, schedules, candidate.ID)), nil
}

// PreviewMove reports what a move would do to validation, workloads and coverage.
// State is left untouched.
func (s *ScheduleService) PreviewMove(ctx context.Context, id string, req dto.MoveScheduleRequest) (*dto.MovePreview, error) {
	changes, err := s.moveChanges(ctx, req)
	if err != nil {
		return nil, err
	}
	current, err := s.store.FindSchedule(ctx, id)
	if err != nil {
		return nil, lookupError(err, "schedule")
	}
	moved := *current
	if err := scheduling.ApplySnapshot(&moved, changes); err != nil {
		return nil, validationError(err, err.Error())
	}
	therapist, err := s.store.FindTherapist(ctx, moved.TherapistID)
	if err != nil {
		return nil, lookupError(err, "therapist")
	}
	before, err := s.store.ListSchedules(ctx)
	if err != nil {
		return nil, internalError(err, "failed to list schedules")
	}

	candidate := scheduling.CandidateFromSchedule(moved)
	result := scheduling.Validate(scheduling.ValidationContext{Candidate: candidate, Existing: before, Therapist: therapist}, s.rules)
	conflicts := nonNilConflicts(scheduling.FindConflicts(candidate, before, id))

	after := make([]models.Schedule, len(before))
	for i, schedule := range before {
		if schedule.ID == id {
			schedule = moved
		}
		after[i] = schedule
	}

	preview := &dto.MovePreview{
		ScheduleID: id,
		Allowed:    result.IsValid && !scheduling.HasBlockingConflicts(conflicts),
		Validation: result,
		Conflicts:  conflicts,
		Workloads:  []dto.WorkloadDelta{},
		Coverage:   []dto.CoverageDelta{},
	}

	type therapistWeek struct {
		therapistID string
		week        time.Time
	}
	affected := []therapistWeek{{current.TherapistID, scheduling.WeekStart(current.Date)}}
	if next := (therapistWeek{moved.TherapistID, scheduling.WeekStart(moved.Date)}); next != affected[0] {
		affected = append(affected, next)
	}
	for _, tw := range affected {
		t, err := s.store.FindTherapist(ctx, tw.therapistID)
		if err != nil {
			return nil, lookupError(err, "therapist")
		}
		preview.Workloads = append(preview.Workloads, dto.WorkloadDelta{
			TherapistID: tw.therapistID,
			WeekStart:   tw.week,
			Before:      scheduling.ComputeWorkload(t, tw.week, before, s.rules),
			After:       scheduling.ComputeWorkload(t, tw.week, after, s.rules),
		})
	}

	child, err := s.store.FindChild(ctx, current.ChildID)
	if err != nil {
		return nil, lookupError(err, "child")
	}
	therapists, err := s.store.ListTherapists(ctx)
	if err != nil {
		return nil, internalError(err, "failed to list therapists")
	}
	weeks := []time.Time{scheduling.WeekStart(current.Date)}
	if w := scheduling.WeekStart(moved.Date); !w.Equal(weeks[0]) {
		weeks = append(weeks, w)
	}
	for _, week := range weeks {
		preview.Coverage = append(preview.Coverage, dto.CoverageDelta{
			ChildID:   child.ID,
			WeekStart: week,
			Before:    scheduling.ComputeCoverage(child, week, before, therapists, s.rules.Attribution),
			After:     scheduling.ComputeCoverage(child, week, after, therapists, s.rules.Attribution),
		})
	}
	return preview, nil
}

// Suggestions ranks therapists who hold the requested specialty and could take the session,
// least loaded first.
func (s *ScheduleService) Suggestions(ctx context.Context, req dto.SuggestionRequest) ([]dto.TherapistSuggestion, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid suggestion payload")
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
	therapists, err := s.store.ListTherapists(ctx)
	if err != nil {
		return nil, internalError(err, "failed to list therapists")
	}
	schedules, err := s.store.ListSchedules(ctx)
	if err != nil {
		return nil, internalError(err, "failed to list schedules")
	}

	suggestions := make([]dto.TherapistSuggestion, 0)
	for i := range therapists {
		therapist := &therapists[i]
		if !scheduling.HoldsSpecialty(therapist, req.Activity) {
			continue
		}
		candidate := scheduling.Candidate{
			ID:          req.ScheduleID,
			ChildID:     req.ChildID,
			TherapistID: therapist.ID,
			Date:        date,
			Time:        req.Time,
			Duration:    req.Duration,
			Activity:    strings.TrimSpace(req.Activity),
		}
		result := scheduling.Validate(scheduling.ValidationContext{Candidate: candidate, Existing: schedules, Therapist: therapist}, s.rules)
		if !result.IsValid {
			continue
		}
		if hasTherapistConflict(scheduling.FindConflicts(candidate, schedules, req.ScheduleID)) {
			continue
		}
		suggestions = append(suggestions, dto.TherapistSuggestion{
			Therapist:  *therapist,
			Workload:   scheduling.ComputeWorkload(therapist, date, schedules, s.rules),
			Validation: result,
		})
	}
	sort.SliceStable(suggestions, func(i, j int) bool {
		if suggestions[i].Workload.Percentage != suggestions[j].Workload.Percentage {
			return suggestions[i].Workload.Percentage < suggestions[j].Workload.Percentage
		}
		return suggestions[i].Therapist.Name < suggestions[j].Therapist.Name
	})
	return suggestions, nil
}

// AvailableSlots lists start times on a day where the therapist could take a session
// of the given length.
func (s *ScheduleService) AvailableSlots(ctx context.Context, therapistID, day string, duration int, childID string) ([]dto.AvailableSlot, error) {
	if duration <= 0 {
		duration = s.cfg.DefaultDuration
	}
	date, err := scheduling.ParseDate(day)
	if err != nil {
		return nil, validationError(err, err.Error())
	}
	therapist, err := s.store.FindTherapist(ctx, therapistID)
	if err != nil {
		return nil, lookupError(err, "therapist")
	}
	slots, err := scheduling.GenerateSlots(s.cfg.DayStart, s.cfg.DayEnd, s.cfg.SlotMinutes)
	if err != nil {
		return nil, internalError(err, "invalid working day configuration")
	}
	dayEnd, err := scheduling.ParseClock(s.cfg.DayEnd)
	if err != nil {
		return nil, internalError(err, "invalid working day configuration")
	}
	schedules, err := s.store.ListSchedules(ctx)
	if err != nil {
		return nil, internalError(err, "failed to list schedules")
	}

	available := make([]dto.AvailableSlot, 0, len(slots))
	for _, slot := range slots {
		span, err := scheduling.SessionInterval(slot, duration)
		if err != nil || span.End > dayEnd {
			continue
		}
		candidate := scheduling.Candidate{
			ChildID:     childID,
			TherapistID: therapistID,
			Date:        date,
			Time:        slot,
			Duration:    duration,
		}
		result := scheduling.Validate(scheduling.ValidationContext{Candidate: candidate, Existing: schedules, Therapist: therapist}, s.rules)
		if !result.IsValid {
			continue
		}
		if childID != "" && scheduling.HasBlockingConflicts(scheduling.FindConflicts(candidate, schedules, "")) {
			continue
		}
		available = append(available, dto.AvailableSlot{Time: slot, Warnings: result.Warnings})
	}
	return available, nil
}

func (s *ScheduleService) candidateFromRequest(ctx context.Context, req dto.CandidateRequest) (scheduling.Candidate, *models.Therapist, error) {
	if err := s.validator.Struct(req); err != nil {
		return scheduling.Candidate{}, nil, validationError(err, "invalid candidate payload")
	}
	if req.Duration == 0 {
		req.Duration = s.cfg.DefaultDuration
	}
	date, err := scheduling.ParseDate(req.Date)
	if err != nil {
		return scheduling.Candidate{}, nil, validationError(err, err.Error())
	}
	if _, err := scheduling.SessionInterval(req.Time, req.Duration); err != nil {
		return scheduling.Candidate{}, nil, validationError(err, err.Error())
	}
	therapist, err := s.store.FindTherapist(ctx, req.TherapistID)
	if err != nil {
		return scheduling.Candidate{}, nil, lookupError(err, "therapist")
	}
	return scheduling.Candidate{
		ID:          req.ScheduleID,
		ChildID:     req.ChildID,
		TherapistID: req.TherapistID,
		Date:        date,
		Time:        req.Time,
		Duration:    req.Duration,
		Activity:    strings.TrimSpace(req.Activity),
	}, therapist, nil
}

func hasTherapistConflict(conflicts []models.Conflict) bool {
	for _, c := range conflicts {
		if c.Type == models.ConflictTherapistOverlap {
			return true
		}
	}
	return false
}

func nonNilConflicts(conflicts []models.Conflict) []models.Conflict {
	if conflicts == nil {
		return []models.Conflict{}
	}
	return conflicts
}
