package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/noah-isme/clinic-scheduler-api/internal/models"
)

var (
	// ErrRecordNotFound is returned when an identifier is unknown to the store.
	ErrRecordNotFound = errors.New("record not found")
	// ErrDuplicateID is returned when inserting an identifier that already exists.
	ErrDuplicateID = errors.New("duplicate id")
)

// ClinicStore owns the children, therapists, sessions and the history ledger of one clinic.
// Every mutation bumps Version so derived values can be memoized safely.
type ClinicStore struct {
	mu sync.RWMutex

	children       map[string]models.Child
	childOrder     []string
	therapists     map[string]models.Therapist
	therapistOrder []string
	schedules      map[string]models.Schedule
	scheduleOrder  []string
	history        []models.ScheduleHistory

	sequence int64
	version  uint64
}

// NewClinicStore builds an empty store.
func NewClinicStore() *ClinicStore {
	return &ClinicStore{
		children:   make(map[string]models.Child),
		therapists: make(map[string]models.Therapist),
		schedules:  make(map[string]models.Schedule),
	}
}

// Version returns the mutation counter.
func (s *ClinicStore) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// CreateChild inserts a child.
func (s *ClinicStore) CreateChild(ctx context.Context, child *models.Child) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.children[child.ID]; exists {
		return fmt.Errorf("child %s: %w", child.ID, ErrDuplicateID)
	}
	s.children[child.ID] = cloneChild(*child)
	s.childOrder = append(s.childOrder, child.ID)
	s.version++
	return nil
}

// UpdateChild replaces a stored child.
func (s *ClinicStore) UpdateChild(ctx context.Context, child *models.Child) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.children[child.ID]; !exists {
		return ErrRecordNotFound
	}
	s.children[child.ID] = cloneChild(*child)
	s.version++
	return nil
}

// FindChild returns a copy of the child.
func (s *ClinicStore) FindChild(ctx context.Context, id string) (*models.Child, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	child, ok := s.children[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	clone := cloneChild(child)
	return &clone, nil
}

// ListChildren returns children in insertion order.
func (s *ClinicStore) ListChildren(ctx context.Context) ([]models.Child, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Child, 0, len(s.childOrder))
	for _, id := range s.childOrder {
		out = append(out, cloneChild(s.children[id]))
	}
	return out, nil
}

// CreateTherapist inserts a therapist.
func (s *ClinicStore) CreateTherapist(ctx context.Context, therapist *models.Therapist) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.therapists[therapist.ID]; exists {
		return fmt.Errorf("therapist %s: %w", therapist.ID, ErrDuplicateID)
	}
	s.therapists[therapist.ID] = cloneTherapist(*therapist)
	s.therapistOrder = append(s.therapistOrder, therapist.ID)
	s.version++
	return nil
}

// UpdateTherapist replaces a stored therapist.
func (s *ClinicStore) UpdateTherapist(ctx context.Context, therapist *models.Therapist) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.therapists[therapist.ID]; !exists {
		return ErrRecordNotFound
	}
	s.therapists[therapist.ID] = cloneTherapist(*therapist)
	s.version++
	return nil
}

// FindTherapist returns a copy of the therapist.
func (s *ClinicStore) FindTherapist(ctx context.Context, id string) (*models.Therapist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	therapist, ok := s.therapists[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	clone := cloneTherapist(therapist)
	return &clone, nil
}

// ListTherapists returns therapists in insertion order.
func (s *ClinicStore) ListTherapists(ctx context.Context) ([]models.Therapist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Therapist, 0, len(s.therapistOrder))
	for _, id := range s.therapistOrder {
		out = append(out, cloneTherapist(s.therapists[id]))
	}
	return out, nil
}

// InsertSchedule stores a new session together with its creation entry.
func (s *ClinicStore) InsertSchedule(ctx context.Context, schedule *models.Schedule, entry *models.ScheduleHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.schedules[schedule.ID]; exists {
		return fmt.Errorf("schedule %s: %w", schedule.ID, ErrDuplicateID)
	}
	s.schedules[schedule.ID] = *schedule
	s.scheduleOrder = append(s.scheduleOrder, schedule.ID)
	s.appendEntry(entry)
	s.version++
	return nil
}

// SaveSchedule replaces a stored session and appends entry when it is not nil.
func (s *ClinicStore) SaveSchedule(ctx context.Context, schedule *models.Schedule, entry *models.ScheduleHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.schedules[schedule.ID]; !exists {
		return ErrRecordNotFound
	}
	s.schedules[schedule.ID] = *schedule
	s.appendEntry(entry)
	s.version++
	return nil
}

// FindSchedule returns a copy of the session.
func (s *ClinicStore) FindSchedule(ctx context.Context, id string) (*models.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	schedule, ok := s.schedules[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return &schedule, nil
}

// ListSchedules returns every session in insertion order.
func (s *ClinicStore) ListSchedules(ctx context.Context) ([]models.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Schedule, 0, len(s.scheduleOrder))
	for _, id := range s.scheduleOrder {
		out = append(out, s.schedules[id])
	}
	return out, nil
}

// History returns the entries of one session, newest first.
func (s *ClinicStore) History(ctx context.Context, scheduleID string) ([]models.ScheduleHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ScheduleHistory, 0)
	for _, entry := range s.history {
		if entry.ScheduleID == scheduleID {
			out = append(out, cloneEntry(entry))
		}
	}
	SortHistory(out)
	return out, nil
}

// AllHistory returns the full ledger, newest first.
func (s *ClinicStore) AllHistory(ctx context.Context) ([]models.ScheduleHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ScheduleHistory, 0, len(s.history))
	for _, entry := range s.history {
		out = append(out, cloneEntry(entry))
	}
	SortHistory(out)
	return out, nil
}

// Restore replaces all sessions and the ledger, typically after replaying a durable log.
func (s *ClinicStore) Restore(ctx context.Context, schedules []models.Schedule, history []models.ScheduleHistory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schedules = make(map[string]models.Schedule, len(schedules))
	s.scheduleOrder = s.scheduleOrder[:0]
	for _, schedule := range schedules {
		if _, exists := s.schedules[schedule.ID]; !exists {
			s.scheduleOrder = append(s.scheduleOrder, schedule.ID)
		}
		s.schedules[schedule.ID] = schedule
	}
	s.history = s.history[:0]
	s.sequence = 0
	for i := range history {
		entry := history[i]
		s.history = append(s.history, cloneEntry(entry))
		if entry.Sequence > s.sequence {
			s.sequence = entry.Sequence
		}
	}
	s.version++
}

// appendEntry assigns the next sequence number. Caller holds the write lock.
func (s *ClinicStore) appendEntry(entry *models.ScheduleHistory) {
	if entry == nil {
		return
	}
	s.sequence++
	entry.Sequence = s.sequence
	s.history = append(s.history, cloneEntry(*entry))
}

// SortHistory orders entries newest first, breaking ties by ledger sequence.
func SortHistory(entries []models.ScheduleHistory) {
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].ChangedAt.Equal(entries[j].ChangedAt) {
			return entries[i].ChangedAt.After(entries[j].ChangedAt)
		}
		return entries[i].Sequence > entries[j].Sequence
	})
}

func cloneChild(c models.Child) models.Child {
	c.Guardians = append([]models.Guardian(nil), c.Guardians...)
	c.WeeklyTherapies = append([]models.WeeklyTherapy(nil), c.WeeklyTherapies...)
	if c.BirthDate != nil {
		birth := *c.BirthDate
		c.BirthDate = &birth
	}
	return c
}

func cloneTherapist(t models.Therapist) models.Therapist {
	t.Specialties = append([]string(nil), t.Specialties...)
	return t
}

func cloneEntry(e models.ScheduleHistory) models.ScheduleHistory {
	e.PreviousValues = cloneSnapshot(e.PreviousValues)
	e.NewValues = cloneSnapshot(e.NewValues)
	e.ChangedFields = append([]string{}, e.ChangedFields...)
	return e
}

func cloneSnapshot(snap models.Snapshot) models.Snapshot {
	out := make(models.Snapshot, len(snap))
	for k, v := range snap {
		out[k] = v
	}
	return out
}
