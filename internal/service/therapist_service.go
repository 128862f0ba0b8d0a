package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/clinic-scheduler-api/internal/dto"
	"github.com/noah-isme/clinic-scheduler-api/internal/models"
	"github.com/noah-isme/clinic-scheduler-api/internal/scheduling"
)

type therapistStore interface {
	CreateTherapist(ctx context.Context, therapist *models.Therapist) error
	UpdateTherapist(ctx context.Context, therapist *models.Therapist) error
	FindTherapist(ctx context.Context, id string) (*models.Therapist, error)
	ListTherapists(ctx context.Context) ([]models.Therapist, error)
}

// TherapistService orchestrates therapist records.
type TherapistService struct {
	store     therapistStore
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time

	// mu keeps palette assignment consistent across concurrent creates.
	mu sync.Mutex
}

// NewTherapistService constructs a TherapistService.
func NewTherapistService(store therapistStore, validate *validator.Validate, logger *zap.Logger) *TherapistService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TherapistService{store: store, validator: validate, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// List returns therapists plus pagination data.
func (s *TherapistService) List(ctx context.Context, filter models.TherapistFilter) ([]models.Therapist, *models.Pagination, error) {
	therapists, err := s.store.ListTherapists(ctx)
	if err != nil {
		return nil, nil, internalError(err, "failed to list therapists")
	}
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	matched := make([]models.Therapist, 0, len(therapists))
	for i := range therapists {
		t := therapists[i]
		if search != "" && !strings.Contains(strings.ToLower(t.Name), search) {
			continue
		}
		if filter.Specialty != "" && !scheduling.HoldsSpecialty(&t, filter.Specialty) {
			continue
		}
		matched = append(matched, t)
	}
	page, pagination := paginate(matched, filter.Page, filter.PageSize)
	return page, pagination, nil
}

// Get returns a therapist by id.
func (s *TherapistService) Get(ctx context.Context, id string) (*models.Therapist, error) {
	therapist, err := s.store.FindTherapist(ctx, id)
	if err != nil {
		return nil, lookupError(err, "therapist")
	}
	return therapist, nil
}

// Create registers a therapist, assigning the first unused palette colour when none is given.
func (s *TherapistService) Create(ctx context.Context, req dto.CreateTherapistRequest) (*models.Therapist, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid therapist payload")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	color := strings.ToUpper(strings.TrimSpace(req.Color))
	if color == "" {
		existing, err := s.store.ListTherapists(ctx)
		if err != nil {
			return nil, internalError(err, "failed to list therapists")
		}
		color = nextPaletteColor(existing)
	}

	now := s.now()
	therapist := &models.Therapist{ID: uuid.NewString(), Color: color, CreatedAt: now}
	applyTherapist(therapist, req, now)
	if err := s.store.CreateTherapist(ctx, therapist); err != nil {
		return nil, internalError(err, "failed to create therapist")
	}
	s.logger.Info("therapist registered", zap.String("therapist_id", therapist.ID), zap.Strings("specialties", therapist.Specialties))
	return therapist, nil
}

// Update replaces the editable fields of a therapist. The colour is kept when none is given.
func (s *TherapistService) Update(ctx context.Context, id string, req dto.UpdateTherapistRequest) (*models.Therapist, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid therapist payload")
	}
	therapist, err := s.store.FindTherapist(ctx, id)
	if err != nil {
		return nil, lookupError(err, "therapist")
	}
	if color := strings.TrimSpace(req.Color); color != "" {
		therapist.Color = strings.ToUpper(color)
	}
	applyTherapist(therapist, req, s.now())
	if err := s.store.UpdateTherapist(ctx, therapist); err != nil {
		return nil, lookupError(err, "therapist")
	}
	return therapist, nil
}

func applyTherapist(therapist *models.Therapist, req dto.CreateTherapistRequest, now time.Time) {
	specialties := make([]string, 0, len(req.Specialties))
	seen := make(map[string]struct{}, len(req.Specialties))
	for _, specialty := range req.Specialties {
		key := scheduling.NormalizeSpecialty(specialty)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		specialties = append(specialties, strings.TrimSpace(specialty))
	}
	therapist.Name = strings.TrimSpace(req.Name)
	therapist.LicenseNumber = strings.TrimSpace(req.LicenseNumber)
	therapist.Specialties = specialties
	therapist.WeeklyWorkloadHours = req.WeeklyWorkloadHours
	therapist.Email = strings.TrimSpace(req.Email)
	therapist.Phone = strings.TrimSpace(req.Phone)
	therapist.UpdatedAt = now
}

// nextPaletteColor picks the first palette colour nobody uses, cycling once all are taken.
func nextPaletteColor(existing []models.Therapist) string {
	used := make(map[string]struct{}, len(existing))
	for _, t := range existing {
		used[strings.ToUpper(t.Color)] = struct{}{}
	}
	for _, color := range models.TherapistPalette {
		if _, taken := used[color]; !taken {
			return color
		}
	}
	return models.TherapistPalette[len(existing)%len(models.TherapistPalette)]
}
