package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/clinic-scheduler-api/internal/dto"
	"github.com/noah-isme/clinic-scheduler-api/internal/models"
	"github.com/noah-isme/clinic-scheduler-api/internal/scheduling"
	appErrors "github.com/noah-isme/clinic-scheduler-api/pkg/errors"
)

type childStore interface {
	CreateChild(ctx context.Context, child *models.Child) error
	UpdateChild(ctx context.Context, child *models.Child) error
	FindChild(ctx context.Context, id string) (*models.Child, error)
	ListChildren(ctx context.Context) ([]models.Child, error)
}

// ChildService orchestrates child records and their weekly therapy goals.
type ChildService struct {
	store     childStore
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewChildService constructs a ChildService.
func NewChildService(store childStore, validate *validator.Validate, logger *zap.Logger) *ChildService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChildService{store: store, validator: validate, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// List returns children ordered by registration plus pagination data.
func (s *ChildService) List(ctx context.Context, filter models.ChildFilter) ([]models.Child, *models.Pagination, error) {
	children, err := s.store.ListChildren(ctx)
	if err != nil {
		return nil, nil, internalError(err, "failed to list children")
	}
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	matched := make([]models.Child, 0, len(children))
	for _, child := range children {
		if search != "" && !strings.Contains(strings.ToLower(child.Name), search) {
			continue
		}
		matched = append(matched, child)
	}
	page, pagination := paginate(matched, filter.Page, filter.PageSize)
	return page, pagination, nil
}

// Get returns a child by id.
func (s *ChildService) Get(ctx context.Context, id string) (*models.Child, error) {
	child, err := s.store.FindChild(ctx, id)
	if err != nil {
		return nil, lookupError(err, "child")
	}
	return child, nil
}

// Create registers a child.
func (s *ChildService) Create(ctx context.Context, req dto.CreateChildRequest) (*models.Child, error) {
	child := &models.Child{ID: uuid.NewString()}
	if err := s.apply(child, req); err != nil {
		return nil, err
	}
	child.CreatedAt = child.UpdatedAt
	if err := s.store.CreateChild(ctx, child); err != nil {
		return nil, internalError(err, "failed to create child")
	}
	s.logger.Info("child registered", zap.String("child_id", child.ID), zap.Int("weekly_therapies", len(child.WeeklyTherapies)))
	return child, nil
}

// Update replaces the editable fields of a child.
func (s *ChildService) Update(ctx context.Context, id string, req dto.UpdateChildRequest) (*models.Child, error) {
	child, err := s.store.FindChild(ctx, id)
	if err != nil {
		return nil, lookupError(err, "child")
	}
	if err := s.apply(child, req); err != nil {
		return nil, err
	}
	if err := s.store.UpdateChild(ctx, child); err != nil {
		return nil, lookupError(err, "child")
	}
	return child, nil
}

func (s *ChildService) apply(child *models.Child, req dto.CreateChildRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return validationError(err, "invalid child payload")
	}
	var birthDate *time.Time
	if raw := strings.TrimSpace(req.BirthDate); raw != "" {
		parsed, err := scheduling.ParseDate(raw)
		if err != nil {
			return validationError(err, "birth_date must be YYYY-MM-DD")
		}
		if parsed.After(s.now()) {
			return appErrors.Clone(appErrors.ErrValidation, "birth_date cannot be in the future")
		}
		birthDate = &parsed
	}

	therapies := make([]models.WeeklyTherapy, 0, len(req.WeeklyTherapies))
	seen := make(map[string]struct{}, len(req.WeeklyTherapies))
	for _, therapy := range req.WeeklyTherapies {
		key := scheduling.NormalizeSpecialty(therapy.Specialty)
		if _, dup := seen[key]; dup {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("weekly therapy %q listed twice", therapy.Specialty))
		}
		seen[key] = struct{}{}
		therapies = append(therapies, models.WeeklyTherapy{
			Specialty:     strings.TrimSpace(therapy.Specialty),
			HoursRequired: therapy.HoursRequired,
		})
	}
	guardians := req.Guardians
	if guardians == nil {
		guardians = []models.Guardian{}
	}

	child.Name = strings.TrimSpace(req.Name)
	child.BirthDate = birthDate
	child.Gender = strings.TrimSpace(req.Gender)
	child.Diagnosis = strings.TrimSpace(req.Diagnosis)
	child.Guardians = guardians
	child.WeeklyTherapies = therapies
	child.UpdatedAt = s.now()
	return nil
}
