package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/clinic-scheduler-api/internal/dto"
	"github.com/noah-isme/clinic-scheduler-api/internal/models"
	"github.com/noah-isme/clinic-scheduler-api/internal/repository"
	appErrors "github.com/noah-isme/clinic-scheduler-api/pkg/errors"
)

func TestChildServiceCreateAndUpdate(t *testing.T) {
	svc := NewChildService(repository.NewClinicStore(), nil, nil)
	ctx := context.Background()

	child, err := svc.Create(ctx, dto.CreateChildRequest{
		Name:      "  Ana Souza ",
		BirthDate: "2019-03-14",
		Guardians: []models.Guardian{{Name: "Maria", Relationship: "mother"}},
		WeeklyTherapies: []models.WeeklyTherapy{
			{Specialty: "Fonoaudiologia", HoursRequired: 2},
			{Specialty: "Terapia Ocupacional", HoursRequired: 1},
		},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, child.ID)
	assert.Equal(t, "Ana Souza", child.Name)
	require.NotNil(t, child.BirthDate)
	assert.Equal(t, "2019-03-14", child.BirthDate.Format("2006-01-02"))

	updated, err := svc.Update(ctx, child.ID, dto.UpdateChildRequest{
		Name:            "Ana Souza",
		WeeklyTherapies: []models.WeeklyTherapy{{Specialty: "Psicologia", HoursRequired: 1}},
	})
	require.NoError(t, err)
	assert.Nil(t, updated.BirthDate)
	assert.Equal(t, "Psicologia", updated.WeeklyTherapies[0].Specialty)
	assert.Empty(t, updated.Guardians)

	list, pagination, err := svc.List(ctx, models.ChildFilter{Search: "souza"})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, pagination.TotalCount)
}

func TestChildServiceRejectsBadPayloads(t *testing.T) {
	svc := NewChildService(repository.NewClinicStore(), nil, nil)
	ctx := context.Background()

	cases := map[string]dto.CreateChildRequest{
		"missing name":   {},
		"bad birth date": {Name: "Ana", BirthDate: "14/03/2019"},
		"future birth":   {Name: "Ana", BirthDate: "2999-01-01"},
		"negative hours": {Name: "Ana", WeeklyTherapies: []models.WeeklyTherapy{{Specialty: "Psicologia", HoursRequired: -1}}},
		"duplicate goal": {Name: "Ana", WeeklyTherapies: []models.WeeklyTherapy{
			{Specialty: "Psicologia", HoursRequired: 1},
			{Specialty: "psicologia ", HoursRequired: 2},
		}},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(ctx, req)
			assert.ErrorIs(t, err, appErrors.ErrValidation)
		})
	}

	_, err := svc.Update(ctx, "ghost", dto.UpdateChildRequest{Name: "Ana"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestTherapistServicePaletteAssignment(t *testing.T) {
	svc := NewTherapistService(repository.NewClinicStore(), nil, nil)
	ctx := context.Background()

	req := func(name, color string) dto.CreateTherapistRequest {
		return dto.CreateTherapistRequest{Name: name, Specialties: []string{"Psicologia"}, WeeklyWorkloadHours: 30, Color: color}
	}

	first, err := svc.Create(ctx, req("Carla", ""))
	require.NoError(t, err)
	assert.Equal(t, models.TherapistPalette[0], first.Color)

	custom, err := svc.Create(ctx, req("Diego", models.TherapistPalette[1]))
	require.NoError(t, err)
	assert.Equal(t, models.TherapistPalette[1], custom.Color)

	third, err := svc.Create(ctx, req("Elisa", ""))
	require.NoError(t, err)
	assert.Equal(t, models.TherapistPalette[2], third.Color)

	for i := 3; i < len(models.TherapistPalette); i++ {
		_, err := svc.Create(ctx, req("Extra", ""))
		require.NoError(t, err)
	}
	wrapped, err := svc.Create(ctx, req("Fabio", ""))
	require.NoError(t, err)
	assert.Equal(t, models.TherapistPalette[0], wrapped.Color)
}

func TestTherapistServiceValidationAndFilters(t *testing.T) {
	svc := NewTherapistService(repository.NewClinicStore(), nil, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, dto.CreateTherapistRequest{Name: "No hours", Specialties: []string{"Psicologia"}})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	_, err = svc.Create(ctx, dto.CreateTherapistRequest{Name: "No specialty", WeeklyWorkloadHours: 20})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	_, err = svc.Create(ctx, dto.CreateTherapistRequest{Name: "Bad color", Specialties: []string{"Psicologia"}, WeeklyWorkloadHours: 20, Color: "blue"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	created, err := svc.Create(ctx, dto.CreateTherapistRequest{
		Name:                "Carla",
		Specialties:         []string{"Fonoaudiologia", "fonoaudiologia", "Psicologia"},
		WeeklyWorkloadHours: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Fonoaudiologia", "Psicologia"}, created.Specialties)

	_, err = svc.Create(ctx, dto.CreateTherapistRequest{Name: "Diego", Specialties: []string{"Terapia Ocupacional"}, WeeklyWorkloadHours: 40})
	require.NoError(t, err)

	list, _, err := svc.List(ctx, models.TherapistFilter{Specialty: "psico"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Carla", list[0].Name)

	updated, err := svc.Update(ctx, created.ID, dto.UpdateTherapistRequest{Name: "Carla Lima", Specialties: []string{"Psicologia"}, WeeklyWorkloadHours: 25})
	require.NoError(t, err)
	assert.Equal(t, created.Color, updated.Color)
	assert.Equal(t, 25.0, updated.WeeklyWorkloadHours)

	_, err = svc.Get(ctx, "ghost")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
