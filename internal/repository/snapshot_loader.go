package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/noah-isme/clinic-scheduler-api/internal/models"
	"github.com/noah-isme/clinic-scheduler-api/internal/scheduling"
)

// ClinicSnapshot is a point-in-time export of a clinic's records.
type ClinicSnapshot struct {
	Children   []models.Child
	Therapists []models.Therapist
	Schedules  []models.Schedule
}

type snapshotFile struct {
	Children []struct {
		ID              string                 `json:"id"`
		Name            string                 `json:"name"`
		BirthDate       string                 `json:"birth_date"`
		Gender          string                 `json:"gender"`
		Diagnosis       string                 `json:"diagnosis"`
		Guardians       []models.Guardian      `json:"guardians"`
		WeeklyTherapies []models.WeeklyTherapy `json:"weekly_therapies"`
	} `json:"children"`
	Therapists []struct {
		ID                  string   `json:"id"`
		Name                string   `json:"name"`
		LicenseNumber       string   `json:"license_number"`
		Specialties         []string `json:"specialties"`
		WeeklyWorkloadHours float64  `json:"weekly_workload_hours"`
		Color               string   `json:"color"`
		Email               string   `json:"email"`
		Phone               string   `json:"phone"`
	} `json:"therapists"`
	Schedules []struct {
		ID           string `json:"id"`
		ChildID      string `json:"child_id"`
		TherapistID  string `json:"therapist_id"`
		Date         string `json:"date"`
		Time         string `json:"time"`
		Duration     int    `json:"duration"`
		Activity     string `json:"activity"`
		Status       string `json:"status"`
		Observations string `json:"observations"`
	} `json:"schedules"`
}

// LoadSnapshotFile reads a JSON snapshot from disk.
func LoadSnapshotFile(path string, defaultDuration int) (*ClinicSnapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()
	return DecodeSnapshot(f, defaultDuration)
}

// DecodeSnapshot parses and checks a JSON snapshot. Dates use YYYY-MM-DD and times HH:mm.
func DecodeSnapshot(r io.Reader, defaultDuration int) (*ClinicSnapshot, error) {
	var raw snapshotFile
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if defaultDuration <= 0 {
		defaultDuration = 60
	}
	now := time.Now().UTC()
	snap := &ClinicSnapshot{}

	for _, c := range raw.Children {
		seen := make(map[string]struct{}, len(c.WeeklyTherapies))
		for _, therapy := range c.WeeklyTherapies {
			key := scheduling.NormalizeSpecialty(therapy.Specialty)
			if key == "" {
				return nil, fmt.Errorf("child %s: weekly therapy without specialty", c.ID)
			}
			if _, dup := seen[key]; dup {
				return nil, fmt.Errorf("child %s: weekly therapy %q listed twice", c.ID, therapy.Specialty)
			}
			seen[key] = struct{}{}
		}
		child := models.Child{
			ID:              c.ID,
			Name:            c.Name,
			Gender:          c.Gender,
			Diagnosis:       c.Diagnosis,
			Guardians:       c.Guardians,
			WeeklyTherapies: c.WeeklyTherapies,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if c.BirthDate != "" {
			birth, err := scheduling.ParseDate(c.BirthDate)
			if err != nil {
				return nil, fmt.Errorf("child %s: %w", c.ID, err)
			}
			child.BirthDate = &birth
		}
		snap.Children = append(snap.Children, child)
	}

	for _, t := range raw.Therapists {
		if t.WeeklyWorkloadHours <= 0 {
			return nil, fmt.Errorf("therapist %s: weekly workload hours must be positive", t.ID)
		}
		specialties := make([]string, 0, len(t.Specialties))
		seen := make(map[string]struct{}, len(t.Specialties))
		for _, specialty := range t.Specialties {
			key := scheduling.NormalizeSpecialty(specialty)
			if _, dup := seen[key]; dup || key == "" {
				continue
			}
			seen[key] = struct{}{}
			specialties = append(specialties, strings.TrimSpace(specialty))
		}
		if len(specialties) == 0 {
			return nil, fmt.Errorf("therapist %s: at least one specialty is required", t.ID)
		}
		snap.Therapists = append(snap.Therapists, models.Therapist{
			ID:                  t.ID,
			Name:                t.Name,
			LicenseNumber:       t.LicenseNumber,
			Specialties:         specialties,
			WeeklyWorkloadHours: t.WeeklyWorkloadHours,
			Color:               t.Color,
			Email:               t.Email,
			Phone:               t.Phone,
			CreatedAt:           now,
			UpdatedAt:           now,
		})
	}

	for _, s := range raw.Schedules {
		date, err := scheduling.ParseDate(s.Date)
		if err != nil {
			return nil, fmt.Errorf("schedule %s: %w", s.ID, err)
		}
		if s.Duration == 0 {
			s.Duration = defaultDuration
		}
		if _, err := scheduling.SessionInterval(s.Time, s.Duration); err != nil {
			return nil, fmt.Errorf("schedule %s: %w", s.ID, err)
		}
		status := models.ScheduleStatus(s.Status)
		if status == "" {
			status = models.ScheduleStatusScheduled
		}
		if !status.Valid() {
			return nil, fmt.Errorf("schedule %s: unknown status %q", s.ID, s.Status)
		}
		snap.Schedules = append(snap.Schedules, models.Schedule{
			ID:           s.ID,
			ChildID:      s.ChildID,
			TherapistID:  s.TherapistID,
			Date:         date,
			Time:         s.Time,
			Duration:     s.Duration,
			Activity:     s.Activity,
			Status:       status,
			Observations: s.Observations,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}
	return snap, nil
}

// Seed loads a snapshot into an empty store. Seeded sessions carry no ledger entries.
// Nothing is stored when a session references an unknown child or therapist.
func (s *ClinicStore) Seed(ctx context.Context, snap *ClinicSnapshot) error {
	if snap == nil {
		return nil
	}
	if err := s.checkReferences(ctx, snap); err != nil {
		return err
	}
	for i := range snap.Children {
		if err := s.CreateChild(ctx, &snap.Children[i]); err != nil {
			return err
		}
	}
	for i := range snap.Therapists {
		if err := s.CreateTherapist(ctx, &snap.Therapists[i]); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, schedule := range snap.Schedules {
		if _, exists := s.schedules[schedule.ID]; exists {
			return fmt.Errorf("schedule %s: %w", schedule.ID, ErrDuplicateID)
		}
		s.schedules[schedule.ID] = schedule
		s.scheduleOrder = append(s.scheduleOrder, schedule.ID)
	}
	s.version++
	return nil
}

func (s *ClinicStore) checkReferences(ctx context.Context, snap *ClinicSnapshot) error {
	children := make(map[string]struct{}, len(snap.Children))
	for _, c := range snap.Children {
		children[c.ID] = struct{}{}
	}
	therapists := make(map[string]struct{}, len(snap.Therapists))
	for _, t := range snap.Therapists {
		therapists[t.ID] = struct{}{}
	}
	for _, schedule := range snap.Schedules {
		if _, ok := children[schedule.ChildID]; !ok {
			if _, err := s.FindChild(ctx, schedule.ChildID); err != nil {
				return fmt.Errorf("schedule %s: child %q: %w", schedule.ID, schedule.ChildID, err)
			}
		}
		if _, ok := therapists[schedule.TherapistID]; !ok {
			if _, err := s.FindTherapist(ctx, schedule.TherapistID); err != nil {
				return fmt.Errorf("schedule %s: therapist %q: %w", schedule.ID, schedule.TherapistID, err)
			}
		}
	}
	return nil
}
