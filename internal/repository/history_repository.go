package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/noah-isme/clinic-scheduler-api/internal/models"
)

// HistoryRepository mirrors the schedule ledger into Postgres.
type HistoryRepository struct {
	db *sqlx.DB
}

// NewHistoryRepository constructs the repository.
func NewHistoryRepository(db *sqlx.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

type historyRow struct {
	Sequence       int64          `db:"seq"`
	ID             string         `db:"id"`
	ScheduleID     string         `db:"schedule_id"`
	ChangeType     string         `db:"change_type"`
	PreviousValues types.JSONText `db:"previous_values"`
	NewValues      types.JSONText `db:"new_values"`
	ChangedFields  types.JSONText `db:"changed_fields"`
	Reason         string         `db:"reason"`
	ChangedBy      string         `db:"changed_by"`
	ChangedAt      time.Time      `db:"changed_at"`
}

const historyColumns = `seq, id, schedule_id, change_type, previous_values, new_values, changed_fields, reason, changed_by, changed_at`

// Append inserts one ledger entry. Entries are never updated or deleted.
func (r *HistoryRepository) Append(ctx context.Context, entry *models.ScheduleHistory) error {
	row, err := toHistoryRow(entry)
	if err != nil {
		return err
	}
	const query = `INSERT INTO schedule_history
	(id, schedule_id, change_type, previous_values, new_values, changed_fields, reason, changed_by, changed_at)
	VALUES (:id, :schedule_id, :change_type, :previous_values, :new_values, :changed_fields, :reason, :changed_by, :changed_at)`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("append schedule history: %w", err)
	}
	return nil
}

// ListAll returns the whole ledger in commit order, ready for replay.
func (r *HistoryRepository) ListAll(ctx context.Context) ([]models.ScheduleHistory, error) {
	query := `SELECT ` + historyColumns + ` FROM schedule_history ORDER BY seq ASC`
	var rows []historyRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list schedule history: %w", err)
	}
	return fromHistoryRows(rows)
}

// ListBySchedule returns the entries of one session, newest first.
func (r *HistoryRepository) ListBySchedule(ctx context.Context, scheduleID string) ([]models.ScheduleHistory, error) {
	query := `SELECT ` + historyColumns + ` FROM schedule_history WHERE schedule_id = $1 ORDER BY changed_at DESC, seq DESC`
	var rows []historyRow
	if err := r.db.SelectContext(ctx, &rows, query, scheduleID); err != nil {
		return nil, fmt.Errorf("list schedule history for %s: %w", scheduleID, err)
	}
	return fromHistoryRows(rows)
}

func toHistoryRow(entry *models.ScheduleHistory) (historyRow, error) {
	previous, err := marshalJSON(entry.PreviousValues, "{}")
	if err != nil {
		return historyRow{}, fmt.Errorf("encode previous values: %w", err)
	}
	next, err := marshalJSON(entry.NewValues, "{}")
	if err != nil {
		return historyRow{}, fmt.Errorf("encode new values: %w", err)
	}
	fields, err := marshalJSON(entry.ChangedFields, "[]")
	if err != nil {
		return historyRow{}, fmt.Errorf("encode changed fields: %w", err)
	}
	return historyRow{
		Sequence:       entry.Sequence,
		ID:             entry.ID,
		ScheduleID:     entry.ScheduleID,
		ChangeType:     string(entry.ChangeType),
		PreviousValues: previous,
		NewValues:      next,
		ChangedFields:  fields,
		Reason:         entry.Reason,
		ChangedBy:      entry.ChangedBy,
		ChangedAt:      entry.ChangedAt,
	}, nil
}

func fromHistoryRows(rows []historyRow) ([]models.ScheduleHistory, error) {
	out := make([]models.ScheduleHistory, 0, len(rows))
	for _, row := range rows {
		entry := models.ScheduleHistory{
			ID:         row.ID,
			Sequence:   row.Sequence,
			ScheduleID: row.ScheduleID,
			ChangeType: models.ChangeType(row.ChangeType),
			Reason:     row.Reason,
			ChangedBy:  row.ChangedBy,
			ChangedAt:  row.ChangedAt.UTC(),
		}
		if err := row.PreviousValues.Unmarshal(&entry.PreviousValues); err != nil {
			return nil, fmt.Errorf("decode previous values of %s: %w", row.ID, err)
		}
		if err := row.NewValues.Unmarshal(&entry.NewValues); err != nil {
			return nil, fmt.Errorf("decode new values of %s: %w", row.ID, err)
		}
		if err := row.ChangedFields.Unmarshal(&entry.ChangedFields); err != nil {
			return nil, fmt.Errorf("decode changed fields of %s: %w", row.ID, err)
		}
		out = append(out, entry)
	}
	return out, nil
}

func marshalJSON(value interface{}, empty string) (types.JSONText, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	if string(raw) == "null" {
		return types.JSONText(empty), nil
	}
	return types.JSONText(raw), nil
}
