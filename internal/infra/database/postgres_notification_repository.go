// internal/infra/database/postgres_notification_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"fleet_backoffice/internal/domain/notification"
)

var ErrRunNotFound = fmt.Errorf("notification run not found")
var ErrRunAlreadyRecorded = fmt.Errorf("scheduled notification run already recorded")

// scheduledSlotIndex enforces one SCHEDULED run per (fire_date, digit).
const scheduledSlotIndex = "notification_runs_scheduled_slot_key"

const runColumns = `id, run_id, fire_date, digit, trigger, status, matched_count, triggered_by, error, created_at`

type PostgresNotificationRepository struct {
	db *sql.DB
}

func NewPostgresNotificationRepository(db *sql.DB) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{db: db}
}

func (r *PostgresNotificationRepository) CreateRun(ctx context.Context, run *notification.Run) error {
	query := `INSERT INTO notification_runs (run_id, fire_date, digit, trigger, status, matched_count, triggered_by, error)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
               RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query,
		run.RunID, dateOnly(run.FireDate), int(run.Digit), string(run.Trigger), string(run.Status),
		run.MatchedCount, run.TriggeredBy, run.Error,
	).Scan(&run.ID, &run.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, scheduledSlotIndex) {
			return ErrRunAlreadyRecorded
		}
		return fmt.Errorf("error creating notification run: %w", err)
	}
	return nil
}

func (r *PostgresNotificationRepository) FinishRun(ctx context.Context, run *notification.Run) error {
	query := `UPDATE notification_runs
               SET status = $1, matched_count = $2, error = $3
               WHERE run_id = $4`
	res, err := r.db.ExecContext(ctx, query, string(run.Status), run.MatchedCount, run.Error, run.RunID)
	if err != nil {
		return fmt.Errorf("error finishing notification run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error finishing notification run: %w", err)
	}
	if n == 0 {
		return ErrRunNotFound
	}
	return nil
}

func (r *PostgresNotificationRepository) GetRunByDateAndDigit(ctx context.Context, fireDate time.Time, digit notification.Digit) (*notification.Run, error) {
	query := `SELECT ` + runColumns + ` FROM notification_runs
               WHERE fire_date = $1 AND digit = $2 AND trigger = 'SCHEDULED'
               ORDER BY created_at DESC LIMIT 1`
	run, err := scanRun(r.db.QueryRowContext(ctx, query, dateOnly(fireDate), int(digit)))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("error getting notification run by date and digit: %w", err)
	}
	return run, nil
}

func (r *PostgresNotificationRepository) ListRuns(ctx context.Context, limit int) ([]*notification.Run, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + runColumns + ` FROM notification_runs ORDER BY created_at DESC, id DESC LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing notification runs: %w", err)
	}
	defer rows.Close()

	runs := make([]*notification.Run, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning notification run: %w", err)
		}
		runs = append(runs, run)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notification runs: %w", err)
	}
	return runs, nil
}

func scanRun(row rowScanner) (*notification.Run, error) {
	run := &notification.Run{}
	var digit int
	var trigger, status string
	err := row.Scan(&run.ID, &run.RunID, &run.FireDate, &digit, &trigger, &status,
		&run.MatchedCount, &run.TriggeredBy, &run.Error, &run.CreatedAt)
	if err != nil {
		return nil, err
	}
	run.Digit = notification.Digit(digit)
	run.Trigger = notification.Trigger(trigger)
	run.Status = notification.RunStatus(status)
	return run, nil
}

// dateOnly keeps the calendar day of t so a DATE column compares by day.
func dateOnly(t time.Time) string {
	return t.Format("2006-01-02")
}
