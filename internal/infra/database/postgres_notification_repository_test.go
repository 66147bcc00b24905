package database

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"fleet_backoffice/internal/domain/notification"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationRepository_CreateRun(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresNotificationRepository(db)
	created := time.Date(2025, 1, 27, 8, 0, 1, 0, time.UTC)

	run := &notification.Run{
		RunID:        uuid.New(),
		FireDate:     time.Date(2025, 1, 27, 8, 0, 0, 0, time.UTC),
		Digit:        2,
		Trigger:      notification.TriggerScheduled,
		Status:       notification.RunStatusSent,
		MatchedCount: 4,
	}

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO notification_runs")).
		WithArgs(sqlmock.AnyArg(), "2025-01-27", 2, "SCHEDULED", "SENT", 4, int64(0), sql.NullString{}).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(11), created))

	require.NoError(t, repo.CreateRun(context.Background(), run))
	assert.Equal(t, int64(11), run.ID)
	assert.Equal(t, created, run.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_GetRunByDateAndDigit(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresNotificationRepository(db)
	runID := uuid.New()
	fire := time.Date(2025, 12, 27, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE fire_date = $1 AND digit = $2 AND trigger = 'SCHEDULED'")).
		WithArgs("2025-12-27", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "run_id", "fire_date", "digit", "trigger", "status", "matched_count", "triggered_by", "error", "created_at"}).
			AddRow(int64(3), runID.String(), fire, int64(1), "SCHEDULED", "FAILED", int64(2), int64(0), "chat not found", fire))

	got, err := repo.GetRunByDateAndDigit(context.Background(), fire, 1)
	require.NoError(t, err)
	assert.Equal(t, runID, got.RunID)
	assert.Equal(t, notification.Digit(1), got.Digit)
	assert.Equal(t, notification.RunStatusFailed, got.Status)
	assert.Equal(t, "chat not found", got.Error.String)
}

func TestNotificationRepository_GetRunByDateAndDigitNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresNotificationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM notification_runs")).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetRunByDateAndDigit(context.Background(), time.Now(), 4)
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestNotificationRepository_CreateRunScheduledSlotTaken(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresNotificationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO notification_runs")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "notification_runs_scheduled_slot_key"})

	err := repo.CreateRun(context.Background(), &notification.Run{
		RunID:    uuid.New(),
		FireDate: time.Date(2025, 12, 27, 0, 0, 0, 0, time.UTC),
		Digit:    1,
		Trigger:  notification.TriggerScheduled,
		Status:   notification.RunStatusPending,
	})
	assert.ErrorIs(t, err, ErrRunAlreadyRecorded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_FinishRun(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresNotificationRepository(db)
	run := &notification.Run{
		RunID:        uuid.New(),
		Status:       notification.RunStatusFailed,
		MatchedCount: 3,
		Error:        sql.NullString{String: "chat not found", Valid: true},
	}

	mock.ExpectExec(regexp.QuoteMeta("UPDATE notification_runs")).
		WithArgs("FAILED", 3, sql.NullString{String: "chat not found", Valid: true}, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.FinishRun(context.Background(), run))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE notification_runs")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.FinishRun(context.Background(), run), ErrRunNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
