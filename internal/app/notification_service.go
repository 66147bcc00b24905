// internal/app/notification_service.go
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fleet_backoffice/internal/domain/actor"
	"fleet_backoffice/internal/domain/notification"
	"fleet_backoffice/internal/domain/vehicle"
	idb "fleet_backoffice/internal/infra/database"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// TimestampLayout is the format of Batch.Timestamp.
const TimestampLayout = "2006-01-02 15:04:05"

var ErrDispatchFailed = fmt.Errorf("notification dispatch failed")

// NotificationService runs plate-digit notification batches.
type NotificationService interface {
	// RunScheduled fires every batch due today, plus missed ones inside the
	// catch-up window, skipping any (fire date, digit) that already has a
	// scheduled run. Concurrent calls dispatch each slot at most once.
	RunScheduled(ctx context.Context, who actor.Actor) ([]*RunResult, error)
	// RunManual fires the batch for digit now, bypassing the schedule.
	RunManual(ctx context.Context, who actor.Actor, digit int) (*RunResult, error)
	NextOccurrence() notification.Occurrence
	ListRuns(ctx context.Context, limit int) ([]*notification.Run, error)
}

// RunResult is the recorded run and the vehicles it matched.
type RunResult struct {
	Run      *notification.Run
	Vehicles []*vehicle.Vehicle
}

// NotificationServiceImpl implements the NotificationService interface.
type NotificationServiceImpl struct {
	vehicleRepo vehicle.Repository
	notifRepo   notification.Repository
	dispatcher  notification.Dispatcher
	logger      *logrus.Entry
	now         func() time.Time
	catchUpDays int
}

func NewNotificationServiceImpl(
	vr vehicle.Repository,
	nr notification.Repository,
	dispatcher notification.Dispatcher,
	logger *logrus.Entry,
	now func() time.Time,
	catchUpDays int,
) *NotificationServiceImpl {
	if now == nil {
		now = time.Now
	}
	return &NotificationServiceImpl{
		vehicleRepo: vr,
		notifRepo:   nr,
		dispatcher:  dispatcher,
		logger:      logger,
		now:         now,
		catchUpDays: catchUpDays,
	}
}

func (s *NotificationServiceImpl) RunScheduled(ctx context.Context, who actor.Actor) ([]*RunResult, error) {
	today := s.now()
	occurrences := notification.OccurrencesWithin(today, s.catchUpDays)
	if len(occurrences) == 0 {
		next := notification.NextScheduledOccurrence(today)
		s.logger.WithFields(logrus.Fields{
			"next_digit":     next.Digit,
			"next_fire_date": next.FireDate.Format("2006-01-02"),
		}).Info("No plate notification scheduled for today.")
		return nil, nil
	}

	var (
		results []*RunResult
		errs    []error
	)
	for _, occ := range occurrences {
		logCtx := s.logger.WithFields(logrus.Fields{
			"digit":     occ.Digit,
			"fire_date": occ.FireDate.Format("2006-01-02"),
		})

		existing, err := s.notifRepo.GetRunByDateAndDigit(ctx, occ.FireDate, occ.Digit)
		if err != nil && !errors.Is(err, idb.ErrRunNotFound) {
			logCtx.WithError(err).Error("Failed to check for an existing notification run.")
			errs = append(errs, fmt.Errorf("failed to check run for digit %d: %w", occ.Digit, err))
			continue
		}
		if existing != nil {
			logCtx.WithField("run_id", existing.RunID).Info("Notification run already recorded. Skipping.")
			continue
		}

		res, err := s.execute(ctx, who, occ.Digit, occ.FireDate, notification.TriggerScheduled)
		if errors.Is(err, idb.ErrRunAlreadyRecorded) {
			logCtx.Info("Scheduled slot claimed by another run. Skipping.")
			continue
		}
		if res != nil {
			results = append(results, res)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return results, errors.Join(errs...)
}

func (s *NotificationServiceImpl) RunManual(ctx context.Context, who actor.Actor, digit int) (*RunResult, error) {
	d, err := notification.ValidateDigit(digit)
	if err != nil {
		s.logger.WithField("digit", digit).WithField("actor", who.String()).Warn("Rejected manual notification run.")
		return nil, err
	}
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return s.execute(ctx, who, d, today, notification.TriggerManual)
}

func (s *NotificationServiceImpl) NextOccurrence() notification.Occurrence {
	return notification.NextScheduledOccurrence(s.now())
}

func (s *NotificationServiceImpl) ListRuns(ctx context.Context, limit int) ([]*notification.Run, error) {
	runs, err := s.notifRepo.ListRuns(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notification runs: %w", err)
	}
	return runs, nil
}

// execute records the run as PENDING, then filters the partition, dispatches
// when it is not empty and stores the final status. For scheduled runs the
// insert claims the (fire date, digit) slot, so a concurrent caller gets
// idb.ErrRunAlreadyRecorded and never dispatches. A dispatch failure is
// recorded and returned, never retried.
func (s *NotificationServiceImpl) execute(ctx context.Context, who actor.Actor, digit notification.Digit, fireDate time.Time, trigger notification.Trigger) (*RunResult, error) {
	run := &notification.Run{
		RunID:       uuid.New(),
		FireDate:    fireDate,
		Digit:       digit,
		Trigger:     trigger,
		Status:      notification.RunStatusPending,
		TriggeredBy: who.ID,
	}
	logCtx := s.logger.WithFields(logrus.Fields{
		"run_id":  run.RunID,
		"digit":   digit,
		"trigger": trigger,
		"actor":   who.String(),
	})

	if err := s.notifRepo.CreateRun(ctx, run); err != nil {
		if errors.Is(err, idb.ErrRunAlreadyRecorded) {
			return nil, err
		}
		logCtx.WithError(err).Error("Failed to record notification run.")
		return nil, fmt.Errorf("failed to record notification run %s: %w", run.RunID, err)
	}
	logCtx.Info("Starting plate notification run.")

	candidates, err := s.vehicleRepo.ListActiveByPlateDigit(ctx, int(digit))
	if err != nil {
		logCtx.WithError(err).Error("Failed to list vehicles for digit.")
		run.Status = notification.RunStatusFailed
		run.Error = sql.NullString{String: err.Error(), Valid: true}
		listErr := fmt.Errorf("failed to list vehicles for digit %d: %w", digit, err)
		return &RunResult{Run: run}, errors.Join(listErr, s.finish(ctx, logCtx, run))
	}
	matched := notification.FilterByDigit(candidates, digit)
	run.MatchedCount = len(matched)
	result := &RunResult{Run: run, Vehicles: matched}

	if len(matched) == 0 {
		logCtx.Info("No vehicles match digit. Nothing to send.")
		run.Status = notification.RunStatusEmpty
		return result, s.finish(ctx, logCtx, run)
	}

	batch := notification.Batch{
		RunID:     run.RunID,
		Digit:     digit,
		Vehicles:  matched,
		Timestamp: s.now().Format(TimestampLayout),
	}
	err = s.dispatcher.Dispatch(ctx, batch)
	switch {
	case errors.Is(err, notification.ErrNotDelivered):
		logCtx.WithField("matched", len(matched)).Warn("Batch was logged but not delivered.")
		run.Status = notification.RunStatusLogged
		run.Error = sql.NullString{String: err.Error(), Valid: true}
		return result, s.finish(ctx, logCtx, run)
	case err != nil:
		logCtx.WithError(err).WithField("matched", len(matched)).Error("Dispatch failed.")
		run.Status = notification.RunStatusFailed
		run.Error = sql.NullString{String: err.Error(), Valid: true}
		dispatchErr := fmt.Errorf("%w: %w", ErrDispatchFailed, err)
		if finErr := s.finish(ctx, logCtx, run); finErr != nil {
			return result, errors.Join(dispatchErr, finErr)
		}
		return result, dispatchErr
	}

	run.Status = notification.RunStatusSent
	logCtx.WithField("matched", len(matched)).Info("Plate notification dispatched.")
	return result, s.finish(ctx, logCtx, run)
}

func (s *NotificationServiceImpl) finish(ctx context.Context, logCtx *logrus.Entry, run *notification.Run) error {
	if err := s.notifRepo.FinishRun(ctx, run); err != nil {
		logCtx.WithError(err).Error("Failed to store notification run outcome.")
		return fmt.Errorf("failed to store outcome of notification run %s: %w", run.RunID, err)
	}
	return nil
}
