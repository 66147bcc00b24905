package scheduler

import (
	"context"
	"fmt"
	"time"

	"fleet_backoffice/internal/app"
	"fleet_backoffice/internal/domain/actor"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ScheduledRunner is the part of app.NotificationService the cron job needs.
type ScheduledRunner interface {
	RunScheduled(ctx context.Context, who actor.Actor) ([]*app.RunResult, error)
}

// PlateNotificationScheduler checks once a day whether a plate-digit batch is
// due and fires it.
type PlateNotificationScheduler struct {
	cronEngine *cron.Cron
	runner     ScheduledRunner
	logger     *logrus.Entry
	cronSpec   string
	timeout    time.Duration
}

func NewPlateNotificationScheduler(
	runner ScheduledRunner,
	logger *logrus.Entry,
	loc *time.Location,
	cronSpec string, // e.g. "0 8 * * *" (08:00 daily)
	timeout time.Duration,
) *PlateNotificationScheduler {
	if loc == nil {
		loc = time.Local
	}
	return &PlateNotificationScheduler{
		cronEngine: cron.New(cron.WithLocation(loc)),
		runner:     runner,
		logger:     logger,
		cronSpec:   cronSpec,
		timeout:    timeout,
	}
}

func (s *PlateNotificationScheduler) Start() error {
	s.logger.Info("Starting plate notification scheduler...")

	if _, err := s.cronEngine.AddFunc(s.cronSpec, s.runDaily); err != nil {
		return fmt.Errorf("could not add plate notification cron job %q: %w", s.cronSpec, err)
	}

	s.cronEngine.Start()
	s.logger.WithField("spec", s.cronSpec).Info("Plate notification scheduler started.")
	return nil
}

// runDaily is the cron job body. Errors are logged; the next day's run is
// unaffected.
func (s *PlateNotificationScheduler) runDaily() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	s.logger.Info("Cron job triggered for plate notification check.")
	results, err := s.runner.RunScheduled(ctx, actor.System)
	for _, res := range results {
		s.logger.WithFields(logrus.Fields{
			"run_id":  res.Run.RunID,
			"digit":   res.Run.Digit,
			"status":  res.Run.Status,
			"matched": res.Run.MatchedCount,
		}).Info("Scheduled notification run finished.")
	}
	if err != nil {
		s.logger.WithError(err).Error("Error during scheduled plate notification run.")
	}
}

func (s *PlateNotificationScheduler) Stop() {
	s.logger.Info("Stopping plate notification scheduler...")
	ctx := s.cronEngine.Stop() // waits for running jobs
	<-ctx.Done()
	s.logger.Info("Plate notification scheduler gracefully stopped.")
}
