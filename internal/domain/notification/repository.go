// internal/domain/notification/repository.go
package notification

import (
	"context"
	"time"
)

// Repository persists the notification run log.
type Repository interface {
	// CreateRun inserts the run. A second SCHEDULED run for the same fire date
	// and digit is rejected, which is how a scheduled slot is claimed.
	CreateRun(ctx context.Context, run *Run) error
	// FinishRun stores the final status, match count and error of a run.
	FinishRun(ctx context.Context, run *Run) error
	// GetRunByDateAndDigit returns the latest SCHEDULED run for a fire date and
	// digit. Manual runs are ignored.
	GetRunByDateAndDigit(ctx context.Context, fireDate time.Time, digit Digit) (*Run, error)
	ListRuns(ctx context.Context, limit int) ([]*Run, error)
}
