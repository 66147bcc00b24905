// internal/domain/notification/run.go
package notification

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Run is a single dispatch attempt for one digit partition.
// Corresponds to the 'notification_runs' table.
type Run struct {
	ID           int64
	RunID        uuid.UUID // correlates log lines with the stored run
	FireDate     time.Time // date-only; the scheduled day, or the manual run day
	Digit        Digit
	Trigger      Trigger
	Status       RunStatus
	MatchedCount int
	TriggeredBy  int64          // acting identity, 0 for the system
	Error        sql.NullString // dispatch error text when Status is FAILED
	CreatedAt    time.Time
}
