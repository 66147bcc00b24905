package vehicle

import (
	"database/sql"
	"time"
)

// Vehicle is an entry in the fleet registry.
type Vehicle struct {
	ID          int64
	PlateNumber string
	Model       sql.NullString
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
