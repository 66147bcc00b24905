// internal/domain/notification/dispatch.go
package notification

import (
	"context"
	"fmt"

	"fleet_backoffice/internal/domain/vehicle"

	"github.com/google/uuid"
)

// Batch is what a dispatcher receives once a digit has fired and matched vehicles.
type Batch struct {
	RunID     uuid.UUID
	Digit     Digit
	Vehicles  []*vehicle.Vehicle
	Timestamp string
}

// ErrNotDelivered is returned by a dispatcher that accepted the batch but has
// no recipient to deliver it to. The run is recorded as LOGGED, not failed.
var ErrNotDelivered = fmt.Errorf("batch was not delivered to a recipient")

// Dispatcher delivers a batch. Delivery is fire-and-forget: callers surface
// the error but never retry.
type Dispatcher interface {
	Dispatch(ctx context.Context, batch Batch) error
}
