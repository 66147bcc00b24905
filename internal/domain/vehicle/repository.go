package vehicle

import (
	"context"
)

// Repository defines the operations for persisting and retrieving Vehicle entities.
type Repository interface {
	Create(ctx context.Context, v *Vehicle) error
	GetByID(ctx context.Context, id int64) (*Vehicle, error)
	GetByPlate(ctx context.Context, plate string) (*Vehicle, error)
	Update(ctx context.Context, v *Vehicle) error
	ListActive(ctx context.Context) ([]*Vehicle, error)
	// ListActiveByPlateDigit returns active vehicles whose plate ends in digit.
	ListActiveByPlateDigit(ctx context.Context, digit int) ([]*Vehicle, error)
}
