package trip

import "context"

// ListFilter narrows List. Zero values mean no restriction.
type ListFilter struct {
	PlateNumber string
	Limit       int
	Offset      int
}

// Repository defines the operations for persisting and retrieving Trip entities.
type Repository interface {
	Create(ctx context.Context, t *Trip) error
	GetByID(ctx context.Context, id int64) (*Trip, error)
	Update(ctx context.Context, t *Trip) error
	List(ctx context.Context, filter ListFilter) ([]*Trip, error)
}
