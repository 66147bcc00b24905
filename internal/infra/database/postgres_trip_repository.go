package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"fleet_backoffice/internal/domain/trip"
)

var ErrTripNotFound = fmt.Errorf("trip not found")

const tripColumns = `id, plate_number, driver, origin, destination, company_or_assignee, amount,
               issuance_date, billing_date, due_date, withholding_rate,
               created_by, updated_by, created_at, updated_at`

type PostgresTripRepository struct {
	db *sql.DB
}

func NewPostgresTripRepository(db *sql.DB) *PostgresTripRepository {
	return &PostgresTripRepository{db: db}
}

func (r *PostgresTripRepository) Create(ctx context.Context, t *trip.Trip) error {
	query := `INSERT INTO trips (plate_number, driver, origin, destination, company_or_assignee, amount,
                                issuance_date, billing_date, due_date, withholding_rate, created_by, updated_by)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
               RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		t.PlateNumber, t.Driver, t.Origin, t.Destination, t.CompanyOrAssignee, t.Amount,
		t.IssuanceDate, t.BillingDate, t.DueDate, t.WithholdingRate, t.CreatedBy, t.UpdatedBy,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating trip: %w", err)
	}
	return nil
}

func (r *PostgresTripRepository) GetByID(ctx context.Context, id int64) (*trip.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1`
	t, err := scanTrip(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTripNotFound
		}
		return nil, fmt.Errorf("error getting trip by ID: %w", err)
	}
	return t, nil
}

func (r *PostgresTripRepository) Update(ctx context.Context, t *trip.Trip) error {
	query := `UPDATE trips
               SET plate_number = $1, driver = $2, origin = $3, destination = $4, company_or_assignee = $5,
                   amount = $6, issuance_date = $7, billing_date = $8, due_date = $9, withholding_rate = $10,
                   updated_by = $11, updated_at = NOW()
               WHERE id = $12
               RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		t.PlateNumber, t.Driver, t.Origin, t.Destination, t.CompanyOrAssignee,
		t.Amount, t.IssuanceDate, t.BillingDate, t.DueDate, t.WithholdingRate,
		t.UpdatedBy, t.ID,
	).Scan(&t.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrTripNotFound
		}
		return fmt.Errorf("error updating trip: %w", err)
	}
	return nil
}

func (r *PostgresTripRepository) List(ctx context.Context, filter trip.ListFilter) ([]*trip.Trip, error) {
	var (
		where []string
		args  []any
	)
	if filter.PlateNumber != "" {
		args = append(args, filter.PlateNumber)
		where = append(where, fmt.Sprintf("plate_number = $%d", len(args)))
	}

	query := `SELECT ` + tripColumns + ` FROM trips`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing trips: %w", err)
	}
	defer rows.Close()

	trips := make([]*trip.Trip, 0)
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning trip: %w", err)
		}
		trips = append(trips, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trips: %w", err)
	}
	return trips, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrip(row rowScanner) (*trip.Trip, error) {
	t := &trip.Trip{}
	err := row.Scan(
		&t.ID, &t.PlateNumber, &t.Driver, &t.Origin, &t.Destination, &t.CompanyOrAssignee, &t.Amount,
		&t.IssuanceDate, &t.BillingDate, &t.DueDate, &t.WithholdingRate,
		&t.CreatedBy, &t.UpdatedBy, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}
