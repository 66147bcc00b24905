package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"fleet_backoffice/internal/domain/vehicle"
)

// Custom errors
var ErrVehicleNotFound = fmt.Errorf("vehicle not found")
var ErrDuplicatePlate = fmt.Errorf("vehicle with this plate number already exists")

const vehicleColumns = `id, plate_number, model, is_active, created_at, updated_at`

type PostgresVehicleRepository struct {
	db *sql.DB
}

func NewPostgresVehicleRepository(db *sql.DB) *PostgresVehicleRepository {
	return &PostgresVehicleRepository{db: db}
}

func (r *PostgresVehicleRepository) Create(ctx context.Context, v *vehicle.Vehicle) error {
	query := `INSERT INTO vehicles (plate_number, model, is_active)
               VALUES ($1, $2, $3)
               RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, v.PlateNumber, v.Model, v.IsActive).Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "vehicles_plate_number_key") {
			return ErrDuplicatePlate
		}
		return fmt.Errorf("error creating vehicle: %w", err)
	}
	return nil
}

func (r *PostgresVehicleRepository) GetByID(ctx context.Context, id int64) (*vehicle.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *PostgresVehicleRepository) GetByPlate(ctx context.Context, plate string) (*vehicle.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE plate_number = $1`
	return r.getOne(ctx, query, plate)
}

func (r *PostgresVehicleRepository) getOne(ctx context.Context, query string, arg any) (*vehicle.Vehicle, error) {
	v := &vehicle.Vehicle{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&v.ID, &v.PlateNumber, &v.Model, &v.IsActive, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrVehicleNotFound
		}
		return nil, fmt.Errorf("error getting vehicle: %w", err)
	}
	return v, nil
}

func (r *PostgresVehicleRepository) Update(ctx context.Context, v *vehicle.Vehicle) error {
	query := `UPDATE vehicles
               SET plate_number = $1, model = $2, is_active = $3, updated_at = NOW()
               WHERE id = $4
               RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query, v.PlateNumber, v.Model, v.IsActive, v.ID).Scan(&v.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrVehicleNotFound
		}
		if isUniqueViolation(err, "vehicles_plate_number_key") {
			return ErrDuplicatePlate
		}
		return fmt.Errorf("error updating vehicle: %w", err)
	}
	return nil
}

func (r *PostgresVehicleRepository) ListActive(ctx context.Context) ([]*vehicle.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE is_active = TRUE ORDER BY plate_number`
	return r.list(ctx, "active vehicles", query)
}

// ListActiveByPlateDigit prefilters on the last character of the plate. The
// partition predicate is applied again by the caller.
func (r *PostgresVehicleRepository) ListActiveByPlateDigit(ctx context.Context, digit int) ([]*vehicle.Vehicle, error) {
	if digit < 0 || digit > 9 {
		return nil, fmt.Errorf("error listing vehicles by plate digit: digit %d out of range", digit)
	}
	query := `SELECT ` + vehicleColumns + ` FROM vehicles
               WHERE is_active = TRUE AND right(plate_number, 1) = $1
               ORDER BY plate_number`
	return r.list(ctx, "vehicles by plate digit", query, strconv.Itoa(digit))
}

func (r *PostgresVehicleRepository) list(ctx context.Context, what, query string, args ...any) ([]*vehicle.Vehicle, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing %s: %w", what, err)
	}
	defer rows.Close()

	vehicles := make([]*vehicle.Vehicle, 0)
	for rows.Next() {
		v := &vehicle.Vehicle{}
		if err := rows.Scan(&v.ID, &v.PlateNumber, &v.Model, &v.IsActive, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning %s: %w", what, err)
		}
		vehicles = append(vehicles, v)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", what, err)
	}
	return vehicles, nil
}
