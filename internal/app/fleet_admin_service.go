package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"fleet_backoffice/internal/domain/notification"
	"fleet_backoffice/internal/domain/vehicle"
	idb "fleet_backoffice/internal/infra/database"
)

// Custom application-level errors for the fleet admin service
var ErrAdminNotAuthorized = fmt.Errorf("performing user is not authorized as an admin")
var ErrVehicleAlreadyExists = fmt.Errorf("vehicle with this plate number already exists")
var ErrVehicleAlreadyInactive = fmt.Errorf("vehicle is already inactive")
var ErrEmptyPlate = fmt.Errorf("plate number must not be empty")

// FleetAdminService manages the vehicle registry from the admin bot.
type FleetAdminService struct {
	vehicleRepo     vehicle.Repository
	adminTelegramID int64
}

func NewFleetAdminService(vr vehicle.Repository, adminID int64) *FleetAdminService {
	return &FleetAdminService{
		vehicleRepo:     vr,
		adminTelegramID: adminID,
	}
}

// IsAdmin reports whether the Telegram user may run admin commands.
func (s *FleetAdminService) IsAdmin(telegramID int64) bool {
	return s.adminTelegramID != 0 && telegramID == s.adminTelegramID
}

// AddVehicle registers a plate. A previously deactivated plate is reactivated.
func (s *FleetAdminService) AddVehicle(ctx context.Context, performingAdminID int64, plate, model string) (*vehicle.Vehicle, error) {
	if !s.IsAdmin(performingAdminID) {
		return nil, ErrAdminNotAuthorized
	}
	plate = normalizePlate(plate)
	if plate == "" {
		return nil, ErrEmptyPlate
	}

	existing, err := s.vehicleRepo.GetByPlate(ctx, plate)
	if err == nil {
		if existing.IsActive {
			return existing, ErrVehicleAlreadyExists
		}
		existing.IsActive = true
		if model != "" {
			existing.Model = sql.NullString{String: model, Valid: true}
		}
		if err := s.vehicleRepo.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("failed to reactivate vehicle: %w", err)
		}
		return existing, nil
	}
	if !errors.Is(err, idb.ErrVehicleNotFound) {
		return nil, fmt.Errorf("failed to check existing vehicle: %w", err)
	}

	newVehicle := &vehicle.Vehicle{
		PlateNumber: plate,
		Model:       sql.NullString{String: model, Valid: model != ""},
		IsActive:    true,
	}
	if err := s.vehicleRepo.Create(ctx, newVehicle); err != nil {
		if errors.Is(err, idb.ErrDuplicatePlate) {
			return nil, ErrVehicleAlreadyExists
		}
		return nil, fmt.Errorf("failed to create vehicle in repository: %w", err)
	}
	return newVehicle, nil
}

// DeactivateVehicle stops a plate from receiving notifications.
func (s *FleetAdminService) DeactivateVehicle(ctx context.Context, performingAdminID int64, plate string) (*vehicle.Vehicle, error) {
	if !s.IsAdmin(performingAdminID) {
		return nil, ErrAdminNotAuthorized
	}

	target, err := s.vehicleRepo.GetByPlate(ctx, normalizePlate(plate))
	if err != nil {
		if errors.Is(err, idb.ErrVehicleNotFound) {
			return nil, idb.ErrVehicleNotFound
		}
		return nil, fmt.Errorf("failed to get vehicle for removal: %w", err)
	}
	if !target.IsActive {
		return target, ErrVehicleAlreadyInactive
	}

	target.IsActive = false
	if err := s.vehicleRepo.Update(ctx, target); err != nil {
		return nil, fmt.Errorf("failed to update vehicle to inactive in repository: %w", err)
	}
	return target, nil
}

// ListVehicles lists active vehicles, optionally restricted to one plate digit.
func (s *FleetAdminService) ListVehicles(ctx context.Context, performingAdminID int64, digit *int) ([]*vehicle.Vehicle, error) {
	if !s.IsAdmin(performingAdminID) {
		return nil, ErrAdminNotAuthorized
	}
	if digit == nil {
		return s.vehicleRepo.ListActive(ctx)
	}

	d, err := notification.ValidateDigit(*digit)
	if err != nil {
		return nil, err
	}
	candidates, err := s.vehicleRepo.ListActiveByPlateDigit(ctx, int(d))
	if err != nil {
		return nil, err
	}
	return notification.FilterByDigit(candidates, d), nil
}

func normalizePlate(plate string) string {
	return strings.ToUpper(strings.TrimSpace(plate))
}
