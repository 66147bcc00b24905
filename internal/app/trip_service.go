package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"fleet_backoffice/internal/domain/actor"
	"fleet_backoffice/internal/domain/trip"
	idb "fleet_backoffice/internal/infra/database"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var ErrInvalidTrip = fmt.Errorf("invalid trip")

// TripWrite is one create or update request. Nil pointers and absent
// overrides leave the stored value alone; Terms feeds the derivations.
type TripWrite struct {
	PlateNumber *string
	Driver      trip.Override[string]
	Origin      trip.Override[string]
	Destination trip.Override[string]
	Amount      *decimal.Decimal
	Terms       trip.Input
}

// TripView is a trip as read, with the fields computed at read time.
type TripView struct {
	*trip.Trip
	Remarks           trip.Remarks
	WithholdingAmount decimal.Decimal
	NetAmount         decimal.Decimal
}

type TripService struct {
	repo   trip.Repository
	logger *logrus.Entry
	now    func() time.Time
}

func NewTripService(repo trip.Repository, logger *logrus.Entry, now func() time.Time) *TripService {
	if now == nil {
		now = time.Now
	}
	return &TripService{repo: repo, logger: logger, now: now}
}

// Create stores a new trip. A missing company still derives the default
// withholding rate.
func (s *TripService) Create(ctx context.Context, who actor.Actor, w TripWrite) (*TripView, error) {
	if w.PlateNumber == nil || strings.TrimSpace(*w.PlateNumber) == "" {
		return nil, fmt.Errorf("%w: plate number is required", ErrInvalidTrip)
	}
	if w.Terms.Company == nil {
		empty := ""
		w.Terms.Company = &empty
	}

	t := &trip.Trip{
		CreatedBy: who.ID,
		UpdatedBy: who.ID,
	}
	if err := apply(t, w); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, t); err != nil {
		s.logger.WithError(err).Error("Failed to create trip.")
		return nil, fmt.Errorf("failed to create trip: %w", err)
	}
	s.logger.WithFields(logrus.Fields{"trip_id": t.ID, "actor": who.String()}).Info("Trip created.")
	return s.view(t), nil
}

// Update applies a partial write. Derivations only see this request's
// fields, never the stored ones.
func (s *TripService) Update(ctx context.Context, who actor.Actor, id int64, w TripWrite) (*TripView, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(t, w); err != nil {
		return nil, err
	}
	t.UpdatedBy = who.ID

	if err := s.repo.Update(ctx, t); err != nil {
		s.logger.WithError(err).WithField("trip_id", id).Error("Failed to update trip.")
		return nil, fmt.Errorf("failed to update trip %d: %w", id, err)
	}
	s.logger.WithFields(logrus.Fields{"trip_id": t.ID, "actor": who.String()}).Info("Trip updated.")
	return s.view(t), nil
}

func (s *TripService) Get(ctx context.Context, id int64) (*TripView, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(t), nil
}

func (s *TripService) List(ctx context.Context, filter trip.ListFilter) ([]*TripView, error) {
	trips, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	views := make([]*TripView, 0, len(trips))
	for _, t := range trips {
		views = append(views, s.view(t))
	}
	return views, nil
}

func (s *TripService) view(t *trip.Trip) *TripView {
	return &TripView{
		Trip:              t,
		Remarks:           t.Remarks(s.now()),
		WithholdingAmount: t.WithholdingAmount(),
		NetAmount:         t.NetAmount(),
	}
}

func apply(t *trip.Trip, w TripWrite) error {
	if w.PlateNumber != nil {
		plate := normalizePlate(*w.PlateNumber)
		if plate == "" {
			return fmt.Errorf("%w: plate number must not be empty", ErrInvalidTrip)
		}
		t.PlateNumber = plate
	}
	if w.Amount != nil {
		if w.Amount.IsNegative() {
			return fmt.Errorf("%w: amount must not be negative", ErrInvalidTrip)
		}
		t.Amount = *w.Amount
	}
	if r := w.Terms.WithholdingRate; r != nil && (r.IsNegative() || r.GreaterThan(hundredPercent)) {
		return fmt.Errorf("%w: withholding rate must be between 0 and 100", ErrInvalidTrip)
	}
	applyText(&t.Driver, w.Driver)
	applyText(&t.Origin, w.Origin)
	applyText(&t.Destination, w.Destination)
	if w.Terms.Company != nil {
		t.CompanyOrAssignee = *w.Terms.Company
	}
	if w.Terms.IssuanceDate.Present {
		t.IssuanceDate = w.Terms.IssuanceDate.Value
	}

	trip.Derive(w.Terms).ApplyTo(t)
	return nil
}

var hundredPercent = decimal.NewFromInt(100)

func applyText(dst *sql.NullString, o trip.Override[string]) {
	if !o.Present {
		return
	}
	if o.Value == nil {
		*dst = sql.NullString{}
		return
	}
	*dst = sql.NullString{String: *o.Value, Valid: true}
}

// IsNotFound reports whether err means the requested record does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, idb.ErrTripNotFound) || errors.Is(err, idb.ErrVehicleNotFound) || errors.Is(err, idb.ErrRunNotFound)
}
