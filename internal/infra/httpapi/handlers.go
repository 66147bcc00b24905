package httpapi

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"fleet_backoffice/internal/app"
	"fleet_backoffice/internal/domain/actor"
	"fleet_backoffice/internal/domain/trip"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// TripAPI is the trip service as the handlers use it.
type TripAPI interface {
	Create(ctx context.Context, who actor.Actor, w app.TripWrite) (*app.TripView, error)
	Update(ctx context.Context, who actor.Actor, id int64, w app.TripWrite) (*app.TripView, error)
	Get(ctx context.Context, id int64) (*app.TripView, error)
	List(ctx context.Context, filter trip.ListFilter) ([]*app.TripView, error)
}

type Handlers struct {
	trips    TripAPI
	notifs   app.NotificationService
	validate *validator.Validate
	logger   *logrus.Entry
}

func NewHandlers(trips TripAPI, notifs app.NotificationService, logger *logrus.Entry) *Handlers {
	return &Handlers{trips: trips, notifs: notifs, validate: validator.New(), logger: logger}
}

// actorFrom reads the acting operator from X-Actor-ID / X-Actor-Name.
func actorFrom(c *fiber.Ctx) (actor.Actor, error) {
	raw := strings.TrimSpace(c.Get("X-Actor-ID"))
	if raw == "" {
		return actor.System, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		return actor.Actor{}, fiber.NewError(fiber.StatusBadRequest, "X-Actor-ID must be a non-negative integer")
	}
	return actor.Actor{ID: id, Name: strings.TrimSpace(c.Get("X-Actor-Name"))}, nil
}

func (h *Handlers) fail(c *fiber.Ctx, err error, msg string) error {
	code := statusFor(err)
	logCtx := h.logger.WithFields(logrus.Fields{"path": c.Path(), "method": c.Method()}).WithError(err)
	if code >= fiber.StatusInternalServerError {
		logCtx.Error(msg)
	} else {
		logCtx.Warn(msg)
	}
	return Error(c, code, err.Error())
}

func (h *Handlers) Health(c *fiber.Ctx) error {
	return Success(c, "ok", nil)
}

// POST /api/trips
func (h *Handlers) CreateTrip(c *fiber.Ctx) error {
	who, err := actorFrom(c)
	if err != nil {
		return err
	}

	var req CreateTripRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid payload: "+err.Error())
	}
	req.PlateNumber = strings.TrimSpace(req.PlateNumber)
	if err := h.validate.Struct(req); err != nil {
		return ValidationError(c, err)
	}
	if err := req.validateNulls(); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	view, err := h.trips.Create(c.UserContext(), who, req.ToWrite())
	if err != nil {
		return h.fail(c, err, "Failed to create trip")
	}
	return SuccessWithCode(c, fiber.StatusCreated, "Trip created", FromTripView(view))
}

// PATCH /api/trips/:id
func (h *Handlers) PatchTrip(c *fiber.Ctx) error {
	who, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := tripID(c)
	if err != nil {
		return err
	}

	var req PatchTripRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid payload: "+err.Error())
	}
	if err := h.validate.Struct(req); err != nil {
		return ValidationError(c, err)
	}
	if err := req.validateNulls(); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	view, err := h.trips.Update(c.UserContext(), who, id, req.ToWrite())
	if err != nil {
		return h.fail(c, err, "Failed to update trip")
	}
	return Success(c, "Trip updated", FromTripView(view))
}

// GET /api/trips/:id
func (h *Handlers) GetTrip(c *fiber.Ctx) error {
	id, err := tripID(c)
	if err != nil {
		return err
	}
	view, err := h.trips.Get(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err, "Failed to get trip")
	}
	return Success(c, "Trip", FromTripView(view))
}

// GET /api/trips?plate=&limit=&offset=
func (h *Handlers) ListTrips(c *fiber.Ctx) error {
	limit, err := queryLimit(c)
	if err != nil {
		return err
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "offset must not be negative")
	}

	filter := trip.ListFilter{
		PlateNumber: strings.ToUpper(strings.TrimSpace(c.Query("plate"))),
		Limit:       limit,
		Offset:      offset,
	}
	views, err := h.trips.List(c.UserContext(), filter)
	if err != nil {
		return h.fail(c, err, "Failed to list trips")
	}

	out := make([]TripResponse, 0, len(views))
	for _, v := range views {
		out = append(out, FromTripView(v))
	}
	return Success(c, "Trips", out)
}

// GET /api/notifications/next
func (h *Handlers) NextNotification(c *fiber.Ctx) error {
	return Success(c, "Next scheduled batch", FromOccurrence(h.notifs.NextOccurrence()))
}

// POST /api/notifications/run
func (h *Handlers) RunNotification(c *fiber.Ctx) error {
	who, err := actorFrom(c)
	if err != nil {
		return err
	}

	var req RunRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid payload: "+err.Error())
		}
	}
	if err := h.validate.Struct(req); err != nil {
		return ValidationError(c, err)
	}

	if req.Digit != nil {
		res, err := h.notifs.RunManual(c.UserContext(), who, *req.Digit)
		if err != nil {
			if res != nil && errors.Is(err, app.ErrDispatchFailed) {
				h.logger.WithError(err).WithField("digit", *req.Digit).Error("Manual run dispatch failed")
				return ErrorWithData(c, fiber.StatusBadGateway, err.Error(), FromRunResult(res))
			}
			return h.fail(c, err, "Manual notification run failed")
		}
		return Success(c, "Notification run finished", FromRunResult(res))
	}

	results, err := h.notifs.RunScheduled(c.UserContext(), who)
	out := make([]RunResponse, 0, len(results))
	for _, res := range results {
		out = append(out, FromRunResult(res))
	}
	if err != nil {
		h.logger.WithError(err).Error("Scheduled notification check failed")
		return ErrorWithData(c, statusFor(err), err.Error(), out)
	}
	return Success(c, "Scheduled check finished", out)
}

// GET /api/notifications/runs?limit=
func (h *Handlers) ListRuns(c *fiber.Ctx) error {
	limit, err := queryLimit(c)
	if err != nil {
		return err
	}
	runs, err := h.notifs.ListRuns(c.UserContext(), limit)
	if err != nil {
		return h.fail(c, err, "Failed to list notification runs")
	}

	out := make([]RunResponse, 0, len(runs))
	for _, r := range runs {
		out = append(out, FromRun(r))
	}
	return Success(c, "Notification runs", out)
}

func tripID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "trip id must be a positive integer")
	}
	return id, nil
}

func queryLimit(c *fiber.Ctx) (int, error) {
	limit := c.QueryInt("limit", defaultListLimit)
	if limit <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "limit must be positive")
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return limit, nil
}
