package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"fleet_backoffice/internal/app"
	"fleet_backoffice/internal/domain/actor"
	"fleet_backoffice/internal/domain/notification"
	idb "fleet_backoffice/internal/infra/database"

	"github.com/sirupsen/logrus"
)

const msgUnauthorized = "Error: you are not allowed to run this command."

// Commands builds the bot's replies. Handlers registered on the bot are thin
// wrappers around it.
type Commands struct {
	admin     *app.FleetAdminService
	notif     app.NotificationService
	adminID   int64
	managerID int64
	logger    *logrus.Entry
}

func NewCommands(admin *app.FleetAdminService, notif app.NotificationService, adminID, managerID int64, logger *logrus.Entry) *Commands {
	return &Commands{admin: admin, notif: notif, adminID: adminID, managerID: managerID, logger: logger}
}

// isOperator reports whether the sender may trigger notification runs.
func (h *Commands) isOperator(senderID int64) bool {
	return senderID != 0 && (senderID == h.adminID || senderID == h.managerID)
}

func (h *Commands) startReply(senderID int64, firstName string) string {
	switch {
	case senderID == h.adminID && h.adminID != 0:
		return fmt.Sprintf("Hello, administrator %s! Use /help to see the available commands.", firstName)
	case senderID == h.managerID && h.managerID != 0:
		return fmt.Sprintf("Hello, %s! Registration renewal reminders for the fleet will arrive in this chat.", firstName)
	default:
		return "Hello! This bot sends fleet registration reminders to the fleet manager. Ask the administrator for access."
	}
}

func (h *Commands) helpReply(senderID int64) string {
	var help strings.Builder
	help.WriteString("Available commands:\n\n")
	help.WriteString("/next - show the next scheduled reminder batch\n")
	if h.isOperator(senderID) {
		help.WriteString("/notify <digit> - send the batch for plates ending in <digit> now\n")
	}
	if h.admin.IsAdmin(senderID) {
		help.WriteString("/add_vehicle <plate> [model] - register a vehicle\n")
		help.WriteString("/remove_vehicle <plate> - deactivate a vehicle\n")
		help.WriteString("/list_vehicles [digit] - list active vehicles\n")
	}
	help.WriteString("/help - show this message")
	return help.String()
}

func (h *Commands) nextReply() (string, notification.Occurrence) {
	next := h.notif.NextOccurrence()
	month, _ := notification.MonthFor(next.Digit)
	return fmt.Sprintf("Next batch: plates ending in %d (due in %s), sent on %s.",
		next.Digit, month, next.FireDate.Format("2006-01-02")), next
}

func (h *Commands) notifyReply(ctx context.Context, who actor.Actor, args []string) string {
	logCtx := h.logger.WithFields(logrus.Fields{"handler": "/notify", "sender_id": who.ID})
	if !h.isOperator(who.ID) {
		logCtx.Warn("Unauthorized access attempt")
		return msgUnauthorized
	}
	if len(args) != 1 {
		return "Invalid format. Use: /notify <digit>"
	}
	digit, err := strconv.Atoi(args[0])
	if err != nil {
		return "Error: the digit must be a number from 0 to 9."
	}

	res, err := h.notif.RunManual(ctx, who, digit)
	switch {
	case errors.Is(err, notification.ErrInvalidDigit):
		return "Error: the digit must be a number from 0 to 9."
	case errors.Is(err, app.ErrDispatchFailed):
		logCtx.WithError(err).Error("Manual notification dispatch failed")
		return fmt.Sprintf("The batch for digit %d could not be delivered: %s", digit, err.Error())
	case err != nil && res == nil:
		logCtx.WithError(err).Error("Manual notification run failed")
		return fmt.Sprintf("An error occurred while running the batch: %s", err.Error())
	case err != nil:
		logCtx.WithError(err).Error("Manual notification run was not recorded")
	}

	switch res.Run.Status {
	case notification.RunStatusEmpty:
		return fmt.Sprintf("No active vehicles have plates ending in %d. Nothing was sent.", digit)
	case notification.RunStatusLogged:
		return fmt.Sprintf("Delivery is disabled. The batch of %d vehicle(s) for digit %d was only logged (run %s).", res.Run.MatchedCount, digit, res.Run.RunID)
	}
	return fmt.Sprintf("Sent %d vehicle(s) for digit %d (run %s).", res.Run.MatchedCount, digit, res.Run.RunID)
}

func (h *Commands) addVehicleReply(ctx context.Context, senderID int64, args []string) string {
	logCtx := h.logger.WithFields(logrus.Fields{"handler": "/add_vehicle", "sender_id": senderID})
	if len(args) < 1 {
		return "Invalid format. Use: /add_vehicle <plate> [model]"
	}
	model := strings.Join(args[1:], " ")

	v, err := h.admin.AddVehicle(ctx, senderID, args[0], model)
	if err != nil {
		logWithError := logCtx.WithError(err)
		switch {
		case errors.Is(err, app.ErrAdminNotAuthorized):
			logWithError.Warn("Unauthorized access attempt")
			return msgUnauthorized
		case errors.Is(err, app.ErrVehicleAlreadyExists):
			return fmt.Sprintf("Error: vehicle %s is already registered.", strings.ToUpper(args[0]))
		case errors.Is(err, app.ErrEmptyPlate):
			return "Error: the plate number must not be empty."
		default:
			logWithError.Error("Failed to add vehicle")
			return fmt.Sprintf("An error occurred while adding the vehicle: %s", err.Error())
		}
	}

	logCtx.WithField("vehicle_id", v.ID).Info("Vehicle added successfully")
	return fmt.Sprintf("Vehicle %s added.", describeVehicle(v.PlateNumber, v.Model.String))
}

func (h *Commands) removeVehicleReply(ctx context.Context, senderID int64, args []string) string {
	logCtx := h.logger.WithFields(logrus.Fields{"handler": "/remove_vehicle", "sender_id": senderID})
	if len(args) != 1 {
		return "Invalid format. Use: /remove_vehicle <plate>"
	}

	v, err := h.admin.DeactivateVehicle(ctx, senderID, args[0])
	if err != nil {
		logWithError := logCtx.WithError(err)
		switch {
		case errors.Is(err, app.ErrAdminNotAuthorized):
			logWithError.Warn("Unauthorized access attempt")
			return msgUnauthorized
		case errors.Is(err, idb.ErrVehicleNotFound):
			return fmt.Sprintf("Vehicle %s was not found.", strings.ToUpper(args[0]))
		case errors.Is(err, app.ErrVehicleAlreadyInactive):
			return fmt.Sprintf("Vehicle %s is already inactive.", v.PlateNumber)
		default:
			logWithError.Error("Failed to remove vehicle")
			return fmt.Sprintf("An error occurred while removing the vehicle: %s", err.Error())
		}
	}

	logCtx.WithField("vehicle_id", v.ID).Info("Vehicle deactivated successfully")
	return fmt.Sprintf("Vehicle %s deactivated. It will no longer be included in reminders.", v.PlateNumber)
}

func (h *Commands) listVehiclesReply(ctx context.Context, senderID int64, args []string) string {
	logCtx := h.logger.WithFields(logrus.Fields{"handler": "/list_vehicles", "sender_id": senderID})

	var digit *int
	title := "Active vehicles"
	if len(args) > 0 {
		d, err := strconv.Atoi(args[0])
		if err != nil {
			return "Invalid argument. Use: /list_vehicles [digit]"
		}
		digit = &d
		title = fmt.Sprintf("Active vehicles with plates ending in %d", d)
	}

	vehicles, err := h.admin.ListVehicles(ctx, senderID, digit)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrAdminNotAuthorized):
			logCtx.Warn("Unauthorized access attempt")
			return msgUnauthorized
		case errors.Is(err, notification.ErrInvalidDigit):
			return "Error: the digit must be a number from 0 to 9."
		default:
			logCtx.WithError(err).Error("Failed to list vehicles")
			return fmt.Sprintf("An error occurred while listing vehicles: %s", err.Error())
		}
	}
	if len(vehicles) == 0 {
		return "No active vehicles found."
	}

	var response strings.Builder
	response.WriteString(fmt.Sprintf("--- %s ---\n", title))
	for i, v := range vehicles {
		response.WriteString(fmt.Sprintf("%d. %s\n", i+1, describeVehicle(v.PlateNumber, v.Model.String)))
	}
	return strings.TrimRight(response.String(), "\n")
}

func describeVehicle(plate, model string) string {
	if model == "" {
		return plate
	}
	return fmt.Sprintf("%s (%s)", plate, model)
}
