package telegram

import (
	"context"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// RegisterAdminHandlers registers the vehicle registry commands. Authorization
// is checked by the admin service.
func RegisterAdminHandlers(ctx context.Context, b *telebot.Bot, h *Commands, baseLogger *logrus.Entry) {
	b.Handle("/add_vehicle", func(c telebot.Context) error {
		baseLogger.WithFields(logrus.Fields{"handler": "/add_vehicle", "sender_id": c.Sender().ID}).Info("Command received")
		return c.Send(h.addVehicleReply(ctx, c.Sender().ID, c.Args()))
	})

	b.Handle("/remove_vehicle", func(c telebot.Context) error {
		baseLogger.WithFields(logrus.Fields{"handler": "/remove_vehicle", "sender_id": c.Sender().ID}).Info("Command received")
		return c.Send(h.removeVehicleReply(ctx, c.Sender().ID, c.Args()))
	})

	b.Handle("/list_vehicles", func(c telebot.Context) error {
		baseLogger.WithFields(logrus.Fields{"handler": "/list_vehicles", "sender_id": c.Sender().ID}).Info("Command received")
		return c.Send(h.listVehiclesReply(ctx, c.Sender().ID, c.Args()))
	})
}
