// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"context"
	"strconv"

	"fleet_backoffice/internal/domain/actor"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// notifyBtn is the inline "send now" button attached to /next replies.
var notifyBtn = telebot.Btn{Unique: "notify"}

func senderActor(c telebot.Context) actor.Actor {
	s := c.Sender()
	if s == nil {
		return actor.System
	}
	name := s.Username
	if name == "" {
		name = s.FirstName
	}
	return actor.Actor{ID: s.ID, Name: name}
}

// RegisterBotCommands registers /start, /help, /next and /notify, plus the
// inline button that triggers a manual run.
func RegisterBotCommands(ctx context.Context, b *telebot.Bot, h *Commands, baseLogger *logrus.Entry) {
	startHelpLogger := baseLogger.WithField("handler_group", "start_help")

	b.Handle("/start", func(c telebot.Context) error {
		senderID := c.Sender().ID
		startHelpLogger.WithField("command", "/start").WithField("sender_id", senderID).Info("Processing /start command")
		return c.Send(h.startReply(senderID, c.Sender().FirstName))
	})

	b.Handle("/help", func(c telebot.Context) error {
		senderID := c.Sender().ID
		startHelpLogger.WithField("command", "/help").WithField("sender_id", senderID).Info("Processing /help command")
		return c.Send(h.helpReply(senderID))
	})

	b.Handle("/next", func(c telebot.Context) error {
		text, next := h.nextReply()
		if !h.isOperator(c.Sender().ID) {
			return c.Send(text)
		}
		markup := &telebot.ReplyMarkup{}
		btn := markup.Data("Send this batch now", notifyBtn.Unique, strconv.Itoa(int(next.Digit)))
		markup.Inline(markup.Row(btn))
		return c.Send(text, markup)
	})

	b.Handle("/notify", func(c telebot.Context) error {
		return c.Send(h.notifyReply(ctx, senderActor(c), c.Args()))
	})

	b.Handle(&notifyBtn, func(c telebot.Context) error {
		reply := h.notifyReply(ctx, senderActor(c), []string{c.Data()})
		if err := c.Respond(&telebot.CallbackResponse{Text: "Processing..."}); err != nil {
			baseLogger.WithError(err).Warn("Failed to acknowledge callback")
		}
		return c.Send(reply)
	})
}
