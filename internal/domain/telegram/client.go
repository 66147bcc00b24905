package telegram

import (
	"context"

	"gopkg.in/telebot.v3"
)

// Client sends chat messages. Dispatch and bot replies go through it so the
// app layer never touches the bot library directly.
type Client interface {
	SendMessage(ctx context.Context, recipientChatID int64, text string, options *telebot.SendOptions) error
}
