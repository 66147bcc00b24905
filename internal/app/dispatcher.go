package app

import (
	"context"
	"fmt"
	"strings"

	"fleet_backoffice/internal/domain/notification"
	domainTelegram "fleet_backoffice/internal/domain/telegram"

	"github.com/sirupsen/logrus"
)

// maxMessageLen stays under Telegram's 4096 character limit.
const maxMessageLen = 4000

// TelegramDispatcher delivers batches to the fleet manager's chat.
type TelegramDispatcher struct {
	client domainTelegram.Client
	chatID int64
	logger *logrus.Entry
}

func NewTelegramDispatcher(client domainTelegram.Client, chatID int64, logger *logrus.Entry) *TelegramDispatcher {
	return &TelegramDispatcher{client: client, chatID: chatID, logger: logger}
}

// Dispatch sends the batch, split into as many messages as needed. It stops
// at the first failed send.
func (d *TelegramDispatcher) Dispatch(ctx context.Context, batch notification.Batch) error {
	if d.chatID == 0 {
		return fmt.Errorf("no recipient chat configured")
	}
	parts := FormatBatch(batch, maxMessageLen)
	for i, part := range parts {
		if err := d.client.SendMessage(ctx, d.chatID, part, nil); err != nil {
			return fmt.Errorf("failed to send part %d/%d to chat %d: %w", i+1, len(parts), d.chatID, err)
		}
	}
	d.logger.WithFields(logrus.Fields{
		"run_id":   batch.RunID,
		"digit":    batch.Digit,
		"vehicles": len(batch.Vehicles),
		"messages": len(parts),
	}).Info("Batch delivered to Telegram.")
	return nil
}

// LogDispatcher writes batches to the log. It stands in when no Telegram
// token is configured and always reports notification.ErrNotDelivered, so
// its runs are recorded as LOGGED rather than SENT.
type LogDispatcher struct {
	logger *logrus.Entry
}

func NewLogDispatcher(logger *logrus.Entry) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

func (d *LogDispatcher) Dispatch(_ context.Context, batch notification.Batch) error {
	plates := make([]string, 0, len(batch.Vehicles))
	for _, v := range batch.Vehicles {
		plates = append(plates, v.PlateNumber)
	}
	d.logger.WithFields(logrus.Fields{
		"run_id":    batch.RunID,
		"digit":     batch.Digit,
		"timestamp": batch.Timestamp,
		"plates":    plates,
	}).Warn("Telegram disabled; batch logged only.")
	return notification.ErrNotDelivered
}

// FormatBatch renders a batch as one or more messages no longer than limit.
func FormatBatch(batch notification.Batch, limit int) []string {
	month, _ := notification.MonthFor(batch.Digit)
	header := fmt.Sprintf("Registration renewal reminder\nPlates ending in %d are due in %s.\nGenerated %s\n\n",
		batch.Digit, month, batch.Timestamp)

	var (
		parts []string
		buf   strings.Builder
	)
	buf.WriteString(header)
	for i, v := range batch.Vehicles {
		line := fmt.Sprintf("%d. %s", i+1, v.PlateNumber)
		if v.Model.Valid && v.Model.String != "" {
			line += " (" + v.Model.String + ")"
		}
		line += "\n"

		if buf.Len()+len(line) > limit && buf.Len() > 0 {
			parts = append(parts, strings.TrimRight(buf.String(), "\n"))
			buf.Reset()
		}
		buf.WriteString(line)
	}
	buf.WriteString(fmt.Sprintf("\nTotal: %d vehicle(s)", len(batch.Vehicles)))
	parts = append(parts, buf.String())
	return parts
}
