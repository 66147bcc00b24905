package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"

	"fleet_backoffice/internal/domain/notification"
	"fleet_backoffice/internal/domain/vehicle"
	"fleet_backoffice/internal/infra/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func batchOf(n int) notification.Batch {
	vehicles := make([]*vehicle.Vehicle, 0, n)
	for i := 0; i < n; i++ {
		vehicles = append(vehicles, &vehicle.Vehicle{PlateNumber: fmt.Sprintf("PLT-%04d", i*10+4)})
	}
	return notification.Batch{
		RunID:     uuid.New(),
		Digit:     4,
		Vehicles:  vehicles,
		Timestamp: "2025-03-27 08:00:00",
	}
}

func TestFormatBatch(t *testing.T) {
	batch := notification.Batch{
		Digit: 4,
		Vehicles: []*vehicle.Vehicle{
			{PlateNumber: "ABC-1234", Model: sql.NullString{String: "Hilux", Valid: true}},
			{PlateNumber: "XYZ-5554"},
		},
		Timestamp: "2025-03-27 08:00:00",
	}

	parts := FormatBatch(batch, maxMessageLen)
	require.Len(t, parts, 1)
	assert.Equal(t,
		"Registration renewal reminder\n"+
			"Plates ending in 4 are due in April.\n"+
			"Generated 2025-03-27 08:00:00\n\n"+
			"1. ABC-1234 (Hilux)\n"+
			"2. XYZ-5554\n"+
			"\nTotal: 2 vehicle(s)",
		parts[0])
}

func TestFormatBatch_SplitsLongBatches(t *testing.T) {
	batch := batchOf(60)

	parts := FormatBatch(batch, 200)
	require.Greater(t, len(parts), 1)

	joined := strings.Join(parts, "\n")
	for _, v := range batch.Vehicles {
		assert.Contains(t, joined, v.PlateNumber)
	}
	for _, p := range parts[:len(parts)-1] {
		assert.LessOrEqual(t, len(p), 200)
	}
	assert.True(t, strings.HasSuffix(parts[len(parts)-1], "Total: 60 vehicle(s)"))
}

func TestTelegramDispatcher_Dispatch(t *testing.T) {
	client := &fakeTelegramClient{}
	d := NewTelegramDispatcher(client, 555, logger.Discard())

	require.NoError(t, d.Dispatch(context.Background(), batchOf(3)))
	require.Len(t, client.sent, 1)
	assert.Equal(t, int64(555), client.sent[0].chatID)
	assert.Contains(t, client.sent[0].text, "PLT-0024")
}

func TestTelegramDispatcher_StopsAtFirstFailure(t *testing.T) {
	client := &fakeTelegramClient{err: errors.New("flood wait"), failAt: 2}
	d := NewTelegramDispatcher(client, 555, logger.Discard())
	batch := batchOf(900)
	require.Greater(t, len(FormatBatch(batch, maxMessageLen)), 2)

	err := d.Dispatch(context.Background(), batch)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "part 2/")
	assert.Len(t, client.sent, 1)
}

func TestTelegramDispatcher_NoRecipient(t *testing.T) {
	client := &fakeTelegramClient{}
	d := NewTelegramDispatcher(client, 0, logger.Discard())

	assert.Error(t, d.Dispatch(context.Background(), batchOf(1)))
	assert.Empty(t, client.sent)
}

func TestLogDispatcher(t *testing.T) {
	d := NewLogDispatcher(logger.Discard())
	assert.ErrorIs(t, d.Dispatch(context.Background(), batchOf(2)), notification.ErrNotDelivered)
}
