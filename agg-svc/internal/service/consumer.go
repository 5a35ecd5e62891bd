package service

import (
	"context"
	"encoding/json"
	"errors"

	"huongque-storefront/pkg/events"

	"go.uber.org/zap"
)

type Consumer struct {
	Reader MessageReader
	Store  StoreInterface
	Logger *zap.Logger
}

func NewConsumer(reader MessageReader, store StoreInterface, logger *zap.Logger) *Consumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Consumer{
		Reader: reader,
		Store:  store,
		Logger: logger,
	}
}

// Start reads events until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) {
	c.Logger.Info("starting aggregation consumer")
	for {
		message, err := c.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				c.Logger.Info("aggregation consumer stopped")
				return
			}
			c.Logger.Error("error reading message", zap.Error(err))
			continue
		}

		var evt events.Event
		if err := json.Unmarshal(message.Value, &evt); err != nil {
			c.Logger.Warn("skipping malformed message",
				zap.Int64("offset", message.Offset),
				zap.Error(err))
			continue
		}

		c.Process(ctx, evt)
	}
}

// Process applies one storefront event to the aggregates. Unknown types
// are ignored and store errors only logged.
func (c *Consumer) Process(ctx context.Context, evt events.Event) {
	switch evt.Type {
	case events.TypeOrderPlaced:
		if len(evt.Items) == 0 {
			return
		}
		if err := c.Store.RecordOrder(ctx, evt.Items, evt.Timestamp); err != nil {
			c.Logger.Error("error recording order",
				zap.String("order_id", evt.OrderID),
				zap.Error(err))
			return
		}
		c.Logger.Debug("recorded order", zap.String("order_id", evt.OrderID), zap.Int("items", len(evt.Items)))

	case events.TypeBookingCreated:
		if err := c.Store.RecordBooking(ctx, evt.Date, evt.Guests); err != nil {
			c.Logger.Error("error recording booking",
				zap.String("booking_code", evt.BookingCode),
				zap.Error(err))
			return
		}
		c.Logger.Debug("recorded booking", zap.String("booking_code", evt.BookingCode))

	default:
		c.Logger.Debug("ignoring event", zap.String("type", evt.Type))
	}
}
