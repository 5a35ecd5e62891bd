package service

import (
	"context"
	"time"

	"huongque-storefront/agg-svc/internal/storage"
	"huongque-storefront/pkg/events"

	"github.com/segmentio/kafka-go"
)

type StoreInterface interface {
	RecordOrder(ctx context.Context, items []events.EventItem, day time.Time) error
	RecordBooking(ctx context.Context, day string, guests int) error
}

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

type ConsumerInterface interface {
	Start(ctx context.Context)
	Process(ctx context.Context, evt events.Event)
}

var (
	_ StoreInterface    = (*storage.Store)(nil)
	_ MessageReader     = (*kafka.Reader)(nil)
	_ ConsumerInterface = (*Consumer)(nil)
)
