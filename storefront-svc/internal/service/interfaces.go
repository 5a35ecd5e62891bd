package service

import (
	"context"
	"time"

	"huongque-storefront/pkg/events"
	"huongque-storefront/storefront-svc/internal/domain"
	"huongque-storefront/storefront-svc/internal/storage"
)

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityError   Severity = "error"
)

// Notifier receives user-facing messages. Delivery is fire-and-forget.
type Notifier interface {
	Notify(message string, severity Severity)
}

// Confirmer is a synchronous yes/no prompt answered by the user.
type Confirmer interface {
	Confirm(prompt string) bool
}

type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool {
	return f(prompt)
}

// Clock returns the current wall-clock time.
type Clock func() time.Time

type OrderArchive interface {
	ArchiveOrder(order *domain.Order) error
}

type EventPublisher interface {
	Publish(ctx context.Context, evt events.Event) error
}

type QRGenerator interface {
	Generate(payload string) ([]byte, error)
}

type PopularityReader interface {
	TopDishes(ctx context.Context, limit int) ([]domain.DishPopularity, error)
}

var (
	_ Confirmer = ConfirmFunc(nil)
	_ Notifier  = (*Notifications)(nil)
	_ Notifier  = LogNotifier{}

	_ QRGenerator      = DefaultQRGenerator{}
	_ OrderArchive     = (*storage.PostgresArchive)(nil)
	_ EventPublisher   = (*storage.KafkaPublisher)(nil)
	_ PopularityReader = (*storage.PopularityReader)(nil)
)
