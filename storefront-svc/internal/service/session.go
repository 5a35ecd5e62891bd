package service

import (
	"time"

	"huongque-storefront/pkg/metrics"
	"huongque-storefront/storefront-svc/internal/storage"

	"go.uber.org/zap"
)

// Session carries one visitor's store and collaborators into the engines.
type Session struct {
	Store   *storage.KV
	Clock   Clock
	Confirm Confirmer
	Notify  Notifier
	Logger  *zap.Logger

	// Optional, process-wide.
	Archive   OrderArchive
	Publisher EventPublisher
	Metrics   *metrics.DomainMetrics
}

// withDefaults fills unset collaborators: real clock, a gate that always
// declines, and a zap-backed notifier.
func (s Session) withDefaults() Session {
	if s.Logger == nil {
		s.Logger = zap.NewNop()
	}
	if s.Clock == nil {
		s.Clock = time.Now
	}
	if s.Confirm == nil {
		s.Confirm = ConfirmFunc(func(string) bool { return false })
	}
	if s.Notify == nil {
		s.Notify = LogNotifier{Logger: s.Logger}
	}
	return s
}

func (s Session) now() time.Time {
	return s.Clock()
}
