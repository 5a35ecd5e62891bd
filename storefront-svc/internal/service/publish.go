package service

import (
	"context"
	"time"

	"huongque-storefront/pkg/events"

	"go.uber.org/zap"
)

const publishTimeout = 5 * time.Second

// publish sends evt if a publisher is wired. Failures are only logged.
func (s Session) publish(evt events.Event) {
	if s.Publisher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := s.Publisher.Publish(ctx, evt); err != nil {
		s.Logger.Warn("failed to publish event",
			zap.String("type", evt.Type),
			zap.Error(err))
	}
}

func (s Session) rejected(operation string) {
	if s.Metrics == nil {
		return
	}
	s.Metrics.Rejections.WithLabelValues(operation).Inc()
}
