package events

import (
	"context"

	"go.uber.org/zap"
)

// LogPublisher records events in the service log only. It is the default
// sink so the order service runs without a broker.
type LogPublisher struct {
	logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, event OrderPlacedEvent) error {
	p.logger.Info("order placed event published",
		zap.String("event_id", event.EventID),
		zap.String("order_number", event.OrderNumber))
	return nil
}
