package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const orderEventsTopic = "order-events"

// Publisher is the sink for order placement notifications. Delivery and
// consumption are external concerns.
type Publisher interface {
	Publish(ctx context.Context, event OrderPlacedEvent) error
}

// KafkaPublisher writes OrderPlacedEvents to the order-events topic.
type KafkaPublisher struct {
	writer  *kafka.Writer
	brokers string
	logger  *zap.Logger
}

func NewKafkaPublisher(brokers string, logger *zap.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers),
		Topic:    orderEventsTopic,
		Balancer: &kafka.LeastBytes{},
	}
	return &KafkaPublisher{
		writer:  writer,
		brokers: brokers,
		logger:  logger,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event OrderPlacedEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal order placed event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.OrderNumber),
		Value: data,
	})
	if err != nil {
		p.logger.Error("failed to publish order placed event",
			zap.String("event_id", event.EventID),
			zap.String("order_number", event.OrderNumber),
			zap.Error(err))
		return err
	}

	p.logger.Info("order placed event published",
		zap.String("event_id", event.EventID),
		zap.String("order_number", event.OrderNumber))
	return nil
}

// HealthCheck dials the broker to verify it is reachable.
func (p *KafkaPublisher) HealthCheck() error {
	conn, err := kafka.Dial("tcp", p.brokers)
	if err != nil {
		return err
	}
	return conn.Close()
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
