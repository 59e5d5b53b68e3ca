package events

import (
	"time"

	"github.com/google/uuid"
)

// OrderPlacedEvent is emitted exactly once per committed order, after the
// store write succeeds.
type OrderPlacedEvent struct {
	EventID     string    `json:"event_id"`
	OrderNumber string    `json:"order_number"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewOrderPlacedEvent(orderNumber string) OrderPlacedEvent {
	return OrderPlacedEvent{
		EventID:     uuid.New().String(),
		OrderNumber: orderNumber,
		Timestamp:   time.Now().UTC(),
	}
}
