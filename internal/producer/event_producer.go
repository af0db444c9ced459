package producer

import (
	"context"
	"encoding/json"
	"fmt"

	"kasap-service/internal/service"

	"github.com/segmentio/kafka-go"
)

const (
	EventOrderCreated         = "order.created"
	EventOrderStatusChanged   = "order.status_changed"
	EventOrderCancelled       = "order.cancelled"
	EventAppointmentBooked    = "appointment.booked"
	EventAppointmentCancelled = "appointment.cancelled"
)

// Envelope wraps every domain event written to the events topic.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// EventProducer publishes domain events keyed by aggregate id, so all events
// of one order or appointment land in the same partition.
type EventProducer struct {
	writer *kafka.Writer
}

var _ service.EventBus = (*EventProducer)(nil)

func NewEventProducer(brokers []string, topic string) *EventProducer {
	return &EventProducer{writer: newWriter(brokers, topic)}
}

func (p *EventProducer) publish(ctx context.Context, typ, key string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", typ, err)
	}
	return writeJSON(ctx, p.writer, key, Envelope{Type: typ, Payload: raw},
		kafka.Header{Key: "event-type", Value: []byte(typ)})
}

func (p *EventProducer) PublishOrderCreated(ctx context.Context, e service.OrderCreatedEvent) error {
	return p.publish(ctx, EventOrderCreated, e.OrderID.String(), e)
}

func (p *EventProducer) PublishOrderStatusChanged(ctx context.Context, e service.OrderStatusChangedEvent) error {
	return p.publish(ctx, EventOrderStatusChanged, e.OrderID.String(), e)
}

func (p *EventProducer) PublishOrderCancelled(ctx context.Context, e service.OrderCancelledEvent) error {
	return p.publish(ctx, EventOrderCancelled, e.OrderID.String(), e)
}

func (p *EventProducer) PublishAppointmentBooked(ctx context.Context, e service.AppointmentEvent) error {
	return p.publish(ctx, EventAppointmentBooked, e.AppointmentID.String(), e)
}

func (p *EventProducer) PublishAppointmentCancelled(ctx context.Context, e service.AppointmentEvent) error {
	return p.publish(ctx, EventAppointmentCancelled, e.AppointmentID.String(), e)
}

func (p *EventProducer) Close() error {
	return p.writer.Close()
}
