package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderCreatedEvent struct {
	OrderID      uuid.UUID       `json:"order_id"`
	UserID       uuid.UUID       `json:"user_id"`
	ServiceType  string          `json:"service_type"`
	DeliveryType string          `json:"delivery_type"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	Currency     string          `json:"currency"`
	CreatedAt    time.Time       `json:"created_at"`
}

type OrderStatusChangedEvent struct {
	OrderID   uuid.UUID `json:"order_id"`
	UserID    uuid.UUID `json:"user_id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Notes     string    `json:"notes,omitempty"`
	ChangedAt time.Time `json:"changed_at"`
}

type OrderCancelledEvent struct {
	OrderID     uuid.UUID `json:"order_id"`
	UserID      uuid.UUID `json:"user_id"`
	Reason      string    `json:"reason,omitempty"`
	CancelledAt time.Time `json:"cancelled_at"`
}

type AppointmentEvent struct {
	AppointmentID uuid.UUID  `json:"appointment_id"`
	UserID        uuid.UUID  `json:"user_id"`
	TimeSlotID    uuid.UUID  `json:"time_slot_id"`
	OrderID       *uuid.UUID `json:"order_id,omitempty"`
	Status        string     `json:"status"`
	At            time.Time  `json:"at"`
}

// EventBus publishes domain events after the state change is committed.
// Publishing is best effort; a nil bus disables it.
type EventBus interface {
	PublishOrderCreated(ctx context.Context, e OrderCreatedEvent) error
	PublishOrderStatusChanged(ctx context.Context, e OrderStatusChangedEvent) error
	PublishOrderCancelled(ctx context.Context, e OrderCancelledEvent) error
	PublishAppointmentBooked(ctx context.Context, e AppointmentEvent) error
	PublishAppointmentCancelled(ctx context.Context, e AppointmentEvent) error
}
