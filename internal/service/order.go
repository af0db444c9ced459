package service

import (
	"context"
	"time"

	"kasap-service/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateOrderInput struct {
	ServiceType           models.ServiceType    `json:"service_type"`
	DeliveryType          models.DeliveryType   `json:"delivery_type"`
	TotalAmount           decimal.Decimal       `json:"total_amount"`
	Currency              string                `json:"currency,omitempty"`
	SpecialNotes          *string               `json:"special_notes,omitempty"`
	CharityOrganizationID *uuid.UUID            `json:"charity_organization_id,omitempty"`
	AppointmentDate       *time.Time            `json:"appointment_date,omitempty"`
	PaymentMethod         *models.PaymentMethod `json:"payment_method,omitempty"`
}

// OrderFilter lists every recognised filter. Nil fields do not filter.
type OrderFilter struct {
	Status       *models.OrderStatus
	ServiceType  *models.ServiceType
	DeliveryType *models.DeliveryType
	DateFrom     *time.Time
	DateTo       *time.Time
}

type StatusUpdate struct {
	Status models.OrderStatus `json:"status"`
	Notes  *string            `json:"notes,omitempty"`
}

type OrderStatistics struct {
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	InProgress int64 `json:"inProgress"`
	Completed  int64 `json:"completed"`
	Cancelled  int64 `json:"cancelled"`
}

type AttachMediaInput struct {
	Bucket   string `json:"bucket"`
	FileName string `json:"file_name"`
	FileURL  string `json:"file_url"`
	MimeType string `json:"mime_type"`
	FileSize int64  `json:"file_size"`
}

type OrderService interface {
	CreateOrder(ctx context.Context, userID uuid.UUID, in CreateOrderInput) (*models.Order, error)
	GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetUserOrders(ctx context.Context, userID uuid.UUID, f OrderFilter) ([]models.Order, error)
	GetAllOrders(ctx context.Context, f OrderFilter) ([]models.Order, error)
	GetOrdersByStatus(ctx context.Context, status models.OrderStatus) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, upd StatusUpdate) (*models.Order, error)
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status models.PaymentStatus, reference *string) (*models.Order, error)
	CancelOrder(ctx context.Context, id uuid.UUID, reason string) (*models.Order, error)
	GetOrderStatistics(ctx context.Context, userID *uuid.UUID) (OrderStatistics, error)
	SearchOrders(ctx context.Context, term string) ([]models.Order, error)
	AttachMedia(ctx context.Context, userID, orderID uuid.UUID, in AttachMediaInput) (*models.MediaFile, error)
	GetActiveCharities(ctx context.Context) ([]models.CharityOrganization, error)
}
