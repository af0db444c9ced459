package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"kasap-service/internal/models"
	"kasap-service/internal/repository"
	"kasap-service/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultCurrency = "TRY"
	maxNotesLength  = 500
	statsCacheTTL   = 5 * time.Minute
)

type orderService struct {
	repo   *repository.Repository
	events EventBus
	cache  StatsCache
	log    *zap.Logger
	now    func() time.Time
}

// NewOrderService wires the order engine. events and cache may be nil.
func NewOrderService(repo *repository.Repository, events EventBus, cache StatsCache, log *zap.Logger) OrderService {
	return &orderService{
		repo:   repo,
		events: events,
		cache:  cache,
		log:    log,
		now:    time.Now,
	}
}

func validateCreateOrder(userID uuid.UUID, in CreateOrderInput) error {
	if userID == uuid.Nil {
		return invalid("user_id", "user is required")
	}
	if in.ServiceType == "" {
		return invalid("service_type", "service type is required")
	}
	if !in.ServiceType.Valid() {
		return invalid("service_type", "unknown service type")
	}
	if in.DeliveryType == "" {
		return invalid("delivery_type", "delivery type is required")
	}
	if !in.DeliveryType.Valid() {
		return invalid("delivery_type", "unknown delivery type")
	}
	if !in.TotalAmount.IsPositive() {
		return invalid("total_amount", "total amount must be greater than 0")
	}
	if in.SpecialNotes != nil && utf8.RuneCountInString(*in.SpecialNotes) > maxNotesLength {
		return invalid("special_notes", "special notes cannot exceed 500 characters")
	}
	if in.DeliveryType == models.DeliveryCharity && (in.CharityOrganizationID == nil || *in.CharityOrganizationID == uuid.Nil) {
		return invalid("charity_organization_id", "charity organization is required for charity delivery")
	}
	if in.PaymentMethod != nil && !in.PaymentMethod.Valid() {
		return invalid("payment_method", "unknown payment method")
	}
	return nil
}

func (s *orderService) CreateOrder(ctx context.Context, userID uuid.UUID, in CreateOrderInput) (*models.Order, error) {
	if err := validateCreateOrder(userID, in); err != nil {
		return nil, err
	}

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = defaultCurrency
	}
	if len(currency) != 3 {
		return nil, invalid("currency", "currency must be a 3-letter code")
	}

	charityID := in.CharityOrganizationID
	if in.DeliveryType != models.DeliveryCharity {
		charityID = nil
	} else {
		org, err := s.repo.Charities.GetByID(ctx, *charityID)
		if err != nil {
			return nil, fetchErr("get charity organization", err)
		}
		if org == nil || !org.IsActive {
			return nil, invalid("charity_organization_id", "unknown charity organization")
		}
	}

	now := s.now().UTC()
	order := &models.Order{
		UserID:                userID,
		ServiceType:           in.ServiceType,
		DeliveryType:          in.DeliveryType,
		Status:                models.OrderStatusPending,
		TotalAmount:           in.TotalAmount,
		Currency:              currency,
		SpecialNotes:          in.SpecialNotes,
		CharityOrganizationID: charityID,
		AppointmentDate:       in.AppointmentDate,
		PaymentMethod:         in.PaymentMethod,
		PaymentStatus:         models.PaymentPending,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := s.repo.Orders.Create(ctx, order); err != nil {
		return nil, persistErr("create order", err)
	}

	s.invalidateStats(ctx, order.UserID)
	if s.events != nil {
		if err := s.events.PublishOrderCreated(ctx, OrderCreatedEvent{
			OrderID:      order.ID,
			UserID:       order.UserID,
			ServiceType:  string(order.ServiceType),
			DeliveryType: string(order.DeliveryType),
			TotalAmount:  order.TotalAmount,
			Currency:     order.Currency,
			CreatedAt:    order.CreatedAt,
		}); err != nil {
			s.log.Warn("publish order created failed", zap.String("order_id", order.ID.String()), zap.Error(err))
		}
	}

	return order, nil
}

func (s *orderService) GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	ord, err := s.repo.Orders.GetWithRelations(ctx, id)
	if err != nil {
		return nil, fetchErr("get order", err)
	}
	if ord == nil {
		return nil, notFound("order", id)
	}
	return ord, nil
}

func (s *orderService) GetUserOrders(ctx context.Context, userID uuid.UUID, f OrderFilter) ([]models.Order, error) {
	return s.list(ctx, &userID, f)
}

func (s *orderService) GetAllOrders(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	return s.list(ctx, nil, f)
}

func (s *orderService) GetOrdersByStatus(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	if !status.Valid() {
		return nil, invalid("status", "unknown order status")
	}
	return s.list(ctx, nil, OrderFilter{Status: &status})
}

func (s *orderService) list(ctx context.Context, userID *uuid.UUID, f OrderFilter) ([]models.Order, error) {
	if f.DateFrom != nil && f.DateTo != nil && f.DateTo.Before(*f.DateFrom) {
		return nil, invalid("dateTo", "date range end is before its start")
	}
	orders, err := s.repo.Orders.List(ctx, repository.OrderListFilter{
		UserID:       userID,
		Status:       f.Status,
		ServiceType:  f.ServiceType,
		DeliveryType: f.DeliveryType,
		DateFrom:     f.DateFrom,
		DateTo:       f.DateTo,
	})
	if err != nil {
		return nil, fetchErr("list orders", err)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

func (s *orderService) UpdateOrderStatus(ctx context.Context, id uuid.UUID, upd StatusUpdate) (*models.Order, error) {
	if !upd.Status.Valid() {
		return nil, invalid("status", "unknown order status")
	}

	var before, after *models.Order
	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		ord, err := tx.Orders.GetByID(ctx, id)
		if err != nil {
			return fetchErr("get order", err)
		}
		if ord == nil {
			return notFound("order", id)
		}
		if !ord.Status.CanTransitionTo(upd.Status) {
			return &InvalidTransitionError{Entity: "order", From: string(ord.Status), To: string(upd.Status)}
		}

		ok, err := tx.Orders.UpdateStatus(ctx, id, ord.Status, upd.Status)
		if err != nil {
			return persistErr("update order status", err)
		}
		if !ok {
			// status moved under us between the read and the write
			return &InvalidTransitionError{Entity: "order", From: string(ord.Status), To: string(upd.Status)}
		}

		before = ord
		after, err = tx.Orders.GetByID(ctx, id)
		if err != nil {
			return fetchErr("reload order", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateStats(ctx, after.UserID)
	if s.events != nil {
		ev := OrderStatusChangedEvent{
			OrderID:   after.ID,
			UserID:    after.UserID,
			From:      string(before.Status),
			To:        string(after.Status),
			ChangedAt: after.UpdatedAt,
		}
		if upd.Notes != nil {
			ev.Notes = truncateRunes(strings.TrimSpace(*upd.Notes), maxNotesLength)
		}
		if err := s.events.PublishOrderStatusChanged(ctx, ev); err != nil {
			s.log.Warn("publish order status changed failed", zap.String("order_id", after.ID.String()), zap.Error(err))
		}
	}
	return after, nil
}

func (s *orderService) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status models.PaymentStatus, reference *string) (*models.Order, error) {
	if !status.Valid() {
		return nil, invalid("payment_status", "unknown payment status")
	}

	var after *models.Order
	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		ord, err := tx.Orders.GetByID(ctx, id)
		if err != nil {
			return fetchErr("get order", err)
		}
		if ord == nil {
			return notFound("order", id)
		}
		if err := tx.Orders.UpdatePayment(ctx, id, status, reference); err != nil {
			return persistErr("update payment status", err)
		}
		after, err = tx.Orders.GetByID(ctx, id)
		if err != nil {
			return fetchErr("reload order", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return after, nil
}

func (s *orderService) CancelOrder(ctx context.Context, id uuid.UUID, reason string) (*models.Order, error) {
	reason = s.sanitizeReason(reason)

	var after *models.Order
	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		ord, err := tx.Orders.GetByID(ctx, id)
		if err != nil {
			return fetchErr("get order", err)
		}
		if ord == nil {
			return notFound("order", id)
		}

		switch {
		case ord.Status == models.OrderStatusCompleted || ord.Status == models.OrderStatusDelivered:
			return &TerminalStateError{Entity: "order", Status: string(ord.Status)}
		case !ord.Status.CanTransitionTo(models.OrderStatusCancelled):
			return &InvalidTransitionError{Entity: "order", From: string(ord.Status), To: string(models.OrderStatusCancelled)}
		}

		notes := ord.SpecialNotes
		if reason != "" {
			var base string
			if notes != nil {
				base = *notes
			}
			merged := base + "\nCancellation reason: " + reason
			notes = &merged
		}

		ok, err := tx.Orders.Cancel(ctx, id, ord.Status, notes)
		if err != nil {
			return persistErr("cancel order", err)
		}
		if !ok {
			return &InvalidTransitionError{Entity: "order", From: string(ord.Status), To: string(models.OrderStatusCancelled)}
		}

		after, err = tx.Orders.GetByID(ctx, id)
		if err != nil {
			return fetchErr("reload order", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateStats(ctx, after.UserID)
	if s.events != nil {
		if err := s.events.PublishOrderCancelled(ctx, OrderCancelledEvent{
			OrderID:     after.ID,
			UserID:      after.UserID,
			Reason:      reason,
			CancelledAt: s.now().UTC(),
		}); err != nil {
			s.log.Warn("publish order cancelled failed", zap.String("order_id", after.ID.String()), zap.Error(err))
		}
	}
	return after, nil
}

func (s *orderService) GetOrderStatistics(ctx context.Context, userID *uuid.UUID) (OrderStatistics, error) {
	key := statsKey(userID)
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, key); err == nil && raw != "" {
			var cached OrderStatistics
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return cached, nil
			}
		}
	}

	rows, err := s.repo.Orders.CountByStatus(ctx, userID)
	if err != nil {
		return OrderStatistics{}, fetchErr("count orders", err)
	}

	var st OrderStatistics
	for _, row := range rows {
		st.Total += row.Count
		switch row.Status {
		case models.OrderStatusPending:
			st.Pending += row.Count
		case models.OrderStatusInProgress:
			st.InProgress += row.Count
		case models.OrderStatusCompleted, models.OrderStatusDelivered:
			st.Completed += row.Count
		case models.OrderStatusCancelled:
			st.Cancelled += row.Count
		}
	}

	if s.cache != nil {
		if raw, err := json.Marshal(st); err == nil {
			if err := s.cache.Set(ctx, key, string(raw), statsCacheTTL); err != nil {
				s.log.Warn("cache order statistics failed", zap.String("key", key), zap.Error(err))
			}
		}
	}
	return st, nil
}

func (s *orderService) SearchOrders(ctx context.Context, term string) ([]models.Order, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, invalid("term", "search term is required")
	}
	orders, err := s.repo.Orders.Search(ctx, term)
	if err != nil {
		return nil, fetchErr("search orders", err)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

func (s *orderService) AttachMedia(ctx context.Context, userID, orderID uuid.UUID, in AttachMediaInput) (*models.MediaFile, error) {
	bucket, err := storage.Lookup(in.Bucket)
	if err != nil {
		return nil, invalid("bucket", err.Error())
	}
	if err := bucket.Validate(in.MimeType, in.FileSize); err != nil {
		field := "mime_type"
		if errors.Is(err, storage.ErrFileTooLarge) || errors.Is(err, storage.ErrEmptyFile) {
			field = "file_size"
		}
		return nil, invalid(field, err.Error())
	}
	if strings.TrimSpace(in.FileName) == "" {
		return nil, invalid("file_name", "file name is required")
	}
	if strings.TrimSpace(in.FileURL) == "" {
		return nil, invalid("file_url", "file url is required")
	}

	ord, err := s.repo.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fetchErr("get order", err)
	}
	if ord == nil {
		return nil, notFound("order", orderID)
	}
	if role, _ := RoleFromContext(ctx); ord.UserID != userID && !role.IsStaff() {
		return nil, ErrForbidden
	}

	m := &models.MediaFile{
		OrderID:   orderID,
		UserID:    userID,
		Bucket:    bucket.Name,
		FileName:  in.FileName,
		FileURL:   in.FileURL,
		FileType:  storage.MediaTypeOf(in.MimeType),
		MimeType:  storage.NormalizeMime(in.MimeType),
		FileSize:  in.FileSize,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Media.Create(ctx, m); err != nil {
		return nil, persistErr("create media file", err)
	}
	return m, nil
}

func (s *orderService) GetActiveCharities(ctx context.Context) ([]models.CharityOrganization, error) {
	list, err := s.repo.Charities.ListActive(ctx)
	if err != nil {
		return nil, fetchErr("list charities", err)
	}
	if list == nil {
		list = []models.CharityOrganization{}
	}
	return list, nil
}

func (s *orderService) invalidateStats(ctx context.Context, userID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, statsKey(nil), statsKey(&userID)); err != nil {
		s.log.Warn("invalidate order statistics failed", zap.Error(err))
	}
}

func statsKey(userID *uuid.UUID) string {
	if userID == nil {
		return "order_stats:all"
	}
	return "order_stats:" + userID.String()
}

func (s *orderService) sanitizeReason(reason string) string {
	return truncateRunes(strings.TrimSpace(reason), maxNotesLength)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
