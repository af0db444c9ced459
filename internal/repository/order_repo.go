package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"kasap-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderListFilter narrows order lists. Nil fields are ignored; DateFrom and
// DateTo bound created_at inclusively.
type OrderListFilter struct {
	UserID       *uuid.UUID
	Status       *models.OrderStatus
	ServiceType  *models.ServiceType
	DeliveryType *models.DeliveryType
	DateFrom     *time.Time
	DateTo       *time.Time
}

type OrderStatusCount struct {
	Status models.OrderStatus
	Count  int64
}

type OrderRepo interface {
	Create(ctx context.Context, o *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetWithRelations(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, f OrderListFilter) ([]models.Order, error)
	Search(ctx context.Context, term string) ([]models.Order, error)
	// UpdateStatus and Cancel only apply while the row still has status from,
	// and report whether it did.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.OrderStatus) (bool, error)
	Cancel(ctx context.Context, id uuid.UUID, from models.OrderStatus, notes *string) (bool, error)
	UpdatePayment(ctx context.Context, id uuid.UUID, status models.PaymentStatus, reference *string) error
	CountByStatus(ctx context.Context, userID *uuid.UUID) ([]OrderStatusCount, error)
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepo(db *gorm.DB) OrderRepo { return &orderRepo{db: db} }

func (r *orderRepo) Create(ctx context.Context, o *models.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *orderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var ord models.Order
	err := r.db.WithContext(ctx).First(&ord, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ord, nil
}

func (r *orderRepo) GetWithRelations(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var ord models.Order
	err := r.db.WithContext(ctx).
		Preload("Profile").
		Preload("Charity").
		Preload("MediaFiles", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Reviews", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		First(&ord, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ord, nil
}

func (r *orderRepo) List(ctx context.Context, f OrderListFilter) ([]models.Order, error) {
	q := r.db.WithContext(ctx).Model(&models.Order{})

	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.ServiceType != nil {
		q = q.Where("service_type = ?", *f.ServiceType)
	}
	if f.DeliveryType != nil {
		q = q.Where("delivery_type = ?", *f.DeliveryType)
	}
	if f.DateFrom != nil {
		q = q.Where("created_at >= ?", f.DateFrom.UTC())
	}
	if f.DateTo != nil {
		q = q.Where("created_at <= ?", f.DateTo.UTC())
	}

	var list []models.Order
	err := q.Order("created_at DESC").Preload("Profile").Find(&list).Error
	return list, err
}

func (r *orderRepo) Search(ctx context.Context, term string) ([]models.Order, error) {
	like := "%" + escapeLike(strings.ToLower(term)) + "%"

	var list []models.Order
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("orders.*").
		Joins("LEFT JOIN user_profiles ON user_profiles.user_id = orders.user_id").
		Where(
			"LOWER(COALESCE(orders.special_notes, '')) LIKE ? ESCAPE '\\' OR "+
				"LOWER(COALESCE(user_profiles.first_name, '')) LIKE ? ESCAPE '\\' OR "+
				"LOWER(COALESCE(user_profiles.last_name, '')) LIKE ? ESCAPE '\\'",
			like, like, like,
		).
		Order("orders.created_at DESC").
		Preload("Profile").
		Find(&list).Error
	return list, err
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.OrderStatus) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{
			"status":     to,
			"updated_at": time.Now().UTC(),
		})
	return tx.RowsAffected > 0, tx.Error
}

func (r *orderRepo) UpdatePayment(ctx context.Context, id uuid.UUID, status models.PaymentStatus, reference *string) error {
	upd := map[string]any{
		"payment_status": status,
		"updated_at":     time.Now().UTC(),
	}
	if reference != nil {
		upd["payment_reference"] = *reference
	}
	return r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(upd).Error
}

func (r *orderRepo) Cancel(ctx context.Context, id uuid.UUID, from models.OrderStatus, notes *string) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{
			"status":        models.OrderStatusCancelled,
			"special_notes": notes,
			"updated_at":    time.Now().UTC(),
		})
	return tx.RowsAffected > 0, tx.Error
}

func (r *orderRepo) CountByStatus(ctx context.Context, userID *uuid.UUID) ([]OrderStatusCount, error) {
	q := r.db.WithContext(ctx).Model(&models.Order{}).Select("status, COUNT(*) AS count")
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}

	var rows []OrderStatusCount
	err := q.Group("status").Scan(&rows).Error
	return rows, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
