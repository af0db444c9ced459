package repository

import (
	"context"
	"errors"
	"time"

	"kasap-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentStatusCount struct {
	Status models.AppointmentStatus
	Count  int64
}

type AppointmentRepo interface {
	Create(ctx context.Context, a *models.Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Appointment, error)
	GetForUser(ctx context.Context, id, userID uuid.UUID) (*models.Appointment, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Appointment, error)
	ListUpcoming(ctx context.Context, userID uuid.UUID, today time.Time) ([]models.Appointment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.AppointmentStatus) (bool, error)
	CountByStatus(ctx context.Context, userID uuid.UUID) ([]AppointmentStatusCount, error)
}

type appointmentRepo struct{ db *gorm.DB }

func NewAppointmentRepo(db *gorm.DB) AppointmentRepo { return &appointmentRepo{db: db} }

// orderSummary limits the joined order to the fields an appointment list shows.
func orderSummary(db *gorm.DB) *gorm.DB {
	return db.Select("id", "user_id", "service_type", "delivery_type", "status", "total_amount", "currency", "created_at", "updated_at")
}

func (r *appointmentRepo) Create(ctx context.Context, a *models.Appointment) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *appointmentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	var a models.Appointment
	err := r.db.WithContext(ctx).Preload("TimeSlot").First(&a, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *appointmentRepo) GetForUser(ctx context.Context, id, userID uuid.UUID) (*models.Appointment, error) {
	var a models.Appointment
	err := r.db.WithContext(ctx).
		Preload("TimeSlot").
		Preload("Order", orderSummary).
		First(&a, "id = ? AND user_id = ?", id, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *appointmentRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Appointment, error) {
	var list []models.Appointment
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Preload("TimeSlot").
		Preload("Order", orderSummary).
		Find(&list).Error
	return list, err
}

func (r *appointmentRepo) ListUpcoming(ctx context.Context, userID uuid.UUID, today time.Time) ([]models.Appointment, error) {
	var list []models.Appointment
	err := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Select("appointments.*").
		Joins("JOIN time_slots ON time_slots.id = appointments.time_slot_id").
		Where("appointments.user_id = ?", userID).
		Where("appointments.status IN ?", []string{string(models.AppointmentPending), string(models.AppointmentConfirmed)}).
		Where("time_slots.date >= ?", Day(today)).
		Order("time_slots.date ASC").
		Order("time_slots.start_time ASC").
		Preload("TimeSlot").
		Preload("Order", orderSummary).
		Find(&list).Error
	return list, err
}

func (r *appointmentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.AppointmentStatus) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{
			"status":     to,
			"updated_at": time.Now().UTC(),
		})
	return tx.RowsAffected > 0, tx.Error
}

func (r *appointmentRepo) CountByStatus(ctx context.Context, userID uuid.UUID) ([]AppointmentStatusCount, error) {
	var rows []AppointmentStatusCount
	err := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Select("status, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&rows).Error
	return rows, err
}
