package repository

import (
	"context"
	"errors"
	"time"

	"kasap-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TimeSlotRepo interface {
	Create(ctx context.Context, s *models.TimeSlot) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.TimeSlot, error)
	ListAvailable(ctx context.Context, from, to time.Time) ([]models.TimeSlot, error)
	ListByDate(ctx context.Context, date time.Time) ([]models.TimeSlot, error)

	// TryBook takes one seat if the slot is open and below capacity.
	// It closes the slot when the last seat is taken.
	TryBook(ctx context.Context, id uuid.UUID) (bool, error)
	// Release gives one seat back. A slot that was closed because it was full
	// is reopened unless its date is before today.
	Release(ctx context.Context, id uuid.UUID, today time.Time) (bool, error)

	CloseBefore(ctx context.Context, today time.Time) (int64, error)
	ReconcileBookings(ctx context.Context) (int64, error)
}

type timeSlotRepo struct{ db *gorm.DB }

func NewTimeSlotRepo(db *gorm.DB) TimeSlotRepo { return &timeSlotRepo{db: db} }

// Day truncates t to a calendar date in UTC.
func Day(t time.Time) datatypes.Date {
	y, m, d := t.Date()
	return datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

func (r *timeSlotRepo) Create(ctx context.Context, s *models.TimeSlot) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *timeSlotRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.TimeSlot, error) {
	var slot models.TimeSlot
	err := r.db.WithContext(ctx).First(&slot, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *timeSlotRepo) ListAvailable(ctx context.Context, from, to time.Time) ([]models.TimeSlot, error) {
	var list []models.TimeSlot
	err := r.db.WithContext(ctx).
		Where("is_available = ?", true).
		Where("date >= ? AND date <= ?", Day(from), Day(to)).
		Order("date ASC").
		Order("start_time ASC").
		Find(&list).Error
	return list, err
}

func (r *timeSlotRepo) ListByDate(ctx context.Context, date time.Time) ([]models.TimeSlot, error) {
	var list []models.TimeSlot
	err := r.db.WithContext(ctx).
		Where("date = ?", Day(date)).
		Order("start_time ASC").
		Find(&list).Error
	return list, err
}

func (r *timeSlotRepo) TryBook(ctx context.Context, id uuid.UUID) (bool, error) {
	tx := r.db.WithContext(ctx).Exec(`
UPDATE time_slots
SET current_bookings = current_bookings + 1,
    is_available = CASE WHEN current_bookings + 1 >= max_capacity THEN false ELSE is_available END,
    updated_at = @now
WHERE id = @id AND is_available = true AND current_bookings < max_capacity`,
		map[string]any{"id": id, "now": time.Now().UTC()},
	)
	return tx.RowsAffected > 0, tx.Error
}

func (r *timeSlotRepo) Release(ctx context.Context, id uuid.UUID, today time.Time) (bool, error) {
	tx := r.db.WithContext(ctx).Exec(`
UPDATE time_slots
SET current_bookings = current_bookings - 1,
    is_available = CASE WHEN current_bookings >= max_capacity AND date >= @today THEN true ELSE is_available END,
    updated_at = @now
WHERE id = @id AND current_bookings > 0`,
		map[string]any{"id": id, "today": Day(today), "now": time.Now().UTC()},
	)
	return tx.RowsAffected > 0, tx.Error
}

func (r *timeSlotRepo) CloseBefore(ctx context.Context, today time.Time) (int64, error) {
	tx := r.db.WithContext(ctx).
		Model(&models.TimeSlot{}).
		Where("date < ? AND is_available = ?", Day(today), true).
		Updates(map[string]any{"is_available": false, "updated_at": time.Now().UTC()})
	return tx.RowsAffected, tx.Error
}

func (r *timeSlotRepo) ReconcileBookings(ctx context.Context) (int64, error) {
	tx := r.db.WithContext(ctx).Exec(`
UPDATE time_slots
SET current_bookings = (
    SELECT COUNT(*) FROM appointments a
    WHERE a.time_slot_id = time_slots.id AND a.status <> @cancelled
)
WHERE current_bookings <> (
    SELECT COUNT(*) FROM appointments a
    WHERE a.time_slot_id = time_slots.id AND a.status <> @cancelled
)`,
		map[string]any{"cancelled": string(models.AppointmentCancelled)},
	)
	return tx.RowsAffected, tx.Error
}
