package service

import (
	"context"
	"time"

	"kasap-service/internal/models"

	"github.com/google/uuid"
)

type CreateTimeSlotInput struct {
	Date        time.Time `json:"date"`
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`
	MaxCapacity int       `json:"max_capacity"`
	IsAvailable *bool     `json:"is_available,omitempty"`
}

type CreateAppointmentInput struct {
	TimeSlotID uuid.UUID  `json:"time_slot_id"`
	OrderID    *uuid.UUID `json:"order_id,omitempty"`
	Notes      *string    `json:"notes,omitempty"`
}

type AppointmentStats struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Confirmed int64 `json:"confirmed"`
	Completed int64 `json:"completed"`
	Cancelled int64 `json:"cancelled"`
}

// CalendarService manages time slots and the caller's appointments.
// Appointment operations take the caller from the context (see WithUserID).
type CalendarService interface {
	GetAvailableTimeSlots(ctx context.Context, from, to time.Time) ([]models.TimeSlot, error)
	GetTimeSlotsForDate(ctx context.Context, date time.Time) ([]models.TimeSlot, error)
	CreateTimeSlot(ctx context.Context, in CreateTimeSlotInput) (*models.TimeSlot, error)
	IsTimeSlotAvailable(ctx context.Context, id uuid.UUID) (bool, error)

	CreateAppointment(ctx context.Context, in CreateAppointmentInput) (*models.Appointment, error)
	GetAppointmentByID(ctx context.Context, id uuid.UUID) (*models.Appointment, error)
	GetUserAppointments(ctx context.Context) ([]models.Appointment, error)
	GetUpcomingAppointments(ctx context.Context) ([]models.Appointment, error)
	UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, status models.AppointmentStatus) (*models.Appointment, error)
	CancelAppointment(ctx context.Context, id uuid.UUID) (*models.Appointment, error)
	GetAppointmentStats(ctx context.Context) (AppointmentStats, error)
}
