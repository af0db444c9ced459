package service

import (
	"context"
	"time"
	"unicode/utf8"

	"kasap-service/internal/models"
	"kasap-service/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const clockLayout = "15:04"

type calendarService struct {
	repo   *repository.Repository
	events EventBus
	log    *zap.Logger
	now    func() time.Time
}

func NewCalendarService(repo *repository.Repository, events EventBus, log *zap.Logger) CalendarService {
	return &calendarService{
		repo:   repo,
		events: events,
		log:    log,
		now:    time.Now,
	}
}

func (s *calendarService) today() time.Time {
	return s.now().UTC()
}

func (s *calendarService) GetAvailableTimeSlots(ctx context.Context, from, to time.Time) ([]models.TimeSlot, error) {
	if time.Time(repository.Day(to)).Before(time.Time(repository.Day(from))) {
		return nil, invalid("endDate", "end date is before start date")
	}
	slots, err := s.repo.TimeSlots.ListAvailable(ctx, from, to)
	if err != nil {
		return nil, fetchErr("list available time slots", err)
	}
	if slots == nil {
		slots = []models.TimeSlot{}
	}
	return slots, nil
}

func (s *calendarService) GetTimeSlotsForDate(ctx context.Context, date time.Time) ([]models.TimeSlot, error) {
	slots, err := s.repo.TimeSlots.ListByDate(ctx, date)
	if err != nil {
		return nil, fetchErr("list time slots for date", err)
	}
	if slots == nil {
		slots = []models.TimeSlot{}
	}
	return slots, nil
}

func (s *calendarService) CreateTimeSlot(ctx context.Context, in CreateTimeSlotInput) (*models.TimeSlot, error) {
	if in.Date.IsZero() {
		return nil, invalid("date", "date is required")
	}
	start, err := time.Parse(clockLayout, in.StartTime)
	if err != nil {
		return nil, invalid("start_time", "start time must be HH:MM")
	}
	end, err := time.Parse(clockLayout, in.EndTime)
	if err != nil {
		return nil, invalid("end_time", "end time must be HH:MM")
	}
	if !end.After(start) {
		return nil, invalid("end_time", "end time must be after start time")
	}
	if in.MaxCapacity <= 0 {
		return nil, invalid("max_capacity", "max capacity must be greater than 0")
	}

	available := true
	if in.IsAvailable != nil {
		available = *in.IsAvailable
	}

	now := s.now().UTC()
	slot := &models.TimeSlot{
		Date:        repository.Day(in.Date),
		StartTime:   start.Format(clockLayout),
		EndTime:     end.Format(clockLayout),
		MaxCapacity: in.MaxCapacity,
		IsAvailable: available,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.TimeSlots.Create(ctx, slot); err != nil {
		return nil, persistErr("create time slot", err)
	}
	slot.AvailableSpots = slot.Spots()
	return slot, nil
}

func (s *calendarService) IsTimeSlotAvailable(ctx context.Context, id uuid.UUID) (bool, error) {
	slot, err := s.repo.TimeSlots.GetByID(ctx, id)
	if err != nil {
		return false, fetchErr("get time slot", err)
	}
	if slot == nil {
		return false, notFound("time slot", id)
	}
	return slot.Bookable(), nil
}

func (s *calendarService) CreateAppointment(ctx context.Context, in CreateAppointmentInput) (*models.Appointment, error) {
	userID, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	if in.TimeSlotID == uuid.Nil {
		return nil, invalid("time_slot_id", "time slot is required")
	}
	if in.Notes != nil && utf8.RuneCountInString(*in.Notes) > maxNotesLength {
		return nil, invalid("notes", "notes cannot exceed 500 characters")
	}
	if in.OrderID != nil {
		ord, err := s.repo.Orders.GetByID(ctx, *in.OrderID)
		if err != nil {
			return nil, fetchErr("get order", err)
		}
		if ord == nil {
			return nil, notFound("order", *in.OrderID)
		}
		if ord.UserID != userID {
			return nil, ErrForbidden
		}
	}

	var appt *models.Appointment
	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		booked, err := tx.TimeSlots.TryBook(ctx, in.TimeSlotID)
		if err != nil {
			return persistErr("book time slot", err)
		}
		if !booked {
			return ErrSlotUnavailable
		}

		now := s.now().UTC()
		a := &models.Appointment{
			UserID:     userID,
			OrderID:    in.OrderID,
			TimeSlotID: in.TimeSlotID,
			Status:     models.AppointmentPending,
			Notes:      in.Notes,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := tx.Appointments.Create(ctx, a); err != nil {
			return persistErr("create appointment", err)
		}

		appt, err = tx.Appointments.GetForUser(ctx, a.ID, userID)
		if err != nil {
			return fetchErr("reload appointment", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, appt, true)
	return appt, nil
}

func (s *calendarService) GetAppointmentByID(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	userID, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	a, err := s.repo.Appointments.GetForUser(ctx, id, userID)
	if err != nil {
		return nil, fetchErr("get appointment", err)
	}
	if a == nil {
		return nil, notFound("appointment", id)
	}
	return a, nil
}

func (s *calendarService) GetUserAppointments(ctx context.Context) ([]models.Appointment, error) {
	userID, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	list, err := s.repo.Appointments.ListByUser(ctx, userID)
	if err != nil {
		return nil, fetchErr("list appointments", err)
	}
	if list == nil {
		list = []models.Appointment{}
	}
	return list, nil
}

func (s *calendarService) GetUpcomingAppointments(ctx context.Context) ([]models.Appointment, error) {
	userID, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	list, err := s.repo.Appointments.ListUpcoming(ctx, userID, s.today())
	if err != nil {
		return nil, fetchErr("list upcoming appointments", err)
	}
	if list == nil {
		list = []models.Appointment{}
	}
	return list, nil
}

func (s *calendarService) UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, status models.AppointmentStatus) (*models.Appointment, error) {
	if !status.Valid() {
		return nil, invalid("status", "unknown appointment status")
	}

	var appt *models.Appointment
	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		a, err := tx.Appointments.GetByID(ctx, id)
		if err != nil {
			return fetchErr("get appointment", err)
		}
		if a == nil {
			return notFound("appointment", id)
		}
		if err := s.transition(ctx, tx, a, status); err != nil {
			return err
		}
		appt, err = tx.Appointments.GetForUser(ctx, id, a.UserID)
		if err != nil {
			return fetchErr("reload appointment", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if status == models.AppointmentCancelled {
		s.publish(ctx, appt, false)
	}
	return appt, nil
}

func (s *calendarService) CancelAppointment(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	userID, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	var appt *models.Appointment
	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		a, err := tx.Appointments.GetForUser(ctx, id, userID)
		if err != nil {
			return fetchErr("get appointment", err)
		}
		if a == nil {
			return ErrOwnership
		}
		if a.Status.IsTerminal() {
			return &TerminalStateError{Entity: "appointment", Status: string(a.Status)}
		}
		if err := s.transition(ctx, tx, a, models.AppointmentCancelled); err != nil {
			return err
		}
		appt, err = tx.Appointments.GetForUser(ctx, id, userID)
		if err != nil {
			return fetchErr("reload appointment", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, appt, false)
	return appt, nil
}

// transition moves a to next and gives the seat back when the appointment
// stops holding capacity.
func (s *calendarService) transition(ctx context.Context, tx *repository.Repository, a *models.Appointment, next models.AppointmentStatus) error {
	if !a.Status.CanTransitionTo(next) {
		return &InvalidTransitionError{Entity: "appointment", From: string(a.Status), To: string(next)}
	}
	ok, err := tx.Appointments.UpdateStatus(ctx, a.ID, a.Status, next)
	if err != nil {
		return persistErr("update appointment status", err)
	}
	if !ok {
		return &InvalidTransitionError{Entity: "appointment", From: string(a.Status), To: string(next)}
	}
	if a.Status.HoldsCapacity() && !next.HoldsCapacity() {
		if _, err := tx.TimeSlots.Release(ctx, a.TimeSlotID, s.today()); err != nil {
			return persistErr("release time slot", err)
		}
	}
	return nil
}

func (s *calendarService) GetAppointmentStats(ctx context.Context) (AppointmentStats, error) {
	userID, err := requireAuth(ctx)
	if err != nil {
		return AppointmentStats{}, err
	}
	rows, err := s.repo.Appointments.CountByStatus(ctx, userID)
	if err != nil {
		return AppointmentStats{}, fetchErr("count appointments", err)
	}

	var st AppointmentStats
	for _, row := range rows {
		st.Total += row.Count
		switch row.Status {
		case models.AppointmentPending:
			st.Pending += row.Count
		case models.AppointmentConfirmed:
			st.Confirmed += row.Count
		case models.AppointmentCompleted:
			st.Completed += row.Count
		case models.AppointmentCancelled:
			st.Cancelled += row.Count
		}
	}
	return st, nil
}

func (s *calendarService) publish(ctx context.Context, a *models.Appointment, booked bool) {
	if s.events == nil || a == nil {
		return
	}
	ev := AppointmentEvent{
		AppointmentID: a.ID,
		UserID:        a.UserID,
		TimeSlotID:    a.TimeSlotID,
		OrderID:       a.OrderID,
		Status:        string(a.Status),
		At:            s.now().UTC(),
	}
	var err error
	if booked {
		err = s.events.PublishAppointmentBooked(ctx, ev)
	} else {
		err = s.events.PublishAppointmentCancelled(ctx, ev)
	}
	if err != nil {
		s.log.Warn("publish appointment event failed", zap.String("appointment_id", a.ID.String()), zap.Error(err))
	}
}
