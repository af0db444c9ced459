package handlers

import (
	"net/http"

	"kasap-service/internal/dto"
	"kasap-service/internal/models"
	"kasap-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CalendarHandler struct {
	calendar service.CalendarService
	log      *zap.Logger
}

func NewCalendarHandler(calendar service.CalendarService, log *zap.Logger) *CalendarHandler {
	return &CalendarHandler{calendar: calendar, log: log}
}

// AvailableSlots godoc
// @Summary Bookable slots in a date range
// @Tags slots
// @Produce json
// @Param start_date query string true "First day (YYYY-MM-DD)"
// @Param end_date query string true "Last day, inclusive (YYYY-MM-DD)"
// @Success 200 {array} models.TimeSlot
// @Failure 400 {object} dto.ValidationErrorResponse
// @Router /api/v1/slots/available [get]
func (h *CalendarHandler) AvailableSlots(c *gin.Context) {
	from, err := parseDate(c.Query("start_date"))
	if err != nil {
		badParam(c, "start_date", "must be YYYY-MM-DD")
		return
	}
	to, err := parseDate(c.Query("end_date"))
	if err != nil {
		badParam(c, "end_date", "must be YYYY-MM-DD")
		return
	}
	slots, err := h.calendar.GetAvailableTimeSlots(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, slots)
}

// SlotsForDate godoc
// @Summary All slots of one day
// @Tags slots
// @Produce json
// @Param date path string true "Day (YYYY-MM-DD)"
// @Success 200 {array} models.TimeSlot
// @Router /api/v1/slots/date/{date} [get]
func (h *CalendarHandler) SlotsForDate(c *gin.Context) {
	day, err := parseDate(c.Param("date"))
	if err != nil {
		badParam(c, "date", "must be YYYY-MM-DD")
		return
	}
	slots, err := h.calendar.GetTimeSlotsForDate(c.Request.Context(), day)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, slots)
}

// SlotAvailability godoc
// @Summary Whether a slot can still be booked
// @Tags slots
// @Produce json
// @Param id path string true "Slot ID"
// @Success 200 {object} dto.AvailabilityResponse
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Router /api/v1/slots/{id}/availability [get]
func (h *CalendarHandler) SlotAvailability(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	available, err := h.calendar.IsTimeSlotAvailable(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.AvailabilityResponse{TimeSlotID: id.String(), Available: available})
}

// CreateSlot godoc
// @Summary Open a new time slot (staff)
// @Tags staff
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body dto.CreateTimeSlotRequest true "Slot"
// @Success 201 {object} models.TimeSlot
// @Failure 400 {object} dto.ValidationErrorResponse
// @Router /api/v1/staff/slots [post]
func (h *CalendarHandler) CreateSlot(c *gin.Context) {
	var req dto.CreateTimeSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.log, err)
		return
	}
	day, err := parseDate(req.Date)
	if err != nil {
		badParam(c, "date", "must be YYYY-MM-DD")
		return
	}
	slot, err := h.calendar.CreateTimeSlot(c.Request.Context(), service.CreateTimeSlotInput{
		Date:        day,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		MaxCapacity: req.MaxCapacity,
		IsAvailable: req.IsAvailable,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, slot)
}

// CreateAppointment godoc
// @Summary Book a slot
// @Tags appointments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body dto.CreateAppointmentRequest true "Booking"
// @Success 201 {object} models.Appointment
// @Failure 409 {object} dto.ConflictErrorResponse "Slot full or closed"
// @Router /api/v1/appointments [post]
func (h *CalendarHandler) CreateAppointment(c *gin.Context) {
	var req dto.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.log, err)
		return
	}
	slotID, err := uuid.Parse(req.TimeSlotID)
	if err != nil {
		badParam(c, "time_slot_id", "must be a UUID")
		return
	}
	in := service.CreateAppointmentInput{TimeSlotID: slotID, Notes: req.Notes}
	if req.OrderID != nil {
		oid, err := uuid.Parse(*req.OrderID)
		if err != nil {
			badParam(c, "order_id", "must be a UUID")
			return
		}
		in.OrderID = &oid
	}
	appt, err := h.calendar.CreateAppointment(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, appt)
}

// ListAppointments godoc
// @Summary Own appointments, newest first
// @Tags appointments
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.Appointment
// @Router /api/v1/appointments [get]
func (h *CalendarHandler) ListAppointments(c *gin.Context) {
	list, err := h.calendar.GetUserAppointments(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// UpcomingAppointments godoc
// @Summary Own pending or confirmed appointments from today on
// @Tags appointments
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.Appointment
// @Router /api/v1/appointments/upcoming [get]
func (h *CalendarHandler) UpcomingAppointments(c *gin.Context) {
	list, err := h.calendar.GetUpcomingAppointments(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// AppointmentStats godoc
// @Summary Own appointment counts by status
// @Tags appointments
// @Security BearerAuth
// @Produce json
// @Success 200 {object} service.AppointmentStats
// @Router /api/v1/appointments/stats [get]
func (h *CalendarHandler) AppointmentStats(c *gin.Context) {
	st, err := h.calendar.GetAppointmentStats(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// GetAppointment godoc
// @Summary Get own appointment
// @Tags appointments
// @Security BearerAuth
// @Produce json
// @Param id path string true "Appointment ID"
// @Success 200 {object} models.Appointment
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Router /api/v1/appointments/{id} [get]
func (h *CalendarHandler) GetAppointment(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	appt, err := h.calendar.GetAppointmentByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

// CancelAppointment godoc
// @Summary Cancel own appointment
// @Description Frees one spot of the slot
// @Tags appointments
// @Security BearerAuth
// @Produce json
// @Param id path string true "Appointment ID"
// @Success 200 {object} models.Appointment
// @Failure 403 {object} dto.ForbiddenErrorResponse
// @Failure 409 {object} dto.ConflictErrorResponse
// @Router /api/v1/appointments/{id}/cancel [post]
func (h *CalendarHandler) CancelAppointment(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	appt, err := h.calendar.CancelAppointment(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

// UpdateAppointmentStatus godoc
// @Summary Change an appointment status (staff)
// @Tags staff
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Appointment ID"
// @Param body body dto.UpdateAppointmentStatusRequest true "Target status"
// @Success 200 {object} models.Appointment
// @Failure 409 {object} dto.ConflictErrorResponse
// @Router /api/v1/staff/appointments/{id}/status [patch]
func (h *CalendarHandler) UpdateAppointmentStatus(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateAppointmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, h.log, err)
		return
	}
	appt, err := h.calendar.UpdateAppointmentStatus(c.Request.Context(), id, models.AppointmentStatus(req.Status))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}
