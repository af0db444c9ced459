package dto

type CreateTimeSlotRequest struct {
	Date        string `json:"date" binding:"required"`
	StartTime   string `json:"start_time" binding:"required"`
	EndTime     string `json:"end_time" binding:"required"`
	MaxCapacity int    `json:"max_capacity" binding:"required,gt=0"`
	IsAvailable *bool  `json:"is_available"`
}

type CreateAppointmentRequest struct {
	TimeSlotID string  `json:"time_slot_id" binding:"required,uuid"`
	OrderID    *string `json:"order_id" binding:"omitempty,uuid"`
	Notes      *string `json:"notes" binding:"omitempty,max=500"`
}

type UpdateAppointmentStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type AvailabilityResponse struct {
	TimeSlotID string `json:"time_slot_id"`
	Available  bool   `json:"available"`
}
