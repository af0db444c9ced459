package dto

type CreateOrderRequest struct {
	ServiceType           string  `json:"service_type" binding:"required"`
	DeliveryType          string  `json:"delivery_type" binding:"required"`
	TotalAmount           string  `json:"total_amount" binding:"required"`
	Currency              string  `json:"currency" binding:"omitempty,len=3"`
	SpecialNotes          *string `json:"special_notes" binding:"omitempty,max=500"`
	CharityOrganizationID *string `json:"charity_organization_id" binding:"omitempty,uuid"`
	AppointmentDate       *string `json:"appointment_date"`
	PaymentMethod         *string `json:"payment_method"`
}

type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

type UpdateOrderStatusRequest struct {
	Status string  `json:"status" binding:"required"`
	Notes  *string `json:"notes"`
}

type UpdatePaymentRequest struct {
	Status    string  `json:"status" binding:"required"`
	Reference *string `json:"reference"`
}

type AttachMediaRequest struct {
	Bucket   string `json:"bucket" binding:"required"`
	FileName string `json:"file_name" binding:"required"`
	FileURL  string `json:"file_url" binding:"required"`
	MimeType string `json:"mime_type" binding:"required"`
	FileSize int64  `json:"file_size" binding:"required,gt=0"`
}
