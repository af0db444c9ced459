package models

type ServiceType string

const (
	ServiceKurban ServiceType = "kurban"
	ServiceAdak   ServiceType = "adak"
	ServiceSukur  ServiceType = "sukur"
)

func (s ServiceType) Valid() bool {
	switch s {
	case ServiceKurban, ServiceAdak, ServiceSukur:
		return true
	}
	return false
}

type DeliveryType string

const (
	DeliveryPersonal   DeliveryType = "personal"
	DeliveryCharity    DeliveryType = "charity"
	DeliveryRestaurant DeliveryType = "restaurant"
	DeliveryAfrica     DeliveryType = "africa"
)

func (d DeliveryType) Valid() bool {
	switch d {
	case DeliveryPersonal, DeliveryCharity, DeliveryRestaurant, DeliveryAfrica:
		return true
	}
	return false
}

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusScheduled  OrderStatus = "scheduled"
	OrderStatusInProgress OrderStatus = "in_progress"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusDonated    OrderStatus = "donated"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusScheduled,
	OrderStatusInProgress,
	OrderStatusCompleted,
	OrderStatusDelivered,
	OrderStatusDonated,
	OrderStatusCancelled,
}

var orderTransitions = map[OrderStatus]map[OrderStatus]bool{
	OrderStatusPending: {
		OrderStatusScheduled:  true,
		OrderStatusInProgress: true,
		OrderStatusCancelled:  true,
	},
	OrderStatusScheduled: {
		OrderStatusInProgress: true,
		OrderStatusCancelled:  true,
	},
	OrderStatusInProgress: {
		OrderStatusCompleted: true,
		OrderStatusCancelled: true,
	},
	OrderStatusCompleted: {
		OrderStatusDelivered: true,
	},
	OrderStatusDelivered: {},
	OrderStatusDonated:   {},
	OrderStatusCancelled: {},
}

func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	return orderTransitions[s][next]
}

func (s OrderStatus) IsTerminal() bool {
	return s.Valid() && len(orderTransitions[s]) == 0
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

func (p PaymentStatus) Valid() bool {
	switch p {
	case PaymentPending, PaymentCompleted, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentMethodPayPal PaymentMethod = "paypal"
	PaymentMethodIBAN   PaymentMethod = "iban"
	PaymentMethodLocal  PaymentMethod = "local"
)

func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentMethodPayPal, PaymentMethodIBAN, PaymentMethodLocal:
		return true
	}
	return false
}

type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "PENDING"
	AppointmentConfirmed AppointmentStatus = "CONFIRMED"
	AppointmentCancelled AppointmentStatus = "CANCELLED"
	AppointmentCompleted AppointmentStatus = "COMPLETED"
)

var AppointmentStatuses = []AppointmentStatus{
	AppointmentPending,
	AppointmentConfirmed,
	AppointmentCancelled,
	AppointmentCompleted,
}

var appointmentTransitions = map[AppointmentStatus]map[AppointmentStatus]bool{
	AppointmentPending: {
		AppointmentConfirmed: true,
		AppointmentCancelled: true,
		AppointmentCompleted: true,
	},
	AppointmentConfirmed: {
		AppointmentCancelled: true,
		AppointmentCompleted: true,
	},
	AppointmentCancelled: {},
	AppointmentCompleted: {},
}

func (s AppointmentStatus) Valid() bool {
	_, ok := appointmentTransitions[s]
	return ok
}

func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	return appointmentTransitions[s][next]
}

func (s AppointmentStatus) IsTerminal() bool {
	return s.Valid() && len(appointmentTransitions[s]) == 0
}

// HoldsCapacity reports whether an appointment in this status occupies a slot seat.
func (s AppointmentStatus) HoldsCapacity() bool {
	return s != AppointmentCancelled
}

type Language string

const (
	LanguageTurkish Language = "tr"
	LanguageEnglish Language = "en"
	LanguageArabic  Language = "ar"
)

func (l Language) Valid() bool {
	switch l {
	case LanguageTurkish, LanguageEnglish, LanguageArabic:
		return true
	}
	return false
}

type Role string

const (
	RoleCustomer Role = "customer"
	RoleButcher  Role = "butcher"
	RoleAdmin    Role = "admin"
)

func (r Role) IsStaff() bool {
	return r == RoleButcher || r == RoleAdmin
}

type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)
