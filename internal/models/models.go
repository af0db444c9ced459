package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Order struct {
	ID                    uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID                uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	ServiceType           ServiceType     `gorm:"type:text;not null" json:"service_type"`
	DeliveryType          DeliveryType    `gorm:"type:text;not null" json:"delivery_type"`
	Status                OrderStatus     `gorm:"type:text;not null;index" json:"status"`
	TotalAmount           decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_amount"`
	Currency              string          `gorm:"type:char(3);not null" json:"currency"`
	SpecialNotes          *string         `gorm:"type:text" json:"special_notes,omitempty"`
	CharityOrganizationID *uuid.UUID      `gorm:"type:uuid;index" json:"charity_organization_id,omitempty"`
	AppointmentDate       *time.Time      `json:"appointment_date,omitempty"`
	PaymentMethod         *PaymentMethod  `gorm:"type:text" json:"payment_method,omitempty"`
	PaymentStatus         PaymentStatus   `gorm:"type:text;not null" json:"payment_status"`
	PaymentReference      *string         `gorm:"type:text" json:"payment_reference,omitempty"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	Profile    *UserProfile         `gorm:"foreignKey:UserID;references:UserID" json:"user_profile,omitempty"`
	Charity    *CharityOrganization `gorm:"foreignKey:CharityOrganizationID" json:"charity_organization,omitempty"`
	MediaFiles []MediaFile          `gorm:"foreignKey:OrderID" json:"media_files,omitempty"`
	Reviews    []Review             `gorm:"foreignKey:OrderID" json:"reviews,omitempty"`
}

func (Order) TableName() string { return "orders" }

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// TimeSlot is a bookable window on one day. StartTime and EndTime are "HH:MM".
type TimeSlot struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Date            datatypes.Date `gorm:"not null;index:ix_time_slots_date_start,priority:1" json:"date"`
	StartTime       string         `gorm:"type:varchar(5);not null;index:ix_time_slots_date_start,priority:2" json:"start_time"`
	EndTime         string         `gorm:"type:varchar(5);not null" json:"end_time"`
	MaxCapacity     int            `gorm:"not null" json:"max_capacity"`
	CurrentBookings int            `gorm:"not null" json:"current_bookings"`
	IsAvailable     bool           `gorm:"not null;index" json:"is_available"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	AvailableSpots int `gorm:"-" json:"available_spots"`
}

func (TimeSlot) TableName() string { return "time_slots" }

func (t *TimeSlot) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

func (t *TimeSlot) AfterFind(*gorm.DB) error {
	t.AvailableSpots = t.Spots()
	return nil
}

// Spots is max_capacity minus current_bookings, floored at zero.
func (t TimeSlot) Spots() int {
	if n := t.MaxCapacity - t.CurrentBookings; n > 0 {
		return n
	}
	return 0
}

// Bookable reports whether one more appointment fits into the slot.
func (t TimeSlot) Bookable() bool {
	return t.IsAvailable && t.CurrentBookings < t.MaxCapacity
}

type Appointment struct {
	ID         uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID         `gorm:"type:uuid;not null;index" json:"user_id"`
	OrderID    *uuid.UUID        `gorm:"type:uuid;index" json:"order_id,omitempty"`
	TimeSlotID uuid.UUID         `gorm:"type:uuid;not null;index" json:"time_slot_id"`
	Status     AppointmentStatus `gorm:"type:text;not null;index" json:"status"`
	Notes      *string           `gorm:"type:text" json:"notes,omitempty"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	TimeSlot *TimeSlot `gorm:"foreignKey:TimeSlotID" json:"time_slot,omitempty"`
	Order    *Order    `gorm:"foreignKey:OrderID" json:"order,omitempty"`
}

func (Appointment) TableName() string { return "appointments" }

func (a *Appointment) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

type NotificationPreferences struct {
	PushNotifications    bool `json:"pushNotifications"`
	EmailNotifications   bool `json:"emailNotifications"`
	OrderUpdates         bool `json:"orderUpdates"`
	MediaUpdates         bool `json:"mediaUpdates"`
	AppointmentReminders bool `json:"appointmentReminders"`
}

func DefaultNotificationPreferences() NotificationPreferences {
	return NotificationPreferences{
		PushNotifications:    true,
		EmailNotifications:   true,
		OrderUpdates:         true,
		MediaUpdates:         true,
		AppointmentReminders: true,
	}
}

type UserProfile struct {
	ID                      uuid.UUID                                   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID                  uuid.UUID                                   `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	FirstName               string                                      `gorm:"type:text;not null" json:"first_name"`
	LastName                string                                      `gorm:"type:text;not null" json:"last_name"`
	Phone                   *string                                     `gorm:"type:text" json:"phone,omitempty"`
	Language                Language                                    `gorm:"type:varchar(2);not null" json:"language"`
	NotificationPreferences datatypes.JSONType[NotificationPreferences] `json:"notification_preferences"`
	AvatarURL               *string                                     `gorm:"type:text" json:"avatar_url,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (UserProfile) TableName() string { return "user_profiles" }

func (p *UserProfile) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type CharityOrganization struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"type:text;not null" json:"name"`
	Description  *string   `gorm:"type:text" json:"description,omitempty"`
	LogoURL      *string   `gorm:"type:text" json:"logo_url,omitempty"`
	WebsiteURL   *string   `gorm:"type:text" json:"website_url,omitempty"`
	ContactEmail *string   `gorm:"type:text" json:"contact_email,omitempty"`
	ContactPhone *string   `gorm:"type:text" json:"contact_phone,omitempty"`
	IsActive     bool      `gorm:"not null;index" json:"is_active"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (CharityOrganization) TableName() string { return "charity_organizations" }

func (c *CharityOrganization) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type MediaFile struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID  uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null" json:"user_id"`
	Bucket   string    `gorm:"type:text;not null" json:"bucket"`
	FileName string    `gorm:"type:text;not null" json:"file_name"`
	FileURL  string    `gorm:"type:text;not null" json:"file_url"`
	FileType MediaType `gorm:"type:text;not null" json:"file_type"`
	MimeType string    `gorm:"type:text;not null" json:"mime_type"`
	FileSize int64     `gorm:"not null" json:"file_size"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (MediaFile) TableName() string { return "media_files" }

func (m *MediaFile) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

type Review struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID     uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null" json:"user_id"`
	Rating      int       `gorm:"not null" json:"rating"`
	Comment     *string   `gorm:"type:text" json:"comment,omitempty"`
	IsAnonymous bool      `gorm:"not null" json:"is_anonymous"`
	IsApproved  bool      `gorm:"not null" json:"is_approved"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (Review) TableName() string { return "reviews" }

func (r *Review) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// User is an identity owned by the built-in identity provider.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email        string    `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash string    `gorm:"type:text;not null"`
	Role         Role      `gorm:"type:text;not null"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// UserSession backs an access token; its ID is the token's jti.
type UserSession struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ExpiresAt time.Time `gorm:"not null;index"`
	Revoked   bool      `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null"`
}

func (UserSession) TableName() string { return "user_sessions" }

func (s *UserSession) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type PasswordResetToken struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Email     string    `gorm:"type:text;not null"`
	CodeHash  string    `gorm:"type:text;not null;uniqueIndex"`
	ExpiresAt time.Time `gorm:"not null;index"`
	Consumed  bool      `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null"`
}

func (PasswordResetToken) TableName() string { return "password_reset_tokens" }

func (t *PasswordResetToken) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// All lists every persisted model in migration order.
func All() []any {
	return []any{
		&User{},
		&UserSession{},
		&PasswordResetToken{},
		&UserProfile{},
		&CharityOrganization{},
		&Order{},
		&MediaFile{},
		&Review{},
		&TimeSlot{},
		&Appointment{},
	}
}
