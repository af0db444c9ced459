package dto

type SignUpRequest struct {
	Email     string  `json:"email" binding:"required,email"`
	Password  string  `json:"password" binding:"required,min=6"`
	FirstName string  `json:"first_name" binding:"required"`
	LastName  string  `json:"last_name" binding:"required"`
	Phone     *string `json:"phone"`
	Language  *string `json:"language" binding:"omitempty,oneof=tr en ar"`
}

type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ResetPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ConfirmResetRequest struct {
	Code     string `json:"code" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

type NotificationPreferences struct {
	PushNotifications    bool `json:"pushNotifications"`
	EmailNotifications   bool `json:"emailNotifications"`
	OrderUpdates         bool `json:"orderUpdates"`
	MediaUpdates         bool `json:"mediaUpdates"`
	AppointmentReminders bool `json:"appointmentReminders"`
}

type UpdateProfileRequest struct {
	FirstName               *string                  `json:"first_name"`
	LastName                *string                  `json:"last_name"`
	Phone                   *string                  `json:"phone"`
	Language                *string                  `json:"language" binding:"omitempty,oneof=tr en ar"`
	AvatarURL               *string                  `json:"avatar_url" binding:"omitempty,url"`
	NotificationPreferences *NotificationPreferences `json:"notification_preferences"`
}

type ProfileResponse struct {
	ID                      string                  `json:"id"`
	FirstName               string                  `json:"first_name"`
	LastName                string                  `json:"last_name"`
	Phone                   *string                 `json:"phone,omitempty"`
	Language                string                  `json:"language"`
	AvatarURL               *string                 `json:"avatar_url,omitempty"`
	NotificationPreferences NotificationPreferences `json:"notification_preferences"`
}

type AuthUserResponse struct {
	ID          string           `json:"id"`
	Email       string           `json:"email"`
	Role        string           `json:"role"`
	Profile     *ProfileResponse `json:"profile,omitempty"`
	AccessToken string           `json:"access_token,omitempty"`
	ExpiresAt   *int64           `json:"expires_at,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
