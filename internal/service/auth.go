package service

import (
	"context"
	"time"

	"kasap-service/internal/models"

	"github.com/google/uuid"
)

// PasswordResetRedirect is the deep link the reset e-mail points to.
const PasswordResetRedirect = "kasapapp://reset-password"

type SignUpInput struct {
	Email     string           `json:"email"`
	Password  string           `json:"password"`
	FirstName string           `json:"first_name"`
	LastName  string           `json:"last_name"`
	Phone     *string          `json:"phone,omitempty"`
	Language  *models.Language `json:"language,omitempty"`
}

// ProfileUpdate is a sparse update; nil fields are left untouched.
type ProfileUpdate struct {
	FirstName               *string                         `json:"first_name,omitempty"`
	LastName                *string                         `json:"last_name,omitempty"`
	Phone                   *string                         `json:"phone,omitempty"`
	Language                *models.Language                `json:"language,omitempty"`
	AvatarURL               *string                         `json:"avatar_url,omitempty"`
	NotificationPreferences *models.NotificationPreferences `json:"notification_preferences,omitempty"`
}

type AuthUser struct {
	ID          uuid.UUID           `json:"id"`
	Email       string              `json:"email"`
	Role        models.Role         `json:"role"`
	Profile     *models.UserProfile `json:"profile,omitempty"`
	AccessToken string              `json:"access_token,omitempty"`
	ExpiresAt   *time.Time          `json:"expires_at,omitempty"`
}

type AuthService interface {
	SignUp(ctx context.Context, in SignUpInput) (*AuthUser, error)
	SignIn(ctx context.Context, email, password string) (*AuthUser, error)
	SignOut(ctx context.Context, accessToken string) error
	GetCurrentUser(ctx context.Context, accessToken string) (*AuthUser, error)
	ResetPassword(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, code, newPassword string) error
	UpdateProfile(ctx context.Context, userID uuid.UUID, upd ProfileUpdate) (*models.UserProfile, error)
}
