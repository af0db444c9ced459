package service

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// StatsCache is a string key/value cache with TTL.
type StatsCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Identity is an account as seen by the auth provider.
type Identity struct {
	ID        uuid.UUID
	Email     string
	Role      string
	CreatedAt time.Time
}

type Session struct {
	AccessToken string
	ExpiresAt   time.Time
	Identity    Identity
}

// AuthProvider is the identity backend the auth adapter delegates to.
type AuthProvider interface {
	SignUp(ctx context.Context, email, password string) (*Identity, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, accessToken string) error
	GetSession(ctx context.Context, accessToken string) (*Session, error)
	ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error
	ConfirmPasswordReset(ctx context.Context, code, newPassword string) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
}
