package identity

import (
	"context"
	"time"

	"kasap-service/internal/producer"
	"kasap-service/internal/token"

	"github.com/google/uuid"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
	NeedsRehash(hash string) bool
}

type TokenProvider interface {
	SignAccess(ctx context.Context, sub, sessionID uuid.UUID, role string, ttl time.Duration) (string, time.Time, error)
	ParseAndValidateAccess(ctx context.Context, token string) (*token.Claims, error)
}

// RateLimiter grants at most one reset request per key and cooldown window.
// AcquireCooldown reports false while an earlier window is still open.
type RateLimiter interface {
	AcquireCooldown(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

type EmailProducer interface {
	SendEmail(ctx context.Context, key string, msg producer.EmailMessage) error
}
