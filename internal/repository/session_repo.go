package repository

import (
	"context"
	"time"

	"kasap-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SessionRepo stores refresh sessions. A session is live while it is not
// revoked and expires_at is in the future.
type SessionRepo interface {
	Create(ctx context.Context, s *models.UserSession) error
	GetActive(ctx context.Context, id uuid.UUID, now time.Time) (*models.UserSession, error)
	Revoke(ctx context.Context, id uuid.UUID) (bool, error)
	RevokeAllByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

type sessionRepo struct{ db *gorm.DB }

func NewSessionRepo(db *gorm.DB) SessionRepo { return &sessionRepo{db: db} }

func (r *sessionRepo) live(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.UserSession{}).Where("revoked = ?", false)
}

func (r *sessionRepo) Create(ctx context.Context, s *models.UserSession) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *sessionRepo) GetActive(ctx context.Context, id uuid.UUID, now time.Time) (*models.UserSession, error) {
	return first[models.UserSession](r.live(ctx).Where("id = ? AND expires_at > ?", id, now.UTC()))
}

// Revoke reports false when the session was already revoked or never existed.
func (r *sessionRepo) Revoke(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.live(ctx).Where("id = ?", id).Update("revoked", true)
	return res.RowsAffected == 1, res.Error
}

func (r *sessionRepo) RevokeAllByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	res := r.live(ctx).Where("user_id = ?", userID).Update("revoked", true)
	return res.RowsAffected, res.Error
}
