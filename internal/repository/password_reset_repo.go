package repository

import (
	"context"
	"time"

	"kasap-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PasswordResetRepo only ever sees the SHA-256 of a reset code.
type PasswordResetRepo interface {
	Create(ctx context.Context, t *models.PasswordResetToken) error
	GetValidByHash(ctx context.Context, codeHash string, now time.Time) (*models.PasswordResetToken, error)
	Consume(ctx context.Context, id uuid.UUID) (bool, error)
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) (int64, error)
	FindLatestByUser(ctx context.Context, userID uuid.UUID) (*models.PasswordResetToken, error)
}

type passwordResetRepo struct{ db *gorm.DB }

func NewPasswordResetRepo(db *gorm.DB) PasswordResetRepo { return &passwordResetRepo{db: db} }

func (r *passwordResetRepo) tokens(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.PasswordResetToken{})
}

func (r *passwordResetRepo) Create(ctx context.Context, t *models.PasswordResetToken) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *passwordResetRepo) GetValidByHash(ctx context.Context, codeHash string, now time.Time) (*models.PasswordResetToken, error) {
	q := r.tokens(ctx).Where("code_hash = ?", codeHash).
		Where("consumed = ?", false).
		Where("expires_at > ?", now.UTC())
	return first[models.PasswordResetToken](q)
}

// Consume flips consumed once; a second caller gets false.
func (r *passwordResetRepo) Consume(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.tokens(ctx).Where("id = ? AND consumed = ?", id, false).Update("consumed", true)
	return res.RowsAffected == 1, res.Error
}

func (r *passwordResetRepo) DeleteAllForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.PasswordResetToken{})
	return res.RowsAffected, res.Error
}

func (r *passwordResetRepo) FindLatestByUser(ctx context.Context, userID uuid.UUID) (*models.PasswordResetToken, error) {
	return first[models.PasswordResetToken](r.tokens(ctx).Where("user_id = ?", userID).Order("created_at DESC"))
}
