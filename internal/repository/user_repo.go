package repository

import (
	"context"
	"strings"
	"time"

	"kasap-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRepo keeps emails lower-cased and trimmed on every read and write.
type UserRepo interface {
	Create(ctx context.Context, u *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type userRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) UserRepo { return &userRepo{db: db} }

func canonicalEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

func (r *userRepo) users(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.User{})
}

func (r *userRepo) Create(ctx context.Context, u *models.User) error {
	u.Email = canonicalEmail(u.Email)
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return first[models.User](r.users(ctx).Where("email = ?", canonicalEmail(email)))
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return first[models.User](r.users(ctx).Where("id = ?", id))
}

func (r *userRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var n int64
	err := r.users(ctx).Where("email = ?", canonicalEmail(email)).Limit(1).Count(&n).Error
	return n > 0, err
}

func (r *userRepo) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	return r.users(ctx).Where("id = ?", id).
		Updates(map[string]any{"password_hash": hash, "updated_at": time.Now().UTC()}).Error
}

func (r *userRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.User{}).Error
}
