package repository

import (
	"context"

	"kasap-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProfileRepo interface {
	Create(ctx context.Context, p *models.UserProfile) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error)
	// Update writes only the given columns and reports whether a row matched.
	Update(ctx context.Context, userID uuid.UUID, fields map[string]any) (bool, error)
}

type profileRepo struct{ db *gorm.DB }

func NewProfileRepo(db *gorm.DB) ProfileRepo { return &profileRepo{db: db} }

func (r *profileRepo) Create(ctx context.Context, p *models.UserProfile) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *profileRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	return first[models.UserProfile](r.db.WithContext(ctx).Where("user_id = ?", userID))
}

func (r *profileRepo) Update(ctx context.Context, userID uuid.UUID, fields map[string]any) (bool, error) {
	if len(fields) == 0 {
		var cnt int64
		err := r.db.WithContext(ctx).Model(&models.UserProfile{}).Where("user_id = ?", userID).Count(&cnt).Error
		return cnt > 0, err
	}
	tx := r.db.WithContext(ctx).Model(&models.UserProfile{}).Where("user_id = ?", userID).Updates(fields)
	return tx.RowsAffected > 0, tx.Error
}
