package repository

import (
	"context"

	"kasap-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MediaRepo interface {
	Create(ctx context.Context, m *models.MediaFile) error
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.MediaFile, error)
}

type mediaRepo struct{ db *gorm.DB }

func NewMediaRepo(db *gorm.DB) MediaRepo { return &mediaRepo{db: db} }

func (r *mediaRepo) Create(ctx context.Context, m *models.MediaFile) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *mediaRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.MediaFile, error) {
	var list []models.MediaFile
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("created_at ASC").Find(&list).Error
	return list, err
}
