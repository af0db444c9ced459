package repository

import (
	"context"

	"kasap-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CharityRepo interface {
	Create(ctx context.Context, c *models.CharityOrganization) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.CharityOrganization, error)
	ListActive(ctx context.Context) ([]models.CharityOrganization, error)
}

type charityRepo struct{ db *gorm.DB }

func NewCharityRepo(db *gorm.DB) CharityRepo { return &charityRepo{db: db} }

func (r *charityRepo) Create(ctx context.Context, c *models.CharityOrganization) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *charityRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.CharityOrganization, error) {
	return first[models.CharityOrganization](r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *charityRepo) ListActive(ctx context.Context) ([]models.CharityOrganization, error) {
	var list []models.CharityOrganization
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("name ASC").Find(&list).Error
	return list, err
}
