package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barberbook/internal/httperr"
	"github.com/BruksfildServices01/barberbook/internal/models"
)

type PaymentLinkGormRepository struct {
	db *gorm.DB
}

func NewPaymentLinkGormRepository(db *gorm.DB) *PaymentLinkGormRepository {
	return &PaymentLinkGormRepository{db: db}
}

func (r *PaymentLinkGormRepository) List(ctx context.Context) ([]models.PaymentLink, error) {
	var links []models.PaymentLink
	if err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

func (r *PaymentLinkGormRepository) Find(ctx context.Context, id uuid.UUID) (*models.PaymentLink, error) {
	var l models.PaymentLink
	if err := r.db.WithContext(ctx).First(&l, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "payment_link_not_found")
	}
	return &l, nil
}

func (r *PaymentLinkGormRepository) Insert(ctx context.Context, l *models.PaymentLink) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *PaymentLinkGormRepository) Update(ctx context.Context, l *models.PaymentLink) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *PaymentLinkGormRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.PaymentLink{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return httperr.ErrNotFound("payment_link_not_found")
	}
	return nil
}
