package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/barberbook/internal/domain/waitlist"
	"github.com/BruksfildServices01/barberbook/internal/models"
)

type WaitlistGormRepository struct {
	db *gorm.DB
}

func NewWaitlistGormRepository(db *gorm.DB) *WaitlistGormRepository {
	return &WaitlistGormRepository{db: db}
}

func (r *WaitlistGormRepository) Transaction(
	ctx context.Context,
	fn func(tx domain.Repository) error,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&WaitlistGormRepository{db: tx})
	})
}

func (r *WaitlistGormRepository) ListWaiting(ctx context.Context) ([]models.WaitlistEntry, error) {
	var entries []models.WaitlistEntry
	if err := r.db.WithContext(ctx).
		Where("status = ?", models.WaitlistStatusWaiting).
		Order("created_at ASC").
		Order("id ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *WaitlistGormRepository) FindForUpdate(
	ctx context.Context,
	id uuid.UUID,
) (*models.WaitlistEntry, error) {

	var e models.WaitlistEntry
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&e, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "waitlist_entry_not_found")
	}
	return &e, nil
}

func (r *WaitlistGormRepository) Insert(ctx context.Context, e *models.WaitlistEntry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *WaitlistGormRepository) Update(ctx context.Context, e *models.WaitlistEntry) error {
	return r.db.WithContext(ctx).Save(e).Error
}

func (r *WaitlistGormRepository) ServiceDurations(ctx context.Context) ([]int, error) {
	var durations []int
	if err := r.db.WithContext(ctx).
		Model(&models.Service{}).
		Pluck("duration_min", &durations).Error; err != nil {
		return nil, err
	}
	return durations, nil
}

var _ domain.Repository = (*WaitlistGormRepository)(nil)
