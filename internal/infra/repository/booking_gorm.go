package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/barberbook/internal/domain/booking"
	"github.com/BruksfildServices01/barberbook/internal/httperr"
	"github.com/BruksfildServices01/barberbook/internal/models"
)

type BookingGormRepository struct {
	db *gorm.DB
}

func NewBookingGormRepository(db *gorm.DB) *BookingGormRepository {
	return &BookingGormRepository{db: db}
}

func (r *BookingGormRepository) Transaction(
	ctx context.Context,
	fn func(tx domain.Repository) error,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&BookingGormRepository{db: tx})
	})
}

// notFound maps gorm's missing-row error to a typed not-found code.
func notFound(err error, code string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return httperr.ErrNotFound(code)
	}
	return err
}

// --------------------------------------------------
// Provider
// --------------------------------------------------

func (r *BookingGormRepository) ListProviders(
	ctx context.Context,
	activeOnly bool,
) ([]models.Provider, error) {

	q := r.db.WithContext(ctx).Order("name ASC")
	if activeOnly {
		q = q.Where("active = ?", true)
	}

	var providers []models.Provider
	if err := q.Find(&providers).Error; err != nil {
		return nil, err
	}
	return providers, nil
}

func (r *BookingGormRepository) FindProvider(
	ctx context.Context,
	id uuid.UUID,
) (*models.Provider, error) {

	var p models.Provider
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "provider_not_found")
	}
	return &p, nil
}

func (r *BookingGormRepository) LockProvider(
	ctx context.Context,
	id uuid.UUID,
) (*models.Provider, error) {

	var p models.Provider
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&p, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "provider_not_found")
	}
	return &p, nil
}

func (r *BookingGormRepository) InsertProvider(ctx context.Context, p *models.Provider) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *BookingGormRepository) UpdateProvider(ctx context.Context, p *models.Provider) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// DeleteProvider removes the provider together with its bookings.
func (r *BookingGormRepository) DeleteProvider(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("provider_id = ?", id).Delete(&models.Booking{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Provider{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return httperr.ErrNotFound("provider_not_found")
		}
		return nil
	})
}

// --------------------------------------------------
// Service
// --------------------------------------------------

func (r *BookingGormRepository) ListServices(ctx context.Context) ([]models.Service, error) {
	var services []models.Service
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&services).Error; err != nil {
		return nil, err
	}
	return services, nil
}

func (r *BookingGormRepository) FindService(
	ctx context.Context,
	id uuid.UUID,
) (*models.Service, error) {

	var s models.Service
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "service_not_found")
	}
	return &s, nil
}

func (r *BookingGormRepository) InsertService(ctx context.Context, s *models.Service) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *BookingGormRepository) UpdateService(ctx context.Context, s *models.Service) error {
	return r.db.WithContext(ctx).Save(s).Error
}

// DeleteService detaches the service from its bookings instead of removing them.
func (r *BookingGormRepository) DeleteService(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Booking{}).
			Where("service_id = ?", id).
			Update("service_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Service{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return httperr.ErrNotFound("service_not_found")
		}
		return nil
	})
}

// --------------------------------------------------
// Client
// --------------------------------------------------

func (r *BookingGormRepository) ListClients(
	ctx context.Context,
	f domain.ClientFilter,
) ([]models.Client, error) {

	q := r.db.WithContext(ctx)

	if name := strings.TrimSpace(f.NameContains); name != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}

	if f.OrderByVisits {
		q = q.Order("visits_count DESC").Order("name ASC")
	} else {
		q = q.Order("name ASC")
	}

	var clients []models.Client
	if err := q.Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

func (r *BookingGormRepository) FindClient(
	ctx context.Context,
	id uuid.UUID,
) (*models.Client, error) {

	var c models.Client
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "client_not_found")
	}
	return &c, nil
}

func (r *BookingGormRepository) InsertClient(ctx context.Context, c *models.Client) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *BookingGormRepository) UpdateClient(ctx context.Context, c *models.Client) error {
	return r.db.WithContext(ctx).Save(c).Error
}

// DeleteClient removes the client with its bookings and haircut history.
func (r *BookingGormRepository) DeleteClient(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("client_id = ?", id).Delete(&models.Booking{}).Error; err != nil {
			return err
		}
		if err := tx.Where("client_id = ?", id).Delete(&models.Haircut{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Client{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return httperr.ErrNotFound("client_not_found")
		}
		return nil
	})
}

func (r *BookingGormRepository) IncrementClientVisits(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&models.Client{}).
		Where("id = ?", id).
		UpdateColumn("visits_count", gorm.Expr("visits_count + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return httperr.ErrNotFound("client_not_found")
	}
	return nil
}

// --------------------------------------------------
// Booking
// --------------------------------------------------

func (r *BookingGormRepository) withRefs() *gorm.DB {
	return r.db.
		Preload("Client").
		Preload("Provider").
		Preload("Service")
}

func (r *BookingGormRepository) FindBooking(
	ctx context.Context,
	id uuid.UUID,
) (*models.Booking, error) {

	var b models.Booking
	if err := r.withRefs().WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "booking_not_found")
	}
	return &b, nil
}

func (r *BookingGormRepository) FindBookingForUpdate(
	ctx context.Context,
	id uuid.UUID,
) (*models.Booking, error) {

	var b models.Booking
	if err := r.withRefs().WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&b, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "booking_not_found")
	}
	return &b, nil
}

func (r *BookingGormRepository) ListBookings(
	ctx context.Context,
	f domain.BookingFilter,
) ([]models.Booking, error) {

	q := r.withRefs().WithContext(ctx)

	if f.ProviderID != nil {
		q = q.Where("provider_id = ?", *f.ProviderID)
	}
	if f.ClientID != nil {
		q = q.Where("client_id = ?", *f.ClientID)
	}
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	if f.ExcludeStatus != "" {
		q = q.Where("status <> ?", f.ExcludeStatus)
	}
	if f.From != nil {
		q = q.Where("start_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("start_at < ?", *f.To)
	}
	if f.Descending {
		q = q.Order("start_at DESC")
	} else {
		q = q.Order("start_at ASC")
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var bookings []models.Booking
	if err := q.Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *BookingGormRepository) InsertBooking(ctx context.Context, b *models.Booking) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(b).Error
}

func (r *BookingGormRepository) UpdateBooking(ctx context.Context, b *models.Booking) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(b).Error
}

// --------------------------------------------------
// Haircut
// --------------------------------------------------

func (r *BookingGormRepository) ListHaircuts(
	ctx context.Context,
	clientID uuid.UUID,
) ([]models.Haircut, error) {

	var cuts []models.Haircut
	if err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("taken_at DESC").
		Find(&cuts).Error; err != nil {
		return nil, err
	}
	return cuts, nil
}

func (r *BookingGormRepository) FindHaircut(
	ctx context.Context,
	id uuid.UUID,
) (*models.Haircut, error) {

	var h models.Haircut
	if err := r.db.WithContext(ctx).First(&h, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "haircut_not_found")
	}
	return &h, nil
}

func (r *BookingGormRepository) InsertHaircut(ctx context.Context, h *models.Haircut) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(h).Error
}

func (r *BookingGormRepository) DeleteHaircut(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Haircut{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return httperr.ErrNotFound("haircut_not_found")
	}
	return nil
}

// Compile-time check
var _ domain.Repository = (*BookingGormRepository)(nil)
