package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/barberbook/internal/audit"
	domain "github.com/BruksfildServices01/barberbook/internal/domain/booking"
	"github.com/BruksfildServices01/barberbook/internal/httperr"
	"github.com/BruksfildServices01/barberbook/internal/models"
	"github.com/BruksfildServices01/barberbook/internal/storage"
	"github.com/BruksfildServices01/barberbook/internal/validators"
)

// Catalog manages providers and the services they perform.
type Catalog struct {
	repo      domain.Repository
	photos    storage.PhotoStore
	reminders domain.ReminderScheduler
	audit     *audit.Dispatcher
	log       *zap.Logger

	servicesChanged []func(context.Context)
}

func New(
	repo domain.Repository,
	photos storage.PhotoStore,
	reminders domain.ReminderScheduler,
	audit *audit.Dispatcher,
	log *zap.Logger,
) *Catalog {
	if log == nil {
		log = zap.NewNop()
	}
	return &Catalog{repo: repo, photos: photos, reminders: reminders, audit: audit, log: log}
}

// OnServicesChanged registers fn to run after any service is created,
// updated or deleted.
func (c *Catalog) OnServicesChanged(fn func(context.Context)) {
	c.servicesChanged = append(c.servicesChanged, fn)
}

func (c *Catalog) notifyServices(ctx context.Context) {
	for _, fn := range c.servicesChanged {
		fn(ctx)
	}
}

func (c *Catalog) record(userID *uuid.UUID, action, entity string, id uuid.UUID, meta any) {
	c.audit.Dispatch(audit.Event{
		UserID:   userID,
		Action:   action,
		Entity:   entity,
		EntityID: id.String(),
		Metadata: meta,
	})
}

// ======================================================
// PROVIDERS
// ======================================================

type ProviderInput struct {
	Name   string
	Bio    string
	Active *bool
}

type ProviderPatch struct {
	Name   *string
	Bio    *string
	Active *bool
}

func (c *Catalog) ListProviders(ctx context.Context, activeOnly bool) ([]models.Provider, error) {
	providers, err := c.repo.ListProviders(ctx, activeOnly)
	if err != nil {
		return nil, httperr.Persist("providers_list_failed", err)
	}
	return providers, nil
}

func (c *Catalog) GetProvider(ctx context.Context, id uuid.UUID) (*models.Provider, error) {
	return c.repo.FindProvider(ctx, id)
}

func (c *Catalog) CreateProvider(ctx context.Context, in ProviderInput, userID *uuid.UUID) (*models.Provider, error) {
	name, ok := validators.Name(in.Name)
	if !ok {
		return nil, httperr.ErrValidation("invalid_name")
	}

	p := &models.Provider{Name: name, Bio: in.Bio, Active: true}
	if in.Active != nil {
		p.Active = *in.Active
	}

	if err := c.repo.InsertProvider(ctx, p); err != nil {
		return nil, httperr.ErrPersistence("provider_not_saved", err)
	}

	c.record(userID, "provider_created", "provider", p.ID, nil)
	return p, nil
}

func (c *Catalog) UpdateProvider(
	ctx context.Context,
	id uuid.UUID,
	patch ProviderPatch,
	userID *uuid.UUID,
) (*models.Provider, error) {

	p, err := c.repo.FindProvider(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		name, ok := validators.Name(*patch.Name)
		if !ok {
			return nil, httperr.ErrValidation("invalid_name")
		}
		p.Name = name
	}
	if patch.Bio != nil {
		p.Bio = *patch.Bio
	}
	if patch.Active != nil {
		p.Active = *patch.Active
	}

	if err := c.repo.UpdateProvider(ctx, p); err != nil {
		return nil, httperr.ErrPersistence("provider_not_saved", err)
	}

	c.record(userID, "provider_updated", "provider", p.ID, nil)
	return p, nil
}

// DeleteProvider also removes the provider's bookings, their pending
// reminders and the avatar.
func (c *Catalog) DeleteProvider(ctx context.Context, id uuid.UUID, userID *uuid.UUID) error {
	p, err := c.repo.FindProvider(ctx, id)
	if err != nil {
		return err
	}

	bookings, err := c.repo.ListBookings(ctx, domain.BookingFilter{ProviderID: &id})
	if err != nil {
		return httperr.Persist("provider_not_deleted", err)
	}

	if err := c.repo.DeleteProvider(ctx, id); err != nil {
		return httperr.Persist("provider_not_deleted", err)
	}

	if err := domain.CancelReminders(ctx, c.reminders, bookings); err != nil {
		c.log.Warn("reminder cancel failed", zap.String("provider_id", id.String()), zap.Error(err))
	}
	c.deletePhoto(ctx, p.AvatarRef)

	c.record(userID, "provider_deleted", "provider", id, map[string]any{"bookings": len(bookings)})
	return nil
}

// ======================================================
// AVATAR
// ======================================================

// SetProviderAvatar stores the new picture before swapping it in, and
// removes the previous one only once the provider is saved.
func (c *Catalog) SetProviderAvatar(
	ctx context.Context,
	id uuid.UUID,
	data []byte,
	userID *uuid.UUID,
) (*models.Provider, error) {

	if len(data) == 0 {
		return nil, httperr.ErrValidation("invalid_image")
	}

	p, err := c.repo.FindProvider(ctx, id)
	if err != nil {
		return nil, err
	}

	ref, err := c.photos.Save(ctx, "avatar", data)
	if err != nil {
		return nil, photoError(err)
	}

	old := p.AvatarRef
	p.AvatarRef = ref
	if err := c.repo.UpdateProvider(ctx, p); err != nil {
		c.deletePhoto(ctx, ref)
		return nil, httperr.ErrPersistence("provider_not_saved", err)
	}
	c.deletePhoto(ctx, old)

	c.record(userID, "provider_avatar_updated", "provider", p.ID, nil)
	return p, nil
}

func (c *Catalog) ClearProviderAvatar(ctx context.Context, id uuid.UUID, userID *uuid.UUID) (*models.Provider, error) {
	p, err := c.repo.FindProvider(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.AvatarRef == "" {
		return p, nil
	}

	old := p.AvatarRef
	p.AvatarRef = ""
	if err := c.repo.UpdateProvider(ctx, p); err != nil {
		return nil, httperr.ErrPersistence("provider_not_saved", err)
	}
	c.deletePhoto(ctx, old)

	c.record(userID, "provider_avatar_cleared", "provider", p.ID, nil)
	return p, nil
}

func (c *Catalog) deletePhoto(ctx context.Context, ref string) {
	if ref == "" || c.photos == nil {
		return
	}
	if err := c.photos.Delete(ctx, ref); err != nil {
		c.log.Warn("photo delete failed", zap.String("ref", ref), zap.Error(err))
	}
}

func photoError(err error) error {
	if errors.Is(err, storage.ErrNotAnImage) {
		return httperr.ErrValidation("invalid_image")
	}
	return httperr.ErrPersistence("photo_not_saved", err)
}

// ======================================================
// SERVICES
// ======================================================

type ServiceInput struct {
	Name        string
	DurationMin int
	Price       float64
}

type ServicePatch struct {
	Name        *string
	DurationMin *int
	Price       *float64
}

func validDuration(min int) bool {
	return min >= 1 && min <= domain.MaxDurationMinutes
}

func (c *Catalog) ListServices(ctx context.Context) ([]models.Service, error) {
	services, err := c.repo.ListServices(ctx)
	if err != nil {
		return nil, httperr.Persist("services_list_failed", err)
	}
	return services, nil
}

func (c *Catalog) CreateService(ctx context.Context, in ServiceInput, userID *uuid.UUID) (*models.Service, error) {
	name, ok := validators.Name(in.Name)
	if !ok {
		return nil, httperr.ErrValidation("invalid_name")
	}
	if !validDuration(in.DurationMin) {
		return nil, httperr.ErrValidation("invalid_duration")
	}
	if in.Price < 0 {
		return nil, httperr.ErrValidation("invalid_price")
	}

	s := &models.Service{Name: name, DurationMin: in.DurationMin, Price: in.Price}
	if err := c.repo.InsertService(ctx, s); err != nil {
		return nil, httperr.ErrPersistence("service_not_saved", err)
	}

	c.notifyServices(ctx)
	c.record(userID, "service_created", "service", s.ID, map[string]any{
		"duration_min": s.DurationMin,
		"price":        s.Price,
	})
	return s, nil
}

func (c *Catalog) UpdateService(
	ctx context.Context,
	id uuid.UUID,
	patch ServicePatch,
	userID *uuid.UUID,
) (*models.Service, error) {

	s, err := c.repo.FindService(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		name, ok := validators.Name(*patch.Name)
		if !ok {
			return nil, httperr.ErrValidation("invalid_name")
		}
		s.Name = name
	}
	if patch.DurationMin != nil {
		if !validDuration(*patch.DurationMin) {
			return nil, httperr.ErrValidation("invalid_duration")
		}
		s.DurationMin = *patch.DurationMin
	}
	if patch.Price != nil {
		if *patch.Price < 0 {
			return nil, httperr.ErrValidation("invalid_price")
		}
		s.Price = *patch.Price
	}

	if err := c.repo.UpdateService(ctx, s); err != nil {
		return nil, httperr.ErrPersistence("service_not_saved", err)
	}

	c.notifyServices(ctx)
	c.record(userID, "service_updated", "service", s.ID, nil)
	return s, nil
}

// DeleteService keeps past bookings, detached from the service.
func (c *Catalog) DeleteService(ctx context.Context, id uuid.UUID, userID *uuid.UUID) error {
	if err := c.repo.DeleteService(ctx, id); err != nil {
		return httperr.Persist("service_not_deleted", err)
	}
	c.notifyServices(ctx)
	c.record(userID, "service_deleted", "service", id, nil)
	return nil
}
