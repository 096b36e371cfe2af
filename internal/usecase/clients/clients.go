package clients

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/barberbook/internal/audit"
	"github.com/BruksfildServices01/barberbook/internal/clock"
	domain "github.com/BruksfildServices01/barberbook/internal/domain/booking"
	"github.com/BruksfildServices01/barberbook/internal/httperr"
	"github.com/BruksfildServices01/barberbook/internal/models"
	"github.com/BruksfildServices01/barberbook/internal/storage"
	"github.com/BruksfildServices01/barberbook/internal/validators"
)

type Service struct {
	repo      domain.Repository
	photos    storage.PhotoStore
	reminders domain.ReminderScheduler
	clock     clock.Clock
	audit     *audit.Dispatcher
	log       *zap.Logger
}

func New(
	repo domain.Repository,
	photos storage.PhotoStore,
	reminders domain.ReminderScheduler,
	clk clock.Clock,
	audit *audit.Dispatcher,
	log *zap.Logger,
) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, photos: photos, reminders: reminders, clock: clk, audit: audit, log: log}
}

type ClientInput struct {
	Name  string
	Phone string
	Notes string
}

type ClientPatch struct {
	Name  *string
	Phone *string
	Notes *string
}

// ======================================================
// CLIENTS
// ======================================================

// List searches by name; byVisits puts the most loyal clients first.
func (s *Service) List(ctx context.Context, query string, byVisits bool) ([]models.Client, error) {
	clients, err := s.repo.ListClients(ctx, domain.ClientFilter{
		NameContains:  query,
		OrderByVisits: byVisits,
	})
	if err != nil {
		return nil, httperr.Persist("clients_list_failed", err)
	}
	return clients, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	return s.repo.FindClient(ctx, id)
}

func (s *Service) Create(ctx context.Context, in ClientInput, userID *uuid.UUID) (*models.Client, error) {
	name, ok := validators.Name(in.Name)
	if !ok {
		return nil, httperr.ErrValidation("invalid_name")
	}

	c := &models.Client{Name: name, Phone: in.Phone, Notes: in.Notes}
	if err := s.repo.InsertClient(ctx, c); err != nil {
		return nil, httperr.ErrPersistence("client_not_saved", err)
	}

	s.audit.Dispatch(audit.Event{UserID: userID, Action: "client_created", Entity: "client", EntityID: c.ID.String()})
	return c, nil
}

// Update never touches VisitsCount, which only moves through completed bookings.
func (s *Service) Update(
	ctx context.Context,
	id uuid.UUID,
	patch ClientPatch,
	userID *uuid.UUID,
) (*models.Client, error) {

	c, err := s.repo.FindClient(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		name, ok := validators.Name(*patch.Name)
		if !ok {
			return nil, httperr.ErrValidation("invalid_name")
		}
		c.Name = name
	}
	if patch.Phone != nil {
		c.Phone = *patch.Phone
	}
	if patch.Notes != nil {
		c.Notes = *patch.Notes
	}

	if err := s.repo.UpdateClient(ctx, c); err != nil {
		return nil, httperr.ErrPersistence("client_not_saved", err)
	}

	s.audit.Dispatch(audit.Event{UserID: userID, Action: "client_updated", Entity: "client", EntityID: c.ID.String()})
	return c, nil
}

// Delete removes the client with its bookings and haircuts. Photos are
// removed afterwards; a failed photo delete is only logged.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, userID *uuid.UUID) error {
	haircuts, err := s.repo.ListHaircuts(ctx, id)
	if err != nil {
		return httperr.Persist("client_not_deleted", err)
	}
	bookings, err := s.repo.ListBookings(ctx, domain.BookingFilter{ClientID: &id})
	if err != nil {
		return httperr.Persist("client_not_deleted", err)
	}

	if err := s.repo.DeleteClient(ctx, id); err != nil {
		return httperr.Persist("client_not_deleted", err)
	}

	if err := domain.CancelReminders(ctx, s.reminders, bookings); err != nil {
		s.log.Warn("reminder cancel failed", zap.String("client_id", id.String()), zap.Error(err))
	}
	for _, h := range haircuts {
		s.deletePhoto(ctx, h.PhotoRef)
	}

	s.audit.Dispatch(audit.Event{UserID: userID, Action: "client_deleted", Entity: "client", EntityID: id.String()})
	return nil
}

// ======================================================
// HAIRCUTS
// ======================================================

type HaircutInput struct {
	TakenAt time.Time
	Notes   string
	Photo   []byte
}

func (s *Service) Haircuts(ctx context.Context, clientID uuid.UUID) ([]models.Haircut, error) {
	if _, err := s.repo.FindClient(ctx, clientID); err != nil {
		return nil, err
	}
	haircuts, err := s.repo.ListHaircuts(ctx, clientID)
	if err != nil {
		return nil, httperr.Persist("haircuts_list_failed", err)
	}
	return haircuts, nil
}

// AddHaircut stores the optional photo first, and removes it again when the
// record cannot be saved.
func (s *Service) AddHaircut(
	ctx context.Context,
	clientID uuid.UUID,
	in HaircutInput,
	userID *uuid.UUID,
) (*models.Haircut, error) {

	if _, err := s.repo.FindClient(ctx, clientID); err != nil {
		return nil, err
	}

	h := &models.Haircut{
		ClientID: &clientID,
		TakenAt:  in.TakenAt,
		Notes:    in.Notes,
	}
	if h.TakenAt.IsZero() {
		h.TakenAt = s.clock.Now()
	}

	if len(in.Photo) > 0 {
		if s.photos == nil {
			return nil, httperr.ErrValidation("photos_disabled")
		}
		ref, err := s.photos.Save(ctx, "haircut", in.Photo)
		if err != nil {
			return nil, photoError(err)
		}
		h.PhotoRef = ref
	}

	if err := s.repo.InsertHaircut(ctx, h); err != nil {
		s.deletePhoto(ctx, h.PhotoRef)
		return nil, httperr.ErrPersistence("haircut_not_saved", err)
	}

	s.audit.Dispatch(audit.Event{
		UserID:   userID,
		Action:   "haircut_added",
		Entity:   "client",
		EntityID: clientID.String(),
		Metadata: map[string]any{"haircut_id": h.ID, "photo": h.PhotoRef != ""},
	})
	return h, nil
}

func (s *Service) DeleteHaircut(ctx context.Context, id uuid.UUID, userID *uuid.UUID) error {
	h, err := s.repo.FindHaircut(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteHaircut(ctx, id); err != nil {
		return httperr.Persist("haircut_not_deleted", err)
	}
	s.deletePhoto(ctx, h.PhotoRef)

	s.audit.Dispatch(audit.Event{UserID: userID, Action: "haircut_deleted", Entity: "haircut", EntityID: id.String()})
	return nil
}

func (s *Service) deletePhoto(ctx context.Context, ref string) {
	if ref == "" || s.photos == nil {
		return
	}
	if err := s.photos.Delete(ctx, ref); err != nil {
		s.log.Warn("photo delete failed", zap.String("ref", ref), zap.Error(err))
	}
}

func photoError(err error) error {
	if errors.Is(err, storage.ErrNotAnImage) {
		return httperr.ErrValidation("invalid_image")
	}
	return httperr.ErrPersistence("photo_not_saved", err)
}
