package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/barberbook/internal/models"
)

// BookingFilter narrows ListBookings. Zero values mean "no restriction".
// From is inclusive and To exclusive on StartAt.
type BookingFilter struct {
	ProviderID    *uuid.UUID
	ClientID      *uuid.UUID
	Statuses      []models.BookingStatus
	ExcludeStatus models.BookingStatus
	From          *time.Time
	To            *time.Time
	Descending    bool
	Limit         int
}

type ClientFilter struct {
	NameContains  string
	OrderByVisits bool
}

type Repository interface {
	// Transaction runs fn against a repository bound to one database
	// transaction. Returning an error rolls everything back.
	Transaction(ctx context.Context, fn func(tx Repository) error) error

	// -------- Provider --------
	ListProviders(ctx context.Context, activeOnly bool) ([]models.Provider, error)
	FindProvider(ctx context.Context, id uuid.UUID) (*models.Provider, error)
	// LockProvider serialises overlap-checked writes for one provider.
	LockProvider(ctx context.Context, id uuid.UUID) (*models.Provider, error)
	InsertProvider(ctx context.Context, p *models.Provider) error
	UpdateProvider(ctx context.Context, p *models.Provider) error
	DeleteProvider(ctx context.Context, id uuid.UUID) error

	// -------- Service --------
	ListServices(ctx context.Context) ([]models.Service, error)
	FindService(ctx context.Context, id uuid.UUID) (*models.Service, error)
	InsertService(ctx context.Context, s *models.Service) error
	UpdateService(ctx context.Context, s *models.Service) error
	DeleteService(ctx context.Context, id uuid.UUID) error

	// -------- Client --------
	ListClients(ctx context.Context, f ClientFilter) ([]models.Client, error)
	FindClient(ctx context.Context, id uuid.UUID) (*models.Client, error)
	InsertClient(ctx context.Context, c *models.Client) error
	UpdateClient(ctx context.Context, c *models.Client) error
	DeleteClient(ctx context.Context, id uuid.UUID) error
	IncrementClientVisits(ctx context.Context, id uuid.UUID) error

	// -------- Booking --------
	FindBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	FindBookingForUpdate(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	ListBookings(ctx context.Context, f BookingFilter) ([]models.Booking, error)
	InsertBooking(ctx context.Context, b *models.Booking) error
	UpdateBooking(ctx context.Context, b *models.Booking) error

	// -------- Haircut --------
	ListHaircuts(ctx context.Context, clientID uuid.UUID) ([]models.Haircut, error)
	FindHaircut(ctx context.Context, id uuid.UUID) (*models.Haircut, error)
	InsertHaircut(ctx context.Context, h *models.Haircut) error
	DeleteHaircut(ctx context.Context, id uuid.UUID) error
}
