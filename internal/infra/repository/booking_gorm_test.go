package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	domain "github.com/BruksfildServices01/barberbook/internal/domain/booking"
	"github.com/BruksfildServices01/barberbook/internal/httperr"
	"github.com/BruksfildServices01/barberbook/internal/models"
	"github.com/BruksfildServices01/barberbook/internal/testdb"
)

type fixture struct {
	repo     *BookingGormRepository
	client   *models.Client
	provider *models.Provider
	service  *models.Service
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	repo := NewBookingGormRepository(testdb.Open(t))

	f := fixture{
		repo:     repo,
		client:   &models.Client{Name: "Carlos"},
		provider: &models.Provider{Name: "Pedro", Active: true},
		service:  &models.Service{Name: "Corte", DurationMin: 30, Price: 40},
	}
	if err := repo.InsertClient(ctx, f.client); err != nil {
		t.Fatalf("insert client: %v", err)
	}
	if err := repo.InsertProvider(ctx, f.provider); err != nil {
		t.Fatalf("insert provider: %v", err)
	}
	if err := repo.InsertService(ctx, f.service); err != nil {
		t.Fatalf("insert service: %v", err)
	}
	return f
}

func (f fixture) book(t *testing.T, start time.Time) *models.Booking {
	t.Helper()
	b := domain.New(f.client, f.provider, f.service, start)
	if err := f.repo.InsertBooking(context.Background(), b); err != nil {
		t.Fatalf("insert booking: %v", err)
	}
	return b
}

func TestDeleteService_NullifiesBookings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.book(t, time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC))

	if err := f.repo.DeleteService(ctx, f.service.ID); err != nil {
		t.Fatalf("delete service: %v", err)
	}

	got, err := f.repo.FindBooking(ctx, b.ID)
	if err != nil {
		t.Fatalf("booking must survive service deletion: %v", err)
	}
	if got.ServiceID != nil || got.Service != nil {
		t.Fatalf("expected detached service, got %v", got.ServiceID)
	}
	if !domain.End(got).Equal(got.StartAt) {
		t.Fatalf("booking without service must have zero duration")
	}
}

func TestDeleteProvider_CascadesBookings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.book(t, time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC))

	if err := f.repo.DeleteProvider(ctx, f.provider.ID); err != nil {
		t.Fatalf("delete provider: %v", err)
	}
	if _, err := f.repo.FindBooking(ctx, b.ID); !httperr.IsKind(err, httperr.KindNotFound) {
		t.Fatalf("expected booking gone, got %v", err)
	}
}

func TestDeleteClient_CascadesBookingsAndHaircuts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.book(t, time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC))

	cut := &models.Haircut{ClientID: &f.client.ID, TakenAt: time.Now().UTC(), Notes: "degradê"}
	if err := f.repo.InsertHaircut(ctx, cut); err != nil {
		t.Fatalf("insert haircut: %v", err)
	}

	if err := f.repo.DeleteClient(ctx, f.client.ID); err != nil {
		t.Fatalf("delete client: %v", err)
	}
	if _, err := f.repo.FindBooking(ctx, b.ID); !httperr.IsKind(err, httperr.KindNotFound) {
		t.Fatalf("expected booking gone, got %v", err)
	}
	if _, err := f.repo.FindHaircut(ctx, cut.ID); !httperr.IsKind(err, httperr.KindNotFound) {
		t.Fatalf("expected haircut gone, got %v", err)
	}
}

func TestListBookings_Filters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	day := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	late := f.book(t, day.Add(15*time.Hour))
	early := f.book(t, day.Add(9*time.Hour))
	f.book(t, day.AddDate(0, 0, 1).Add(9*time.Hour))

	cancelled := f.book(t, day.Add(11*time.Hour))
	cancelled.Status = models.BookingStatusCancelled
	if err := f.repo.UpdateBooking(ctx, cancelled); err != nil {
		t.Fatalf("update: %v", err)
	}

	from, to := domain.DayRange(day)
	got, err := f.repo.ListBookings(ctx, domain.BookingFilter{
		ProviderID:    &f.provider.ID,
		From:          &from,
		To:            &to,
		ExcludeStatus: models.BookingStatusCancelled,
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].ID != early.ID || got[1].ID != late.ID {
		t.Fatalf("expected [early, late], got %d bookings", len(got))
	}
	if got[0].Service == nil || got[0].Client == nil {
		t.Fatalf("expected references preloaded")
	}
}

func TestIncrementClientVisits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.repo.IncrementClientVisits(ctx, f.client.ID); err != nil {
		t.Fatalf("increment: %v", err)
	}
	c, _ := f.repo.FindClient(ctx, f.client.ID)
	if c.VisitsCount != 1 {
		t.Fatalf("expected 1 visit, got %d", c.VisitsCount)
	}

	if err := f.repo.IncrementClientVisits(ctx, uuid.New()); !httperr.IsBusiness(err, "client_not_found") {
		t.Fatalf("expected client_not_found, got %v", err)
	}
}

func TestTransaction_RollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.repo.Transaction(ctx, func(tx domain.Repository) error {
		if err := tx.IncrementClientVisits(ctx, f.client.ID); err != nil {
			return err
		}
		return httperr.ErrConflict("boom")
	})
	if !httperr.IsBusiness(err, "boom") {
		t.Fatalf("expected boom, got %v", err)
	}

	c, _ := f.repo.FindClient(ctx, f.client.ID)
	if c.VisitsCount != 0 {
		t.Fatalf("rollback expected, got %d visits", c.VisitsCount)
	}
}

func TestListClients_SearchAndOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, c := range []*models.Client{
		{Name: "Carla", VisitsCount: 7},
		{Name: "Bruno", VisitsCount: 2},
	} {
		if err := f.repo.InsertClient(ctx, c); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	got, err := f.repo.ListClients(ctx, domain.ClientFilter{NameContains: "car"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].Name != "Carla" || got[1].Name != "Carlos" {
		t.Fatalf("unexpected search result %+v", got)
	}

	got, _ = f.repo.ListClients(ctx, domain.ClientFilter{OrderByVisits: true})
	if got[0].Name != "Carla" {
		t.Fatalf("expected most visits first, got %s", got[0].Name)
	}
}
