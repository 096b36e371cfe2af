package scheduling

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/barberbook/internal/clock"
	domain "github.com/BruksfildServices01/barberbook/internal/domain/booking"
	"github.com/BruksfildServices01/barberbook/internal/infra/repository"
	"github.com/BruksfildServices01/barberbook/internal/models"
	"github.com/BruksfildServices01/barberbook/internal/testdb"
)

var day = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func at(hour, min int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
}

type fakeReminders struct {
	mu        sync.Mutex
	scheduled map[string]time.Time
	cancelled []string
	err       error
}

func newFakeReminders() *fakeReminders {
	return &fakeReminders{scheduled: map[string]time.Time{}}
}

func (f *fakeReminders) Schedule(ctx context.Context, id string, fireAt time.Time, msg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.scheduled[id] = fireAt
	return nil
}

func (f *fakeReminders) Cancel(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	delete(f.scheduled, id)
	f.cancelled = append(f.cancelled, id)
	return nil
}

// failingRepo injects datastore failures into selected calls.
type failingRepo struct {
	domain.Repository
	failIncrement bool
	failInsert    bool
}

func (f *failingRepo) Transaction(ctx context.Context, fn func(tx domain.Repository) error) error {
	return f.Repository.Transaction(ctx, func(tx domain.Repository) error {
		return fn(&failingRepo{Repository: tx, failIncrement: f.failIncrement, failInsert: f.failInsert})
	})
}

func (f *failingRepo) IncrementClientVisits(ctx context.Context, id uuid.UUID) error {
	if f.failIncrement {
		return errors.New("disk I/O error")
	}
	return f.Repository.IncrementClientVisits(ctx, id)
}

func (f *failingRepo) InsertBooking(ctx context.Context, b *models.Booking) error {
	if f.failInsert {
		return errors.New("disk I/O error")
	}
	return f.Repository.InsertBooking(ctx, b)
}

type env struct {
	repo      *repository.BookingGormRepository
	clock     *clock.Fixed
	reminders *fakeReminders
	sched     *Scheduler

	client   *models.Client
	provider *models.Provider
	service  *models.Service
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()

	e := &env{
		repo:      repository.NewBookingGormRepository(testdb.Open(t)),
		clock:     clock.NewFixed(at(8, 0)),
		reminders: newFakeReminders(),
		client:    &models.Client{Name: "Jordan Miles"},
		provider:  &models.Provider{Name: "Avery Fade", Active: true},
		service:   &models.Service{Name: "Classic Cut", DurationMin: 30, Price: 30},
	}
	e.sched = e.scheduler(e.repo)

	if err := e.repo.InsertClient(ctx, e.client); err != nil {
		t.Fatalf("insert client: %v", err)
	}
	if err := e.repo.InsertProvider(ctx, e.provider); err != nil {
		t.Fatalf("insert provider: %v", err)
	}
	if err := e.repo.InsertService(ctx, e.service); err != nil {
		t.Fatalf("insert service: %v", err)
	}
	return e
}

func (e *env) scheduler(repo domain.Repository) *Scheduler {
	return NewScheduler(repo, e.clock, e.reminders, nil, nil, Options{
		Hours: domain.OpeningHours{OpenMinute: 9 * 60, CloseMinute: 18 * 60},
	})
}

func (e *env) input(start time.Time) CreateBookingInput {
	return CreateBookingInput{
		ClientID:   &e.client.ID,
		ProviderID: e.provider.ID,
		ServiceID:  e.service.ID,
		Start:      start,
	}
}

func (e *env) mustCreate(t *testing.T, start time.Time) *models.Booking {
	t.Helper()
	b, err := e.sched.CreateBooking(context.Background(), e.input(start))
	if err != nil {
		t.Fatalf("create booking at %v: %v", start, err)
	}
	return b
}
