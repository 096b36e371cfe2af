package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"

	domain "github.com/BruksfildServices01/barberbook/internal/domain/booking"
	"github.com/BruksfildServices01/barberbook/internal/httperr"
	"github.com/BruksfildServices01/barberbook/internal/models"
)

func (s *Scheduler) Get(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return s.repo.FindBooking(ctx, id)
}

// ListByDate returns the bookings starting on date, optionally for one provider.
func (s *Scheduler) ListByDate(
	ctx context.Context,
	date time.Time,
	providerID *uuid.UUID,
) ([]models.Booking, error) {

	start, end := domain.DayRange(date)
	return s.list(ctx, domain.BookingFilter{
		ProviderID: providerID,
		From:       &start,
		To:         &end,
	})
}

func (s *Scheduler) ListByMonth(
	ctx context.Context,
	year int,
	month time.Month,
	providerID *uuid.UUID,
) ([]models.Booking, error) {

	if month < time.January || month > time.December {
		return nil, httperr.ErrValidation("invalid_month")
	}

	start, end := domain.MonthRange(year, month, s.location())
	return s.list(ctx, domain.BookingFilter{
		ProviderID: providerID,
		From:       &start,
		To:         &end,
	})
}

// Upcoming returns every booking starting from now on, earliest first.
func (s *Scheduler) Upcoming(ctx context.Context, limit int) ([]models.Booking, error) {
	now := s.clock.Now()
	return s.list(ctx, domain.BookingFilter{
		From:  &now,
		Limit: limit,
	})
}

func (s *Scheduler) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Booking, error) {
	return s.list(ctx, domain.BookingFilter{
		ClientID:   &clientID,
		Descending: true,
	})
}

func (s *Scheduler) list(ctx context.Context, f domain.BookingFilter) ([]models.Booking, error) {
	bookings, err := s.repo.ListBookings(ctx, f)
	if err != nil {
		return nil, httperr.Persist("bookings_list_failed", err)
	}
	return bookings, nil
}

func (s *Scheduler) location() *time.Location {
	return s.clock.Now().Location()
}
