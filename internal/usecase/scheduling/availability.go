package scheduling

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/barberbook/internal/domain/booking"
	"github.com/BruksfildServices01/barberbook/internal/httperr"
	"github.com/BruksfildServices01/barberbook/internal/models"
)

// Availability lists the free slots of a provider for one service on a day.
func (s *Scheduler) Availability(
	ctx context.Context,
	in domain.AvailabilityInput,
) ([]domain.TimeSlot, error) {

	provider, err := s.repo.FindProvider(ctx, in.ProviderID)
	if err != nil {
		return nil, err
	}
	if !provider.Active {
		return []domain.TimeSlot{}, nil
	}

	service, err := s.repo.FindService(ctx, in.ServiceID)
	if err != nil {
		return nil, err
	}

	dayStart, dayEnd := domain.DayRange(in.Date)
	from, to := domain.Window(dayStart, dayEnd)

	existing, err := s.repo.ListBookings(ctx, domain.BookingFilter{
		ProviderID:    &provider.ID,
		ExcludeStatus: models.BookingStatusCancelled,
		From:          &from,
		To:            &to,
	})
	if err != nil {
		return nil, httperr.Persist("availability_failed", err)
	}

	return domain.Slots(
		provider.ID,
		in.Date,
		s.hours,
		service.DurationMin,
		existing,
		s.clock.Now(),
	), nil
}

// ParseDay reads YYYY-MM-DD in the clock's location.
func ParseDay(raw string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation("2006-01-02", raw, loc)
	if err != nil {
		return time.Time{}, httperr.ErrValidation("invalid_date")
	}
	return d, nil
}

// ParseStart reads "YYYY-MM-DD" + "HH:MM" in the clock's location.
func ParseStart(date, hm string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02 15:04", date+" "+hm, loc)
	if err != nil {
		return time.Time{}, httperr.ErrValidation("invalid_date_or_time")
	}
	return t, nil
}
