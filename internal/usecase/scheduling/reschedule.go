package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/barberbook/internal/audit"
	domain "github.com/BruksfildServices01/barberbook/internal/domain/booking"
	"github.com/BruksfildServices01/barberbook/internal/httperr"
	"github.com/BruksfildServices01/barberbook/internal/models"
)

// Reschedule moves a booking, using the same overlap rule as creation.
func (s *Scheduler) Reschedule(
	ctx context.Context,
	bookingID uuid.UUID,
	newStart time.Time,
	userID *uuid.UUID,
) (*models.Booking, error) {

	if newStart.IsZero() {
		return nil, httperr.ErrValidation("invalid_start")
	}

	var (
		b        *models.Booking
		oldStart time.Time
	)

	err := s.repo.Transaction(ctx, func(tx domain.Repository) error {
		var err error
		b, err = tx.FindBookingForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if b.Status == models.BookingStatusCancelled {
			return httperr.ErrConflict("booking_cancelled")
		}
		if b.ProviderID == nil {
			return httperr.ErrValidation("booking_without_provider")
		}

		if _, err := tx.LockProvider(ctx, *b.ProviderID); err != nil {
			return err
		}

		duration := 0
		if b.Service != nil {
			duration = b.Service.DurationMin
		}

		end := newStart.Add(time.Duration(duration) * time.Minute)
		from, to := domain.Window(newStart, end)

		existing, err := tx.ListBookings(ctx, domain.BookingFilter{
			ProviderID:    b.ProviderID,
			ExcludeStatus: models.BookingStatusCancelled,
			From:          &from,
			To:            &to,
		})
		if err != nil {
			return err
		}

		if !domain.CanSchedule(*b.ProviderID, newStart, duration, domain.Without(existing, b.ID)) {
			return httperr.ErrConflict("time_conflict")
		}

		oldStart = b.StartAt
		b.StartAt = newStart
		b.TimeLabel = domain.TimeLabel(newStart)

		return tx.UpdateBooking(ctx, b)
	})
	if err != nil {
		return nil, httperr.Persist("booking_not_saved", err)
	}

	// mesmo reminder id: remove o antigo antes de agendar de novo
	s.cancelReminder(ctx, b)
	if b.Status == models.BookingStatusScheduled {
		s.scheduleReminder(ctx, b)
	}

	s.audit.Dispatch(audit.Event{
		UserID:   userID,
		Action:   "booking_rescheduled",
		Entity:   "booking",
		EntityID: b.ID.String(),
		Metadata: map[string]any{
			"from": oldStart,
			"to":   newStart,
		},
	})

	return b, nil
}
