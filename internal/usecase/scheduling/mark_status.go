package scheduling

import (
	"context"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/barberbook/internal/audit"
	domain "github.com/BruksfildServices01/barberbook/internal/domain/booking"
	"github.com/BruksfildServices01/barberbook/internal/httperr"
	"github.com/BruksfildServices01/barberbook/internal/models"
)

// MarkStatus applies any status. The visit counter moves in the same
// transaction as the status, and only the first time a booking completes.
func (s *Scheduler) MarkStatus(
	ctx context.Context,
	bookingID uuid.UUID,
	status models.BookingStatus,
	userID *uuid.UUID,
) (*models.Booking, error) {

	if _, err := domain.ParseStatus(string(status)); err != nil {
		return nil, err
	}

	var (
		b       *models.Booking
		counted bool
		from    models.BookingStatus
	)

	err := s.repo.Transaction(ctx, func(tx domain.Repository) error {
		var err error
		b, err = tx.FindBookingForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}

		from = b.Status
		counted = domain.ApplyStatus(b, status, s.clock.Now())

		if err := tx.UpdateBooking(ctx, b); err != nil {
			return err
		}

		if counted {
			return tx.IncrementClientVisits(ctx, *b.ClientID)
		}
		return nil
	})
	if err != nil {
		return nil, httperr.Persist("booking_status_not_saved", err)
	}

	if counted && b.Client != nil {
		b.Client.VisitsCount++
	}

	switch {
	case domain.ReleasesReminder(status):
		s.cancelReminder(ctx, b)
	case status == models.BookingStatusScheduled && from != status:
		s.scheduleReminder(ctx, b)
	}

	s.audit.Dispatch(audit.Event{
		UserID:   userID,
		Action:   "booking_" + string(status),
		Entity:   "booking",
		EntityID: b.ID.String(),
		Metadata: map[string]any{
			"from":          from,
			"visit_counted": counted,
		},
	})

	return b, nil
}
