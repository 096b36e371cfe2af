package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/barberbook/internal/audit"
	domain "github.com/BruksfildServices01/barberbook/internal/domain/booking"
	"github.com/BruksfildServices01/barberbook/internal/httperr"
	"github.com/BruksfildServices01/barberbook/internal/models"
)

// ======================================================
// INPUT
// ======================================================

type CreateBookingInput struct {
	ClientID   *uuid.UUID
	ProviderID uuid.UUID
	ServiceID  uuid.UUID
	Start      time.Time

	// UserID is the staff member acting, for the audit trail.
	UserID *uuid.UUID
}

// ======================================================
// EXECUTE
// ======================================================

// CreateBooking checks for overlap and inserts in one transaction holding
// the provider lock, so two concurrent requests for the same slot cannot
// both succeed.
func (s *Scheduler) CreateBooking(
	ctx context.Context,
	in CreateBookingInput,
) (*models.Booking, error) {

	if in.Start.IsZero() {
		return nil, httperr.ErrValidation("invalid_start")
	}

	var created *models.Booking

	err := s.repo.Transaction(ctx, func(tx domain.Repository) error {
		// --------------------------------------------------
		// Barbeiro (lock)
		// --------------------------------------------------
		provider, err := tx.LockProvider(ctx, in.ProviderID)
		if err != nil {
			return err
		}
		if !provider.Active {
			return httperr.ErrValidation("provider_inactive")
		}

		// --------------------------------------------------
		// Serviço
		// --------------------------------------------------
		service, err := tx.FindService(ctx, in.ServiceID)
		if err != nil {
			return err
		}

		// --------------------------------------------------
		// Cliente (opcional)
		// --------------------------------------------------
		var client *models.Client
		if in.ClientID != nil {
			if client, err = tx.FindClient(ctx, *in.ClientID); err != nil {
				return err
			}
		}

		// --------------------------------------------------
		// Conflito de horário
		// --------------------------------------------------
		end := in.Start.Add(time.Duration(service.DurationMin) * time.Minute)
		from, to := domain.Window(in.Start, end)

		existing, err := tx.ListBookings(ctx, domain.BookingFilter{
			ProviderID:    &provider.ID,
			ExcludeStatus: models.BookingStatusCancelled,
			From:          &from,
			To:            &to,
		})
		if err != nil {
			return err
		}

		if !domain.CanSchedule(provider.ID, in.Start, service.DurationMin, existing) {
			return httperr.ErrConflict("time_conflict")
		}

		b := domain.New(client, provider, service, in.Start)
		if err := tx.InsertBooking(ctx, b); err != nil {
			return err
		}

		created = b
		return nil
	})
	if err != nil {
		return nil, httperr.Persist("booking_not_saved", err)
	}

	s.scheduleReminder(ctx, created)

	s.audit.Dispatch(audit.Event{
		UserID:   in.UserID,
		Action:   "booking_created",
		Entity:   "booking",
		EntityID: created.ID.String(),
		Metadata: map[string]any{
			"provider_id": in.ProviderID,
			"start_at":    created.StartAt,
		},
	})

	s.log.Info("booking created",
		zap.String("booking_id", created.ID.String()),
		zap.String("provider_id", in.ProviderID.String()),
		zap.Time("start_at", created.StartAt),
	)

	return created, nil
}
