package payment

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/barberbook/internal/audit"
	domain "github.com/BruksfildServices01/barberbook/internal/domain/booking"
	"github.com/BruksfildServices01/barberbook/internal/domain/payment"
	"github.com/BruksfildServices01/barberbook/internal/httperr"
	"github.com/BruksfildServices01/barberbook/internal/models"
	"github.com/BruksfildServices01/barberbook/internal/realtime"
)

// Feed events for outcomes nobody may be waiting on any more.
const (
	EventPaymentReconciliation = "booking_payment_reconciliation"
	EventPaymentUnsaved        = "booking_payment_unsaved"
)

// Attempt is a payment in flight. Done yields nil when the booking ended up
// paid, or the error that describes why it did not.
type Attempt struct {
	BookingID uuid.UUID
	done      chan error
}

func (a *Attempt) Done() <-chan error {
	return a.done
}

// Wait blocks until the attempt finishes or ctx ends.
func (a *Attempt) Wait(ctx context.Context) error {
	select {
	case err := <-a.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Coordinator drives a booking's payment status through the gateway.
type Coordinator struct {
	repo      domain.Repository
	gateway   payment.Gateway
	reminders domain.ReminderScheduler
	feed      realtime.Publisher
	audit     *audit.Dispatcher
	log       *zap.Logger

	wg       sync.WaitGroup
	mu       sync.Mutex
	inflight map[uuid.UUID]struct{}
}

func NewCoordinator(
	repo domain.Repository,
	gateway payment.Gateway,
	reminders domain.ReminderScheduler,
	feed realtime.Publisher,
	audit *audit.Dispatcher,
	log *zap.Logger,
) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{
		repo:      repo,
		gateway:   gateway,
		reminders: reminders,
		feed:      feed,
		audit:     audit,
		log:       log,
		inflight:  make(map[uuid.UUID]struct{}),
	}
}

// Drain waits for every attempt started by this coordinator to settle.
func (c *Coordinator) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		c.mu.Lock()
		n := len(c.inflight)
		c.mu.Unlock()
		c.log.Error("payments still in flight at shutdown", zap.Int("count", n))
		return ctx.Err()
	}
}

func (c *Coordinator) track(id uuid.UUID) {
	c.mu.Lock()
	c.inflight[id] = struct{}{}
	c.mu.Unlock()
	c.wg.Add(1)
}

func (c *Coordinator) untrack(id uuid.UUID) {
	c.mu.Lock()
	delete(c.inflight, id)
	c.mu.Unlock()
	c.wg.Done()
}

func (c *Coordinator) inFlight(id uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.inflight[id]
	return ok
}

func (c *Coordinator) publish(eventType string, data map[string]any) {
	if c.feed != nil {
		c.feed.Publish(eventType, data)
	}
}

// ======================================================
// PAY
// ======================================================

// Pay moves the booking to pending and asks the gateway for the service
// price. A booking that is already paid returns a nil Attempt and nil error.
func (c *Coordinator) Pay(
	ctx context.Context,
	bookingID uuid.UUID,
	userID *uuid.UUID,
) (*Attempt, error) {

	b, err := c.repo.FindBooking(ctx, bookingID)
	if err != nil {
		return nil, httperr.Persist("booking_not_loaded", err)
	}
	if b.PaymentStatus == models.PaymentStatusPaid {
		return nil, nil
	}

	if c.gateway == nil || !c.gateway.IsAvailable(ctx) {
		return nil, httperr.ErrPaymentUnavailable("payment_unavailable", nil)
	}

	if b.Service == nil {
		return nil, httperr.ErrValidation("booking_without_service")
	}

	alreadyPaid := false

	err = c.repo.Transaction(ctx, func(tx domain.Repository) error {
		locked, err := tx.FindBookingForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		// outra requisição pode ter pago entre a leitura e o lock
		if locked.PaymentStatus == models.PaymentStatusPaid {
			alreadyPaid = true
			return nil
		}
		if err := domain.TransitionPayment(locked, models.PaymentStatusPending); err != nil {
			return err
		}
		b = locked
		return tx.UpdateBooking(ctx, locked)
	})
	if err != nil {
		return nil, httperr.Persist("payment_status_not_saved", err)
	}
	if alreadyPaid {
		return nil, nil
	}

	c.log.Info("payment started",
		zap.String("booking_id", b.ID.String()),
		zap.Float64("amount", b.Service.Price),
	)

	// o pagamento segue mesmo se a requisição HTTP terminar
	bg := context.WithoutCancel(ctx)
	outcomes := c.gateway.Authorize(bg, b.Service.Price, description(b))

	attempt := &Attempt{BookingID: b.ID, done: make(chan error, 1)}
	c.track(b.ID)
	go c.finalize(bg, b.ID, userID, outcomes, attempt)

	return attempt, nil
}

func description(b *models.Booking) string {
	desc := b.Service.Name
	if b.Provider != nil {
		desc += " with " + b.Provider.Name
	}
	return desc
}

// ======================================================
// FINALIZE
// ======================================================

func (c *Coordinator) finalize(
	ctx context.Context,
	bookingID uuid.UUID,
	userID *uuid.UUID,
	outcomes <-chan payment.Outcome,
	attempt *Attempt,
) {
	defer c.untrack(bookingID)

	o, ok := <-outcomes
	if !ok {
		o = payment.Outcome{Kind: payment.OutcomePresentationFailed, Reason: "gateway closed without outcome"}
	}

	var err error
	if o.Succeeded() {
		err = c.onSuccess(ctx, bookingID, userID, o)
	} else {
		err = c.onFailure(ctx, bookingID, userID, o)
	}

	attempt.done <- err
	close(attempt.done)
}

func (c *Coordinator) onSuccess(
	ctx context.Context,
	bookingID uuid.UUID,
	userID *uuid.UUID,
	o payment.Outcome,
) error {

	b, err := c.settle(ctx, bookingID, models.PaymentStatusPaid)
	if err != nil {
		c.log.Error("payment captured but not recorded",
			zap.String("booking_id", bookingID.String()),
			zap.String("reference", o.Reference),
			zap.Error(err),
		)
		c.publish(EventPaymentReconciliation, map[string]any{
			"booking_id": bookingID,
			"reference":  o.Reference,
		})
		return httperr.ErrReconciliation("payment_not_recorded", err)
	}

	if c.reminders != nil {
		if err := c.reminders.Cancel(ctx, b.ReminderID); err != nil {
			c.log.Warn("reminder cancel failed",
				zap.String("booking_id", b.ID.String()),
				zap.Error(err),
			)
		}
	}

	c.audit.Dispatch(audit.Event{
		UserID:   userID,
		Action:   "booking_paid",
		Entity:   "booking",
		EntityID: b.ID.String(),
		Metadata: map[string]any{"reference": o.Reference},
	})

	c.log.Info("payment confirmed",
		zap.String("booking_id", b.ID.String()),
		zap.String("reference", o.Reference),
	)
	return nil
}

func (c *Coordinator) onFailure(
	ctx context.Context,
	bookingID uuid.UUID,
	userID *uuid.UUID,
	o payment.Outcome,
) error {

	gwErr := outcomeError(o)

	if _, err := c.settle(ctx, bookingID, models.PaymentStatusFailed); err != nil {
		c.log.Error("payment failure not recorded",
			zap.String("booking_id", bookingID.String()),
			zap.String("outcome", string(o.Kind)),
			zap.Error(err),
		)
		c.publish(EventPaymentUnsaved, map[string]any{
			"booking_id": bookingID,
			"outcome":    o.Kind,
		})
		return httperr.ErrPersistence("payment_status_not_saved", multierr.Combine(err, gwErr))
	}

	c.audit.Dispatch(audit.Event{
		UserID:   userID,
		Action:   "booking_payment_failed",
		Entity:   "booking",
		EntityID: bookingID.String(),
		Metadata: map[string]any{
			"outcome": o.Kind,
			"reason":  o.Reason,
		},
	})

	c.log.Info("payment not completed",
		zap.String("booking_id", bookingID.String()),
		zap.String("outcome", string(o.Kind)),
		zap.String("reason", o.Reason),
	)
	return gwErr
}

// ======================================================
// RECONCILE
// ======================================================

// Reconcile lets staff close a payment left pending, after checking the
// gateway by hand. Only paid or failed are accepted, and only while no
// attempt for the booking is running in this process.
func (c *Coordinator) Reconcile(
	ctx context.Context,
	bookingID uuid.UUID,
	to models.PaymentStatus,
	reference string,
	userID *uuid.UUID,
) (*models.Booking, error) {

	if to != models.PaymentStatusPaid && to != models.PaymentStatusFailed {
		return nil, httperr.ErrValidation("invalid_payment_status")
	}
	if c.inFlight(bookingID) {
		return nil, httperr.ErrConflict("payment_in_progress")
	}

	var b *models.Booking
	err := c.repo.Transaction(ctx, func(tx domain.Repository) error {
		locked, err := tx.FindBookingForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if locked.PaymentStatus != models.PaymentStatusPending {
			return httperr.ErrConflict("payment_not_pending")
		}
		if err := domain.TransitionPayment(locked, to); err != nil {
			return err
		}
		b = locked
		return tx.UpdateBooking(ctx, locked)
	})
	if err != nil {
		return nil, httperr.Persist("payment_status_not_saved", err)
	}

	if to == models.PaymentStatusPaid && c.reminders != nil {
		if err := c.reminders.Cancel(ctx, b.ReminderID); err != nil {
			c.log.Warn("reminder cancel failed",
				zap.String("booking_id", b.ID.String()),
				zap.Error(err),
			)
		}
	}

	c.audit.Dispatch(audit.Event{
		UserID:   userID,
		Action:   "booking_payment_reconciled",
		Entity:   "booking",
		EntityID: b.ID.String(),
		Metadata: map[string]any{
			"payment_status": to,
			"reference":      reference,
		},
	})

	c.log.Info("payment reconciled",
		zap.String("booking_id", b.ID.String()),
		zap.String("payment_status", string(to)),
	)
	return b, nil
}

// settle moves a pending booking to its final payment status.
func (c *Coordinator) settle(
	ctx context.Context,
	bookingID uuid.UUID,
	to models.PaymentStatus,
) (*models.Booking, error) {

	var b *models.Booking
	err := c.repo.Transaction(ctx, func(tx domain.Repository) error {
		var err error
		b, err = tx.FindBookingForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if err := domain.TransitionPayment(b, to); err != nil {
			return err
		}
		return tx.UpdateBooking(ctx, b)
	})
	return b, err
}

func outcomeError(o payment.Outcome) error {
	switch o.Kind {
	case payment.OutcomeCancelled:
		return httperr.ErrPaymentCancelled()
	case payment.OutcomeDeclined:
		return httperr.ErrPaymentDeclined(o.Reason)
	default:
		var cause error
		if o.Reason != "" {
			cause = errors.New(o.Reason)
		}
		return httperr.ErrPaymentUnavailable("payment_presentation_failed", cause)
	}
}
