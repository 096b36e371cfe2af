package payment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	domain "github.com/BruksfildServices01/barberbook/internal/domain/booking"
	"github.com/BruksfildServices01/barberbook/internal/domain/payment"
	"github.com/BruksfildServices01/barberbook/internal/httperr"
	"github.com/BruksfildServices01/barberbook/internal/infra/repository"
	"github.com/BruksfildServices01/barberbook/internal/models"
	"github.com/BruksfildServices01/barberbook/internal/testdb"
)

// ======================================================
// FAKES
// ======================================================

type fakeGateway struct {
	mu        sync.Mutex
	available bool
	outcome   payment.Outcome
	hold      chan struct{}
	amounts   []float64
	descs     []string
}

func (g *fakeGateway) IsAvailable(ctx context.Context) bool {
	return g.available
}

func (g *fakeGateway) Authorize(ctx context.Context, amount float64, desc string) <-chan payment.Outcome {
	g.mu.Lock()
	g.amounts = append(g.amounts, amount)
	g.descs = append(g.descs, desc)
	o, hold := g.outcome, g.hold
	g.mu.Unlock()

	ch := make(chan payment.Outcome, 1)
	go func() {
		if hold != nil {
			<-hold
		}
		ch <- o
		close(ch)
	}()
	return ch
}

func (g *fakeGateway) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.amounts)
}

type fakeReminders struct {
	mu        sync.Mutex
	cancelled []string
}

func (f *fakeReminders) Schedule(context.Context, string, time.Time, string) error { return nil }

func (f *fakeReminders) Cancel(ctx context.Context, id string) error {
	f.mu.Lock()
	f.cancelled = append(f.cancelled, id)
	f.mu.Unlock()
	return nil
}

type recordingFeed struct {
	mu     sync.Mutex
	events []string
}

func (f *recordingFeed) Publish(eventType string, data any) {
	f.mu.Lock()
	f.events = append(f.events, eventType)
	f.mu.Unlock()
}

func (f *recordingFeed) received() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.events...)
}

// failingRepo refuses to save a booking carrying failOn as payment status.
type failingRepo struct {
	domain.Repository
	failOn models.PaymentStatus
}

func (f *failingRepo) Transaction(ctx context.Context, fn func(tx domain.Repository) error) error {
	return f.Repository.Transaction(ctx, func(tx domain.Repository) error {
		return fn(&failingRepo{Repository: tx, failOn: f.failOn})
	})
}

func (f *failingRepo) UpdateBooking(ctx context.Context, b *models.Booking) error {
	if b.PaymentStatus == f.failOn {
		return errors.New("connection reset")
	}
	return f.Repository.UpdateBooking(ctx, b)
}

// ======================================================
// FIXTURE
// ======================================================

type fixture struct {
	repo      *repository.BookingGormRepository
	gateway   *fakeGateway
	reminders *fakeReminders
	feed      *recordingFeed
	booking   *models.Booking
}

func newFixture(t *testing.T, withService bool) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{
		repo:      repository.NewBookingGormRepository(testdb.Open(t)),
		gateway:   &fakeGateway{available: true, outcome: payment.Outcome{Kind: payment.OutcomeSuccess, Reference: "ref-1"}},
		reminders: &fakeReminders{},
		feed:      &recordingFeed{},
	}

	provider := &models.Provider{Name: "Sky Razor", Active: true}
	if err := f.repo.InsertProvider(ctx, provider); err != nil {
		t.Fatalf("insert provider: %v", err)
	}

	var service *models.Service
	if withService {
		service = &models.Service{Name: "Skin Fade", DurationMin: 45, Price: 45}
		if err := f.repo.InsertService(ctx, service); err != nil {
			t.Fatalf("insert service: %v", err)
		}
	}

	f.booking = domain.New(nil, provider, service, time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	if err := f.repo.InsertBooking(ctx, f.booking); err != nil {
		t.Fatalf("insert booking: %v", err)
	}
	return f
}

func (f *fixture) coordinator(repo domain.Repository) *Coordinator {
	if repo == nil {
		repo = f.repo
	}
	return NewCoordinator(repo, f.gateway, f.reminders, f.feed, nil, nil)
}

func (f *fixture) status(t *testing.T) models.PaymentStatus {
	t.Helper()
	b, err := f.repo.FindBooking(context.Background(), f.booking.ID)
	if err != nil {
		t.Fatalf("find booking: %v", err)
	}
	return b.PaymentStatus
}

func wait(t *testing.T, a *Attempt) error {
	t.Helper()
	if a == nil {
		t.Fatalf("expected an attempt")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := a.Wait(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("attempt did not finish")
	}
	return err
}

// ======================================================
// TESTS
// ======================================================

func TestPay_Success(t *testing.T) {
	f := newFixture(t, true)
	c := f.coordinator(nil)
	ctx := context.Background()

	a, err := c.Pay(ctx, f.booking.ID, nil)
	if err != nil {
		t.Fatalf("pay: %v", err)
	}
	if err := wait(t, a); err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	if got := f.status(t); got != models.PaymentStatusPaid {
		t.Fatalf("expected paid, got %s", got)
	}
	if f.gateway.amounts[0] != 45 || f.gateway.descs[0] != "Skin Fade with Sky Razor" {
		t.Fatalf("unexpected charge %v %v", f.gateway.amounts, f.gateway.descs)
	}
	if len(f.reminders.cancelled) != 1 || f.reminders.cancelled[0] != f.booking.ReminderID {
		t.Fatalf("expected reminder cancel, got %v", f.reminders.cancelled)
	}

	// paid is terminal: second call is a no-op
	a, err = c.Pay(ctx, f.booking.ID, nil)
	if a != nil || err != nil {
		t.Fatalf("expected no-op on paid booking, got %v %v", a, err)
	}
	if f.gateway.calls() != 1 {
		t.Fatalf("gateway must not be called again, got %d calls", f.gateway.calls())
	}
}

func TestPay_GatewayUnavailable(t *testing.T) {
	f := newFixture(t, true)
	f.gateway.available = false

	_, err := f.coordinator(nil).Pay(context.Background(), f.booking.ID, nil)
	if !httperr.IsKind(err, httperr.KindPaymentUnavailable) {
		t.Fatalf("expected payment unavailable, got %v", err)
	}
	if got := f.status(t); got != models.PaymentStatusUnpaid {
		t.Fatalf("status must not change, got %s", got)
	}
}

func TestPay_BookingWithoutService(t *testing.T) {
	f := newFixture(t, false)

	_, err := f.coordinator(nil).Pay(context.Background(), f.booking.ID, nil)
	if !httperr.IsBusiness(err, "booking_without_service") {
		t.Fatalf("expected booking_without_service, got %v", err)
	}
	if f.gateway.calls() != 0 {
		t.Fatalf("gateway must not be called")
	}
}

func TestPay_FailureOutcomes(t *testing.T) {
	cases := []struct {
		kind payment.OutcomeKind
		want httperr.Kind
	}{
		{payment.OutcomeDeclined, httperr.KindPaymentDeclined},
		{payment.OutcomeCancelled, httperr.KindPaymentCancelled},
		{payment.OutcomePresentationFailed, httperr.KindPaymentUnavailable},
	}

	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			f := newFixture(t, true)
			f.gateway.outcome = payment.Outcome{Kind: tc.kind, Reason: "card declined"}

			a, err := f.coordinator(nil).Pay(context.Background(), f.booking.ID, nil)
			if err != nil {
				t.Fatalf("pay: %v", err)
			}
			if err := wait(t, a); !httperr.IsKind(err, tc.want) {
				t.Fatalf("expected %s, got %v", tc.want, err)
			}
			if got := f.status(t); got != models.PaymentStatusFailed {
				t.Fatalf("expected failed, got %s", got)
			}
			if len(f.reminders.cancelled) != 0 {
				t.Fatalf("failed payment must keep the reminder")
			}
		})
	}
}

func TestPay_RetryAfterFailure(t *testing.T) {
	f := newFixture(t, true)
	c := f.coordinator(nil)
	ctx := context.Background()

	f.gateway.outcome = payment.Outcome{Kind: payment.OutcomeDeclined}
	a, _ := c.Pay(ctx, f.booking.ID, nil)
	_ = wait(t, a)

	f.gateway.outcome = payment.Outcome{Kind: payment.OutcomeSuccess}
	a, err := c.Pay(ctx, f.booking.ID, nil)
	if err != nil {
		t.Fatalf("retry from failed must be allowed: %v", err)
	}
	if err := wait(t, a); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if got := f.status(t); got != models.PaymentStatusPaid {
		t.Fatalf("expected paid after retry, got %s", got)
	}
}

func TestPay_PendingConflict(t *testing.T) {
	f := newFixture(t, true)
	f.gateway.hold = make(chan struct{})
	c := f.coordinator(nil)
	ctx := context.Background()

	a, err := c.Pay(ctx, f.booking.ID, nil)
	if err != nil {
		t.Fatalf("pay: %v", err)
	}
	if got := f.status(t); got != models.PaymentStatusPending {
		t.Fatalf("expected pending while gateway works, got %s", got)
	}

	if _, err := c.Pay(ctx, f.booking.ID, nil); !httperr.IsBusiness(err, "payment_in_progress") {
		t.Fatalf("expected payment_in_progress, got %v", err)
	}

	close(f.gateway.hold)
	if err := wait(t, a); err != nil {
		t.Fatalf("first attempt: %v", err)
	}
	if f.gateway.calls() != 1 {
		t.Fatalf("expected one gateway call, got %d", f.gateway.calls())
	}
}

func TestPay_ReconciliationWhenPaidNotSaved(t *testing.T) {
	f := newFixture(t, true)
	c := f.coordinator(&failingRepo{Repository: f.repo, failOn: models.PaymentStatusPaid})

	a, err := c.Pay(context.Background(), f.booking.ID, nil)
	if err != nil {
		t.Fatalf("pay: %v", err)
	}
	if err := wait(t, a); !httperr.IsKind(err, httperr.KindReconciliation) {
		t.Fatalf("expected reconciliation error, got %v", err)
	}
	if got := f.status(t); got != models.PaymentStatusPending {
		t.Fatalf("expected pending to remain, got %s", got)
	}
	if len(f.reminders.cancelled) != 0 {
		t.Fatalf("reminder must stay when paid was not recorded")
	}
	if got := f.feed.received(); len(got) != 1 || got[0] != EventPaymentReconciliation {
		t.Fatalf("expected reconciliation event on the feed, got %v", got)
	}
}

func TestPay_PersistenceAfterDecline(t *testing.T) {
	f := newFixture(t, true)
	f.gateway.outcome = payment.Outcome{Kind: payment.OutcomeDeclined, Reason: "insufficient funds"}
	c := f.coordinator(&failingRepo{Repository: f.repo, failOn: models.PaymentStatusFailed})

	a, err := c.Pay(context.Background(), f.booking.ID, nil)
	if err != nil {
		t.Fatalf("pay: %v", err)
	}

	err = wait(t, a)
	be, ok := httperr.As(err)
	if !ok || be.Kind != httperr.KindPersistence {
		t.Fatalf("expected persistence error, got %v", err)
	}

	causes := multierr.Errors(be.Err)
	if len(causes) != 2 || !httperr.IsKind(causes[1], httperr.KindPaymentDeclined) {
		t.Fatalf("expected persistence cause then decline, got %v", causes)
	}
	if got := f.feed.received(); len(got) != 1 || got[0] != EventPaymentUnsaved {
		t.Fatalf("expected unsaved event on the feed, got %v", got)
	}
}

func TestPay_UnknownBooking(t *testing.T) {
	f := newFixture(t, true)
	_, err := f.coordinator(nil).Pay(context.Background(), uuid.New(), nil)
	if !httperr.IsKind(err, httperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDrain_WaitsForInFlightAttempts(t *testing.T) {
	f := newFixture(t, true)
	f.gateway.hold = make(chan struct{})
	c := f.coordinator(nil)

	if _, err := c.Pay(context.Background(), f.booking.ID, nil); err != nil {
		t.Fatalf("pay: %v", err)
	}

	short, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := c.Drain(short); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("drain must not return while the gateway holds, got %v", err)
	}

	close(f.gateway.hold)

	ctx, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	if err := c.Drain(ctx); err != nil {
		t.Fatalf("drain: %v", err)
	}
	if got := f.status(t); got != models.PaymentStatusPaid {
		t.Fatalf("expected paid once drained, got %s", got)
	}
}

func TestReconcile_ClosesStuckPending(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	// paid at the gateway but never recorded
	a, err := f.coordinator(&failingRepo{Repository: f.repo, failOn: models.PaymentStatusPaid}).Pay(ctx, f.booking.ID, nil)
	if err != nil {
		t.Fatalf("pay: %v", err)
	}
	_ = wait(t, a)

	c := f.coordinator(nil)
	if _, err := c.Pay(ctx, f.booking.ID, nil); !httperr.IsBusiness(err, "payment_in_progress") {
		t.Fatalf("expected payment_in_progress before reconcile, got %v", err)
	}

	if _, err := c.Reconcile(ctx, f.booking.ID, models.PaymentStatusPending, "", nil); !httperr.IsBusiness(err, "invalid_payment_status") {
		t.Fatalf("expected invalid_payment_status, got %v", err)
	}

	b, err := c.Reconcile(ctx, f.booking.ID, models.PaymentStatusPaid, "ref-1", nil)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if b.PaymentStatus != models.PaymentStatusPaid || f.status(t) != models.PaymentStatusPaid {
		t.Fatalf("expected paid after reconcile")
	}
	if len(f.reminders.cancelled) != 1 {
		t.Fatalf("expected reminder cancel, got %v", f.reminders.cancelled)
	}

	if _, err := c.Reconcile(ctx, f.booking.ID, models.PaymentStatusFailed, "", nil); !httperr.IsBusiness(err, "payment_not_pending") {
		t.Fatalf("expected payment_not_pending, got %v", err)
	}
}

func TestReconcile_RefusesWhileAttemptRuns(t *testing.T) {
	f := newFixture(t, true)
	f.gateway.hold = make(chan struct{})
	c := f.coordinator(nil)
	ctx := context.Background()

	a, err := c.Pay(ctx, f.booking.ID, nil)
	if err != nil {
		t.Fatalf("pay: %v", err)
	}

	if _, err := c.Reconcile(ctx, f.booking.ID, models.PaymentStatusFailed, "", nil); !httperr.IsBusiness(err, "payment_in_progress") {
		t.Fatalf("expected payment_in_progress, got %v", err)
	}

	close(f.gateway.hold)
	if err := wait(t, a); err != nil {
		t.Fatalf("attempt: %v", err)
	}
}
