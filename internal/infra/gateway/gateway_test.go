package gateway

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	mppayment "github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/stripe/stripe-go/v76"

	"github.com/BruksfildServices01/barberbook/internal/config"
	"github.com/BruksfildServices01/barberbook/internal/domain/payment"
)

type fakeMP struct {
	mu       sync.Mutex
	created  mppayment.Request
	statuses []string
	gets     int
}

func (f *fakeMP) Create(ctx context.Context, req mppayment.Request) (*mppayment.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = req
	return &mppayment.Response{ID: 77, Status: f.statuses[0]}, nil
}

func (f *fakeMP) Get(ctx context.Context, id int) (*mppayment.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	i := f.gets
	if i >= len(f.statuses) {
		i = len(f.statuses) - 1
	}
	return &mppayment.Response{ID: id, Status: f.statuses[i], StatusDetail: "cc_rejected_insufficient_amount"}, nil
}

func TestMercadoPago_PollsUntilApproved(t *testing.T) {
	mp := &fakeMP{statuses: []string{"pending", "in_process", "approved"}}
	gw := newMercadoPago(mp, MercadoPagoConfig{AccessToken: "t", PollInterval: time.Millisecond}, nil)

	o := <-gw.Authorize(context.Background(), 45, "Corte")
	if !o.Succeeded() || o.Reference != "77" {
		t.Fatalf("expected success with reference, got %+v", o)
	}
	if mp.created.TransactionAmount != 45 || mp.created.PaymentMethodID != "pix" {
		t.Fatalf("unexpected request %+v", mp.created)
	}
}

func TestMercadoPago_Rejected(t *testing.T) {
	mp := &fakeMP{statuses: []string{"pending", "rejected"}}
	gw := newMercadoPago(mp, MercadoPagoConfig{AccessToken: "t", PollInterval: time.Millisecond}, nil)

	o := <-gw.Authorize(context.Background(), 45, "Corte")
	if o.Kind != payment.OutcomeDeclined || o.Reason != "cc_rejected_insufficient_amount" {
		t.Fatalf("expected decline, got %+v", o)
	}
}

func TestMercadoPago_TimesOut(t *testing.T) {
	mp := &fakeMP{statuses: []string{"pending"}}
	gw := newMercadoPago(mp, MercadoPagoConfig{
		AccessToken:  "t",
		PollInterval: time.Millisecond,
		PollTimeout:  20 * time.Millisecond,
	}, nil)

	o := <-gw.Authorize(context.Background(), 45, "Corte")
	if o.Kind != payment.OutcomePresentationFailed {
		t.Fatalf("expected presentation failure, got %+v", o)
	}
}

type fakeIntents struct {
	pi  *stripe.PaymentIntent
	err error
	got *stripe.PaymentIntentParams
}

func (f *fakeIntents) New(p *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	f.got = p
	return f.pi, f.err
}

func TestStripe_Outcomes(t *testing.T) {
	cases := []struct {
		name string
		fake *fakeIntents
		want payment.OutcomeKind
	}{
		{"succeeded", &fakeIntents{pi: &stripe.PaymentIntent{ID: "pi_1", Status: stripe.PaymentIntentStatusSucceeded}}, payment.OutcomeSuccess},
		{"canceled", &fakeIntents{pi: &stripe.PaymentIntent{ID: "pi_2", Status: stripe.PaymentIntentStatusCanceled}}, payment.OutcomeCancelled},
		{"card error", &fakeIntents{err: &stripe.Error{Type: stripe.ErrorTypeCard, DeclineCode: "insufficient_funds"}}, payment.OutcomeDeclined},
		{"network", &fakeIntents{err: errors.New("dial tcp: timeout")}, payment.OutcomePresentationFailed},
	}

	for _, tc := range cases {
		gw := newStripe(tc.fake, StripeConfig{SecretKey: "sk_test"}, nil)
		o := <-gw.Authorize(context.Background(), 40.5, "Corte")
		if o.Kind != tc.want {
			t.Fatalf("%s: expected %s, got %+v", tc.name, tc.want, o)
		}
		if *tc.fake.got.Amount != 4050 {
			t.Fatalf("%s: expected amount in cents, got %d", tc.name, *tc.fake.got.Amount)
		}
	}
}

func TestDisabled(t *testing.T) {
	var gw Disabled
	if gw.IsAvailable(context.Background()) {
		t.Fatalf("disabled gateway must be unavailable")
	}
}

func TestFromConfig(t *testing.T) {
	gw, err := FromConfig(&config.Config{PaymentProvider: "stripe", StripeKey: "sk"}, nil)
	if err != nil {
		t.Fatalf("from config: %v", err)
	}
	if _, ok := gw.(*Stripe); !ok {
		t.Fatalf("expected stripe adapter, got %T", gw)
	}

	if _, err := FromConfig(&config.Config{PaymentProvider: "paypal"}, nil); err == nil {
		t.Fatalf("expected unknown provider error")
	}
}
