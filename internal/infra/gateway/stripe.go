package gateway

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/barberbook/internal/domain/payment"
)

type StripeConfig struct {
	SecretKey     string
	Currency      string
	PaymentMethod string
}

// Stripe confirms a PaymentIntent immediately against a saved payment method.
type Stripe struct {
	intents intentCreator
	cfg     StripeConfig
	log     *zap.Logger
}

type intentCreator interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

func NewStripe(cfg StripeConfig, log *zap.Logger) *Stripe {
	client := &paymentintent.Client{
		B:   stripe.GetBackend(stripe.APIBackend),
		Key: cfg.SecretKey,
	}
	return newStripe(client, cfg, log)
}

func newStripe(intents intentCreator, cfg StripeConfig, log *zap.Logger) *Stripe {
	if cfg.Currency == "" {
		cfg.Currency = string(stripe.CurrencyBRL)
	}
	if cfg.PaymentMethod == "" {
		cfg.PaymentMethod = "pm_card_visa"
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Stripe{intents: intents, cfg: cfg, log: log}
}

func (s *Stripe) IsAvailable(context.Context) bool {
	return s.cfg.SecretKey != ""
}

func (s *Stripe) Authorize(
	ctx context.Context,
	amount float64,
	description string,
) <-chan payment.Outcome {
	out := make(chan payment.Outcome, 1)

	go func() {
		defer close(out)
		out <- s.authorize(ctx, amount, description)
	}()

	return out
}

func (s *Stripe) authorize(ctx context.Context, amount float64, description string) payment.Outcome {
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(int64(math.Round(amount * 100))),
		Currency:      stripe.String(strings.ToLower(s.cfg.Currency)),
		Description:   stripe.String(description),
		PaymentMethod: stripe.String(s.cfg.PaymentMethod),
		Confirm:       stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	params.Context = ctx

	pi, err := s.intents.New(params)
	if err != nil {
		return stripeErrorOutcome(err)
	}

	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded, stripe.PaymentIntentStatusRequiresCapture:
		return payment.Outcome{Kind: payment.OutcomeSuccess, Reference: pi.ID}
	case stripe.PaymentIntentStatusCanceled:
		return payment.Outcome{Kind: payment.OutcomeCancelled, Reason: string(pi.CancellationReason), Reference: pi.ID}
	case stripe.PaymentIntentStatusRequiresPaymentMethod:
		return payment.Outcome{Kind: payment.OutcomeDeclined, Reason: "payment method refused", Reference: pi.ID}
	}

	s.log.Warn("stripe: unexpected intent status", zap.String("status", string(pi.Status)), zap.String("intent", pi.ID))
	return payment.Outcome{Kind: payment.OutcomePresentationFailed, Reason: "unexpected status " + string(pi.Status), Reference: pi.ID}
}

func stripeErrorOutcome(err error) payment.Outcome {
	var se *stripe.Error
	if errors.As(err, &se) && se.Type == stripe.ErrorTypeCard {
		reason := string(se.DeclineCode)
		if reason == "" {
			reason = se.Msg
		}
		return payment.Outcome{Kind: payment.OutcomeDeclined, Reason: reason}
	}
	return payment.Outcome{Kind: payment.OutcomePresentationFailed, Reason: err.Error()}
}

var _ payment.Gateway = (*Stripe)(nil)
