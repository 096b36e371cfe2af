package gateway

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/mercadopago/sdk-go/pkg/config"
	mppayment "github.com/mercadopago/sdk-go/pkg/payment"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/barberbook/internal/domain/payment"
)

type MercadoPagoConfig struct {
	AccessToken   string
	PayerEmail    string
	PaymentMethod string
	PollInterval  time.Duration
	PollTimeout   time.Duration
}

// MercadoPago creates a payment and polls it until it settles.
type MercadoPago struct {
	client mpClient
	cfg    MercadoPagoConfig
	log    *zap.Logger
}

// mpClient is the part of the SDK client we call.
type mpClient interface {
	Create(ctx context.Context, request mppayment.Request) (*mppayment.Response, error)
	Get(ctx context.Context, id int) (*mppayment.Response, error)
}

func NewMercadoPago(cfg MercadoPagoConfig, log *zap.Logger) (*MercadoPago, error) {
	mpCfg, err := config.New(cfg.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("mercadopago: %w", err)
	}
	return newMercadoPago(mppayment.NewClient(mpCfg), cfg, log), nil
}

func newMercadoPago(client mpClient, cfg MercadoPagoConfig, log *zap.Logger) *MercadoPago {
	if cfg.PaymentMethod == "" {
		cfg.PaymentMethod = "pix"
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 3 * time.Second
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 5 * time.Minute
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &MercadoPago{client: client, cfg: cfg, log: log}
}

func (m *MercadoPago) IsAvailable(context.Context) bool {
	return m.cfg.AccessToken != ""
}

func (m *MercadoPago) Authorize(
	ctx context.Context,
	amount float64,
	description string,
) <-chan payment.Outcome {
	out := make(chan payment.Outcome, 1)

	go func() {
		defer close(out)
		out <- m.authorize(ctx, amount, description)
	}()

	return out
}

func (m *MercadoPago) authorize(ctx context.Context, amount float64, description string) payment.Outcome {
	res, err := m.client.Create(ctx, mppayment.Request{
		TransactionAmount: amount,
		Description:       description,
		PaymentMethodID:   m.cfg.PaymentMethod,
		Payer: &mppayment.PayerRequest{
			Email: m.cfg.PayerEmail,
		},
	})
	if err != nil {
		m.log.Warn("mercadopago: create payment", zap.Error(err))
		return payment.Outcome{Kind: payment.OutcomePresentationFailed, Reason: err.Error()}
	}

	ctx, cancel := context.WithTimeout(ctx, m.cfg.PollTimeout)
	defer cancel()

	ticker := time.NewTicker(m.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if o, done := mpOutcome(res); done {
			return o
		}

		select {
		case <-ctx.Done():
			return payment.Outcome{
				Kind:      payment.OutcomePresentationFailed,
				Reason:    "payment not confirmed in time",
				Reference: strconv.Itoa(res.ID),
			}
		case <-ticker.C:
		}

		next, err := m.client.Get(ctx, res.ID)
		if err != nil {
			m.log.Warn("mercadopago: poll payment", zap.Int("payment_id", res.ID), zap.Error(err))
			continue
		}
		res = next
	}
}

// mpOutcome maps a payment status; done is false while it is still open.
func mpOutcome(res *mppayment.Response) (payment.Outcome, bool) {
	ref := strconv.Itoa(res.ID)

	switch res.Status {
	case "approved", "authorized":
		return payment.Outcome{Kind: payment.OutcomeSuccess, Reference: ref}, true
	case "rejected", "refunded", "charged_back":
		return payment.Outcome{Kind: payment.OutcomeDeclined, Reason: res.StatusDetail, Reference: ref}, true
	case "cancelled":
		return payment.Outcome{Kind: payment.OutcomeCancelled, Reason: res.StatusDetail, Reference: ref}, true
	}
	return payment.Outcome{}, false
}

var _ payment.Gateway = (*MercadoPago)(nil)
