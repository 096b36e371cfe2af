package gateway

import (
	"context"

	"github.com/BruksfildServices01/barberbook/internal/domain/payment"
)

// Disabled is used when no payment provider is configured.
type Disabled struct{}

func (Disabled) IsAvailable(context.Context) bool { return false }

func (Disabled) Authorize(context.Context, float64, string) <-chan payment.Outcome {
	return payment.Deliver(payment.Outcome{
		Kind:   payment.OutcomePresentationFailed,
		Reason: "payments are disabled",
	})
}

var _ payment.Gateway = Disabled{}
