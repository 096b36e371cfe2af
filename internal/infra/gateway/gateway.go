package gateway

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/barberbook/internal/config"
	"github.com/BruksfildServices01/barberbook/internal/domain/payment"
)

// FromConfig picks the adapter named by PAYMENT_PROVIDER.
func FromConfig(cfg *config.Config, log *zap.Logger) (payment.Gateway, error) {
	switch cfg.PaymentProvider {
	case "", "disabled":
		return Disabled{}, nil
	case "mercadopago":
		return NewMercadoPago(MercadoPagoConfig{
			AccessToken: cfg.MercadoPagoToken,
			PayerEmail:  cfg.MercadoPagoPayerEmail,
		}, log)
	case "stripe":
		return NewStripe(StripeConfig{
			SecretKey: cfg.StripeKey,
			Currency:  cfg.PaymentCurrency,
		}, log), nil
	}
	return nil, fmt.Errorf("gateway: unknown payment provider %q", cfg.PaymentProvider)
}
