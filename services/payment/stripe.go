package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"medibook/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	striperefund "github.com/stripe/stripe-go/v76/refund"
	"go.uber.org/zap"
)

// StripeGateway implements Gateway against Stripe. The global stripe.Key is
// set once in main from config.
type StripeGateway struct {
	Currency string
	Logger   *zap.Logger
}

func NewStripeGateway(currency string, logger *zap.Logger) *StripeGateway {
	return &StripeGateway{Currency: currency, Logger: logger}
}

func (g *StripeGateway) CreateIntent(ctx context.Context, req models.PaymentIntentRequest) (*models.PaymentIntent, error) {
	if req.Amount <= 0 {
		return nil, errors.New("invalid payment amount")
	}
	currency := req.Currency
	if currency == "" {
		currency = g.Currency
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(toMinorUnits(req.Amount)),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if req.PatientID != "" {
		params.AddMetadata("patient_id", req.PatientID)
	}
	params.Context = ctx

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	g.Logger.Info("payment intent created",
		zap.String("intentId", pi.ID),
		zap.Float64("amount", req.Amount),
	)
	return &models.PaymentIntent{
		IntentID:     pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       req.Amount,
		Currency:     currency,
		Status:       string(pi.Status),
		CreatedAt:    time.Unix(pi.Created, 0),
	}, nil
}

// Refund issues a full refund against the payment intent. The idempotency
// key is derived from the reference so Stripe collapses duplicate attempts,
// and an already-refunded charge is treated as success.
func (g *StripeGateway) Refund(ctx context.Context, paymentRef string) error {
	if paymentRef == "" {
		return errors.New("payment reference is required")
	}

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(paymentRef),
	}
	params.Context = ctx
	params.SetIdempotencyKey("refund:" + paymentRef)

	if _, err := striperefund.New(params); err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Code == stripe.ErrorCodeChargeAlreadyRefunded {
			g.Logger.Info("payment already refunded", zap.String("paymentRef", paymentRef))
			return nil
		}
		return fmt.Errorf("refund failed for %s: %w", paymentRef, err)
	}

	g.Logger.Info("refund issued", zap.String("paymentRef", paymentRef))
	return nil
}

func toMinorUnits(amount float64) int64 {
	return int64(amount*100 + 0.5)
}
