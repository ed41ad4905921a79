package payment

import (
	"context"

	"medibook/models"
)

// Gateway is the external payment capability the engine consumes. Capture
// happens client-side against the intent before commit is called; the engine
// itself only creates intents and issues compensating refunds.
type Gateway interface {
	CreateIntent(ctx context.Context, req models.PaymentIntentRequest) (*models.PaymentIntent, error)

	// Refund reverses a captured payment. Must be idempotent per payment
	// reference: duplicate calls for the same reference are safe.
	Refund(ctx context.Context, paymentRef string) error
}
