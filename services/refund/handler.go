package refund

import (
	"context"
	"encoding/json"
	"fmt"

	"medibook/models"
	"medibook/services/payment"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// HandleRefundTask returns the asynq handler that issues the compensating
// refund. A returned error makes asynq retry with exponential backoff until
// MaxRetry, after which the task lands in the archive for manual review.
func HandleRefundTask(gateway payment.Gateway, ledger Ledger, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.RefundPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			// Malformed payloads never become valid; skip retries.
			logger.Error("invalid refund payload", zap.Error(err))
			return fmt.Errorf("invalid refund payload: %v: %w", err, asynq.SkipRetry)
		}

		done, err := ledger.IsDone(ctx, p.PaymentRef)
		if err != nil {
			return err
		}
		if done {
			logger.Debug("refund already settled", zap.String("paymentRef", p.PaymentRef))
			return nil
		}

		if err := gateway.Refund(ctx, p.PaymentRef); err != nil {
			logger.Warn("refund attempt failed, will retry",
				zap.String("paymentRef", p.PaymentRef),
				zap.Error(err),
			)
			return err
		}

		if _, err := ledger.MarkDone(ctx, p.PaymentRef); err != nil {
			// The refund landed; a ledger miss only costs an extra
			// idempotent gateway call on a future duplicate.
			logger.Warn("failed to record refund in ledger",
				zap.String("paymentRef", p.PaymentRef),
				zap.Error(err),
			)
		}

		logger.Info("compensating refund settled",
			zap.String("paymentRef", p.PaymentRef),
			zap.String("slotId", p.SlotID),
		)
		return nil
	}
}
