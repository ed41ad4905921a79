package refund

import (
	"context"
	"errors"
	"fmt"

	"medibook/models"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Scheduler enqueues compensating refunds. Enqueueing is detached from the
// failed booking request so the customer never waits on the gateway; the
// worker retries with backoff until the refund lands or the task is archived
// for manual review.
type Scheduler interface {
	Schedule(ctx context.Context, payload models.RefundPayload) error
}

// AsynqScheduler implements Scheduler on the asynq refund queue.
type AsynqScheduler struct {
	Client   *asynq.Client
	MaxRetry int
	Logger   *zap.Logger
}

func NewAsynqScheduler(client *asynq.Client, maxRetry int, logger *zap.Logger) *AsynqScheduler {
	return &AsynqScheduler{Client: client, MaxRetry: maxRetry, Logger: logger}
}

func (s *AsynqScheduler) Schedule(ctx context.Context, payload models.RefundPayload) error {
	if payload.PaymentRef == "" {
		return errors.New("payment reference is required")
	}

	task, opts, err := NewRefundTask(payload, s.MaxRetry)
	if err != nil {
		return fmt.Errorf("failed to build refund task: %w", err)
	}

	if _, err := s.Client.EnqueueContext(ctx, task, opts...); err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			// Already queued for this payment reference; nothing to do.
			s.Logger.Debug("refund already scheduled", zap.String("paymentRef", payload.PaymentRef))
			return nil
		}
		return fmt.Errorf("failed to enqueue refund for %s: %w", payload.PaymentRef, err)
	}

	s.Logger.Info("compensating refund scheduled",
		zap.String("paymentRef", payload.PaymentRef),
		zap.String("slotId", payload.SlotID),
		zap.String("reason", payload.Reason),
	)
	return nil
}
