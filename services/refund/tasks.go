package refund

import (
	"encoding/json"
	"time"

	"medibook/models"

	"github.com/hibiken/asynq"
)

const TypeRefundIssue = "refund:issue"

// taskRetention keeps completed refund tasks around so a later enqueue with
// the same task ID still collides instead of issuing a second refund.
const taskRetention = 7 * 24 * time.Hour

// NewRefundTask builds the compensating-refund task. The task ID is derived
// from the payment reference, which makes the enqueue idempotent: asynq
// rejects a second task with the same ID while the first is pending, active,
// retried or retained.
func NewRefundTask(payload models.RefundPayload, maxRetry int) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeRefundIssue, b)
	opts := []asynq.Option{
		asynq.TaskID("refund:" + payload.PaymentRef),
		asynq.MaxRetry(maxRetry),
		asynq.Retention(taskRetention),
	}
	return task, opts, nil
}
