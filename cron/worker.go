package cron

import (
	"log"
	"time"

	"medibook/config"
	"medibook/services/payment"
	"medibook/services/refund"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// InitRefundWorker runs the compensating-refund worker in background.
// Failed attempts are retried with asynq's exponential backoff up to the
// task's MaxRetry, then archived for manual review.
func InitRefundWorker(gateway payment.Gateway, ledger refund.Ledger, logger *zap.Logger) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisRefundQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 5,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(refund.TypeRefundIssue, refund.HandleRefundTask(gateway, ledger, logger))

	// Start async worker with retry logic
	go func() {
		log.Println("[RefundWorker] Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[RefundWorker] Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[RefundWorker] Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

// NewRefundQueueClient returns the asynq client used to enqueue refunds.
func NewRefundQueueClient() *asynq.Client {
	return asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisRefundQueueDB,
	})
}
