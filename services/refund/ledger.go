package refund

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Ledger records completed refunds keyed by payment reference, so a re-queued
// task for an already-settled reference is a no-op even if the gateway's own
// idempotency window has lapsed.
type Ledger interface {
	// MarkDone records the refund as settled. Returns false if it was
	// already recorded.
	MarkDone(ctx context.Context, paymentRef string) (bool, error)
	IsDone(ctx context.Context, paymentRef string) (bool, error)
}

const (
	ledgerPrefix = "refund:done:"
	ledgerTTL    = 30 * 24 * time.Hour
)

// RedisLedger implements Ledger with SETNX-keyed entries.
type RedisLedger struct {
	Client *redis.Client
}

func NewRedisLedger(client *redis.Client) *RedisLedger {
	return &RedisLedger{Client: client}
}

func (l *RedisLedger) MarkDone(ctx context.Context, paymentRef string) (bool, error) {
	ok, err := l.Client.SetNX(ctx, ledgerPrefix+paymentRef, time.Now().Unix(), ledgerTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to record refund for %s: %w", paymentRef, err)
	}
	return ok, nil
}

func (l *RedisLedger) IsDone(ctx context.Context, paymentRef string) (bool, error) {
	n, err := l.Client.Exists(ctx, ledgerPrefix+paymentRef).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check refund ledger for %s: %w", paymentRef, err)
	}
	return n > 0, nil
}
