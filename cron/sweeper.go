package cron

import (
	"context"
	"fmt"
	"time"

	"medibook/services/lock"

	cronv3 "github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// StartLockSweeper runs the lock-expiry sweep on a fixed interval. The sweep
// is the sole mechanism reclaiming abandoned holds; its interval must stay
// short relative to the hold duration to bound staleness. Individual sweep
// failures are logged and the next tick proceeds regardless.
func StartLockSweeper(mgr lock.Manager, interval time.Duration, logger *zap.Logger) *cronv3.Cron {
	c := cronv3.New()

	spec := fmt.Sprintf("@every %s", interval)
	if _, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if _, err := mgr.ExpireStale(ctx); err != nil {
			logger.Error("lock sweep failed", zap.Error(err))
		}
	}); err != nil {
		logger.Fatal("failed to schedule lock sweeper", zap.Error(err))
	}

	c.Start()
	logger.Info("lock sweeper started", zap.Duration("interval", interval))
	return c
}
