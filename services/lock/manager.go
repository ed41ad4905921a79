package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	slotRepo "medibook/database/repository/slot"
	"medibook/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultLockManager implements Manager on top of the slot repository's
// check-and-set primitives. All mutual exclusion lives in the repository;
// the manager only decides lifetimes and identifiers.
type DefaultLockManager struct {
	Repo         slotRepo.SlotRepository
	HoldDuration time.Duration
	Logger       *zap.Logger
}

func NewDefaultLockManager(repo slotRepo.SlotRepository, hold time.Duration, logger *zap.Logger) *DefaultLockManager {
	return &DefaultLockManager{
		Repo:         repo,
		HoldDuration: hold,
		Logger:       logger,
	}
}

func (m *DefaultLockManager) Acquire(ctx context.Context, slotID, holderID string) (*models.SlotLock, error) {
	if slotID == "" || holderID == "" {
		return nil, errors.New("slot and holder identifiers are required")
	}

	now := time.Now()
	lock := &models.SlotLock{
		LockID:    uuid.New().String(),
		SlotID:    slotID,
		HolderID:  holderID,
		CreatedAt: now,
		ExpiresAt: now.Add(m.HoldDuration),
	}

	if err := m.Repo.AcquireLock(ctx, slotID, lock); err != nil {
		if errors.Is(err, slotRepo.ErrSlotUnavailable) || errors.Is(err, slotRepo.ErrSlotNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("lock acquisition failed: %w", err)
	}

	m.Logger.Info("slot lock acquired",
		zap.String("slotId", slotID),
		zap.String("holderId", holderID),
		zap.String("lockId", lock.LockID),
		zap.Time("expiresAt", lock.ExpiresAt),
	)
	return lock, nil
}

func (m *DefaultLockManager) Release(ctx context.Context, lockID string) error {
	if lockID == "" {
		return errors.New("lock identifier is required")
	}
	if err := m.Repo.ReleaseLock(ctx, lockID); err != nil {
		return fmt.Errorf("lock release failed: %w", err)
	}
	m.Logger.Debug("slot lock released", zap.String("lockId", lockID))
	return nil
}

func (m *DefaultLockManager) ExpireStale(ctx context.Context) (int64, error) {
	reclaimed, err := m.Repo.ReclaimExpired(ctx, time.Now())
	if err != nil {
		return 0, fmt.Errorf("lock sweep failed: %w", err)
	}
	if reclaimed > 0 {
		m.Logger.Info("reclaimed expired slot locks", zap.Int64("count", reclaimed))
	}
	return reclaimed, nil
}
