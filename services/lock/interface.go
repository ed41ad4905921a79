package lock

import (
	"context"

	"medibook/models"
)

// Manager grants and expires short-lived exclusive holds on slots. It never
// retries on conflict; picking a different slot is the caller's decision.
type Manager interface {
	// Acquire claims the slot for the holder. Returns
	// slotRepo.ErrSlotNotFound or slotRepo.ErrSlotUnavailable on failure.
	Acquire(ctx context.Context, slotID, holderID string) (*models.SlotLock, error)

	// Release idempotently returns the slot to available if the lock is
	// still the live one.
	Release(ctx context.Context, lockID string) error

	// ExpireStale reclaims every lapsed hold, returning the slot to
	// available. Driven by the background sweep.
	ExpireStale(ctx context.Context) (int64, error)
}
