package slotRepo

import (
	"context"
	"errors"
	"time"

	"medibook/models"
)

var (
	// ErrSlotNotFound means the slot identifier references nothing.
	ErrSlotNotFound = errors.New("slot not found")
	// ErrSlotUnavailable means the check-and-set lost: the slot is already
	// locked or booked.
	ErrSlotUnavailable = errors.New("slot unavailable")
	// ErrBookingConflict means the commit-time re-check lost: the lock is no
	// longer the live one for the slot, or the slot already has an
	// appointment.
	ErrBookingConflict = errors.New("booking conflict")
)

// SlotRepository is the sole mutator of slot status. Acquire, release and
// reclaim are single-document check-and-set updates; CommitBooking is the
// three-effect transaction that finalizes a booking.
type SlotRepository interface {
	Insert(ctx context.Context, slot *models.Slot) error
	GetByID(ctx context.Context, slotID string) (*models.Slot, error)
	GetByLockID(ctx context.Context, lockID string) (*models.Slot, error)
	ListByDoctor(ctx context.Context, doctorID string) ([]models.Slot, error)

	// AcquireLock atomically transitions an available slot to locked and
	// installs the lock. Returns ErrSlotUnavailable when the slot is locked
	// or booked, ErrSlotNotFound when it does not exist.
	AcquireLock(ctx context.Context, slotID string, lock *models.SlotLock) error

	// ReleaseLock returns the slot to available if the given lock is still
	// the live one. No-op when the lock was superseded or consumed.
	ReleaseLock(ctx context.Context, lockID string) error

	// ReclaimExpired sweeps every locked slot whose lock expiry has passed
	// back to available, discarding the lock. Returns the number reclaimed.
	ReclaimExpired(ctx context.Context, now time.Time) (int64, error)

	// CommitBooking inserts the appointment, transitions the slot from
	// locked to booked and discards the lock, all in one transaction.
	// Returns ErrBookingConflict when the lock is no longer live for the
	// slot or the slot already carries an appointment.
	CommitBooking(ctx context.Context, lockID string, appt *models.Appointment) error

	EnsureIndexes() error
}
