package booking

import (
	"context"

	"medibook/models"
)

// CommitRequest carries everything the caller must echo back from acquire
// and capture: the exact lock, the slot and holder it was granted for, and
// the opaque payment reference proving funds were captured.
type CommitRequest struct {
	LockID     string
	SlotID     string
	HolderID   string
	Amount     float64
	PaymentRef string
}

// Coordinator finalizes bookings. Commit either lands all three effects
// (appointment created, slot booked, lock consumed) or none, and on a
// post-capture conflict schedules the compensating refund before returning.
type Coordinator interface {
	Commit(ctx context.Context, req CommitRequest) (*models.Appointment, error)
}
