package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	appointmentRepo "medibook/database/repository/appointment"
	slotRepo "medibook/database/repository/slot"
	"medibook/models"
	"medibook/services/notification"
	"medibook/services/refund"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultCoordinator implements Coordinator. It re-validates the hold, runs
// the three-effect commit through the slot repository, and on a post-capture
// conflict hands the payment reference to the refund scheduler. The caller
// captures payment before Commit, so every conflict below the expiry check
// can mean captured funds with no booking; that is the compensation path.
type DefaultCoordinator struct {
	Repo         slotRepo.SlotRepository
	Appointments appointmentRepo.AppointmentRepository
	Refunds      refund.Scheduler
	Notifier     notification.Dispatcher
	Logger       *zap.Logger
}

func NewDefaultCoordinator(
	repo slotRepo.SlotRepository,
	appts appointmentRepo.AppointmentRepository,
	refunds refund.Scheduler,
	notifier notification.Dispatcher,
	logger *zap.Logger,
) *DefaultCoordinator {
	return &DefaultCoordinator{
		Repo:         repo,
		Appointments: appts,
		Refunds:      refunds,
		Notifier:     notifier,
		Logger:       logger,
	}
}

func (c *DefaultCoordinator) Commit(ctx context.Context, req CommitRequest) (*models.Appointment, error) {
	if err := validateCommitRequest(req); err != nil {
		return nil, err
	}

	// Step 1: the lock must still exist.
	slot, err := c.Repo.GetByLockID(ctx, req.LockID)
	if err != nil {
		if errors.Is(err, slotRepo.ErrSlotNotFound) {
			return nil, c.lockGone(ctx, req)
		}
		return nil, fmt.Errorf("lock lookup failed: %w", err)
	}

	// Step 2: the lock must match what was granted, and must not have
	// lapsed.
	lk := slot.Lock
	if slot.ID != req.SlotID || lk.HolderID != req.HolderID {
		return nil, c.conflict(ctx, req, CodeLockInvalid, "lock does not match slot and holder")
	}
	if lk.ExpiredAt(time.Now()) {
		return nil, c.conflict(ctx, req, CodeLockExpired, "hold lapsed before commit; restart from acquire")
	}

	// Step 3: the slot must still be held by this lock. GetByLockID already
	// guarantees the lock is installed, but the status re-check closes the
	// race with a sweep finalizing at the same instant.
	if slot.Status != models.SlotStatusLocked {
		return nil, c.conflict(ctx, req, CodeSlotNoLongerAvailable, "slot was taken while payment was in flight")
	}

	appt := &models.Appointment{
		ID:         uuid.New().String(),
		SlotID:     slot.ID,
		DoctorID:   slot.DoctorID,
		PatientID:  req.HolderID,
		Day:        slot.Day,
		StartTime:  slot.StartTime,
		EndTime:    slot.EndTime,
		Amount:     req.Amount,
		PaymentRef: req.PaymentRef,
		CreatedAt:  time.Now(),
	}

	// Step 4: all three effects land or none do.
	if err := c.Repo.CommitBooking(ctx, req.LockID, appt); err != nil {
		if errors.Is(err, slotRepo.ErrBookingConflict) {
			return nil, c.conflict(ctx, req, CodeSlotNoLongerAvailable, "slot was taken while payment was in flight")
		}
		return nil, fmt.Errorf("booking commit failed: %w", err)
	}

	c.Logger.Info("booking committed",
		zap.String("appointmentId", appt.ID),
		zap.String("slotId", appt.SlotID),
		zap.String("patientId", appt.PatientID),
		zap.String("paymentRef", appt.PaymentRef),
	)

	// Step 5: best-effort doctor notification, off the request path.
	c.notifyBooked(appt)

	return appt, nil
}

// lockGone handles an absent lock: it was expired and swept, released, or
// consumed. If this exact booking already committed (same slot, holder and
// payment reference), the retry must fail without compensating a payment
// that is attached to a real appointment.
func (c *DefaultCoordinator) lockGone(ctx context.Context, req CommitRequest) error {
	if req.PaymentRef != "" {
		if appt, err := c.Appointments.GetBySlotID(ctx, req.SlotID); err == nil &&
			appt.PaymentRef == req.PaymentRef && appt.PatientID == req.HolderID {
			return NewError(CodeLockInvalid, "lock already consumed; booking exists")
		}
	}
	return c.conflict(ctx, req, CodeLockNotFound, "lock not found (expired, released, or consumed)")
}

// conflict builds the user-facing failure and, when payment was already
// captured, schedules the compensating refund. Scheduling is idempotent per
// payment reference, so repeated failed commits cannot double-refund.
func (c *DefaultCoordinator) conflict(ctx context.Context, req CommitRequest, code ErrorCode, msg string) error {
	e := NewError(code, msg)
	if req.PaymentRef == "" {
		return e
	}

	payload := models.RefundPayload{
		PaymentRef: req.PaymentRef,
		Amount:     req.Amount,
		SlotID:     req.SlotID,
		PatientID:  req.HolderID,
		Reason:     string(code),
	}
	if err := c.Refunds.Schedule(ctx, payload); err != nil {
		// The booking already failed; the refund is recovered by the
		// worker's retry machinery, never surfaced to the caller.
		c.Logger.Error("failed to schedule compensating refund",
			zap.String("paymentRef", req.PaymentRef),
			zap.Error(err),
		)
		return e
	}
	e.RefundQueued = true
	return e
}

func (c *DefaultCoordinator) notifyBooked(appt *models.Appointment) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		event := models.AppointmentEvent{
			Type:          models.EventNewAppointmentBooked,
			AppointmentID: appt.ID,
			DoctorID:      appt.DoctorID,
			PatientID:     appt.PatientID,
			Day:           appt.Day,
			StartTime:     appt.StartTime,
			EndTime:       appt.EndTime,
			CreatedAt:     appt.CreatedAt,
		}
		if err := c.Notifier.PublishAppointmentBooked(ctx, event); err != nil {
			c.Logger.Warn("doctor notification failed",
				zap.String("appointmentId", appt.ID),
				zap.Error(err),
			)
		}
	}()
}

func validateCommitRequest(req CommitRequest) error {
	switch {
	case req.LockID == "":
		return errors.New("lock identifier is required")
	case req.SlotID == "":
		return errors.New("slot identifier is required")
	case req.HolderID == "":
		return errors.New("holder identifier is required")
	case req.Amount <= 0:
		return errors.New("invalid booking amount")
	}
	return nil
}
