package handlers

import (
	"errors"
	"net/http"

	slotRepo "medibook/database/repository/slot"
	"medibook/models"
	"medibook/services/booking"
	"medibook/services/lock"
	"medibook/services/payment"
	"medibook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler exposes the reserve -> pay -> commit flow.
type BookingHandler struct {
	Locks       lock.Manager
	Coordinator booking.Coordinator
	Gateway     payment.Gateway
	Logger      *zap.Logger
}

func NewBookingHandler(locks lock.Manager, coordinator booking.Coordinator, gateway payment.Gateway, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{
		Locks:       locks,
		Coordinator: coordinator,
		Gateway:     gateway,
		Logger:      logger,
	}
}

// LockSlot places a five-minute exclusive hold on a slot. On conflict the
// caller is expected to offer the patient a different slot; the engine never
// retries on their behalf.
func (h *BookingHandler) LockSlot(c *gin.Context) {
	var input struct {
		SlotID    string `json:"slotId" binding:"required"`
		PatientID string `json:"patientId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	slotLock, err := h.Locks.Acquire(c.Request.Context(), input.SlotID, input.PatientID)
	if err != nil {
		switch {
		case errors.Is(err, slotRepo.ErrSlotNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "slot_not_found", "reason": "no such slot"})
		case errors.Is(err, slotRepo.ErrSlotUnavailable):
			c.JSON(http.StatusConflict, gin.H{"error": "slot_unavailable", "reason": "slot is already held or booked"})
		default:
			h.Logger.Error("lock acquisition failed", zap.Error(err))
			utils.JSONError(c, http.StatusInternalServerError, "failed to lock slot", err.Error())
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"lockId":    slotLock.LockID,
		"slotId":    slotLock.SlotID,
		"expiresAt": slotLock.ExpiresAt,
	})
}

// ReleaseLock gives a hold back early (patient backed out before paying).
// Idempotent; releasing a superseded or consumed lock is a no-op.
func (h *BookingHandler) ReleaseLock(c *gin.Context) {
	lockID := c.Param("lockID")
	if err := h.Locks.Release(c.Request.Context(), lockID); err != nil {
		h.Logger.Error("lock release failed", zap.String("lockId", lockID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to release lock", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"released": true})
}

// CreatePaymentIntent prepares the capture the client completes before
// confirming. The returned intent ID is the payment reference echoed back at
// confirm time.
func (h *BookingHandler) CreatePaymentIntent(c *gin.Context) {
	var input models.PaymentIntentRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	intent, err := h.Gateway.CreateIntent(c.Request.Context(), input)
	if err != nil {
		h.Logger.Error("payment intent creation failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment_capture_failed", "reason": "could not prepare payment"})
		return
	}

	c.JSON(http.StatusOK, intent)
}

// ConfirmBooking finalizes the booking after the client captured payment.
func (h *BookingHandler) ConfirmBooking(c *gin.Context) {
	var input struct {
		LockID     string  `json:"lockId" binding:"required"`
		SlotID     string  `json:"slotId" binding:"required"`
		PatientID  string  `json:"patientId" binding:"required"`
		Amount     float64 `json:"amount" binding:"required,gt=0"`
		PaymentRef string  `json:"paymentReference" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	appt, err := h.Coordinator.Commit(c.Request.Context(), booking.CommitRequest{
		LockID:     input.LockID,
		SlotID:     input.SlotID,
		HolderID:   input.PatientID,
		Amount:     input.Amount,
		PaymentRef: input.PaymentRef,
	})
	if err != nil {
		h.renderCommitFailure(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"appointment": appt})
}

// renderCommitFailure maps the booking taxonomy to HTTP. The distinction the
// client needs most: refundQueued tells the patient their payment succeeded
// but the slot was lost and the money is on its way back, which is a very
// different message from a plain validation failure.
func (h *BookingHandler) renderCommitFailure(c *gin.Context, err error) {
	if e, ok := booking.AsError(err); ok {
		status := http.StatusConflict
		if e.Code == booking.CodeSlotNotFound || e.Code == booking.CodeLockNotFound {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{
			"error":        string(e.Code),
			"reason":       e.Message,
			"retryable":    e.RequiresReacquire(),
			"refundQueued": e.RefundQueued,
		})
		return
	}

	h.Logger.Error("booking commit failed", zap.Error(err))
	utils.JSONError(c, http.StatusInternalServerError, "booking failed", err.Error())
}
