package handlers

import (
	"net/http"
	"time"

	appointmentRepo "medibook/database/repository/appointment"
	slotRepo "medibook/database/repository/slot"
	"medibook/models"
	"medibook/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SlotHandler serves slot provisioning and the doctor-facing listing
// queries. Slots are provisioned available and only the engine mutates their
// status afterwards.
type SlotHandler struct {
	Slots        slotRepo.SlotRepository
	Appointments appointmentRepo.AppointmentRepository
	Logger       *zap.Logger
}

func NewSlotHandler(slots slotRepo.SlotRepository, appts appointmentRepo.AppointmentRepository, logger *zap.Logger) *SlotHandler {
	return &SlotHandler{
		Slots:        slots,
		Appointments: appts,
		Logger:       logger,
	}
}

// GetDoctorSlots lists a doctor's slots for the booking page.
func (h *SlotHandler) GetDoctorSlots(c *gin.Context) {
	doctorID := c.Param("id")
	slots, err := h.Slots.ListByDoctor(c.Request.Context(), doctorID)
	if err != nil {
		h.Logger.Error("slot listing failed", zap.String("doctorId", doctorID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to fetch slots", err.Error())
		return
	}
	if slots == nil {
		slots = []models.Slot{}
	}
	c.JSON(http.StatusOK, gin.H{"slots": slots})
}

// GetDoctorAppointments lists a doctor's booked appointments. This is the
// durable view backing the best-effort live channel.
func (h *SlotHandler) GetDoctorAppointments(c *gin.Context) {
	doctorID := c.Param("id")
	appts, err := h.Appointments.ListByDoctor(c.Request.Context(), doctorID)
	if err != nil {
		h.Logger.Error("appointment listing failed", zap.String("doctorId", doctorID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to fetch appointments", err.Error())
		return
	}
	if appts == nil {
		appts = []models.Appointment{}
	}
	c.JSON(http.StatusOK, gin.H{"appointments": appts})
}

// CreateSlots provisions available slots for a doctor's calendar day.
func (h *SlotHandler) CreateSlots(c *gin.Context) {
	var input struct {
		DoctorID string `json:"doctorId" binding:"required"`
		Day      string `json:"day" binding:"required"`
		Slots    []struct {
			StartTime string `json:"startTime" binding:"required"`
			EndTime   string `json:"endTime" binding:"required"`
		} `json:"slots" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	if _, err := time.Parse("2006-01-02", input.Day); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid day", "day must be YYYY-MM-DD")
		return
	}

	created := make([]models.Slot, 0, len(input.Slots))
	for _, s := range input.Slots {
		slot := models.Slot{
			ID:        uuid.New().String(),
			DoctorID:  input.DoctorID,
			Day:       input.Day,
			StartTime: s.StartTime,
			EndTime:   s.EndTime,
			Status:    models.SlotStatusAvailable,
		}
		if err := h.Slots.Insert(c.Request.Context(), &slot); err != nil {
			h.Logger.Error("slot provisioning failed", zap.String("doctorId", input.DoctorID), zap.Error(err))
			utils.JSONError(c, http.StatusInternalServerError, "failed to create slots", err.Error())
			return
		}
		created = append(created, slot)
	}

	c.JSON(http.StatusCreated, gin.H{"slots": created})
}
