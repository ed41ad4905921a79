package appointmentRepo

import (
	"context"

	"medibook/models"
)

// AppointmentRepository is the read side of the booking record. Appointments
// are only ever written inside the slot repository's commit transaction.
type AppointmentRepository interface {
	GetByID(ctx context.Context, id string) (*models.Appointment, error)
	GetBySlotID(ctx context.Context, slotID string) (*models.Appointment, error)
	ListByDoctor(ctx context.Context, doctorID string) ([]models.Appointment, error)
	ListByPatient(ctx context.Context, patientID string) ([]models.Appointment, error)
	EnsureIndexes() error
}
