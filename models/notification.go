package models

import "time"

const EventNewAppointmentBooked = "newAppointmentBooked"

// AppointmentEvent is the best-effort push sent to a doctor's live channel
// after a commit. Delivery is at-most-once: if the doctor has no active
// subscription the event is dropped and the appointment record remains the
// source of truth.
type AppointmentEvent struct {
	Type          string    `json:"type"`
	AppointmentID string    `json:"appointmentId"`
	DoctorID      string    `json:"doctorId"`
	PatientID     string    `json:"patientId"`
	Day           string    `json:"day"`
	StartTime     string    `json:"startTime"`
	EndTime       string    `json:"endTime"`
	CreatedAt     time.Time `json:"createdAt"`
}
