package models

import "time"

// Appointment is the durable record of a committed booking. It is created
// exactly once per slot and never mutated or deleted by the engine; a unique
// index on slot_id backstops the one-appointment-per-slot invariant.
type Appointment struct {
	ID         string    `bson:"_id" json:"id"`
	SlotID     string    `bson:"slot_id" json:"slot_id"`
	DoctorID   string    `bson:"doctor_id" json:"doctor_id"`
	PatientID  string    `bson:"patient_id" json:"patient_id"`
	Day        string    `bson:"day" json:"day"`
	StartTime  string    `bson:"start_time" json:"start_time"`
	EndTime    string    `bson:"end_time" json:"end_time"`
	Amount     float64   `bson:"amount" json:"amount"`
	PaymentRef string    `bson:"payment_ref" json:"payment_ref"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}
