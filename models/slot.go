package models

import "time"

// SlotStatus tracks a slot through one booking cycle:
// available -> locked -> booked, or available -> locked -> available on
// expiry/release. A slot is never booked without being locked first.
type SlotStatus string

const (
	SlotStatusAvailable SlotStatus = "available"
	SlotStatusLocked    SlotStatus = "locked"
	SlotStatusBooked    SlotStatus = "booked"
)

// Slot represents a bookable doctor time interval.
type Slot struct {
	ID        string     `bson:"_id" json:"id"`
	DoctorID  string     `bson:"doctor_id" json:"doctor_id"`
	Day       string     `bson:"day" json:"day"`               // "YYYY-MM-DD"
	StartTime string     `bson:"start_time" json:"start_time"` // "HH:MM"
	EndTime   string     `bson:"end_time" json:"end_time"`     // "HH:MM"
	Status    SlotStatus `bson:"status" json:"status"`
	Lock      *SlotLock  `bson:"lock,omitempty" json:"-"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
}

// SlotLock is a time-bounded exclusive claim on a slot pending payment.
// It is embedded in the slot document so that acquiring, consuming and
// sweeping a lock are all single-document atomic updates; embedding also
// makes "at most one live lock per slot" structural.
type SlotLock struct {
	LockID    string    `bson:"lock_id" json:"lockId"`
	SlotID    string    `bson:"slot_id" json:"slotId"`
	HolderID  string    `bson:"holder_id" json:"holderId"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	ExpiresAt time.Time `bson:"expires_at" json:"expiresAt"`
}

// ExpiredAt reports whether the lock has lapsed as of the given instant.
func (l *SlotLock) ExpiredAt(now time.Time) bool {
	return !now.Before(l.ExpiresAt)
}
