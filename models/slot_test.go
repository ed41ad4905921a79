package models

import (
	"testing"
	"time"
)

func TestSlotLockExpiredAt(t *testing.T) {
	at := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	lk := &SlotLock{ExpiresAt: at}

	if lk.ExpiredAt(at.Add(-time.Nanosecond)) {
		t.Error("lock must be live just before expiry")
	}
	// The expiry instant itself counts as expired.
	if !lk.ExpiredAt(at) {
		t.Error("lock must be expired exactly at expiry")
	}
	if !lk.ExpiredAt(at.Add(time.Second)) {
		t.Error("lock must be expired after expiry")
	}
}
