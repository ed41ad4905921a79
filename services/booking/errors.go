package booking

import "fmt"

// ErrorCode classifies booking failures for the caller. The codes split into
// three families: bad identifiers (slot_not_found), pre-payment races the
// caller resolves by picking another slot (slot_unavailable), and commit-time
// failures that require restarting from acquire (the lock_* codes and
// slot_no_longer_available). The last one is the only code that can carry a
// queued refund, because it means funds were captured before the slot was
// lost.
type ErrorCode string

const (
	CodeSlotNotFound          ErrorCode = "slot_not_found"
	CodeSlotUnavailable       ErrorCode = "slot_unavailable"
	CodeLockNotFound          ErrorCode = "lock_not_found"
	CodeLockExpired           ErrorCode = "lock_expired"
	CodeLockInvalid           ErrorCode = "lock_invalid"
	CodeSlotNoLongerAvailable ErrorCode = "slot_no_longer_available"
	CodePaymentCaptureFailed  ErrorCode = "payment_capture_failed"
)

// Error is the user-facing booking failure.
type Error struct {
	Code         ErrorCode
	Message      string
	RefundQueued bool
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// RequiresReacquire reports whether the caller must restart from acquire
// (the hold lapsed, was consumed, or did not match).
func (e *Error) RequiresReacquire() bool {
	switch e.Code {
	case CodeLockNotFound, CodeLockExpired, CodeLockInvalid, CodeSlotNoLongerAvailable:
		return true
	}
	return false
}

func NewError(code ErrorCode, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// AsError unwraps err into a booking Error if it is one.
func AsError(err error) (*Error, bool) {
	e, ok := err.(*Error)
	return e, ok
}
