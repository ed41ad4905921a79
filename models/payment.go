package models

import "time"

// PaymentIntentRequest asks the gateway to prepare a capture for the given
// amount. The client completes the capture before calling confirm.
type PaymentIntentRequest struct {
	PatientID string  `json:"patientId"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency,omitempty"`
}

// PaymentIntent is the gateway's handle for a pending capture. The intent ID
// doubles as the payment reference echoed back at commit time; the engine
// treats it as opaque proof of funds and never re-validates it in detail.
type PaymentIntent struct {
	IntentID     string    `json:"intentId"`
	ClientSecret string    `json:"clientSecret"`
	Amount       float64   `json:"amount"`
	Currency     string    `json:"currency"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}

// RefundPayload is the task body for a compensating refund. PaymentRef is the
// idempotency key: every enqueue and every gateway call for the same capture
// uses it, so retries and duplicate enqueues cannot double-refund.
type RefundPayload struct {
	PaymentRef string  `json:"paymentRef"`
	Amount     float64 `json:"amount"`
	SlotID     string  `json:"slotId"`
	PatientID  string  `json:"patientId"`
	Reason     string  `json:"reason"`
}
