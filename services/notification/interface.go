package notification

import (
	"context"

	"medibook/models"

	"github.com/go-redis/redis/v8"
)

// Dispatcher pushes booking events to a doctor's live channel. Delivery is
// best-effort and at-most-once: with no subscriber the event is dropped, and
// a publish failure never fails the booking that produced it.
type Dispatcher interface {
	PublishAppointmentBooked(ctx context.Context, event models.AppointmentEvent) error
}

// Subscriber attaches a live consumer to a doctor's channel (used by the
// SSE endpoint).
type Subscriber interface {
	Subscribe(ctx context.Context, doctorID string) *redis.PubSub
}
