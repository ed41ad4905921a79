package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"medibook/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const doctorChannelPrefix = "doctor:events:"

// ChannelForDoctor returns the pub/sub channel carrying a doctor's live
// booking events.
func ChannelForDoctor(doctorID string) string {
	return doctorChannelPrefix + doctorID
}

// RedisDispatcher implements Dispatcher and Subscriber over Redis Pub/Sub,
// which gives the at-most-once, drop-when-disconnected semantics the live
// channel wants. The appointment record stays the durable source of truth.
type RedisDispatcher struct {
	Client *redis.Client
	Logger *zap.Logger
}

func NewRedisDispatcher(client *redis.Client, logger *zap.Logger) *RedisDispatcher {
	return &RedisDispatcher{Client: client, Logger: logger}
}

func (d *RedisDispatcher) PublishAppointmentBooked(ctx context.Context, event models.AppointmentEvent) error {
	if event.Type == "" {
		event.Type = models.EventNewAppointmentBooked
	}

	b, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal appointment event: %w", err)
	}

	receivers, err := d.Client.Publish(ctx, ChannelForDoctor(event.DoctorID), b).Result()
	if err != nil {
		return fmt.Errorf("failed to publish appointment event: %w", err)
	}

	if receivers == 0 {
		d.Logger.Debug("doctor not connected, event dropped",
			zap.String("doctorId", event.DoctorID),
			zap.String("appointmentId", event.AppointmentID),
		)
		return nil
	}

	d.Logger.Info("appointment event published",
		zap.String("doctorId", event.DoctorID),
		zap.String("appointmentId", event.AppointmentID),
		zap.Int64("receivers", receivers),
	)
	return nil
}

func (d *RedisDispatcher) Subscribe(ctx context.Context, doctorID string) *redis.PubSub {
	return d.Client.Subscribe(ctx, ChannelForDoctor(doctorID))
}
