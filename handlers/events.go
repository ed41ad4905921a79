package handlers

import (
	"io"

	"medibook/services/notification"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// EventsHandler streams a doctor's live booking events over SSE. The stream
// only carries events published while the doctor is connected; anything
// missed is recoverable through the appointments query.
type EventsHandler struct {
	Events notification.Subscriber
	Logger *zap.Logger
}

func NewEventsHandler(events notification.Subscriber, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{Events: events, Logger: logger}
}

func (h *EventsHandler) StreamDoctorEvents(c *gin.Context) {
	doctorID := c.Param("id")

	sub := h.Events.Subscribe(c.Request.Context(), doctorID)
	defer sub.Close()
	ch := sub.Channel()

	h.Logger.Info("doctor subscribed to live events", zap.String("doctorId", doctorID))

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case msg, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("message", msg.Payload)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
