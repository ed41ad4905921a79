package routes

import (
	"net/http"
	"time"

	"medibook/handlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// HandlerBundle aggregates the handlers wired in main.
type HandlerBundle struct {
	Booking *handlers.BookingHandler
	Slots   *handlers.SlotHandler
	Events  *handlers.EventsHandler
}

// RegisterRoutes sets up all endpoints.
func RegisterRoutes(r *gin.Engine, hb *HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterBookingRoutes(r, hb)
	RegisterDoctorRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
}

// RegisterBookingRoutes registers all endpoints for the booking engine.
func RegisterBookingRoutes(r *gin.Engine, hb *HandlerBundle) {
	booking := r.Group("/api/booking")
	{
		booking.POST("/lock", hb.Booking.LockSlot)                      // Phase 1: hold the slot
		booking.DELETE("/lock/:lockID", hb.Booking.ReleaseLock)         // Optional: give the hold back early
		booking.POST("/payment-intent", hb.Booking.CreatePaymentIntent) // Phase 2: prepare the capture
		booking.POST("/confirm", hb.Booking.ConfirmBooking)             // Phase 3: commit the booking
	}
}

// RegisterDoctorRoutes registers doctor-facing queries and the live channel.
func RegisterDoctorRoutes(r *gin.Engine, hb *HandlerBundle) {
	doctors := r.Group("/api/doctors")
	{
		doctors.GET("/:id/slots", hb.Slots.GetDoctorSlots)
		doctors.GET("/:id/appointments", hb.Slots.GetDoctorAppointments)
		doctors.GET("/:id/events", hb.Events.StreamDoctorEvents)
	}
}

// RegisterAdminRoutes registers slot provisioning.
func RegisterAdminRoutes(r *gin.Engine, hb *HandlerBundle) {
	admin := r.Group("/api/admin")
	{
		admin.POST("/slots", hb.Slots.CreateSlots)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm Medibook"})
	})
}
