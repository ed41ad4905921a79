// File: medibook/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medibook/config"
	"medibook/cron"
	"medibook/database"
	appointmentRepo "medibook/database/repository/appointment"
	slotRepo "medibook/database/repository/slot"
	"medibook/handlers"
	"medibook/middleware"
	"medibook/routes"
	"medibook/services/booking"
	"medibook/services/lock"
	"medibook/services/notification"
	"medibook/services/payment"
	"medibook/services/refund"
	"medibook/utils"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.InitEventsClient()
	stripe.Key = config.AppConfig.StripeKey

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	slots := slotRepo.NewMongoSlotRepo()
	appts := appointmentRepo.NewMongoAppointmentRepo()
	if err := slots.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure slot indexes: %v", err)
	}
	if err := appts.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure appointment indexes: %v", err)
	}

	// services.
	gateway := payment.NewStripeGateway(config.AppConfig.Currency, logger)
	dispatcher := notification.NewRedisDispatcher(utils.GetEventsClient(), logger)

	refundClient := cron.NewRefundQueueClient()
	defer refundClient.Close()
	refundScheduler := refund.NewAsynqScheduler(refundClient, config.AppConfig.RefundMaxRetry, logger)
	refundLedger := refund.NewRedisLedger(utils.GetCacheClient())

	lockManager := lock.NewDefaultLockManager(slots, config.AppConfig.LockHoldDuration, logger)
	coordinator := booking.NewDefaultCoordinator(slots, appts, refundScheduler, dispatcher, logger)

	// background workers: refund compensation and the lock-expiry sweep.
	cron.InitRefundWorker(gateway, refundLedger, logger)
	sweeper := cron.StartLockSweeper(lockManager, config.AppConfig.LockSweepInterval, logger)
	defer sweeper.Stop()

	// handlers.
	handlerBundle := &routes.HandlerBundle{
		Booking: handlers.NewBookingHandler(lockManager, coordinator, gateway, logger),
		Slots:   handlers.NewSlotHandler(slots, appts, logger),
		Events:  handlers.NewEventsHandler(dispatcher, logger),
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
