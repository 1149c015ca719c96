// File: gymstay/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gymstay/config"
	"gymstay/cron"
	"gymstay/database"
	bookingRepo "gymstay/database/repository/booking"
	offerRepo "gymstay/database/repository/offer"
	"gymstay/handlers"
	"gymstay/middleware"
	"gymstay/routes"
	"gymstay/services/booking"
	"gymstay/services/draft"
	"gymstay/services/notification"
	"gymstay/services/payment"
	"gymstay/services/tasks"
	"gymstay/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/stripe/stripe-go/v76"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitQuoteCache()
	utils.InitDraftCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())
	stripe.Key = config.AppConfig.StripeKey

	// repositories.
	bookings := bookingRepo.NewMongoBookingRepo()
	if err := bookings.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure booking indexes: %v", err)
	}
	offers := offerRepo.NewMongoOfferRepo()

	// Asynq client shares the queue Redis DB with the worker.
	queueClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	defer queueClient.Close()

	// services.
	authority := payment.NewStripeAuthority(logger, time.Duration(config.AppConfig.HoldLifetimeHours)*time.Hour)
	dispatcher := notification.NewAsynqDispatcher(queueClient, logger)
	scheduler := tasks.NewAsynqScheduler(queueClient)

	bookingService := booking.NewDefaultBookingService(
		bookings,
		offers,
		authority,
		dispatcher,
		scheduler,
		logger,
	)

	var mailer notification.Mailer
	if config.AppConfig.SMTPHost != "" {
		mailer = &notification.SMTPMailer{
			Host:     config.AppConfig.SMTPHost,
			Port:     config.AppConfig.SMTPPort,
			Username: config.AppConfig.SMTPUser,
			Password: config.AppConfig.SMTPPassword,
			From:     config.AppConfig.MailFrom,
		}
	} else {
		mailer = &notification.LogMailer{Logger: logger}
	}

	drafts := draft.NewCache(utils.GetDraftCacheClient())

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		Booking: handlers.NewBookingHandler(bookingService, logger),
		Payment: handlers.NewPaymentHandler(bookingService, logger),
		Webhook: handlers.NewWebhookHandler(bookingService, config.AppConfig.StripeWebhookSecret, logger),
		Offer:   handlers.NewOfferHandler(bookingService, logger),
		Draft:   handlers.NewDraftHandler(drafts),
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Background worker: notification delivery and hold expiry.
	go cron.InitWorker(bookingService, mailer)
	utils.StartHealthMonitor(
		[]*redis.Client{utils.GetQuoteCacheClient(), utils.GetDraftCacheClient()},
		database.MongoClient,
	)

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
