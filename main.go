package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wheelhouse/config"
	"wheelhouse/cron"
	"wheelhouse/database"
	bookingRepo "wheelhouse/database/repository/booking"
	companyRepo "wheelhouse/database/repository/company"
	driverRepo "wheelhouse/database/repository/driver"
	userRepo "wheelhouse/database/repository/user"
	vehicleRepo "wheelhouse/database/repository/vehicle"
	"wheelhouse/handlers"
	"wheelhouse/routes"
	"wheelhouse/services/booking"
	"wheelhouse/services/notification"
	"wheelhouse/services/payment"
	"wheelhouse/services/reconcile"
	"wheelhouse/services/tasks"
	"wheelhouse/utils"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/hibiken/asynq"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger := utils.GetLogger()
	defer logger.Sync()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	binding.EnableDecoderDisallowUnknownFields = true

	database.InitDB()
	lockClient := utils.GetLockClient()
	stripe.Key = cfg.StripeKey

	// repositories.
	bookings := bookingRepo.NewMongoBookingRepo()
	vehicles := vehicleRepo.NewMongoVehicleRepo()
	drivers := driverRepo.NewMongoDriverRepo()
	users := userRepo.NewMongoUserRepo()
	companies := companyRepo.NewMongoCompanyRepo()

	// notifications.
	var push notification.PushSender
	if cfg.FirebaseCredentialsPath != "" {
		fcm, err := utils.FirebaseInit(context.Background(), cfg.FirebaseCredentialsPath)
		if err != nil {
			logger.Fatal("main: failed to initialize firebase", zap.Error(err))
		}
		push = fcm
	} else {
		logger.Warn("FIREBASE_CREDENTIALS_PATH not set, push notifications disabled")
	}
	var mailer notification.Mailer
	if cfg.SMTPHost != "" {
		mailer = notification.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
	} else {
		logger.Warn("SMTP_HOST not set, booking emails disabled")
	}
	notifier, err := notification.NewDefaultNotificationService(users, companies, push, mailer, logger)
	if err != nil {
		logger.Fatal("main: notification service", zap.Error(err))
	}
	dispatcher := notification.NewDispatcher(notifier, users, companies, vehicles, logger)
	refunds := payment.NewRefundIssuer(payment.NewStripeRefunder(), logger)

	// outbound events.
	var events notification.EventPublisher
	var worker *asynq.Server
	var queue *asynq.Client
	switch cfg.EventsMode {
	case "inline":
		events = notification.NewInlinePublisher(notification.Handlers{dispatcher, refunds}, logger)
	default:
		queue = asynq.NewClient(cron.QueueRedisOpt())
		events = tasks.NewAsynqPublisher(queue)
		worker = cron.InitEventWorker(dispatcher, refunds, logger)
	}

	// booking core.
	bookingService := booking.NewDefaultBookingService(
		bookings, vehicles, drivers, users,
		database.NewMongoTransactor(database.MongoClient),
		events,
		logger,
		booking.Policy{
			ReleaseBlackoutOnCancel: cfg.ReleaseBlackoutOnCancel,
			MaxRetries:              cfg.TransitionMaxRetries,
		},
	)

	job := reconcile.NewJob(bookings, bookingService, events, cfg.ReminderLead(), logger)
	scheduler, err := reconcile.NewScheduler(job, cfg.ReconcileSchedule,
		&reconcile.RedisLocker{Client: lockClient, Logger: logger}, 4*time.Minute, logger)
	if err != nil {
		logger.Fatal("main: invalid RECONCILE_SCHEDULE", zap.String("schedule", cfg.ReconcileSchedule), zap.Error(err))
	}
	scheduler.Start()

	// Create the Gin router.
	router := gin.New()
	router.Use(utils.ErrorHandler())

	handlerBundle := &handlers.HandlerBundle{
		Booking: handlers.NewBookingHandler(bookingService),
		Payment: handlers.NewPaymentHandler(payment.NewWebhookProcessor(cfg.StripeWebhookSecret, bookingService, logger)),
		Health:  handlers.HealthHandler(lockClient, database.MongoClient),
	}
	routes.RegisterRoutes(router, handlerBundle, routes.Options{
		JWTSecret:         cfg.JWTSecret,
		MaxRequestsPerMin: cfg.MaxRequestsPerMin,
		Logger:            logger,
	})

	srv := &http.Server{
		Addr:    "0.0.0.0:" + cfg.AppPort,
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
	logger.Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}
	scheduler.Stop(ctx)
	if worker != nil {
		worker.Shutdown()
	}
	if queue != nil {
		_ = queue.Close()
	}
	if err := database.Disconnect(ctx); err != nil {
		logger.Error("main: mongo disconnect", zap.Error(err))
	}

	logger.Info("main: server stopped gracefully")
}
