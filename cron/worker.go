package cron

import (
	"context"
	"time"

	"wheelhouse/config"
	"wheelhouse/services/notification"
	"wheelhouse/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// QueueRedisOpt is the asynq connection for the booking event queue.
func QueueRedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// NewEventMux routes queued booking events. Notification failures are logged and dropped so a
// retry never resends pushes that already went out; refund failures are returned and retried.
func NewEventMux(notifier, refunds notification.EventHandler, logger *zap.Logger) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeBookingEvent, func(ctx context.Context, task *asynq.Task) error {
		event, err := tasks.ParseBookingEvent(task)
		if err != nil {
			logger.Error("Dropping malformed booking event", zap.Error(err))
			return asynq.SkipRetry
		}
		if err := notifier.Handle(ctx, event); err != nil {
			logger.Warn("Booking event notifications failed",
				zap.String("event", string(event.Type)),
				zap.String("bookingId", event.BookingID),
				zap.Error(err))
		}
		return nil
	})
	mux.HandleFunc(tasks.TypeIssueRefund, func(ctx context.Context, task *asynq.Task) error {
		event, err := tasks.ParseBookingEvent(task)
		if err != nil {
			logger.Error("Dropping malformed refund task", zap.Error(err))
			return asynq.SkipRetry
		}
		return refunds.Handle(ctx, event)
	})
	return mux
}

// InitEventWorker starts the queue consumer in the background and returns the server for shutdown.
func InitEventWorker(notifier, refunds notification.EventHandler, logger *zap.Logger) *asynq.Server {
	srv := asynq.NewServer(
		QueueRedisOpt(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				tasks.QueueEvents: 1,
			},
			Logger: logger.Sugar(),
		},
	)
	mux := NewEventMux(notifier, refunds, logger)

	go func() {
		logger.Info("Starting booking event worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Start(mux)
			if err == nil {
				return
			}
			logger.Error("Event worker failed to start",
				zap.Int("attempt", attempts),
				zap.Int("maxAttempts", maxAttempts),
				zap.Error(err))
			if attempts == maxAttempts {
				logger.Fatal("Event worker: max retry attempts reached")
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()
	return srv
}
