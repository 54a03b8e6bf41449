// Package reconcile runs the periodic sweep over bookings: reminders, overdue notices and
// completion of bookings whose window has passed.
package reconcile

import (
	"context"
	"time"

	bookingRepo "wheelhouse/database/repository/booking"
	"wheelhouse/models"
	"wheelhouse/services/availability"
	"wheelhouse/services/booking"
	"wheelhouse/services/notification"

	"go.uber.org/zap"
)

// Completer force-completes an expired booking.
type Completer interface {
	AutoCompleteBooking(ctx context.Context, id string) (*models.Booking, bool, error)
}

// Report counts what one run did.
type Report struct {
	DeliveryReminders int `json:"deliveryReminders"`
	ReturnReminders   int `json:"returnReminders"`
	OverdueNotices    int `json:"overdueNotices"`
	AutoCompleted     int `json:"autoCompleted"`
	Failures          int `json:"failures"`
}

// Job is one reconciliation sweep. Every booking is handled on its own; a failure is logged and
// the sweep moves on.
type Job struct {
	Bookings  bookingRepo.BookingRepository
	Completer Completer
	Events    notification.EventPublisher
	Logger    *zap.Logger
	// Lead is how far ahead reminders fire.
	Lead time.Duration
	Now  func() time.Time
}

func NewJob(bookings bookingRepo.BookingRepository, completer Completer, events notification.EventPublisher, lead time.Duration, logger *zap.Logger) *Job {
	return &Job{
		Bookings:  bookings,
		Completer: completer,
		Events:    events,
		Logger:    logger,
		Lead:      lead,
		Now:       func() time.Time { return time.Now().UTC() },
	}
}

func (j *Job) Run(ctx context.Context) Report {
	now := j.Now()
	var report Report

	report.DeliveryReminders = j.remind(ctx, &report, "delivery reminder", models.FlagDeliveryReminder, models.EventDeliveryReminder,
		func() ([]models.Booking, error) { return j.Bookings.FindDeliveryRemindersDue(ctx, now, now.Add(j.Lead)) })
	report.ReturnReminders = j.remind(ctx, &report, "return reminder", models.FlagReturnReminder, models.EventReturnReminder,
		func() ([]models.Booking, error) { return j.Bookings.FindReturnRemindersDue(ctx, now, now.Add(j.Lead)) })
	report.OverdueNotices = j.remind(ctx, &report, "overdue notice", models.FlagOverdueNotified, models.EventBookingOverdue,
		func() ([]models.Booking, error) { return j.Bookings.FindOverdue(ctx, now) })
	report.AutoCompleted = j.autoComplete(ctx, &report, availability.StartOfDay(now))

	j.Logger.Info("Reconciliation run finished",
		zap.Int("deliveryReminders", report.DeliveryReminders),
		zap.Int("returnReminders", report.ReturnReminders),
		zap.Int("overdueNotices", report.OverdueNotices),
		zap.Int("autoCompleted", report.AutoCompleted),
		zap.Int("failures", report.Failures))
	return report
}

// remind claims the flag before publishing, so a reminder goes out at most once even when runs overlap.
func (j *Job) remind(ctx context.Context, report *Report, kind string, flag models.ReminderFlag, eventType models.BookingEventType, find func() ([]models.Booking, error)) int {
	due, err := find()
	if err != nil {
		j.Logger.Error("Failed to load bookings", zap.String("kind", kind), zap.Error(err))
		report.Failures++
		return 0
	}

	sent := 0
	for i := range due {
		b := &due[i]
		claimed, err := j.Bookings.MarkFlag(ctx, b.ID, flag)
		if err != nil {
			j.Logger.Error("Failed to mark booking", zap.String("kind", kind), zap.String("bookingId", b.ID), zap.Error(err))
			report.Failures++
			continue
		}
		if !claimed {
			continue
		}
		if err := j.Events.Publish(ctx, booking.NewEvent(eventType, b, "", j.Now())); err != nil {
			j.Logger.Warn("Failed to publish reminder", zap.String("kind", kind), zap.String("bookingId", b.ID), zap.Error(err))
			report.Failures++
			continue
		}
		sent++
	}
	return sent
}

func (j *Job) autoComplete(ctx context.Context, report *Report, startOfToday time.Time) int {
	expired, err := j.Bookings.FindExpired(ctx, startOfToday)
	if err != nil {
		j.Logger.Error("Failed to load expired bookings", zap.Error(err))
		report.Failures++
		return 0
	}

	completed := 0
	for _, b := range expired {
		_, done, err := j.Completer.AutoCompleteBooking(ctx, b.ID)
		if err != nil {
			j.Logger.Error("Failed to auto-complete booking", zap.String("bookingId", b.ID), zap.Error(err))
			report.Failures++
			continue
		}
		if done {
			completed++
		}
	}
	return completed
}
