package notification

import (
	"context"
	"fmt"

	companyRepo "wheelhouse/database/repository/company"
	userRepo "wheelhouse/database/repository/user"
	vehicleRepo "wheelhouse/database/repository/vehicle"
	"wheelhouse/models"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type message struct {
	UserTitle    string
	UserBody     string
	CompanyTitle string
	CompanyBody  string
	// Subject is set for events that also go out by email.
	Subject      string
	UserIntro    string
	CompanyIntro string
}

// Dispatcher turns booking events into pushes and emails for the customer and the rental company.
type Dispatcher struct {
	Notifier  NotificationService
	Users     userRepo.UserRepository
	Companies companyRepo.CompanyRepository
	Vehicles  vehicleRepo.VehicleRepository
	Logger    *zap.Logger
}

func NewDispatcher(
	notifier NotificationService,
	users userRepo.UserRepository,
	companies companyRepo.CompanyRepository,
	vehicles vehicleRepo.VehicleRepository,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{Notifier: notifier, Users: users, Companies: companies, Vehicles: vehicles, Logger: logger}
}

// Handle sends every notification the event calls for. Each send is attempted even when an
// earlier one fails; the failures come back combined.
func (d *Dispatcher) Handle(ctx context.Context, event models.BookingEvent) error {
	msg, ok := d.render(event)
	if !ok {
		d.Logger.Debug("No notification for event", zap.String("event", string(event.Type)))
		return nil
	}

	data := map[string]string{
		"type":      string(event.Type),
		"bookingId": event.BookingID,
		"status":    string(event.Status),
	}

	var errs error
	if msg.UserTitle != "" {
		errs = multierr.Append(errs, d.Notifier.SendUserPushNotification(ctx, event.UserID, msg.UserTitle, msg.UserBody, data))
	}
	if msg.CompanyTitle != "" && event.CompanyID != "" {
		errs = multierr.Append(errs, d.Notifier.SendCompanyPushNotification(ctx, event.CompanyID, msg.CompanyTitle, msg.CompanyBody, data))
	}
	if msg.Subject != "" {
		errs = multierr.Append(errs, d.email(ctx, event, msg))
	}

	if errs != nil {
		d.Logger.Warn("Booking notifications partially failed",
			zap.String("event", string(event.Type)),
			zap.String("bookingId", event.BookingID),
			zap.Error(errs))
	}
	return errs
}

func (d *Dispatcher) email(ctx context.Context, event models.BookingEvent, msg message) error {
	summary := models.BookingSummary{ID: event.BookingID, From: event.From, To: event.To}
	if v, err := d.Vehicles.GetByID(ctx, event.VehicleID); err == nil {
		summary.VehicleName = v.Name
	}

	var errs error
	if u, err := d.Users.GetByID(ctx, event.UserID); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("load user %s: %w", event.UserID, err))
	} else {
		errs = multierr.Append(errs, d.sendEmail(ctx, event.Type, u.Email, u.Name, msg.Subject, msg.UserIntro, summary, false))
	}

	if event.CompanyID == "" {
		return errs
	}
	if c, err := d.Companies.GetByID(ctx, event.CompanyID); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("load company %s: %w", event.CompanyID, err))
	} else {
		errs = multierr.Append(errs, d.sendEmail(ctx, event.Type, c.Email, c.Name, msg.Subject, msg.CompanyIntro, summary, true))
	}
	return errs
}

func (d *Dispatcher) sendEmail(ctx context.Context, t models.BookingEventType, email, name, subject, intro string, summary models.BookingSummary, isCompany bool) error {
	if t == models.EventBookingConfirmed {
		return d.Notifier.SendBookingConfirmationEmail(ctx, email, name, summary, isCompany)
	}
	return d.Notifier.SendBookingEmail(ctx, email, name, subject, intro, summary)
}

func (d *Dispatcher) render(e models.BookingEvent) (message, bool) {
	pickup := e.FromTime.Format("02 Jan 15:04")
	dropoff := e.ToTime.Format("02 Jan 15:04")

	switch e.Type {
	case models.EventBookingCreated:
		return message{
			UserTitle:    "Booking received",
			UserBody:     fmt.Sprintf("Your booking for %s is awaiting confirmation.", pickup),
			CompanyTitle: "New booking request",
			CompanyBody:  fmt.Sprintf("A customer requested a vehicle from %s to %s.", pickup, dropoff),
		}, true
	case models.EventBookingConfirmed:
		return message{
			UserTitle:    "Booking confirmed!",
			UserBody:     fmt.Sprintf("Your vehicle is reserved from %s to %s.", pickup, dropoff),
			CompanyTitle: "Booking confirmed",
			CompanyBody:  fmt.Sprintf("Booking %s is confirmed for %s.", e.BookingID, pickup),
			Subject:      "Booking confirmed",
		}, true
	case models.EventBookingDelivered:
		return message{
			UserTitle:    "Enjoy your ride",
			UserBody:     fmt.Sprintf("Your vehicle has been handed over. Please return it by %s.", dropoff),
			CompanyTitle: "Vehicle delivered",
			CompanyBody:  fmt.Sprintf("Booking %s is now ongoing.", e.BookingID),
		}, true
	case models.EventBookingReturned, models.EventBookingCompleted:
		return message{
			UserTitle:    "Trip completed",
			UserBody:     "Thanks for riding with us. We hope to see you again.",
			CompanyTitle: "Vehicle returned",
			CompanyBody:  fmt.Sprintf("Booking %s is completed.", e.BookingID),
		}, true
	case models.EventBookingCanceled:
		body := "Your booking has been canceled."
		if e.RefundAmount > 0 {
			body = fmt.Sprintf("Your booking has been canceled. A refund of %.2f is on its way.", e.RefundAmount)
		}
		return message{
			UserTitle:    "Booking canceled",
			UserBody:     body,
			CompanyTitle: "Booking canceled",
			CompanyBody:  fmt.Sprintf("Booking %s for %s was canceled.", e.BookingID, pickup),
		}, true
	case models.EventDeliveryReminder:
		return message{
			UserTitle:    "Pickup soon",
			UserBody:     fmt.Sprintf("Your vehicle will be ready at %s.", pickup),
			CompanyTitle: "Upcoming delivery",
			CompanyBody:  fmt.Sprintf("Booking %s starts at %s.", e.BookingID, pickup),
			Subject:      "Your rental starts soon",
			UserIntro:    fmt.Sprintf("Your rental starts at %s.", pickup),
			CompanyIntro: fmt.Sprintf("Please have the vehicle ready for %s.", pickup),
		}, true
	case models.EventReturnReminder:
		return message{
			UserTitle:    "Return due soon",
			UserBody:     fmt.Sprintf("Please return your vehicle by %s.", dropoff),
			CompanyTitle: "Upcoming return",
			CompanyBody:  fmt.Sprintf("Booking %s ends at %s.", e.BookingID, dropoff),
			Subject:      "Your rental ends soon",
			UserIntro:    fmt.Sprintf("Your rental ends at %s.", dropoff),
			CompanyIntro: fmt.Sprintf("The vehicle is due back at %s.", dropoff),
		}, true
	case models.EventBookingOverdue:
		return message{
			UserTitle:    "Return overdue",
			UserBody:     fmt.Sprintf("Your vehicle was due back at %s.", dropoff),
			CompanyTitle: "Vehicle overdue",
			CompanyBody:  fmt.Sprintf("Booking %s was due back at %s.", e.BookingID, dropoff),
			Subject:      "Your rental is overdue",
			UserIntro:    fmt.Sprintf("Your vehicle was due back at %s. Please return it as soon as possible.", dropoff),
			CompanyIntro: fmt.Sprintf("The vehicle for this booking was due back at %s.", dropoff),
		}, true
	}
	return message{}, false
}
