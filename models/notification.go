package models

import "time"

type BookingEventType string

const (
	EventBookingCreated   BookingEventType = "booking.created"
	EventBookingConfirmed BookingEventType = "booking.confirmed"
	EventBookingDelivered BookingEventType = "booking.delivered"
	EventBookingReturned  BookingEventType = "booking.returned"
	EventBookingCompleted BookingEventType = "booking.completed"
	EventBookingCanceled  BookingEventType = "booking.canceled"

	EventDeliveryReminder BookingEventType = "booking.reminder.delivery"
	EventReturnReminder   BookingEventType = "booking.reminder.return"
	EventBookingOverdue   BookingEventType = "booking.overdue"
)

// BookingEvent is emitted after a lifecycle change commits. Consumers deliver notifications and refunds.
type BookingEvent struct {
	ID              string           `json:"id"`
	Type            BookingEventType `json:"type"`
	BookingID       string           `json:"bookingId"`
	UserID          string           `json:"userId"`
	CompanyID       string           `json:"companyId"`
	VehicleID       string           `json:"vehicleId"`
	Status          BookingStatus    `json:"status"`
	From            time.Time        `json:"from"`
	To              time.Time        `json:"to"`
	FromTime        time.Time        `json:"fromTime"`
	ToTime          time.Time        `json:"toTime"`
	Total           float64          `json:"total"`
	RefundAmount    float64          `json:"refundAmount,omitempty"`
	PaymentStatus   string           `json:"paymentStatus"`
	PaymentIntentID string           `json:"paymentIntentId,omitempty"`
	Reason          string           `json:"reason,omitempty"`
	OccurredAt      time.Time        `json:"occurredAt"`
}

// BookingSummary is the booking view rendered into confirmation emails.
type BookingSummary struct {
	ID          string    `json:"_id"`
	VehicleName string    `json:"vehicleName"`
	From        time.Time `json:"from"`
	To          time.Time `json:"to"`
}

// NeedsRefund reports whether a cancellation left money to return through the payment provider.
func (e BookingEvent) NeedsRefund() bool {
	return e.Type == EventBookingCanceled &&
		e.RefundAmount > 0 &&
		e.PaymentStatus == PaymentPaid &&
		e.PaymentIntentID != ""
}
