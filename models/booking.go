package models

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingOngoing   BookingStatus = "ongoing"
	BookingCompleted BookingStatus = "completed"
	BookingCanceled  BookingStatus = "canceled"
)

// ActiveBookingStatuses hold a vehicle's time window.
var ActiveBookingStatuses = []BookingStatus{BookingPending, BookingConfirmed, BookingOngoing}

// IsActive reports whether the status still reserves the vehicle.
func (s BookingStatus) IsActive() bool {
	for _, a := range ActiveBookingStatuses {
		if s == a {
			return true
		}
	}
	return false
}

const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)

// DefaultBufferMinutes applies when a vehicle does not set its own buffer.
const DefaultBufferMinutes = 120

// PriceDetails is computed once at creation.
type PriceDetails struct {
	Base     float64 `bson:"base" json:"base"`
	Discount float64 `bson:"discount" json:"discount"`
	Tax      float64 `bson:"tax" json:"tax"`
	Total    float64 `bson:"total" json:"total"`
}

// Booking is the central rental record. Mutated only through the booking state machine.
type Booking struct {
	ID        string `bson:"id" json:"id"`
	VehicleID string `bson:"vehicle_id" json:"vehicleId"`
	UserID    string `bson:"user_id" json:"userId"`
	CompanyID string `bson:"company_id" json:"companyId"`
	DriverID  string `bson:"driver_id,omitempty" json:"driverId,omitempty"`

	// From/To are calendar dates used for blackout accounting.
	From time.Time `bson:"from" json:"from"`
	To   time.Time `bson:"to" json:"to"`
	// FromTime/ToTime are the booking instants used for overlap and buffer checks.
	FromTime time.Time `bson:"from_time" json:"fromTime"`
	ToTime   time.Time `bson:"to_time" json:"toTime"`

	Intercity      bool   `bson:"intercity" json:"intercity"`
	CityName       string `bson:"city_name" json:"cityName"`
	BookingChannel string `bson:"booking_channel,omitempty" json:"bookingChannel,omitempty"`
	PromoCode      string `bson:"promo_code,omitempty" json:"promoCode,omitempty"`

	Status             BookingStatus      `bson:"status" json:"status"`
	BufferMinutes      int                `bson:"buffer_minutes" json:"bufferMinutes"`
	PaymentStatus      string             `bson:"payment_status" json:"paymentStatus"`
	PaymentIntentID    string             `bson:"payment_intent_id,omitempty" json:"paymentIntentId,omitempty"`
	CancellationPolicy CancellationPolicy `bson:"cancellation_policy" json:"cancellationPolicy"`
	PriceDetails       PriceDetails       `bson:"price_details" json:"priceDetails"`

	RefundAmount       float64 `bson:"refund_amount,omitempty" json:"refundAmount,omitempty"`
	CancellationReason string  `bson:"cancellation_reason,omitempty" json:"cancellationReason,omitempty"`

	ConfirmedAt *time.Time `bson:"confirmed_at,omitempty" json:"confirmedAt,omitempty"`
	HandoverAt  *time.Time `bson:"handover_at,omitempty" json:"handoverAt,omitempty"`
	DeliveredAt *time.Time `bson:"delivered_at,omitempty" json:"deliveredAt,omitempty"`
	ReturnedAt  *time.Time `bson:"returned_at,omitempty" json:"returnedAt,omitempty"`

	AuditLogs     []AuditEntry `bson:"audit_logs" json:"auditLogs"`
	AdminNotes    string       `bson:"admin_notes,omitempty" json:"adminNotes,omitempty"`
	IsDeleted     bool         `bson:"is_deleted" json:"isDeleted"`
	Feedback      []string     `bson:"feedback,omitempty" json:"feedback,omitempty"`
	DamageReports []string     `bson:"damage_reports,omitempty" json:"damageReports,omitempty"`

	DeliveryReminderSent bool `bson:"delivery_reminder_sent" json:"deliveryReminderSent"`
	ReturnReminderSent   bool `bson:"return_reminder_sent" json:"returnReminderSent"`
	OverdueNotified      bool `bson:"overdue_notified" json:"overdueNotified"`

	Version   int64     `bson:"version" json:"version"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// Window returns the booking's reserved window.
func (b *Booking) Window() Window {
	return Window{From: b.From, To: b.To, FromTime: b.FromTime, ToTime: b.ToTime}
}

// AppendAudit adds one entry to the append-only audit trail.
func (b *Booking) AppendAudit(action AuditAction, by, details string, at time.Time) {
	b.AuditLogs = append(b.AuditLogs, AuditEntry{Action: action, By: by, Details: details, At: at})
}

// Window is a requested or reserved rental period.
type Window struct {
	From     time.Time `json:"from"`
	To       time.Time `json:"to"`
	FromTime time.Time `json:"fromTime"`
	ToTime   time.Time `json:"toTime"`
}

// ReminderFlag names one of the reconciliation idempotency flags on a booking.
type ReminderFlag string

const (
	FlagDeliveryReminder ReminderFlag = "delivery_reminder_sent"
	FlagReturnReminder   ReminderFlag = "return_reminder_sent"
	FlagOverdueNotified  ReminderFlag = "overdue_notified"
)

// BookingFilter narrows booking listings. Empty fields do not filter.
type BookingFilter struct {
	UserID         string
	CompanyID      string
	VehicleID      string
	Statuses       []BookingStatus
	IncludeDeleted bool
}
