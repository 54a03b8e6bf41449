package models

import "time"

// CreateBookingRequest is the accepted body of POST /bookings.
type CreateBookingRequest struct {
	UserID         string    `json:"user"`
	VehicleID      string    `json:"idVehicle"`
	From           time.Time `json:"from"`
	To             time.Time `json:"to"`
	FromTime       time.Time `json:"fromTime"`
	ToTime         time.Time `json:"toTime"`
	Intercity      bool      `json:"intercity"`
	CityName       string    `json:"cityName"`
	DriverID       string    `json:"driver,omitempty"`
	TermsAccepted  bool      `json:"termsAccepted"`
	PaymentStatus  string    `json:"paymentStatus"`
	PromoCode      string    `json:"promoCode,omitempty"`
	BookingChannel string    `json:"bookingChannel,omitempty"`
}

// Window returns the requested rental window.
func (r CreateBookingRequest) Window() Window {
	return Window{From: r.From, To: r.To, FromTime: r.FromTime, ToTime: r.ToTime}
}

// CancelBookingRequest is the body of POST /bookings/:id/cancel.
type CancelBookingRequest struct {
	UserID string `json:"user"`
	Reason string `json:"reason"`
}

// CompleteBookingRequest is the body of POST /bookings/:id/complete.
type CompleteBookingRequest struct {
	UserID          string   `json:"user"`
	FeedbackID      string   `json:"feedbackId,omitempty"`
	DamageReportIDs []string `json:"damageReportIds,omitempty"`
}

// SoftDeleteRequest is the body of PATCH /bookings/:id/soft-delete.
type SoftDeleteRequest struct {
	IsDeleted bool `json:"isDeleted"`
}

// AdminNoteRequest is the body of POST /bookings/:id/note.
type AdminNoteRequest struct {
	Note string `json:"note"`
	By   string `json:"by"`
}

// ActorRequest carries the acting user for transitions without other input.
type ActorRequest struct {
	UserID string `json:"user"`
}
