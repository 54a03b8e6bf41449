// Package payment connects bookings to Stripe: charge outcomes arrive by webhook and refunds go
// out when a paid booking is canceled.
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"wheelhouse/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

const (
	eventPaymentSucceeded = "payment_intent.succeeded"
	eventPaymentFailed    = "payment_intent.payment_failed"

	// MetadataBookingID is the PaymentIntent metadata key that links a charge to its booking.
	MetadataBookingID = "bookingId"
)

var ErrInvalidSignature = errors.New("invalid stripe signature")

// PaymentStatusUpdater records a charge outcome on a booking.
type PaymentStatusUpdater interface {
	UpdatePaymentStatus(ctx context.Context, id, status, paymentIntentID string) (*models.Booking, error)
}

// WebhookProcessor verifies Stripe webhook deliveries and applies PaymentIntent outcomes.
type WebhookProcessor struct {
	Secret   string
	Bookings PaymentStatusUpdater
	Logger   *zap.Logger
}

func NewWebhookProcessor(secret string, bookings PaymentStatusUpdater, logger *zap.Logger) *WebhookProcessor {
	return &WebhookProcessor{Secret: secret, Bookings: bookings, Logger: logger}
}

// Process handles one delivery. Events that are not about a booking's PaymentIntent are acknowledged and ignored.
func (p *WebhookProcessor) Process(ctx context.Context, payload []byte, signature string) error {
	event, err := webhook.ConstructEventWithOptions(payload, signature, p.Secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return p.apply(ctx, event)
}

func (p *WebhookProcessor) apply(ctx context.Context, event stripe.Event) error {
	var status string
	switch string(event.Type) {
	case eventPaymentSucceeded:
		status = models.PaymentPaid
	case eventPaymentFailed:
		status = models.PaymentFailed
	default:
		p.Logger.Debug("Ignoring stripe event", zap.String("type", string(event.Type)))
		return nil
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return fmt.Errorf("decode payment intent: %w", err)
	}
	bookingID := intent.Metadata[MetadataBookingID]
	if bookingID == "" {
		p.Logger.Warn("Payment intent without booking id", zap.String("paymentIntent", intent.ID))
		return nil
	}

	if _, err := p.Bookings.UpdatePaymentStatus(ctx, bookingID, status, intent.ID); err != nil {
		return fmt.Errorf("update payment status for booking %s: %w", bookingID, err)
	}
	p.Logger.Info("Payment status applied",
		zap.String("bookingId", bookingID),
		zap.String("paymentIntent", intent.ID),
		zap.String("status", status))
	return nil
}
