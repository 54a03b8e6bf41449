package payment

import (
	"context"
	"fmt"
	"math"

	"wheelhouse/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/refund"
	"go.uber.org/zap"
)

// Refunder returns money for a canceled booking.
type Refunder interface {
	Refund(ctx context.Context, bookingID, paymentIntentID string, amount float64) error
}

// StripeRefunder issues refunds against the booking's PaymentIntent. The booking id is the
// idempotency key, so retries never refund twice.
type StripeRefunder struct {
	create func(params *stripe.RefundParams) (*stripe.Refund, error)
}

func NewStripeRefunder() *StripeRefunder {
	return &StripeRefunder{create: refund.New}
}

func (r *StripeRefunder) Refund(ctx context.Context, bookingID, paymentIntentID string, amount float64) error {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(paymentIntentID),
		Amount:        stripe.Int64(toMinorUnits(amount)),
		Metadata:      map[string]string{MetadataBookingID: bookingID},
	}
	params.Context = ctx
	params.SetIdempotencyKey("refund-" + bookingID)

	if _, err := r.create(params); err != nil {
		return fmt.Errorf("stripe refund for booking %s: %w", bookingID, err)
	}
	return nil
}

func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// RefundIssuer consumes booking events and refunds canceled, paid bookings.
type RefundIssuer struct {
	Refunder Refunder
	Logger   *zap.Logger
}

func NewRefundIssuer(refunder Refunder, logger *zap.Logger) *RefundIssuer {
	return &RefundIssuer{Refunder: refunder, Logger: logger}
}

func (i *RefundIssuer) Handle(ctx context.Context, event models.BookingEvent) error {
	if !event.NeedsRefund() {
		return nil
	}
	if err := i.Refunder.Refund(ctx, event.BookingID, event.PaymentIntentID, event.RefundAmount); err != nil {
		i.Logger.Error("Refund failed",
			zap.String("bookingId", event.BookingID),
			zap.Float64("amount", event.RefundAmount),
			zap.Error(err))
		return err
	}
	i.Logger.Info("Refund issued",
		zap.String("bookingId", event.BookingID),
		zap.Float64("amount", event.RefundAmount))
	return nil
}
