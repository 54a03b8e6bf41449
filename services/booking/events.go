package booking

import (
	"context"
	"time"

	"wheelhouse/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NewEvent snapshots a booking into an outbound event.
func NewEvent(t models.BookingEventType, b *models.Booking, reason string, at time.Time) models.BookingEvent {
	return models.BookingEvent{
		ID:              uuid.New().String(),
		Type:            t,
		BookingID:       b.ID,
		UserID:          b.UserID,
		CompanyID:       b.CompanyID,
		VehicleID:       b.VehicleID,
		Status:          b.Status,
		From:            b.From,
		To:              b.To,
		FromTime:        b.FromTime,
		ToTime:          b.ToTime,
		Total:           b.PriceDetails.Total,
		RefundAmount:    b.RefundAmount,
		PaymentStatus:   b.PaymentStatus,
		PaymentIntentID: b.PaymentIntentID,
		Reason:          reason,
		OccurredAt:      at,
	}
}

// publish runs after commit. Failures are logged and never undo the transition.
func (s *DefaultBookingService) publish(ctx context.Context, t models.BookingEventType, b *models.Booking, reason string) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(ctx, NewEvent(t, b, reason, s.Now())); err != nil {
		s.Logger.Warn("Failed to publish booking event",
			zap.String("event", string(t)),
			zap.String("bookingId", b.ID),
			zap.Error(err))
	}
}
