package booking

import (
	"context"
	"errors"

	"wheelhouse/database/repository"
	"wheelhouse/models"

	"go.uber.org/zap"
)

func (s *DefaultBookingService) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	b, err := s.loadBooking(ctx, id)
	if err != nil {
		return nil, s.classify(err, "get booking")
	}
	return b, nil
}

func (s *DefaultBookingService) ListBookings(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error) {
	bookings, err := s.Bookings.Find(ctx, filter)
	if err != nil {
		return nil, s.classify(err, "list bookings")
	}
	return bookings, nil
}

// SoftDeleteBooking archives or restores a booking without touching its status or the vehicle.
func (s *DefaultBookingService) SoftDeleteBooking(ctx context.Context, id string, isDeleted bool, by string) (*models.Booking, error) {
	return s.transition(ctx, id, "soft delete booking", func(_ context.Context, b *models.Booking) error {
		action := models.AuditRestored
		if isDeleted {
			action = models.AuditArchived
		}
		b.IsDeleted = isDeleted
		b.AppendAudit(action, actor(by), "", s.Now())
		return nil
	})
}

// AddAdminNote replaces the booking's admin notes.
func (s *DefaultBookingService) AddAdminNote(ctx context.Context, id string, req models.AdminNoteRequest) (*models.Booking, error) {
	return s.transition(ctx, id, "add admin note", func(_ context.Context, b *models.Booking) error {
		b.AdminNotes = req.Note
		b.AppendAudit(models.AuditNote, actor(req.By), req.Note, s.Now())
		return nil
	})
}

// UpdatePaymentStatus records the outcome of a charge reported by the payment provider.
func (s *DefaultBookingService) UpdatePaymentStatus(ctx context.Context, id, status, paymentIntentID string) (*models.Booking, error) {
	if status == "" {
		return nil, newError(CodeValidation, "payment status is required")
	}
	b, err := s.transition(ctx, id, "update payment status", func(_ context.Context, b *models.Booking) error {
		b.PaymentStatus = status
		if paymentIntentID != "" {
			b.PaymentIntentID = paymentIntentID
		}
		b.AppendAudit(models.AuditPayment, models.SystemActor, status, s.Now())
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Logger.Info("Booking payment status updated", zap.String("bookingId", id), zap.String("status", status))
	return b, nil
}

// DeleteBooking removes a booking permanently. Bookings still holding a vehicle window cannot be deleted.
func (s *DefaultBookingService) DeleteBooking(ctx context.Context, id string) error {
	b, err := s.loadBooking(ctx, id)
	if err != nil {
		return s.classify(err, "delete booking")
	}
	if b.Status.IsActive() {
		return newError(CodeConflict, "booking %s is %s and cannot be deleted", id, b.Status)
	}
	if err := s.Bookings.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return newError(CodeNotFound, "booking %s not found", id)
		}
		return s.classify(err, "delete booking")
	}
	s.Logger.Info("Booking deleted", zap.String("bookingId", id))
	return nil
}
