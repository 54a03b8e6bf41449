package booking

import (
	"context"
	"errors"
	"fmt"

	"wheelhouse/database/repository"
	"wheelhouse/models"
	"wheelhouse/services/availability"

	"go.uber.org/zap"
)

// ConfirmBooking moves a pending booking to confirmed. The booking, the vehicle's blackout dates and
// trip counter, and the driver's blackout dates are written in one transaction after re-checking
// the window against every other confirmed or ongoing booking.
func (s *DefaultBookingService) ConfirmBooking(ctx context.Context, id, by string) (*models.Booking, error) {
	b, err := s.transition(ctx, id, "confirm booking", func(tx context.Context, b *models.Booking) error {
		if err := requireStatus(b, models.BookingPending); err != nil {
			return err
		}
		vehicle, err := s.loadVehicle(tx, b.VehicleID)
		if err != nil {
			return err
		}

		res, err := s.Availability.Conflicts(tx, vehicle, b.Window(), b.ID,
			[]models.BookingStatus{models.BookingConfirmed, models.BookingOngoing})
		if err != nil {
			return err
		}
		if !res.OK {
			return newError(CodeConflict, "%s", res.Reason)
		}

		now := s.Now()
		dates := availability.DatesBetween(b.From, b.To)

		vehicle.BlackoutDates = availability.UnionDates(vehicle.BlackoutDates, dates)
		vehicle.Trips++
		vehicle.Status = models.VehicleBooked
		vehicle.UpdatedAt = now
		if err := s.Vehicles.Update(tx, vehicle); err != nil {
			return err
		}

		if b.DriverID != "" {
			driver, err := s.Drivers.GetByID(tx, b.DriverID)
			if errors.Is(err, repository.ErrNotFound) {
				return newError(CodeNotFound, "driver %s not found", b.DriverID)
			}
			if err != nil {
				return err
			}
			driver.BlackoutDates = availability.UnionDates(driver.BlackoutDates, dates)
			driver.UpdatedAt = now
			if err := s.Drivers.Update(tx, driver); err != nil {
				return err
			}
		}

		b.Status = models.BookingConfirmed
		b.ConfirmedAt = &now
		b.AppendAudit(models.AuditConfirmed, actor(by), "", now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Info("Booking confirmed", zap.String("bookingId", b.ID), zap.String("vehicleId", b.VehicleID))
	s.publish(ctx, models.EventBookingConfirmed, b, "")
	return b, nil
}

// DeliverBooking hands a confirmed booking's vehicle to the customer.
func (s *DefaultBookingService) DeliverBooking(ctx context.Context, id, by string) (*models.Booking, error) {
	b, err := s.transition(ctx, id, "deliver booking", func(tx context.Context, b *models.Booking) error {
		if err := requireStatus(b, models.BookingConfirmed); err != nil {
			return err
		}
		now := s.Now()
		b.Status = models.BookingOngoing
		if b.DeliveredAt == nil {
			b.DeliveredAt = &now
		}
		b.AppendAudit(models.AuditDelivered, actor(by), "", now)
		return s.setVehicleStatus(tx, b.VehicleID, models.VehicleOngoing)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Info("Booking delivered", zap.String("bookingId", b.ID))
	s.publish(ctx, models.EventBookingDelivered, b, "")
	return b, nil
}

// ReturnVehicle closes an ongoing booking when the vehicle comes back.
func (s *DefaultBookingService) ReturnVehicle(ctx context.Context, id, by string) (*models.Booking, error) {
	b, err := s.transition(ctx, id, "return vehicle", func(tx context.Context, b *models.Booking) error {
		if err := requireStatus(b, models.BookingOngoing); err != nil {
			return err
		}
		now := s.Now()
		b.Status = models.BookingCompleted
		if b.ReturnedAt == nil {
			b.ReturnedAt = &now
		}
		b.AppendAudit(models.AuditReturned, actor(by), "", now)
		return s.setVehicleStatus(tx, b.VehicleID, models.VehicleAvailable)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Info("Vehicle returned", zap.String("bookingId", b.ID), zap.String("vehicleId", b.VehicleID))
	s.publish(ctx, models.EventBookingReturned, b, "")
	return b, nil
}

// CompleteBooking finishes a confirmed or ongoing booking in one step and links any feedback
// and damage reports filed at handover.
func (s *DefaultBookingService) CompleteBooking(ctx context.Context, id string, req models.CompleteBookingRequest) (*models.Booking, error) {
	b, err := s.transition(ctx, id, "complete booking", func(tx context.Context, b *models.Booking) error {
		if err := requireStatus(b, models.BookingConfirmed, models.BookingOngoing); err != nil {
			return err
		}
		now := s.Now()
		b.Status = models.BookingCompleted
		if b.HandoverAt == nil {
			b.HandoverAt = &now
		}
		if b.ReturnedAt == nil {
			b.ReturnedAt = &now
		}
		if req.FeedbackID != "" {
			b.Feedback = appendUnique(b.Feedback, req.FeedbackID)
		}
		b.DamageReports = appendUnique(b.DamageReports, req.DamageReportIDs...)
		b.AppendAudit(models.AuditCompleted, actor(req.UserID), "", now)
		return s.setVehicleStatus(tx, b.VehicleID, models.VehicleAvailable)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Info("Booking completed", zap.String("bookingId", b.ID))
	s.publish(ctx, models.EventBookingCompleted, b, "")
	return b, nil
}

// CancelBooking cancels a pending or confirmed booking and records the refund owed under the
// booking's cancellation policy snapshot.
func (s *DefaultBookingService) CancelBooking(ctx context.Context, id string, req models.CancelBookingRequest) (*models.Booking, error) {
	b, err := s.transition(ctx, id, "cancel booking", func(tx context.Context, b *models.Booking) error {
		if b.Status == models.BookingCanceled {
			return newError(CodeAlreadyCanceled, "booking %s is already canceled", b.ID)
		}
		if err := requireStatus(b, models.BookingPending, models.BookingConfirmed); err != nil {
			return err
		}
		wasConfirmed := b.Status == models.BookingConfirmed

		now := s.Now()
		b.Status = models.BookingCanceled
		b.RefundAmount = RefundAmount(b.CancellationPolicy, b.PriceDetails.Total)
		b.CancellationReason = req.Reason
		b.AppendAudit(models.AuditCanceled, actor(req.UserID), req.Reason, now)

		if wasConfirmed && s.Policy.ReleaseBlackoutOnCancel {
			if err := s.releaseBlackout(tx, b); err != nil {
				return err
			}
		}
		return s.setVehicleStatus(tx, b.VehicleID, models.VehicleAvailable)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Info("Booking canceled",
		zap.String("bookingId", b.ID),
		zap.String("policy", string(b.CancellationPolicy)),
		zap.Float64("refund", b.RefundAmount))
	s.publish(ctx, models.EventBookingCanceled, b, req.Reason)
	return b, nil
}

// RefundAmount applies a cancellation policy to a booking total.
func RefundAmount(policy models.CancellationPolicy, total float64) float64 {
	switch policy {
	case models.PolicyFlexible:
		return total
	case models.PolicyModerate:
		return total * 0.5
	default:
		return 0
	}
}

func (s *DefaultBookingService) releaseBlackout(tx context.Context, b *models.Booking) error {
	dates := availability.DatesBetween(b.From, b.To)
	if err := s.Vehicles.RemoveBlackoutDates(tx, b.VehicleID, dates); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("release vehicle blackout: %w", err)
	}
	if b.DriverID == "" {
		return nil
	}
	if err := s.Drivers.RemoveBlackoutDates(tx, b.DriverID, dates); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("release driver blackout: %w", err)
	}
	return nil
}

func appendUnique(list []string, items ...string) []string {
	seen := make(map[string]struct{}, len(list))
	for _, v := range list {
		seen[v] = struct{}{}
	}
	for _, v := range items {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		list = append(list, v)
	}
	return list
}

// AutoCompleteBooking force-completes a confirmed or ongoing booking whose window has passed and
// releases its blackout dates. It reports false when the booking had already left those states.
func (s *DefaultBookingService) AutoCompleteBooking(ctx context.Context, id string) (*models.Booking, bool, error) {
	b, err := s.transition(ctx, id, "auto-complete booking", func(tx context.Context, b *models.Booking) error {
		if err := requireStatus(b, models.BookingConfirmed, models.BookingOngoing); err != nil {
			return err
		}
		now := s.Now()
		b.Status = models.BookingCompleted
		b.AppendAudit(models.AuditAutoCompleted, models.SystemActor, "window elapsed", now)
		return s.releaseBlackout(tx, b)
	})
	if CodeOf(err) == CodeInvalidTransition {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	s.Logger.Info("Booking auto-completed", zap.String("bookingId", b.ID))
	s.publish(ctx, models.EventBookingCompleted, b, "")
	return b, true, nil
}
