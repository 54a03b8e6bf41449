package booking

import (
	"context"
	"errors"

	"wheelhouse/database/repository"
	"wheelhouse/models"

	"go.uber.org/zap"
)

// runTx runs fn in a transaction and retries it when a versioned write loses a race.
// Domain errors pass through; any other failure becomes a TransactionError.
func (s *DefaultBookingService) runTx(ctx context.Context, op string, fn func(tx context.Context) error) error {
	var err error
	for attempt := 1; attempt <= s.Policy.MaxRetries; attempt++ {
		err = s.Tx.WithTransaction(ctx, fn)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrVersionConflict) {
			break
		}
		s.Logger.Debug("Version conflict, retrying",
			zap.String("op", op),
			zap.Int("attempt", attempt))
	}

	var be *BookingError
	switch {
	case errors.As(err, &be):
		return be
	case errors.Is(err, repository.ErrVersionConflict):
		return wrapError(CodeConflict, op+": booking was modified concurrently, please retry", err)
	case errors.Is(err, repository.ErrNotFound):
		return wrapError(CodeNotFound, op, err)
	default:
		s.Logger.Error("Booking transaction failed", zap.String("op", op), zap.Error(err))
		return wrapError(CodeTransaction, op, err)
	}
}

// transition loads the booking inside a transaction, applies fn and persists the booking.
func (s *DefaultBookingService) transition(ctx context.Context, id, op string, fn func(tx context.Context, b *models.Booking) error) (*models.Booking, error) {
	var out *models.Booking
	err := s.runTx(ctx, op, func(tx context.Context) error {
		b, err := s.loadBooking(tx, id)
		if err != nil {
			return err
		}
		if err := fn(tx, b); err != nil {
			return err
		}
		b.UpdatedAt = s.Now()
		if err := s.Bookings.Update(tx, b); err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *DefaultBookingService) loadBooking(ctx context.Context, id string) (*models.Booking, error) {
	b, err := s.Bookings.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, newError(CodeNotFound, "booking %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *DefaultBookingService) loadVehicle(ctx context.Context, id string) (*models.Vehicle, error) {
	v, err := s.Vehicles.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, newError(CodeNotFound, "vehicle %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	if v.IsDeleted {
		return nil, newError(CodeNotFound, "vehicle %s not found", id)
	}
	return v, nil
}

// setVehicleStatus writes a lifecycle side effect on the booked vehicle. A vehicle that no longer
// exists does not block the booking's own transition.
func (s *DefaultBookingService) setVehicleStatus(ctx context.Context, vehicleID string, status models.VehicleStatus) error {
	v, err := s.Vehicles.GetByID(ctx, vehicleID)
	if errors.Is(err, repository.ErrNotFound) {
		s.Logger.Warn("Vehicle missing during booking transition", zap.String("vehicleId", vehicleID))
		return nil
	}
	if err != nil {
		return err
	}
	v.Status = status
	v.UpdatedAt = s.Now()
	return s.Vehicles.Update(ctx, v)
}

func requireStatus(b *models.Booking, want ...models.BookingStatus) error {
	for _, w := range want {
		if b.Status == w {
			return nil
		}
	}
	return newError(CodeInvalidTransition, "booking %s is %s, expected %s", b.ID, b.Status, joinStatuses(want))
}

func joinStatuses(statuses []models.BookingStatus) string {
	out := ""
	for i, st := range statuses {
		if i > 0 {
			out += " or "
		}
		out += string(st)
	}
	return out
}

func actor(by string) string {
	if by == "" {
		return models.SystemActor
	}
	return by
}
