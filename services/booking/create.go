package booking

import (
	"context"
	"errors"
	"strings"

	"wheelhouse/database/repository"
	"wheelhouse/models"
	"wheelhouse/services/availability"
	"wheelhouse/services/pricing"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (s *DefaultBookingService) CheckAvailability(ctx context.Context, vehicleID string, w models.Window) (availability.Result, error) {
	if _, err := s.loadVehicle(ctx, vehicleID); err != nil {
		return availability.Result{}, s.classify(err, "check availability")
	}
	res, err := s.Availability.IsAvailable(ctx, vehicleID, w)
	if err != nil {
		return availability.Result{}, wrapError(CodeServer, "check availability", err)
	}
	return res, nil
}

// CreateBooking validates the request, prices it and persists a pending booking. The availability
// check runs once up front for a fast answer and again inside the transaction that writes.
func (s *DefaultBookingService) CreateBooking(ctx context.Context, req models.CreateBookingRequest) (*models.Booking, error) {
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	user, err := s.Users.GetByID(ctx, req.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, newError(CodeNotFound, "user %s not found", req.UserID)
	}
	if err != nil {
		return nil, wrapError(CodeServer, "load user", err)
	}
	if user.Blocked {
		return nil, newError(CodeForbidden, "user %s is blocked", req.UserID)
	}

	vehicle, err := s.loadVehicle(ctx, req.VehicleID)
	if err != nil {
		return nil, s.classify(err, "load vehicle")
	}

	w := req.Window()
	res, err := s.Availability.Check(ctx, vehicle, w, "", models.ActiveBookingStatuses)
	if err != nil {
		return nil, wrapError(CodeServer, "check availability", err)
	}
	if !res.OK {
		return nil, newError(CodeConflict, "%s", res.Reason)
	}

	if req.PaymentStatus != models.PaymentPending && req.PaymentStatus != models.PaymentPaid {
		return nil, newError(CodeValidation, "paymentStatus must be %q or %q", models.PaymentPending, models.PaymentPaid)
	}
	if !req.TermsAccepted {
		return nil, newError(CodeValidation, "terms must be accepted")
	}

	if req.DriverID != "" {
		if err := s.checkDriver(ctx, req.DriverID, w); err != nil {
			return nil, err
		}
	}

	now := s.Now()
	booking := &models.Booking{
		ID:                 uuid.New().String(),
		VehicleID:          vehicle.ID,
		UserID:             req.UserID,
		CompanyID:          vehicle.CompanyID,
		DriverID:           req.DriverID,
		From:               req.From.UTC(),
		To:                 req.To.UTC(),
		FromTime:           req.FromTime.UTC(),
		ToTime:             req.ToTime.UTC(),
		Intercity:          req.Intercity,
		CityName:           strings.ToLower(strings.TrimSpace(req.CityName)),
		BookingChannel:     req.BookingChannel,
		PromoCode:          req.PromoCode,
		Status:             models.BookingPending,
		BufferMinutes:      vehicle.EffectiveBufferMinutes(),
		PaymentStatus:      req.PaymentStatus,
		CancellationPolicy: vehicle.CancellationPolicy,
		PriceDetails:       pricing.ComputePrice(vehicle, req.PromoCode, now),
		AuditLogs:          []models.AuditEntry{},
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	booking.AppendAudit(models.AuditCreated, req.UserID, "", now)

	err = s.runTx(ctx, "create booking", func(tx context.Context) error {
		v, err := s.loadVehicle(tx, req.VehicleID)
		if err != nil {
			return err
		}
		res, err := s.Availability.Check(tx, v, w, "", models.ActiveBookingStatuses)
		if err != nil {
			return err
		}
		if !res.OK {
			return newError(CodeConflict, "%s", res.Reason)
		}

		stored := *booking
		stored.Version = 0
		if err := s.Bookings.Create(tx, &stored); err != nil {
			return err
		}
		v.Status = models.VehicleBooked
		v.UpdatedAt = now
		if err := s.Vehicles.Update(tx, v); err != nil {
			return err
		}
		*booking = stored
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Info("Booking created",
		zap.String("bookingId", booking.ID),
		zap.String("vehicleId", booking.VehicleID),
		zap.String("userId", booking.UserID),
		zap.Float64("total", booking.PriceDetails.Total))
	s.publish(ctx, models.EventBookingCreated, booking, "")
	return booking, nil
}

func validateCreate(req models.CreateBookingRequest) error {
	var missing []string
	if strings.TrimSpace(req.UserID) == "" {
		missing = append(missing, "user")
	}
	if strings.TrimSpace(req.VehicleID) == "" {
		missing = append(missing, "idVehicle")
	}
	if req.From.IsZero() {
		missing = append(missing, "from")
	}
	if req.To.IsZero() {
		missing = append(missing, "to")
	}
	if req.FromTime.IsZero() {
		missing = append(missing, "fromTime")
	}
	if req.ToTime.IsZero() {
		missing = append(missing, "toTime")
	}
	if len(missing) > 0 {
		return newError(CodeValidation, "missing required fields: %s", strings.Join(missing, ", "))
	}
	if req.To.Before(req.From) {
		return newError(CodeValidation, "to must not be before from")
	}
	if !req.ToTime.After(req.FromTime) {
		return newError(CodeValidation, "toTime must be after fromTime")
	}
	return nil
}

func (s *DefaultBookingService) checkDriver(ctx context.Context, driverID string, w models.Window) error {
	driver, err := s.Drivers.GetByID(ctx, driverID)
	if errors.Is(err, repository.ErrNotFound) {
		return newError(CodeNotFound, "driver %s not found", driverID)
	}
	if err != nil {
		return wrapError(CodeServer, "load driver", err)
	}
	if res := availability.CheckBlackout(driver.BlackoutDates, w); !res.OK {
		return newError(CodeConflict, "driver is %s", res.Reason)
	}
	return nil
}

// classify turns an error raised outside a transaction into a BookingError.
func (s *DefaultBookingService) classify(err error, op string) error {
	var be *BookingError
	if errors.As(err, &be) {
		return be
	}
	if errors.Is(err, repository.ErrNotFound) {
		return wrapError(CodeNotFound, op, err)
	}
	s.Logger.Error("Booking operation failed", zap.String("op", op), zap.Error(err))
	return wrapError(CodeServer, op, err)
}
