// Package availability decides whether a vehicle can take a new booking window.
package availability

import (
	"context"
	"fmt"
	"time"

	bookingRepo "wheelhouse/database/repository/booking"
	vehicleRepo "wheelhouse/database/repository/vehicle"
	"wheelhouse/models"
)

// Result is the outcome of an availability check. Reason is set when OK is false.
type Result struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

func available() Result { return Result{OK: true} }

func unavailable(format string, args ...interface{}) Result {
	return Result{OK: false, Reason: fmt.Sprintf(format, args...)}
}

// Checker loads the state a decision needs from the store.
type Checker struct {
	Vehicles vehicleRepo.VehicleRepository
	Bookings bookingRepo.BookingRepository
}

// IsAvailable checks a window for a vehicle against its blackout dates and every active booking.
// A positive result is advisory; the write path re-checks inside its transaction.
func (c *Checker) IsAvailable(ctx context.Context, vehicleID string, w models.Window) (Result, error) {
	vehicle, err := c.Vehicles.GetByID(ctx, vehicleID)
	if err != nil {
		return Result{}, err
	}
	return c.Check(ctx, vehicle, w, "", models.ActiveBookingStatuses)
}

// Check evaluates w against vehicle and its bookings in the given statuses, ignoring excludeID.
func (c *Checker) Check(ctx context.Context, vehicle *models.Vehicle, w models.Window, excludeID string, statuses []models.BookingStatus) (Result, error) {
	existing, err := c.Bookings.FindByVehicle(ctx, vehicle.ID, statuses)
	if err != nil {
		return Result{}, fmt.Errorf("availability: load bookings for vehicle %s: %w", vehicle.ID, err)
	}
	return Evaluate(vehicle, existing, w, excludeID), nil
}

// Conflicts checks w against the vehicle's bookings in the given statuses only, skipping blackout dates.
// Confirmation uses it: blackout dates are derived from confirmed windows, which the overlap check already covers.
func (c *Checker) Conflicts(ctx context.Context, vehicle *models.Vehicle, w models.Window, excludeID string, statuses []models.BookingStatus) (Result, error) {
	existing, err := c.Bookings.FindByVehicle(ctx, vehicle.ID, statuses)
	if err != nil {
		return Result{}, fmt.Errorf("availability: load bookings for vehicle %s: %w", vehicle.ID, err)
	}
	return EvaluateWindows(vehicle, existing, w, excludeID), nil
}

// Evaluate is the pure decision: blackout first, then overlap and buffer against each existing booking.
func Evaluate(vehicle *models.Vehicle, existing []models.Booking, w models.Window, excludeID string) Result {
	if res := CheckBlackout(vehicle.BlackoutDates, w); !res.OK {
		res.Reason = "vehicle is " + res.Reason
		return res
	}
	return EvaluateWindows(vehicle, existing, w, excludeID)
}

// CheckBlackout rejects w when any blackout date falls within [w.From, w.To].
func CheckBlackout(blackout []string, w models.Window) Result {
	if date, blocked := blackoutHit(blackout, w.From, w.To); blocked {
		return unavailable("unavailable on %s", date)
	}
	return available()
}

// EvaluateWindows applies the overlap and buffer rules.
func EvaluateWindows(vehicle *models.Vehicle, existing []models.Booking, w models.Window, excludeID string) Result {
	for i := range existing {
		b := &existing[i]
		if b.ID == excludeID {
			continue
		}
		if Overlaps(w.FromTime, w.ToTime, b.FromTime, b.ToTime) {
			return unavailable("vehicle is already booked from %s to %s",
				b.FromTime.UTC().Format(time.RFC3339), b.ToTime.UTC().Format(time.RFC3339))
		}
		buffer := requiredBuffer(vehicle, b)
		if gap := Gap(w.FromTime, w.ToTime, b.FromTime, b.ToTime); gap < buffer {
			return unavailable("vehicle needs %d minutes between bookings, only %d available",
				int(buffer.Minutes()), int(gap.Minutes()))
		}
	}
	return available()
}

func blackoutHit(blackout []string, from, to time.Time) (string, bool) {
	lo, hi := DateKey(from), DateKey(to)
	for _, d := range blackout {
		if d >= lo && d <= hi {
			return d, true
		}
	}
	return "", false
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// Gap is the idle time between two non-overlapping windows, whichever comes first.
func Gap(aStart, aEnd, bStart, bEnd time.Time) time.Duration {
	if !aStart.Before(bEnd) {
		return aStart.Sub(bEnd)
	}
	return bStart.Sub(aEnd)
}

func requiredBuffer(vehicle *models.Vehicle, existing *models.Booking) time.Duration {
	minutes := vehicle.EffectiveBufferMinutes()
	if existing.BufferMinutes > minutes {
		minutes = existing.BufferMinutes
	}
	return time.Duration(minutes) * time.Minute
}
