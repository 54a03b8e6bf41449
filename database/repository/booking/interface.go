package bookingRepo

import (
	"context"
	"time"

	"wheelhouse/models"
)

// BookingRepository defines booking persistence. Writes made with a transaction context join that transaction.
type BookingRepository interface {
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	Find(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error)
	// FindByVehicle returns the vehicle's bookings in any of the given statuses.
	FindByVehicle(ctx context.Context, vehicleID string, statuses []models.BookingStatus) ([]models.Booking, error)
	Create(ctx context.Context, booking *models.Booking) error
	// Update replaces the booking if its stored version equals booking.Version, then bumps booking.Version.
	Update(ctx context.Context, booking *models.Booking) error
	// MarkFlag sets a reminder flag from false to true. It reports whether this call made the change.
	MarkFlag(ctx context.Context, id string, flag models.ReminderFlag) (bool, error)
	Delete(ctx context.Context, id string) error

	// Reconciliation queries.
	FindDeliveryRemindersDue(ctx context.Context, now, until time.Time) ([]models.Booking, error)
	FindReturnRemindersDue(ctx context.Context, now, until time.Time) ([]models.Booking, error)
	FindOverdue(ctx context.Context, now time.Time) ([]models.Booking, error)
	FindExpired(ctx context.Context, before time.Time) ([]models.Booking, error)
}
