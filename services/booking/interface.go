package booking

import (
	"context"
	"time"

	bookingRepo "wheelhouse/database/repository/booking"
	driverRepo "wheelhouse/database/repository/driver"
	userRepo "wheelhouse/database/repository/user"
	vehicleRepo "wheelhouse/database/repository/vehicle"

	"wheelhouse/database"
	"wheelhouse/models"
	"wheelhouse/services/availability"
	"wheelhouse/services/notification"

	"go.uber.org/zap"
)

// BookingService drives the booking lifecycle: pending, confirmed, ongoing, completed, with
// cancellation from pending or confirmed.
type BookingService interface {
	CheckAvailability(ctx context.Context, vehicleID string, w models.Window) (availability.Result, error)
	CreateBooking(ctx context.Context, req models.CreateBookingRequest) (*models.Booking, error)
	ConfirmBooking(ctx context.Context, id, by string) (*models.Booking, error)
	DeliverBooking(ctx context.Context, id, by string) (*models.Booking, error)
	ReturnVehicle(ctx context.Context, id, by string) (*models.Booking, error)
	CompleteBooking(ctx context.Context, id string, req models.CompleteBookingRequest) (*models.Booking, error)
	CancelBooking(ctx context.Context, id string, req models.CancelBookingRequest) (*models.Booking, error)
	SoftDeleteBooking(ctx context.Context, id string, isDeleted bool, by string) (*models.Booking, error)
	AddAdminNote(ctx context.Context, id string, req models.AdminNoteRequest) (*models.Booking, error)
	AutoCompleteBooking(ctx context.Context, id string) (*models.Booking, bool, error)
	DeleteBooking(ctx context.Context, id string) error
	UpdatePaymentStatus(ctx context.Context, id, status, paymentIntentID string) (*models.Booking, error)
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	ListBookings(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error)
}

// Policy holds the tunable parts of the lifecycle.
type Policy struct {
	// ReleaseBlackoutOnCancel removes a confirmed booking's dates from the vehicle and driver when it is canceled.
	ReleaseBlackoutOnCancel bool
	// MaxRetries bounds how often a transition is retried after losing a version race.
	MaxRetries int
}

// DefaultBookingService implements BookingService on top of the repositories and a Transactor.
type DefaultBookingService struct {
	Bookings     bookingRepo.BookingRepository
	Vehicles     vehicleRepo.VehicleRepository
	Drivers      driverRepo.DriverRepository
	Users        userRepo.UserRepository
	Tx           database.Transactor
	Availability *availability.Checker
	Events       notification.EventPublisher
	Logger       *zap.Logger
	Policy       Policy
	Now          func() time.Time
}

func NewDefaultBookingService(
	bookings bookingRepo.BookingRepository,
	vehicles vehicleRepo.VehicleRepository,
	drivers driverRepo.DriverRepository,
	users userRepo.UserRepository,
	tx database.Transactor,
	events notification.EventPublisher,
	logger *zap.Logger,
	policy Policy,
) *DefaultBookingService {
	if policy.MaxRetries <= 0 {
		policy.MaxRetries = 3
	}
	return &DefaultBookingService{
		Bookings:     bookings,
		Vehicles:     vehicles,
		Drivers:      drivers,
		Users:        users,
		Tx:           tx,
		Availability: &availability.Checker{Vehicles: vehicles, Bookings: bookings},
		Events:       events,
		Logger:       logger,
		Policy:       policy,
		Now:          func() time.Time { return time.Now().UTC() },
	}
}
