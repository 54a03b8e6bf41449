package vehicleRepo

import (
	"context"

	"wheelhouse/models"
)

// VehicleRepository defines vehicle persistence used by the booking core.
type VehicleRepository interface {
	GetByID(ctx context.Context, id string) (*models.Vehicle, error)
	// Update writes status, blackout dates and trips if the stored version equals vehicle.Version, then bumps vehicle.Version.
	Update(ctx context.Context, vehicle *models.Vehicle) error
	// RemoveBlackoutDates pulls the given dates and bumps the version.
	RemoveBlackoutDates(ctx context.Context, id string, dates []string) error
}
