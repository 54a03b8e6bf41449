package driverRepo

import (
	"context"

	"wheelhouse/models"
)

// DriverRepository mirrors the vehicle blackout contract for assigned drivers.
type DriverRepository interface {
	GetByID(ctx context.Context, id string) (*models.Driver, error)
	Update(ctx context.Context, driver *models.Driver) error
	RemoveBlackoutDates(ctx context.Context, id string, dates []string) error
}
