package userRepo

import (
	"context"

	"wheelhouse/models"
)

// UserRepository defines the user lookups the booking core needs.
type UserRepository interface {
	// GetByID retrieves a user by its unique ID.
	GetByID(ctx context.Context, id string) (*models.User, error)
}
