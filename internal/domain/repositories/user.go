package repositories

import (
	"context"

	"dataroom/internal/domain/models"
)

// UserRepository defines data access operations for users
type UserRepository interface {
	// Create inserts a user. An empty ID is generated by the store.
	// Returns a ConflictError if the email is already registered.
	Create(ctx context.Context, user *models.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*models.User, error)

	// GetByEmail retrieves a user by email (case-insensitive)
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// Ensure inserts the user with its given ID unless a row with that ID exists.
	// Used for provider-issued identities whose subject is the user ID.
	Ensure(ctx context.Context, user *models.User) error
}
