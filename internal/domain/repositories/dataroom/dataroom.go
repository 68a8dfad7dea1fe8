package dataroom

import (
	"context"

	"dataroom/internal/domain/models/dataroom"
)

// DataRoomRepository defines data access operations for data rooms
type DataRoomRepository interface {
	// Create creates a data room and fills in its generated ID and timestamps.
	// Returns a ConflictError if the owner already has a room with that name.
	Create(ctx context.Context, room *dataroom.DataRoom) error

	// GetByID retrieves a data room owned by ownerID.
	// Rooms owned by someone else are reported as not found.
	GetByID(ctx context.Context, id, ownerID string) (*dataroom.DataRoom, error)

	// GetByIDOnly retrieves a data room without ownership scoping (for authorization)
	GetByIDOnly(ctx context.Context, id string) (*dataroom.DataRoom, error)

	// FindByName looks up an owner's room by exact name
	FindByName(ctx context.Context, ownerID, name string) (*dataroom.DataRoom, error)

	// List returns one page of the owner's rooms ordered by updated_at DESC,
	// each with its folder count, plus the total number of rooms.
	List(ctx context.Context, ownerID string, offset, limit int) ([]dataroom.DataRoom, int, error)

	// Update updates a room's name and updated_at timestamp
	Update(ctx context.Context, room *dataroom.DataRoom) error

	// Delete removes a room; folders and files cascade
	Delete(ctx context.Context, id, ownerID string) error
}
