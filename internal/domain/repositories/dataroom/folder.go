package dataroom

import (
	"context"

	"dataroom/internal/domain/models/dataroom"
)

// FolderRepository defines data access operations for folders
type FolderRepository interface {
	// Create creates a folder and fills in its generated ID and timestamps.
	// Returns a ConflictError when a sibling already has the name.
	Create(ctx context.Context, folder *dataroom.Folder) error

	// GetByIDOnly retrieves a folder by ID without ownership scoping
	GetByIDOnly(ctx context.Context, id string) (*dataroom.Folder, error)

	// GetWithCounts retrieves a folder with its child and file counts
	GetWithCounts(ctx context.Context, id string) (*dataroom.Folder, error)

	// FindByName looks up a sibling by exact name. A nil parentID means root level.
	FindByName(ctx context.Context, dataRoomID string, parentID *string, name string) (*dataroom.Folder, error)

	// Update updates a folder's name and updated_at timestamp
	Update(ctx context.Context, folder *dataroom.Folder) error

	// Delete removes a folder; descendant folders and files cascade
	Delete(ctx context.Context, id string) error

	// ListChildren lists immediate child folders with counts, ordered by name (case-insensitive).
	// A nil parentID lists the root folders of the room.
	ListChildren(ctx context.Context, dataRoomID string, parentID *string) ([]dataroom.Folder, error)

	// GetAllByDataRoom retrieves all folders in a data room (flat list)
	GetAllByDataRoom(ctx context.Context, dataRoomID string) ([]dataroom.Folder, error)
}
