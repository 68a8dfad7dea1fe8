package dataroom

import (
	"context"

	"dataroom/internal/domain/models/dataroom"
)

// FileRepository defines data access operations for file metadata
type FileRepository interface {
	// Create inserts a file row and fills in its generated ID and timestamps.
	// Returns a ConflictError when the folder already holds a file with the name.
	Create(ctx context.Context, file *dataroom.File) error

	// GetByIDOnly retrieves a file by ID without ownership scoping
	GetByIDOnly(ctx context.Context, id string) (*dataroom.File, error)

	// GetForShare retrieves a file like GetByIDOnly and, inside a transaction,
	// holds a shared lock on the row until commit so it cannot be deleted meanwhile
	GetForShare(ctx context.Context, id string) (*dataroom.File, error)

	// LockStoragePath locks every row referencing a storage object until the
	// surrounding transaction commits. Blocks duplications of those rows.
	LockStoragePath(ctx context.Context, storagePath string) error

	// FindByName looks up a file in a folder by exact (case-sensitive) name
	FindByName(ctx context.Context, folderID, name string) (*dataroom.File, error)

	// Update updates a file's name and updated_at timestamp
	Update(ctx context.Context, file *dataroom.File) error

	// Delete removes a file row. The storage object is not touched.
	Delete(ctx context.Context, id string) error

	// ListByFolder lists the files directly inside a folder, ordered by name (case-insensitive)
	ListByFolder(ctx context.Context, folderID string) ([]dataroom.File, error)

	// Query returns one page of files matching the filters, ordered by name,
	// plus the total number of matches.
	Query(ctx context.Context, query *dataroom.FileQuery) ([]dataroom.File, int, error)

	// GetAllByDataRoom retrieves all files in a data room (flat list)
	GetAllByDataRoom(ctx context.Context, dataRoomID string) ([]dataroom.File, error)

	// StoragePathsUnderFolder returns the storage paths of every file in the
	// folder's subtree, the folder itself included.
	StoragePathsUnderFolder(ctx context.Context, folderID string) ([]string, error)

	// StoragePathsByDataRoom returns the storage paths of every file in a room
	StoragePathsByDataRoom(ctx context.Context, dataRoomID string) ([]string, error)

	// CountByStoragePath counts file rows referencing a storage object
	CountByStoragePath(ctx context.Context, storagePath string) (int, error)
}
