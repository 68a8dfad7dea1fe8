package dataroom

import (
	"context"

	"dataroom/internal/domain/models/dataroom"
)

// FolderService handles folder business logic
type FolderService interface {
	// CreateFolder creates a folder at the root of a room or under a parent in the same room
	CreateFolder(ctx context.Context, req *CreateFolderRequest) (*dataroom.Folder, error)

	// GetFolder retrieves a folder with its counts
	GetFolder(ctx context.Context, userID, folderID string) (*dataroom.Folder, error)

	// RenameFolder renames a folder; renaming to the current name is a no-op
	RenameFolder(ctx context.Context, userID, folderID string, req *RenameRequest) (*dataroom.Folder, error)

	// DeleteFolder deletes a folder and its whole subtree
	DeleteFolder(ctx context.Context, userID, folderID string) error

	// ListContents lists the immediate child folders and files of a folder
	ListContents(ctx context.Context, userID, folderID string, opts dataroom.ListOptions) (*dataroom.FolderContents, error)

	// DuplicateFolder copies a folder and its subtree next to the original as "<name> (Copy)"
	DuplicateFolder(ctx context.Context, userID, folderID string) (*dataroom.Folder, error)
}

// CreateFolderRequest represents a folder creation request
type CreateFolderRequest struct {
	UserID     string  `json:"-"`
	Name       string  `json:"name"`
	DataRoomID string  `json:"data_room_id"`
	ParentID   *string `json:"parent_id,omitempty"` // null for a root folder
}
