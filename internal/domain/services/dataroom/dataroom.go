package dataroom

import (
	"context"

	"dataroom/internal/domain/models/dataroom"
)

// DataRoomService handles data room business logic
type DataRoomService interface {
	// CreateDataRoom creates a room owned by the caller
	CreateDataRoom(ctx context.Context, req *CreateDataRoomRequest) (*dataroom.DataRoom, error)

	// GetDataRoom retrieves a room with its root folders
	GetDataRoom(ctx context.Context, userID, dataRoomID string) (*dataroom.DataRoomDetail, error)

	// ListDataRooms returns one page of the caller's rooms
	ListDataRooms(ctx context.Context, userID string, page dataroom.PageRequest) ([]dataroom.DataRoom, dataroom.Pagination, error)

	// RenameDataRoom renames a room; renaming to the current name is a no-op
	RenameDataRoom(ctx context.Context, userID, dataRoomID string, req *RenameRequest) (*dataroom.DataRoom, error)

	// DeleteDataRoom deletes a room with all of its folders and files
	DeleteDataRoom(ctx context.Context, userID, dataRoomID string) error
}

// CreateDataRoomRequest represents a data room creation request
type CreateDataRoomRequest struct {
	UserID string `json:"-"`
	Name   string `json:"name"`
}

// RenameRequest renames a data room, folder or file
type RenameRequest struct {
	Name string `json:"name"`
}
