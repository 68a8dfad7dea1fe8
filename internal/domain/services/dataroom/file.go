package dataroom

import (
	"context"
	"io"
	"time"

	"dataroom/internal/domain/models/dataroom"
)

// FileService handles file metadata business logic
type FileService interface {
	// GetFile retrieves a file with its storage URL
	GetFile(ctx context.Context, userID, fileID string) (*dataroom.File, error)

	// RenameFile renames a file; renaming to the current name is a no-op
	RenameFile(ctx context.Context, userID, fileID string, req *RenameRequest) (*dataroom.File, error)

	// DeleteFile deletes a file row and releases its storage object when unreferenced
	DeleteFile(ctx context.Context, userID, fileID string) error

	// DuplicateFile creates "<name> (Copy)" in the same folder sharing the storage object
	DuplicateFile(ctx context.Context, userID, fileID string) (*dataroom.File, error)

	// ListFiles lists files of one folder or one data room
	ListFiles(ctx context.Context, userID string, req *ListFilesRequest) ([]dataroom.File, dataroom.Pagination, error)

	// SearchFiles searches file names across the caller's rooms
	SearchFiles(ctx context.Context, userID string, req *SearchFilesRequest) ([]dataroom.File, dataroom.Pagination, error)
}

// FileFilters are the optional filters shared by listing and search
type FileFilters struct {
	MimeType string
	DateFrom *time.Time
	DateTo   *time.Time
	SizeMin  *int64
	SizeMax  *int64
}

// ListFilesRequest lists files in exactly one scope
type ListFilesRequest struct {
	FolderID   string
	DataRoomID string
	Filters    FileFilters
	Page       dataroom.PageRequest
}

// SearchFilesRequest searches by name with optional scope filters
type SearchFilesRequest struct {
	Query      string
	DataRoomID string
	FolderID   string
	Filters    FileFilters
	Page       dataroom.PageRequest
}

// UploadService stores file bytes and records their metadata
type UploadService interface {
	// Upload validates, stores and records a file in the target folder
	Upload(ctx context.Context, req *UploadRequest) (*dataroom.File, error)
}

// UploadRequest carries one uploaded file
type UploadRequest struct {
	UserID      string
	FolderID    string
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}
