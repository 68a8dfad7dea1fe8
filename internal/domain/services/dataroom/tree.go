package dataroom

import (
	"context"

	"dataroom/internal/domain/models/dataroom"
)

// TreeService builds breadcrumbs and folder trees
type TreeService interface {
	// BuildBreadcrumb returns the path from the room root down to and including the folder.
	// Fails with domain.ErrHierarchyCycle on a cyclic or overly deep parent chain.
	BuildBreadcrumb(ctx context.Context, folderID string) ([]dataroom.BreadcrumbItem, error)

	// GetFolderPath returns the folder, its room and its breadcrumb
	GetFolderPath(ctx context.Context, userID, folderID string) (*dataroom.FolderPath, error)

	// GetDataRoomTree builds the nested folder/file tree of a room
	GetDataRoomTree(ctx context.Context, userID, dataRoomID string) (*dataroom.TreeNode, error)
}
