package services

import "context"

// EntityKind names the kind of resource an authorization check targets
type EntityKind string

const (
	EntityDataRoom EntityKind = "data_room"
	EntityFolder   EntityKind = "folder"
	EntityFile     EntityKind = "file"
)

// ResourceAuthorizer checks if a user can access resources.
// Every check resolves the resource's ownership chain up to its data room.
//
// Checks fail closed: a missing entity, a broken or cyclic parent chain and
// a resource owned by someone else are all reported as domain.ErrNotFound so
// callers cannot probe for the existence of other users' data.
type ResourceAuthorizer interface {
	// Authorize reports whether userID owns the entity. Store failures count as denial.
	Authorize(ctx context.Context, userID, entityID string, kind EntityKind) bool

	// CanAccessDataRoom checks if user owns the data room
	CanAccessDataRoom(ctx context.Context, userID, dataRoomID string) error

	// CanAccessFolder checks if user owns the data room at the top of the folder's chain
	CanAccessFolder(ctx context.Context, userID, folderID string) error

	// CanAccessFile checks if user can access the file's folder
	CanAccessFile(ctx context.Context, userID, fileID string) error
}
