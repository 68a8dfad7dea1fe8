package auth

import (
	"context"
	"errors"
	"log/slog"

	"dataroom/internal/config"
	"dataroom/internal/domain"
	roomModels "dataroom/internal/domain/models/dataroom"
	roomRepo "dataroom/internal/domain/repositories/dataroom"
	"dataroom/internal/domain/services"
)

// OwnerBasedAuthorizer implements ResourceAuthorizer using ownership checks.
// A user can access a resource if they own the data room its folder chain
// terminates at. There is no sharing model.
type OwnerBasedAuthorizer struct {
	roomRepo   roomRepo.DataRoomRepository
	folderRepo roomRepo.FolderRepository
	fileRepo   roomRepo.FileRepository
	maxDepth   int
	logger     *slog.Logger
}

// NewOwnerBasedAuthorizer creates a new ownership-based authorizer
func NewOwnerBasedAuthorizer(
	roomRepo roomRepo.DataRoomRepository,
	folderRepo roomRepo.FolderRepository,
	fileRepo roomRepo.FileRepository,
	logger *slog.Logger,
) *OwnerBasedAuthorizer {
	return &OwnerBasedAuthorizer{
		roomRepo:   roomRepo,
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
		maxDepth:   config.MaxFolderDepth,
		logger:     logger,
	}
}

// Authorize reports whether userID owns the entity
func (a *OwnerBasedAuthorizer) Authorize(ctx context.Context, userID, entityID string, kind services.EntityKind) bool {
	var err error
	switch kind {
	case services.EntityDataRoom:
		err = a.CanAccessDataRoom(ctx, userID, entityID)
	case services.EntityFolder:
		err = a.CanAccessFolder(ctx, userID, entityID)
	case services.EntityFile:
		err = a.CanAccessFile(ctx, userID, entityID)
	default:
		return false
	}
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		a.logger.Warn("authorization check failed", "kind", kind, "entity_id", entityID, "error", err)
	}
	return err == nil
}

// CanAccessDataRoom checks if user owns the data room
func (a *OwnerBasedAuthorizer) CanAccessDataRoom(ctx context.Context, userID, dataRoomID string) error {
	// GetByID filters by owner; someone else's room is indistinguishable from a missing one
	_, err := a.roomRepo.GetByID(ctx, dataRoomID, userID)
	return err
}

// CanAccessFolder checks if user owns the data room at the top of the folder's chain
func (a *OwnerBasedAuthorizer) CanAccessFolder(ctx context.Context, userID, folderID string) error {
	folder, err := a.folderRepo.GetByIDOnly(ctx, folderID)
	if err != nil {
		return err
	}
	return a.checkFolder(ctx, userID, folder)
}

// CanAccessFile checks if user can access the file's folder
func (a *OwnerBasedAuthorizer) CanAccessFile(ctx context.Context, userID, fileID string) error {
	file, err := a.fileRepo.GetByIDOnly(ctx, fileID)
	if err != nil {
		return err
	}

	folder, err := a.folderRepo.GetByIDOnly(ctx, file.FolderID)
	if err != nil {
		return hide(err, "file", fileID)
	}
	if folder.DataRoomID != file.DataRoomID {
		return domain.NewNotFound("file", fileID)
	}
	return hide(a.checkFolder(ctx, userID, folder), "file", fileID)
}

func (a *OwnerBasedAuthorizer) checkFolder(ctx context.Context, userID string, folder *roomModels.Folder) error {
	if err := a.walkToRoot(ctx, folder); err != nil {
		return hide(err, "folder", folder.ID)
	}
	return hide(a.CanAccessDataRoom(ctx, userID, folder.DataRoomID), "folder", folder.ID)
}

// walkToRoot follows parent pointers until the root folder. Every ancestor
// must exist and sit in the same room. A revisited ID or a chain deeper
// than maxDepth means the store is corrupted.
func (a *OwnerBasedAuthorizer) walkToRoot(ctx context.Context, folder *roomModels.Folder) error {
	visited := map[string]bool{folder.ID: true}
	current := folder
	for depth := 0; current.ParentID != nil; depth++ {
		parentID := *current.ParentID
		if visited[parentID] || depth >= a.maxDepth {
			a.logger.Error("folder chain is corrupted", "folder_id", folder.ID, "at", parentID, "depth", depth)
			return domain.ErrHierarchyCycle
		}
		visited[parentID] = true

		parent, err := a.folderRepo.GetByIDOnly(ctx, parentID)
		if err != nil {
			return err
		}
		if parent.DataRoomID != folder.DataRoomID {
			a.logger.Error("folder chain crosses data rooms", "folder_id", folder.ID, "parent_id", parentID)
			return domain.ErrHierarchyCycle
		}
		current = parent
	}
	return nil
}

// hide reports every denial as the requested entity not being found.
// Store failures pass through unchanged.
func hide(err error, resourceType, id string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrHierarchyCycle) {
		return domain.NewNotFound(resourceType, id)
	}
	return err
}

var _ services.ResourceAuthorizer = (*OwnerBasedAuthorizer)(nil)
