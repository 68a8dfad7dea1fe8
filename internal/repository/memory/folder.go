package memory

import (
	"context"
	"fmt"

	"dataroom/internal/domain"
	roomModels "dataroom/internal/domain/models/dataroom"
)

type folderRepository struct {
	s *Store
}

func (r *folderRepository) Create(ctx context.Context, folder *roomModels.Folder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.rooms[folder.DataRoomID]; !ok {
		return domain.NewNotFound("data room", folder.DataRoomID)
	}
	if folder.ParentID != nil {
		parent, ok := r.s.folders[*folder.ParentID]
		if !ok || parent.DataRoomID != folder.DataRoomID {
			return domain.NewNotFound("folder", *folder.ParentID)
		}
	}
	if existing := r.s.folderByName(folder.DataRoomID, folder.ParentID, folder.Name); existing != nil {
		return folderConflict(folder.Name, existing.ID)
	}

	folder.ID = newID()
	if folder.CreatedAt.IsZero() {
		folder.CreatedAt = now()
	}
	if folder.UpdatedAt.IsZero() {
		folder.UpdatedAt = folder.CreatedAt
	}
	folder.ChildCount = 0
	folder.FileCount = 0

	stored := *folder
	stored.ParentID = copyString(folder.ParentID)
	remember(ctx, r.s.folders, folder.ID)
	r.s.folders[folder.ID] = stored
	return nil
}

func (r *folderRepository) GetByIDOnly(ctx context.Context, id string) (*roomModels.Folder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	folder, ok := r.s.folders[id]
	if !ok {
		return nil, domain.NewNotFound("folder", id)
	}
	folder.ParentID = copyString(folder.ParentID)
	return &folder, nil
}

func (r *folderRepository) GetWithCounts(ctx context.Context, id string) (*roomModels.Folder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	folder, ok := r.s.folders[id]
	if !ok {
		return nil, domain.NewNotFound("folder", id)
	}
	withCounts := r.s.withCounts(folder)
	return &withCounts, nil
}

func (r *folderRepository) FindByName(ctx context.Context, dataRoomID string, parentID *string, name string) (*roomModels.Folder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	folder := r.s.folderByName(dataRoomID, parentID, name)
	if folder == nil {
		return nil, domain.NewNotFound("folder", name)
	}
	withCounts := r.s.withCounts(*folder)
	return &withCounts, nil
}

func (r *folderRepository) Update(ctx context.Context, folder *roomModels.Folder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.folders[folder.ID]
	if !ok {
		return domain.NewNotFound("folder", folder.ID)
	}
	if existing := r.s.folderByName(stored.DataRoomID, stored.ParentID, folder.Name); existing != nil && existing.ID != folder.ID {
		return folderConflict(folder.Name, existing.ID)
	}

	stored.Name = folder.Name
	stored.UpdatedAt = folder.UpdatedAt
	remember(ctx, r.s.folders, folder.ID)
	r.s.folders[folder.ID] = stored
	return nil
}

func (r *folderRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.folders[id]; !ok {
		return domain.NewNotFound("folder", id)
	}

	subtree := r.s.subtree(id)
	for folderID := range subtree {
		remember(ctx, r.s.folders, folderID)
		delete(r.s.folders, folderID)
	}
	for fileID, file := range r.s.files {
		if subtree[file.FolderID] {
			remember(ctx, r.s.files, fileID)
			delete(r.s.files, fileID)
		}
	}
	return nil
}

func (r *folderRepository) ListChildren(ctx context.Context, dataRoomID string, parentID *string) ([]roomModels.Folder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	children := []roomModels.Folder{}
	for _, folder := range r.s.folders {
		if folder.DataRoomID == dataRoomID && sameParent(folder.ParentID, parentID) {
			children = append(children, r.s.withCounts(folder))
		}
	}
	sortFolders(children)
	return children, nil
}

func (r *folderRepository) GetAllByDataRoom(ctx context.Context, dataRoomID string) ([]roomModels.Folder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	folders := []roomModels.Folder{}
	for _, folder := range r.s.folders {
		if folder.DataRoomID == dataRoomID {
			folders = append(folders, r.s.withCounts(folder))
		}
	}
	sortFolders(folders)
	return folders, nil
}

// folderByName must be called with mu held
func (s *Store) folderByName(dataRoomID string, parentID *string, name string) *roomModels.Folder {
	for _, folder := range s.folders {
		if folder.DataRoomID == dataRoomID && sameParent(folder.ParentID, parentID) && folder.Name == name {
			f := folder
			return &f
		}
	}
	return nil
}

// withCounts must be called with mu held
func (s *Store) withCounts(folder roomModels.Folder) roomModels.Folder {
	folder.ParentID = copyString(folder.ParentID)
	folder.ChildCount = 0
	folder.FileCount = 0
	for _, child := range s.folders {
		if child.ParentID != nil && *child.ParentID == folder.ID {
			folder.ChildCount++
		}
	}
	for _, file := range s.files {
		if file.FolderID == folder.ID {
			folder.FileCount++
		}
	}
	return folder
}

// subtree returns the folder and all of its descendants. The visited set keeps
// a corrupted cyclic chain from looping. Must be called with mu held.
func (s *Store) subtree(rootID string) map[string]bool {
	visited := map[string]bool{rootID: true}
	queue := []string{rootID}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for id, folder := range s.folders {
			if folder.ParentID != nil && *folder.ParentID == current && !visited[id] {
				visited[id] = true
				queue = append(queue, id)
			}
		}
	}
	return visited
}

func folderConflict(name, existingID string) error {
	return &domain.ConflictError{
		Message:      fmt.Sprintf("a folder named %q already exists in this location", name),
		ResourceType: "folder",
		ResourceID:   existingID,
	}
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
