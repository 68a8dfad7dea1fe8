package memory

import (
	"context"
	"fmt"
	"strings"

	"dataroom/internal/domain"
	roomModels "dataroom/internal/domain/models/dataroom"
)

type fileRepository struct {
	s *Store
}

func (r *fileRepository) Create(ctx context.Context, file *roomModels.File) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	folder, ok := r.s.folders[file.FolderID]
	if !ok || folder.DataRoomID != file.DataRoomID {
		return domain.NewNotFound("folder", file.FolderID)
	}
	if existing := r.s.fileByName(file.FolderID, file.Name); existing != nil {
		return fileConflict(file.Name, existing.ID)
	}

	file.ID = newID()
	if file.CreatedAt.IsZero() {
		file.CreatedAt = now()
	}
	if file.UpdatedAt.IsZero() {
		file.UpdatedAt = file.CreatedAt
	}
	remember(ctx, r.s.files, file.ID)
	r.s.files[file.ID] = *file
	return nil
}

func (r *fileRepository) GetByIDOnly(ctx context.Context, id string) (*roomModels.File, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	file, ok := r.s.files[id]
	if !ok {
		return nil, domain.NewNotFound("file", id)
	}
	return &file, nil
}

// GetForShare needs no row lock: ExecTx already serializes transactions
func (r *fileRepository) GetForShare(ctx context.Context, id string) (*roomModels.File, error) {
	return r.GetByIDOnly(ctx, id)
}

func (r *fileRepository) LockStoragePath(ctx context.Context, storagePath string) error {
	return nil
}

func (r *fileRepository) FindByName(ctx context.Context, folderID, name string) (*roomModels.File, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	file := r.s.fileByName(folderID, name)
	if file == nil {
		return nil, domain.NewNotFound("file", name)
	}
	return file, nil
}

func (r *fileRepository) Update(ctx context.Context, file *roomModels.File) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.files[file.ID]
	if !ok {
		return domain.NewNotFound("file", file.ID)
	}
	if existing := r.s.fileByName(stored.FolderID, file.Name); existing != nil && existing.ID != file.ID {
		return fileConflict(file.Name, existing.ID)
	}

	stored.Name = file.Name
	stored.UpdatedAt = file.UpdatedAt
	remember(ctx, r.s.files, file.ID)
	r.s.files[file.ID] = stored
	return nil
}

func (r *fileRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.files[id]; !ok {
		return domain.NewNotFound("file", id)
	}
	remember(ctx, r.s.files, id)
	delete(r.s.files, id)
	return nil
}

func (r *fileRepository) ListByFolder(ctx context.Context, folderID string) ([]roomModels.File, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	files := []roomModels.File{}
	for _, file := range r.s.files {
		if file.FolderID == folderID {
			files = append(files, file)
		}
	}
	sortFiles(files)
	return files, nil
}

func (r *fileRepository) Query(ctx context.Context, q *roomModels.FileQuery) ([]roomModels.File, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	needle := strings.ToLower(q.Query)
	var matches []roomModels.File
	for _, file := range r.s.files {
		room, ok := r.s.rooms[file.DataRoomID]
		if !ok || room.OwnerID != q.OwnerID {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(file.Name), needle) {
			continue
		}
		if q.DataRoomID != "" && file.DataRoomID != q.DataRoomID {
			continue
		}
		if q.FolderID != "" && file.FolderID != q.FolderID {
			continue
		}
		if q.MimeType != "" && file.MimeType != q.MimeType {
			continue
		}
		if q.DateFrom != nil && file.CreatedAt.Before(*q.DateFrom) {
			continue
		}
		if q.DateTo != nil && file.CreatedAt.After(*q.DateTo) {
			continue
		}
		if q.SizeMin != nil && file.Size < *q.SizeMin {
			continue
		}
		if q.SizeMax != nil && file.Size > *q.SizeMax {
			continue
		}
		matches = append(matches, file)
	}

	sortFiles(matches)
	return page(matches, q.Offset, q.Limit), len(matches), nil
}

func (r *fileRepository) GetAllByDataRoom(ctx context.Context, dataRoomID string) ([]roomModels.File, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	files := []roomModels.File{}
	for _, file := range r.s.files {
		if file.DataRoomID == dataRoomID {
			files = append(files, file)
		}
	}
	sortFiles(files)
	return files, nil
}

func (r *fileRepository) StoragePathsUnderFolder(ctx context.Context, folderID string) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if _, ok := r.s.folders[folderID]; !ok {
		return []string{}, nil
	}
	subtree := r.s.subtree(folderID)
	return r.s.distinctPaths(func(file roomModels.File) bool { return subtree[file.FolderID] }), nil
}

func (r *fileRepository) StoragePathsByDataRoom(ctx context.Context, dataRoomID string) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.s.distinctPaths(func(file roomModels.File) bool { return file.DataRoomID == dataRoomID }), nil
}

func (r *fileRepository) CountByStoragePath(ctx context.Context, storagePath string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	count := 0
	for _, file := range r.s.files {
		if file.StoragePath == storagePath {
			count++
		}
	}
	return count, nil
}

// distinctPaths must be called with mu held
func (s *Store) distinctPaths(match func(roomModels.File) bool) []string {
	seen := map[string]bool{}
	paths := []string{}
	for _, file := range s.files {
		if match(file) && !seen[file.StoragePath] {
			seen[file.StoragePath] = true
			paths = append(paths, file.StoragePath)
		}
	}
	return paths
}

// fileByName must be called with mu held
func (s *Store) fileByName(folderID, name string) *roomModels.File {
	for _, file := range s.files {
		if file.FolderID == folderID && file.Name == name {
			f := file
			return &f
		}
	}
	return nil
}

func fileConflict(name, existingID string) error {
	return &domain.ConflictError{
		Message:      fmt.Sprintf("a file named %q already exists in this folder", name),
		ResourceType: "file",
		ResourceID:   existingID,
	}
}
