package memory

import (
	"context"
	"fmt"
	"sort"

	"dataroom/internal/domain"
	roomModels "dataroom/internal/domain/models/dataroom"
)

type dataRoomRepository struct {
	s *Store
}

func (r *dataRoomRepository) Create(ctx context.Context, room *roomModels.DataRoom) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[room.OwnerID]; !ok {
		return domain.NewNotFound("user", room.OwnerID)
	}
	if existing := r.s.roomByName(room.OwnerID, room.Name); existing != nil {
		return roomConflict(room.Name, existing.ID)
	}

	room.ID = newID()
	if room.CreatedAt.IsZero() {
		room.CreatedAt = now()
	}
	if room.UpdatedAt.IsZero() {
		room.UpdatedAt = room.CreatedAt
	}
	room.FolderCount = 0
	remember(ctx, r.s.rooms, room.ID)
	r.s.rooms[room.ID] = *room
	return nil
}

func (r *dataRoomRepository) GetByID(ctx context.Context, id, ownerID string) (*roomModels.DataRoom, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	room, ok := r.s.rooms[id]
	if !ok || room.OwnerID != ownerID {
		return nil, domain.NewNotFound("data room", id)
	}
	room.FolderCount = r.s.folderCount(id)
	return &room, nil
}

func (r *dataRoomRepository) GetByIDOnly(ctx context.Context, id string) (*roomModels.DataRoom, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	room, ok := r.s.rooms[id]
	if !ok {
		return nil, domain.NewNotFound("data room", id)
	}
	return &room, nil
}

func (r *dataRoomRepository) FindByName(ctx context.Context, ownerID, name string) (*roomModels.DataRoom, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	room := r.s.roomByName(ownerID, name)
	if room == nil {
		return nil, domain.NewNotFound("data room", name)
	}
	return room, nil
}

func (r *dataRoomRepository) List(ctx context.Context, ownerID string, offset, limit int) ([]roomModels.DataRoom, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var owned []roomModels.DataRoom
	for _, room := range r.s.rooms {
		if room.OwnerID == ownerID {
			room.FolderCount = r.s.folderCount(room.ID)
			owned = append(owned, room)
		}
	}

	sort.Slice(owned, func(i, j int) bool {
		if !owned[i].UpdatedAt.Equal(owned[j].UpdatedAt) {
			return owned[i].UpdatedAt.After(owned[j].UpdatedAt)
		}
		return owned[i].ID < owned[j].ID
	})

	return page(owned, offset, limit), len(owned), nil
}

func (r *dataRoomRepository) Update(ctx context.Context, room *roomModels.DataRoom) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.rooms[room.ID]
	if !ok || stored.OwnerID != room.OwnerID {
		return domain.NewNotFound("data room", room.ID)
	}
	if existing := r.s.roomByName(room.OwnerID, room.Name); existing != nil && existing.ID != room.ID {
		return roomConflict(room.Name, existing.ID)
	}

	stored.Name = room.Name
	stored.UpdatedAt = room.UpdatedAt
	remember(ctx, r.s.rooms, room.ID)
	r.s.rooms[room.ID] = stored
	return nil
}

func (r *dataRoomRepository) Delete(ctx context.Context, id, ownerID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	room, ok := r.s.rooms[id]
	if !ok || room.OwnerID != ownerID {
		return domain.NewNotFound("data room", id)
	}

	for folderID, folder := range r.s.folders {
		if folder.DataRoomID == id {
			remember(ctx, r.s.folders, folderID)
			delete(r.s.folders, folderID)
		}
	}
	for fileID, file := range r.s.files {
		if file.DataRoomID == id {
			remember(ctx, r.s.files, fileID)
			delete(r.s.files, fileID)
		}
	}
	remember(ctx, r.s.rooms, id)
	delete(r.s.rooms, id)
	return nil
}

// roomByName must be called with mu held
func (s *Store) roomByName(ownerID, name string) *roomModels.DataRoom {
	for _, room := range s.rooms {
		if room.OwnerID == ownerID && room.Name == name {
			r := room
			return &r
		}
	}
	return nil
}

// folderCount must be called with mu held
func (s *Store) folderCount(roomID string) int {
	count := 0
	for _, folder := range s.folders {
		if folder.DataRoomID == roomID {
			count++
		}
	}
	return count
}

func roomConflict(name, existingID string) error {
	return &domain.ConflictError{
		Message:      fmt.Sprintf("a data room named %q already exists", name),
		ResourceType: "data_room",
		ResourceID:   existingID,
	}
}

func page[T any](items []T, offset, limit int) []T {
	if offset < 0 || offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && limit < end-offset {
		end = offset + limit
	}
	return append([]T{}, items[offset:end]...)
}
