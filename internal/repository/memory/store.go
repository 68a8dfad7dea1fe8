// Package memory is an in-process entity store with the same uniqueness,
// cascade and same-room rules as the SQL schema. It backs the development
// server when no database is configured and the service tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"dataroom/internal/domain/models"
	roomModels "dataroom/internal/domain/models/dataroom"
	"dataroom/internal/domain/repositories"
	roomRepo "dataroom/internal/domain/repositories/dataroom"

	"github.com/google/uuid"
)

// Store holds all entities behind one lock
type Store struct {
	mu      sync.RWMutex
	txMu    sync.Mutex
	users   map[string]models.User
	rooms   map[string]roomModels.DataRoom
	folders map[string]roomModels.Folder
	files   map[string]roomModels.File
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		users:   make(map[string]models.User),
		rooms:   make(map[string]roomModels.DataRoom),
		folders: make(map[string]roomModels.Folder),
		files:   make(map[string]roomModels.File),
	}
}

// Users returns the user repository view of the store
func (s *Store) Users() repositories.UserRepository { return &userRepository{s: s} }

// DataRooms returns the data room repository view of the store
func (s *Store) DataRooms() roomRepo.DataRoomRepository { return &dataRoomRepository{s: s} }

// Folders returns the folder repository view of the store
func (s *Store) Folders() roomRepo.FolderRepository { return &folderRepository{s: s} }

// Files returns the file repository view of the store
func (s *Store) Files() roomRepo.FileRepository { return &fileRepository{s: s} }

// TransactionManager returns a transaction manager that undoes the
// transaction's writes when the function fails
func (s *Store) TransactionManager() repositories.TransactionManager { return &txManager{s: s} }

// PutFolder inserts a folder row as-is, bypassing every check.
// Tests use it to build corrupted hierarchies.
func (s *Store) PutFolder(folder roomModels.Folder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.folders[folder.ID] = folder
}

// Counts returns the number of rooms, folders and files stored
func (s *Store) Counts() (rooms, folders, files int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms), len(s.folders), len(s.files)
}

type txKey struct{}

// txJournal records how to undo each write made inside a transaction
type txJournal struct {
	undo []func()
}

// remember records the current state of m[id] so a rolled back transaction
// can put it back. Must be called with mu held, before m[id] changes.
// Writes outside a transaction are not recorded.
func remember[V any](ctx context.Context, m map[string]V, id string) {
	j, ok := ctx.Value(txKey{}).(*txJournal)
	if !ok {
		return
	}
	prev, existed := m[id]
	j.undo = append(j.undo, func() {
		if existed {
			m[id] = prev
		} else {
			delete(m, id)
		}
	})
}

type txManager struct {
	s *Store
}

// ExecTx serializes transactions and undoes the transaction's own writes on
// error. Writes made concurrently outside the transaction are kept.
// Nested calls join the outer transaction.
func (m *txManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	m.s.txMu.Lock()
	defer m.s.txMu.Unlock()

	journal := &txJournal{}
	if err := fn(context.WithValue(ctx, txKey{}, journal)); err != nil {
		m.s.rollback(journal)
		return err
	}
	return nil
}

func (s *Store) rollback(j *txJournal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(j.undo) - 1; i >= 0; i-- {
		j.undo[i]()
	}
}

func newID() string {
	return uuid.NewString()
}

func now() time.Time {
	return time.Now().UTC()
}

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// byName orders case-insensitively, falling back to exact name then ID for stability
func byName(aName, bName, aID, bID string) bool {
	la, lb := strings.ToLower(aName), strings.ToLower(bName)
	if la != lb {
		return la < lb
	}
	if aName != bName {
		return aName < bName
	}
	return aID < bID
}

func sortFolders(folders []roomModels.Folder) {
	sort.Slice(folders, func(i, j int) bool {
		return byName(folders[i].Name, folders[j].Name, folders[i].ID, folders[j].ID)
	})
}

func sortFiles(files []roomModels.File) {
	sort.Slice(files, func(i, j int) bool {
		return byName(files[i].Name, files[j].Name, files[i].ID, files[j].ID)
	})
}
