package dataroom

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"dataroom/internal/config"
	"dataroom/internal/domain/models"
	roomModels "dataroom/internal/domain/models/dataroom"
	roomSvc "dataroom/internal/domain/services/dataroom"
	"dataroom/internal/repository/memory"
	authSvc "dataroom/internal/service/auth"
	"dataroom/internal/storage"
)

type testEnv struct {
	store   *memory.Store
	objects *storage.MemoryStore
	rooms   roomSvc.DataRoomService
	folders roomSvc.FolderService
	files   roomSvc.FileService
	uploads roomSvc.UploadService
	tree    roomSvc.TreeService
	userA   string
	userB   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := memory.NewStore()
	objects := storage.NewMemoryStore("http://files.test")

	authz := authSvc.NewOwnerBasedAuthorizer(s.DataRooms(), s.Folders(), s.Files(), logger)
	policy := config.UploadPolicy{AllowedTypes: []string{"application/pdf"}, MaxBytes: 1024}

	env := &testEnv{
		store:   s,
		objects: objects,
		rooms:   NewDataRoomService(s.DataRooms(), s.Folders(), s.Files(), objects, s.TransactionManager(), logger),
		folders: NewFolderService(s.Folders(), s.Files(), objects, s.TransactionManager(), authz, logger),
		files:   NewFileService(s.Folders(), s.Files(), objects, s.TransactionManager(), authz, logger),
		uploads: NewUploadService(s.Folders(), s.Files(), objects, authz, policy, logger),
		tree:    NewTreeService(s.DataRooms(), s.Folders(), s.Files(), authz, logger),
	}

	ctx := context.Background()
	for _, u := range []struct {
		email string
		id    *string
	}{{"a@example.com", &env.userA}, {"b@example.com", &env.userB}} {
		user := &models.User{Email: u.email}
		if err := s.Users().Create(ctx, user); err != nil {
			t.Fatalf("create user: %v", err)
		}
		*u.id = user.ID
	}
	return env
}

func (e *testEnv) room(t *testing.T, userID, name string) *roomModels.DataRoom {
	t.Helper()
	room, err := e.rooms.CreateDataRoom(context.Background(), &roomSvc.CreateDataRoomRequest{UserID: userID, Name: name})
	if err != nil {
		t.Fatalf("create room %q: %v", name, err)
	}
	return room
}

func (e *testEnv) folder(t *testing.T, userID, roomID string, parentID *string, name string) *roomModels.Folder {
	t.Helper()
	folder, err := e.folders.CreateFolder(context.Background(), &roomSvc.CreateFolderRequest{
		UserID:     userID,
		DataRoomID: roomID,
		ParentID:   parentID,
		Name:       name,
	})
	if err != nil {
		t.Fatalf("create folder %q: %v", name, err)
	}
	return folder
}

func (e *testEnv) upload(t *testing.T, userID, folderID, name, body string) *roomModels.File {
	t.Helper()
	file, err := e.uploads.Upload(context.Background(), &roomSvc.UploadRequest{
		UserID:      userID,
		FolderID:    folderID,
		Name:        name,
		ContentType: "application/pdf",
		Size:        int64(len(body)),
		Body:        strings.NewReader(body),
	})
	if err != nil {
		t.Fatalf("upload %q: %v", name, err)
	}
	return file
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func authorizerOf(e *testEnv) *authSvc.OwnerBasedAuthorizer {
	return authSvc.NewOwnerBasedAuthorizer(e.store.DataRooms(), e.store.Folders(), e.store.Files(), discardLogger())
}

func uploadPolicyOf(e *testEnv) config.UploadPolicy {
	return config.UploadPolicy{AllowedTypes: []string{"application/pdf"}, MaxBytes: 1024}
}
