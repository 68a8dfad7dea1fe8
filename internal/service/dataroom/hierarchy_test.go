package dataroom

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"dataroom/internal/domain"
	roomModels "dataroom/internal/domain/models/dataroom"
	roomSvc "dataroom/internal/domain/services/dataroom"
)

func TestRoomFolderFileWalkthrough(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	room := env.room(t, env.userA, "Room1")
	docs := env.folder(t, env.userA, room.ID, nil, "Docs")
	year := env.folder(t, env.userA, room.ID, &docs.ID, "2024")
	report := env.upload(t, env.userA, year.ID, "report.pdf", "0123456789")

	if report.Size != 10 || report.MimeType != "application/pdf" {
		t.Errorf("uploaded file = %+v", report)
	}

	crumbs, err := env.tree.BuildBreadcrumb(ctx, year.ID)
	if err != nil {
		t.Fatalf("BuildBreadcrumb: %v", err)
	}
	if len(crumbs) != 2 || crumbs[0].Name != "Docs" || crumbs[1].Name != "2024" {
		t.Errorf("breadcrumb = %+v, want [Docs 2024]", crumbs)
	}

	path, err := env.tree.GetFolderPath(ctx, env.userA, year.ID)
	if err != nil {
		t.Fatalf("GetFolderPath: %v", err)
	}
	if path.Folder == nil || path.Folder.ID != year.ID {
		t.Fatalf("folder path folder = %+v, want %s", path.Folder, year.ID)
	}
	if path.DataRoom.Name != "Room1" || path.Folder.FileCount != 1 {
		t.Errorf("folder path = %+v", path)
	}

	got, err := env.files.GetFile(ctx, env.userA, report.ID)
	if err != nil {
		t.Fatalf("GetFile: %v", err)
	}
	if !strings.HasPrefix(got.URL, "http://files.test/") {
		t.Errorf("file url = %q", got.URL)
	}

	// user B sees none of it
	notFound := map[string]error{}
	_, notFound["room"] = env.rooms.GetDataRoom(ctx, env.userB, room.ID)
	_, notFound["docs"] = env.folders.GetFolder(ctx, env.userB, docs.ID)
	_, notFound["year"] = env.folders.GetFolder(ctx, env.userB, year.ID)
	_, notFound["file"] = env.files.GetFile(ctx, env.userB, report.ID)
	_, notFound["rename folder"] = env.folders.RenameFolder(ctx, env.userB, year.ID, &roomSvc.RenameRequest{Name: "x"})
	_, notFound["rename file"] = env.files.RenameFile(ctx, env.userB, report.ID, &roomSvc.RenameRequest{Name: "x.pdf"})
	notFound["delete folder"] = env.folders.DeleteFolder(ctx, env.userB, docs.ID)
	notFound["delete file"] = env.files.DeleteFile(ctx, env.userB, report.ID)
	notFound["delete room"] = env.rooms.DeleteDataRoom(ctx, env.userB, room.ID)
	_, notFound["breadcrumb"] = env.tree.GetFolderPath(ctx, env.userB, year.ID)
	_, notFound["tree"] = env.tree.GetDataRoomTree(ctx, env.userB, room.ID)
	for name, err := range notFound {
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("%s as user B: err = %v, want ErrNotFound", name, err)
		}
	}

	rooms, folders, files := env.store.Counts()
	if rooms != 1 || folders != 2 || files != 1 {
		t.Errorf("user B changed the store: %d/%d/%d", rooms, folders, files)
	}
}

func TestSiblingNameConflicts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	room1 := env.room(t, env.userA, "Room1")
	room2 := env.room(t, env.userA, "Room2")
	env.folder(t, env.userA, room1.ID, nil, "Docs")

	_, err := env.folders.CreateFolder(ctx, &roomSvc.CreateFolderRequest{UserID: env.userA, DataRoomID: room1.ID, Name: "Docs"})
	var conflict *domain.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("second Docs in Room1: err = %v, want ConflictError", err)
	}

	env.folder(t, env.userA, room2.ID, nil, "Docs")

	if _, err := env.rooms.CreateDataRoom(ctx, &roomSvc.CreateDataRoomRequest{UserID: env.userA, Name: " Room1 "}); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("duplicate room name: err = %v", err)
	}
	// names are per owner
	env.room(t, env.userB, "Room1")
}

func TestConcurrentSiblingCreate(t *testing.T) {
	env := newTestEnv(t)
	room := env.room(t, env.userA, "Room1")

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.folders.CreateFolder(context.Background(), &roomSvc.CreateFolderRequest{
				UserID:     env.userA,
				DataRoomID: room.ID,
				Name:       "Docs",
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, domain.ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successes != 1 || conflicts != workers-1 {
		t.Errorf("successes=%d conflicts=%d, want 1 and %d", successes, conflicts, workers-1)
	}
}

func TestCreateFolderValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	room := env.room(t, env.userA, "Room1")
	other := env.room(t, env.userA, "Room2")
	foreignParent := env.folder(t, env.userA, other.ID, nil, "Elsewhere")

	tests := []struct {
		name string
		req  roomSvc.CreateFolderRequest
		want error
	}{
		{name: "blank name", req: roomSvc.CreateFolderRequest{DataRoomID: room.ID, Name: "   "}, want: domain.ErrValidation},
		{name: "slash in name", req: roomSvc.CreateFolderRequest{DataRoomID: room.ID, Name: "a/b"}, want: domain.ErrValidation},
		{name: "name too long", req: roomSvc.CreateFolderRequest{DataRoomID: room.ID, Name: strings.Repeat("x", 101)}, want: domain.ErrValidation},
		{name: "missing room", req: roomSvc.CreateFolderRequest{Name: "Docs"}, want: domain.ErrValidation},
		{name: "malformed room id", req: roomSvc.CreateFolderRequest{DataRoomID: "nope", Name: "Docs"}, want: domain.ErrNotFound},
		{name: "parent in another room", req: roomSvc.CreateFolderRequest{DataRoomID: room.ID, ParentID: &foreignParent.ID, Name: "Docs"}, want: domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			req.UserID = env.userA
			if _, err := env.folders.CreateFolder(ctx, &req); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}

	// validation happens only after authorization
	if _, err := env.folders.CreateFolder(ctx, &roomSvc.CreateFolderRequest{UserID: env.userB, DataRoomID: room.ID, Name: ""}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("stranger with invalid name: err = %v, want ErrNotFound", err)
	}
}

func TestRenameToCurrentNameIsNoop(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	room := env.room(t, env.userA, "Room1")
	docs := env.folder(t, env.userA, room.ID, nil, "Docs")
	env.folder(t, env.userA, room.ID, nil, "Legal")
	report := env.upload(t, env.userA, docs.ID, "report.pdf", "pdf")

	renamed, err := env.folders.RenameFolder(ctx, env.userA, docs.ID, &roomSvc.RenameRequest{Name: "Docs"})
	if err != nil {
		t.Fatalf("rename folder to itself: %v", err)
	}
	if !renamed.UpdatedAt.Equal(docs.UpdatedAt) {
		t.Error("no-op rename should not touch updated_at")
	}

	if _, err := env.folders.RenameFolder(ctx, env.userA, docs.ID, &roomSvc.RenameRequest{Name: "Legal"}); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("rename onto sibling: err = %v", err)
	}

	if _, err := env.files.RenameFile(ctx, env.userA, report.ID, &roomSvc.RenameRequest{Name: "report.pdf"}); err != nil {
		t.Errorf("rename file to itself: %v", err)
	}
	if _, err := env.rooms.RenameDataRoom(ctx, env.userA, room.ID, &roomSvc.RenameRequest{Name: "Room1"}); err != nil {
		t.Errorf("rename room to itself: %v", err)
	}

	file, err := env.files.RenameFile(ctx, env.userA, report.ID, &roomSvc.RenameRequest{Name: "final.pdf"})
	if err != nil || file.Name != "final.pdf" {
		t.Errorf("rename file = %+v, %v", file, err)
	}
}

func TestDeleteDataRoomCascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	room := env.room(t, env.userA, "Room1")
	keep := env.room(t, env.userA, "Keep")
	docs := env.folder(t, env.userA, room.ID, nil, "Docs")
	year := env.folder(t, env.userA, room.ID, &docs.ID, "2024")
	env.upload(t, env.userA, docs.ID, "a.pdf", "a")
	env.upload(t, env.userA, year.ID, "b.pdf", "b")
	kept := env.folder(t, env.userA, keep.ID, nil, "Docs")
	env.upload(t, env.userA, kept.ID, "c.pdf", "c")

	if err := env.rooms.DeleteDataRoom(ctx, env.userA, room.ID); err != nil {
		t.Fatalf("DeleteDataRoom: %v", err)
	}

	rooms, folders, files := env.store.Counts()
	if rooms != 1 || folders != 1 || files != 1 {
		t.Errorf("after delete rooms=%d folders=%d files=%d, want 1/1/1", rooms, folders, files)
	}
	if env.objects.Len() != 1 {
		t.Errorf("storage objects = %d, want 1", env.objects.Len())
	}
	if _, err := env.folders.GetFolder(ctx, env.userA, year.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("deleted folder still visible: %v", err)
	}
}

func TestDeleteFolderRemovesSubtree(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	room := env.room(t, env.userA, "Room1")
	docs := env.folder(t, env.userA, room.ID, nil, "Docs")
	year := env.folder(t, env.userA, room.ID, &docs.ID, "2024")
	env.upload(t, env.userA, year.ID, "b.pdf", "b")
	legal := env.folder(t, env.userA, room.ID, nil, "Legal")
	env.upload(t, env.userA, legal.ID, "nda.pdf", "n")

	if err := env.folders.DeleteFolder(ctx, env.userA, docs.ID); err != nil {
		t.Fatalf("DeleteFolder: %v", err)
	}
	_, folders, files := env.store.Counts()
	if folders != 1 || files != 1 || env.objects.Len() != 1 {
		t.Errorf("folders=%d files=%d objects=%d, want 1/1/1", folders, files, env.objects.Len())
	}
}

func TestDuplicateFileSharesStorage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	room := env.room(t, env.userA, "Room1")
	docs := env.folder(t, env.userA, room.ID, nil, "Docs")
	report := env.upload(t, env.userA, docs.ID, "report.pdf", "0123456789")

	dup, err := env.files.DuplicateFile(ctx, env.userA, report.ID)
	if err != nil {
		t.Fatalf("DuplicateFile: %v", err)
	}
	if dup.Name != "report.pdf (Copy)" || dup.StoragePath != report.StoragePath {
		t.Errorf("duplicate = %+v", dup)
	}
	if _, err := env.files.DuplicateFile(ctx, env.userA, report.ID); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("second duplicate: err = %v, want conflict", err)
	}

	if err := env.files.DeleteFile(ctx, env.userA, report.ID); err != nil {
		t.Fatalf("delete original: %v", err)
	}
	if env.objects.Len() != 1 {
		t.Fatal("object released while the copy still references it")
	}
	if _, err := env.files.GetFile(ctx, env.userA, dup.ID); err != nil {
		t.Errorf("copy unreadable after original delete: %v", err)
	}

	if err := env.files.DeleteFile(ctx, env.userA, dup.ID); err != nil {
		t.Fatalf("delete copy: %v", err)
	}
	if env.objects.Len() != 0 {
		t.Errorf("objects = %d after last reference deleted, want 0", env.objects.Len())
	}
}

func TestDuplicateFileNameTooLong(t *testing.T) {
	env := newTestEnv(t)
	room := env.room(t, env.userA, "Room1")
	docs := env.folder(t, env.userA, room.ID, nil, "Docs")
	long := env.upload(t, env.userA, docs.ID, strings.Repeat("a", 250)+".pdf", "x")

	if _, err := env.files.DuplicateFile(context.Background(), env.userA, long.ID); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("err = %v, want validation failure", err)
	}
}

func TestDuplicateFolderCopiesSubtree(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	room := env.room(t, env.userA, "Room1")
	docs := env.folder(t, env.userA, room.ID, nil, "Docs")
	year := env.folder(t, env.userA, room.ID, &docs.ID, "2024")
	report := env.upload(t, env.userA, year.ID, "report.pdf", "0123456789")

	dup, err := env.folders.DuplicateFolder(ctx, env.userA, docs.ID)
	if err != nil {
		t.Fatalf("DuplicateFolder: %v", err)
	}
	if dup.Name != "Docs (Copy)" || dup.ParentID != nil || dup.ChildCount != 1 {
		t.Errorf("duplicate = %+v", dup)
	}

	_, folders, files := env.store.Counts()
	if folders != 4 || files != 2 || env.objects.Len() != 1 {
		t.Errorf("folders=%d files=%d objects=%d, want 4/2/1", folders, files, env.objects.Len())
	}

	contents, err := env.folders.ListContents(ctx, env.userA, dup.ID, roomModels.ListOptions{})
	if err != nil || len(contents.Folders) != 1 || contents.Folders[0].Name != "2024" {
		t.Fatalf("copy contents = %+v, %v", contents, err)
	}
	copiedYear := contents.Folders[0]
	yearContents, err := env.folders.ListContents(ctx, env.userA, copiedYear.ID, roomModels.ListOptions{})
	if err != nil || len(yearContents.Files) != 1 || yearContents.Files[0].StoragePath != report.StoragePath {
		t.Errorf("copied files = %+v, %v", yearContents, err)
	}

	if _, err := env.folders.DuplicateFolder(ctx, env.userA, docs.ID); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("second duplicate: err = %v", err)
	}
	if _, err := env.folders.DuplicateFolder(ctx, env.userB, docs.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("stranger duplicate: err = %v", err)
	}
}

func TestInjectedCycleFailsFast(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	room := env.room(t, env.userA, "Room1")
	docs := env.folder(t, env.userA, room.ID, nil, "Docs")
	year := env.folder(t, env.userA, room.ID, &docs.ID, "2024")
	env.folder(t, env.userA, room.ID, nil, "Healthy")

	corrupted := *docs
	corrupted.ParentID = &year.ID
	env.store.PutFolder(corrupted)

	if _, err := env.tree.BuildBreadcrumb(ctx, year.ID); !errors.Is(err, domain.ErrHierarchyCycle) {
		t.Errorf("BuildBreadcrumb: err = %v, want ErrHierarchyCycle", err)
	}
	if _, err := env.tree.GetFolderPath(ctx, env.userA, year.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetFolderPath: err = %v, want ErrNotFound", err)
	}

	tree, err := env.tree.GetDataRoomTree(ctx, env.userA, room.ID)
	if err != nil {
		t.Fatalf("GetDataRoomTree: %v", err)
	}
	if len(tree.Folders) != 1 || tree.Folders[0].Name != "Healthy" {
		t.Errorf("tree roots = %+v, want only Healthy", tree.Folders)
	}
}

func TestDeepChainStopsAtDepthBound(t *testing.T) {
	env := newTestEnv(t)
	room := env.room(t, env.userA, "Room1")
	docs := env.folder(t, env.userA, room.ID, nil, "Docs")
	year := env.folder(t, env.userA, room.ID, &docs.ID, "2024")

	svc := env.tree.(*treeService)
	svc.maxDepth = 1
	if _, err := svc.BuildBreadcrumb(context.Background(), year.ID); !errors.Is(err, domain.ErrHierarchyCycle) {
		t.Errorf("err = %v, want ErrHierarchyCycle", err)
	}
}

func TestDataRoomTree(t *testing.T) {
	env := newTestEnv(t)
	room := env.room(t, env.userA, "Room1")
	docs := env.folder(t, env.userA, room.ID, nil, "docs")
	env.folder(t, env.userA, room.ID, nil, "Archive")
	year := env.folder(t, env.userA, room.ID, &docs.ID, "2024")
	env.upload(t, env.userA, year.ID, "b.pdf", "b")
	env.upload(t, env.userA, year.ID, "A.pdf", "a")

	tree, err := env.tree.GetDataRoomTree(context.Background(), env.userA, room.ID)
	if err != nil {
		t.Fatalf("GetDataRoomTree: %v", err)
	}
	if tree.DataRoom.Name != "Room1" || len(tree.Folders) != 2 {
		t.Fatalf("tree = %+v", tree)
	}
	if tree.Folders[0].Name != "Archive" || tree.Folders[1].Name != "docs" {
		t.Errorf("roots not sorted case-insensitively: %s, %s", tree.Folders[0].Name, tree.Folders[1].Name)
	}
	leaf := tree.Folders[1].Folders[0]
	if leaf.Name != "2024" || len(leaf.Files) != 2 || leaf.Files[0].Name != "A.pdf" {
		t.Errorf("leaf = %+v", leaf)
	}
}
