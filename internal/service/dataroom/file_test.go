package dataroom

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"dataroom/internal/domain"
	roomModels "dataroom/internal/domain/models/dataroom"
	roomSvc "dataroom/internal/domain/services/dataroom"
)

func TestListFilesRequiresOneScope(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	room := env.room(t, env.userA, "Room1")
	docs := env.folder(t, env.userA, room.ID, nil, "Docs")

	if _, _, err := env.files.ListFiles(ctx, env.userA, &roomSvc.ListFilesRequest{}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("no scope: err = %v", err)
	}
	if _, _, err := env.files.ListFiles(ctx, env.userA, &roomSvc.ListFilesRequest{FolderID: docs.ID, DataRoomID: room.ID}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("two scopes: err = %v", err)
	}
	if _, _, err := env.files.ListFiles(ctx, env.userB, &roomSvc.ListFilesRequest{DataRoomID: room.ID}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("foreign scope: err = %v", err)
	}
}

func TestListFilesPaginates(t *testing.T) {
	env := newTestEnv(t)
	room := env.room(t, env.userA, "Room1")
	docs := env.folder(t, env.userA, room.ID, nil, "Docs")
	for _, name := range []string{"c.pdf", "a.pdf", "b.pdf"} {
		env.upload(t, env.userA, docs.ID, name, "x")
	}

	files, page, err := env.files.ListFiles(context.Background(), env.userA, &roomSvc.ListFilesRequest{
		DataRoomID: room.ID,
		Page:       roomModels.PageRequest{Page: 2, Limit: 2},
	})
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if len(files) != 1 || files[0].Name != "c.pdf" {
		t.Errorf("page 2 = %+v", files)
	}
	if page.Total != 3 || page.TotalPages != 2 || page.Page != 2 {
		t.Errorf("pagination = %+v", page)
	}
}

func TestSearchFilesStaysInOwnRooms(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	roomA := env.room(t, env.userA, "Deal")
	roomB := env.room(t, env.userB, "Deal")
	docsA := env.folder(t, env.userA, roomA.ID, nil, "Docs")
	docsB := env.folder(t, env.userB, roomB.ID, nil, "Docs")
	env.upload(t, env.userA, docsA.ID, "Q3 report.pdf", "aaaa")
	env.upload(t, env.userA, docsA.ID, "100%_done.pdf", "a")
	env.upload(t, env.userB, docsB.ID, "Q3 report.pdf", "b")

	files, page, err := env.files.SearchFiles(ctx, env.userA, &roomSvc.SearchFilesRequest{Query: "report"})
	if err != nil {
		t.Fatalf("SearchFiles: %v", err)
	}
	if page.Total != 1 || files[0].DataRoomID != roomA.ID {
		t.Errorf("search leaked across owners: %+v", files)
	}

	files, _, err = env.files.SearchFiles(ctx, env.userA, &roomSvc.SearchFilesRequest{Query: "%_"})
	if err != nil || len(files) != 1 || files[0].Name != "100%_done.pdf" {
		t.Errorf("wildcard search = %+v, %v", files, err)
	}

	min := int64(2)
	files, _, err = env.files.SearchFiles(ctx, env.userA, &roomSvc.SearchFilesRequest{
		Filters: roomSvc.FileFilters{SizeMin: &min},
	})
	if err != nil || len(files) != 1 || files[0].Name != "Q3 report.pdf" {
		t.Errorf("size filter = %+v, %v", files, err)
	}

	if _, _, err := env.files.SearchFiles(ctx, env.userA, &roomSvc.SearchFilesRequest{DataRoomID: roomB.ID}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("foreign room filter: err = %v", err)
	}

	from, to := time.Now().Add(time.Hour), time.Now()
	if _, _, err := env.files.SearchFiles(ctx, env.userA, &roomSvc.SearchFilesRequest{
		Filters: roomSvc.FileFilters{DateFrom: &from, DateTo: &to},
	}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("inverted dates: err = %v", err)
	}
}

func TestListContentsSorting(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	room := env.room(t, env.userA, "Room1")
	docs := env.folder(t, env.userA, room.ID, nil, "Docs")
	env.folder(t, env.userA, room.ID, &docs.ID, "beta")
	env.folder(t, env.userA, room.ID, &docs.ID, "Alpha")
	env.upload(t, env.userA, docs.ID, "small.pdf", "s")
	env.upload(t, env.userA, docs.ID, "large.pdf", "llllllll")

	contents, err := env.folders.ListContents(ctx, env.userA, docs.ID, roomModels.ListOptions{})
	if err != nil {
		t.Fatalf("ListContents: %v", err)
	}
	if contents.Folders[0].Name != "Alpha" || contents.Files[0].Name != "large.pdf" {
		t.Errorf("default order: folders[0]=%s files[0]=%s", contents.Folders[0].Name, contents.Files[0].Name)
	}
	if contents.Folder == nil || contents.Folder.ID != docs.ID {
		t.Fatalf("contents folder = %+v, want %s", contents.Folder, docs.ID)
	}
	if contents.Folder.ChildCount != 2 || contents.Folder.FileCount != 2 {
		t.Errorf("counts = %d/%d", contents.Folder.ChildCount, contents.Folder.FileCount)
	}

	bySize, err := env.folders.ListContents(ctx, env.userA, docs.ID, roomModels.ListOptions{Sort: roomModels.SortBySize, Order: roomModels.SortAsc})
	if err != nil {
		t.Fatalf("ListContents by size: %v", err)
	}
	if bySize.Files[0].Name != "small.pdf" {
		t.Errorf("size asc: files[0] = %s", bySize.Files[0].Name)
	}

	desc, _ := env.folders.ListContents(ctx, env.userA, docs.ID, roomModels.ListOptions{Sort: roomModels.SortByName, Order: roomModels.SortDesc})
	if desc.Folders[0].Name != "beta" {
		t.Errorf("name desc: folders[0] = %s", desc.Folders[0].Name)
	}

	if _, err := env.folders.ListContents(ctx, env.userA, docs.ID, roomModels.ListOptions{Sort: "owner"}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("bad sort: err = %v", err)
	}
}

func TestListDataRoomsPagination(t *testing.T) {
	env := newTestEnv(t)
	for _, name := range []string{"One", "Two", "Three"} {
		env.room(t, env.userA, name)
	}
	env.room(t, env.userB, "Other")

	rooms, page, err := env.rooms.ListDataRooms(context.Background(), env.userA, roomModels.PageRequest{Page: 1, Limit: 2})
	if err != nil {
		t.Fatalf("ListDataRooms: %v", err)
	}
	if len(rooms) != 2 || page.Total != 3 || page.TotalPages != 2 {
		t.Errorf("rooms=%d pagination=%+v", len(rooms), page)
	}
	for _, r := range rooms {
		if r.OwnerID != env.userA {
			t.Errorf("listed a room owned by %s", r.OwnerID)
		}
	}
}

func TestOutOfRangePageIsRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	room := env.room(t, env.userA, "Room1")
	docs := env.folder(t, env.userA, room.ID, nil, "Docs")
	env.upload(t, env.userA, docs.ID, "a.pdf", "x")

	huge := roomModels.PageRequest{Page: math.MaxInt / 7, Limit: 10}

	if _, _, err := env.rooms.ListDataRooms(ctx, env.userA, huge); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("ListDataRooms: err = %v, want validation error", err)
	}
	if _, _, err := env.files.ListFiles(ctx, env.userA, &roomSvc.ListFilesRequest{FolderID: docs.ID, Page: huge}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("ListFiles: err = %v, want validation error", err)
	}
	if _, _, err := env.files.SearchFiles(ctx, env.userA, &roomSvc.SearchFilesRequest{Query: "a", Page: huge}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("SearchFiles: err = %v, want validation error", err)
	}

	// A page far past the end but within range is simply empty
	files, _, err := env.files.ListFiles(ctx, env.userA, &roomSvc.ListFilesRequest{FolderID: docs.ID, Page: roomModels.PageRequest{Page: 1000, Limit: 10}})
	if err != nil || len(files) != 0 {
		t.Errorf("page 1000 = %d files, err = %v", len(files), err)
	}
}
