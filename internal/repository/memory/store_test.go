package memory

import (
	"context"
	"errors"
	"math"
	"testing"

	"dataroom/internal/domain"
	"dataroom/internal/domain/models"
	roomModels "dataroom/internal/domain/models/dataroom"
)

func seedRoom(t *testing.T, s *Store) (models.User, roomModels.DataRoom) {
	t.Helper()
	ctx := context.Background()

	user := models.User{Email: "Owner@Example.com", Name: "Owner"}
	if err := s.Users().Create(ctx, &user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	room := roomModels.DataRoom{OwnerID: user.ID, Name: "Deal"}
	if err := s.DataRooms().Create(ctx, &room); err != nil {
		t.Fatalf("create room: %v", err)
	}
	return user, room
}

func TestFolderSiblingNamesAreUnique(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	_, room := seedRoom(t, s)

	first := roomModels.Folder{DataRoomID: room.ID, Name: "Legal"}
	if err := s.Folders().Create(ctx, &first); err != nil {
		t.Fatalf("create: %v", err)
	}

	dup := roomModels.Folder{DataRoomID: room.ID, Name: "Legal"}
	err := s.Folders().Create(ctx, &dup)
	var conflict *domain.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if conflict.ResourceID != first.ID {
		t.Errorf("conflict ResourceID = %q, want %q", conflict.ResourceID, first.ID)
	}

	// same name under a different parent is fine
	nested := roomModels.Folder{DataRoomID: room.ID, ParentID: &first.ID, Name: "Legal"}
	if err := s.Folders().Create(ctx, &nested); err != nil {
		t.Fatalf("nested create: %v", err)
	}
}

func TestFolderParentMustShareRoom(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	user, room := seedRoom(t, s)

	other := roomModels.DataRoom{OwnerID: user.ID, Name: "Other"}
	if err := s.DataRooms().Create(ctx, &other); err != nil {
		t.Fatalf("create room: %v", err)
	}
	parent := roomModels.Folder{DataRoomID: other.ID, Name: "Elsewhere"}
	if err := s.Folders().Create(ctx, &parent); err != nil {
		t.Fatalf("create parent: %v", err)
	}

	child := roomModels.Folder{DataRoomID: room.ID, ParentID: &parent.ID, Name: "Child"}
	if err := s.Folders().Create(ctx, &child); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFolderDeleteCascades(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	user, room := seedRoom(t, s)

	top := roomModels.Folder{DataRoomID: room.ID, Name: "Top"}
	_ = s.Folders().Create(ctx, &top)
	mid := roomModels.Folder{DataRoomID: room.ID, ParentID: &top.ID, Name: "Mid"}
	_ = s.Folders().Create(ctx, &mid)
	keep := roomModels.Folder{DataRoomID: room.ID, Name: "Keep"}
	_ = s.Folders().Create(ctx, &keep)

	for _, f := range []roomModels.File{
		{DataRoomID: room.ID, FolderID: mid.ID, OwnerID: user.ID, Name: "a.pdf", StoragePath: "p1"},
		{DataRoomID: room.ID, FolderID: keep.ID, OwnerID: user.ID, Name: "b.pdf", StoragePath: "p2"},
	} {
		file := f
		if err := s.Files().Create(ctx, &file); err != nil {
			t.Fatalf("create file: %v", err)
		}
	}

	paths, err := s.Files().StoragePathsUnderFolder(ctx, top.ID)
	if err != nil || len(paths) != 1 || paths[0] != "p1" {
		t.Fatalf("StoragePathsUnderFolder = %v, %v", paths, err)
	}

	if err := s.Folders().Delete(ctx, top.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, folders, files := s.Counts()
	if folders != 1 || files != 1 {
		t.Errorf("after delete folders=%d files=%d, want 1 and 1", folders, files)
	}
}

func TestDataRoomDeleteCascades(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	user, room := seedRoom(t, s)

	folder := roomModels.Folder{DataRoomID: room.ID, Name: "Docs"}
	_ = s.Folders().Create(ctx, &folder)
	file := roomModels.File{DataRoomID: room.ID, FolderID: folder.ID, OwnerID: user.ID, Name: "x.pdf", StoragePath: "p"}
	_ = s.Files().Create(ctx, &file)

	if err := s.DataRooms().Delete(ctx, room.ID, "someone-else"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("foreign delete should be NotFound, got %v", err)
	}
	if err := s.DataRooms().Delete(ctx, room.ID, user.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	rooms, folders, files := s.Counts()
	if rooms != 0 || folders != 0 || files != 0 {
		t.Errorf("counts = %d/%d/%d, want all zero", rooms, folders, files)
	}
}

func TestFileQueryScopesToOwner(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	user, room := seedRoom(t, s)

	stranger := models.User{Email: "stranger@example.com"}
	_ = s.Users().Create(ctx, &stranger)
	strangerRoom := roomModels.DataRoom{OwnerID: stranger.ID, Name: "Deal"}
	_ = s.DataRooms().Create(ctx, &strangerRoom)

	mine := roomModels.Folder{DataRoomID: room.ID, Name: "Docs"}
	_ = s.Folders().Create(ctx, &mine)
	theirs := roomModels.Folder{DataRoomID: strangerRoom.ID, Name: "Docs"}
	_ = s.Folders().Create(ctx, &theirs)

	_ = s.Files().Create(ctx, &roomModels.File{DataRoomID: room.ID, FolderID: mine.ID, Name: "Report.pdf", Size: 10, StoragePath: "a"})
	_ = s.Files().Create(ctx, &roomModels.File{DataRoomID: room.ID, FolderID: mine.ID, Name: "notes.pdf", Size: 500, StoragePath: "b"})
	_ = s.Files().Create(ctx, &roomModels.File{DataRoomID: strangerRoom.ID, FolderID: theirs.ID, Name: "report-2.pdf", StoragePath: "c"})

	got, total, err := s.Files().Query(ctx, &roomModels.FileQuery{OwnerID: user.ID, Query: "REPORT", Limit: 20})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if total != 1 || len(got) != 1 || got[0].Name != "Report.pdf" {
		t.Errorf("query = %+v total=%d, want only Report.pdf", got, total)
	}

	min := int64(100)
	got, total, _ = s.Files().Query(ctx, &roomModels.FileQuery{OwnerID: user.ID, SizeMin: &min, Limit: 20})
	if total != 1 || got[0].Name != "notes.pdf" {
		t.Errorf("size filter = %+v, want notes.pdf", got)
	}
}

func TestCountByStoragePath(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	_, room := seedRoom(t, s)

	folder := roomModels.Folder{DataRoomID: room.ID, Name: "Docs"}
	_ = s.Folders().Create(ctx, &folder)
	_ = s.Files().Create(ctx, &roomModels.File{DataRoomID: room.ID, FolderID: folder.ID, Name: "a.pdf", StoragePath: "shared"})
	_ = s.Files().Create(ctx, &roomModels.File{DataRoomID: room.ID, FolderID: folder.ID, Name: "a (Copy).pdf", StoragePath: "shared"})

	n, err := s.Files().CountByStoragePath(ctx, "shared")
	if err != nil || n != 2 {
		t.Errorf("CountByStoragePath = %d, %v; want 2", n, err)
	}
}

func TestExecTxRollsBack(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	_, room := seedRoom(t, s)

	boom := errors.New("boom")
	err := s.TransactionManager().ExecTx(ctx, func(ctx context.Context) error {
		folder := roomModels.Folder{DataRoomID: room.ID, Name: "Temp"}
		if err := s.Folders().Create(ctx, &folder); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("ExecTx error = %v, want boom", err)
	}
	if _, folders, _ := s.Counts(); folders != 0 {
		t.Errorf("folders = %d after rollback, want 0", folders)
	}
}

func TestExecTxRollbackKeepsOutsideWrites(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	user, room := seedRoom(t, s)

	legal := roomModels.Folder{DataRoomID: room.ID, Name: "Legal"}
	if err := s.Folders().Create(ctx, &legal); err != nil {
		t.Fatalf("create: %v", err)
	}

	boom := errors.New("boom")
	outside := roomModels.DataRoom{OwnerID: user.ID, Name: "Side"}
	err := s.TransactionManager().ExecTx(ctx, func(txCtx context.Context) error {
		temp := roomModels.Folder{DataRoomID: room.ID, Name: "Temp"}
		if err := s.Folders().Create(txCtx, &temp); err != nil {
			return err
		}
		legal.Name = "Legal (old)"
		if err := s.Folders().Update(txCtx, &legal); err != nil {
			return err
		}
		if err := s.Folders().Delete(txCtx, legal.ID); err != nil {
			return err
		}
		// Not part of the transaction
		if err := s.DataRooms().Create(ctx, &outside); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("ExecTx error = %v, want boom", err)
	}

	if _, err := s.DataRooms().GetByIDOnly(ctx, outside.ID); err != nil {
		t.Errorf("write outside the transaction was rolled back: %v", err)
	}
	restored, err := s.Folders().GetByIDOnly(ctx, legal.ID)
	if err != nil {
		t.Fatalf("deleted folder not restored: %v", err)
	}
	if restored.Name != "Legal" {
		t.Errorf("restored name = %q, want Legal", restored.Name)
	}
	if _, folders, _ := s.Counts(); folders != 1 {
		t.Errorf("folders = %d after rollback, want 1", folders)
	}
}

func TestListIgnoresOffsetsOutOfRange(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	user, _ := seedRoom(t, s)

	for _, offset := range []int{-5, 1, math.MaxInt} {
		rooms, total, err := s.DataRooms().List(ctx, user.ID, offset, 10)
		if err != nil {
			t.Fatalf("List(offset=%d): %v", offset, err)
		}
		if total != 1 || len(rooms) != 0 {
			t.Errorf("List(offset=%d) = %d rooms, total %d; want 0, 1", offset, len(rooms), total)
		}
	}

	rooms, _, err := s.DataRooms().List(ctx, user.ID, 0, math.MaxInt)
	if err != nil || len(rooms) != 1 {
		t.Errorf("List(limit=MaxInt) = %d rooms, err %v", len(rooms), err)
	}
}
