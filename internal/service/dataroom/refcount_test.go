package dataroom

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"dataroom/internal/domain"
	roomModels "dataroom/internal/domain/models/dataroom"
	roomRepo "dataroom/internal/domain/repositories/dataroom"
)

// lockHookRepo runs onLock once the rows of a storage object are locked
type lockHookRepo struct {
	roomRepo.FileRepository
	onLock func()
}

func (r *lockHookRepo) LockStoragePath(ctx context.Context, storagePath string) error {
	if err := r.FileRepository.LockStoragePath(ctx, storagePath); err != nil {
		return err
	}
	if hook := r.onLock; hook != nil {
		r.onLock = nil
		hook()
	}
	return nil
}

func TestDuplicateWaitsForDeleteOfSharedObject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	room := env.room(t, env.userA, "Room1")
	docs := env.folder(t, env.userA, room.ID, nil, "Docs")
	report := env.upload(t, env.userA, docs.ID, "report.pdf", "0123456789")

	files := &lockHookRepo{FileRepository: env.store.Files()}
	svc := NewFileService(env.store.Folders(), files, env.objects, env.store.TransactionManager(), authorizerOf(env), discardLogger())

	dupDone := make(chan error, 1)
	files.onLock = func() {
		go func() {
			_, err := svc.DuplicateFile(ctx, env.userA, report.ID)
			dupDone <- err
		}()
		select {
		case err := <-dupDone:
			t.Errorf("duplicate finished while the delete held the rows: err = %v", err)
			dupDone <- err
		case <-time.After(50 * time.Millisecond):
		}
	}

	if err := svc.DeleteFile(ctx, env.userA, report.ID); err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}
	if err := <-dupDone; !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("duplicate after delete: err = %v, want not found", err)
	}

	if _, _, n := env.store.Counts(); n != 0 {
		t.Errorf("files = %d, want 0", n)
	}
	if env.objects.Len() != 0 {
		t.Errorf("objects = %d, want 0", env.objects.Len())
	}
}

func TestConcurrentDeleteAndDuplicateKeepReferencedObjects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	room := env.room(t, env.userA, "Room1")
	docs := env.folder(t, env.userA, room.ID, nil, "Docs")

	for i := 0; i < 25; i++ {
		original := env.upload(t, env.userA, docs.ID, fmt.Sprintf("f%d.pdf", i), "0123456789")

		var (
			wg             sync.WaitGroup
			delErr, dupErr error
			dup            *roomModels.File
		)
		start := make(chan struct{})
		wg.Add(2)
		go func() {
			defer wg.Done()
			<-start
			delErr = env.files.DeleteFile(ctx, env.userA, original.ID)
		}()
		go func() {
			defer wg.Done()
			<-start
			dup, dupErr = env.files.DuplicateFile(ctx, env.userA, original.ID)
		}()
		close(start)
		wg.Wait()

		if delErr != nil {
			t.Fatalf("round %d: DeleteFile: %v", i, delErr)
		}
		refs, err := env.store.Files().CountByStoragePath(ctx, original.StoragePath)
		if err != nil {
			t.Fatalf("round %d: count: %v", i, err)
		}
		_, _, objErr := env.objects.Get(original.StoragePath)

		switch {
		case dupErr == nil:
			if refs != 1 || objErr != nil {
				t.Fatalf("round %d: copy survived with refs=%d object err=%v", i, refs, objErr)
			}
			if _, err := env.files.GetFile(ctx, env.userA, dup.ID); err != nil {
				t.Fatalf("round %d: copy unreadable: %v", i, err)
			}
		case errors.Is(dupErr, domain.ErrNotFound):
			if refs != 0 || objErr == nil {
				t.Fatalf("round %d: source gone but refs=%d object err=%v", i, refs, objErr)
			}
		default:
			t.Fatalf("round %d: DuplicateFile: %v", i, dupErr)
		}
	}
}

func TestDeleteFolderKeepsObjectOfCopyElsewhere(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	room := env.room(t, env.userA, "Room1")
	docs := env.folder(t, env.userA, room.ID, nil, "Docs")
	report := env.upload(t, env.userA, docs.ID, "report.pdf", "0123456789")

	docsCopy, err := env.folders.DuplicateFolder(ctx, env.userA, docs.ID)
	if err != nil {
		t.Fatalf("DuplicateFolder: %v", err)
	}
	if err := env.folders.DeleteFolder(ctx, env.userA, docs.ID); err != nil {
		t.Fatalf("DeleteFolder: %v", err)
	}
	if _, _, err := env.objects.Get(report.StoragePath); err != nil {
		t.Fatalf("object of the copied folder was released: %v", err)
	}

	if err := env.folders.DeleteFolder(ctx, env.userA, docsCopy.ID); err != nil {
		t.Fatalf("DeleteFolder copy: %v", err)
	}
	if env.objects.Len() != 0 {
		t.Errorf("objects = %d after deleting every reference, want 0", env.objects.Len())
	}
}
