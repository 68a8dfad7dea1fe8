package dataroom

import (
	"context"
	"log/slog"

	roomRepo "dataroom/internal/domain/repositories/dataroom"
	"dataroom/internal/storage"
)

// storageReleaser deletes storage objects that no file row references any more.
//
// Deletes count references in the same transaction that removes the rows and
// call remove only after it commits. Duplication locks its source rows, so a
// path counted as unreferenced cannot gain a new row afterwards.
type storageReleaser struct {
	fileRepo roomRepo.FileRepository
	store    storage.ObjectStore
	logger   *slog.Logger
}

// unreferenced returns the paths that no file row points at
func (r *storageReleaser) unreferenced(ctx context.Context, paths []string) ([]string, error) {
	var orphaned []string
	for _, path := range paths {
		refs, err := r.fileRepo.CountByStoragePath(ctx, path)
		if err != nil {
			return nil, err
		}
		if refs == 0 {
			orphaned = append(orphaned, path)
		}
	}
	return orphaned, nil
}

// remove deletes storage objects. Failures are logged and never returned:
// the rows are already gone, so the worst case is an orphaned object.
func (r *storageReleaser) remove(ctx context.Context, paths []string) {
	for _, path := range paths {
		if err := r.store.Delete(ctx, path); err != nil {
			r.logger.Error("storage delete failed, object orphaned", "storage_path", path, "error", err)
		}
	}
}
