package dataroom

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"dataroom/internal/config"
	"dataroom/internal/domain"
	models "dataroom/internal/domain/models/dataroom"
	"dataroom/internal/domain/repositories"
	roomRepo "dataroom/internal/domain/repositories/dataroom"
	"dataroom/internal/domain/services"
	roomSvc "dataroom/internal/domain/services/dataroom"
	"dataroom/internal/storage"

	"golang.org/x/sync/errgroup"
)

type folderService struct {
	folderRepo roomRepo.FolderRepository
	fileRepo   roomRepo.FileRepository
	txManager  repositories.TransactionManager
	authorizer services.ResourceAuthorizer
	releaser   *storageReleaser
	logger     *slog.Logger
}

// NewFolderService creates a new folder service
func NewFolderService(
	folderRepo roomRepo.FolderRepository,
	fileRepo roomRepo.FileRepository,
	store storage.ObjectStore,
	txManager repositories.TransactionManager,
	authorizer services.ResourceAuthorizer,
	logger *slog.Logger,
) roomSvc.FolderService {
	return &folderService{
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
		txManager:  txManager,
		authorizer: authorizer,
		releaser:   &storageReleaser{fileRepo: fileRepo, store: store, logger: logger},
		logger:     logger,
	}
}

// CreateFolder creates a folder at the root of a data room, or under a
// parent folder that must belong to the same room.
func (s *folderService) CreateFolder(ctx context.Context, req *roomSvc.CreateFolderRequest) (*models.Folder, error) {
	// Normalize empty string to nil for root-level folders
	if req.ParentID != nil && *req.ParentID == "" {
		req.ParentID = nil
	}

	if err := requireID("data_room_id", "data room", req.DataRoomID); err != nil {
		return nil, err
	}
	if err := s.authorizer.CanAccessDataRoom(ctx, req.UserID, req.DataRoomID); err != nil {
		return nil, err
	}

	var parent *models.Folder
	if req.ParentID != nil {
		if err := requireID("parent_id", "folder", *req.ParentID); err != nil {
			return nil, err
		}
		if err := s.authorizer.CanAccessFolder(ctx, req.UserID, *req.ParentID); err != nil {
			return nil, err
		}
		p, err := s.folderRepo.GetByIDOnly(ctx, *req.ParentID)
		if err != nil {
			return nil, err
		}
		// Cross-room nesting is reported as the parent not existing
		if p.DataRoomID != req.DataRoomID {
			return nil, domain.NewNotFound("folder", *req.ParentID)
		}
		parent = p
	}

	name, err := validateName("folder", req.Name, config.MaxFolderNameLength)
	if err != nil {
		return nil, err
	}
	if parent != nil {
		chain, err := walkParents(ctx, s.folderRepo, parent, config.MaxFolderDepth)
		if err != nil {
			return nil, err
		}
		if len(chain)+1 > config.MaxFolderDepth {
			return nil, fmt.Errorf("%w: folders cannot be nested more than %d levels deep", domain.ErrValidation, config.MaxFolderDepth)
		}
	}

	if err := s.checkNameAvailable(ctx, req.DataRoomID, req.ParentID, name, ""); err != nil {
		return nil, err
	}

	folder := &models.Folder{
		DataRoomID: req.DataRoomID,
		ParentID:   req.ParentID,
		OwnerID:    req.UserID,
		Name:       name,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if err := s.folderRepo.Create(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"data_room_id", folder.DataRoomID,
		"parent_id", folder.ParentID,
	)

	return folder, nil
}

// GetFolder retrieves a folder with its child and file counts
func (s *folderService) GetFolder(ctx context.Context, userID, folderID string) (*models.Folder, error) {
	if err := s.authorize(ctx, userID, folderID); err != nil {
		return nil, err
	}
	return s.folderRepo.GetWithCounts(ctx, folderID)
}

// RenameFolder renames a folder in place
func (s *folderService) RenameFolder(ctx context.Context, userID, folderID string, req *roomSvc.RenameRequest) (*models.Folder, error) {
	if err := s.authorize(ctx, userID, folderID); err != nil {
		return nil, err
	}

	name, err := validateName("folder", req.Name, config.MaxFolderNameLength)
	if err != nil {
		return nil, err
	}

	folder, err := s.folderRepo.GetWithCounts(ctx, folderID)
	if err != nil {
		return nil, err
	}
	if name == folder.Name {
		return folder, nil
	}

	if err := s.checkNameAvailable(ctx, folder.DataRoomID, folder.ParentID, name, folder.ID); err != nil {
		return nil, err
	}

	folder.Name = name
	folder.UpdatedAt = time.Now()
	if err := s.folderRepo.Update(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder renamed",
		"id", folder.ID,
		"name", folder.Name,
		"user_id", userID,
	)

	return folder, nil
}

// DeleteFolder deletes a folder. Descendant folders and files cascade in
// the store; storage objects no longer referenced are released afterwards.
func (s *folderService) DeleteFolder(ctx context.Context, userID, folderID string) error {
	if err := s.authorize(ctx, userID, folderID); err != nil {
		return err
	}

	var orphaned []string
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		paths, err := s.fileRepo.StoragePathsUnderFolder(ctx, folderID)
		if err != nil {
			return err
		}
		if err := s.folderRepo.Delete(ctx, folderID); err != nil {
			return err
		}
		orphaned, err = s.releaser.unreferenced(ctx, paths)
		return err
	})
	if err != nil {
		return err
	}

	s.releaser.remove(ctx, orphaned)

	s.logger.Info("folder deleted",
		"id", folderID,
		"user_id", userID,
		"released_objects", len(orphaned),
	)

	return nil
}

// ListContents lists the immediate child folders and files of a folder
func (s *folderService) ListContents(ctx context.Context, userID, folderID string, opts models.ListOptions) (*models.FolderContents, error) {
	if err := s.authorize(ctx, userID, folderID); err != nil {
		return nil, err
	}

	opts.ApplyDefaults()
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	folder, err := s.folderRepo.GetWithCounts(ctx, folderID)
	if err != nil {
		return nil, err
	}

	var (
		folders []models.Folder
		files   []models.File
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		folders, err = s.folderRepo.ListChildren(gctx, folder.DataRoomID, &folder.ID)
		return err
	})
	g.Go(func() error {
		var err error
		files, err = s.fileRepo.ListByFolder(gctx, folder.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sortFolders(folders, opts)
	sortFiles(files, opts)

	return &models.FolderContents{Folder: folder, Folders: folders, Files: files}, nil
}

// DuplicateFolder copies a folder with its whole subtree next to the
// original. Copied files point at the same storage objects.
func (s *folderService) DuplicateFolder(ctx context.Context, userID, folderID string) (*models.Folder, error) {
	if err := s.authorize(ctx, userID, folderID); err != nil {
		return nil, err
	}

	source, err := s.folderRepo.GetByIDOnly(ctx, folderID)
	if err != nil {
		return nil, err
	}

	name, err := copyName("folder", source.Name, config.MaxFolderNameLength)
	if err != nil {
		return nil, err
	}
	if err := s.checkNameAvailable(ctx, source.DataRoomID, source.ParentID, name, ""); err != nil {
		return nil, err
	}

	var root *models.Folder
	copied := 0
	err = s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		now := time.Now()
		root = &models.Folder{
			DataRoomID: source.DataRoomID,
			ParentID:   source.ParentID,
			OwnerID:    userID,
			Name:       name,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := s.folderRepo.Create(ctx, root); err != nil {
			return err
		}

		type pair struct{ from, to string }
		queue := []pair{{from: source.ID, to: root.ID}}
		// The copy root is a new child of the source's parent, never of the
		// source itself, so a visited set over source IDs is enough.
		visited := map[string]bool{source.ID: true}

		for len(queue) > 0 {
			p := queue[0]
			queue = queue[1:]

			files, err := s.fileRepo.ListByFolder(ctx, p.from)
			if err != nil {
				return err
			}
			for _, f := range files {
				// Lock the source row so a concurrent delete cannot release
				// the object while the copy is being created
				if _, err := s.fileRepo.GetForShare(ctx, f.ID); err != nil {
					if errors.Is(err, domain.ErrNotFound) {
						continue
					}
					return err
				}
				dup := &models.File{
					DataRoomID:  f.DataRoomID,
					FolderID:    p.to,
					OwnerID:     userID,
					Name:        f.Name,
					MimeType:    f.MimeType,
					Size:        f.Size,
					StoragePath: f.StoragePath,
					CreatedAt:   now,
					UpdatedAt:   now,
				}
				if err := s.fileRepo.Create(ctx, dup); err != nil {
					return err
				}
				copied++
			}

			children, err := s.folderRepo.ListChildren(ctx, source.DataRoomID, &p.from)
			if err != nil {
				return err
			}
			for _, child := range children {
				if visited[child.ID] {
					return domain.ErrHierarchyCycle
				}
				visited[child.ID] = true

				to := p.to
				dup := &models.Folder{
					DataRoomID: child.DataRoomID,
					ParentID:   &to,
					OwnerID:    userID,
					Name:       child.Name,
					CreatedAt:  now,
					UpdatedAt:  now,
				}
				if err := s.folderRepo.Create(ctx, dup); err != nil {
					return err
				}
				copied++
				queue = append(queue, pair{from: child.ID, to: dup.ID})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder duplicated",
		"source_id", source.ID,
		"id", root.ID,
		"name", root.Name,
		"entities_copied", copied,
	)

	return s.folderRepo.GetWithCounts(ctx, root.ID)
}

func (s *folderService) authorize(ctx context.Context, userID, folderID string) error {
	if err := requireID("id", "folder", folderID); err != nil {
		return err
	}
	return s.authorizer.CanAccessFolder(ctx, userID, folderID)
}

// checkNameAvailable returns a ConflictError when a sibling already uses
// name. exceptID skips the folder being renamed.
func (s *folderService) checkNameAvailable(ctx context.Context, dataRoomID string, parentID *string, name, exceptID string) error {
	existing, err := s.folderRepo.FindByName(ctx, dataRoomID, parentID, name)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID == exceptID {
		return nil
	}
	return &domain.ConflictError{
		Message:      fmt.Sprintf("a folder named %q already exists in this location", name),
		ResourceType: "folder",
		ResourceID:   existing.ID,
	}
}

func lessName(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}

// sortFolders orders folders by opts. Folders have no size, so size sorts
// fall back to name.
func sortFolders(folders []models.Folder, opts models.ListOptions) {
	sort.SliceStable(folders, func(i, j int) bool {
		a, b := folders[i], folders[j]
		if opts.Order == models.SortDesc {
			a, b = b, a
		}
		switch opts.Sort {
		case models.SortByCreatedAt:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
		case models.SortByUpdatedAt:
			if !a.UpdatedAt.Equal(b.UpdatedAt) {
				return a.UpdatedAt.Before(b.UpdatedAt)
			}
		}
		return lessName(a.Name, b.Name)
	})
}

func sortFiles(files []models.File, opts models.ListOptions) {
	sort.SliceStable(files, func(i, j int) bool {
		a, b := files[i], files[j]
		if opts.Order == models.SortDesc {
			a, b = b, a
		}
		switch opts.Sort {
		case models.SortByCreatedAt:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
		case models.SortByUpdatedAt:
			if !a.UpdatedAt.Equal(b.UpdatedAt) {
				return a.UpdatedAt.Before(b.UpdatedAt)
			}
		case models.SortBySize:
			if a.Size != b.Size {
				return a.Size < b.Size
			}
		}
		return lessName(a.Name, b.Name)
	})
}
