package dataroom

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
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
)

type fileService struct {
	folderRepo roomRepo.FolderRepository
	fileRepo   roomRepo.FileRepository
	store      storage.ObjectStore
	txManager  repositories.TransactionManager
	authorizer services.ResourceAuthorizer
	releaser   *storageReleaser
	logger     *slog.Logger
}

// NewFileService creates a new file service
func NewFileService(
	folderRepo roomRepo.FolderRepository,
	fileRepo roomRepo.FileRepository,
	store storage.ObjectStore,
	txManager repositories.TransactionManager,
	authorizer services.ResourceAuthorizer,
	logger *slog.Logger,
) roomSvc.FileService {
	return &fileService{
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
		store:      store,
		txManager:  txManager,
		authorizer: authorizer,
		releaser:   &storageReleaser{fileRepo: fileRepo, store: store, logger: logger},
		logger:     logger,
	}
}

// GetFile retrieves a file with a URL the client can fetch it from
func (s *fileService) GetFile(ctx context.Context, userID, fileID string) (*models.File, error) {
	if err := s.authorize(ctx, userID, fileID); err != nil {
		return nil, err
	}

	file, err := s.fileRepo.GetByIDOnly(ctx, fileID)
	if err != nil {
		return nil, err
	}

	url, err := s.store.PublicURL(ctx, file.StoragePath)
	if err != nil {
		return nil, domain.NewUpstream("issue file url", err)
	}
	file.URL = url

	return file, nil
}

// RenameFile renames a file in place
func (s *fileService) RenameFile(ctx context.Context, userID, fileID string, req *roomSvc.RenameRequest) (*models.File, error) {
	if err := s.authorize(ctx, userID, fileID); err != nil {
		return nil, err
	}

	name, err := validateName("file", req.Name, config.MaxFileNameLength)
	if err != nil {
		return nil, err
	}

	file, err := s.fileRepo.GetByIDOnly(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if name == file.Name {
		return file, nil
	}

	if err := checkFileNameAvailable(ctx, s.fileRepo, file.FolderID, name, file.ID); err != nil {
		return nil, err
	}

	file.Name = name
	file.UpdatedAt = time.Now()
	if err := s.fileRepo.Update(ctx, file); err != nil {
		return nil, err
	}

	s.logger.Info("file renamed",
		"id", file.ID,
		"name", file.Name,
		"user_id", userID,
	)

	return file, nil
}

// DeleteFile removes a file. Rows sharing its storage object are locked
// while the row is deleted and the remaining references are counted; the
// object is deleted after commit only when no row points at it any more.
// A storage failure is logged, which can leave an orphaned object behind.
func (s *fileService) DeleteFile(ctx context.Context, userID, fileID string) error {
	if err := s.authorize(ctx, userID, fileID); err != nil {
		return err
	}

	var orphaned []string
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		file, err := s.fileRepo.GetByIDOnly(ctx, fileID)
		if err != nil {
			return err
		}
		if err := s.fileRepo.LockStoragePath(ctx, file.StoragePath); err != nil {
			return err
		}
		if err := s.fileRepo.Delete(ctx, fileID); err != nil {
			return err
		}
		orphaned, err = s.releaser.unreferenced(ctx, []string{file.StoragePath})
		return err
	})
	if err != nil {
		return err
	}

	s.releaser.remove(ctx, orphaned)

	s.logger.Info("file deleted",
		"id", fileID,
		"user_id", userID,
		"released_object", len(orphaned) > 0,
	)

	return nil
}

// DuplicateFile creates "<name> (Copy)" in the same folder, sharing the storage object.
// The source row stays locked until the copy is inserted, so a concurrent
// delete of the source either finishes first or sees the copy's reference.
func (s *fileService) DuplicateFile(ctx context.Context, userID, fileID string) (*models.File, error) {
	if err := s.authorize(ctx, userID, fileID); err != nil {
		return nil, err
	}

	var dup *models.File
	var sourceID string
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		source, err := s.fileRepo.GetForShare(ctx, fileID)
		if err != nil {
			return err
		}
		sourceID = source.ID

		name, err := copyName("file", source.Name, config.MaxFileNameLength)
		if err != nil {
			return err
		}
		if err := checkFileNameAvailable(ctx, s.fileRepo, source.FolderID, name, ""); err != nil {
			return err
		}

		now := time.Now()
		dup = &models.File{
			DataRoomID:  source.DataRoomID,
			FolderID:    source.FolderID,
			OwnerID:     userID,
			Name:        name,
			MimeType:    source.MimeType,
			Size:        source.Size,
			StoragePath: source.StoragePath,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return s.fileRepo.Create(ctx, dup)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("file duplicated",
		"source_id", sourceID,
		"id", dup.ID,
		"name", dup.Name,
	)

	return dup, nil
}

// ListFiles lists the files of exactly one folder or one data room
func (s *fileService) ListFiles(ctx context.Context, userID string, req *roomSvc.ListFilesRequest) ([]models.File, models.Pagination, error) {
	folderID, roomID := strings.TrimSpace(req.FolderID), strings.TrimSpace(req.DataRoomID)
	if (folderID == "") == (roomID == "") {
		return nil, models.Pagination{}, fmt.Errorf("%w: exactly one of folder_id or data_room_id is required", domain.ErrValidation)
	}

	if err := s.authorizeScope(ctx, userID, roomID, folderID); err != nil {
		return nil, models.Pagination{}, err
	}

	return s.query(ctx, userID, "", roomID, folderID, req.Filters, req.Page)
}

// SearchFiles matches file names across the caller's rooms. Scope filters
// that are given must be owned by the caller too.
func (s *fileService) SearchFiles(ctx context.Context, userID string, req *roomSvc.SearchFilesRequest) ([]models.File, models.Pagination, error) {
	folderID, roomID := strings.TrimSpace(req.FolderID), strings.TrimSpace(req.DataRoomID)
	if err := s.authorizeScope(ctx, userID, roomID, folderID); err != nil {
		return nil, models.Pagination{}, err
	}

	return s.query(ctx, userID, strings.TrimSpace(req.Query), roomID, folderID, req.Filters, req.Page)
}

func (s *fileService) query(ctx context.Context, userID, text, roomID, folderID string, filters roomSvc.FileFilters, page models.PageRequest) ([]models.File, models.Pagination, error) {
	page = page.Normalize(config.DefaultFilePageLimit, config.MaxPageLimit)
	if err := page.Validate(); err != nil {
		return nil, models.Pagination{}, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	q := &models.FileQuery{
		OwnerID:    userID,
		Query:      text,
		DataRoomID: roomID,
		FolderID:   folderID,
		MimeType:   filters.MimeType,
		DateFrom:   filters.DateFrom,
		DateTo:     filters.DateTo,
		SizeMin:    filters.SizeMin,
		SizeMax:    filters.SizeMax,
		Limit:      page.Limit,
		Offset:     page.Offset(),
	}
	if err := q.Validate(); err != nil {
		return nil, models.Pagination{}, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	files, total, err := s.fileRepo.Query(ctx, q)
	if err != nil {
		return nil, models.Pagination{}, err
	}

	return files, models.NewPagination(page.Page, page.Limit, total), nil
}

func (s *fileService) authorizeScope(ctx context.Context, userID, roomID, folderID string) error {
	if roomID != "" {
		if err := requireID("data_room_id", "data room", roomID); err != nil {
			return err
		}
		if err := s.authorizer.CanAccessDataRoom(ctx, userID, roomID); err != nil {
			return err
		}
	}
	if folderID != "" {
		if err := requireID("folder_id", "folder", folderID); err != nil {
			return err
		}
		if err := s.authorizer.CanAccessFolder(ctx, userID, folderID); err != nil {
			return err
		}
	}
	return nil
}

func (s *fileService) authorize(ctx context.Context, userID, fileID string) error {
	if err := requireID("id", "file", fileID); err != nil {
		return err
	}
	return s.authorizer.CanAccessFile(ctx, userID, fileID)
}

// checkFileNameAvailable returns a ConflictError when the folder already
// has a file called name. exceptID skips the file being renamed.
func checkFileNameAvailable(ctx context.Context, repo roomRepo.FileRepository, folderID, name, exceptID string) error {
	existing, err := repo.FindByName(ctx, folderID, name)
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
		Message:      fmt.Sprintf("a file named %q already exists in this folder", name),
		ResourceType: "file",
		ResourceID:   existing.ID,
	}
}
