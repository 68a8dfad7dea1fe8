package dataroom

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"dataroom/internal/config"
	"dataroom/internal/domain"
	models "dataroom/internal/domain/models/dataroom"
	"dataroom/internal/domain/repositories"
	roomRepo "dataroom/internal/domain/repositories/dataroom"
	roomSvc "dataroom/internal/domain/services/dataroom"
	"dataroom/internal/storage"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// dataRoomService implements the DataRoomService interface
type dataRoomService struct {
	roomRepo   roomRepo.DataRoomRepository
	folderRepo roomRepo.FolderRepository
	fileRepo   roomRepo.FileRepository
	txManager  repositories.TransactionManager
	releaser   *storageReleaser
	logger     *slog.Logger
}

// NewDataRoomService creates a new data room service
func NewDataRoomService(
	roomRepo roomRepo.DataRoomRepository,
	folderRepo roomRepo.FolderRepository,
	fileRepo roomRepo.FileRepository,
	store storage.ObjectStore,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) roomSvc.DataRoomService {
	return &dataRoomService{
		roomRepo:   roomRepo,
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
		txManager:  txManager,
		releaser:   &storageReleaser{fileRepo: fileRepo, store: store, logger: logger},
		logger:     logger,
	}
}

// CreateDataRoom creates a new data room
func (s *dataRoomService) CreateDataRoom(ctx context.Context, req *roomSvc.CreateDataRoomRequest) (*models.DataRoom, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	name, err := validateName("data room", req.Name, config.MaxDataRoomNameLength)
	if err != nil {
		return nil, err
	}

	if err := s.checkNameAvailable(ctx, req.UserID, name, ""); err != nil {
		return nil, err
	}

	room := &models.DataRoom{
		OwnerID:   req.UserID,
		Name:      name,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.roomRepo.Create(ctx, room); err != nil {
		return nil, err
	}

	s.logger.Info("data room created",
		"id", room.ID,
		"name", room.Name,
		"user_id", req.UserID,
	)

	return room, nil
}

// GetDataRoom retrieves a room with its root folders
func (s *dataRoomService) GetDataRoom(ctx context.Context, userID, dataRoomID string) (*models.DataRoomDetail, error) {
	if err := requireID("id", "data room", dataRoomID); err != nil {
		return nil, err
	}
	room, err := s.roomRepo.GetByID(ctx, dataRoomID, userID)
	if err != nil {
		return nil, err
	}

	folders, err := s.folderRepo.ListChildren(ctx, room.ID, nil)
	if err != nil {
		return nil, err
	}

	return &models.DataRoomDetail{DataRoom: *room, Folders: folders}, nil
}

// ListDataRooms returns one page of the caller's rooms, most recently updated first
func (s *dataRoomService) ListDataRooms(ctx context.Context, userID string, page models.PageRequest) ([]models.DataRoom, models.Pagination, error) {
	page = page.Normalize(config.DefaultDataRoomPageLimit, config.MaxPageLimit)
	if err := page.Validate(); err != nil {
		return nil, models.Pagination{}, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	rooms, total, err := s.roomRepo.List(ctx, userID, page.Offset(), page.Limit)
	if err != nil {
		return nil, models.Pagination{}, err
	}

	return rooms, models.NewPagination(page.Page, page.Limit, total), nil
}

// RenameDataRoom renames a data room
func (s *dataRoomService) RenameDataRoom(ctx context.Context, userID, dataRoomID string, req *roomSvc.RenameRequest) (*models.DataRoom, error) {
	if err := requireID("id", "data room", dataRoomID); err != nil {
		return nil, err
	}
	// Owner-scoped lookup doubles as the authorization check
	room, err := s.roomRepo.GetByID(ctx, dataRoomID, userID)
	if err != nil {
		return nil, err
	}

	name, err := validateName("data room", req.Name, config.MaxDataRoomNameLength)
	if err != nil {
		return nil, err
	}
	if name == room.Name {
		return room, nil
	}

	if err := s.checkNameAvailable(ctx, userID, name, room.ID); err != nil {
		return nil, err
	}

	room.Name = name
	room.UpdatedAt = time.Now()
	if err := s.roomRepo.Update(ctx, room); err != nil {
		return nil, err
	}

	s.logger.Info("data room renamed",
		"id", room.ID,
		"name", room.Name,
		"user_id", userID,
	)

	return room, nil
}

// DeleteDataRoom deletes a room; folders and files cascade in the store
func (s *dataRoomService) DeleteDataRoom(ctx context.Context, userID, dataRoomID string) error {
	if err := requireID("id", "data room", dataRoomID); err != nil {
		return err
	}
	if _, err := s.roomRepo.GetByID(ctx, dataRoomID, userID); err != nil {
		return err
	}

	var orphaned []string
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		paths, err := s.fileRepo.StoragePathsByDataRoom(ctx, dataRoomID)
		if err != nil {
			return err
		}
		if err := s.roomRepo.Delete(ctx, dataRoomID, userID); err != nil {
			return err
		}
		orphaned, err = s.releaser.unreferenced(ctx, paths)
		return err
	})
	if err != nil {
		return err
	}

	s.releaser.remove(ctx, orphaned)

	s.logger.Info("data room deleted",
		"id", dataRoomID,
		"user_id", userID,
		"released_objects", len(orphaned),
	)

	return nil
}

// checkNameAvailable returns a ConflictError when another room of the
// owner already uses name. exceptID skips the room being renamed.
func (s *dataRoomService) checkNameAvailable(ctx context.Context, ownerID, name, exceptID string) error {
	existing, err := s.roomRepo.FindByName(ctx, ownerID, name)
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
		Message:      fmt.Sprintf("a data room named %q already exists", name),
		ResourceType: "data_room",
		ResourceID:   existing.ID,
	}
}

// validateCreateRequest validates a create data room request
func (s *dataRoomService) validateCreateRequest(req *roomSvc.CreateDataRoomRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.UserID, validation.Required),
	)
}
