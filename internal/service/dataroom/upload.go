package dataroom

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"dataroom/internal/config"
	"dataroom/internal/domain"
	models "dataroom/internal/domain/models/dataroom"
	roomRepo "dataroom/internal/domain/repositories/dataroom"
	"dataroom/internal/domain/services"
	roomSvc "dataroom/internal/domain/services/dataroom"
	"dataroom/internal/storage"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("dataroom/service")

type uploadService struct {
	folderRepo roomRepo.FolderRepository
	fileRepo   roomRepo.FileRepository
	store      storage.ObjectStore
	authorizer services.ResourceAuthorizer
	policy     config.UploadPolicy
	logger     *slog.Logger
}

// NewUploadService creates the upload coordinator. policy decides which
// content types and sizes are accepted.
func NewUploadService(
	folderRepo roomRepo.FolderRepository,
	fileRepo roomRepo.FileRepository,
	store storage.ObjectStore,
	authorizer services.ResourceAuthorizer,
	policy config.UploadPolicy,
	logger *slog.Logger,
) roomSvc.UploadService {
	if policy.MaxBytes <= 0 {
		policy.MaxBytes = config.DefaultMaxUploadBytes
	}
	return &uploadService{
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
		store:      store,
		authorizer: authorizer,
		policy:     policy,
		logger:     logger,
	}
}

// Upload stores the body and then records the metadata row. Nothing is
// written to the store when authorization or validation fails, and no row
// is written when the storage put fails.
func (s *uploadService) Upload(ctx context.Context, req *roomSvc.UploadRequest) (*models.File, error) {
	ctx, span := tracer.Start(ctx, "upload",
		trace.WithAttributes(
			attribute.String("folder_id", req.FolderID),
			attribute.String("content_type", req.ContentType),
			attribute.Int64("size_bytes", req.Size),
		),
	)
	defer span.End()

	file, err := s.upload(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(domain.KindOf(err)))
		return nil, err
	}
	span.SetAttributes(attribute.String("file_id", file.ID))
	return file, nil
}

func (s *uploadService) upload(ctx context.Context, req *roomSvc.UploadRequest) (*models.File, error) {
	if err := requireID("folder_id", "folder", req.FolderID); err != nil {
		return nil, err
	}
	if err := s.authorizer.CanAccessFolder(ctx, req.UserID, req.FolderID); err != nil {
		return nil, err
	}
	folder, err := s.folderRepo.GetByIDOnly(ctx, req.FolderID)
	if err != nil {
		return nil, err
	}

	name, err := validateName("file", req.Name, config.MaxFileNameLength)
	if err != nil {
		return nil, err
	}
	if err := s.validateBody(req); err != nil {
		return nil, err
	}

	if err := checkFileNameAvailable(ctx, s.fileRepo, folder.ID, name, ""); err != nil {
		return nil, err
	}

	ref, err := s.store.Put(ctx, req.Body, req.Size, req.ContentType)
	if err != nil {
		return nil, domain.NewUpstream("store file", err)
	}

	file := &models.File{
		DataRoomID:  folder.DataRoomID,
		FolderID:    folder.ID,
		OwnerID:     req.UserID,
		Name:        name,
		MimeType:    config.NormalizeMediaType(req.ContentType),
		Size:        req.Size,
		StoragePath: ref,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := s.fileRepo.Create(ctx, file); err != nil {
		// The object has no row pointing at it; try to take it back out
		if delErr := s.store.Delete(ctx, ref); delErr != nil {
			s.logger.Error("upload rollback failed, object orphaned",
				"storage_path", ref,
				"error", delErr,
			)
		}
		return nil, err
	}

	s.logger.Info("file uploaded",
		"id", file.ID,
		"name", file.Name,
		"folder_id", file.FolderID,
		"size", file.Size,
		"user_id", req.UserID,
	)

	return file, nil
}

func (s *uploadService) validateBody(req *roomSvc.UploadRequest) error {
	if req.Body == nil {
		return fmt.Errorf("%w: file is required", domain.ErrValidation)
	}
	if !s.policy.Allows(req.ContentType) {
		return &domain.UnsupportedMediaTypeError{
			Message:     fmt.Sprintf("file type %q is not allowed", req.ContentType),
			ContentType: req.ContentType,
		}
	}
	if req.Size <= 0 {
		return fmt.Errorf("%w: file is empty", domain.ErrValidation)
	}
	if req.Size > s.policy.MaxBytes {
		return &domain.PayloadTooLargeError{
			Message:  fmt.Sprintf("file exceeds the %d byte limit", s.policy.MaxBytes),
			MaxBytes: s.policy.MaxBytes,
		}
	}
	return nil
}
