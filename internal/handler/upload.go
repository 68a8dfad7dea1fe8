package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"dataroom/internal/domain"
	roomSvc "dataroom/internal/domain/services/dataroom"
	"dataroom/internal/httputil"
)

const (
	// multipartOverhead is allowed on top of the file ceiling for headers and form fields
	multipartOverhead = 1 << 20
	// multipartMemory is kept in memory before parts spill to temporary files
	multipartMemory = 8 << 20
)

// UploadHandler accepts multipart file uploads
type UploadHandler struct {
	uploadService roomSvc.UploadService
	maxBytes      int64
	logger        *slog.Logger
}

// NewUploadHandler creates a new upload handler. maxBytes bounds the request
// body so oversized uploads are cut off before they are fully read.
func NewUploadHandler(uploadService roomSvc.UploadService, maxBytes int64, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{
		uploadService: uploadService,
		maxBytes:      maxBytes,
		logger:        logger,
	}
}

// Upload stores one file in a folder
// POST /api/files/upload (multipart: file, name, folder_id)
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || r.ContentLength > h.maxBytes+multipartOverhead {
			handleError(w, r, h.logger, &domain.PayloadTooLargeError{
				Message:  fmt.Sprintf("file exceeds the %d byte limit", h.maxBytes),
				MaxBytes: h.maxBytes,
			})
			return
		}
		handleError(w, r, h.logger, fmt.Errorf("%w: expected a multipart form", domain.ErrValidation))
		return
	}
	defer r.MultipartForm.RemoveAll()

	req := &roomSvc.UploadRequest{
		UserID:   httputil.GetUserID(r),
		FolderID: r.FormValue("folder_id"),
		Name:     r.FormValue("name"),
	}

	// A missing file is reported by the service after the folder is authorized
	file, header, err := r.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()
		if req.Name == "" {
			req.Name = header.Filename
		}
		req.Size = header.Size
		req.Body = file
		req.ContentType, err = contentType(header, file)
		if err != nil {
			handleError(w, r, h.logger, domain.NewUpstream("read upload", err))
			return
		}
	case !errors.Is(err, http.ErrMissingFile):
		handleError(w, r, h.logger, fmt.Errorf("%w: unreadable file part", domain.ErrValidation))
		return
	}

	created, err := h.uploadService.Upload(r.Context(), req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, created)
}

// contentType returns the declared part type, sniffing the content when the
// client sent none.
func contentType(header *multipart.FileHeader, file multipart.File) (string, error) {
	if declared := header.Header.Get("Content-Type"); declared != "" {
		return declared, nil
	}

	buf := make([]byte, 512)
	n, err := io.ReadFull(file, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return http.DetectContentType(buf[:n]), nil
}
