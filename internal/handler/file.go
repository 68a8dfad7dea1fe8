package handler

import (
	"log/slog"
	"net/http"

	roomSvc "dataroom/internal/domain/services/dataroom"
	"dataroom/internal/httputil"
)

// FileHandler handles file metadata HTTP requests
type FileHandler struct {
	fileService roomSvc.FileService
	logger      *slog.Logger
}

// NewFileHandler creates a new file handler
func NewFileHandler(fileService roomSvc.FileService, logger *slog.Logger) *FileHandler {
	return &FileHandler{
		fileService: fileService,
		logger:      logger,
	}
}

// ListFiles lists the files of one folder or one data room
// GET /api/files?folder_id=|data_room_id=&page=&limit=&file_type=...
func (h *FileHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	filters, err := parseFileFilters(r)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	page, err := httputil.QueryPage(r)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	query := r.URL.Query()
	files, pagination, err := h.fileService.ListFiles(r.Context(), httputil.GetUserID(r), &roomSvc.ListFilesRequest{
		FolderID:   query.Get("folder_id"),
		DataRoomID: query.Get("data_room_id"),
		Filters:    filters,
		Page:       page,
	})
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondPage(w, files, pagination)
}

// SearchFiles searches file names across the caller's data rooms
// GET /api/files/search?query=&data_room_id=&folder_id=&file_type=&date_from=&date_to=&size_min=&size_max=&page=&limit=
func (h *FileHandler) SearchFiles(w http.ResponseWriter, r *http.Request) {
	filters, err := parseFileFilters(r)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	page, err := httputil.QueryPage(r)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	query := r.URL.Query()
	files, pagination, err := h.fileService.SearchFiles(r.Context(), httputil.GetUserID(r), &roomSvc.SearchFilesRequest{
		Query:      query.Get("query"),
		DataRoomID: query.Get("data_room_id"),
		FolderID:   query.Get("folder_id"),
		Filters:    filters,
		Page:       page,
	})
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondPage(w, files, pagination)
}

// GetFile returns a file's metadata with a URL to its content
// GET /api/files/{id}
func (h *FileHandler) GetFile(w http.ResponseWriter, r *http.Request) {
	file, err := h.fileService.GetFile(r.Context(), httputil.GetUserID(r), pathID(r))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, file)
}

// RenameFile renames a file
// PATCH /api/files/{id}
func (h *FileHandler) RenameFile(w http.ResponseWriter, r *http.Request) {
	var req roomSvc.RenameRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	file, err := h.fileService.RenameFile(r.Context(), httputil.GetUserID(r), pathID(r), &req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, file)
}

// DeleteFile deletes a file
// DELETE /api/files/{id}
func (h *FileHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	if err := h.fileService.DeleteFile(r.Context(), httputil.GetUserID(r), pathID(r)); err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondMessage(w, http.StatusOK, "File deleted successfully")
}

// DuplicateFile copies a file within its folder
// POST /api/files/{id}/duplicate
func (h *FileHandler) DuplicateFile(w http.ResponseWriter, r *http.Request) {
	file, err := h.fileService.DuplicateFile(r.Context(), httputil.GetUserID(r), pathID(r))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, file)
}

func parseFileFilters(r *http.Request) (roomSvc.FileFilters, error) {
	var (
		filters roomSvc.FileFilters
		err     error
	)
	filters.MimeType = r.URL.Query().Get("file_type")
	if filters.DateFrom, err = httputil.QueryTime(r, "date_from"); err != nil {
		return filters, err
	}
	if filters.DateTo, err = httputil.QueryTime(r, "date_to"); err != nil {
		return filters, err
	}
	if filters.SizeMin, err = httputil.QueryInt64(r, "size_min"); err != nil {
		return filters, err
	}
	if filters.SizeMax, err = httputil.QueryInt64(r, "size_max"); err != nil {
		return filters, err
	}
	return filters, nil
}
