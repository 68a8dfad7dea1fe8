package handler

import (
	"log/slog"
	"net/http"

	models "dataroom/internal/domain/models/dataroom"
	roomSvc "dataroom/internal/domain/services/dataroom"
	"dataroom/internal/httputil"
)

// FolderHandler handles folder HTTP requests
type FolderHandler struct {
	folderService roomSvc.FolderService
	treeService   roomSvc.TreeService
	logger        *slog.Logger
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(folderService roomSvc.FolderService, treeService roomSvc.TreeService, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{
		folderService: folderService,
		treeService:   treeService,
		logger:        logger,
	}
}

// CreateFolder creates a new folder
// POST /api/folders
// Returns 201 if created, 409 if a sibling already has the name
func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req roomSvc.CreateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	req.UserID = httputil.GetUserID(r)

	folder, err := h.folderService.CreateFolder(r.Context(), &req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, folder)
}

// GetFolder retrieves a folder with its child counts
// GET /api/folders/{id}
func (h *FolderHandler) GetFolder(w http.ResponseWriter, r *http.Request) {
	folder, err := h.folderService.GetFolder(r.Context(), httputil.GetUserID(r), pathID(r))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// RenameFolder renames a folder
// PATCH /api/folders/{id}
func (h *FolderHandler) RenameFolder(w http.ResponseWriter, r *http.Request) {
	var req roomSvc.RenameRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	folder, err := h.folderService.RenameFolder(r.Context(), httputil.GetUserID(r), pathID(r), &req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// DeleteFolder deletes a folder and everything below it
// DELETE /api/folders/{id}
func (h *FolderHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	if err := h.folderService.DeleteFolder(r.Context(), httputil.GetUserID(r), pathID(r)); err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondMessage(w, http.StatusOK, "Folder deleted successfully")
}

// ListContents lists the child folders and files of a folder
// GET /api/folders/{id}/contents?sort=&order=
func (h *FolderHandler) ListContents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	opts := models.ListOptions{
		Sort:  models.SortField(query.Get("sort")),
		Order: models.SortOrder(query.Get("order")),
	}

	contents, err := h.folderService.ListContents(r.Context(), httputil.GetUserID(r), pathID(r), opts)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, contents)
}

// GetBreadcrumb returns the folder, its data room and the path from the room root
// GET /api/folders/{id}/breadcrumb
func (h *FolderHandler) GetBreadcrumb(w http.ResponseWriter, r *http.Request) {
	path, err := h.treeService.GetFolderPath(r.Context(), httputil.GetUserID(r), pathID(r))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, path)
}

// DuplicateFolder copies a folder and its subtree
// POST /api/folders/{id}/duplicate
func (h *FolderHandler) DuplicateFolder(w http.ResponseWriter, r *http.Request) {
	folder, err := h.folderService.DuplicateFolder(r.Context(), httputil.GetUserID(r), pathID(r))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, folder)
}
