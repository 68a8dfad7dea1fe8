package handler

import (
	"log/slog"
	"net/http"

	roomSvc "dataroom/internal/domain/services/dataroom"
	"dataroom/internal/httputil"
)

// DataRoomHandler handles data room HTTP requests
type DataRoomHandler struct {
	dataRoomService roomSvc.DataRoomService
	treeService     roomSvc.TreeService
	logger          *slog.Logger
}

// NewDataRoomHandler creates a new data room handler
func NewDataRoomHandler(dataRoomService roomSvc.DataRoomService, treeService roomSvc.TreeService, logger *slog.Logger) *DataRoomHandler {
	return &DataRoomHandler{
		dataRoomService: dataRoomService,
		treeService:     treeService,
		logger:          logger,
	}
}

// ListDataRooms returns one page of the caller's data rooms
// GET /api/data-rooms?page=&limit=
func (h *DataRoomHandler) ListDataRooms(w http.ResponseWriter, r *http.Request) {
	page, err := httputil.QueryPage(r)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	rooms, pagination, err := h.dataRoomService.ListDataRooms(r.Context(), httputil.GetUserID(r), page)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondPage(w, rooms, pagination)
}

// CreateDataRoom creates a new data room
// POST /api/data-rooms
func (h *DataRoomHandler) CreateDataRoom(w http.ResponseWriter, r *http.Request) {
	var req roomSvc.CreateDataRoomRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	req.UserID = httputil.GetUserID(r)

	room, err := h.dataRoomService.CreateDataRoom(r.Context(), &req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, room)
}

// GetDataRoom returns a data room with its root folders
// GET /api/data-rooms/{id}
func (h *DataRoomHandler) GetDataRoom(w http.ResponseWriter, r *http.Request) {
	room, err := h.dataRoomService.GetDataRoom(r.Context(), httputil.GetUserID(r), pathID(r))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, room)
}

// RenameDataRoom renames a data room
// PATCH /api/data-rooms/{id}
func (h *DataRoomHandler) RenameDataRoom(w http.ResponseWriter, r *http.Request) {
	var req roomSvc.RenameRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	room, err := h.dataRoomService.RenameDataRoom(r.Context(), httputil.GetUserID(r), pathID(r), &req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, room)
}

// DeleteDataRoom deletes a data room with everything in it
// DELETE /api/data-rooms/{id}
func (h *DataRoomHandler) DeleteDataRoom(w http.ResponseWriter, r *http.Request) {
	if err := h.dataRoomService.DeleteDataRoom(r.Context(), httputil.GetUserID(r), pathID(r)); err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondMessage(w, http.StatusOK, "Data room deleted successfully")
}

// GetTree returns the nested folder/file tree of a data room
// GET /api/data-rooms/{id}/tree
func (h *DataRoomHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.treeService.GetDataRoomTree(r.Context(), httputil.GetUserID(r), pathID(r))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tree)
}
