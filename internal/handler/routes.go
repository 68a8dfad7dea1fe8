package handler

import (
	"net/http"

	"dataroom/internal/domain"
	"dataroom/internal/httputil"
)

// Handlers groups every HTTP handler the API serves
type Handlers struct {
	Health   *HealthHandler
	Auth     *AuthHandler
	DataRoom *DataRoomHandler
	Folder   *FolderHandler
	File     *FileHandler
	Upload   *UploadHandler
}

// RegisterRoutes registers all routes on the mux (Go 1.22+ enhanced patterns)
func RegisterRoutes(mux *http.ServeMux, h *Handlers) {
	// Health check
	mux.HandleFunc("GET /health", h.Health.HealthCheck)

	// Auth routes
	mux.HandleFunc("POST /api/auth/google", h.Auth.LoginWithGoogle)
	mux.HandleFunc("GET /api/auth/me", h.Auth.Me)

	// Data room routes
	mux.HandleFunc("GET /api/data-rooms", h.DataRoom.ListDataRooms)
	mux.HandleFunc("POST /api/data-rooms", h.DataRoom.CreateDataRoom)
	mux.HandleFunc("GET /api/data-rooms/{id}", h.DataRoom.GetDataRoom)
	mux.HandleFunc("PATCH /api/data-rooms/{id}", h.DataRoom.RenameDataRoom)
	mux.HandleFunc("PUT /api/data-rooms/{id}", h.DataRoom.RenameDataRoom)
	mux.HandleFunc("DELETE /api/data-rooms/{id}", h.DataRoom.DeleteDataRoom)
	mux.HandleFunc("GET /api/data-rooms/{id}/tree", h.DataRoom.GetTree)

	// Folder routes
	mux.HandleFunc("POST /api/folders", h.Folder.CreateFolder)
	mux.HandleFunc("GET /api/folders/{id}", h.Folder.GetFolder)
	mux.HandleFunc("PATCH /api/folders/{id}", h.Folder.RenameFolder)
	mux.HandleFunc("PUT /api/folders/{id}", h.Folder.RenameFolder)
	mux.HandleFunc("DELETE /api/folders/{id}", h.Folder.DeleteFolder)
	mux.HandleFunc("GET /api/folders/{id}/contents", h.Folder.ListContents)
	mux.HandleFunc("GET /api/folders/{id}/breadcrumb", h.Folder.GetBreadcrumb)
	mux.HandleFunc("POST /api/folders/{id}/duplicate", h.Folder.DuplicateFolder)

	// File routes
	mux.HandleFunc("POST /api/files/upload", h.Upload.Upload)
	mux.HandleFunc("GET /api/files", h.File.ListFiles)
	mux.HandleFunc("GET /api/files/search", h.File.SearchFiles) // Literal segment wins over {id}
	mux.HandleFunc("GET /api/files/{id}", h.File.GetFile)
	mux.HandleFunc("PATCH /api/files/{id}", h.File.RenameFile)
	mux.HandleFunc("PUT /api/files/{id}", h.File.RenameFile)
	mux.HandleFunc("DELETE /api/files/{id}", h.File.DeleteFile)
	mux.HandleFunc("POST /api/files/{id}/duplicate", h.File.DuplicateFile)

	mux.HandleFunc("/", routeNotFound)
}

func routeNotFound(w http.ResponseWriter, r *http.Request) {
	httputil.RespondError(w, http.StatusNotFound, domain.KindNotFound, "route not found")
}
