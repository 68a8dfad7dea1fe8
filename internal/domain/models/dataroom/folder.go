package dataroom

import "time"

type Folder struct {
	ID         string    `json:"id" db:"id"`
	DataRoomID string    `json:"data_room_id" db:"data_room_id"`
	ParentID   *string   `json:"parent_id" db:"parent_id"` // NULL = root level of the data room
	OwnerID    string    `json:"owner_id" db:"owner_id"`
	Name       string    `json:"name" db:"name"`
	ChildCount int       `json:"child_count"` // Computed, not stored
	FileCount  int       `json:"file_count"`  // Computed, not stored
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// IsRoot reports whether the folder sits directly under its data room.
func (f *Folder) IsRoot() bool {
	return f.ParentID == nil
}

// BreadcrumbItem is one step of the path from the data room root to a folder.
type BreadcrumbItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FolderPath is the breadcrumb view of a folder.
type FolderPath struct {
	Folder     *Folder          `json:"current_folder"`
	DataRoom   DataRoomRef      `json:"data_room"`
	Breadcrumb []BreadcrumbItem `json:"breadcrumb"`
}

// FolderContents holds the immediate children of a folder.
type FolderContents struct {
	Folder  *Folder  `json:"folder"`
	Folders []Folder `json:"folders"`
	Files   []File   `json:"files"`
}
