package dataroom

import "time"

// DataRoom is the top-level owned container and the root of every ownership chain.
type DataRoom struct {
	ID          string    `json:"id" db:"id"`
	OwnerID     string    `json:"owner_id" db:"owner_id"`
	Name        string    `json:"name" db:"name"`
	FolderCount int       `json:"folder_count"` // Computed, not stored
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// DataRoomDetail is a data room together with its root-level folders.
type DataRoomDetail struct {
	DataRoom
	Folders []Folder `json:"folders"`
}

// DataRoomRef is the minimal room reference embedded in folder views.
type DataRoomRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
