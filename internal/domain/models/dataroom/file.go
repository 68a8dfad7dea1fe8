package dataroom

import "time"

// File is the metadata row for an uploaded object.
// Several rows may share one StoragePath after a duplicate.
type File struct {
	ID          string    `json:"id" db:"id"`
	DataRoomID  string    `json:"data_room_id" db:"data_room_id"` // Denormalized from the folder
	FolderID    string    `json:"folder_id" db:"folder_id"`
	OwnerID     string    `json:"owner_id" db:"owner_id"`
	Name        string    `json:"name" db:"name"`
	MimeType    string    `json:"mime_type" db:"mime_type"`
	Size        int64     `json:"size" db:"size"`
	StoragePath string    `json:"-" db:"storage_path"` // Opaque storage reference, never returned
	URL         string    `json:"url,omitempty"`       // Resolved from storage on single-file reads
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
