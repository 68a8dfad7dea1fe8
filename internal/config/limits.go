package config

const (
	// MaxDataRoomNameLength is the maximum length for data room names.
	MaxDataRoomNameLength = 100

	// MaxFolderNameLength is the maximum length for folder names.
	// Same as data room names for consistency.
	MaxFolderNameLength = 100

	// MaxFileNameLength is the maximum length for file names.
	// Limited to 255 to match common filesystem limits so downloads
	// keep their original names.
	MaxFileNameLength = 255

	// MaxFolderDepth bounds every walk up a parent chain. Folders are only
	// created under authorized parents, so real trees stay far below this.
	MaxFolderDepth = 64

	// DefaultMaxUploadBytes is the upload ceiling when none is configured (50 MiB).
	DefaultMaxUploadBytes int64 = 50 << 20

	// Pagination defaults
	DefaultDataRoomPageLimit = 10
	DefaultFilePageLimit     = 20
	MaxPageLimit             = 100

	// CopySuffix is appended to the name of a duplicated folder or file.
	CopySuffix = " (Copy)"
)
