package dataroom

import (
	"context"
	"fmt"

	"dataroom/internal/domain"
	models "dataroom/internal/domain/models/dataroom"
	roomRepo "dataroom/internal/domain/repositories/dataroom"
	"dataroom/internal/repository/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// folderColumns selects a folder row plus its computed counts
const folderColumns = `
	f.id, f.data_room_id, f.parent_id, f.owner_id, f.name, f.created_at, f.updated_at,
	(SELECT COUNT(*) FROM folders c WHERE c.parent_id = f.id) AS child_count,
	(SELECT COUNT(*) FROM files fi WHERE fi.folder_id = f.id) AS file_count
`

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	pool *pgxpool.Pool
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *postgres.RepositoryConfig) roomRepo.FolderRepository {
	return &PostgresFolderRepository{pool: config.Pool}
}

// Create creates a new folder.
// The sibling-name unique indexes close the race between two concurrent creators.
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	query := `
		INSERT INTO folders (data_room_id, parent_id, owner_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		folder.DataRoomID,
		folder.ParentID,
		folder.OwnerID,
		folder.Name,
		folder.CreatedAt,
		folder.UpdatedAt,
	).Scan(&folder.ID, &folder.CreatedAt, &folder.UpdatedAt)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return r.conflict(ctx, folder.DataRoomID, folder.ParentID, folder.Name)
		}
		if postgres.IsPgForeignKeyError(err) {
			// Parent vanished or sits in another room (composite FK)
			if folder.ParentID != nil {
				return domain.NewNotFound("folder", *folder.ParentID)
			}
			return domain.NewNotFound("data room", folder.DataRoomID)
		}
		return domain.NewUpstream("create folder", err)
	}

	folder.ChildCount = 0
	folder.FileCount = 0
	return nil
}

// GetByIDOnly retrieves a folder by ID without ownership scoping
func (r *PostgresFolderRepository) GetByIDOnly(ctx context.Context, id string) (*models.Folder, error) {
	query := `
		SELECT id, data_room_id, parent_id, owner_id, name, created_at, updated_at
		FROM folders
		WHERE id = $1
	`

	var folder models.Folder
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(
		&folder.ID,
		&folder.DataRoomID,
		&folder.ParentID,
		&folder.OwnerID,
		&folder.Name,
		&folder.CreatedAt,
		&folder.UpdatedAt,
	)
	if err != nil {
		return nil, postgres.TranslateLookupError(err, "folder", id, "get folder")
	}

	return &folder, nil
}

// GetWithCounts retrieves a folder with its child and file counts
func (r *PostgresFolderRepository) GetWithCounts(ctx context.Context, id string) (*models.Folder, error) {
	query := `SELECT ` + folderColumns + ` FROM folders f WHERE f.id = $1`

	executor := postgres.GetExecutor(ctx, r.pool)
	folder, err := scanFolder(executor.QueryRow(ctx, query, id))
	if err != nil {
		return nil, postgres.TranslateLookupError(err, "folder", id, "get folder")
	}

	return folder, nil
}

// FindByName looks up a sibling by exact name
func (r *PostgresFolderRepository) FindByName(ctx context.Context, dataRoomID string, parentID *string, name string) (*models.Folder, error) {
	var row pgx.Row
	executor := postgres.GetExecutor(ctx, r.pool)

	if parentID == nil {
		query := `SELECT ` + folderColumns + `
			FROM folders f
			WHERE f.data_room_id = $1 AND f.parent_id IS NULL AND f.name = $2`
		row = executor.QueryRow(ctx, query, dataRoomID, name)
	} else {
		query := `SELECT ` + folderColumns + `
			FROM folders f
			WHERE f.data_room_id = $1 AND f.parent_id = $2 AND f.name = $3`
		row = executor.QueryRow(ctx, query, dataRoomID, *parentID, name)
	}

	folder, err := scanFolder(row)
	if err != nil {
		return nil, postgres.TranslateLookupError(err, "folder", name, "find folder")
	}

	return folder, nil
}

// Update updates a folder's name and updated_at timestamp
func (r *PostgresFolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	query := `
		UPDATE folders
		SET name = $1, updated_at = $2
		WHERE id = $3
	`

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, folder.Name, folder.UpdatedAt, folder.ID)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return r.conflict(ctx, folder.DataRoomID, folder.ParentID, folder.Name)
		}
		return domain.NewUpstream("update folder", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFound("folder", folder.ID)
	}

	return nil
}

// Delete removes a folder. Child folders and files cascade.
func (r *PostgresFolderRepository) Delete(ctx context.Context, id string) error {
	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, `DELETE FROM folders WHERE id = $1`, id)
	if err != nil {
		if postgres.IsPgInvalidTextError(err) {
			return domain.NewNotFound("folder", id)
		}
		return domain.NewUpstream("delete folder", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFound("folder", id)
	}

	return nil
}

// ListChildren lists immediate child folders with counts
func (r *PostgresFolderRepository) ListChildren(ctx context.Context, dataRoomID string, parentID *string) ([]models.Folder, error) {
	var rows pgx.Rows
	var err error
	executor := postgres.GetExecutor(ctx, r.pool)

	if parentID == nil {
		query := `SELECT ` + folderColumns + `
			FROM folders f
			WHERE f.data_room_id = $1 AND f.parent_id IS NULL
			ORDER BY LOWER(f.name), f.name`
		rows, err = executor.Query(ctx, query, dataRoomID)
	} else {
		query := `SELECT ` + folderColumns + `
			FROM folders f
			WHERE f.data_room_id = $1 AND f.parent_id = $2
			ORDER BY LOWER(f.name), f.name`
		rows, err = executor.Query(ctx, query, dataRoomID, *parentID)
	}
	if err != nil {
		return nil, domain.NewUpstream("list child folders", err)
	}

	return collectFolders(rows)
}

// GetAllByDataRoom retrieves all folders in a room (flat list)
func (r *PostgresFolderRepository) GetAllByDataRoom(ctx context.Context, dataRoomID string) ([]models.Folder, error) {
	query := `SELECT ` + folderColumns + `
		FROM folders f
		WHERE f.data_room_id = $1
		ORDER BY LOWER(f.name), f.name`

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, dataRoomID)
	if err != nil {
		return nil, domain.NewUpstream("list folders", err)
	}

	return collectFolders(rows)
}

// conflict builds a ConflictError pointing at the sibling that holds the name
func (r *PostgresFolderRepository) conflict(ctx context.Context, dataRoomID string, parentID *string, name string) error {
	conflictErr := &domain.ConflictError{
		Message:      fmt.Sprintf("a folder named %q already exists in this location", name),
		ResourceType: "folder",
	}
	if existing, err := r.FindByName(ctx, dataRoomID, parentID, name); err == nil {
		conflictErr.ResourceID = existing.ID
	}
	return conflictErr
}

func scanFolder(row pgx.Row) (*models.Folder, error) {
	var folder models.Folder
	err := row.Scan(
		&folder.ID,
		&folder.DataRoomID,
		&folder.ParentID,
		&folder.OwnerID,
		&folder.Name,
		&folder.CreatedAt,
		&folder.UpdatedAt,
		&folder.ChildCount,
		&folder.FileCount,
	)
	if err != nil {
		return nil, err
	}
	return &folder, nil
}

func collectFolders(rows pgx.Rows) ([]models.Folder, error) {
	defer rows.Close()

	folders := []models.Folder{}
	for rows.Next() {
		folder, err := scanFolder(rows)
		if err != nil {
			return nil, domain.NewUpstream("scan folder", err)
		}
		folders = append(folders, *folder)
	}

	if err := rows.Err(); err != nil {
		return nil, domain.NewUpstream("iterate folders", err)
	}

	return folders, nil
}
