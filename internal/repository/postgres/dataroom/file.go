package dataroom

import (
	"context"
	"fmt"
	"strings"

	"dataroom/internal/domain"
	models "dataroom/internal/domain/models/dataroom"
	roomRepo "dataroom/internal/domain/repositories/dataroom"
	"dataroom/internal/repository/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const fileColumns = `
	fi.id, fi.data_room_id, fi.folder_id, fi.owner_id, fi.name, fi.mime_type,
	fi.size, fi.storage_path, fi.created_at, fi.updated_at
`

// PostgresFileRepository implements the FileRepository interface
type PostgresFileRepository struct {
	pool *pgxpool.Pool
}

// NewFileRepository creates a new file repository
func NewFileRepository(config *postgres.RepositoryConfig) roomRepo.FileRepository {
	return &PostgresFileRepository{pool: config.Pool}
}

// Create inserts a file row
func (r *PostgresFileRepository) Create(ctx context.Context, file *models.File) error {
	query := `
		INSERT INTO files (data_room_id, folder_id, owner_id, name, mime_type, size, storage_path, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		file.DataRoomID,
		file.FolderID,
		file.OwnerID,
		file.Name,
		file.MimeType,
		file.Size,
		file.StoragePath,
		file.CreatedAt,
		file.UpdatedAt,
	).Scan(&file.ID, &file.CreatedAt, &file.UpdatedAt)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return r.conflict(ctx, file.FolderID, file.Name)
		}
		if postgres.IsPgForeignKeyError(err) {
			return domain.NewNotFound("folder", file.FolderID)
		}
		return domain.NewUpstream("create file", err)
	}

	return nil
}

// GetByIDOnly retrieves a file by ID without ownership scoping
func (r *PostgresFileRepository) GetByIDOnly(ctx context.Context, id string) (*models.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files fi WHERE fi.id = $1`

	executor := postgres.GetExecutor(ctx, r.pool)
	file, err := scanFile(executor.QueryRow(ctx, query, id))
	if err != nil {
		return nil, postgres.TranslateLookupError(err, "file", id, "get file")
	}

	return file, nil
}

// GetForShare retrieves a file and locks the row FOR SHARE when called in a transaction
func (r *PostgresFileRepository) GetForShare(ctx context.Context, id string) (*models.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files fi WHERE fi.id = $1 FOR SHARE`

	executor := postgres.GetExecutor(ctx, r.pool)
	file, err := scanFile(executor.QueryRow(ctx, query, id))
	if err != nil {
		return nil, postgres.TranslateLookupError(err, "file", id, "lock file")
	}

	return file, nil
}

// LockStoragePath locks the rows sharing a storage object, in ID order so
// concurrent deletes of copies cannot deadlock
func (r *PostgresFileRepository) LockStoragePath(ctx context.Context, storagePath string) error {
	query := `SELECT id FROM files WHERE storage_path = $1 ORDER BY id FOR UPDATE`

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, storagePath); err != nil {
		return domain.NewUpstream("lock storage references", err)
	}
	return nil
}

// FindByName looks up a file in a folder by exact name
func (r *PostgresFileRepository) FindByName(ctx context.Context, folderID, name string) (*models.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files fi WHERE fi.folder_id = $1 AND fi.name = $2`

	executor := postgres.GetExecutor(ctx, r.pool)
	file, err := scanFile(executor.QueryRow(ctx, query, folderID, name))
	if err != nil {
		return nil, postgres.TranslateLookupError(err, "file", name, "find file")
	}

	return file, nil
}

// Update updates a file's name and updated_at timestamp
func (r *PostgresFileRepository) Update(ctx context.Context, file *models.File) error {
	query := `
		UPDATE files
		SET name = $1, updated_at = $2
		WHERE id = $3
	`

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, file.Name, file.UpdatedAt, file.ID)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return r.conflict(ctx, file.FolderID, file.Name)
		}
		return domain.NewUpstream("update file", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFound("file", file.ID)
	}

	return nil
}

// Delete removes a file row
func (r *PostgresFileRepository) Delete(ctx context.Context, id string) error {
	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, `DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		if postgres.IsPgInvalidTextError(err) {
			return domain.NewNotFound("file", id)
		}
		return domain.NewUpstream("delete file", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFound("file", id)
	}

	return nil
}

// ListByFolder lists the files directly inside a folder
func (r *PostgresFileRepository) ListByFolder(ctx context.Context, folderID string) ([]models.File, error) {
	query := `SELECT ` + fileColumns + `
		FROM files fi
		WHERE fi.folder_id = $1
		ORDER BY LOWER(fi.name), fi.name`

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, folderID)
	if err != nil {
		return nil, domain.NewUpstream("list files in folder", err)
	}

	return collectFiles(rows)
}

// Query returns one page of matching files plus the total match count
func (r *PostgresFileRepository) Query(ctx context.Context, q *models.FileQuery) ([]models.File, int, error) {
	where, args := buildFileFilter(q)
	executor := postgres.GetExecutor(ctx, r.pool)

	var total int
	countQuery := `SELECT COUNT(*) FROM files fi JOIN data_rooms dr ON dr.id = fi.data_room_id WHERE ` + where
	if err := executor.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		if postgres.IsPgInvalidTextError(err) {
			return []models.File{}, 0, nil
		}
		return nil, 0, domain.NewUpstream("count files", err)
	}

	query := fmt.Sprintf(`SELECT %s
		FROM files fi
		JOIN data_rooms dr ON dr.id = fi.data_room_id
		WHERE %s
		ORDER BY fi.name ASC, fi.id
		LIMIT $%d OFFSET $%d`, fileColumns, where, len(args)+1, len(args)+2)
	args = append(args, q.Limit, q.Offset)

	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, domain.NewUpstream("query files", err)
	}

	files, err := collectFiles(rows)
	if err != nil {
		return nil, 0, err
	}
	return files, total, nil
}

// GetAllByDataRoom retrieves all files in a room (flat list)
func (r *PostgresFileRepository) GetAllByDataRoom(ctx context.Context, dataRoomID string) ([]models.File, error) {
	query := `SELECT ` + fileColumns + `
		FROM files fi
		WHERE fi.data_room_id = $1
		ORDER BY LOWER(fi.name), fi.name`

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, dataRoomID)
	if err != nil {
		return nil, domain.NewUpstream("list files in data room", err)
	}

	return collectFiles(rows)
}

// StoragePathsUnderFolder returns the storage paths of the folder's whole subtree.
// UNION (not UNION ALL) makes the walk terminate even on a corrupted cyclic chain.
func (r *PostgresFileRepository) StoragePathsUnderFolder(ctx context.Context, folderID string) ([]string, error) {
	query := `
		WITH RECURSIVE subtree AS (
			SELECT id FROM folders WHERE id = $1
			UNION
			SELECT f.id FROM folders f JOIN subtree s ON f.parent_id = s.id
		)
		SELECT DISTINCT fi.storage_path
		FROM files fi
		JOIN subtree s ON fi.folder_id = s.id
	`
	return r.queryPaths(ctx, query, folderID)
}

// StoragePathsByDataRoom returns the storage paths of every file in a room
func (r *PostgresFileRepository) StoragePathsByDataRoom(ctx context.Context, dataRoomID string) ([]string, error) {
	return r.queryPaths(ctx, `SELECT DISTINCT storage_path FROM files WHERE data_room_id = $1`, dataRoomID)
}

// CountByStoragePath counts file rows referencing a storage object
func (r *PostgresFileRepository) CountByStoragePath(ctx context.Context, storagePath string) (int, error) {
	var count int
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, `SELECT COUNT(*) FROM files WHERE storage_path = $1`, storagePath).Scan(&count)
	if err != nil {
		return 0, domain.NewUpstream("count storage references", err)
	}
	return count, nil
}

func (r *PostgresFileRepository) queryPaths(ctx context.Context, query, id string) ([]string, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, id)
	if err != nil {
		return nil, domain.NewUpstream("list storage paths", err)
	}
	defer rows.Close()

	paths := []string{}
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, domain.NewUpstream("scan storage path", err)
		}
		paths = append(paths, path)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewUpstream("iterate storage paths", err)
	}
	return paths, nil
}

// conflict builds a ConflictError pointing at the file that holds the name
func (r *PostgresFileRepository) conflict(ctx context.Context, folderID, name string) error {
	conflictErr := &domain.ConflictError{
		Message:      fmt.Sprintf("a file named %q already exists in this folder", name),
		ResourceType: "file",
	}
	if existing, err := r.FindByName(ctx, folderID, name); err == nil {
		conflictErr.ResourceID = existing.ID
	}
	return conflictErr
}

// buildFileFilter turns a FileQuery into a WHERE clause and its positional args.
// The owner condition is always first so a query can never escape the caller's rooms.
func buildFileFilter(q *models.FileQuery) (string, []interface{}) {
	conditions := []string{"dr.owner_id = $1"}
	args := []interface{}{q.OwnerID}

	add := func(condition string, arg interface{}) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(condition, len(args)))
	}

	if q.Query != "" {
		add(`fi.name ILIKE $%d ESCAPE '\'`, "%"+escapeLike(q.Query)+"%")
	}
	if q.DataRoomID != "" {
		add("fi.data_room_id = $%d", q.DataRoomID)
	}
	if q.FolderID != "" {
		add("fi.folder_id = $%d", q.FolderID)
	}
	if q.MimeType != "" {
		add("fi.mime_type = $%d", q.MimeType)
	}
	if q.DateFrom != nil {
		add("fi.created_at >= $%d", *q.DateFrom)
	}
	if q.DateTo != nil {
		add("fi.created_at <= $%d", *q.DateTo)
	}
	if q.SizeMin != nil {
		add("fi.size >= $%d", *q.SizeMin)
	}
	if q.SizeMax != nil {
		add("fi.size <= $%d", *q.SizeMax)
	}

	return strings.Join(conditions, " AND "), args
}

// escapeLike escapes LIKE wildcards so user input matches literally
func escapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}

func scanFile(row pgx.Row) (*models.File, error) {
	var file models.File
	err := row.Scan(
		&file.ID,
		&file.DataRoomID,
		&file.FolderID,
		&file.OwnerID,
		&file.Name,
		&file.MimeType,
		&file.Size,
		&file.StoragePath,
		&file.CreatedAt,
		&file.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &file, nil
}

func collectFiles(rows pgx.Rows) ([]models.File, error) {
	defer rows.Close()

	files := []models.File{}
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, domain.NewUpstream("scan file", err)
		}
		files = append(files, *file)
	}

	if err := rows.Err(); err != nil {
		return nil, domain.NewUpstream("iterate files", err)
	}

	return files, nil
}
