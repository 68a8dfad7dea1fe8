package dataroom

import (
	"context"
	"fmt"

	"dataroom/internal/domain"
	models "dataroom/internal/domain/models/dataroom"
	roomRepo "dataroom/internal/domain/repositories/dataroom"
	"dataroom/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresDataRoomRepository implements the DataRoomRepository interface
type PostgresDataRoomRepository struct {
	pool *pgxpool.Pool
}

// NewDataRoomRepository creates a new data room repository
func NewDataRoomRepository(config *postgres.RepositoryConfig) roomRepo.DataRoomRepository {
	return &PostgresDataRoomRepository{pool: config.Pool}
}

// Create creates a new data room
func (r *PostgresDataRoomRepository) Create(ctx context.Context, room *models.DataRoom) error {
	query := `
		INSERT INTO data_rooms (owner_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		room.OwnerID,
		room.Name,
		room.CreatedAt,
		room.UpdatedAt,
	).Scan(&room.ID, &room.CreatedAt, &room.UpdatedAt)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return r.conflict(ctx, room.OwnerID, room.Name)
		}
		if postgres.IsPgForeignKeyError(err) {
			return domain.NewNotFound("user", room.OwnerID)
		}
		return domain.NewUpstream("create data room", err)
	}

	return nil
}

// GetByID retrieves a data room owned by ownerID
func (r *PostgresDataRoomRepository) GetByID(ctx context.Context, id, ownerID string) (*models.DataRoom, error) {
	query := `
		SELECT id, owner_id, name, created_at, updated_at,
		       (SELECT COUNT(*) FROM folders f WHERE f.data_room_id = dr.id) AS folder_count
		FROM data_rooms dr
		WHERE id = $1 AND owner_id = $2
	`

	var room models.DataRoom
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id, ownerID).Scan(
		&room.ID,
		&room.OwnerID,
		&room.Name,
		&room.CreatedAt,
		&room.UpdatedAt,
		&room.FolderCount,
	)
	if err != nil {
		return nil, postgres.TranslateLookupError(err, "data room", id, "get data room")
	}

	return &room, nil
}

// GetByIDOnly retrieves a data room without ownership scoping
func (r *PostgresDataRoomRepository) GetByIDOnly(ctx context.Context, id string) (*models.DataRoom, error) {
	query := `
		SELECT id, owner_id, name, created_at, updated_at
		FROM data_rooms
		WHERE id = $1
	`

	var room models.DataRoom
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(
		&room.ID,
		&room.OwnerID,
		&room.Name,
		&room.CreatedAt,
		&room.UpdatedAt,
	)
	if err != nil {
		return nil, postgres.TranslateLookupError(err, "data room", id, "get data room")
	}

	return &room, nil
}

// FindByName looks up an owner's room by exact name
func (r *PostgresDataRoomRepository) FindByName(ctx context.Context, ownerID, name string) (*models.DataRoom, error) {
	query := `
		SELECT id, owner_id, name, created_at, updated_at
		FROM data_rooms
		WHERE owner_id = $1 AND name = $2
	`

	var room models.DataRoom
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, ownerID, name).Scan(
		&room.ID,
		&room.OwnerID,
		&room.Name,
		&room.CreatedAt,
		&room.UpdatedAt,
	)
	if err != nil {
		return nil, postgres.TranslateLookupError(err, "data room", name, "find data room")
	}

	return &room, nil
}

// List retrieves one page of an owner's rooms, ordered by updated_at DESC
func (r *PostgresDataRoomRepository) List(ctx context.Context, ownerID string, offset, limit int) ([]models.DataRoom, int, error) {
	executor := postgres.GetExecutor(ctx, r.pool)

	var total int
	if err := executor.QueryRow(ctx, `SELECT COUNT(*) FROM data_rooms WHERE owner_id = $1`, ownerID).Scan(&total); err != nil {
		return nil, 0, domain.NewUpstream("count data rooms", err)
	}

	query := `
		SELECT id, owner_id, name, created_at, updated_at,
		       (SELECT COUNT(*) FROM folders f WHERE f.data_room_id = dr.id) AS folder_count
		FROM data_rooms dr
		WHERE owner_id = $1
		ORDER BY updated_at DESC, id
		LIMIT $2 OFFSET $3
	`

	rows, err := executor.Query(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, 0, domain.NewUpstream("list data rooms", err)
	}
	defer rows.Close()

	rooms := []models.DataRoom{}
	for rows.Next() {
		var room models.DataRoom
		err := rows.Scan(
			&room.ID,
			&room.OwnerID,
			&room.Name,
			&room.CreatedAt,
			&room.UpdatedAt,
			&room.FolderCount,
		)
		if err != nil {
			return nil, 0, domain.NewUpstream("scan data room", err)
		}
		rooms = append(rooms, room)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, domain.NewUpstream("iterate data rooms", err)
	}

	return rooms, total, nil
}

// Update updates a room's name and updated_at timestamp
func (r *PostgresDataRoomRepository) Update(ctx context.Context, room *models.DataRoom) error {
	query := `
		UPDATE data_rooms
		SET name = $1, updated_at = $2
		WHERE id = $3 AND owner_id = $4
	`

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		room.Name,
		room.UpdatedAt,
		room.ID,
		room.OwnerID,
	)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return r.conflict(ctx, room.OwnerID, room.Name)
		}
		return domain.NewUpstream("update data room", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFound("data room", room.ID)
	}

	return nil
}

// Delete removes a room. Folders and files go with it via ON DELETE CASCADE.
func (r *PostgresDataRoomRepository) Delete(ctx context.Context, id, ownerID string) error {
	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, `DELETE FROM data_rooms WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		if postgres.IsPgInvalidTextError(err) {
			return domain.NewNotFound("data room", id)
		}
		return domain.NewUpstream("delete data room", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFound("data room", id)
	}

	return nil
}

// conflict builds a ConflictError pointing at the room that already holds the name
func (r *PostgresDataRoomRepository) conflict(ctx context.Context, ownerID, name string) error {
	conflictErr := &domain.ConflictError{
		Message:      fmt.Sprintf("a data room named %q already exists", name),
		ResourceType: "data_room",
	}
	if existing, err := r.FindByName(ctx, ownerID, name); err == nil {
		conflictErr.ResourceID = existing.ID
	}
	return conflictErr
}
