package dataroom

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"dataroom/internal/config"
	"dataroom/internal/domain"
	models "dataroom/internal/domain/models/dataroom"
	roomRepo "dataroom/internal/domain/repositories/dataroom"
	"dataroom/internal/domain/services"
	roomSvc "dataroom/internal/domain/services/dataroom"
)

// treeService builds breadcrumbs and nested folder trees
type treeService struct {
	roomRepo   roomRepo.DataRoomRepository
	folderRepo roomRepo.FolderRepository
	fileRepo   roomRepo.FileRepository
	authorizer services.ResourceAuthorizer
	maxDepth   int
	logger     *slog.Logger
}

// NewTreeService creates a new tree service
func NewTreeService(
	roomRepo roomRepo.DataRoomRepository,
	folderRepo roomRepo.FolderRepository,
	fileRepo roomRepo.FileRepository,
	authorizer services.ResourceAuthorizer,
	logger *slog.Logger,
) roomSvc.TreeService {
	return &treeService{
		roomRepo:   roomRepo,
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
		authorizer: authorizer,
		maxDepth:   config.MaxFolderDepth,
		logger:     logger,
	}
}

// walkParents returns start followed by each of its ancestors up to the
// root folder. A revisited ID or a chain longer than maxDepth fails with
// domain.ErrHierarchyCycle; a dangling parent pointer is not found.
func walkParents(ctx context.Context, repo roomRepo.FolderRepository, start *models.Folder, maxDepth int) ([]models.Folder, error) {
	chain := []models.Folder{*start}
	visited := map[string]bool{start.ID: true}

	current := start
	for current.ParentID != nil {
		parentID := *current.ParentID
		if visited[parentID] {
			return nil, fmt.Errorf("%w: folder %s is its own ancestor", domain.ErrHierarchyCycle, parentID)
		}
		if len(chain) >= maxDepth {
			return nil, fmt.Errorf("%w: chain from folder %s exceeds %d levels", domain.ErrHierarchyCycle, start.ID, maxDepth)
		}
		visited[parentID] = true

		parent, err := repo.GetByIDOnly(ctx, parentID)
		if err != nil {
			return nil, err
		}
		chain = append(chain, *parent)
		current = parent
	}
	return chain, nil
}

// BuildBreadcrumb returns the path from the room root down to and including the folder
func (s *treeService) BuildBreadcrumb(ctx context.Context, folderID string) ([]models.BreadcrumbItem, error) {
	folder, err := s.folderRepo.GetByIDOnly(ctx, folderID)
	if err != nil {
		return nil, err
	}

	chain, err := walkParents(ctx, s.folderRepo, folder, s.maxDepth)
	if err != nil {
		s.logger.Error("breadcrumb walk failed", "folder_id", folderID, "error", err)
		return nil, err
	}

	crumbs := make([]models.BreadcrumbItem, len(chain))
	for i, f := range chain {
		crumbs[len(chain)-1-i] = models.BreadcrumbItem{ID: f.ID, Name: f.Name}
	}
	return crumbs, nil
}

// GetFolderPath returns the folder, its room and its breadcrumb
func (s *treeService) GetFolderPath(ctx context.Context, userID, folderID string) (*models.FolderPath, error) {
	if err := requireID("id", "folder", folderID); err != nil {
		return nil, err
	}
	if err := s.authorizer.CanAccessFolder(ctx, userID, folderID); err != nil {
		return nil, err
	}

	folder, err := s.folderRepo.GetWithCounts(ctx, folderID)
	if err != nil {
		return nil, err
	}
	room, err := s.roomRepo.GetByIDOnly(ctx, folder.DataRoomID)
	if err != nil {
		return nil, err
	}
	crumbs, err := s.BuildBreadcrumb(ctx, folderID)
	if err != nil {
		return nil, err
	}

	return &models.FolderPath{
		Folder:     folder,
		DataRoom:   models.DataRoomRef{ID: room.ID, Name: room.Name},
		Breadcrumb: crumbs,
	}, nil
}

// GetDataRoomTree builds the nested folder/file tree of a room.
// Folders are linked in three passes over a flat arena: create nodes,
// attach files, attach children. Only nodes reachable from a root folder
// end up in the tree, so orphans and cycles are dropped instead of looping.
func (s *treeService) GetDataRoomTree(ctx context.Context, userID, dataRoomID string) (*models.TreeNode, error) {
	if err := requireID("id", "data room", dataRoomID); err != nil {
		return nil, err
	}
	room, err := s.roomRepo.GetByID(ctx, dataRoomID, userID)
	if err != nil {
		return nil, err
	}

	folders, err := s.folderRepo.GetAllByDataRoom(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	files, err := s.fileRepo.GetAllByDataRoom(ctx, room.ID)
	if err != nil {
		return nil, err
	}

	// Pass 1: one node per folder
	nodes := make(map[string]*models.FolderTreeNode, len(folders))
	for _, f := range folders {
		nodes[f.ID] = &models.FolderTreeNode{
			ID:        f.ID,
			Name:      f.Name,
			ParentID:  f.ParentID,
			CreatedAt: f.CreatedAt,
			Folders:   []*models.FolderTreeNode{},
			Files:     []models.FileTreeNode{},
		}
	}

	// Pass 2: files under their folders
	for _, f := range files {
		node, ok := nodes[f.FolderID]
		if !ok {
			continue
		}
		node.Files = append(node.Files, models.FileTreeNode{
			ID:        f.ID,
			Name:      f.Name,
			FolderID:  f.FolderID,
			MimeType:  f.MimeType,
			Size:      f.Size,
			UpdatedAt: f.UpdatedAt,
		})
	}

	// Pass 3: children under parents
	roots := []*models.FolderTreeNode{}
	for _, f := range folders {
		node := nodes[f.ID]
		if f.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		if parent, ok := nodes[*f.ParentID]; ok {
			parent.Folders = append(parent.Folders, node)
		}
	}

	reached := 0
	seen := map[string]bool{}
	var sortTree func(list []*models.FolderTreeNode) []*models.FolderTreeNode
	sortTree = func(list []*models.FolderTreeNode) []*models.FolderTreeNode {
		kept := list[:0]
		for _, n := range list {
			if seen[n.ID] {
				continue
			}
			seen[n.ID] = true
			reached++
			kept = append(kept, n)
		}
		sort.SliceStable(kept, func(i, j int) bool { return lessName(kept[i].Name, kept[j].Name) })
		for _, n := range kept {
			sort.SliceStable(n.Files, func(i, j int) bool { return lessName(n.Files[i].Name, n.Files[j].Name) })
			n.Folders = sortTree(n.Folders)
		}
		return kept
	}
	roots = sortTree(roots)

	if reached != len(folders) {
		s.logger.Warn("data room tree has unreachable folders",
			"data_room_id", room.ID,
			"folders", len(folders),
			"reachable", reached,
		)
	}

	return &models.TreeNode{
		DataRoom: models.DataRoomRef{ID: room.ID, Name: room.Name},
		Folders:  roots,
	}, nil
}
