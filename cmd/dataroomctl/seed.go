package main

import (
	"context"
	"errors"
	"fmt"

	"dataroom/internal/domain"
	"dataroom/internal/domain/models"
	"dataroom/internal/domain/repositories"
	roomSvc "dataroom/internal/domain/services/dataroom"
	"dataroom/internal/repository/postgres"
	postgresRoom "dataroom/internal/repository/postgres/dataroom"
	authService "dataroom/internal/service/auth"
	roomService "dataroom/internal/service/dataroom"

	"github.com/spf13/cobra"
)

var (
	seedEmail string
	seedName  string
	seedRoom  string
	seedReset bool
)

// seedFolders is created inside the demo room; children follow their parent
var seedFolders = []struct {
	name     string
	children []string
}{
	{name: "Financials", children: []string{"2023", "2024"}},
	{name: "Legal", children: []string{"Contracts", "Corporate"}},
	{name: "Due Diligence"},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create a demo user with a populated data room",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Environment == "prod" && seedReset {
			return fmt.Errorf("refusing to run a destructive seed (--reset) in production")
		}

		ctx := cmd.Context()
		pool, repoConfig, err := openPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		objects, err := openObjectStore(ctx)
		if err != nil {
			return err
		}

		users := postgres.NewUserRepository(repoConfig)
		rooms := postgresRoom.NewDataRoomRepository(repoConfig)
		folders := postgresRoom.NewFolderRepository(repoConfig)
		files := postgresRoom.NewFileRepository(repoConfig)
		txManager := postgres.NewTransactionManager(repoConfig)
		authorizer := authService.NewOwnerBasedAuthorizer(rooms, folders, files, logger)

		// Use the service layer so seeded data passes the same validation as API calls
		dataRooms := roomService.NewDataRoomService(rooms, folders, files, objects, txManager, logger)
		folderService := roomService.NewFolderService(folders, files, objects, txManager, authorizer, logger)

		user, err := ensureUser(ctx, users, seedEmail, seedName)
		if err != nil {
			return err
		}
		printf(cmd.OutOrStdout(), "User %s (%s)\n", user.Email, user.ID)

		if existing, err := rooms.FindByName(ctx, user.ID, seedRoom); err == nil {
			if !seedReset {
				printf(cmd.OutOrStdout(), "Data room %q already exists (%s); use --reset to recreate it\n", existing.Name, existing.ID)
				return nil
			}
			if err := dataRooms.DeleteDataRoom(ctx, user.ID, existing.ID); err != nil {
				return fmt.Errorf("delete existing room: %w", err)
			}
			printf(cmd.OutOrStdout(), "Deleted data room %s\n", existing.ID)
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		room, err := dataRooms.CreateDataRoom(ctx, &roomSvc.CreateDataRoomRequest{UserID: user.ID, Name: seedRoom})
		if err != nil {
			return fmt.Errorf("create room: %w", err)
		}
		printf(cmd.OutOrStdout(), "Created data room %q (%s)\n", room.Name, room.ID)

		for _, f := range seedFolders {
			parent, err := folderService.CreateFolder(ctx, &roomSvc.CreateFolderRequest{
				UserID: user.ID, DataRoomID: room.ID, Name: f.name,
			})
			if err != nil {
				return fmt.Errorf("create folder %q: %w", f.name, err)
			}
			printf(cmd.OutOrStdout(), "  %s/\n", parent.Name)

			for _, child := range f.children {
				if _, err := folderService.CreateFolder(ctx, &roomSvc.CreateFolderRequest{
					UserID: user.ID, DataRoomID: room.ID, ParentID: &parent.ID, Name: child,
				}); err != nil {
					return fmt.Errorf("create folder %q: %w", child, err)
				}
				printf(cmd.OutOrStdout(), "  %s/%s/\n", parent.Name, child)
			}
		}

		printf(cmd.OutOrStdout(), "Seeding complete\n")
		return nil
	},
}

func ensureUser(ctx context.Context, users repositories.UserRepository, email, name string) (*models.User, error) {
	user, err := users.GetByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	user = &models.User{Email: email, Name: name}
	if err := users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func init() {
	seedCmd.Flags().StringVar(&seedEmail, "email", "demo@example.com", "Email of the demo user")
	seedCmd.Flags().StringVar(&seedName, "name", "Demo User", "Display name of the demo user")
	seedCmd.Flags().StringVar(&seedRoom, "room", "Demo Data Room", "Name of the demo data room")
	seedCmd.Flags().BoolVar(&seedReset, "reset", false, "Delete and recreate the demo room if it exists")
	rootCmd.AddCommand(seedCmd)
}
