package main

import (
	"fmt"

	"dataroom/internal/auth"
	"dataroom/internal/repository/postgres"

	"github.com/spf13/cobra"
)

var tokenEmail string

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a session token for an existing user (development only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Environment == "prod" {
			return fmt.Errorf("refusing to mint tokens in production")
		}
		if tokenEmail == "" {
			return fmt.Errorf("--email is required")
		}

		ctx := cmd.Context()
		pool, repoConfig, err := openPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		user, err := postgres.NewUserRepository(repoConfig).GetByEmail(ctx, tokenEmail)
		if err != nil {
			return fmt.Errorf("find user %s: %w", tokenEmail, err)
		}

		sessions, err := auth.NewSessionManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTExpiration)
		if err != nil {
			return err
		}
		token, err := sessions.IssueToken(user)
		if err != nil {
			return fmt.Errorf("issue token: %w", err)
		}

		printf(cmd.OutOrStdout(), "%s\n", token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "", "Email of the user to issue a token for")
	rootCmd.AddCommand(tokenCmd)
}
