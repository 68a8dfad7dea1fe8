package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"dataroom/internal/config"
	"dataroom/internal/repository/postgres"
	"dataroom/internal/storage"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	cfg    *config.Config
	logger *slog.Logger

	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "dataroomctl",
	Short: "Administer a data room deployment",
	Long: `dataroomctl manages the database schema and development data
of a data room server. It reads the same environment (and .env file)
as the server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		cfg = config.Load()

		level := slog.LevelWarn
		if flagVerbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log service activity to stderr")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openPool connects to the configured Postgres database. The caller must close it.
func openPool(ctx context.Context) (*pgxpool.Pool, *postgres.RepositoryConfig, error) {
	if cfg.DatabaseURL == "" {
		return nil, nil, fmt.Errorf("DATABASE_URL is not set")
	}
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return pool, &postgres.RepositoryConfig{Pool: pool, Logger: logger}, nil
}

// openObjectStore mirrors the server's storage selection
func openObjectStore(ctx context.Context) (storage.ObjectStore, error) {
	if cfg.StorageBackend == "memory" {
		return storage.NewMemoryStore(""), nil
	}
	store, err := storage.NewMinIOStore(cfg.MinIO, logger)
	if err != nil {
		return nil, err
	}
	if err := store.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func printf(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, format, args...)
}
