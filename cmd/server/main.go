package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"dataroom/internal/auth"
	"dataroom/internal/config"
	"dataroom/internal/database/migrations"
	"dataroom/internal/domain/repositories"
	roomRepo "dataroom/internal/domain/repositories/dataroom"
	"dataroom/internal/handler"
	"dataroom/internal/middleware"
	"dataroom/internal/repository/memory"
	"dataroom/internal/repository/postgres"
	postgresRoom "dataroom/internal/repository/postgres/dataroom"
	authService "dataroom/internal/service/auth"
	roomService "dataroom/internal/service/dataroom"
	"dataroom/internal/storage"
	"dataroom/internal/tracing"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// entityStore bundles the repositories of the selected backend
type entityStore struct {
	users     repositories.UserRepository
	rooms     roomRepo.DataRoomRepository
	folders   roomRepo.FolderRepository
	files     roomRepo.FileRepository
	txManager repositories.TransactionManager
	pinger    handler.Pinger
	close     func()
}

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	logger, closeLog, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closeLog()
	slog.SetDefault(logger) // Set as default logger

	if cfg.UploadPolicyFile != "" {
		cfg.Upload, err = config.LoadUploadPolicy(cfg.UploadPolicyFile, cfg.Upload)
		if err != nil {
			log.Fatalf("Failed to load upload policy: %v", err)
		}
	}

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"store", cfg.StoreBackend,
		"storage", cfg.StorageBackend,
		"upload_max_bytes", cfg.Upload.MaxBytes,
		"upload_allowed_types", cfg.Upload.AllowedTypes,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := tracing.InitTracer(ctx, cfg.ServiceName, cfg.OTLPEndpoint, logger)
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(shutdownCtx); err != nil {
			logger.Error("tracer shutdown failed", "error", err)
		}
	}()

	store, err := openEntityStore(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open entity store: %v", err)
	}
	defer store.close()

	objects, err := openObjectStore(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open object storage: %v", err)
	}

	// Self-issued session tokens are always accepted; provider tokens only when configured
	sessions, err := auth.NewSessionManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTExpiration)
	if err != nil {
		log.Fatalf("Failed to create session manager: %v", err)
	}
	verifiers := []auth.IssuerVerifier{sessions}
	if cfg.SupabaseURL != "" {
		providerVerifier, err := auth.NewProviderJWTVerifier(ctx, cfg.SupabaseURL, cfg.SupabaseJWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create provider JWT verifier: %v", err)
		}
		verifiers = append(verifiers, providerVerifier)
	}
	tokenVerifier, err := auth.NewChainVerifier(verifiers...)
	if err != nil {
		log.Fatalf("Failed to create token verifier: %v", err)
	}
	defer tokenVerifier.Close()

	var google auth.IDTokenVerifier
	if cfg.GoogleClientID != "" {
		googleVerifier, err := auth.NewGoogleVerifier(ctx, cfg.GoogleClientID)
		if err != nil {
			log.Fatalf("Failed to create Google verifier: %v", err)
		}
		google = googleVerifier
	} else {
		logger.Warn("GOOGLE_CLIENT_ID not set, Google sign-in disabled")
	}

	// Create services
	authorizer := authService.NewOwnerBasedAuthorizer(store.rooms, store.folders, store.files, logger)
	identityService := authService.NewIdentityService(store.users, google, sessions, logger)
	dataRoomService := roomService.NewDataRoomService(store.rooms, store.folders, store.files, objects, store.txManager, logger)
	folderService := roomService.NewFolderService(store.folders, store.files, objects, store.txManager, authorizer, logger)
	fileService := roomService.NewFileService(store.folders, store.files, objects, store.txManager, authorizer, logger)
	uploadService := roomService.NewUploadService(store.folders, store.files, objects, authorizer, cfg.Upload, logger)
	treeService := roomService.NewTreeService(store.rooms, store.folders, store.files, authorizer, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, &handler.Handlers{
		Health:   handler.NewHealthHandler(store.pinger, logger),
		Auth:     handler.NewAuthHandler(identityService, logger),
		DataRoom: handler.NewDataRoomHandler(dataRoomService, treeService, logger),
		Folder:   handler.NewFolderHandler(folderService, treeService, logger),
		File:     handler.NewFileHandler(fileService, logger),
		Upload:   handler.NewUploadHandler(uploadService, cfg.Upload.MaxBytes, logger),
	})

	// Build middleware chain
	var h http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Tracing → Logging → Recovery → Auth → Routes
	h = middleware.AuthMiddleware(tokenVerifier, identityService, middleware.DefaultPublicRoutes, logger)(h)
	h = middleware.Recovery(logger)(h)
	h = middleware.RequestLogger(logger)(h)
	h = otelhttp.NewHandler(h, "http.server")

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  5 * time.Minute, // Large uploads on slow links
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
	}()

	// Start server
	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// openEntityStore connects the configured metadata backend.
// Postgres is migrated (or checked) before use.
func openEntityStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*entityStore, error) {
	if cfg.StoreBackend == "memory" {
		logger.Warn("using in-memory entity store, data is lost on restart")
		s := memory.NewStore()
		return &entityStore{
			users:     s.Users(),
			rooms:     s.DataRooms(),
			folders:   s.Folders(),
			files:     s.Files(),
			txManager: s.TransactionManager(),
			close:     func() {},
		}, nil
	}

	if err := prepareSchema(cfg); err != nil {
		return nil, err
	}

	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	logger.Info("database connected",
		"max_conns", pool.Config().MaxConns,
		"min_conns", pool.Config().MinConns,
	)

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Logger: logger,
	}
	return &entityStore{
		users:     postgres.NewUserRepository(repoConfig),
		rooms:     postgresRoom.NewDataRoomRepository(repoConfig),
		folders:   postgresRoom.NewFolderRepository(repoConfig),
		files:     postgresRoom.NewFileRepository(repoConfig),
		txManager: postgres.NewTransactionManager(repoConfig),
		pinger:    pool,
		close:     pool.Close,
	}, nil
}

func prepareSchema(cfg *config.Config) error {
	db, err := migrations.Open(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.MigrateOnStart {
		return migrations.MigrateUp(db)
	}
	return migrations.CheckDBMigrationStatus(db)
}

func openObjectStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.ObjectStore, error) {
	if cfg.StorageBackend == "memory" {
		logger.Warn("using in-memory object storage, files are lost on restart")
		return storage.NewMemoryStore("http://localhost:" + cfg.Port + "/objects"), nil
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
