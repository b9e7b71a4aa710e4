package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gigboard/engine/internal/api"
	"github.com/gigboard/engine/internal/api/handlers"
	"github.com/gigboard/engine/internal/repository"
	"github.com/gigboard/engine/internal/services"
	"github.com/gigboard/engine/internal/storage"
	"github.com/gigboard/engine/pkg/config"
	"github.com/gigboard/engine/pkg/database"
	"github.com/gigboard/engine/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.MustLoad()

	// Initialize logger
	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	log.Info("Starting gigboard engine",
		zap.String("env", cfg.AppEnv),
		zap.String("addr", cfg.HTTPAddr),
		zap.String("db_driver", cfg.DBDriver),
	)

	// Connect to database
	ctx := context.Background()
	db, err := database.Open(ctx, database.Options{
		Driver:  cfg.DBDriver,
		DSN:     cfg.DatabaseURL,
		Verbose: cfg.IsDevelopment(),
		Logger:  log,
	})
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Warn("database close failed", zap.Error(err))
		}
	}()
	if err := repository.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}
	log.Info("Database ready")

	store, err := storage.NewDisk(cfg.UploadDir, cfg.UploadURLPrefix)
	if err != nil {
		log.Fatal("Failed to prepare upload directory", zap.Error(err))
	}

	// JWT secret from configuration
	jwtSecret := []byte(cfg.JWTSecret)
	if len(jwtSecret) == 0 {
		if !cfg.IsDevelopment() {
			log.Fatal("JWT_SECRET must be set outside development")
		}
		log.Warn("JWT_SECRET not set, using a per-process secret; tokens will not survive a restart")
		jwtSecret = []byte(uuid.NewString() + uuid.NewString())
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	fileRepo := repository.NewFileRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	refRepo := repository.NewReferenceRepository(db)

	// Initialize services
	users := services.NewUserService(userRepo)
	tokens := services.NewTokenService(jwtSecret, cfg.TokenTTL)
	projects := services.NewProjectService(projectRepo, store)
	files := services.NewAttachmentService(fileRepo, projectRepo, store, services.UploadLimits{
		MaxFileSize: cfg.MaxFileSize,
		MaxFiles:    cfg.MaxFilesPerRequest,
	})
	notes := services.NewNoteService(noteRepo, projectRepo)
	refs := services.NewReferenceService(refRepo)

	root, generated, err := users.EnsureSuperadmin(ctx, cfg.SuperadminUsername, cfg.SuperadminPassword)
	if err != nil {
		log.Fatal("Failed to provision superadmin", zap.Error(err))
	}
	if generated != "" {
		// Shown once; set SUPERADMIN_PASSWORD to choose it instead.
		log.Warn("superadmin created with generated password",
			zap.String("username", root.Username),
			zap.String("password", generated))
	}

	// Create router with dependencies
	router := api.NewRouter(api.Dependencies{
		Tokens:           tokens,
		Accounts:         users,
		AuthHandler:      handlers.NewAuthHandler(users, tokens),
		ProjectsHandler:  handlers.NewProjectsHandler(projects),
		FilesHandler:     handlers.NewFilesHandler(files, cfg.MaxFileSize, cfg.MaxFilesPerRequest),
		NotesHandler:     handlers.NewNotesHandler(notes),
		UsersHandler:     handlers.NewUsersHandler(users),
		ReferenceHandler: handlers.NewReferenceHandler(refs),
		HealthHandler: handlers.NewHealthHandler(func(ctx context.Context) error {
			return database.Ping(ctx, db)
		}),
		UploadDir:       store.Dir(),
		UploadURLPrefix: cfg.UploadURLPrefix,
		RateLimitRPS:    cfg.RateLimitRPS,
		RateLimitBurst:  cfg.RateLimitBurst,
		TrustProxy:      cfg.TrustProxy,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       5 * time.Minute,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       90 * time.Second,
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	} else {
		log.Info("server exited gracefully")
	}
}
