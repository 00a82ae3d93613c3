package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"

	"github.com/Marcus0035/Looksy/internal/auth"
	"github.com/Marcus0035/Looksy/internal/blobstore"
	"github.com/Marcus0035/Looksy/internal/blobstore/local"
	"github.com/Marcus0035/Looksy/internal/blobstore/s3"
	"github.com/Marcus0035/Looksy/internal/config"
	"github.com/Marcus0035/Looksy/internal/db"
	"github.com/Marcus0035/Looksy/internal/logging"
	"github.com/Marcus0035/Looksy/internal/service"
	"github.com/Marcus0035/Looksy/internal/store"
	"github.com/Marcus0035/Looksy/internal/web"
)

func main() {
	cfg := config.Load()

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	if cfg.JWTSecret == "" {
		logger.Error("JWT_SECRET is required")
		return
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	blobs, blobHandler, err := newBlobStore(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize blob store", "error", err)
		return
	}

	userStore := store.NewUserStore(database)
	groupStore := store.NewGroupStore(database)
	photoStore := store.NewPhotoStore(database)

	tokens := auth.NewTokenManager(cfg.JWTSecret)
	photoService := service.NewPhotoService(photoStore, groupStore, blobs, logger)
	groupService := service.NewGroupService(groupStore, logger)
	userService := service.NewUserService(userStore, logger)

	server := web.NewServer(photoService, groupService, userService, tokens, blobHandler, logger)

	if err := server.ListenAndServe(cfg.ListenAddr); err != nil {
		logger.Error("server error", "error", err)
	}
}

// newBlobStore selects the object-storage backend. The local backend also
// returns the handler that serves its signed URLs.
func newBlobStore(cfg *config.Config, logger *slog.Logger) (blobstore.Store, http.Handler, error) {
	switch cfg.BlobBackend {
	case "s3":
		logger.Info("using s3 blob backend", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
		s, err := s3.NewStore(context.Background(), cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3UseSSL)
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	default:
		logger.Info("using local blob backend", "path", cfg.BlobLocalPath)
		s, err := local.NewStore(cfg.BlobLocalPath, cfg.BlobBaseURL, []byte(cfg.BlobSecret))
		if err != nil {
			return nil, nil, err
		}
		return s, s.Handler(), nil
	}
}
