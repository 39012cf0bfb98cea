package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/mediagallery-backend/pkg/config"
	"github.com/angelmondragon/mediagallery-backend/pkg/storage/local"
	"github.com/angelmondragon/mediagallery-backend/pkg/storage/s3"
)

const defaultLocalBasePath = "wwwroot/uploads"

// New creates the storage backend selected by configuration.
func New(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Type)) {
	case "", config.StorageTypeLocal:
		basePath := cfg.LocalBasePath
		if basePath == "" {
			basePath = defaultLocalBasePath
		}
		return local.New(basePath)

	case config.StorageTypeS3:
		return s3.New(ctx, s3.Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			KeyPrefix: cfg.S3KeyPrefix,
			PathStyle: cfg.S3UsePathStyle,
		})

	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
