package storage

import (
	"fmt"

	"github.com/finkraft/expense-exporter/internal/application/pipeline"
	infraconfig "github.com/finkraft/expense-exporter/internal/infrastructure/config"
	"go.uber.org/zap"
)

// New builds the object storage adapter selected by cfg.Provider
func New(cfg *infraconfig.StorageConfig, logger *zap.Logger) (pipeline.ObjectStorage, error) {
	switch cfg.Provider {
	case "s3":
		return NewS3ObjectStorage(cfg, WithLogger(logger))
	case "minio":
		return NewMinioObjectStorage(cfg)
	case "stub":
		return NewStubObjectStorage(), nil
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}
