package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/graduation-masterpiece/demo-repository/internal/platform/awss3"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/gcp"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/logger"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/objectstore"
)

// Provider constructors, swappable in tests.
var (
	newS3Store = func(ctx context.Context, cfg objectstore.Config, log *logger.Logger) (objectstore.Store, error) {
		return awss3.New(ctx, cfg, log)
	}
	newGCSStore = func(ctx context.Context, cfg objectstore.Config, log *logger.Logger) (objectstore.Store, error) {
		return gcp.NewBucket(ctx, cfg, log)
	}
)

type StorageBootstrapErrorCode string

const (
	StorageBootstrapInvalidConfig StorageBootstrapErrorCode = "invalid_config"
	StorageBootstrapConnectFailed StorageBootstrapErrorCode = "connect_failed"
)

type StorageBootstrapError struct {
	Code  StorageBootstrapErrorCode
	Mode  objectstore.Mode
	Cause error
}

func (e *StorageBootstrapError) Error() string {
	return fmt.Sprintf("object storage bootstrap failed (code=%s mode=%q): %v", e.Code, e.Mode, e.Cause)
}

func (e *StorageBootstrapError) Unwrap() error { return e.Cause }

// resolveObjectStore validates the storage config and opens the selected
// provider. memory mode is for local runs only; images vanish on restart.
func resolveObjectStore(ctx context.Context, log *logger.Logger, cfg objectstore.Config) (objectstore.Store, error) {
	if err := objectstore.Validate(cfg); err != nil {
		log.Error("Object storage config rejected", "mode", cfg.Mode, "error", err)
		return nil, &StorageBootstrapError{Code: StorageBootstrapInvalidConfig, Mode: cfg.Mode, Cause: err}
	}
	log.Info("Selecting object storage provider", "mode", cfg.Mode, "bucket", cfg.Bucket)

	var (
		store objectstore.Store
		err   error
	)
	switch cfg.Mode {
	case objectstore.ModeS3:
		store, err = newS3Store(ctx, cfg, log)
	case objectstore.ModeGCS, objectstore.ModeGCSEmulator:
		store, err = newGCSStore(ctx, cfg, log)
	case objectstore.ModeMemory:
		log.Warn("Using in-memory object storage; generated images are not durable")
		store = objectstore.NewMemory(cfg.PublicBaseURL)
	}
	if err != nil {
		log.Error("Object storage provider bootstrap failed", "mode", cfg.Mode, "error", err)
		return nil, classifyStorageError(cfg.Mode, err)
	}
	return store, nil
}

func classifyStorageError(mode objectstore.Mode, err error) error {
	var cfgErr *objectstore.ConfigError
	if errors.As(err, &cfgErr) {
		return &StorageBootstrapError{Code: StorageBootstrapInvalidConfig, Mode: mode, Cause: err}
	}
	return &StorageBootstrapError{Code: StorageBootstrapConnectFailed, Mode: mode, Cause: err}
}
