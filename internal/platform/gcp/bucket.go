package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/graduation-masterpiece/demo-repository/internal/platform/logger"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/objectstore"
)

const deleteTimeout = 30 * time.Second

// Bucket stores card images in a single GCS bucket (or a fake-gcs-server
// emulator). It implements objectstore.Store.
type Bucket struct {
	log           *logger.Logger
	client        *storage.Client
	bucket        string
	mode          objectstore.Mode
	publicBaseURL string
}

var _ objectstore.Store = (*Bucket)(nil)

func NewBucket(ctx context.Context, cfg objectstore.Config, log *logger.Logger) (*Bucket, error) {
	if cfg.Mode != objectstore.ModeGCS && cfg.Mode != objectstore.ModeGCSEmulator {
		return nil, &objectstore.ConfigError{Code: objectstore.ConfigErrorInvalidMode, Mode: string(cfg.Mode)}
	}
	if err := objectstore.Validate(cfg); err != nil {
		return nil, fmt.Errorf("validate object storage config: %w", err)
	}
	client, err := newStorageClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	b := newBucket(cfg, client, log)
	b.log.Info("Object storage initialized",
		"mode", cfg.Mode,
		"bucket", cfg.Bucket,
		"emulator_host", cfg.EmulatorHost,
		"public_base_url", b.publicBaseURL,
	)
	return b, nil
}

func newBucket(cfg objectstore.Config, client *storage.Client, log *logger.Logger) *Bucket {
	if log == nil {
		log = logger.Nop()
	}
	return &Bucket{
		log:           log.With("service", "GCSBucket"),
		client:        client,
		bucket:        strings.TrimSpace(cfg.Bucket),
		mode:          cfg.Mode,
		publicBaseURL: resolvePublicBaseURL(cfg),
	}
}

func newStorageClient(ctx context.Context, cfg objectstore.Config) (*storage.Client, error) {
	if cfg.Mode == objectstore.ModeGCSEmulator {
		endpoint := strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/")
		// The client library only honors the emulator through the environment.
		_ = os.Setenv("STORAGE_EMULATOR_HOST", endpoint)
		return storage.NewClient(ctx, option.WithoutAuthentication())
	}
	opts := credentialOptions(cfg)
	opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
	return storage.NewClient(ctx, opts...)
}

func resolvePublicBaseURL(cfg objectstore.Config) string {
	if raw := strings.TrimSpace(cfg.PublicBaseURL); raw != "" {
		return strings.TrimRight(raw, "/")
	}
	if cfg.Mode == objectstore.ModeGCSEmulator {
		return strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/")
	}
	return "https://storage.googleapis.com"
}

func (b *Bucket) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	if contentType == "" {
		contentType = objectstore.ContentTypeForKey(key)
	}
	w := b.client.Bucket(b.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, body); err != nil {
		_ = w.Close()
		return fmt.Errorf("write gcs object %q: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close gcs writer for %q: %w", key, err)
	}
	return nil
}

func (b *Bucket) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, deleteTimeout)
	defer cancel()
	err := b.client.Bucket(b.bucket).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("delete gcs object %q in bucket %q: %w", key, b.bucket, err)
	}
	return nil
}

func (b *Bucket) PublicURL(key string) string {
	return objectstore.JoinURL(b.publicBaseURL, b.bucket, key)
}

func (b *Bucket) Close() error {
	if b == nil || b.client == nil {
		return nil
	}
	return b.client.Close()
}
