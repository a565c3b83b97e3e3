package objectstore

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// Store is durable binary storage addressed by key. PublicURL must be stable
// for the lifetime of the object.
type Store interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) error
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}

type Mode string

const (
	ModeS3          Mode = "s3"
	ModeGCS         Mode = "gcs"
	ModeGCSEmulator Mode = "gcs_emulator"
	ModeMemory      Mode = "memory"
)

type Config struct {
	Mode   Mode
	Bucket string

	// s3
	Region        string
	Endpoint      string
	AccessKeyID   string
	SecretKey     string
	PublicReadACL bool

	// gcs
	EmulatorHost    string
	CredentialsJSON string
	CredentialsFile string

	// Overrides the provider's default public URL prefix (CDN or emulator).
	PublicBaseURL string
}

type ConfigErrorCode string

const (
	ConfigErrorInvalidMode         ConfigErrorCode = "invalid_mode"
	ConfigErrorMissingBucket       ConfigErrorCode = "missing_bucket"
	ConfigErrorMissingEmulatorHost ConfigErrorCode = "missing_emulator_host"
	ConfigErrorInvalidURL          ConfigErrorCode = "invalid_url"
)

type ConfigError struct {
	Code  ConfigErrorCode
	Mode  string
	Value string
}

func (e *ConfigError) Error() string {
	if e == nil {
		return "invalid object storage config"
	}
	switch e.Code {
	case ConfigErrorInvalidMode:
		return fmt.Sprintf("invalid OBJECT_STORAGE_MODE=%q (allowed: %q, %q, %q, %q)", e.Mode, ModeS3, ModeGCS, ModeGCSEmulator, ModeMemory)
	case ConfigErrorMissingBucket:
		return fmt.Sprintf("OBJECT_STORAGE_MODE=%q requires a bucket name", e.Mode)
	case ConfigErrorMissingEmulatorHost:
		return fmt.Sprintf("OBJECT_STORAGE_MODE=%q requires STORAGE_EMULATOR_HOST", e.Mode)
	case ConfigErrorInvalidURL:
		return fmt.Sprintf("invalid URL %q for OBJECT_STORAGE_MODE=%q; expected absolute http(s) URL", e.Value, e.Mode)
	default:
		return "invalid object storage config"
	}
}

func Validate(cfg Config) error {
	mode := string(cfg.Mode)
	switch cfg.Mode {
	case ModeMemory:
		return nil
	case ModeS3, ModeGCS:
	case ModeGCSEmulator:
		if strings.TrimSpace(cfg.EmulatorHost) == "" {
			return &ConfigError{Code: ConfigErrorMissingEmulatorHost, Mode: mode}
		}
		if !isAbsoluteURL(cfg.EmulatorHost) {
			return &ConfigError{Code: ConfigErrorInvalidURL, Mode: mode, Value: cfg.EmulatorHost}
		}
	default:
		return &ConfigError{Code: ConfigErrorInvalidMode, Mode: mode}
	}
	if strings.TrimSpace(cfg.Bucket) == "" {
		return &ConfigError{Code: ConfigErrorMissingBucket, Mode: mode}
	}
	for _, raw := range []string{cfg.Endpoint, cfg.PublicBaseURL} {
		if strings.TrimSpace(raw) != "" && !isAbsoluteURL(raw) {
			return &ConfigError{Code: ConfigErrorInvalidURL, Mode: mode, Value: raw}
		}
	}
	return nil
}

func isAbsoluteURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// JoinURL appends an object key to a base URL, escaping each path segment.
func JoinURL(base string, parts ...string) string {
	out := strings.TrimRight(strings.TrimSpace(base), "/")
	for _, p := range parts {
		for _, seg := range strings.Split(strings.Trim(p, "/"), "/") {
			if seg == "" {
				continue
			}
			out += "/" + url.PathEscape(seg)
		}
	}
	return out
}

func ContentTypeForKey(key string) string {
	s := strings.ToLower(strings.TrimSpace(key))
	if i := strings.Index(s, "?"); i >= 0 {
		s = s[:i]
	}
	switch {
	case strings.HasSuffix(s, ".png"):
		return "image/png"
	case strings.HasSuffix(s, ".jpg"), strings.HasSuffix(s, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(s, ".webp"):
		return "image/webp"
	case strings.HasSuffix(s, ".gif"):
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}
