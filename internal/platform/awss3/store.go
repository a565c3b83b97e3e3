package awss3

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/graduation-masterpiece/demo-repository/internal/platform/logger"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/objectstore"
)

const (
	defaultRegion = "ap-northeast-2"
	deleteTimeout = 30 * time.Second
)

// objectAPI is the part of *s3.Client the store needs.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Store writes card images to an S3 (or S3-compatible) bucket.
type Store struct {
	log       *logger.Logger
	api       objectAPI
	bucket    string
	region    string
	endpoint  string
	publicURL string
	publicACL bool
}

var _ objectstore.Store = (*Store)(nil)

func New(ctx context.Context, cfg objectstore.Config, log *logger.Logger) (*Store, error) {
	if cfg.Mode != objectstore.ModeS3 {
		return nil, &objectstore.ConfigError{Code: objectstore.ConfigErrorInvalidMode, Mode: string(cfg.Mode)}
	}
	if err := objectstore.Validate(cfg); err != nil {
		return nil, fmt.Errorf("validate object storage config: %w", err)
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = defaultRegion
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	endpoint := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	st := newStore(client, cfg, region, log)
	st.log.Info("Object storage initialized",
		"mode", cfg.Mode,
		"bucket", st.bucket,
		"region", region,
		"endpoint", endpoint,
	)
	return st, nil
}

func newStore(api objectAPI, cfg objectstore.Config, region string, log *logger.Logger) *Store {
	if log == nil {
		log = logger.Nop()
	}
	return &Store{
		log:       log.With("service", "S3Store"),
		api:       api,
		bucket:    strings.TrimSpace(cfg.Bucket),
		region:    region,
		endpoint:  strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/"),
		publicURL: strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/"),
		publicACL: cfg.PublicReadACL,
	}
}

func (s *Store) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	if contentType == "" {
		contentType = objectstore.ContentTypeForKey(key)
	}
	in := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	}
	if s.publicACL {
		in.ACL = types.ObjectCannedACLPublicRead
	}
	if _, err := s.api.PutObject(ctx, in); err != nil {
		return fmt.Errorf("put s3 object %q: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, deleteTimeout)
	defer cancel()
	_, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete s3 object %q in bucket %q: %w", key, s.bucket, err)
	}
	return nil
}

// PublicURL prefers an explicit public base, then a path-style custom
// endpoint, then the regional virtual-hosted AWS URL.
func (s *Store) PublicURL(key string) string {
	switch {
	case s.publicURL != "":
		return objectstore.JoinURL(s.publicURL, key)
	case s.endpoint != "":
		return objectstore.JoinURL(s.endpoint, s.bucket, key)
	default:
		return objectstore.JoinURL(fmt.Sprintf("https://%s.s3.%s.amazonaws.com", s.bucket, s.region), key)
	}
}
