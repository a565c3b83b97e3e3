package app

import (
	"time"

	"github.com/graduation-masterpiece/demo-repository/internal/data/db"
	"github.com/graduation-masterpiece/demo-repository/internal/modules/search"
	"github.com/graduation-masterpiece/demo-repository/internal/observability"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/envutil"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/logger"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/objectstore"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/openai"
)

type Config struct {
	Port           string
	AllowedOrigins []string
	TrustedProxies []string

	DB db.Config

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	OpenAI openai.Config

	SummaryMaxTokens  int
	PromptMaxTokens   int
	CompletionTimeout time.Duration
	ImageTimeout      time.Duration
	FetchTimeout      time.Duration
	UploadTimeout     time.Duration

	Storage        objectstore.Config
	ImageKeyPrefix string

	SearchRetainMax  int
	SearchScanWindow int
	LikeLockTTL      time.Duration

	CreateRatePerMinute float64
	CreateRateBurst     int

	GenerationLease time.Duration
	AdminJWTSecret  string

	MetricsEnabled bool
	Otel           observability.OtelConfig
}

func LoadConfig(log *logger.Logger) Config {
	storageMode := objectstore.Mode(envutil.String("OBJECT_STORAGE_MODE", string(objectstore.ModeS3), log))
	bucket := envutil.String("S3_BUCKET", "bookcard-images", log)
	publicBase := envutil.String("S3_PUBLIC_BASE_URL", "", log)
	if storageMode == objectstore.ModeGCS || storageMode == objectstore.ModeGCSEmulator {
		bucket = envutil.String("GCS_BUCKET", bucket, log)
		publicBase = envutil.String("GCS_PUBLIC_BASE_URL", "", log)
	}

	searchRetain := envutil.Int("SEARCH_RETAIN_MAX", search.DefaultRetainMax, log)

	return Config{
		Port:           envutil.String("PORT", "8080", log),
		AllowedOrigins: envutil.List("CORS_ALLOWED_ORIGINS", nil, log),
		TrustedProxies: envutil.List("TRUSTED_PROXIES", nil, log),

		DB: db.Config{
			Driver:       envutil.String("DB_DRIVER", db.DriverPostgres, log),
			Host:         envutil.String("POSTGRES_HOST", "localhost", log),
			Port:         envutil.String("POSTGRES_PORT", "5432", log),
			User:         envutil.String("POSTGRES_USER", "postgres", log),
			Password:     envutil.String("POSTGRES_PASSWORD", "", log),
			Name:         envutil.String("POSTGRES_NAME", "bookcards", log),
			SSLMode:      envutil.String("POSTGRES_SSLMODE", "disable", log),
			SQLitePath:   envutil.String("SQLITE_PATH", "bookcards.db", log),
			MaxOpenConns: envutil.Int("DB_MAX_OPEN_CONNS", 20, log),
			MaxIdleConns: envutil.Int("DB_MAX_IDLE_CONNS", 5, log),
		},

		RedisAddr:     envutil.String("REDIS_ADDR", "", log),
		RedisPassword: envutil.String("REDIS_PASSWORD", "", log),
		RedisDB:       envutil.Int("REDIS_DB", 0, log),

		OpenAI: openai.Config{
			APIKey:      envutil.String("OPENAI_API_KEY", "", log),
			BaseURL:     envutil.String("OPENAI_BASE_URL", "https://api.openai.com", log),
			Model:       envutil.String("OPENAI_MODEL", "gpt-4o", log),
			ImageModel:  envutil.String("OPENAI_IMAGE_MODEL", "dall-e-3", log),
			ImageSize:   envutil.String("OPENAI_IMAGE_SIZE", "1024x1024", log),
			HTTPTimeout: envutil.Duration("OPENAI_HTTP_TIMEOUT", 3*time.Minute, log),
		},

		SummaryMaxTokens:  envutil.Int("OPENAI_SUMMARY_MAX_TOKENS", 600, log),
		PromptMaxTokens:   envutil.Int("OPENAI_PROMPT_MAX_TOKENS", 2000, log),
		CompletionTimeout: envutil.Duration("COMPLETION_TIMEOUT", 60*time.Second, log),
		ImageTimeout:      envutil.Duration("IMAGE_TIMEOUT", 120*time.Second, log),
		FetchTimeout:      envutil.Duration("FETCH_TIMEOUT", 30*time.Second, log),
		UploadTimeout:     envutil.Duration("UPLOAD_TIMEOUT", 2*time.Minute, log),

		Storage: objectstore.Config{
			Mode:            storageMode,
			Bucket:          bucket,
			Region:          envutil.String("S3_REGION", "ap-northeast-2", log),
			Endpoint:        envutil.String("S3_ENDPOINT", "", log),
			AccessKeyID:     envutil.String("AWS_ACCESS_KEY_ID", "", log),
			SecretKey:       envutil.String("AWS_SECRET_ACCESS_KEY", "", log),
			PublicReadACL:   envutil.Bool("S3_PUBLIC_READ_ACL", false, log),
			EmulatorHost:    envutil.String("STORAGE_EMULATOR_HOST", "", log),
			CredentialsJSON: envutil.String("GCP_CREDENTIALS_JSON", "", log),
			CredentialsFile: envutil.String("GOOGLE_APPLICATION_CREDENTIALS", "", log),
			PublicBaseURL:   publicBase,
		},
		ImageKeyPrefix: envutil.String("IMAGE_KEY_PREFIX", "images", log),

		SearchRetainMax:  searchRetain,
		SearchScanWindow: envutil.Int("SEARCH_SCAN_WINDOW", searchRetain, log),
		LikeLockTTL:      envutil.Duration("LIKE_LOCK_TTL", 24*time.Hour, log),

		CreateRatePerMinute: envutil.Float("CREATE_RATE_PER_MINUTE", 6, log),
		CreateRateBurst:     envutil.Int("CREATE_RATE_BURST", 3, log),

		GenerationLease: envutil.Duration("GENERATION_LEASE", 10*time.Minute, log),
		AdminJWTSecret:  envutil.String("ADMIN_JWT_SECRET", "", log),

		MetricsEnabled: envutil.Bool("METRICS_ENABLED", false, log),
		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false, log),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", "bookcard-api", log),
			Environment: envutil.String("APP_ENV", "development", log),
			Version:     envutil.String("APP_VERSION", "", log),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", "", log),
			Headers:     observability.ParseHeaders(envutil.String("OTEL_EXPORTER_OTLP_HEADERS", "", log)),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false, log),
			SampleRatio: envutil.Float("OTEL_SAMPLER_RATIO", 0.1, log),
		},
	}
}
