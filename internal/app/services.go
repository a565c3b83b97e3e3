package app

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"gorm.io/gorm"

	"github.com/graduation-masterpiece/demo-repository/internal/data/kv"
	"github.com/graduation-masterpiece/demo-repository/internal/modules/cards"
	"github.com/graduation-masterpiece/demo-repository/internal/modules/cards/steps"
	"github.com/graduation-masterpiece/demo-repository/internal/modules/engagement"
	"github.com/graduation-masterpiece/demo-repository/internal/modules/feedback"
	"github.com/graduation-masterpiece/demo-repository/internal/modules/search"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/logger"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/ratelimit"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/validation"
)

const (
	likeLockPrefix   = "bookcard:"
	searchHistoryKey = "bookcard:search:recent"

	cardImageSide     = 1024
	cardMaxImageBytes = 20 << 20
	createLimiterIdle = 10 * time.Minute
)

type Services struct {
	Cards        cards.Usecases
	Likes        *engagement.Limiter
	Autocomplete *search.Autocomplete
	Feedback     feedback.Usecases

	// Per-client throttle on card creation; nil when disabled.
	CreateLimiter *ratelimit.KeyedRateLimiter
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, clients Clients, r Repos) Services {
	log.Info("Wiring services...")

	flags, recency := wireKV(log, clients)
	v := validation.New()

	summarizer := steps.NewSummarizer(steps.SummarizeDeps{
		Log:       log,
		LLM:       clients.OpenAI,
		MaxTokens: cfg.SummaryMaxTokens,
		Timeout:   cfg.CompletionTimeout,
	})
	illustrator := steps.NewIllustrator(steps.IllustrateDeps{
		Log:               log,
		LLM:               clients.OpenAI,
		Store:             clients.Store,
		HTTP:              &http.Client{Timeout: cfg.FetchTimeout},
		PromptMaxTokens:   cfg.PromptMaxTokens,
		CompletionTimeout: cfg.CompletionTimeout,
		ImageTimeout:      cfg.ImageTimeout,
		FetchTimeout:      cfg.FetchTimeout,
		UploadTimeout:     cfg.UploadTimeout,
		KeyPrefix:         cfg.ImageKeyPrefix,
		ImageSide:         cardImageSide,
		MaxImageBytes:     cardMaxImageBytes,
	})

	out := Services{
		Cards: cards.New(cards.UsecasesDeps{
			DB:          db,
			Log:         log,
			Books:       r.Books,
			Cards:       r.Cards,
			Issues:      r.Issues,
			Summarizer:  summarizer,
			Illustrator: illustrator,
			Store:       clients.Store,
			Validator:   v,
			Tracer:      otel.Tracer("github.com/graduation-masterpiece/demo-repository/internal/modules/cards"),
			Lease:       cfg.GenerationLease,
		}),
		Likes: engagement.New(engagement.Deps{
			Log:   log,
			Flags: flags,
			Cards: r.Cards,
			TTL:   cfg.LikeLockTTL,
		}),
		Autocomplete: search.New(search.Deps{
			Log:        log,
			Store:      recency,
			RetainMax:  cfg.SearchRetainMax,
			ScanWindow: cfg.SearchScanWindow,
		}),
		Feedback: feedback.New(feedback.Deps{
			Log:       log,
			Books:     r.Books,
			Issues:    r.Issues,
			Visits:    r.Visits,
			Validator: v,
		}),
	}
	if cfg.CreateRatePerMinute > 0 {
		out.CreateLimiter = ratelimit.New(cfg.CreateRatePerMinute, cfg.CreateRateBurst, createLimiterIdle)
	}
	return out
}

func wireKV(log *logger.Logger, clients Clients) (kv.FlagStore, kv.RecencyStore) {
	if clients.Redis == nil {
		return kv.NewMemoryFlagStore(), kv.NewMemoryRecencyStore()
	}
	log.Info("Using redis for like locks and search history")
	return kv.NewRedisFlagStore(clients.Redis, likeLockPrefix), kv.NewRedisRecencyStore(clients.Redis, searchHistoryKey)
}

func (s *Services) Close() {
	if s != nil && s.CreateLimiter != nil {
		s.CreateLimiter.Stop()
	}
}
