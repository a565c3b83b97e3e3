package cards

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/graduation-masterpiece/demo-repository/internal/data/repos"
	"github.com/graduation-masterpiece/demo-repository/internal/modules/cards/steps"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/logger"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/objectstore"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/validation"
)

const (
	StageRecord     = "record"
	StageSummarize  = "summarize"
	StageIllustrate = "illustrate"
	StagePersist    = "persist"
)

const defaultLease = 10 * time.Minute

type Summarizer interface {
	Summarize(ctx context.Context, title, description string) (steps.Summary, error)
}

type Illustrator interface {
	Illustrate(ctx context.Context, title, description string) (steps.Illustration, error)
	Discard(ctx context.Context, key string) error
}

type UsecasesDeps struct {
	DB  *gorm.DB
	Log *logger.Logger

	Books  repos.BookRecordRepo
	Cards  repos.CardAssetRepo
	Issues repos.IssueReportRepo

	Summarizer  Summarizer
	Illustrator Illustrator
	// Used to remove a deleted card's image.
	Store objectstore.Store

	Validator *validation.Validator
	Tracer    trace.Tracer

	// A pending record untouched for longer than Lease may be claimed again.
	Lease time.Duration
	Now   func() time.Time
}

type Usecases struct {
	deps UsecasesDeps
	log  *logger.Logger
}

func New(deps UsecasesDeps) Usecases {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	if deps.Validator == nil {
		deps.Validator = validation.New()
	}
	if deps.Tracer == nil {
		deps.Tracer = otel.Tracer("github.com/graduation-masterpiece/demo-repository/internal/modules/cards")
	}
	if deps.Lease <= 0 {
		deps.Lease = defaultLease
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return Usecases{deps: deps, log: deps.Log.With("service", "CardUsecases")}
}
