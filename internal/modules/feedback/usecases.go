package feedback

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	types "github.com/graduation-masterpiece/demo-repository/internal/domain"
	"github.com/graduation-masterpiece/demo-repository/internal/data/repos"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/apierr"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/clientid"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/logger"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/validation"
)

const MaxDetailRunes = 200

// Visit defaults for a request that arrives without UTM parameters.
const (
	DefaultSource   = "direct"
	DefaultMedium   = "none"
	DefaultCampaign = "direct-access"
	DefaultContent  = "0"
)

type Deps struct {
	Log       *logger.Logger
	Books     repos.BookRecordRepo
	Issues    repos.IssueReportRepo
	Visits    repos.VisitLogRepo
	Validator *validation.Validator
	Now       func() time.Time
}

type Usecases struct {
	deps Deps
	log  *logger.Logger
}

func New(deps Deps) Usecases {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	if deps.Validator == nil {
		deps.Validator = validation.New()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return Usecases{deps: deps, log: deps.Log.With("service", "FeedbackUsecases")}
}

type ReportIssueInput struct {
	BookID string `json:"book_info_id" validate:"required,uuid"`
	// Free text picked from the reader's report menu.
	ErrorType  string `json:"error_type" validate:"required,max=200"`
	Category   string `json:"category" validate:"omitempty,oneof=content image metadata other"`
	ReportTime string `json:"report_time"`
}

type ReportIssueResult struct {
	ID         uuid.UUID `json:"id"`
	Category   string    `json:"category"`
	ReportedAt time.Time `json:"reportedAt"`
}

func (u Usecases) ReportIssue(ctx context.Context, in ReportIssueInput) (ReportIssueResult, error) {
	in.BookID = strings.TrimSpace(in.BookID)
	in.ErrorType = strings.TrimSpace(in.ErrorType)
	in.Category = strings.ToLower(strings.TrimSpace(in.Category))
	if err := u.deps.Validator.Validate(in); err != nil {
		return ReportIssueResult{}, err
	}
	bookID := uuid.MustParse(in.BookID)

	reportedAt, err := parseReportTime(in.ReportTime, u.deps.Now)
	if err != nil {
		return ReportIssueResult{}, apierr.Validation("invalid report time", map[string]string{"report_time": "must be an RFC 3339 timestamp"})
	}

	book, err := u.deps.Books.GetByID(ctx, nil, bookID)
	if err != nil {
		return ReportIssueResult{}, apierr.Storage("load book", err)
	}
	if book == nil {
		return ReportIssueResult{}, apierr.NotFound("book not found")
	}

	category := in.Category
	if category == "" {
		category = Classify(in.ErrorType)
	}
	row := &types.IssueReport{
		BookID:     bookID,
		Category:   category,
		Detail:     truncateRunes(in.ErrorType, MaxDetailRunes),
		ReportedAt: reportedAt,
	}
	if err := u.deps.Issues.Create(ctx, nil, row); err != nil {
		return ReportIssueResult{}, apierr.Storage("save issue report", err)
	}
	u.log.Info("issue reported", "book_id", bookID, "category", category)
	return ReportIssueResult{ID: row.ID, Category: category, ReportedAt: reportedAt}, nil
}

// Classify maps a free-text report onto an issue category.
func Classify(text string) string {
	t := strings.ToLower(text)
	switch {
	case strings.Contains(t, "image"):
		return types.IssueCategoryImage
	case containsAny(t, "content", "sentence", "punctuation", "numbering", "screen"):
		return types.IssueCategoryContent
	case containsAny(t, "title", "author", "publisher", "isbn", "cover"):
		return types.IssueCategoryMetadata
	default:
		return types.IssueCategoryOther
	}
}

type LogVisitInput struct {
	Source   string `json:"source" validate:"max=100"`
	Medium   string `json:"medium" validate:"max=100"`
	Campaign string `json:"campaign" validate:"max=100"`
	Content  string `json:"content" validate:"max=100"`
}

func (u Usecases) LogVisit(ctx context.Context, in LogVisitInput, clientIP string) error {
	if err := u.deps.Validator.Validate(in); err != nil {
		return err
	}
	row := &types.VisitLog{
		Source:     orDefault(in.Source, DefaultSource),
		Medium:     orDefault(in.Medium, DefaultMedium),
		Campaign:   orDefault(in.Campaign, DefaultCampaign),
		Content:    orDefault(in.Content, DefaultContent),
		ClientHash: clientid.Hash(clientIP),
		VisitedAt:  u.deps.Now().UTC(),
	}
	if err := u.deps.Visits.Create(ctx, nil, row); err != nil {
		return apierr.Storage("save visit", err)
	}
	return nil
}

var reportTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func parseReportTime(raw string, now func() time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return now().UTC(), nil
	}
	var lastErr error
	for _, layout := range reportTimeLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
