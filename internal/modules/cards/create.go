package cards

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/graduation-masterpiece/demo-repository/internal/domain"
	"github.com/graduation-masterpiece/demo-repository/internal/modules/cards/steps"
	"github.com/graduation-masterpiece/demo-repository/internal/observability"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/apierr"
)

type CreateCardInput struct {
	ISBN          string `json:"isbn" validate:"required,max=32"`
	Title         string `json:"title" validate:"required,max=500"`
	Author        string `json:"author" validate:"max=300"`
	Publisher     string `json:"publisher" validate:"max=300"`
	PublishedDate string `json:"pubdate" validate:"max=32"`
	Description   string `json:"description" validate:"max=10000"`
	CoverImageURL string `json:"book_cover" validate:"omitempty,url,max=2048"`
}

type CreateCardResult struct {
	AlreadyExists bool
	BookID        uuid.UUID
	ImageURL      string
	Summary       []string
}

// CreateCard records the book and generates its card. A known ISBN is an
// idempotent success unless its previous generation failed or stalled, in
// which case only the generation steps run again.
func (u Usecases) CreateCard(ctx context.Context, in CreateCardInput) (CreateCardResult, error) {
	in.ISBN = strings.TrimSpace(in.ISBN)
	in.Title = strings.TrimSpace(in.Title)
	in.CoverImageURL = strings.TrimSpace(in.CoverImageURL)
	if err := u.deps.Validator.Validate(in); err != nil {
		return CreateCardResult{}, err
	}

	rec := &types.BookRecord{
		ISBN:          in.ISBN,
		Title:         in.Title,
		Author:        strings.TrimSpace(in.Author),
		Publisher:     strings.TrimSpace(in.Publisher),
		PublishedDate: strings.TrimSpace(in.PublishedDate),
		Description:   strings.TrimSpace(in.Description),
		CoverImageURL: in.CoverImageURL,
		CardStatus:    types.CardStatusPending,
	}
	created, err := u.deps.Books.CreateIfAbsent(ctx, nil, rec)
	if err != nil {
		return CreateCardResult{}, apierr.Storage("save book record", err).WithStage(StageRecord)
	}
	if created {
		u.log.Info("book record created", "book_id", rec.ID, "isbn", rec.ISBN)
		return u.generate(ctx, rec)
	}

	existing, err := u.deps.Books.GetByISBN(ctx, nil, in.ISBN)
	if err != nil {
		return CreateCardResult{}, apierr.Storage("load book record", err).WithStage(StageRecord)
	}
	if existing == nil {
		// Deleted between the insert attempt and the lookup.
		return CreateCardResult{AlreadyExists: true}, nil
	}
	return u.retryExisting(ctx, existing)
}

// Regenerate re-runs generation for a failed or stalled record.
func (u Usecases) Regenerate(ctx context.Context, bookID uuid.UUID) (CreateCardResult, error) {
	rec, err := u.deps.Books.GetByID(ctx, nil, bookID)
	if err != nil {
		return CreateCardResult{}, apierr.Storage("load book record", err).WithStage(StageRecord)
	}
	if rec == nil {
		return CreateCardResult{}, apierr.NotFound("book not found")
	}
	return u.retryExisting(ctx, rec)
}

func (u Usecases) retryExisting(ctx context.Context, rec *types.BookRecord) (CreateCardResult, error) {
	exists := CreateCardResult{AlreadyExists: true, BookID: rec.ID}
	if rec.CardStatus == types.CardStatusReady {
		observability.Current().IncCardOutcome("exists")
		return exists, nil
	}
	claimed, err := u.deps.Books.ClaimForGeneration(ctx, nil, rec.ID, u.deps.Now().Add(-u.deps.Lease))
	if err != nil {
		return CreateCardResult{}, apierr.Storage("claim book record", err).WithStage(StageRecord)
	}
	if !claimed {
		observability.Current().IncCardOutcome("exists")
		return exists, nil
	}
	u.log.Info("regenerating card", "book_id", rec.ID, "previous_status", rec.CardStatus, "failed_stage", rec.FailedStage)
	return u.generate(ctx, rec)
}

// generate runs summarize, illustrate and persist against a claimed pending
// record. Any failure leaves the record failed with the stage recorded and no
// card row.
func (u Usecases) generate(ctx context.Context, rec *types.BookRecord) (CreateCardResult, error) {
	var (
		summary steps.Summary
		art     steps.Illustration
	)
	sg := newSaga(u.log, u.deps.Tracer,
		attribute.String("book.id", rec.ID.String()),
		attribute.String("book.isbn", rec.ISBN),
	)
	err := sg.execute(ctx,
		sagaStep{
			name: StageSummarize,
			run: func(ctx context.Context) (err error) {
				summary, err = u.deps.Summarizer.Summarize(ctx, rec.Title, rec.Description)
				return err
			},
		},
		sagaStep{
			name: StageIllustrate,
			run: func(ctx context.Context) (err error) {
				art, err = u.deps.Illustrator.Illustrate(ctx, rec.Title, rec.Description)
				return err
			},
			compensate: func(ctx context.Context) error {
				return u.deps.Illustrator.Discard(ctx, art.ImageKey)
			},
		},
		sagaStep{
			name: StagePersist,
			run: func(ctx context.Context) error {
				return u.persist(ctx, rec.ID, summary.Sentences, art)
			},
		},
	)
	if err != nil {
		ae := apierr.As(err)
		u.markFailed(ctx, rec.ID, ae)
		observability.Current().IncCardOutcome("failed")
		return CreateCardResult{}, ae
	}

	observability.Current().IncCardOutcome("created")
	u.log.Info("card generated", "book_id", rec.ID, "sentences", len(summary.Sentences), "image_key", art.ImageKey)
	return CreateCardResult{BookID: rec.ID, ImageURL: art.ImageURL, Summary: summary.Sentences}, nil
}

func (u Usecases) persist(ctx context.Context, bookID uuid.UUID, sentences []string, art steps.Illustration) error {
	err := u.deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		card := &types.CardAsset{
			BookID:   bookID,
			ImageURL: art.ImageURL,
			ImageKey: art.ImageKey,
			Summary:  datatypes.JSONSlice[string](sentences),
			Likes:    0,
		}
		if err := u.deps.Cards.Create(ctx, tx, card); err != nil {
			return err
		}
		return u.deps.Books.MarkReady(ctx, tx, bookID)
	})
	if err != nil {
		return apierr.Storage("save card", err)
	}
	return nil
}

func (u Usecases) markFailed(ctx context.Context, bookID uuid.UUID, ae *apierr.Error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := u.deps.Books.MarkFailed(ctx, nil, bookID, ae.Stage, ae.Error()); err != nil {
		u.log.Error("failed to record generation failure", "book_id", bookID, "stage", ae.Stage, "error", err)
		return
	}
	u.log.Warn("card generation failed", "book_id", bookID, "stage", ae.Stage, "code", ae.Code, "error", ae.Err)
}
