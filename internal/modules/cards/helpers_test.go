package cards_test

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/graduation-masterpiece/demo-repository/internal/data/repos"
	"github.com/graduation-masterpiece/demo-repository/internal/data/repos/testutil"
	types "github.com/graduation-masterpiece/demo-repository/internal/domain"
	"github.com/graduation-masterpiece/demo-repository/internal/modules/cards"
	"github.com/graduation-masterpiece/demo-repository/internal/modules/cards/steps"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/objectstore"
)

type fakeSummarizer struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeSummarizer) Summarize(ctx context.Context, title, description string) (steps.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return steps.Summary{}, f.err
	}
	return steps.Summary{
		Raw:       "Who is *" + title + "*? The end.",
		Sentences: []string{"Who is *" + title + "*?", "The end."},
	}, nil
}

type fakeIllustrator struct {
	mu        sync.Mutex
	store     *objectstore.Memory
	calls     int
	err       error
	discarded []string
}

func (f *fakeIllustrator) Illustrate(ctx context.Context, title, description string) (steps.Illustration, error) {
	f.mu.Lock()
	f.calls++
	n := f.calls
	err := f.err
	f.mu.Unlock()
	if err != nil {
		return steps.Illustration{}, err
	}
	key := fmt.Sprintf("images/%d-%d.png", time.Now().UnixMilli(), n)
	if err := f.store.Put(ctx, key, bytes.NewReader([]byte("png")), "image/png"); err != nil {
		return steps.Illustration{}, err
	}
	return steps.Illustration{ImageURL: f.store.PublicURL(key), ImageKey: key}, nil
}

func (f *fakeIllustrator) Discard(ctx context.Context, key string) error {
	f.mu.Lock()
	f.discarded = append(f.discarded, key)
	f.mu.Unlock()
	return f.store.Delete(ctx, key)
}

// failingCards rejects every card insert.
type failingCards struct {
	repos.CardAssetRepo
	err error
}

func (f failingCards) Create(ctx context.Context, tx *gorm.DB, card *types.CardAsset) error {
	return f.err
}

type harness struct {
	db    *gorm.DB
	books repos.BookRecordRepo
	cards repos.CardAssetRepo
	store *objectstore.Memory
	sum   *fakeSummarizer
	ill   *fakeIllustrator
	deps  cards.UsecasesDeps
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	store := objectstore.NewMemory("https://cdn.test")
	h := &harness{
		db:    db,
		books: repos.NewBookRecordRepo(db, log),
		cards: repos.NewCardAssetRepo(db, log),
		store: store,
		sum:   &fakeSummarizer{},
		ill:   &fakeIllustrator{store: store},
	}
	h.deps = cards.UsecasesDeps{
		DB:          db,
		Log:         log,
		Books:       h.books,
		Cards:       h.cards,
		Issues:      repos.NewIssueReportRepo(db, log),
		Summarizer:  h.sum,
		Illustrator: h.ill,
		Store:       store,
	}
	return h
}

func (h *harness) usecases() cards.Usecases { return cards.New(h.deps) }

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func exampleInput(isbn string) cards.CreateCardInput {
	return cards.CreateCardInput{
		ISBN:        isbn,
		Title:       "Example",
		Author:      "Anon",
		Description: "A quiet town hides a dark secret.",
	}
}
