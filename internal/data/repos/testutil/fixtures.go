package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/graduation-masterpiece/demo-repository/internal/domain"
)

func SeedBook(tb testing.TB, ctx context.Context, tx *gorm.DB, isbn, status string) *types.BookRecord {
	tb.Helper()
	b := &types.BookRecord{
		ID:          uuid.New(),
		ISBN:        isbn,
		Title:       "Title " + isbn,
		Author:      "Author",
		Description: "A quiet town hides a dark secret.",
		CardStatus:  status,
	}
	if err := tx.WithContext(ctx).Create(b).Error; err != nil {
		tb.Fatalf("seed book: %v", err)
	}
	return b
}

func SeedCard(tb testing.TB, ctx context.Context, tx *gorm.DB, bookID uuid.UUID, likes int64) *types.CardAsset {
	tb.Helper()
	c := &types.CardAsset{
		ID:       uuid.New(),
		BookID:   bookID,
		ImageURL: "https://cdn.test/images/" + bookID.String() + ".png",
		ImageKey: "images/" + bookID.String() + ".png",
		Summary:  []string{"Who keeps the *secret*?", "The town is *quiet*."},
		Likes:    likes,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed card: %v", err)
	}
	return c
}

// SeedReadyBook seeds a ready record with a card, created at the given time.
func SeedReadyBook(tb testing.TB, ctx context.Context, tx *gorm.DB, isbn string, likes int64, createdAt time.Time) (*types.BookRecord, *types.CardAsset) {
	tb.Helper()
	b := SeedBook(tb, ctx, tx, isbn, types.CardStatusReady)
	if !createdAt.IsZero() {
		if err := tx.WithContext(ctx).Model(b).UpdateColumn("created_at", createdAt.UTC()).Error; err != nil {
			tb.Fatalf("seed created_at: %v", err)
		}
		b.CreatedAt = createdAt.UTC()
	}
	return b, SeedCard(tb, ctx, tx, b.ID, likes)
}

func SeedIssueReport(tb testing.TB, ctx context.Context, tx *gorm.DB, bookID uuid.UUID, category string) *types.IssueReport {
	tb.Helper()
	r := &types.IssueReport{
		ID:         uuid.New(),
		BookID:     bookID,
		Category:   category,
		ReportedAt: time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(r).Error; err != nil {
		tb.Fatalf("seed issue report: %v", err)
	}
	return r
}
