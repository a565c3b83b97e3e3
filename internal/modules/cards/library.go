package cards

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	types "github.com/graduation-masterpiece/demo-repository/internal/domain"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/apierr"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 50
	libraryLimit    = 200
)

type ListCardsInput struct {
	Page     int    `form:"page" json:"page" validate:"gte=0"`
	PageSize int    `form:"pageSize" json:"pageSize" validate:"gte=0,lte=50"`
	Sort     string `form:"sort" json:"sort" validate:"omitempty,oneof=default latest likes"`
}

type ListCardsResult struct {
	Items    []*types.CardView `json:"items"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
}

type LibraryItem struct {
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	ImageURL string    `json:"image_url"`
	Likes    int64     `json:"likes"`
}

// ListCards pages through ready cards. Records without a card are never
// listed.
func (u Usecases) ListCards(ctx context.Context, in ListCardsInput) (ListCardsResult, error) {
	if err := u.deps.Validator.Validate(in); err != nil {
		return ListCardsResult{}, err
	}
	if in.Page == 0 {
		in.Page = 1
	}
	if in.PageSize == 0 {
		in.PageSize = DefaultPageSize
	}
	if in.Sort == "" {
		in.Sort = types.SortDefault
	}

	out := ListCardsResult{Page: in.Page, PageSize: in.PageSize}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := u.deps.Books.CountReady(gctx, nil)
		out.Total = n
		return err
	})
	g.Go(func() error {
		items, err := u.deps.Books.ListReadyViews(gctx, nil, in.Sort, (in.Page-1)*in.PageSize, in.PageSize)
		out.Items = items
		return err
	})
	if err := g.Wait(); err != nil {
		return ListCardsResult{}, apierr.Storage("list cards", err)
	}
	if out.Items == nil {
		out.Items = []*types.CardView{}
	}
	return out, nil
}

func (u Usecases) GetCard(ctx context.Context, bookID uuid.UUID) (*types.CardView, error) {
	v, err := u.deps.Books.GetView(ctx, nil, bookID)
	if err != nil {
		return nil, apierr.Storage("load card", err)
	}
	if v == nil {
		return nil, apierr.NotFound("book not found")
	}
	return v, nil
}

// ListLibrary returns the newest ready cards in compact form.
func (u Usecases) ListLibrary(ctx context.Context) ([]LibraryItem, error) {
	views, err := u.deps.Books.ListReadyViews(ctx, nil, types.SortLatest, 0, libraryLimit)
	if err != nil {
		return nil, apierr.Storage("list library", err)
	}
	out := make([]LibraryItem, 0, len(views))
	for _, v := range views {
		out = append(out, LibraryItem{ID: v.ID, Title: v.Title, ImageURL: v.ImageURL, Likes: v.Likes})
	}
	return out, nil
}

// DeleteBook removes the record with its card and issue reports in one
// transaction, then deletes the stored image best-effort.
func (u Usecases) DeleteBook(ctx context.Context, bookID uuid.UUID) error {
	var imageKey string
	err := u.deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		card, err := u.deps.Cards.GetByBookID(ctx, tx, bookID)
		if err != nil {
			return err
		}
		if card != nil {
			imageKey = card.ImageKey
		}
		if _, err := u.deps.Issues.FullDeleteByBookID(ctx, tx, bookID); err != nil {
			return err
		}
		if err := u.deps.Cards.FullDeleteByBookID(ctx, tx, bookID); err != nil {
			return err
		}
		found, err := u.deps.Books.FullDeleteByID(ctx, tx, bookID)
		if err != nil {
			return err
		}
		if !found {
			return apierr.NotFound("book not found")
		}
		return nil
	})
	if err != nil {
		if ae := apierr.As(err); ae.Code == apierr.CodeNotFound {
			return ae
		}
		return apierr.Storage("delete book", err)
	}

	u.log.Info("book deleted", "book_id", bookID)
	if imageKey != "" && u.deps.Store != nil {
		if err := u.deps.Store.Delete(context.WithoutCancel(ctx), imageKey); err != nil {
			u.log.Warn("failed to delete card image (ignored)", "book_id", bookID, "key", imageKey, "error", err)
		}
	}
	return nil
}

// ResetLikes sets a card's engagement counter back to zero.
func (u Usecases) ResetLikes(ctx context.Context, bookID uuid.UUID) error {
	found, err := u.deps.Cards.ResetLikes(ctx, nil, bookID)
	if err != nil {
		return apierr.Storage("reset likes", err)
	}
	if !found {
		return apierr.NotFound("card not found")
	}
	u.log.Info("likes reset", "book_id", bookID)
	return nil
}
