package books

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/graduation-masterpiece/demo-repository/internal/domain"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/logger"
)

type CardAssetRepo interface {
	Create(ctx context.Context, tx *gorm.DB, card *types.CardAsset) error
	GetByBookID(ctx context.Context, tx *gorm.DB, bookID uuid.UUID) (*types.CardAsset, error)

	// IncrementLikes adds one to the counter and returns the new value.
	// found is false when the book has no card.
	IncrementLikes(ctx context.Context, tx *gorm.DB, bookID uuid.UUID) (likes int64, found bool, err error)
	ResetLikes(ctx context.Context, tx *gorm.DB, bookID uuid.UUID) (bool, error)

	FullDeleteByBookID(ctx context.Context, tx *gorm.DB, bookID uuid.UUID) error
}

type cardAssetRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCardAssetRepo(db *gorm.DB, baseLog *logger.Logger) CardAssetRepo {
	return &cardAssetRepo{db: db, log: baseLog.With("repo", "CardAssetRepo")}
}

func (r *cardAssetRepo) Create(ctx context.Context, tx *gorm.DB, card *types.CardAsset) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if card.ID == uuid.Nil {
		card.ID = uuid.New()
	}
	if card.Summary == nil {
		card.Summary = []string{}
	}
	return t.WithContext(ctx).Create(card).Error
}

func (r *cardAssetRepo) GetByBookID(ctx context.Context, tx *gorm.DB, bookID uuid.UUID) (*types.CardAsset, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.CardAsset
	if err := t.WithContext(ctx).Where("book_id = ?", bookID).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *cardAssetRepo) IncrementLikes(ctx context.Context, tx *gorm.DB, bookID uuid.UUID) (int64, bool, error) {
	var (
		likes int64
		found bool
	)
	run := func(t *gorm.DB) error {
		res := t.WithContext(ctx).
			Model(&types.CardAsset{}).
			Where("book_id = ?", bookID).
			UpdateColumns(map[string]interface{}{
				"likes":      gorm.Expr("likes + ?", 1),
				"updated_at": time.Now().UTC(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		var counts []int64
		if err := t.WithContext(ctx).
			Model(&types.CardAsset{}).
			Where("book_id = ?", bookID).
			Pluck("likes", &counts).Error; err != nil {
			return err
		}
		if len(counts) > 0 {
			found = true
			likes = counts[0]
		}
		return nil
	}
	var err error
	if tx != nil {
		err = run(tx)
	} else {
		err = r.db.WithContext(ctx).Transaction(run)
	}
	if err != nil {
		return 0, false, err
	}
	return likes, found, nil
}

func (r *cardAssetRepo) ResetLikes(ctx context.Context, tx *gorm.DB, bookID uuid.UUID) (bool, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(ctx).
		Model(&types.CardAsset{}).
		Where("book_id = ?", bookID).
		UpdateColumns(map[string]interface{}{
			"likes":      0,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *cardAssetRepo) FullDeleteByBookID(ctx context.Context, tx *gorm.DB, bookID uuid.UUID) error {
	t := tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(ctx).Where("book_id = ?", bookID).Delete(&types.CardAsset{}).Error
}
