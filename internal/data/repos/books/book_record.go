package books

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/graduation-masterpiece/demo-repository/internal/domain"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/logger"
)

type BookRecordRepo interface {
	// CreateIfAbsent inserts rec unless its ISBN is taken. created is false
	// when another writer got there first.
	CreateIfAbsent(ctx context.Context, tx *gorm.DB, rec *types.BookRecord) (created bool, err error)

	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.BookRecord, error)
	GetByISBN(ctx context.Context, tx *gorm.DB, isbn string) (*types.BookRecord, error)

	// ClaimForGeneration moves a failed record, or a pending one not touched
	// since staleBefore, back to pending. Only one concurrent caller wins.
	ClaimForGeneration(ctx context.Context, tx *gorm.DB, id uuid.UUID, staleBefore time.Time) (bool, error)
	MarkReady(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	MarkFailed(ctx context.Context, tx *gorm.DB, id uuid.UUID, stage, reason string) error

	ListReadyViews(ctx context.Context, tx *gorm.DB, sortKey string, offset, limit int) ([]*types.CardView, error)
	CountReady(ctx context.Context, tx *gorm.DB) (int64, error)
	GetView(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.CardView, error)

	FullDeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (bool, error)
}

type bookRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBookRecordRepo(db *gorm.DB, baseLog *logger.Logger) BookRecordRepo {
	return &bookRecordRepo{db: db, log: baseLog.With("repo", "BookRecordRepo")}
}

func (r *bookRecordRepo) CreateIfAbsent(ctx context.Context, tx *gorm.DB, rec *types.BookRecord) (bool, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CardStatus == "" {
		rec.CardStatus = types.CardStatusPending
	}
	res := t.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "isbn"}},
			DoNothing: true,
		}).
		Create(rec)
	if res.Error != nil {
		if IsUniqueViolation(res.Error) {
			return false, nil
		}
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *bookRecordRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.BookRecord, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	return r.first(ctx, tx, "id = ?", id)
}

func (r *bookRecordRepo) GetByISBN(ctx context.Context, tx *gorm.DB, isbn string) (*types.BookRecord, error) {
	if isbn == "" {
		return nil, nil
	}
	return r.first(ctx, tx, "isbn = ?", isbn)
}

func (r *bookRecordRepo) first(ctx context.Context, tx *gorm.DB, query string, arg interface{}) (*types.BookRecord, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.BookRecord
	if err := t.WithContext(ctx).Where(query, arg).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *bookRecordRepo) ClaimForGeneration(ctx context.Context, tx *gorm.DB, id uuid.UUID, staleBefore time.Time) (bool, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(ctx).
		Model(&types.BookRecord{}).
		Where("id = ?", id).
		Where("card_status = ? OR (card_status = ? AND updated_at < ?)",
			types.CardStatusFailed, types.CardStatusPending, staleBefore.UTC()).
		Updates(map[string]interface{}{
			"card_status":    types.CardStatusPending,
			"failed_stage":   "",
			"failure_reason": "",
			"updated_at":     time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *bookRecordRepo) MarkReady(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return r.updateFields(ctx, tx, id, map[string]interface{}{
		"card_status":    types.CardStatusReady,
		"failed_stage":   "",
		"failure_reason": "",
	})
}

func (r *bookRecordRepo) MarkFailed(ctx context.Context, tx *gorm.DB, id uuid.UUID, stage, reason string) error {
	if len(reason) > 1000 {
		reason = strings.ToValidUTF8(reason[:1000], "")
	}
	t := tx
	if t == nil {
		t = r.db
	}
	// A ready card is never demoted by a late failure from a superseded run.
	return t.WithContext(ctx).
		Model(&types.BookRecord{}).
		Where("id = ? AND card_status <> ?", id, types.CardStatusReady).
		Updates(map[string]interface{}{
			"card_status":    types.CardStatusFailed,
			"failed_stage":   stage,
			"failure_reason": reason,
			"updated_at":     time.Now().UTC(),
		}).Error
}

func (r *bookRecordRepo) updateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	t := tx
	if t == nil {
		t = r.db
	}
	updates["updated_at"] = time.Now().UTC()
	return t.WithContext(ctx).
		Model(&types.BookRecord{}).
		Where("id = ?", id).
		Updates(updates).Error
}

type cardViewRow struct {
	ID            uuid.UUID
	ISBN          string
	Title         string
	Author        string
	CoverImageURL string
	ImageURL      string
	Summary       []byte
	Likes         int64
	CardStatus    string
	CreatedAt     time.Time
}

const cardViewColumns = `b.id, b.isbn, b.title, b.author, b.cover_image_url,
	COALESCE(c.image_url, '') AS image_url,
	COALESCE(c.summary, '[]') AS summary,
	COALESCE(c.likes, 0) AS likes,
	b.card_status, b.created_at`

func orderFor(sortKey string) string {
	switch sortKey {
	case types.SortLatest:
		return "b.created_at DESC, b.id DESC"
	case types.SortLikes:
		return "c.likes DESC, b.created_at DESC, b.id DESC"
	default:
		return "b.created_at ASC, b.id ASC"
	}
}

func (r *bookRecordRepo) ListReadyViews(ctx context.Context, tx *gorm.DB, sortKey string, offset, limit int) ([]*types.CardView, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var rows []cardViewRow
	q := t.WithContext(ctx).
		Table("book_record AS b").
		Select(cardViewColumns).
		Joins("JOIN card_asset AS c ON c.book_id = b.id").
		Where("b.card_status = ?", types.CardStatusReady).
		Order(orderFor(sortKey))
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return toViews(rows)
}

func (r *bookRecordRepo) CountReady(ctx context.Context, tx *gorm.DB) (int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var n int64
	err := t.WithContext(ctx).
		Table("book_record AS b").
		Joins("JOIN card_asset AS c ON c.book_id = b.id").
		Where("b.card_status = ?", types.CardStatusReady).
		Count(&n).Error
	return n, err
}

func (r *bookRecordRepo) GetView(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.CardView, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	t := tx
	if t == nil {
		t = r.db
	}
	var rows []cardViewRow
	if err := t.WithContext(ctx).
		Table("book_record AS b").
		Select(cardViewColumns).
		Joins("LEFT JOIN card_asset AS c ON c.book_id = b.id").
		Where("b.id = ?", id).
		Limit(1).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	views, err := toViews(rows)
	if err != nil || len(views) == 0 {
		return nil, err
	}
	return views[0], nil
}

func (r *bookRecordRepo) FullDeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (bool, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(ctx).Where("id = ?", id).Delete(&types.BookRecord{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
