package feedback

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/graduation-masterpiece/demo-repository/internal/domain"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/logger"
)

type IssueReportRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.IssueReport) error
	ListByBookID(ctx context.Context, tx *gorm.DB, bookID uuid.UUID) ([]*types.IssueReport, error)
	FullDeleteByBookID(ctx context.Context, tx *gorm.DB, bookID uuid.UUID) (int64, error)
}

type issueReportRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewIssueReportRepo(db *gorm.DB, baseLog *logger.Logger) IssueReportRepo {
	return &issueReportRepo{db: db, log: baseLog.With("repo", "IssueReportRepo")}
}

func (r *issueReportRepo) Create(ctx context.Context, tx *gorm.DB, row *types.IssueReport) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return t.WithContext(ctx).Create(row).Error
}

func (r *issueReportRepo) ListByBookID(ctx context.Context, tx *gorm.DB, bookID uuid.UUID) ([]*types.IssueReport, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.IssueReport
	if err := t.WithContext(ctx).
		Where("book_id = ?", bookID).
		Order("reported_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *issueReportRepo) FullDeleteByBookID(ctx context.Context, tx *gorm.DB, bookID uuid.UUID) (int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(ctx).Where("book_id = ?", bookID).Delete(&types.IssueReport{})
	return res.RowsAffected, res.Error
}
