package feedback

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/graduation-masterpiece/demo-repository/internal/domain"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/logger"
)

type VisitLogRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.VisitLog) error
	ListRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*types.VisitLog, error)
}

type visitLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVisitLogRepo(db *gorm.DB, baseLog *logger.Logger) VisitLogRepo {
	return &visitLogRepo{db: db, log: baseLog.With("repo", "VisitLogRepo")}
}

func (r *visitLogRepo) Create(ctx context.Context, tx *gorm.DB, row *types.VisitLog) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return t.WithContext(ctx).Create(row).Error
}

func (r *visitLogRepo) ListRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*types.VisitLog, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if limit <= 0 {
		limit = 50
	}
	var out []*types.VisitLog
	if err := t.WithContext(ctx).Order("visited_at DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
