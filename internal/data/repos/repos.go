package repos

import (
	"gorm.io/gorm"

	"github.com/graduation-masterpiece/demo-repository/internal/data/repos/books"
	"github.com/graduation-masterpiece/demo-repository/internal/data/repos/feedback"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/logger"
)

type BookRecordRepo = books.BookRecordRepo
type CardAssetRepo = books.CardAssetRepo

type IssueReportRepo = feedback.IssueReportRepo
type VisitLogRepo = feedback.VisitLogRepo

func NewBookRecordRepo(db *gorm.DB, log *logger.Logger) BookRecordRepo {
	return books.NewBookRecordRepo(db, log)
}

func NewCardAssetRepo(db *gorm.DB, log *logger.Logger) CardAssetRepo {
	return books.NewCardAssetRepo(db, log)
}

func NewIssueReportRepo(db *gorm.DB, log *logger.Logger) IssueReportRepo {
	return feedback.NewIssueReportRepo(db, log)
}

func NewVisitLogRepo(db *gorm.DB, log *logger.Logger) VisitLogRepo {
	return feedback.NewVisitLogRepo(db, log)
}

var IsUniqueViolation = books.IsUniqueViolation
