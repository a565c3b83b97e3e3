package app

import (
	"gorm.io/gorm"

	"github.com/graduation-masterpiece/demo-repository/internal/data/repos"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/logger"
)

type Repos struct {
	Books  repos.BookRecordRepo
	Cards  repos.CardAssetRepo
	Issues repos.IssueReportRepo
	Visits repos.VisitLogRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Books:  repos.NewBookRecordRepo(db, log),
		Cards:  repos.NewCardAssetRepo(db, log),
		Issues: repos.NewIssueReportRepo(db, log),
		Visits: repos.NewVisitLogRepo(db, log),
	}
}
