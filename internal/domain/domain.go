package domain

import (
	"github.com/graduation-masterpiece/demo-repository/internal/domain/books"
	"github.com/graduation-masterpiece/demo-repository/internal/domain/feedback"
)

const (
	CardStatusPending = books.CardStatusPending
	CardStatusReady   = books.CardStatusReady
	CardStatusFailed  = books.CardStatusFailed

	SortDefault = books.SortDefault
	SortLatest  = books.SortLatest
	SortLikes   = books.SortLikes

	IssueCategoryContent  = feedback.IssueCategoryContent
	IssueCategoryImage    = feedback.IssueCategoryImage
	IssueCategoryMetadata = feedback.IssueCategoryMetadata
	IssueCategoryOther    = feedback.IssueCategoryOther
)

type BookRecord = books.BookRecord
type CardAsset = books.CardAsset
type CardView = books.CardView

type IssueReport = feedback.IssueReport
type VisitLog = feedback.VisitLog

// Models lists every table owned by this service, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&BookRecord{},
		&CardAsset{},
		&IssueReport{},
		&VisitLog{},
	}
}
