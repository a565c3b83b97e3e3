package feedback

import (
	"time"

	"github.com/google/uuid"
)

const (
	IssueCategoryContent  = "content"
	IssueCategoryImage    = "image"
	IssueCategoryMetadata = "metadata"
	IssueCategoryOther    = "other"
)

type IssueReport struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BookID     uuid.UUID `gorm:"type:uuid;not null;index" json:"book_id"`
	Category   string    `gorm:"column:category;not null" json:"category"`
	Detail     string    `gorm:"column:detail;type:text" json:"detail,omitempty"`
	ReportedAt time.Time `gorm:"column:reported_at;not null" json:"reported_at"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (IssueReport) TableName() string { return "issue_report" }
