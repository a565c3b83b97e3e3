package books

import (
	"time"

	"github.com/google/uuid"
)

// Card generation status of a BookRecord.
const (
	CardStatusPending = "pending"
	CardStatusReady   = "ready"
	CardStatusFailed  = "failed"
)

// BookRecord is keyed externally by ISBN. Only the card status columns change
// after creation.
type BookRecord struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ISBN          string    `gorm:"column:isbn;not null;uniqueIndex" json:"isbn"`
	Title         string    `gorm:"column:title;not null" json:"title"`
	Author        string    `gorm:"column:author" json:"author"`
	Publisher     string    `gorm:"column:publisher" json:"publisher"`
	PublishedDate string    `gorm:"column:published_date" json:"pubdate"`
	Description   string    `gorm:"column:description;type:text" json:"description"`
	CoverImageURL string    `gorm:"column:cover_image_url" json:"book_cover"`

	CardStatus    string `gorm:"column:card_status;not null;default:'pending';index" json:"card_status"`
	FailedStage   string `gorm:"column:failed_stage" json:"failed_stage,omitempty"`
	FailureReason string `gorm:"column:failure_reason;type:text" json:"failure_reason,omitempty"`

	CardAsset *CardAsset `gorm:"foreignKey:BookID;references:ID;constraint:OnDelete:CASCADE" json:"card,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (BookRecord) TableName() string { return "book_record" }
