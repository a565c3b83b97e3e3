package books

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// CardAsset is the generated teaser for one BookRecord. Summary keeps one
// sentence per element, in display order.
type CardAsset struct {
	ID       uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	BookID   uuid.UUID                   `gorm:"type:uuid;not null;uniqueIndex" json:"book_id"`
	ImageURL string                      `gorm:"column:image_url;not null" json:"image_url"`
	ImageKey string                      `gorm:"column:image_key;not null" json:"-"`
	Summary  datatypes.JSONSlice[string] `gorm:"column:summary;not null" json:"summary"`
	Likes    int64                       `gorm:"column:likes;not null;default:0" json:"likes"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (CardAsset) TableName() string { return "card_asset" }
