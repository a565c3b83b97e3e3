package feedback

import (
	"time"

	"github.com/google/uuid"
)

// VisitLog records the UTM parameters a visitor arrived with.
type VisitLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Source     string    `gorm:"column:source;not null" json:"source"`
	Medium     string    `gorm:"column:medium;not null" json:"medium"`
	Campaign   string    `gorm:"column:campaign;not null" json:"campaign"`
	Content    string    `gorm:"column:content;not null" json:"content"`
	ClientHash string    `gorm:"column:client_hash;index" json:"-"`
	VisitedAt  time.Time `gorm:"column:visited_at;not null;index" json:"visited_at"`
}

func (VisitLog) TableName() string { return "visit_log" }
