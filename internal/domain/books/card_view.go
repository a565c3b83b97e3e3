package books

import (
	"time"

	"github.com/google/uuid"
)

// CardView is the read projection joining a BookRecord with its CardAsset.
// Card columns are zero while the card is pending or failed.
type CardView struct {
	ID            uuid.UUID `json:"id"`
	ISBN          string    `json:"isbn"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	CoverImageURL string    `json:"book_cover"`
	ImageURL      string    `json:"image_url"`
	Summary       []string  `json:"summary"`
	Likes         int64     `json:"likes"`
	CardStatus    string    `json:"card_status"`
	CreatedAt     time.Time `json:"created_at"`
}

// Sort keys accepted by listCards.
const (
	SortDefault = "default"
	SortLatest  = "latest"
	SortLikes   = "likes"
)
