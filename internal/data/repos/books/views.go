package books

import (
	"encoding/json"
	"fmt"

	types "github.com/graduation-masterpiece/demo-repository/internal/domain"
)

func toViews(rows []cardViewRow) ([]*types.CardView, error) {
	out := make([]*types.CardView, 0, len(rows))
	for _, row := range rows {
		summary := []string{}
		if len(row.Summary) > 0 {
			if err := json.Unmarshal(row.Summary, &summary); err != nil {
				return nil, fmt.Errorf("decode summary for %s: %w", row.ID, err)
			}
		}
		out = append(out, &types.CardView{
			ID:            row.ID,
			ISBN:          row.ISBN,
			Title:         row.Title,
			Author:        row.Author,
			CoverImageURL: row.CoverImageURL,
			ImageURL:      row.ImageURL,
			Summary:       summary,
			Likes:         row.Likes,
			CardStatus:    row.CardStatus,
			CreatedAt:     row.CreatedAt,
		})
	}
	return out, nil
}
