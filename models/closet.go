package models

import (
	"time"

	"github.com/google/uuid"
)

// ClosetItem is a product owned by the user, stored with one chosen color
type ClosetItem struct {
	ID        uuid.UUID `json:"id"`
	Brand     Brand     `json:"brand"`
	ProductID string    `json:"product_id"`
	Title     *string   `json:"title"`
	ImageURL  *string   `json:"image_url"`
	SourceURL string    `json:"source_url"`
	Category  string    `json:"category"`
	ColorCode *string   `json:"color_code"`
	ColorName *string   `json:"color_name"`
	ColorURL  *string   `json:"color_image_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NeedsRefresh reports whether the stored metadata is incomplete
func (i *ClosetItem) NeedsRefresh() bool {
	return i.Title == nil || i.ImageURL == nil || i.Category == CategoryUncategorized
}
