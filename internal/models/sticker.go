package models

import (
	"time"

	"github.com/lib/pq"
)

// Sticker is a catalog entry referenced by sticker messages.
type Sticker struct {
	ID        int            `db:"id" json:"id"`
	Name      string         `db:"name" json:"name"`
	ImageURL  string         `db:"image_url" json:"image_url"`
	Category  string         `db:"category" json:"category"`
	Tags      pq.StringArray `db:"tags" json:"tags,omitempty"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}
