package entity

import (
	"time"

	"github.com/google/uuid"
)

// Note is a reusable prompt-library snippet, independent of businesses and emails.
type Note struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Category  *string   `json:"category,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
