package book

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a book is not found.
var ErrNotFound = errors.New("book not found")

// Book represents a catalog entry as served by the books backend.
type Book struct {
	ID            string    `json:"id"`
	ISBN          string    `json:"isbn"`
	Title         string    `json:"title"`
	Subtitle      string    `json:"subtitle,omitempty"`
	Genre         string    `json:"genre,omitempty"`
	Publisher     string    `json:"publisher,omitempty"`
	Description   string    `json:"description,omitempty"`
	PublishedDate string    `json:"published_date,omitempty"`
	PageCount     *int      `json:"page_count,omitempty"`
	Language      string    `json:"language,omitempty"`
	CoverURL      *string   `json:"cover_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Data is the payload of a books fetch. Items is nil when the backend
// omitted the field.
type Data struct {
	Items []Book `json:"items,omitempty"`
}
