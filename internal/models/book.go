package models

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

type Book struct {
	gorm.Model
	Title           string  `json:"title"`
	PublicationYear int     `json:"publication_year"`
	AuthorID        *uint   `json:"author_id"`
	Author          *Author `json:"author,omitempty"`
}

// Validate checks the book against the current time; the publication
// year may not be in the future.
func (b *Book) Validate(now time.Time) error {
	if strings.TrimSpace(b.Title) == "" {
		return errors.New("title is required")
	}
	if b.PublicationYear > now.Year() {
		return errors.New("publication year cannot be in the future")
	}
	return nil
}
