package models

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

type Tag struct {
	gorm.Model
	Name string `json:"name" gorm:"uniqueIndex"`
	Slug string `json:"slug" gorm:"uniqueIndex"`
}

// Slugify builds a URL-safe tag slug from a name.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Join(strings.Fields(slug), "-")
	return slug
}

type Post struct {
	gorm.Model
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	AuthorID  uint      `json:"author_id"`
	Author    User      `json:"author" gorm:"foreignKey:AuthorID"`
	Published bool      `json:"published" gorm:"default:true"`
	Tags      []Tag     `json:"tags" gorm:"many2many:post_tags;"`
	Comments  []Comment `json:"-" gorm:"foreignKey:PostID"`
	LikedBy   []User    `json:"-" gorm:"many2many:post_likes;"`
}

func (p *Post) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return errors.New("title is required")
	}
	if strings.TrimSpace(p.Content) == "" {
		return errors.New("content is required")
	}
	return nil
}
