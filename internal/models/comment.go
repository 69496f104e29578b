package models

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

type Comment struct {
	gorm.Model
	PostID   uint   `json:"post_id"`
	AuthorID uint   `json:"author_id"`
	Author   User   `json:"author" gorm:"foreignKey:AuthorID"`
	Content  string `json:"content"`
	Approved bool   `json:"approved" gorm:"default:true"`
	LikedBy  []User `json:"-" gorm:"many2many:comment_likes;"`
}

func (c *Comment) Validate() error {
	if strings.TrimSpace(c.Content) == "" {
		return errors.New("content is required")
	}
	return nil
}
