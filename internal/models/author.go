package models

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

type Author struct {
	gorm.Model
	Name  string `json:"name"`
	Books []Book `json:"books,omitempty" gorm:"foreignKey:AuthorID"`
}

func (a *Author) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return errors.New("name is required")
	}
	return nil
}
