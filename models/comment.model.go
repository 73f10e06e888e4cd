package models

import "gorm.io/gorm"

type Comment struct {
	gorm.Model
	BookID  uint   `gorm:"not null;index" json:"bookId"`
	UserID  uint   `gorm:"not null;index" json:"userId"`
	Comment string `gorm:"type:text;not null" json:"comment"`
	Rating  int    `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`

	// Associations - omit in JSON list unless Preloaded
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Book Book `gorm:"foreignKey:BookID" json:"-"`
}
