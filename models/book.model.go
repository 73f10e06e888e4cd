package models

import (
	"time"

	"gorm.io/gorm"
)

type Book struct {
	gorm.Model
	UserID      uint   `gorm:"not null;index" json:"userId"`
	Title       string `gorm:"not null" json:"title"`
	Author      string `gorm:"default:''" json:"author"`
	Genre       string `gorm:"default:'';index" json:"genre"`
	Description string `gorm:"type:text" json:"description"`

	FilePath   string    `gorm:"not null" json:"filePath"`
	FileSize   int64     `json:"fileSize"`
	CoverImage string    `gorm:"default:''" json:"coverImage"`
	UploadDate time.Time `gorm:"autoCreateTime;index" json:"uploadDate"`

	// Materialized projection over Comments. Recomputed inside the same
	// transaction as every comment insert/delete, never mutated directly.
	AverageRating *float64 `gorm:"type:decimal(2,1)" json:"averageRating"`
	TotalRatings  int      `gorm:"default:0;check:total_ratings >= 0" json:"totalRatings"`

	// Associations - omit in JSON unless Preloaded
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
