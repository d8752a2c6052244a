package course

import "gorm.io/gorm"

// Course status constants
const (
	StatusDraft     = "DRAFT"
	StatusPublished = "PUBLISHED"
)

// Course represents a learning course authored by a creator
type Course struct {
	gorm.Model
	CreatorID    uint   `json:"creator_id" gorm:"index;not null"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	ThumbnailURL string `json:"thumbnail_url"`
	Status       string `json:"status" gorm:"default:'DRAFT'"` // DRAFT, PUBLISHED
	IsDeleted    bool   `gorm:"default:false"`
}
