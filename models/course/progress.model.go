package course

import (
	"time"

	"gorm.io/gorm"
)

// LessonProgress records a learner's state on one lesson. One row per
// (user, lesson); every later report upserts the same row. CompletedAt is
// set only while the stored percentage is 100.
type LessonProgress struct {
	gorm.Model
	UserID             uint       `json:"user_id" gorm:"not null;uniqueIndex:idx_progress_user_lesson"`
	LessonID           uint       `json:"lesson_id" gorm:"not null;uniqueIndex:idx_progress_user_lesson"`
	ProgressPercentage int        `json:"progress_percentage" gorm:"default:0"` // 0-100
	CompletedAt        *time.Time `json:"completed_at"`
}
