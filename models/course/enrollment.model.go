package course

import (
	"time"

	"gorm.io/gorm"
)

// Enrollment tracks a learner's enrollment in a course.
// The composite unique index keeps it to one enrollment per (user, course).
type Enrollment struct {
	gorm.Model
	UserID     uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_enrollment_user_course"`
	CourseID   uint      `json:"course_id" gorm:"not null;uniqueIndex:idx_enrollment_user_course"`
	EnrolledAt time.Time `json:"enrolled_at"`
}
