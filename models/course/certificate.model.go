package course

import (
	"time"

	"gorm.io/gorm"
)

// Certificate is issued once per (user, course) when every lesson of the
// course reaches 100%. The composite unique index is the source of truth
// for the exactly-once guarantee; concurrent issuers race on the insert and
// the loser sees a duplicate-key error. Rows are immutable once created.
type Certificate struct {
	gorm.Model
	UserID     uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_certificate_user_course"`
	CourseID   uint      `json:"course_id" gorm:"not null;uniqueIndex:idx_certificate_user_course"`
	SerialHash string    `json:"serial_hash" gorm:"size:64;uniqueIndex;not null"`
	IssuedAt   time.Time `json:"issued_at"`
}
