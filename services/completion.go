package services

import (
	"gorm.io/gorm"

	courseModels "lms/models/course"
)

// CourseCompletion is the derived completion state of one (user, course)
// pair. It is recomputed from lessons and lesson_progress on every call and
// never stored.
type CourseCompletion struct {
	TotalLessons     int  `json:"total_lessons"`
	CompletedLessons int  `json:"completed_lessons"`
	IsComplete       bool `json:"is_complete"`
}

// evaluateCourseCompletion joins the lessons of a course against the user's
// 100% progress rows. A course with zero lessons is never complete.
func evaluateCourseCompletion(db *gorm.DB, userID, courseID uint) (CourseCompletion, error) {
	var completion CourseCompletion

	var total int64
	if err := db.Model(&courseModels.Lesson{}).
		Where("course_id = ? AND is_deleted = ?", courseID, false).
		Count(&total).Error; err != nil {
		return completion, err
	}

	lessonIDs := db.Model(&courseModels.Lesson{}).
		Select("id").
		Where("course_id = ? AND is_deleted = ?", courseID, false)

	var completed int64
	if err := db.Model(&courseModels.LessonProgress{}).
		Where("user_id = ? AND progress_percentage = 100 AND lesson_id IN (?)", userID, lessonIDs).
		Count(&completed).Error; err != nil {
		return completion, err
	}

	completion.TotalLessons = int(total)
	completion.CompletedLessons = int(completed)
	completion.IsComplete = total > 0 && completed == total
	return completion, nil
}
