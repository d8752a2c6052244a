package services

import (
	"errors"
	"math"
	"time"

	"gorm.io/gorm"

	"lms/models"
	courseModels "lms/models/course"
)

// EnrollmentService manages the (user, course) enrollment facts. Unenrolling
// removes the enrollment and all lesson progress for that course in one
// transaction; certificates already issued are never touched.
type EnrollmentService struct {
	db *gorm.DB
}

func NewEnrollmentService(db *gorm.DB) *EnrollmentService {
	return &EnrollmentService{db: db}
}

// EnrollmentWithCourse is an enrollment enriched with course details and
// the learner's progress in it
type EnrollmentWithCourse struct {
	courseModels.Enrollment
	CourseTitle        string `json:"course_title"`
	CourseDescription  string `json:"course_description"`
	CourseThumbnail    string `json:"course_thumbnail"`
	CreatorName        string `json:"creator_name"`
	TotalLessons       int    `json:"total_lessons"`
	CompletedLessons   int    `json:"completed_lessons"`
	ProgressPercentage int    `json:"progress_percentage"`
}

// EnrollmentStats summarizes enrollment activity for one course (creator view)
type EnrollmentStats struct {
	TotalEnrollments            int64   `json:"total_enrollments"`
	EnrollmentsLast30Days       int64   `json:"enrollments_last_30_days"`
	EnrollmentsLast7Days        int64   `json:"enrollments_last_7_days"`
	UsersWithProgress           int64   `json:"users_with_progress"`
	AverageCompletionPercentage float64 `json:"average_completion_percentage"`
}

// Enroll creates an enrollment in a published course. A duplicate enrollment
// is rejected via the (user_id, course_id) unique index.
func (s *EnrollmentService) Enroll(userID, courseID uint) (*courseModels.Enrollment, error) {
	var course courseModels.Course
	if err := s.db.Where("id = ? AND is_deleted = ? AND status = ?", courseID, false, courseModels.StatusPublished).First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	enrollment := courseModels.Enrollment{
		UserID:     userID,
		CourseID:   courseID,
		EnrolledAt: time.Now(),
	}
	if err := s.db.Create(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyEnrolled
		}
		return nil, err
	}

	return &enrollment, nil
}

// IsEnrolled reports whether the user holds an enrollment in the course
func (s *EnrollmentService) IsEnrolled(userID, courseID uint) (bool, error) {
	var enrollment courseModels.Enrollment
	err := s.db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, err
}

// Unenroll deletes the enrollment and every lesson progress row the user
// holds for that course. Certificates are permanent proof of past
// achievement and survive unenrollment.
func (s *EnrollmentService) Unenroll(userID, courseID uint) error {
	var enrollment courseModels.Enrollment
	if err := s.db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		lessonIDs := tx.Model(&courseModels.Lesson{}).
			Select("id").
			Where("course_id = ?", courseID)

		if err := tx.Unscoped().
			Where("user_id = ? AND lesson_id IN (?)", userID, lessonIDs).
			Delete(&courseModels.LessonProgress{}).Error; err != nil {
			return err
		}

		return tx.Unscoped().Delete(&enrollment).Error
	})
}

// List returns the user's enrollments, newest first, enriched with course
// details and progress.
func (s *EnrollmentService) List(userID uint, page, limit int) ([]EnrollmentWithCourse, int64, error) {
	var total int64
	if err := s.db.Model(&courseModels.Enrollment{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	var enrollments []courseModels.Enrollment
	if err := s.db.Where("user_id = ?", userID).
		Order("enrolled_at desc").
		Offset(offset).Limit(limit).
		Find(&enrollments).Error; err != nil {
		return nil, 0, err
	}

	result := make([]EnrollmentWithCourse, len(enrollments))
	for i, enrollment := range enrollments {
		result[i] = EnrollmentWithCourse{Enrollment: enrollment}

		var course courseModels.Course
		if err := s.db.First(&course, enrollment.CourseID).Error; err == nil {
			result[i].CourseTitle = course.Title
			result[i].CourseDescription = course.Description
			result[i].CourseThumbnail = course.ThumbnailURL

			var creator models.User
			if err := s.db.First(&creator, course.CreatorID).Error; err == nil {
				result[i].CreatorName = creator.Name
			}
		}

		completion, err := evaluateCourseCompletion(s.db, userID, enrollment.CourseID)
		if err != nil {
			return nil, 0, err
		}
		result[i].TotalLessons = completion.TotalLessons
		result[i].CompletedLessons = completion.CompletedLessons
		if completion.TotalLessons > 0 {
			result[i].ProgressPercentage = int(math.Round(float64(completion.CompletedLessons) / float64(completion.TotalLessons) * 100))
		}
	}

	return result, total, nil
}

// CourseStats returns enrollment statistics for a course owned by creatorID
func (s *EnrollmentService) CourseStats(creatorID, courseID uint) (*EnrollmentStats, error) {
	var course courseModels.Course
	if err := s.db.Where("id = ? AND creator_id = ? AND is_deleted = ?", courseID, creatorID, false).First(&course).Error; err != nil {
		return nil, ErrNotFound
	}

	stats := &EnrollmentStats{}

	if err := s.db.Model(&courseModels.Enrollment{}).
		Where("course_id = ?", courseID).
		Count(&stats.TotalEnrollments).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&courseModels.Enrollment{}).
		Where("course_id = ? AND enrolled_at >= ?", courseID, time.Now().AddDate(0, 0, -30)).
		Count(&stats.EnrollmentsLast30Days).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&courseModels.Enrollment{}).
		Where("course_id = ? AND enrolled_at >= ?", courseID, time.Now().AddDate(0, 0, -7)).
		Count(&stats.EnrollmentsLast7Days).Error; err != nil {
		return nil, err
	}

	lessonIDs := s.db.Model(&courseModels.Lesson{}).
		Select("id").
		Where("course_id = ? AND is_deleted = ?", courseID, false)
	if err := s.db.Model(&courseModels.LessonProgress{}).
		Where("lesson_id IN (?)", lessonIDs).
		Distinct("user_id").
		Count(&stats.UsersWithProgress).Error; err != nil {
		return nil, err
	}

	// Average completion across all enrolled users, recomputed per call
	var enrollments []courseModels.Enrollment
	if err := s.db.Where("course_id = ?", courseID).Find(&enrollments).Error; err != nil {
		return nil, err
	}
	if len(enrollments) > 0 {
		var sum float64
		for _, enrollment := range enrollments {
			completion, err := evaluateCourseCompletion(s.db, enrollment.UserID, courseID)
			if err != nil {
				return nil, err
			}
			if completion.TotalLessons > 0 {
				sum += float64(completion.CompletedLessons) / float64(completion.TotalLessons) * 100
			}
		}
		stats.AverageCompletionPercentage = sum / float64(len(enrollments))
	}

	return stats, nil
}
