package services

import (
	"errors"

	"gorm.io/gorm"

	courseModels "lms/models/course"
)

// CourseService covers the catalog surface the progress pipeline reads
// from: published course listing, course detail with ordered lessons, and
// the creator/admin authoring operations that put lessons there.
type CourseService struct {
	db *gorm.DB
}

func NewCourseService(db *gorm.DB) *CourseService {
	return &CourseService{db: db}
}

// CourseDetail is a course with its ordered lessons
type CourseDetail struct {
	Course     courseModels.Course   `json:"course"`
	Lessons    []courseModels.Lesson `json:"lessons"`
	IsEnrolled bool                  `json:"is_enrolled"`
}

// ListPublished returns published courses, newest first
func (s *CourseService) ListPublished(page, limit int) ([]courseModels.Course, int64, error) {
	var total int64
	if err := s.db.Model(&courseModels.Course{}).
		Where("is_deleted = ? AND status = ?", false, courseModels.StatusPublished).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	var courses []courseModels.Course
	if err := s.db.Where("is_deleted = ? AND status = ?", false, courseModels.StatusPublished).
		Order("created_at desc").
		Offset(offset).Limit(limit).
		Find(&courses).Error; err != nil {
		return nil, 0, err
	}

	return courses, total, nil
}

// Detail returns a published course with its lessons in order and whether
// userID is enrolled.
func (s *CourseService) Detail(userID, courseID uint) (*CourseDetail, error) {
	var course courseModels.Course
	if err := s.db.Where("id = ? AND is_deleted = ? AND status = ?", courseID, false, courseModels.StatusPublished).First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var lessons []courseModels.Lesson
	if err := s.db.Where("course_id = ? AND is_deleted = ?", courseID, false).
		Order("order_index asc").Find(&lessons).Error; err != nil {
		return nil, err
	}

	var enrollment courseModels.Enrollment
	isEnrolled := s.db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error == nil

	return &CourseDetail{Course: course, Lessons: lessons, IsEnrolled: isEnrolled}, nil
}

// ListLessons returns the ordered lessons of a course. Used by the
// aggregation read paths; does not filter on course status.
func (s *CourseService) ListLessons(courseID uint) ([]courseModels.Lesson, error) {
	var lessons []courseModels.Lesson
	if err := s.db.Where("course_id = ? AND is_deleted = ?", courseID, false).
		Order("order_index asc").Find(&lessons).Error; err != nil {
		return nil, err
	}
	return lessons, nil
}

// Create saves a new draft course for the creator
func (s *CourseService) Create(creatorID uint, title, description, thumbnailURL string) (*courseModels.Course, error) {
	course := courseModels.Course{
		CreatorID:    creatorID,
		Title:        title,
		Description:  description,
		ThumbnailURL: thumbnailURL,
		Status:       courseModels.StatusDraft,
	}
	if err := s.db.Create(&course).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

// AddLesson appends a lesson to a course owned by creatorID. The order
// index must be unique within the course.
func (s *CourseService) AddLesson(creatorID, courseID uint, title, description, videoURL string, duration, orderIndex int) (*courseModels.Lesson, error) {
	var course courseModels.Course
	if err := s.db.Where("id = ? AND creator_id = ? AND is_deleted = ?", courseID, creatorID, false).First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	lesson := courseModels.Lesson{
		CourseID:    courseID,
		Title:       title,
		Description: description,
		VideoURL:    videoURL,
		Duration:    duration,
		OrderIndex:  orderIndex,
	}
	if err := s.db.Create(&lesson).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrOrderIndexTaken
		}
		return nil, err
	}

	return &lesson, nil
}

// Publish transitions a course to PUBLISHED (admin review outcome)
func (s *CourseService) Publish(courseID uint) (*courseModels.Course, error) {
	var course courseModels.Course
	if err := s.db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	course.Status = courseModels.StatusPublished
	if err := s.db.Save(&course).Error; err != nil {
		return nil, err
	}

	return &course, nil
}
