package services

import (
	"errors"
	"log"
	"math"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	courseModels "lms/models/course"
)

// ProgressService records per-lesson progress and derives per-course
// completion state. Reaching 100% on a lesson triggers the certificate
// issuer; issuer failures never fail the progress write.
type ProgressService struct {
	db     *gorm.DB
	issuer *CertificateService
}

func NewProgressService(db *gorm.DB, issuer *CertificateService) *ProgressService {
	return &ProgressService{db: db, issuer: issuer}
}

// LessonWithProgress is a lesson enriched with the caller's progress row
type LessonWithProgress struct {
	courseModels.Lesson
	ProgressPercentage int        `json:"progress_percentage"`
	CompletedAt        *time.Time `json:"completed_at"`
	IsCompleted        bool       `json:"is_completed"`
}

// CourseProgressView is the aggregated progress of one course for one user
type CourseProgressView struct {
	CourseID          uint                 `json:"course_id"`
	TotalLessons      int                  `json:"total_lessons"`
	CompletedLessons  int                  `json:"completed_lessons"`
	OverallProgress   int                  `json:"overall_progress"`
	IsCourseCompleted bool                 `json:"is_course_completed"`
	Lessons           []LessonWithProgress `json:"lessons"`
}

// CourseSummary is one row of the progress overview
type CourseSummary struct {
	CourseID           uint       `json:"course_id"`
	CourseTitle        string     `json:"course_title"`
	CourseThumbnail    string     `json:"course_thumbnail"`
	TotalLessons       int        `json:"total_lessons"`
	CompletedLessons   int        `json:"completed_lessons"`
	ProgressPercentage int        `json:"progress_percentage"`
	IsCompleted        bool       `json:"is_completed"`
	LastActivity       *time.Time `json:"last_activity"`
	EnrolledAt         time.Time  `json:"enrolled_at"`
}

// OverviewStatistics summarizes the learner's progress across all courses
type OverviewStatistics struct {
	TotalCourses              int `json:"total_courses"`
	CompletedCourses          int `json:"completed_courses"`
	TotalCompletedLessons     int `json:"total_completed_lessons"`
	TotalLessonsAcrossCourses int `json:"total_lessons_across_courses"`
}

// Overview is the paginated per-course summary list plus learner statistics
type Overview struct {
	Items      []CourseSummary    `json:"items"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	Statistics OverviewStatistics `json:"statistics"`
}

// RecordProgress upserts the (user, lesson) progress row. Preconditions:
// the lesson exists, its course is published and the user is enrolled in
// it; any failure is reported as ErrNotFound. CompletedAt is set while the
// stored percentage is 100 and cleared otherwise.
func (s *ProgressService) RecordProgress(userID, lessonID uint, percentage int) (*courseModels.LessonProgress, error) {
	if percentage < 0 || percentage > 100 {
		return nil, ErrInvalidPercentage
	}

	lesson, err := s.verifyLessonAccess(userID, lessonID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	progress := courseModels.LessonProgress{
		UserID:             userID,
		LessonID:           lessonID,
		ProgressPercentage: percentage,
	}
	if percentage == 100 {
		progress.CompletedAt = &now
	}

	err = s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"progress_percentage": percentage,
			"completed_at":        progress.CompletedAt,
			"updated_at":          now,
		}),
	}).Create(&progress).Error
	if err != nil {
		return nil, err
	}

	// Re-read so the caller sees the stored row regardless of which branch
	// of the upsert ran.
	var saved courseModels.LessonProgress
	if err := s.db.Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&saved).Error; err != nil {
		return nil, err
	}

	// The progress write above is already committed. Issuance runs after it
	// and its failure is only logged; the client response reflects the
	// progress write alone.
	if percentage == 100 && s.issuer != nil {
		if _, err := s.issuer.IssueIfEligible(userID, lesson.CourseID); err != nil {
			log.Printf("Error issuing certificate for user %d course %d: %v", userID, lesson.CourseID, err)
		}
	}

	return &saved, nil
}

// CompleteLesson marks a lesson as fully watched. Same preconditions and
// effect as RecordProgress with percentage fixed at 100.
func (s *ProgressService) CompleteLesson(userID, lessonID uint) (*courseModels.LessonProgress, error) {
	return s.RecordProgress(userID, lessonID, 100)
}

// EvaluateCourseCompletion recomputes the derived completion state for one
// (user, course) pair. Pure read, callable any number of times.
func (s *ProgressService) EvaluateCourseCompletion(userID, courseID uint) (CourseCompletion, error) {
	return evaluateCourseCompletion(s.db, userID, courseID)
}

// CourseProgress returns the per-lesson progress of an enrolled user in a
// published course, ordered by lesson order index.
func (s *ProgressService) CourseProgress(userID, courseID uint) (*CourseProgressView, error) {
	var course courseModels.Course
	if err := s.db.Where("id = ? AND is_deleted = ? AND status = ?", courseID, false, courseModels.StatusPublished).First(&course).Error; err != nil {
		return nil, ErrNotFound
	}

	var enrollment courseModels.Enrollment
	if err := s.db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error; err != nil {
		return nil, ErrNotFound
	}

	var lessons []courseModels.Lesson
	if err := s.db.Where("course_id = ? AND is_deleted = ?", courseID, false).
		Order("order_index asc").Find(&lessons).Error; err != nil {
		return nil, err
	}

	view := &CourseProgressView{
		CourseID: courseID,
		Lessons:  make([]LessonWithProgress, len(lessons)),
	}

	for i, lesson := range lessons {
		view.Lessons[i] = LessonWithProgress{Lesson: lesson}

		var progress courseModels.LessonProgress
		if err := s.db.Where("user_id = ? AND lesson_id = ?", userID, lesson.ID).First(&progress).Error; err == nil {
			view.Lessons[i].ProgressPercentage = progress.ProgressPercentage
			view.Lessons[i].CompletedAt = progress.CompletedAt
			view.Lessons[i].IsCompleted = progress.CompletedAt != nil
			if view.Lessons[i].IsCompleted {
				view.CompletedLessons++
			}
		}
	}

	view.TotalLessons = len(lessons)
	if view.TotalLessons > 0 {
		view.OverallProgress = int(math.Round(float64(view.CompletedLessons) / float64(view.TotalLessons) * 100))
	}
	view.IsCourseCompleted = view.TotalLessons > 0 && view.CompletedLessons == view.TotalLessons

	return view, nil
}

// ProgressOverview returns paginated per-course summaries for the user's
// enrollments in published courses plus learner-wide statistics.
func (s *ProgressService) ProgressOverview(userID uint, page, limit int) (*Overview, error) {
	base := s.db.Model(&courseModels.Enrollment{}).
		Joins("JOIN courses ON courses.id = enrollments.course_id").
		Where("enrollments.user_id = ? AND courses.is_deleted = ? AND courses.status = ?",
			userID, false, courseModels.StatusPublished)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, err
	}

	offset := (page - 1) * limit
	var enrollments []courseModels.Enrollment
	if err := base.Select("enrollments.*").
		Order("enrollments.enrolled_at desc").
		Offset(offset).Limit(limit).
		Find(&enrollments).Error; err != nil {
		return nil, err
	}

	overview := &Overview{
		Items: make([]CourseSummary, len(enrollments)),
		Total: total,
		Page:  page,
		Limit: limit,
	}

	for i, enrollment := range enrollments {
		summary, err := s.courseSummary(userID, enrollment)
		if err != nil {
			return nil, err
		}
		overview.Items[i] = summary
	}

	stats, err := s.overviewStatistics(userID)
	if err != nil {
		return nil, err
	}
	overview.Statistics = stats

	return overview, nil
}

func (s *ProgressService) courseSummary(userID uint, enrollment courseModels.Enrollment) (CourseSummary, error) {
	summary := CourseSummary{
		CourseID:   enrollment.CourseID,
		EnrolledAt: enrollment.EnrolledAt,
	}

	var course courseModels.Course
	if err := s.db.First(&course, enrollment.CourseID).Error; err != nil {
		return summary, err
	}
	summary.CourseTitle = course.Title
	summary.CourseThumbnail = course.ThumbnailURL

	completion, err := evaluateCourseCompletion(s.db, userID, enrollment.CourseID)
	if err != nil {
		return summary, err
	}
	summary.TotalLessons = completion.TotalLessons
	summary.CompletedLessons = completion.CompletedLessons
	summary.IsCompleted = completion.IsComplete
	if completion.TotalLessons > 0 {
		summary.ProgressPercentage = int(math.Round(float64(completion.CompletedLessons) / float64(completion.TotalLessons) * 100))
	}

	lessonIDs := s.db.Model(&courseModels.Lesson{}).
		Select("id").
		Where("course_id = ? AND is_deleted = ?", enrollment.CourseID, false)

	var lastActivity courseModels.LessonProgress
	if err := s.db.Where("user_id = ? AND lesson_id IN (?) AND completed_at IS NOT NULL", userID, lessonIDs).
		Order("completed_at desc").First(&lastActivity).Error; err == nil {
		summary.LastActivity = lastActivity.CompletedAt
	}

	return summary, nil
}

func (s *ProgressService) overviewStatistics(userID uint) (OverviewStatistics, error) {
	var stats OverviewStatistics

	var enrollments []courseModels.Enrollment
	if err := s.db.Model(&courseModels.Enrollment{}).
		Joins("JOIN courses ON courses.id = enrollments.course_id").
		Where("enrollments.user_id = ? AND courses.is_deleted = ? AND courses.status = ?",
			userID, false, courseModels.StatusPublished).
		Select("enrollments.*").
		Find(&enrollments).Error; err != nil {
		return stats, err
	}

	for _, enrollment := range enrollments {
		completion, err := evaluateCourseCompletion(s.db, userID, enrollment.CourseID)
		if err != nil {
			return stats, err
		}
		stats.TotalCourses++
		stats.TotalCompletedLessons += completion.CompletedLessons
		stats.TotalLessonsAcrossCourses += completion.TotalLessons
		if completion.IsComplete {
			stats.CompletedCourses++
		}
	}

	return stats, nil
}

// verifyLessonAccess checks the lesson/published-course/enrollment triple.
// All three must hold before a progress write is accepted.
func (s *ProgressService) verifyLessonAccess(userID, lessonID uint) (*courseModels.Lesson, error) {
	var lesson courseModels.Lesson
	if err := s.db.Where("id = ? AND is_deleted = ?", lessonID, false).First(&lesson).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var course courseModels.Course
	if err := s.db.Where("id = ? AND is_deleted = ? AND status = ?", lesson.CourseID, false, courseModels.StatusPublished).First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var enrollment courseModels.Enrollment
	if err := s.db.Where("user_id = ? AND course_id = ?", userID, lesson.CourseID).First(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &lesson, nil
}
