package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lms/models"
	courseModels "lms/models/course"
)

func TestEnroll(t *testing.T) {
	db := setupTestDB(t)
	creator := createTestUser(t, db, "Carol Creator", "carol@example.com", models.RoleCreator)
	learner := createTestUser(t, db, "Lenny Learner", "lenny@example.com", models.RoleLearner)
	published, _ := createTestCourse(t, db, creator.ID, courseModels.StatusPublished, 1)
	draft, _ := createTestCourse(t, db, creator.ID, courseModels.StatusDraft, 1)

	svc := NewEnrollmentService(db)

	enrollment, err := svc.Enroll(learner.ID, published.ID)
	require.NoError(t, err)
	assert.Equal(t, learner.ID, enrollment.UserID)
	assert.False(t, enrollment.EnrolledAt.IsZero())

	// Second enrollment in the same course is rejected
	_, err = svc.Enroll(learner.ID, published.ID)
	assert.ErrorIs(t, err, ErrAlreadyEnrolled)

	// Draft and unknown courses look the same to the learner
	_, err = svc.Enroll(learner.ID, draft.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Enroll(learner.ID, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIsEnrolled(t *testing.T) {
	db := setupTestDB(t)
	creator := createTestUser(t, db, "Carol Creator", "carol@example.com", models.RoleCreator)
	learner := createTestUser(t, db, "Lenny Learner", "lenny@example.com", models.RoleLearner)
	course, _ := createTestCourse(t, db, creator.ID, courseModels.StatusPublished, 1)

	svc := NewEnrollmentService(db)

	enrolled, err := svc.IsEnrolled(learner.ID, course.ID)
	require.NoError(t, err)
	assert.False(t, enrolled)

	enrollTestUser(t, db, learner.ID, course.ID)

	enrolled, err = svc.IsEnrolled(learner.ID, course.ID)
	require.NoError(t, err)
	assert.True(t, enrolled)
}

func TestUnenroll(t *testing.T) {
	db := setupTestDB(t)
	creator := createTestUser(t, db, "Carol Creator", "carol@example.com", models.RoleCreator)
	learner := createTestUser(t, db, "Lenny Learner", "lenny@example.com", models.RoleLearner)
	course, lessons := createTestCourse(t, db, creator.ID, courseModels.StatusPublished, 2)
	other, otherLessons := createTestCourse(t, db, creator.ID, courseModels.StatusPublished, 1)
	enrollTestUser(t, db, learner.ID, course.ID)
	enrollTestUser(t, db, learner.ID, other.ID)
	completeAllLessons(t, db, learner.ID, lessons)
	completeAllLessons(t, db, learner.ID, otherLessons)

	certs := NewCertificateService(db, nil)
	cert, err := certs.IssueIfEligible(learner.ID, course.ID)
	require.NoError(t, err)
	require.NotNil(t, cert)

	svc := NewEnrollmentService(db)
	require.NoError(t, svc.Unenroll(learner.ID, course.ID))

	// Enrollment and the course's progress rows are gone
	enrolled, err := svc.IsEnrolled(learner.ID, course.ID)
	require.NoError(t, err)
	assert.False(t, enrolled)

	var progressCount int64
	require.NoError(t, db.Model(&courseModels.LessonProgress{}).
		Where("user_id = ?", learner.ID).
		Count(&progressCount).Error)
	assert.Equal(t, int64(1), progressCount, "progress in other courses must survive")

	// The certificate survives unenrollment
	var certCount int64
	require.NoError(t, db.Model(&courseModels.Certificate{}).
		Where("user_id = ? AND course_id = ?", learner.ID, course.ID).
		Count(&certCount).Error)
	assert.Equal(t, int64(1), certCount)

	// Unenrolling twice is an error
	assert.ErrorIs(t, svc.Unenroll(learner.ID, course.ID), ErrNotFound)

	// Re-enrollment starts from a clean slate
	_, err = svc.Enroll(learner.ID, course.ID)
	require.NoError(t, err)

	completion, err := evaluateCourseCompletion(db, learner.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, completion.CompletedLessons)
}

func TestEnrollmentList(t *testing.T) {
	db := setupTestDB(t)
	creator := createTestUser(t, db, "Carol Creator", "carol@example.com", models.RoleCreator)
	learner := createTestUser(t, db, "Lenny Learner", "lenny@example.com", models.RoleLearner)

	first, firstLessons := createTestCourse(t, db, creator.ID, courseModels.StatusPublished, 2)
	second, _ := createTestCourse(t, db, creator.ID, courseModels.StatusPublished, 3)
	enrollTestUser(t, db, learner.ID, first.ID)
	enrollTestUser(t, db, learner.ID, second.ID)
	completeAllLessons(t, db, learner.ID, firstLessons[:1])

	svc := NewEnrollmentService(db)

	list, total, err := svc.List(learner.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, list, 2)

	byCourse := map[uint]EnrollmentWithCourse{}
	for _, item := range list {
		byCourse[item.CourseID] = item
	}
	assert.Equal(t, "Test Course", byCourse[first.ID].CourseTitle)
	assert.Equal(t, "Carol Creator", byCourse[first.ID].CreatorName)
	assert.Equal(t, 2, byCourse[first.ID].TotalLessons)
	assert.Equal(t, 1, byCourse[first.ID].CompletedLessons)
	assert.Equal(t, 50, byCourse[first.ID].ProgressPercentage)
	assert.Equal(t, 0, byCourse[second.ID].ProgressPercentage)

	paged, total, err := svc.List(learner.ID, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, paged, 1)
}

func TestEnrollmentCourseStats(t *testing.T) {
	db := setupTestDB(t)
	creator := createTestUser(t, db, "Carol Creator", "carol@example.com", models.RoleCreator)
	stranger := createTestUser(t, db, "Steve Stranger", "steve@example.com", models.RoleCreator)
	course, lessons := createTestCourse(t, db, creator.ID, courseModels.StatusPublished, 2)

	done := createTestUser(t, db, "Dana Done", "dana@example.com", models.RoleLearner)
	halfway := createTestUser(t, db, "Hank Halfway", "hank@example.com", models.RoleLearner)
	idle := createTestUser(t, db, "Ida Idle", "ida@example.com", models.RoleLearner)
	enrollTestUser(t, db, done.ID, course.ID)
	enrollTestUser(t, db, halfway.ID, course.ID)
	enrollTestUser(t, db, idle.ID, course.ID)
	completeAllLessons(t, db, done.ID, lessons)
	completeAllLessons(t, db, halfway.ID, lessons[:1])

	svc := NewEnrollmentService(db)

	stats, err := svc.CourseStats(creator.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalEnrollments)
	assert.Equal(t, int64(3), stats.EnrollmentsLast30Days)
	assert.Equal(t, int64(3), stats.EnrollmentsLast7Days)
	assert.Equal(t, int64(2), stats.UsersWithProgress)
	assert.InDelta(t, 50.0, stats.AverageCompletionPercentage, 0.01)

	_, err = svc.CourseStats(stranger.ID, course.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
