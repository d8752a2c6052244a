package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"lms/models"
	courseModels "lms/models/course"
)

// setupTestDB opens a fresh shared in-memory SQLite database for one test.
// A single pooled connection keeps the database alive and serializes
// access, so goroutines in concurrency tests interleave between queries
// rather than corrupting the shared cache.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&courseModels.Course{},
		&courseModels.Lesson{},
		&courseModels.Enrollment{},
		&courseModels.LessonProgress{},
		&courseModels.Certificate{},
	))

	t.Cleanup(func() { sqlDB.Close() })

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, name, email, role string) models.User {
	t.Helper()

	user := models.User{
		Name:     name,
		Email:    email,
		Role:     role,
		Password: "not-a-real-hash",
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// createTestCourse creates a course with lessonCount ordered lessons
func createTestCourse(t *testing.T, db *gorm.DB, creatorID uint, status string, lessonCount int) (courseModels.Course, []courseModels.Lesson) {
	t.Helper()

	course := courseModels.Course{
		CreatorID:   creatorID,
		Title:       "Test Course",
		Description: "A course used in tests",
		Status:      status,
	}
	require.NoError(t, db.Create(&course).Error)

	lessons := make([]courseModels.Lesson, lessonCount)
	for i := 0; i < lessonCount; i++ {
		lessons[i] = courseModels.Lesson{
			CourseID:   course.ID,
			Title:      fmt.Sprintf("Lesson %d", i+1),
			Duration:   10,
			OrderIndex: i,
		}
		require.NoError(t, db.Create(&lessons[i]).Error)
	}

	return course, lessons
}

func enrollTestUser(t *testing.T, db *gorm.DB, userID, courseID uint) courseModels.Enrollment {
	t.Helper()

	enrollment := courseModels.Enrollment{
		UserID:     userID,
		CourseID:   courseID,
		EnrolledAt: time.Now(),
	}
	require.NoError(t, db.Create(&enrollment).Error)
	return enrollment
}

// completeAllLessons writes 100% progress rows directly, bypassing the
// ledger, for tests that exercise the issuer in isolation.
func completeAllLessons(t *testing.T, db *gorm.DB, userID uint, lessons []courseModels.Lesson) {
	t.Helper()

	now := time.Now()
	for _, lesson := range lessons {
		progress := courseModels.LessonProgress{
			UserID:             userID,
			LessonID:           lesson.ID,
			ProgressPercentage: 100,
			CompletedAt:        &now,
		}
		require.NoError(t, db.Create(&progress).Error)
	}
}
