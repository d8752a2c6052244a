package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"lms/config"
	authController "lms/controllers/auth"
	certificateController "lms/controllers/certificate"
	courseController "lms/controllers/course"
	enrollmentController "lms/controllers/enrollment"
	progressController "lms/controllers/progress"
	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	"lms/routers/authRoutes"
	"lms/routers/certificateRoutes"
	"lms/routers/courseRoutes"
	"lms/routers/enrollmentRoutes"
	"lms/routers/progressRoutes"
	"lms/services"
)

// apiResponse is the JSON envelope every handler wraps its payload in
type apiResponse struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// newTestApp wires the full HTTP surface over an in-memory database
func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	config.AppConfig = &config.Config{
		JWTKey:    "test-secret",
		SaltRound: 4,
	}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.RunMigrations(db))

	certificateService := services.NewCertificateService(db, nil)
	progressService := services.NewProgressService(db, certificateService)
	enrollmentService := services.NewEnrollmentService(db)
	courseService := services.NewCourseService(db)

	app := fiber.New()
	authRoutes.SetupAuthRoutes(app, authController.NewAuthController(db))
	courseRoutes.SetupCourseRoutes(app, courseController.NewCourseController(courseService))
	enrollmentRoutes.SetupEnrollmentRoutes(app, enrollmentController.NewEnrollmentController(db, enrollmentService))
	progressRoutes.SetupProgressRoutes(app, progressController.NewProgressController(progressService))
	certificateRoutes.SetupCertificateRoutes(app, certificateController.NewCertificateController(certificateService))

	return app, db
}

func seedLearner(t *testing.T, db *gorm.DB) (models.User, string) {
	t.Helper()

	user := models.User{
		Name:     "Lenny Learner",
		Email:    "lenny@example.com",
		Role:     models.RoleLearner,
		Password: "not-a-real-hash",
	}
	require.NoError(t, db.Create(&user).Error)

	token, err := middleware.GenerateJWT(user.ID, user.Name, user.Role, user.Email)
	require.NoError(t, err)

	return user, token
}

func seedPublishedCourse(t *testing.T, db *gorm.DB, lessonCount int) (courseModels.Course, []courseModels.Lesson) {
	t.Helper()

	creator := models.User{
		Name:     "Carol Creator",
		Email:    "carol@example.com",
		Role:     models.RoleCreator,
		Password: "not-a-real-hash",
	}
	require.NoError(t, db.Create(&creator).Error)

	course := courseModels.Course{
		CreatorID:   creator.ID,
		Title:       "Distributed Systems",
		Description: "From logs to consensus",
		Status:      courseModels.StatusPublished,
	}
	require.NoError(t, db.Create(&course).Error)

	lessons := make([]courseModels.Lesson, lessonCount)
	for i := 0; i < lessonCount; i++ {
		lessons[i] = courseModels.Lesson{
			CourseID:   course.ID,
			Title:      fmt.Sprintf("Lesson %d", i+1),
			Duration:   15,
			OrderIndex: i,
		}
		require.NoError(t, db.Create(&lessons[i]).Error)
	}

	return course, lessons
}

func doRequest(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, apiResponse) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, int(10*time.Second/time.Millisecond))
	require.NoError(t, err)
	defer resp.Body.Close()

	var parsed apiResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))

	return resp.StatusCode, parsed
}

// TestLearnerJourney walks the whole pipeline over HTTP: enroll, report
// partial progress, complete every lesson, then collect and verify the
// certificate.
func TestLearnerJourney(t *testing.T) {
	app, db := newTestApp(t)
	_, token := seedLearner(t, db)
	course, lessons := seedPublishedCourse(t, db, 2)

	// Enroll
	code, resp := doRequest(t, app, http.MethodPost, fmt.Sprintf("/enrollments/%d", course.ID), token, nil)
	require.Equal(t, http.StatusCreated, code, resp.Message)

	// Duplicate enrollment is a conflict
	code, _ = doRequest(t, app, http.MethodPost, fmt.Sprintf("/enrollments/%d", course.ID), token, nil)
	assert.Equal(t, http.StatusConflict, code)

	// Halfway through lesson 1: no certificate yet
	code, _ = doRequest(t, app, http.MethodPost, fmt.Sprintf("/progress/lessons/%d", lessons[0].ID), token,
		fiber.Map{"progress_percentage": 50})
	require.Equal(t, http.StatusOK, code)

	code, resp = doRequest(t, app, http.MethodGet, "/certificates/my-certificates", token, nil)
	require.Equal(t, http.StatusOK, code)
	var listing struct {
		Certificates []struct {
			SerialHash string `json:"serial_hash"`
		} `json:"certificates"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &listing))
	assert.Empty(t, listing.Certificates)

	// Finish both lessons
	code, _ = doRequest(t, app, http.MethodPost, fmt.Sprintf("/progress/lessons/%d/complete", lessons[0].ID), token, nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = doRequest(t, app, http.MethodPost, fmt.Sprintf("/progress/lessons/%d", lessons[1].ID), token,
		fiber.Map{"progress_percentage": 100})
	require.Equal(t, http.StatusOK, code)

	// Course view agrees the course is done
	code, resp = doRequest(t, app, http.MethodGet, fmt.Sprintf("/progress/courses/%d", course.ID), token, nil)
	require.Equal(t, http.StatusOK, code)
	var view struct {
		TotalLessons      int  `json:"total_lessons"`
		CompletedLessons  int  `json:"completed_lessons"`
		OverallProgress   int  `json:"overall_progress"`
		IsCourseCompleted bool `json:"is_course_completed"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &view))
	assert.Equal(t, 2, view.TotalLessons)
	assert.Equal(t, 2, view.CompletedLessons)
	assert.Equal(t, 100, view.OverallProgress)
	assert.True(t, view.IsCourseCompleted)

	// Exactly one certificate with a 64-char hex serial
	code, resp = doRequest(t, app, http.MethodGet, "/certificates/my-certificates", token, nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(resp.Data, &listing))
	require.Len(t, listing.Certificates, 1)
	serial := listing.Certificates[0].SerialHash
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{64}$`), serial)

	// Public verification, no token
	code, resp = doRequest(t, app, http.MethodGet, "/certificates/verify/"+serial, "", nil)
	require.Equal(t, http.StatusOK, code)
	var verification struct {
		Valid       bool `json:"valid"`
		Certificate struct {
			CourseTitle string `json:"course_title"`
			LearnerName string `json:"learner_name"`
		} `json:"certificate"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &verification))
	assert.True(t, verification.Valid)
	assert.Equal(t, "Distributed Systems", verification.Certificate.CourseTitle)
	assert.Equal(t, "Lenny Learner", verification.Certificate.LearnerName)

	// Unknown serial is a 404 carrying valid:false
	code, resp = doRequest(t, app, http.MethodGet,
		"/certificates/verify/0000000000000000000000000000000000000000000000000000000000000000", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	var invalid struct {
		Valid bool `json:"valid"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &invalid))
	assert.False(t, invalid.Valid)
}

func TestProgressEndpointErrors(t *testing.T) {
	app, db := newTestApp(t)
	_, token := seedLearner(t, db)
	course, lessons := seedPublishedCourse(t, db, 1)

	// No token
	code, _ := doRequest(t, app, http.MethodPost, fmt.Sprintf("/progress/lessons/%d", lessons[0].ID), "",
		fiber.Map{"progress_percentage": 50})
	assert.Equal(t, http.StatusUnauthorized, code)

	// Not enrolled yet
	code, _ = doRequest(t, app, http.MethodPost, fmt.Sprintf("/progress/lessons/%d", lessons[0].ID), token,
		fiber.Map{"progress_percentage": 50})
	assert.Equal(t, http.StatusNotFound, code)

	code, resp := doRequest(t, app, http.MethodPost, fmt.Sprintf("/enrollments/%d", course.ID), token, nil)
	require.Equal(t, http.StatusCreated, code, resp.Message)

	// Unknown lesson
	code, _ = doRequest(t, app, http.MethodPost, "/progress/lessons/9999", token,
		fiber.Map{"progress_percentage": 50})
	assert.Equal(t, http.StatusNotFound, code)

	// Percentage outside 0..100 fails validation
	code, _ = doRequest(t, app, http.MethodPost, fmt.Sprintf("/progress/lessons/%d", lessons[0].ID), token,
		fiber.Map{"progress_percentage": 150})
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	// Missing body field fails validation too
	code, _ = doRequest(t, app, http.MethodPost, fmt.Sprintf("/progress/lessons/%d", lessons[0].ID), token,
		fiber.Map{})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
}

func TestUnenrollOverHTTP(t *testing.T) {
	app, db := newTestApp(t)
	learner, token := seedLearner(t, db)
	course, lessons := seedPublishedCourse(t, db, 1)

	code, resp := doRequest(t, app, http.MethodPost, fmt.Sprintf("/enrollments/%d", course.ID), token, nil)
	require.Equal(t, http.StatusCreated, code, resp.Message)
	code, _ = doRequest(t, app, http.MethodPost, fmt.Sprintf("/progress/lessons/%d/complete", lessons[0].ID), token, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = doRequest(t, app, http.MethodDelete, fmt.Sprintf("/enrollments/%d", course.ID), token, nil)
	require.Equal(t, http.StatusOK, code)

	var progressCount int64
	require.NoError(t, db.Model(&courseModels.LessonProgress{}).
		Where("user_id = ?", learner.ID).
		Count(&progressCount).Error)
	assert.Equal(t, int64(0), progressCount)

	// The certificate earned before unenrolling is still listed
	code, resp = doRequest(t, app, http.MethodGet, "/certificates/my-certificates", token, nil)
	require.Equal(t, http.StatusOK, code)
	var listing struct {
		Certificates []struct {
			SerialHash string `json:"serial_hash"`
		} `json:"certificates"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &listing))
	assert.Len(t, listing.Certificates, 1)

	// Unenrolling again is a 404
	code, _ = doRequest(t, app, http.MethodDelete, fmt.Sprintf("/enrollments/%d", course.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestSignupAndLogin(t *testing.T) {
	app, _ := newTestApp(t)

	code, resp := doRequest(t, app, http.MethodPost, "/auth/signup", "", fiber.Map{
		"name":     "New User",
		"email":    "new@example.com",
		"password": "sup3rSecret!",
	})
	require.Equal(t, http.StatusCreated, code, resp.Message)

	// Duplicate email rejected
	code, _ = doRequest(t, app, http.MethodPost, "/auth/signup", "", fiber.Map{
		"name":     "New User",
		"email":    "new@example.com",
		"password": "sup3rSecret!",
	})
	assert.Equal(t, http.StatusConflict, code)

	code, resp = doRequest(t, app, http.MethodPost, "/auth/login", "", fiber.Map{
		"email":    "new@example.com",
		"password": "sup3rSecret!",
	})
	require.Equal(t, http.StatusOK, code, resp.Message)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &login))
	assert.NotEmpty(t, login.Token)

	// The freshly minted token works against a protected route
	code, _ = doRequest(t, app, http.MethodGet, "/progress/overview", login.Token, nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = doRequest(t, app, http.MethodPost, "/auth/login", "", fiber.Map{
		"email":    "new@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, code)
}
