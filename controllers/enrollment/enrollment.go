package enrollmentController

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	"lms/services"
	"lms/utils"
)

// EnrollmentController exposes enroll/unenroll and enrollment listings
type EnrollmentController struct {
	db          *gorm.DB
	enrollments *services.EnrollmentService
}

func NewEnrollmentController(db *gorm.DB, enrollments *services.EnrollmentService) *EnrollmentController {
	return &EnrollmentController{db: db, enrollments: enrollments}
}

// EnrollInCourse enrolls the caller in a published course
func (ctrl *EnrollmentController) EnrollInCourse(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)

	enrollment, err := ctrl.enrollments.Enroll(userID, uint(courseID))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found or not available for enrollment!", nil)
		}
		if errors.Is(err, services.ErrAlreadyEnrolled) {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "User already enrolled in this course!", nil)
		}
		log.Printf("Error enrolling user %d in course %d: %v", userID, courseID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to enroll in course!", nil)
	}

	// Enrollment mail (Async)
	go func() {
		var user models.User
		if err := ctrl.db.First(&user, userID).Error; err != nil || user.Email == "" {
			return
		}
		var course courseModels.Course
		if err := ctrl.db.First(&course, courseID).Error; err != nil {
			return
		}
		utils.SendEnrollmentEmail(user.Email, user.Name, course.Title)
	}()

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Enrolled in course successfully!", enrollment)
}

// UnenrollFromCourse removes the enrollment and the course's progress rows.
// Certificates already issued are kept.
func (ctrl *EnrollmentController) UnenrollFromCourse(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)

	if err := ctrl.enrollments.Unenroll(userID, uint(courseID)); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Enrollment not found!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to unenroll from course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Unenrolled from course successfully!", nil)
}

// CheckEnrollment reports whether the caller is enrolled in a course
func (ctrl *EnrollmentController) CheckEnrollment(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)

	isEnrolled, err := ctrl.enrollments.IsEnrolled(userID, uint(courseID))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to check enrollment status!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment status fetched successfully!", fiber.Map{
		"is_enrolled": isEnrolled,
	})
}

// GetMyEnrollments lists the caller's enrollments with course and progress
func (ctrl *EnrollmentController) GetMyEnrollments(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	page := c.Locals("page").(int)
	limit := c.Locals("limit").(int)

	enrollments, total, err := ctrl.enrollments.List(userID, page, limit)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", fiber.Map{
		"enrollments": enrollments,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// GetCourseStats returns enrollment statistics for a course the caller created
func (ctrl *EnrollmentController) GetCourseStats(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)

	stats, err := ctrl.enrollments.CourseStats(userID, uint(courseID))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found or access denied!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollment statistics!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment statistics fetched successfully!", stats)
}
