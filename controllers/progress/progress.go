package progressController

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"lms/middleware"
	"lms/services"
)

// ProgressController exposes the progress ledger over HTTP
type ProgressController struct {
	progress *services.ProgressService
}

func NewProgressController(progress *services.ProgressService) *ProgressController {
	return &ProgressController{progress: progress}
}

// UpdateLessonProgress reports a progress percentage for one lesson
func (ctrl *ProgressController) UpdateLessonProgress(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	lessonID := c.Locals("lessonID").(int)

	reqData, ok := c.Locals("validatedProgress").(*struct {
		ProgressPercentage *int `json:"progress_percentage"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	progress, err := ctrl.progress.RecordProgress(userID, uint(lessonID), *reqData.ProgressPercentage)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found or access denied!", nil)
		}
		if errors.Is(err, services.ErrInvalidPercentage) {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Progress percentage must be between 0 and 100!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update progress!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress updated successfully!", progress)
}

// CompleteLesson marks a lesson as fully completed
func (ctrl *ProgressController) CompleteLesson(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	lessonID := c.Locals("lessonID").(int)

	progress, err := ctrl.progress.CompleteLesson(userID, uint(lessonID))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found or access denied!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to complete lesson!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson completed successfully!", progress)
}

// GetCourseProgress returns the aggregated per-lesson progress for a course
func (ctrl *ProgressController) GetCourseProgress(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)

	view, err := ctrl.progress.CourseProgress(userID, uint(courseID))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found or not enrolled!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch course progress!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course progress fetched successfully!", view)
}

// GetOverview returns paginated per-course summaries plus learner statistics
func (ctrl *ProgressController) GetOverview(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	page := c.Locals("page").(int)
	limit := c.Locals("limit").(int)

	overview, err := ctrl.progress.ProgressOverview(userID, page, limit)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch progress overview!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress overview fetched successfully!", overview)
}
