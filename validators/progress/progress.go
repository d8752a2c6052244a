package progressValidator

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"lms/middleware"
)

// parseID parses a positive integer route parameter
func parseID(c *fiber.Ctx, name string) (int, bool) {
	raw := strings.TrimSpace(c.Params(name))
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// UpdateLessonProgress validates the progress report body and lesson ID
func UpdateLessonProgress() fiber.Handler {
	return func(c *fiber.Ctx) error {
		lessonID, ok := parseID(c, "lessonId")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid lesson ID!", nil)
		}

		reqData := new(struct {
			ProgressPercentage *int `json:"progress_percentage"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.ProgressPercentage == nil {
			errors["progress_percentage"] = "Progress percentage is required!"
		} else if *reqData.ProgressPercentage < 0 || *reqData.ProgressPercentage > 100 {
			errors["progress_percentage"] = "Progress percentage must be between 0 and 100!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("lessonID", lessonID)
		c.Locals("validatedProgress", reqData)
		return c.Next()
	}
}

// CompleteLesson validates the lesson ID for the complete shortcut
func CompleteLesson() fiber.Handler {
	return func(c *fiber.Ctx) error {
		lessonID, ok := parseID(c, "lessonId")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid lesson ID!", nil)
		}

		c.Locals("lessonID", lessonID)
		return c.Next()
	}
}

// CourseProgress validates the course ID for the per-course progress view
func CourseProgress() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := parseID(c, "courseId")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
		}

		c.Locals("courseID", courseID)
		return c.Next()
	}
}

// Overview validates pagination query params for the progress overview
func Overview() fiber.Handler {
	return func(c *fiber.Ctx) error {
		page := c.QueryInt("page", 1)
		limit := c.QueryInt("limit", 20)

		errors := make(map[string]string)

		if page < 1 {
			errors["page"] = "Page must be at least 1!"
		}
		if limit < 1 || limit > 100 {
			errors["limit"] = "Limit must be between 1 and 100!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("page", page)
		c.Locals("limit", limit)
		return c.Next()
	}
}
