package certificateValidator

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"lms/middleware"
)

// List validates pagination query params for the certificate listing
func List() fiber.Handler {
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

// Verify validates the serial hash route parameter. Only presence is
// checked; a malformed serial is handled the same as an unknown one.
func Verify() fiber.Handler {
	return func(c *fiber.Ctx) error {
		serialHash := strings.TrimSpace(c.Params("serialHash"))
		if serialHash == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Serial hash is required!", nil)
		}

		c.Locals("serialHash", serialHash)
		return c.Next()
	}
}

// Stats validates the course ID for creator statistics
func Stats() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := strings.TrimSpace(c.Params("courseId"))
		courseID, err := strconv.Atoi(raw)
		if err != nil || courseID <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
		}

		c.Locals("courseID", courseID)
		return c.Next()
	}
}
