package courseRoutes

import (
	"github.com/gofiber/fiber/v2"

	courseController "lms/controllers/course"
	"lms/middleware"
	"lms/models"
	validators "lms/validators/course"
)

// SetupCourseRoutes sets up catalog and authoring routes
func SetupCourseRoutes(app *fiber.App, ctrl *courseController.CourseController) {
	courseGroup := app.Group("/course")

	// Catalog (published courses)
	courseGroup.Get("/list", middleware.JWTMiddleware, validators.CourseList(), ctrl.GetAllCourses)
	courseGroup.Get("/:id", middleware.JWTMiddleware, validators.CourseID(), ctrl.GetCourseDetails)

	// Authoring
	courseGroup.Post("/create", middleware.JWTMiddleware, middleware.RequireRole(models.RoleCreator), validators.CreateCourse(), ctrl.CreateCourse)
	courseGroup.Post("/:id/lesson", middleware.JWTMiddleware, middleware.RequireRole(models.RoleCreator), validators.AddLesson(), ctrl.AddLesson)

	// Admin review outcome
	courseGroup.Post("/:id/publish", middleware.JWTMiddleware, middleware.RequireRole(models.RoleAdmin), validators.CourseID(), ctrl.PublishCourse)
}
