package progressRoutes

import (
	"github.com/gofiber/fiber/v2"

	progressController "lms/controllers/progress"
	"lms/middleware"
	validators "lms/validators/progress"
)

// SetupProgressRoutes sets up lesson progress and overview routes
func SetupProgressRoutes(app *fiber.App, ctrl *progressController.ProgressController) {
	progressGroup := app.Group("/progress")

	progressGroup.Post("/lessons/:lessonId", middleware.JWTMiddleware, validators.UpdateLessonProgress(), ctrl.UpdateLessonProgress)
	progressGroup.Post("/lessons/:lessonId/complete", middleware.JWTMiddleware, validators.CompleteLesson(), ctrl.CompleteLesson)
	progressGroup.Get("/courses/:courseId", middleware.JWTMiddleware, validators.CourseProgress(), ctrl.GetCourseProgress)
	progressGroup.Get("/overview", middleware.JWTMiddleware, validators.Overview(), ctrl.GetOverview)
}
