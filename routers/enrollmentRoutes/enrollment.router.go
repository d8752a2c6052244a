package enrollmentRoutes

import (
	"github.com/gofiber/fiber/v2"

	enrollmentController "lms/controllers/enrollment"
	"lms/middleware"
	validators "lms/validators/enrollment"
)

// SetupEnrollmentRoutes sets up enrollment routes
func SetupEnrollmentRoutes(app *fiber.App, ctrl *enrollmentController.EnrollmentController) {
	enrollGroup := app.Group("/enrollments")

	enrollGroup.Get("/my-enrollments", middleware.JWTMiddleware, validators.List(), ctrl.GetMyEnrollments)
	enrollGroup.Get("/check/:courseId", middleware.JWTMiddleware, validators.CourseID(), ctrl.CheckEnrollment)
	enrollGroup.Get("/stats/:courseId", middleware.JWTMiddleware, validators.CourseID(), ctrl.GetCourseStats)
	enrollGroup.Post("/:courseId", middleware.JWTMiddleware, validators.CourseID(), ctrl.EnrollInCourse)
	enrollGroup.Delete("/:courseId", middleware.JWTMiddleware, validators.CourseID(), ctrl.UnenrollFromCourse)
}
