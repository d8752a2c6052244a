package authRoutes

import (
	"github.com/gofiber/fiber/v2"

	authController "lms/controllers/auth"
	validators "lms/validators/auth"
)

// SetupAuthRoutes sets up signup and login routes
func SetupAuthRoutes(app *fiber.App, ctrl *authController.AuthController) {
	authGroup := app.Group("/auth")

	authGroup.Post("/signup", validators.Signup(), ctrl.Signup)
	authGroup.Post("/login", validators.Login(), ctrl.Login)
}
