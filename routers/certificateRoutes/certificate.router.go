package certificateRoutes

import (
	"github.com/gofiber/fiber/v2"

	certificateController "lms/controllers/certificate"
	"lms/middleware"
	validators "lms/validators/certificate"
)

// SetupCertificateRoutes sets up certificate routes. Verification is
// public; everything else requires a valid token.
func SetupCertificateRoutes(app *fiber.App, ctrl *certificateController.CertificateController) {
	certGroup := app.Group("/certificates")

	certGroup.Get("/my-certificates", middleware.JWTMiddleware, validators.List(), ctrl.GetMyCertificates)
	certGroup.Get("/stats/:courseId", middleware.JWTMiddleware, validators.Stats(), ctrl.GetCourseStats)
	certGroup.Get("/verify/:serialHash", validators.Verify(), ctrl.VerifyCertificate)
}
