package certificateController

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"lms/middleware"
	"lms/services"
)

// CertificateController exposes certificate listing, verification and
// creator statistics
type CertificateController struct {
	certs *services.CertificateService
}

func NewCertificateController(certs *services.CertificateService) *CertificateController {
	return &CertificateController{certs: certs}
}

// GetMyCertificates returns the caller's certificates, newest first
func (ctrl *CertificateController) GetMyCertificates(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	page := c.Locals("page").(int)
	limit := c.Locals("limit").(int)

	certificates, total, err := ctrl.certs.ListForUser(userID, page, limit)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch certificates!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates fetched successfully!", fiber.Map{
		"certificates": certificates,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// VerifyCertificate is the public verification endpoint. The serial hash is
// the only credential; an unknown hash yields 404 with valid:false.
func (ctrl *CertificateController) VerifyCertificate(c *fiber.Ctx) error {
	serialHash := c.Locals("serialHash").(string)

	result, err := ctrl.certs.Verify(serialHash)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to verify certificate!", nil)
	}

	if !result.Valid {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Certificate not found or invalid serial hash!", result)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate verified successfully!", result)
}

// GetCourseStats returns issuance statistics for a course the caller created
func (ctrl *CertificateController) GetCourseStats(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)

	stats, err := ctrl.certs.CourseStats(userID, uint(courseID))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found or access denied!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch certificate statistics!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate statistics fetched successfully!", stats)
}
