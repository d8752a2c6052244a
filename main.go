package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"lms/config"
	authController "lms/controllers/auth"
	certificateController "lms/controllers/certificate"
	courseController "lms/controllers/course"
	enrollmentController "lms/controllers/enrollment"
	progressController "lms/controllers/progress"
	"lms/database"
	"lms/routers/authRoutes"
	"lms/routers/certificateRoutes"
	"lms/routers/courseRoutes"
	"lms/routers/enrollmentRoutes"
	"lms/routers/progressRoutes"
	"lms/services"
	"lms/utils"
)

func main() {
	config.LoadConfig()

	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to set up database: %v", err)
	}

	// Services
	certificateService := services.NewCertificateService(db, utils.SMTPMailer{})
	progressService := services.NewProgressService(db, certificateService)
	enrollmentService := services.NewEnrollmentService(db)
	courseService := services.NewCourseService(db)

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",        // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	authRoutes.SetupAuthRoutes(app, authController.NewAuthController(db))
	courseRoutes.SetupCourseRoutes(app, courseController.NewCourseController(courseService))
	enrollmentRoutes.SetupEnrollmentRoutes(app, enrollmentController.NewEnrollmentController(db, enrollmentService))
	progressRoutes.SetupProgressRoutes(app, progressController.NewProgressController(progressService))
	certificateRoutes.SetupCertificateRoutes(app, certificateController.NewCertificateController(certificateService))

	// Reconcile certificates missed by the synchronous issuance path
	if _, err := utils.StartCertificateSweeper(certificateService, config.AppConfig.SweepSchedule); err != nil {
		log.Fatalf("Failed to start certificate sweeper: %v", err)
	}

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
