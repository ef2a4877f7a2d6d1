package routes

import (
	"github.com/campusnorma/campus_norma/handlers"
	"github.com/campusnorma/campus_norma/middleware"
	"github.com/gofiber/fiber/v2"
)

func EnrollmentRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	enrollments := api.Group("/enrollments", middleware.Protected())
	enrollments.Get("/me", handlers.MyEnrollments)
	enrollments.Post("/courses/:courseId", handlers.EnrollFree)
}
