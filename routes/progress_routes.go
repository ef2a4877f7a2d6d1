package routes

import (
	"github.com/campusnorma/campus_norma/handlers"
	"github.com/campusnorma/campus_norma/middleware"
	"github.com/gofiber/fiber/v2"
)

func ProgressRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	progress := api.Group("/progress", middleware.Protected())
	progress.Get("/me", handlers.GetAllCoursesProgress)
	progress.Get("/courses/:courseId", handlers.GetCourseProgress)
	progress.Get("/courses/:courseId/lessons", handlers.GetLessonsProgress)
	progress.Get("/modules/:moduleId", handlers.GetModuleProgress)
	progress.Post("/courses/:courseId/lessons/:lessonId/access", handlers.RecordLessonAccess)
	progress.Post("/courses/:courseId/lessons/:lessonId/complete", handlers.CompleteLesson)
}
