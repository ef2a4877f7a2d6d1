package routes

import (
	"github.com/campusnorma/campus_norma/handlers"
	"github.com/campusnorma/campus_norma/middleware"
	"github.com/gofiber/fiber/v2"
)

func CourseRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	// public catalog
	api.Get("/courses", handlers.ListCourses)
	api.Get("/courses/:courseId", handlers.GetCourse)

	manage := api.Group("/courses", middleware.Protected(), middleware.ProfessorRequired())
	manage.Post("", handlers.CreateCourse)
	manage.Put("/:courseId", handlers.UpdateCourse)
	manage.Post("/:courseId/publish", handlers.PublishCourse)
	manage.Delete("/:courseId", handlers.DeleteCourse)

	manage.Post("/:courseId/modules", handlers.CreateModule)
	manage.Put("/:courseId/modules/:moduleId", handlers.UpdateModule)
	manage.Delete("/:courseId/modules/:moduleId", handlers.DeleteModule)

	manage.Post("/:courseId/modules/:moduleId/lessons", handlers.CreateLesson)
	manage.Put("/:courseId/lessons/:lessonId", handlers.UpdateLesson)
	manage.Delete("/:courseId/lessons/:lessonId", handlers.DeleteLesson)
}
