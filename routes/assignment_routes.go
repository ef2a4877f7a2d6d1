package routes

import (
	"github.com/campusnorma/campus_norma/handlers"
	"github.com/campusnorma/campus_norma/middleware"
	"github.com/gofiber/fiber/v2"
)

func AssignmentRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Get("/courses/:courseId/assignments", middleware.Protected(), handlers.ListAssignments)
	api.Post("/courses/:courseId/assignments", middleware.Protected(), middleware.ProfessorRequired(), handlers.CreateAssignment)

	assignments := api.Group("/assignments", middleware.Protected())
	assignments.Post("/:assignmentId/submissions", handlers.SubmitAssignment)
	assignments.Post("/:assignmentId/submissions/upload", handlers.UploadSubmissionFile)
	assignments.Get("/:assignmentId/submissions/me", handlers.GetMySubmission)
	assignments.Get("/:assignmentId/submissions", middleware.ProfessorRequired(), handlers.ListSubmissions)

	api.Post("/submissions/:submissionId/grade", middleware.Protected(), middleware.ProfessorRequired(), handlers.GradeSubmission)
}
