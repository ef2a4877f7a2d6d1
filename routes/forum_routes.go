package routes

import (
	"github.com/campusnorma/campus_norma/handlers"
	"github.com/campusnorma/campus_norma/middleware"
	"github.com/gofiber/fiber/v2"
)

func ForumRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	// public reading
	api.Get("/courses/:courseId/forum/threads", handlers.ListThreads)
	api.Get("/forum/threads/:threadId", handlers.GetThread)

	api.Post("/courses/:courseId/forum/threads", middleware.Protected(), handlers.CreateThread)

	threads := api.Group("/forum/threads", middleware.Protected())
	threads.Put("/:threadId", handlers.UpdateThread)
	threads.Delete("/:threadId", handlers.DeleteThread)
	threads.Post("/:threadId/replies", handlers.CreateReply)
	threads.Post("/:threadId/pin", middleware.StaffRequired(), handlers.PinThread)
	threads.Post("/:threadId/lock", middleware.StaffRequired(), handlers.LockThread)

	forum := api.Group("/forum", middleware.Protected())
	forum.Post("/replies/:replyId/best-answer", handlers.MarkBestAnswer)
	forum.Post("/votes", handlers.CastVote)
	forum.Delete("/votes/:votableType/:votableId", handlers.RemoveVote)
}
