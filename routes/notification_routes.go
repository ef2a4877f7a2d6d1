package routes

import (
	"github.com/campusnorma/campus_norma/handlers"
	"github.com/campusnorma/campus_norma/middleware"
	"github.com/gofiber/fiber/v2"
)

func NotificationRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	notifications := api.Group("/notifications", middleware.Protected())
	notifications.Get("", handlers.ListNotifications)
	notifications.Get("/unread-count", handlers.GetUnreadCount)
	notifications.Post("/read-all", handlers.MarkAllNotificationsRead)
	notifications.Post("/:notificationId/read", handlers.MarkNotificationRead)
	notifications.Delete("/:notificationId", handlers.DeleteNotification)
}
