package routes

import (
	"github.com/campusnorma/campus_norma/handlers"
	"github.com/campusnorma/campus_norma/middleware"
	"github.com/gofiber/fiber/v2"
)

func AuthRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/register", handlers.RegisterUser)
	auth.Post("/login", handlers.LoginUser)

	users := api.Group("/users", middleware.Protected())
	users.Get("/me", handlers.GetMe)
	users.Put("/me", handlers.UpdateMe)

	admin := api.Group("/admin/users", middleware.Protected(), middleware.AdminRequired())
	admin.Get("", handlers.ListUsers)
	admin.Post("/:userId/deactivate", handlers.DeactivateUser)
	admin.Delete("/:userId", handlers.DeleteUser)
}
