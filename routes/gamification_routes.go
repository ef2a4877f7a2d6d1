package routes

import (
	"github.com/campusnorma/campus_norma/handlers"
	"github.com/campusnorma/campus_norma/middleware"
	"github.com/gofiber/fiber/v2"
)

func GamificationRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Get("/gamification/badges", handlers.ListBadges)

	gamification := api.Group("/gamification", middleware.Protected())
	gamification.Get("/leaderboard", handlers.GetLeaderboard)
	gamification.Get("/stats/me", handlers.GetMyStats)
	gamification.Get("/transactions/me", handlers.GetMyTransactions)
	gamification.Get("/badges/me", handlers.GetMyBadges)
	gamification.Get("/certificates/me", handlers.ListMyCertificates)

	badges := api.Group("/admin/gamification/badges", middleware.Protected(), middleware.AdminRequired())
	badges.Post("", handlers.CreateBadge)
	badges.Put("/:badgeId", handlers.UpdateBadge)
	badges.Delete("/:badgeId", handlers.DeleteBadge)
}
