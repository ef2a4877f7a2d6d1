package routes

import (
	"github.com/campusnorma/campus_norma/handlers"
	"github.com/campusnorma/campus_norma/middleware"
	"github.com/gofiber/fiber/v2"
)

func PaymentRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Post("/payments/webhook", handlers.HandlePaymentWebhook)

	payments := api.Group("/payments", middleware.Protected())
	payments.Post("", handlers.InitiatePayment)
	payments.Get("/me", handlers.MyPayments)
	payments.Get("/:paymentId", handlers.GetPayment)
	payments.Post("/paypal/capture-order", handlers.CapturePayPalOrderHandler)
}
