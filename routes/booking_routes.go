package routes

import (
	"github.com/studysphere/study_sphere/handlers"
	"github.com/studysphere/study_sphere/middleware"
	"github.com/gofiber/fiber/v2"
)

func BookingRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	bookings := api.Group("/bookedSessions", middleware.Protected())
	bookings.Post("", middleware.RoleRequired("student"), handlers.CreateBooking)
	bookings.Get("/check", handlers.CheckBooking)
	bookings.Get("", handlers.GetMyBookings)

	payments := api.Group("/payments", middleware.Protected(), middleware.RoleRequired("student"))
	payments.Post("/create-order", handlers.CreateOrder)
	payments.Post("/:orderId/capture", handlers.CaptureOrder)
}
