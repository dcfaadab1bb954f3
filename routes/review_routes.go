package routes

import (
	"github.com/studysphere/study_sphere/handlers"
	"github.com/studysphere/study_sphere/middleware"
	"github.com/gofiber/fiber/v2"
)

func ReviewRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	reviews := api.Group("/reviews", middleware.Protected())
	reviews.Post("", middleware.RoleRequired("student"), handlers.CreateReview)
	reviews.Get("/session/:sessionId", handlers.ListSessionReviews)
}
