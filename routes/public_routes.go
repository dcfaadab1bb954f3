package routes

import (
	"github.com/studysphere/study_sphere/handlers"
	"github.com/gofiber/fiber/v2"
)

// PublicRoutes are the only endpoints reachable without a bearer credential:
// the approved-session catalogue and the session detail page.
func PublicRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Get("/study-sessions", handlers.ListApprovedSessions)
	api.Get("/study/sessions/:id", handlers.GetSessionDetails)
}
