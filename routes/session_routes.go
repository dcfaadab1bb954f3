package routes

import (
	"github.com/studysphere/study_sphere/handlers"
	"github.com/studysphere/study_sphere/middleware"
	"github.com/gofiber/fiber/v2"
)

func SessionRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	sessions := api.Group("/sessions", middleware.Protected())

	// Tutor lifecycle: create and resubmit.
	sessions.Post("", middleware.RoleRequired("tutor"), handlers.CreateSession)
	sessions.Get("/status", middleware.RoleRequired("tutor", "admin"), handlers.ListTutorSessions)
	sessions.Get("", middleware.RoleRequired("tutor", "admin"), handlers.ListTutorSessions)
	sessions.Patch("/:sessionId/request-approval", middleware.RoleRequired("tutor"), handlers.ResubmitSession)

	// Admin lifecycle: approve, reject, edit, delete.
	sessions.Patch("/:sessionId/approve", middleware.RoleRequired("admin"), handlers.ApproveSession)
	sessions.Patch("/:sessionId/reject", middleware.RoleRequired("admin"), handlers.RejectSession)
	sessions.Patch("/:sessionId", middleware.RoleRequired("admin"), handlers.UpdateSession)
	sessions.Delete("/:sessionId", middleware.RoleRequired("admin"), handlers.DeleteSession)

	sessions.Get("/:id", handlers.GetSession)
}
