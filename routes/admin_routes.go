package routes

import (
	"github.com/studysphere/study_sphere/handlers"
	"github.com/studysphere/study_sphere/middleware"
	"github.com/gofiber/fiber/v2"
)

func AdminRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	admin := api.Group("/admin", middleware.Protected(), middleware.RoleRequired("admin"))
	admin.Get("/sessions", handlers.AdminListSessions)
	admin.Get("/stats", handlers.GetAdminStats)
	admin.Get("/payments", handlers.AdminGetPayments)

	users := api.Group("/users", middleware.Protected())
	users.Get("/role", handlers.GetUserRole)
	users.Get("", middleware.RoleRequired("admin"), handlers.GetAllUsers)
	users.Patch("/:userId", middleware.RoleRequired("admin"), handlers.UpdateUserRole)
}
