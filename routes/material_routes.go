package routes

import (
	"github.com/studysphere/study_sphere/handlers"
	"github.com/studysphere/study_sphere/middleware"
	"github.com/gofiber/fiber/v2"
)

func MaterialRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	materials := api.Group("/materials", middleware.Protected())
	materials.Post("", middleware.RoleRequired("tutor"), handlers.CreateMaterial)
	materials.Get("", middleware.RoleRequired("tutor", "admin"), handlers.ListMaterials)
	materials.Get("/session/:sessionId", middleware.RoleRequired("student"), handlers.ListSessionMaterials)
	materials.Patch("/:materialId", middleware.RoleRequired("tutor"), handlers.UpdateMaterial)
	materials.Delete("/:materialId", middleware.RoleRequired("tutor", "admin"), handlers.DeleteMaterial)
}
