package routes

import (
	"github.com/studysphere/study_sphere/handlers"
	"github.com/studysphere/study_sphere/middleware"
	"github.com/gofiber/fiber/v2"
)

func StatsRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Get("/tutor/stats/:email", middleware.Protected(), middleware.RoleRequired("tutor", "admin"), handlers.GetTutorStats)
	api.Get("/student/stats/:email", middleware.Protected(), middleware.RoleRequired("student", "admin"), handlers.GetStudentStats)
}
