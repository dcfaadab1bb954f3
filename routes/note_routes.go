package routes

import (
	"github.com/studysphere/study_sphere/handlers"
	"github.com/studysphere/study_sphere/middleware"
	"github.com/gofiber/fiber/v2"
)

func NoteRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	notes := api.Group("/notes", middleware.Protected(), middleware.RoleRequired("student"))
	notes.Post("", handlers.CreateNote)
	notes.Get("", handlers.ListNotes)
	notes.Patch("/:noteId", handlers.UpdateNote)
	notes.Delete("/:noteId", handlers.DeleteNote)
}
