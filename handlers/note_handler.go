package handlers

import (
	"github.com/studysphere/study_sphere/database"
	"github.com/studysphere/study_sphere/middleware"
	"github.com/studysphere/study_sphere/models"
	"github.com/gofiber/fiber/v2"
)

type NoteRequest struct {
	Title       string `json:"title" validate:"required,min=1"`
	Description string `json:"description" validate:"required"`
}

func CreateNote(c *fiber.Ctx) error {
	var req NoteRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, CodeValidationError, "Cannot parse JSON")
	}
	if err := validate.Struct(req); err != nil {
		return fail(c, fiber.StatusBadRequest, CodeValidationError, err.Error())
	}

	note := models.Note{
		OwnerEmail:  middleware.ClaimEmail(c),
		Title:       req.Title,
		Description: req.Description,
	}
	if err := database.DB.Create(&note).Error; err != nil {
		return fail(c, fiber.StatusInternalServerError, CodeServiceUnavailable, "Failed to create note")
	}

	return c.Status(fiber.StatusCreated).JSON(note)
}

func ListNotes(c *fiber.Ctx) error {
	email := c.Query("email")
	if email == "" {
		email = middleware.ClaimEmail(c)
	}
	// Notes have no admin override: owner only.
	if email != middleware.ClaimEmail(c) {
		return fail(c, fiber.StatusForbidden, CodeForbidden, "You may only list your own notes")
	}

	var notes []models.Note
	if err := database.DB.Where("owner_email = ?", email).Order("created_at desc").Find(&notes).Error; err != nil {
		return fail(c, fiber.StatusInternalServerError, CodeServiceUnavailable, "Database error")
	}
	return c.JSON(notes)
}

func UpdateNote(c *fiber.Ctx) error {
	noteID := c.Params("noteId")

	var req NoteRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, CodeValidationError, "Cannot parse JSON")
	}
	if err := validate.Struct(req); err != nil {
		return fail(c, fiber.StatusBadRequest, CodeValidationError, err.Error())
	}

	result := database.DB.Model(&models.Note{}).
		Where("id = ? AND owner_email = ?", noteID, middleware.ClaimEmail(c)).
		Updates(map[string]interface{}{"title": req.Title, "description": req.Description})
	if result.Error != nil {
		return fail(c, fiber.StatusInternalServerError, CodeServiceUnavailable, "Failed to update note")
	}
	if result.RowsAffected == 0 {
		return fail(c, fiber.StatusNotFound, CodeNotFound, "Note not found")
	}

	return c.JSON(fiber.Map{"message": "Note updated successfully", "modifiedCount": result.RowsAffected})
}

func DeleteNote(c *fiber.Ctx) error {
	noteID := c.Params("noteId")

	result := database.DB.
		Where("id = ? AND owner_email = ?", noteID, middleware.ClaimEmail(c)).
		Delete(&models.Note{})
	if result.Error != nil {
		return fail(c, fiber.StatusInternalServerError, CodeServiceUnavailable, "Failed to delete note")
	}
	if result.RowsAffected == 0 {
		return fail(c, fiber.StatusNotFound, CodeNotFound, "Note not found")
	}

	return c.JSON(fiber.Map{"message": "Note deleted", "deletedCount": result.RowsAffected})
}
