package handlers

import (
	"github.com/studysphere/study_sphere/database"
	"github.com/studysphere/study_sphere/middleware"
	"github.com/studysphere/study_sphere/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type MaterialRequest struct {
	Title        string `json:"title" validate:"required,min=3"`
	SessionID    string `json:"session_id" validate:"required,uuid"`
	ImageURL     string `json:"image_url" validate:"required,url"`
	ResourceLink string `json:"resource_link" validate:"omitempty,url"`
}

// CreateMaterial stores a tutor's material for one of their approved sessions.
// The binary already lives at the object store; only the URL is kept.
func CreateMaterial(c *fiber.Ctx) error {
	tutorEmail := middleware.ClaimEmail(c)

	var req MaterialRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, CodeValidationError, "Cannot parse JSON")
	}
	if err := validate.Struct(req); err != nil {
		return fail(c, fiber.StatusBadRequest, CodeValidationError, err.Error())
	}
	sessionID, _ := uuid.Parse(req.SessionID)

	var session models.StudySession
	if err := database.DB.First(&session, "id = ?", sessionID).Error; err != nil {
		return fail(c, fiber.StatusNotFound, CodeNotFound, "Session not found")
	}
	if session.TutorEmail != tutorEmail {
		return fail(c, fiber.StatusForbidden, CodeForbidden, "You can only upload materials for your own sessions")
	}
	if session.Status != models.SessionStatusApproved {
		return fail(c, fiber.StatusConflict, CodeNotApproved, "Materials can only be uploaded for approved sessions")
	}

	material := models.Material{
		Title:        req.Title,
		SessionID:    sessionID,
		TutorEmail:   tutorEmail,
		ImageURL:     req.ImageURL,
		ResourceLink: req.ResourceLink,
	}
	if err := database.DB.Create(&material).Error; err != nil {
		return fail(c, fiber.StatusInternalServerError, CodeServiceUnavailable, "Failed to save material")
	}

	return c.Status(fiber.StatusCreated).JSON(material)
}

// ListMaterials serves both the admin view (all materials) and the tutor view
// (own materials via ?email=).
func ListMaterials(c *fiber.Ctx) error {
	email := c.Query("email")
	role := middleware.ClaimRole(c)

	if email == "" {
		if role != "admin" {
			return fail(c, fiber.StatusForbidden, CodeForbidden, "Only admins can list all materials")
		}
		var materials []models.Material
		if err := database.DB.Order("created_at desc").Find(&materials).Error; err != nil {
			return fail(c, fiber.StatusInternalServerError, CodeServiceUnavailable, "Database error")
		}
		return c.JSON(materials)
	}

	if email != middleware.ClaimEmail(c) && role != "admin" {
		return fail(c, fiber.StatusForbidden, CodeForbidden, "You may only list your own materials")
	}

	var materials []models.Material
	if err := database.DB.Where("tutor_email = ?", email).Order("created_at desc").Find(&materials).Error; err != nil {
		return fail(c, fiber.StatusInternalServerError, CodeServiceUnavailable, "Database error")
	}
	return c.JSON(materials)
}

// ListSessionMaterials gives a student the materials of a session they booked.
func ListSessionMaterials(c *fiber.Ctx) error {
	sessionID := c.Params("sessionId")
	email := middleware.ClaimEmail(c)

	var count int64
	database.DB.Model(&models.Booking{}).
		Where("session_id = ? AND student_email = ?", sessionID, email).
		Count(&count)
	if count == 0 {
		return fail(c, fiber.StatusForbidden, CodeForbidden, "You must book this session to access its materials")
	}

	var materials []models.Material
	if err := database.DB.Where("session_id = ?", sessionID).Order("created_at desc").Find(&materials).Error; err != nil {
		return fail(c, fiber.StatusInternalServerError, CodeServiceUnavailable, "Database error")
	}
	return c.JSON(materials)
}

type UpdateMaterialRequest struct {
	Title        *string `json:"title,omitempty" validate:"omitempty,min=3"`
	ImageURL     *string `json:"image_url,omitempty" validate:"omitempty,url"`
	ResourceLink *string `json:"resource_link,omitempty" validate:"omitempty,url"`
}

func UpdateMaterial(c *fiber.Ctx) error {
	materialID := c.Params("materialId")

	var req UpdateMaterialRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, CodeValidationError, "Cannot parse JSON")
	}
	if err := validate.Struct(req); err != nil {
		return fail(c, fiber.StatusBadRequest, CodeValidationError, err.Error())
	}

	var material models.Material
	if err := database.DB.Where("id = ?", materialID).First(&material).Error; err != nil {
		return fail(c, fiber.StatusNotFound, CodeNotFound, "Material not found")
	}
	if material.TutorEmail != middleware.ClaimEmail(c) {
		return fail(c, fiber.StatusForbidden, CodeForbidden, "You can only update your own materials")
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.ResourceLink != nil {
		updates["resource_link"] = *req.ResourceLink
	}
	if len(updates) == 0 {
		return fail(c, fiber.StatusBadRequest, CodeValidationError, "No fields to update")
	}

	result := database.DB.Model(&material).Updates(updates)
	if result.Error != nil {
		return fail(c, fiber.StatusInternalServerError, CodeServiceUnavailable, "Failed to update material")
	}

	return c.JSON(fiber.Map{"message": "Material updated successfully", "modifiedCount": result.RowsAffected})
}

// DeleteMaterial removes a material for its owning tutor, or any material for
// an admin. The deleted count lets the caller tell "deleted" from "not found".
func DeleteMaterial(c *fiber.Ctx) error {
	materialID := c.Params("materialId")

	query := database.DB.Where("id = ?", materialID)
	if middleware.ClaimRole(c) != "admin" {
		query = query.Where("tutor_email = ?", middleware.ClaimEmail(c))
	}

	result := query.Delete(&models.Material{})
	if result.Error != nil {
		return fail(c, fiber.StatusInternalServerError, CodeServiceUnavailable, "Failed to delete material")
	}
	if result.RowsAffected == 0 {
		return fail(c, fiber.StatusNotFound, CodeNotFound, "Material not found")
	}

	return c.JSON(fiber.Map{"message": "Material deleted", "deletedCount": result.RowsAffected})
}
