package handlers

import (
	"github.com/studysphere/study_sphere/database"
	"github.com/studysphere/study_sphere/middleware"
	"github.com/studysphere/study_sphere/models"
	"github.com/gofiber/fiber/v2"
)

func GetAllUsers(c *fiber.Ctx) error {
	var users []models.User
	query := database.DB.Order("created_at desc")

	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("LOWER(full_name) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?)", like, like)
	}

	if err := query.Find(&users).Error; err != nil {
		return fail(c, fiber.StatusInternalServerError, CodeServiceUnavailable, "Database error")
	}
	return c.JSON(users)
}

// GetUserRole answers the SPA's role lookup for the signed-in user. Callers
// may only ask about themselves; the answer always reflects the latest write.
func GetUserRole(c *fiber.Ctx) error {
	email := c.Query("email")
	if email == "" {
		return fail(c, fiber.StatusBadRequest, CodeValidationError, "email query parameter is required")
	}
	if email != middleware.ClaimEmail(c) {
		return fail(c, fiber.StatusForbidden, CodeForbidden, "You may only look up your own role")
	}

	var user models.User
	if err := database.DB.Select("role").Where("email = ?", email).First(&user).Error; err != nil {
		return fail(c, fiber.StatusNotFound, CodeNotFound, "User not found")
	}
	return c.JSON(fiber.Map{"role": user.Role})
}

type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=student tutor admin"`
}

func UpdateUserRole(c *fiber.Ctx) error {
	userID := c.Params("userId")

	var req UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, CodeValidationError, "Cannot parse JSON")
	}
	if err := validate.Struct(req); err != nil {
		return fail(c, fiber.StatusBadRequest, CodeValidationError, err.Error())
	}

	// Self-escalation block: an admin may never change their own role.
	if userID == middleware.ClaimUserID(c) {
		return fail(c, fiber.StatusBadRequest, CodeInvalidOperation, "You cannot change your own role")
	}

	result := database.DB.Model(&models.User{}).Where("id = ?", userID).Update("role", req.Role)
	if result.Error != nil {
		return fail(c, fiber.StatusInternalServerError, CodeServiceUnavailable, "Failed to update user role")
	}
	if result.RowsAffected == 0 {
		return fail(c, fiber.StatusNotFound, CodeNotFound, "User not found")
	}

	return c.JSON(fiber.Map{"message": "User role updated successfully", "modifiedCount": result.RowsAffected})
}
