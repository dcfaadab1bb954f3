package handlers

import (
	"errors"

	"github.com/studysphere/study_sphere/database"
	"github.com/studysphere/study_sphere/middleware"
	"github.com/studysphere/study_sphere/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReviewRequest struct {
	SessionID string `json:"sessionId" validate:"required,uuid"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Comment   string `json:"comment"`
}

// CreateReview records a student's review. The student must hold a booking for
// the session and may review it at most once; both checks run inside the
// transaction that writes the review.
func CreateReview(c *fiber.Ctx) error {
	studentEmail := middleware.ClaimEmail(c)

	var req ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, CodeValidationError, "Cannot parse JSON")
	}
	if err := validate.Struct(req); err != nil {
		return fail(c, fiber.StatusBadRequest, CodeValidationError, err.Error())
	}
	sessionID, _ := uuid.Parse(req.SessionID)

	var student models.User
	if err := database.DB.Where("email = ?", studentEmail).First(&student).Error; err != nil {
		return fail(c, fiber.StatusNotFound, CodeNotFound, "Student account not found")
	}

	var (
		errNoBooking       = errors.New("no booking")
		errAlreadyReviewed = errors.New("already reviewed")
	)

	var review models.Review
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var bookingCount int64
		tx.Model(&models.Booking{}).
			Where("session_id = ? AND student_email = ?", sessionID, studentEmail).
			Count(&bookingCount)
		if bookingCount == 0 {
			return errNoBooking
		}

		review = models.Review{
			SessionID:    sessionID,
			StudentEmail: studentEmail,
			StudentName:  student.FullName,
			Rating:       req.Rating,
			Comment:      req.Comment,
		}
		if err := tx.Create(&review).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errAlreadyReviewed
			}
			return err
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, errNoBooking):
			return fail(c, fiber.StatusForbidden, CodeInvalidOperation, "You can only review sessions you have booked")
		case errors.Is(err, errAlreadyReviewed):
			return fail(c, fiber.StatusConflict, CodeInvalidOperation, "You have already reviewed this session")
		default:
			return fail(c, fiber.StatusInternalServerError, CodeServiceUnavailable, "Failed to create review")
		}
	}

	return c.Status(fiber.StatusCreated).JSON(review)
}

func ListSessionReviews(c *fiber.Ctx) error {
	var reviews []models.Review
	if err := database.DB.Where("session_id = ?", c.Params("sessionId")).
		Order("created_at desc").Find(&reviews).Error; err != nil {
		return fail(c, fiber.StatusInternalServerError, CodeServiceUnavailable, "Database error")
	}
	return c.JSON(reviews)
}
