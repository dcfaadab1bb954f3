package handlers

import (
	"errors"
	"time"

	"github.com/studysphere/study_sphere/database"
	"github.com/studysphere/study_sphere/middleware"
	"github.com/studysphere/study_sphere/models"
	"github.com/studysphere/study_sphere/notifications"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateBookingRequest struct {
	SessionID string `json:"sessionId" validate:"required,uuid"`
}

var (
	errSessionNotFound    = errors.New("session not found")
	errNotApproved        = errors.New("session is not approved for booking")
	errRegistrationClosed = errors.New("registration window has closed")
	errAlreadyBooked      = errors.New("session already booked")
	errPaymentRequired    = errors.New("payment required before booking")
)

// insertBooking is the single write path into the booking ledger. It re-checks
// every precondition inside the transaction so no partial state commits, and
// relies on the (session_id, student_email) unique index to collapse
// concurrent inserts to one winner.
func insertBooking(sessionID uuid.UUID, studentEmail string, requireFree bool) (*models.Booking, error) {
	var booking models.Booking
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var session models.StudySession
		if err := tx.First(&session, "id = ?", sessionID).Error; err != nil {
			return errSessionNotFound
		}
		if session.Status != models.SessionStatusApproved {
			return errNotApproved
		}
		if time.Now().After(session.RegistrationEndDate) {
			return errRegistrationClosed
		}
		if requireFree && session.Fee > 0 {
			return errPaymentRequired
		}

		var count int64
		tx.Model(&models.Booking{}).
			Where("session_id = ? AND student_email = ?", session.ID, studentEmail).
			Count(&count)
		if count > 0 {
			return errAlreadyBooked
		}

		booking = models.Booking{
			SessionID:    session.ID,
			StudentEmail: studentEmail,
			TutorEmail:   session.TutorEmail,
		}
		if err := tx.Create(&booking).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errAlreadyBooked
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func bookingError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, errSessionNotFound):
		return fail(c, fiber.StatusNotFound, CodeNotFound, "Session not found")
	case errors.Is(err, errNotApproved):
		return fail(c, fiber.StatusConflict, CodeNotApproved, "Only approved sessions can be booked")
	case errors.Is(err, errRegistrationClosed):
		return fail(c, fiber.StatusConflict, CodeRegistrationClosed, "Registration for this session has closed")
	case errors.Is(err, errAlreadyBooked):
		return fail(c, fiber.StatusConflict, CodeAlreadyBooked, "You have already booked this session")
	default:
		return fail(c, fiber.StatusInternalServerError, CodeServiceUnavailable, "Failed to create booking")
	}
}

// CreateBooking books a free session synchronously. Paid sessions are never
// booked here; the caller is pointed at the payment flow, which confirms the
// charge and then drives the same ledger insert.
func CreateBooking(c *fiber.Ctx) error {
	studentEmail := middleware.ClaimEmail(c)

	var req CreateBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, CodeValidationError, "Cannot parse JSON")
	}
	if err := validate.Struct(req); err != nil {
		return fail(c, fiber.StatusBadRequest, CodeValidationError, err.Error())
	}
	sessionID, _ := uuid.Parse(req.SessionID)

	booking, err := insertBooking(sessionID, studentEmail, true)
	if err != nil {
		if errors.Is(err, errPaymentRequired) {
			return fail(c, fiber.StatusPaymentRequired, CodePaymentRequired, "This session has a fee; complete payment to book it")
		}
		return bookingError(c, err)
	}

	go notifyBookingConfirmed(*booking)

	return c.Status(fiber.StatusCreated).JSON(booking)
}

func GetMyBookings(c *fiber.Ctx) error {
	email := c.Query("email")
	if email == "" {
		email = middleware.ClaimEmail(c)
	}
	if email != middleware.ClaimEmail(c) && middleware.ClaimRole(c) != "admin" {
		return fail(c, fiber.StatusForbidden, CodeForbidden, "You may only list your own bookings")
	}

	var bookings []models.Booking
	if err := database.DB.Preload("Session").Where("student_email = ?", email).
		Order("created_at desc").Find(&bookings).Error; err != nil {
		return fail(c, fiber.StatusInternalServerError, CodeServiceUnavailable, "Database error")
	}
	return c.JSON(bookings)
}

// CheckBooking answers the session page's "already booked?" probe.
func CheckBooking(c *fiber.Ctx) error {
	sessionID := c.Query("sessionId")
	email := c.Query("email")
	if sessionID == "" || email == "" {
		return fail(c, fiber.StatusBadRequest, CodeValidationError, "sessionId and email query parameters are required")
	}
	if email != middleware.ClaimEmail(c) {
		return fail(c, fiber.StatusForbidden, CodeForbidden, "You may only check your own bookings")
	}

	var count int64
	database.DB.Model(&models.Booking{}).
		Where("session_id = ? AND student_email = ?", sessionID, email).
		Count(&count)

	return c.JSON(fiber.Map{"booked": count > 0})
}

func notifyBookingConfirmed(booking models.Booking) {
	var student models.User
	if err := database.DB.Where("email = ?", booking.StudentEmail).First(&student).Error; err != nil {
		return
	}
	var session models.StudySession
	if err := database.DB.First(&session, "id = ?", booking.SessionID).Error; err != nil {
		return
	}
	notifications.SendEmail(student.FullName, student.Email, "Your Booking is Confirmed!",
		"<h1>Booking Confirmed</h1><p>You are enrolled in \""+session.Title+"\". See your dashboard for class dates and materials.</p>")

	var tutor models.User
	if err := database.DB.Where("email = ?", booking.TutorEmail).First(&tutor).Error; err != nil {
		return
	}
	notifications.SendEmail(tutor.FullName, tutor.Email, "You Have a New Student!",
		"<h1>New Booking</h1><p>A student has booked your session \""+session.Title+"\".</p>")
}
