package handlers

import (
	"errors"
	"time"

	"github.com/studysphere/study_sphere/database"
	"github.com/studysphere/study_sphere/middleware"
	"github.com/studysphere/study_sphere/models"
	"github.com/studysphere/study_sphere/payments"
	"github.com/studysphere/study_sphere/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CreateOrderRequest struct {
	SessionID string `json:"sessionId" validate:"required,uuid"`
}

// CreateOrder opens the payment leg for a paid session. No booking row is
// written here; the ledger insert happens only after a confirmed capture,
// because the charge is asynchronous and may never complete.
func CreateOrder(c *fiber.Ctx) error {
	studentEmail := middleware.ClaimEmail(c)

	var req CreateOrderRequest
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
	if session.Status != models.SessionStatusApproved {
		return fail(c, fiber.StatusConflict, CodeNotApproved, "Only approved sessions can be paid for")
	}
	if time.Now().After(session.RegistrationEndDate) {
		return fail(c, fiber.StatusConflict, CodeRegistrationClosed, "Registration for this session has closed")
	}
	if session.Fee <= 0 {
		return fail(c, fiber.StatusBadRequest, CodeInvalidOperation, "This session is free; book it directly")
	}

	var existing int64
	database.DB.Model(&models.Booking{}).
		Where("session_id = ? AND student_email = ?", session.ID, studentEmail).
		Count(&existing)
	if existing > 0 {
		return fail(c, fiber.StatusConflict, CodeAlreadyBooked, "You have already booked this session")
	}

	order, err := payments.CreatePayPalOrder(session.Fee, "USD")
	if err != nil {
		return fail(c, fiber.StatusServiceUnavailable, CodeServiceUnavailable, "Payment could not be initiated, please try again.")
	}

	payment := models.Payment{
		SessionID:       session.ID,
		StudentEmail:    studentEmail,
		Amount:          session.Fee,
		Currency:        "USD",
		Provider:        "paypal",
		ProviderOrderID: &order.ID,
		Status:          "pending",
	}
	if err := database.DB.Create(&payment).Error; err != nil {
		return fail(c, fiber.StatusInternalServerError, CodeServiceUnavailable, "Failed to record payment")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"payment_id": payment.ID,
		"order_id":   order.ID,
	})
}

// CaptureOrder is the payment processor's confirmation leg: capture the charge,
// then run the booking through the same ledger path free sessions use.
func CaptureOrder(c *fiber.Ctx) error {
	orderID := c.Params("orderId")
	studentEmail := middleware.ClaimEmail(c)

	var payment models.Payment
	if err := database.DB.Where("provider_order_id = ? AND student_email = ?", orderID, studentEmail).
		First(&payment).Error; err != nil {
		return fail(c, fiber.StatusNotFound, CodeNotFound, "Payment order not found")
	}
	if payment.Status != "pending" {
		return fail(c, fiber.StatusConflict, CodeInvalidOperation, "This payment has already been processed")
	}

	captured, err := payments.CapturePayPalOrder(orderID)
	if err != nil {
		return fail(c, fiber.StatusServiceUnavailable, CodeServiceUnavailable, "Payment capture failed, please try again.")
	}
	if captured.Status != "COMPLETED" {
		database.DB.Model(&payment).Update("status", "failed")
		return fail(c, fiber.StatusBadRequest, CodeInvalidOperation, "Payment was not completed")
	}

	booking, err := insertBooking(payment.SessionID, payment.StudentEmail, false)
	if err != nil {
		// The charge went through but the ledger refused; keep the payment
		// record pending so an admin can reconcile, except for duplicates.
		if errors.Is(err, errAlreadyBooked) {
			database.DB.Model(&payment).Update("status", "failed")
		}
		return bookingError(c, err)
	}

	database.DB.Model(&payment).Update("status", "succeeded")

	go notifyBookingConfirmed(*booking)
	go services.GenerateBookingReceipt(booking.ID)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Payment captured and booking confirmed",
		"booking": booking,
	})
}

func AdminGetPayments(c *fiber.Ctx) error {
	var paymentsList []models.Payment
	query := database.DB.Order("created_at desc")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&paymentsList).Error; err != nil {
		return fail(c, fiber.StatusInternalServerError, CodeServiceUnavailable, "Database error")
	}
	return c.JSON(paymentsList)
}
