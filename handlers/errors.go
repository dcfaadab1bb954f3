package handlers

import "github.com/gofiber/fiber/v2"

// Stable error codes surfaced alongside the human-readable message so the
// client can branch without string-matching.
const (
	CodeUnauthenticated    = "UNAUTHENTICATED"
	CodeForbidden          = "FORBIDDEN"
	CodeInvalidTransition  = "INVALID_TRANSITION"
	CodeInvalidOperation   = "INVALID_OPERATION"
	CodeAlreadyBooked      = "ALREADY_BOOKED"
	CodeRegistrationClosed = "REGISTRATION_CLOSED"
	CodeNotApproved        = "NOT_APPROVED"
	CodeNotFound           = "NOT_FOUND"
	CodePaymentRequired    = "PAYMENT_REQUIRED"
	CodeValidationError    = "VALIDATION_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

func fail(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message, "code": code})
}
