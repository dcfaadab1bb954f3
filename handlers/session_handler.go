package handlers

import (
	"fmt"
	"strconv"
	"time"

	"github.com/studysphere/study_sphere/database"
	"github.com/studysphere/study_sphere/middleware"
	"github.com/studysphere/study_sphere/models"
	"github.com/studysphere/study_sphere/notifications"
	"github.com/studysphere/study_sphere/websocket"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CreateSessionRequest struct {
	Title                 string  `json:"title" validate:"required,min=3"`
	Description           string  `json:"description" validate:"required"`
	RegistrationStartDate string  `json:"registrationStartDate" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	RegistrationEndDate   string  `json:"registrationEndDate" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	ClassStartDate        string  `json:"classStartDate" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	ClassEndDate          string  `json:"classEndDate" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	SessionDuration       int     `json:"sessionDuration" validate:"required,gt=0"`
	BannerImage           *string `json:"bannerImage,omitempty"`
}

func CreateSession(c *fiber.Ctx) error {
	var req CreateSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, CodeValidationError, "Cannot parse JSON")
	}
	if err := validate.Struct(req); err != nil {
		return fail(c, fiber.StatusBadRequest, CodeValidationError, err.Error())
	}

	regStart, _ := time.Parse(time.RFC3339, req.RegistrationStartDate)
	regEnd, _ := time.Parse(time.RFC3339, req.RegistrationEndDate)
	classStart, _ := time.Parse(time.RFC3339, req.ClassStartDate)
	classEnd, _ := time.Parse(time.RFC3339, req.ClassEndDate)

	if regEnd.Before(regStart) || classStart.Before(regEnd) || classEnd.Before(classStart) {
		return fail(c, fiber.StatusBadRequest, CodeValidationError, "Dates must satisfy registrationStart <= registrationEnd <= classStart <= classEnd")
	}

	tutorEmail := middleware.ClaimEmail(c)
	var tutor models.User
	if err := database.DB.Where("email = ?", tutorEmail).First(&tutor).Error; err != nil {
		return fail(c, fiber.StatusNotFound, CodeNotFound, "Tutor account not found")
	}

	// Status and fee are never tutor-chosen: every new session starts pending
	// and free until an admin approves it with a fee.
	session := models.StudySession{
		Title:                 req.Title,
		Description:           req.Description,
		TutorName:             tutor.FullName,
		TutorEmail:            tutor.Email,
		BannerImage:           req.BannerImage,
		RegistrationStartDate: regStart,
		RegistrationEndDate:   regEnd,
		ClassStartDate:        classStart,
		ClassEndDate:          classEnd,
		SessionDurationMonths: req.SessionDuration,
		Status:                models.SessionStatusPending,
	}
	if err := database.DB.Create(&session).Error; err != nil {
		return fail(c, fiber.StatusInternalServerError, CodeServiceUnavailable, "Failed to create session")
	}

	return c.Status(fiber.StatusCreated).JSON(session)
}

// ListApprovedSessions is the public catalogue: approved sessions only.
func ListApprovedSessions(c *fiber.Ctx) error {
	query := database.DB.Where("status = ?", models.SessionStatusApproved).Order("created_at desc")
	if limitStr := c.Query("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			query = query.Limit(limit)
		}
	}

	var sessions []models.StudySession
	if err := query.Find(&sessions).Error; err != nil {
		return fail(c, fiber.StatusInternalServerError, CodeServiceUnavailable, "Database error")
	}
	return c.JSON(sessions)
}

// GetSessionDetails is the public detail view, with reviews and the average
// rating folded in the way the session page renders them.
func GetSessionDetails(c *fiber.Ctx) error {
	sessionID := c.Params("id")

	var session models.StudySession
	if err := database.DB.Where("id = ?", sessionID).First(&session).Error; err != nil {
		return fail(c, fiber.StatusNotFound, CodeNotFound, "Session not found")
	}

	var reviews []models.Review
	database.DB.Where("session_id = ?", session.ID).Order("created_at desc").Find(&reviews)

	var avg struct {
		Avg float64
	}
	database.DB.Model(&models.Review{}).Where("session_id = ?", session.ID).
		Select("COALESCE(AVG(rating), 0) as avg").Scan(&avg)

	return c.JSON(fiber.Map{
		"id":                    session.ID,
		"title":                 session.Title,
		"description":           session.Description,
		"tutorName":             session.TutorName,
		"tutorEmail":            session.TutorEmail,
		"bannerImage":           session.BannerImage,
		"registrationStartDate": session.RegistrationStartDate,
		"registrationEndDate":   session.RegistrationEndDate,
		"classStartDate":        session.ClassStartDate,
		"classEndDate":          session.ClassEndDate,
		"sessionDuration":       session.SessionDurationMonths,
		"fee":                   session.Fee,
		"status":                session.Status,
		"averageRating":         avg.Avg,
		"reviews":               reviews,
	})
}

func GetSession(c *fiber.Ctx) error {
	var session models.StudySession
	if err := database.DB.Where("id = ?", c.Params("id")).First(&session).Error; err != nil {
		return fail(c, fiber.StatusNotFound, CodeNotFound, "Session not found")
	}
	return c.JSON(session)
}

// ListTutorSessions returns the calling tutor's own sessions, any status,
// optionally narrowed with ?status=.
func ListTutorSessions(c *fiber.Ctx) error {
	email := c.Query("email")
	if email == "" {
		email = middleware.ClaimEmail(c)
	}
	if email != middleware.ClaimEmail(c) && middleware.ClaimRole(c) != "admin" {
		return fail(c, fiber.StatusForbidden, CodeForbidden, "You may only list your own sessions")
	}

	query := database.DB.Where("tutor_email = ?", email).Order("created_at desc")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var sessions []models.StudySession
	if err := query.Find(&sessions).Error; err != nil {
		return fail(c, fiber.StatusInternalServerError, CodeServiceUnavailable, "Database error")
	}
	return c.JSON(sessions)
}

func AdminListSessions(c *fiber.Ctx) error {
	query := database.DB.Order("created_at desc")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var sessions []models.StudySession
	if err := query.Find(&sessions).Error; err != nil {
		return fail(c, fiber.StatusInternalServerError, CodeServiceUnavailable, "Database error")
	}
	return c.JSON(sessions)
}

type ApproveSessionRequest struct {
	Fee *float64 `json:"fee" validate:"required,gte=0"`
}

// ApproveSession moves pending -> approved and records the admin-assigned fee.
// Any non-negative amount is accepted; the fee tiers in the approval dialog
// are a UI affordance, not a domain rule.
func ApproveSession(c *fiber.Ctx) error {
	sessionID := c.Params("sessionId")

	var req ApproveSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, CodeValidationError, "Cannot parse JSON")
	}
	if err := validate.Struct(req); err != nil {
		return fail(c, fiber.StatusBadRequest, CodeValidationError, err.Error())
	}

	// Guarded update: the status predicate makes the read-validate-write
	// atomic, so two admins racing on the same session cannot both win.
	result := database.DB.Model(&models.StudySession{}).
		Where("id = ? AND status = ?", sessionID, models.SessionStatusPending).
		Updates(map[string]interface{}{"status": models.SessionStatusApproved, "fee": *req.Fee})
	if result.Error != nil {
		return fail(c, fiber.StatusInternalServerError, CodeServiceUnavailable, "Failed to approve session")
	}
	if result.RowsAffected == 0 {
		return failTransition(c, sessionID, models.SessionStatusApproved)
	}

	var session models.StudySession
	database.DB.First(&session, "id = ?", sessionID)

	go notifySessionDecision(session, "Your Study Session has been Approved!",
		fmt.Sprintf("<h1>Congratulations!</h1><p>Your session \"%s\" has been approved with a fee of %.2f. Students can now book it while registration is open.</p>", session.Title, session.Fee))
	websocket.NotifySessionStatus(session.TutorEmail, session.ID, session.Status)

	return c.JSON(fiber.Map{"message": "Session approved successfully", "session": session})
}

type RejectSessionRequest struct {
	Reason   string  `json:"reason" validate:"required,min=1"`
	Feedback *string `json:"feedback,omitempty"`
}

func RejectSession(c *fiber.Ctx) error {
	sessionID := c.Params("sessionId")

	var req RejectSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, CodeValidationError, "Cannot parse JSON")
	}
	if err := validate.Struct(req); err != nil {
		return fail(c, fiber.StatusBadRequest, CodeValidationError, err.Error())
	}

	result := database.DB.Model(&models.StudySession{}).
		Where("id = ? AND status = ?", sessionID, models.SessionStatusPending).
		Updates(map[string]interface{}{
			"status":           models.SessionStatusRejected,
			"rejection_reason": req.Reason,
			"admin_feedback":   req.Feedback,
		})
	if result.Error != nil {
		return fail(c, fiber.StatusInternalServerError, CodeServiceUnavailable, "Failed to reject session")
	}
	if result.RowsAffected == 0 {
		return failTransition(c, sessionID, models.SessionStatusRejected)
	}

	var session models.StudySession
	database.DB.First(&session, "id = ?", sessionID)

	go notifySessionDecision(session, "Update on Your Study Session",
		fmt.Sprintf("<h1>Session Update</h1><p>Your session \"%s\" was not approved. Reason: %s</p><p>You can revise and resubmit it from your dashboard.</p>", session.Title, req.Reason))
	websocket.NotifySessionStatus(session.TutorEmail, session.ID, session.Status)

	return c.JSON(fiber.Map{"message": "Session rejected", "session": session})
}

// ResubmitSession moves rejected -> pending for the owning tutor and clears
// the prior rejection metadata.
func ResubmitSession(c *fiber.Ctx) error {
	sessionID := c.Params("sessionId")

	var session models.StudySession
	if err := database.DB.Where("id = ?", sessionID).First(&session).Error; err != nil {
		return fail(c, fiber.StatusNotFound, CodeNotFound, "Session not found")
	}
	if session.TutorEmail != middleware.ClaimEmail(c) {
		return fail(c, fiber.StatusForbidden, CodeForbidden, "Only the session's tutor can resubmit it")
	}

	result := database.DB.Model(&models.StudySession{}).
		Where("id = ? AND status = ?", sessionID, models.SessionStatusRejected).
		Updates(map[string]interface{}{
			"status":           models.SessionStatusPending,
			"rejection_reason": nil,
			"admin_feedback":   nil,
		})
	if result.Error != nil {
		return fail(c, fiber.StatusInternalServerError, CodeServiceUnavailable, "Failed to resubmit session")
	}
	if result.RowsAffected == 0 {
		return fail(c, fiber.StatusBadRequest, CodeInvalidOperation, "Only rejected sessions can be resubmitted for approval")
	}

	websocket.NotifySessionStatus(session.TutorEmail, session.ID, models.SessionStatusPending)

	return c.JSON(fiber.Map{"message": "The session has been sent again for admin approval."})
}

type UpdateSessionRequest struct {
	Title           *string  `json:"title,omitempty"`
	SessionDuration *int     `json:"sessionDuration,omitempty" validate:"omitempty,gt=0"`
	ClassEndDate    *string  `json:"classEndDate,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Fee             *float64 `json:"fee,omitempty" validate:"omitempty,gte=0"`
	Status          *string  `json:"status,omitempty" validate:"omitempty,oneof=approved rejected"`
}

// UpdateSession is the admin content edit on an approved session. It is not a
// lifecycle transition, which is why pending is out of bounds here and only
// approved/rejected are legal status values.
func UpdateSession(c *fiber.Ctx) error {
	sessionID := c.Params("sessionId")

	var req UpdateSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, CodeValidationError, "Cannot parse JSON")
	}
	if err := validate.Struct(req); err != nil {
		return fail(c, fiber.StatusBadRequest, CodeValidationError, err.Error())
	}

	var session models.StudySession
	if err := database.DB.Where("id = ?", sessionID).First(&session).Error; err != nil {
		return fail(c, fiber.StatusNotFound, CodeNotFound, "Session not found")
	}
	if session.Status != models.SessionStatusApproved {
		return fail(c, fiber.StatusConflict, CodeInvalidTransition, "Only approved sessions can be edited")
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.SessionDuration != nil {
		updates["session_duration_months"] = *req.SessionDuration
	}
	if req.ClassEndDate != nil {
		classEnd, _ := time.Parse(time.RFC3339, *req.ClassEndDate)
		if classEnd.Before(session.RegistrationEndDate) {
			return fail(c, fiber.StatusBadRequest, CodeValidationError, "classEndDate cannot precede registrationEndDate")
		}
		updates["class_end_date"] = classEnd
	}
	if req.Fee != nil {
		updates["fee"] = *req.Fee
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if len(updates) == 0 {
		return fail(c, fiber.StatusBadRequest, CodeValidationError, "No fields to update")
	}

	result := database.DB.Model(&models.StudySession{}).
		Where("id = ? AND status = ?", sessionID, models.SessionStatusApproved).
		Updates(updates)
	if result.Error != nil {
		return fail(c, fiber.StatusInternalServerError, CodeServiceUnavailable, "Failed to update session")
	}
	if result.RowsAffected == 0 {
		return fail(c, fiber.StatusConflict, CodeInvalidTransition, "Session is no longer editable")
	}

	return c.JSON(fiber.Map{"message": "Session updated successfully", "modifiedCount": result.RowsAffected})
}

// DeleteSession hard-deletes an approved session and cascades to everything
// hanging off it inside one transaction, reporting per-entity counts.
func DeleteSession(c *fiber.Ctx) error {
	sessionID := c.Params("sessionId")

	var session models.StudySession
	if err := database.DB.Where("id = ?", sessionID).First(&session).Error; err != nil {
		return fail(c, fiber.StatusNotFound, CodeNotFound, "Session not found")
	}

	var bookings, materials, reviews int64
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("session_id = ?", session.ID).Delete(&models.Booking{})
		if res.Error != nil {
			return res.Error
		}
		bookings = res.RowsAffected

		res = tx.Where("session_id = ?", session.ID).Delete(&models.Material{})
		if res.Error != nil {
			return res.Error
		}
		materials = res.RowsAffected

		res = tx.Where("session_id = ?", session.ID).Delete(&models.Review{})
		if res.Error != nil {
			return res.Error
		}
		reviews = res.RowsAffected

		return tx.Delete(&session).Error
	})
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, CodeServiceUnavailable, "Failed to delete session")
	}

	return c.JSON(fiber.Map{
		"message":          "Session has been deleted",
		"deletedBookings":  bookings,
		"deletedMaterials": materials,
		"deletedReviews":   reviews,
	})
}

// failTransition distinguishes a missing session from an illegal transition
// after a guarded update matched no rows.
func failTransition(c *fiber.Ctx, sessionID, target string) error {
	var session models.StudySession
	if err := database.DB.Select("status").Where("id = ?", sessionID).First(&session).Error; err != nil {
		return fail(c, fiber.StatusNotFound, CodeNotFound, "Session not found")
	}
	return fail(c, fiber.StatusConflict, CodeInvalidTransition,
		fmt.Sprintf("Cannot move a %s session to %s", session.Status, target))
}

func notifySessionDecision(session models.StudySession, subject, body string) {
	var tutor models.User
	if err := database.DB.Where("email = ?", session.TutorEmail).First(&tutor).Error; err != nil {
		return
	}
	notifications.SendEmail(tutor.FullName, tutor.Email, subject, body)
}
