package handlers_test

import (
	. "github.com/studysphere/study_sphere/handlers"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studysphere/study_sphere/database"
	"github.com/studysphere/study_sphere/models"
)

func TestCreateSessionStartsPending(t *testing.T) {
	app := newTestApp(t)
	tutor := createTestUser(t, "Tutor One", "tutor@example.com", "tutor")

	now := time.Now()
	resp := doJSON(t, app, http.MethodPost, "/api/v1/sessions", tokenFor(t, tutor), map[string]interface{}{
		"title":                 "Discrete Mathematics",
		"description":           "Proofs, sets, graphs.",
		"registrationStartDate": now.Format(time.RFC3339),
		"registrationEndDate":   now.Add(7 * 24 * time.Hour).Format(time.RFC3339),
		"classStartDate":        now.Add(8 * 24 * time.Hour).Format(time.RFC3339),
		"classEndDate":          now.Add(60 * 24 * time.Hour).Format(time.RFC3339),
		"sessionDuration":       2,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "pending", body["status"])
	assert.Equal(t, float64(0), body["fee"])
	assert.Equal(t, tutor.Email, body["tutorEmail"])
}

func TestCreateSessionRejectsBadDateOrder(t *testing.T) {
	app := newTestApp(t)
	tutor := createTestUser(t, "Tutor One", "tutor@example.com", "tutor")

	now := time.Now()
	resp := doJSON(t, app, http.MethodPost, "/api/v1/sessions", tokenFor(t, tutor), map[string]interface{}{
		"title":                 "Backwards Dates",
		"description":           "classStart before registrationEnd",
		"registrationStartDate": now.Format(time.RFC3339),
		"registrationEndDate":   now.Add(10 * 24 * time.Hour).Format(time.RFC3339),
		"classStartDate":        now.Add(5 * 24 * time.Hour).Format(time.RFC3339),
		"classEndDate":          now.Add(60 * 24 * time.Hour).Format(time.RFC3339),
		"sessionDuration":       2,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, CodeValidationError, decodeBody(t, resp)["code"])
}

func TestCreateSessionRequiresTutorRole(t *testing.T) {
	app := newTestApp(t)
	student := createTestUser(t, "Student", "student@example.com", "student")

	resp := doJSON(t, app, http.MethodPost, "/api/v1/sessions", tokenFor(t, student), map[string]interface{}{})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestApproveSessionRecordsFee(t *testing.T) {
	app := newTestApp(t)
	tutor := createTestUser(t, "Tutor", "tutor@example.com", "tutor")
	admin := createTestUser(t, "Admin", "admin@example.com", "admin")
	session := createTestSession(t, tutor, models.SessionStatusPending, 0, time.Now().Add(48*time.Hour))

	resp := doJSON(t, app, http.MethodPatch, "/api/v1/sessions/"+session.ID.String()+"/approve",
		tokenFor(t, admin), map[string]interface{}{"fee": 100})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var reloaded models.StudySession
	require.NoError(t, database.DB.First(&reloaded, "id = ?", session.ID).Error)
	assert.Equal(t, models.SessionStatusApproved, reloaded.Status)
	assert.Equal(t, float64(100), reloaded.Fee)
}

func TestApproveAcceptsAnyNonNegativeFee(t *testing.T) {
	app := newTestApp(t)
	tutor := createTestUser(t, "Tutor", "tutor@example.com", "tutor")
	admin := createTestUser(t, "Admin", "admin@example.com", "admin")

	// Not limited to the fee tiers the approval dialog shows.
	session := createTestSession(t, tutor, models.SessionStatusPending, 0, time.Now().Add(48*time.Hour))
	resp := doJSON(t, app, http.MethodPatch, "/api/v1/sessions/"+session.ID.String()+"/approve",
		tokenFor(t, admin), map[string]interface{}{"fee": 73.5})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	negative := createTestSession(t, tutor, models.SessionStatusPending, 0, time.Now().Add(48*time.Hour))
	resp = doJSON(t, app, http.MethodPatch, "/api/v1/sessions/"+negative.ID.String()+"/approve",
		tokenFor(t, admin), map[string]interface{}{"fee": -5})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, CodeValidationError, decodeBody(t, resp)["code"])
}

func TestApproveNonPendingIsInvalidTransition(t *testing.T) {
	app := newTestApp(t)
	tutor := createTestUser(t, "Tutor", "tutor@example.com", "tutor")
	admin := createTestUser(t, "Admin", "admin@example.com", "admin")
	session := createTestSession(t, tutor, models.SessionStatusApproved, 50, time.Now().Add(48*time.Hour))

	resp := doJSON(t, app, http.MethodPatch, "/api/v1/sessions/"+session.ID.String()+"/approve",
		tokenFor(t, admin), map[string]interface{}{"fee": 100})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, CodeInvalidTransition, decodeBody(t, resp)["code"])
	assert.Equal(t, models.SessionStatusApproved, sessionStatus(t, session.ID))
}

func TestApproveMissingSessionIsNotFound(t *testing.T) {
	app := newTestApp(t)
	admin := createTestUser(t, "Admin", "admin@example.com", "admin")

	resp := doJSON(t, app, http.MethodPatch, "/api/v1/sessions/6c1a0a66-0000-0000-0000-000000000000/approve",
		tokenFor(t, admin), map[string]interface{}{"fee": 100})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, CodeNotFound, decodeBody(t, resp)["code"])
}

func TestRejectRequiresReason(t *testing.T) {
	app := newTestApp(t)
	tutor := createTestUser(t, "Tutor", "tutor@example.com", "tutor")
	admin := createTestUser(t, "Admin", "admin@example.com", "admin")
	session := createTestSession(t, tutor, models.SessionStatusPending, 0, time.Now().Add(48*time.Hour))

	resp := doJSON(t, app, http.MethodPatch, "/api/v1/sessions/"+session.ID.String()+"/reject",
		tokenFor(t, admin), map[string]interface{}{"feedback": "needs work"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, CodeValidationError, decodeBody(t, resp)["code"])
	assert.Equal(t, models.SessionStatusPending, sessionStatus(t, session.ID))
}

func TestRejectThenResubmitClearsRejectionMetadata(t *testing.T) {
	app := newTestApp(t)
	tutor := createTestUser(t, "Tutor", "tutor@example.com", "tutor")
	admin := createTestUser(t, "Admin", "admin@example.com", "admin")
	session := createTestSession(t, tutor, models.SessionStatusPending, 0, time.Now().Add(48*time.Hour))

	resp := doJSON(t, app, http.MethodPatch, "/api/v1/sessions/"+session.ID.String()+"/reject",
		tokenFor(t, admin), map[string]interface{}{"reason": "incomplete syllabus", "feedback": "add a week plan"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rejected models.StudySession
	require.NoError(t, database.DB.First(&rejected, "id = ?", session.ID).Error)
	require.Equal(t, models.SessionStatusRejected, rejected.Status)
	require.NotNil(t, rejected.RejectionReason)
	assert.Equal(t, "incomplete syllabus", *rejected.RejectionReason)

	resp = doJSON(t, app, http.MethodPatch, "/api/v1/sessions/"+session.ID.String()+"/request-approval",
		tokenFor(t, tutor), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var resubmitted models.StudySession
	require.NoError(t, database.DB.First(&resubmitted, "id = ?", session.ID).Error)
	assert.Equal(t, models.SessionStatusPending, resubmitted.Status)
	assert.Nil(t, resubmitted.RejectionReason)
	assert.Nil(t, resubmitted.AdminFeedback)

	// Approve the resubmission with a fee, completing the round trip.
	resp = doJSON(t, app, http.MethodPatch, "/api/v1/sessions/"+session.ID.String()+"/approve",
		tokenFor(t, admin), map[string]interface{}{"fee": 100})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var approved models.StudySession
	require.NoError(t, database.DB.First(&approved, "id = ?", session.ID).Error)
	assert.Equal(t, models.SessionStatusApproved, approved.Status)
	assert.Equal(t, float64(100), approved.Fee)
}

func TestResubmitByNonOwnerIsForbidden(t *testing.T) {
	app := newTestApp(t)
	tutor := createTestUser(t, "Tutor", "tutor@example.com", "tutor")
	other := createTestUser(t, "Other Tutor", "other@example.com", "tutor")
	session := createTestSession(t, tutor, models.SessionStatusRejected, 0, time.Now().Add(48*time.Hour))

	resp := doJSON(t, app, http.MethodPatch, "/api/v1/sessions/"+session.ID.String()+"/request-approval",
		tokenFor(t, other), nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, CodeForbidden, decodeBody(t, resp)["code"])
	assert.Equal(t, models.SessionStatusRejected, sessionStatus(t, session.ID))
}

func TestResubmitNonRejectedIsInvalidOperation(t *testing.T) {
	app := newTestApp(t)
	tutor := createTestUser(t, "Tutor", "tutor@example.com", "tutor")

	for _, status := range []string{models.SessionStatusPending, models.SessionStatusApproved} {
		session := createTestSession(t, tutor, status, 0, time.Now().Add(48*time.Hour))
		resp := doJSON(t, app, http.MethodPatch, "/api/v1/sessions/"+session.ID.String()+"/request-approval",
			tokenFor(t, tutor), nil)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, "status %s", status)
		assert.Equal(t, CodeInvalidOperation, decodeBody(t, resp)["code"])
		assert.Equal(t, status, sessionStatus(t, session.ID))
	}
}

func TestUpdateSessionValidatesClassEndDate(t *testing.T) {
	app := newTestApp(t)
	tutor := createTestUser(t, "Tutor", "tutor@example.com", "tutor")
	admin := createTestUser(t, "Admin", "admin@example.com", "admin")
	session := createTestSession(t, tutor, models.SessionStatusApproved, 50, time.Now().Add(48*time.Hour))

	badEnd := session.RegistrationEndDate.Add(-24 * time.Hour).Format(time.RFC3339)
	resp := doJSON(t, app, http.MethodPatch, "/api/v1/sessions/"+session.ID.String(),
		tokenFor(t, admin), map[string]interface{}{"classEndDate": badEnd})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, CodeValidationError, decodeBody(t, resp)["code"])

	resp = doJSON(t, app, http.MethodPatch, "/api/v1/sessions/"+session.ID.String(),
		tokenFor(t, admin), map[string]interface{}{"title": "Algebra, Extended", "fee": 75})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var reloaded models.StudySession
	require.NoError(t, database.DB.First(&reloaded, "id = ?", session.ID).Error)
	assert.Equal(t, "Algebra, Extended", reloaded.Title)
	assert.Equal(t, float64(75), reloaded.Fee)
}

func TestUpdatePendingSessionIsRejected(t *testing.T) {
	app := newTestApp(t)
	tutor := createTestUser(t, "Tutor", "tutor@example.com", "tutor")
	admin := createTestUser(t, "Admin", "admin@example.com", "admin")
	session := createTestSession(t, tutor, models.SessionStatusPending, 0, time.Now().Add(48*time.Hour))

	resp := doJSON(t, app, http.MethodPatch, "/api/v1/sessions/"+session.ID.String(),
		tokenFor(t, admin), map[string]interface{}{"title": "New Title"})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, CodeInvalidTransition, decodeBody(t, resp)["code"])
}

func TestDeleteSessionCascades(t *testing.T) {
	app := newTestApp(t)
	tutor := createTestUser(t, "Tutor", "tutor@example.com", "tutor")
	admin := createTestUser(t, "Admin", "admin@example.com", "admin")
	student := createTestUser(t, "Student", "student@example.com", "student")
	session := createTestSession(t, tutor, models.SessionStatusApproved, 0, time.Now().Add(48*time.Hour))

	require.NoError(t, database.DB.Create(&models.Booking{
		SessionID: session.ID, StudentEmail: student.Email, TutorEmail: tutor.Email,
	}).Error)
	require.NoError(t, database.DB.Create(&models.Material{
		Title: "Week 1 Notes", SessionID: session.ID, TutorEmail: tutor.Email,
		ImageURL: "https://cdn.example.com/w1.png",
	}).Error)
	require.NoError(t, database.DB.Create(&models.Review{
		SessionID: session.ID, StudentEmail: student.Email, StudentName: student.FullName, Rating: 5,
	}).Error)

	resp := doJSON(t, app, http.MethodDelete, "/api/v1/sessions/"+session.ID.String(),
		tokenFor(t, admin), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, float64(1), body["deletedBookings"])
	assert.Equal(t, float64(1), body["deletedMaterials"])
	assert.Equal(t, float64(1), body["deletedReviews"])

	var remaining int64
	database.DB.Model(&models.Booking{}).Where("session_id = ?", session.ID).Count(&remaining)
	assert.Zero(t, remaining)
	database.DB.Model(&models.StudySession{}).Where("id = ?", session.ID).Count(&remaining)
	assert.Zero(t, remaining)
}

func TestPublicCatalogueListsOnlyApproved(t *testing.T) {
	app := newTestApp(t)
	tutor := createTestUser(t, "Tutor", "tutor@example.com", "tutor")
	createTestSession(t, tutor, models.SessionStatusApproved, 0, time.Now().Add(48*time.Hour))
	createTestSession(t, tutor, models.SessionStatusPending, 0, time.Now().Add(48*time.Hour))
	createTestSession(t, tutor, models.SessionStatusRejected, 0, time.Now().Add(48*time.Hour))

	resp := doJSON(t, app, http.MethodGet, "/api/v1/study-sessions", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var sessions []models.StudySession
	require.NoError(t, jsonDecode(resp, &sessions))
	require.Len(t, sessions, 1)
	assert.Equal(t, models.SessionStatusApproved, sessions[0].Status)
}

func TestSessionDetailsIncludesAverageRating(t *testing.T) {
	app := newTestApp(t)
	tutor := createTestUser(t, "Tutor", "tutor@example.com", "tutor")
	session := createTestSession(t, tutor, models.SessionStatusApproved, 0, time.Now().Add(48*time.Hour))

	require.NoError(t, database.DB.Create(&models.Review{
		SessionID: session.ID, StudentEmail: "a@example.com", StudentName: "A", Rating: 4,
	}).Error)
	require.NoError(t, database.DB.Create(&models.Review{
		SessionID: session.ID, StudentEmail: "b@example.com", StudentName: "B", Rating: 2,
	}).Error)

	resp := doJSON(t, app, http.MethodGet, "/api/v1/study/sessions/"+session.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, float64(3), body["averageRating"])
	assert.Len(t, body["reviews"], 2)
}
