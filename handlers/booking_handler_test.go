package handlers_test

import (
	. "github.com/studysphere/study_sphere/handlers"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studysphere/study_sphere/database"
	"github.com/studysphere/study_sphere/models"
)

func TestBookFreeSessionThenDuplicate(t *testing.T) {
	app := newTestApp(t)
	tutor := createTestUser(t, "Tutor", "tutor@example.com", "tutor")
	student := createTestUser(t, "Student", "student@example.com", "student")
	session := createTestSession(t, tutor, models.SessionStatusApproved, 0, time.Now().Add(48*time.Hour))

	resp := doJSON(t, app, http.MethodPost, "/api/v1/bookedSessions", tokenFor(t, student),
		map[string]interface{}{"sessionId": session.ID.String()})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, student.Email, body["studentEmail"])
	assert.Equal(t, tutor.Email, body["tutorEmail"])

	resp = doJSON(t, app, http.MethodPost, "/api/v1/bookedSessions", tokenFor(t, student),
		map[string]interface{}{"sessionId": session.ID.String()})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, CodeAlreadyBooked, decodeBody(t, resp)["code"])

	var count int64
	database.DB.Model(&models.Booking{}).
		Where("session_id = ? AND student_email = ?", session.ID, student.Email).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestBookPendingSessionIsNotApproved(t *testing.T) {
	app := newTestApp(t)
	tutor := createTestUser(t, "Tutor", "tutor@example.com", "tutor")
	student := createTestUser(t, "Student", "student@example.com", "student")
	session := createTestSession(t, tutor, models.SessionStatusPending, 0, time.Now().Add(48*time.Hour))

	resp := doJSON(t, app, http.MethodPost, "/api/v1/bookedSessions", tokenFor(t, student),
		map[string]interface{}{"sessionId": session.ID.String()})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, CodeNotApproved, decodeBody(t, resp)["code"])
}

func TestBookAfterRegistrationEndIsClosed(t *testing.T) {
	app := newTestApp(t)
	tutor := createTestUser(t, "Tutor", "tutor@example.com", "tutor")
	student := createTestUser(t, "Student", "student@example.com", "student")
	// Approved but the window shut yesterday.
	session := createTestSession(t, tutor, models.SessionStatusApproved, 0, time.Now().Add(-24*time.Hour))

	resp := doJSON(t, app, http.MethodPost, "/api/v1/bookedSessions", tokenFor(t, student),
		map[string]interface{}{"sessionId": session.ID.String()})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, CodeRegistrationClosed, decodeBody(t, resp)["code"])
}

func TestBookPaidSessionRequiresPayment(t *testing.T) {
	app := newTestApp(t)
	tutor := createTestUser(t, "Tutor", "tutor@example.com", "tutor")
	student := createTestUser(t, "Student", "student@example.com", "student")
	session := createTestSession(t, tutor, models.SessionStatusApproved, 100, time.Now().Add(48*time.Hour))

	resp := doJSON(t, app, http.MethodPost, "/api/v1/bookedSessions", tokenFor(t, student),
		map[string]interface{}{"sessionId": session.ID.String()})
	require.Equal(t, http.StatusPaymentRequired, resp.StatusCode)
	assert.Equal(t, CodePaymentRequired, decodeBody(t, resp)["code"])

	// The two-phase design: nothing lands in the ledger before confirmation.
	var count int64
	database.DB.Model(&models.Booking{}).Where("session_id = ?", session.ID).Count(&count)
	assert.Zero(t, count)
}

func TestBookingRequiresStudentRole(t *testing.T) {
	app := newTestApp(t)
	tutor := createTestUser(t, "Tutor", "tutor@example.com", "tutor")
	admin := createTestUser(t, "Admin", "admin@example.com", "admin")
	session := createTestSession(t, tutor, models.SessionStatusApproved, 0, time.Now().Add(48*time.Hour))

	for _, u := range []models.User{tutor, admin} {
		resp := doJSON(t, app, http.MethodPost, "/api/v1/bookedSessions", tokenFor(t, u),
			map[string]interface{}{"sessionId": session.ID.String()})
		require.Equal(t, http.StatusForbidden, resp.StatusCode, "role %s", u.Role)
	}
}

func TestBookingRequiresCredential(t *testing.T) {
	app := newTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/bookedSessions", "",
		map[string]interface{}{"sessionId": "ignored"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// The ledger must collapse concurrent attempts for the same pair to a single
// booking; the composite unique index is the backstop behind the transaction.
func TestConcurrentLedgerInsertsKeepOneBooking(t *testing.T) {
	newTestApp(t)
	tutor := createTestUser(t, "Tutor", "tutor@example.com", "tutor")
	student := createTestUser(t, "Student", "student@example.com", "student")
	session := createTestSession(t, tutor, models.SessionStatusApproved, 0, time.Now().Add(48*time.Hour))

	var wg sync.WaitGroup
	results := make([]error, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = InsertBooking(session.ID, student.Email, true)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range results {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, ErrAlreadyBooked)
		}
	}
	assert.Equal(t, 1, successes)

	var count int64
	database.DB.Model(&models.Booking{}).
		Where("session_id = ? AND student_email = ?", session.ID, student.Email).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestCheckAndListBookings(t *testing.T) {
	app := newTestApp(t)
	tutor := createTestUser(t, "Tutor", "tutor@example.com", "tutor")
	student := createTestUser(t, "Student", "student@example.com", "student")
	session := createTestSession(t, tutor, models.SessionStatusApproved, 0, time.Now().Add(48*time.Hour))

	resp := doJSON(t, app, http.MethodGet,
		"/api/v1/bookedSessions/check?sessionId="+session.ID.String()+"&email="+student.Email,
		tokenFor(t, student), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, decodeBody(t, resp)["booked"])

	require.NoError(t, database.DB.Create(&models.Booking{
		SessionID: session.ID, StudentEmail: student.Email, TutorEmail: tutor.Email,
	}).Error)

	resp = doJSON(t, app, http.MethodGet,
		"/api/v1/bookedSessions/check?sessionId="+session.ID.String()+"&email="+student.Email,
		tokenFor(t, student), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, decodeBody(t, resp)["booked"])

	resp = doJSON(t, app, http.MethodGet, "/api/v1/bookedSessions?email="+student.Email,
		tokenFor(t, student), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var bookings []models.Booking
	require.NoError(t, jsonDecode(resp, &bookings))
	require.Len(t, bookings, 1)
	assert.Equal(t, session.ID, bookings[0].SessionID)

	// Another student cannot read someone else's ledger slice.
	other := createTestUser(t, "Other", "other@example.com", "student")
	resp = doJSON(t, app, http.MethodGet, "/api/v1/bookedSessions?email="+student.Email,
		tokenFor(t, other), nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}
