package jobs

import (
	"fmt"
	"log"
	"time"

	"github.com/studysphere/study_sphere/database"
	"github.com/studysphere/study_sphere/models"
	"github.com/studysphere/study_sphere/notifications"
)

// SendRegistrationClosingReminders nudges tutors whose approved sessions stop
// accepting bookings within the next 24 hours.
func SendRegistrationClosingReminders() {
	log.Println("Running job: SendRegistrationClosingReminders...")

	now := time.Now()
	deadline := now.Add(24 * time.Hour)

	var closingSessions []models.StudySession
	err := database.DB.
		Where("status = ? AND registration_end_date BETWEEN ? AND ?", models.SessionStatusApproved, now, deadline).
		Find(&closingSessions).Error
	if err != nil {
		log.Printf("Error checking for closing registrations: %v", err)
		return
	}

	for _, session := range closingSessions {
		var tutor models.User
		if err := database.DB.Where("email = ?", session.TutorEmail).First(&tutor).Error; err != nil {
			continue
		}

		emailBody := fmt.Sprintf(
			"<h1>Registration Closing Soon</h1><p>Registration for your session \"%s\" closes on %s. Make sure your materials are ready for enrolled students.</p>",
			session.Title,
			session.RegistrationEndDate.Format("January 2, 2006 at 3:04 PM"),
		)
		go notifications.SendEmail(tutor.FullName, tutor.Email, "Registration Closes in 24 Hours", emailBody)
	}
}

// SendClassStartReminders emails every booked student the day before their
// class period begins.
func SendClassStartReminders() {
	log.Println("Running job: SendClassStartReminders...")

	now := time.Now()
	lowerBound := now.Add(24 * time.Hour)
	upperBound := now.Add(25 * time.Hour)

	var startingSessions []models.StudySession
	err := database.DB.
		Where("status = ? AND class_start_date BETWEEN ? AND ?", models.SessionStatusApproved, lowerBound, upperBound).
		Find(&startingSessions).Error
	if err != nil {
		log.Printf("Error checking for upcoming classes: %v", err)
		return
	}

	for _, session := range startingSessions {
		var bookings []models.Booking
		if err := database.DB.Where("session_id = ?", session.ID).Find(&bookings).Error; err != nil {
			continue
		}

		emailSubject := "Reminder: Your Class Starts Tomorrow!"
		emailBody := fmt.Sprintf(
			"<h1>Class Reminder</h1><p>Your session \"%s\" with %s starts on %s.</p>",
			session.Title,
			session.TutorName,
			session.ClassStartDate.Format("January 2, 2006 at 3:04 PM"),
		)

		for _, booking := range bookings {
			var student models.User
			if err := database.DB.Where("email = ?", booking.StudentEmail).First(&student).Error; err != nil {
				continue
			}
			go notifications.SendEmail(student.FullName, student.Email, emailSubject, emailBody)
		}
	}
}
