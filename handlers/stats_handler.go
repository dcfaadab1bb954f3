package handlers

import (
	"github.com/studysphere/study_sphere/database"
	"github.com/studysphere/study_sphere/middleware"
	"github.com/studysphere/study_sphere/models"
	"github.com/gofiber/fiber/v2"
)

type AdminStatsResponse struct {
	TotalUsers       int64                 `json:"totalUsers"`
	TotalTutors      int64                 `json:"totalTutors"`
	TotalStudents    int64                 `json:"totalStudents"`
	PendingSessions  int64                 `json:"pendingSessions"`
	ApprovedSessions int64                 `json:"approvedSessions"`
	RejectedSessions int64                 `json:"rejectedSessions"`
	TotalBookings    int64                 `json:"totalBookings"`
	TotalRevenue     float64               `json:"totalRevenue"`
	RecentSessions   []models.StudySession `json:"recentSessions"`
}

func GetAdminStats(c *fiber.Ctx) error {
	var response AdminStatsResponse

	database.DB.Model(&models.User{}).Count(&response.TotalUsers)
	database.DB.Model(&models.User{}).Where("role = ?", "tutor").Count(&response.TotalTutors)
	database.DB.Model(&models.User{}).Where("role = ?", "student").Count(&response.TotalStudents)

	database.DB.Model(&models.StudySession{}).Where("status = ?", models.SessionStatusPending).Count(&response.PendingSessions)
	database.DB.Model(&models.StudySession{}).Where("status = ?", models.SessionStatusApproved).Count(&response.ApprovedSessions)
	database.DB.Model(&models.StudySession{}).Where("status = ?", models.SessionStatusRejected).Count(&response.RejectedSessions)

	database.DB.Model(&models.Booking{}).Count(&response.TotalBookings)
	database.DB.Model(&models.Payment{}).Where("status = ?", "succeeded").
		Select("COALESCE(SUM(amount), 0)").Row().Scan(&response.TotalRevenue)

	database.DB.Order("created_at desc").Limit(5).Find(&response.RecentSessions)

	return c.JSON(response)
}

func GetTutorStats(c *fiber.Ctx) error {
	email := c.Params("email")
	if email != middleware.ClaimEmail(c) && middleware.ClaimRole(c) != "admin" {
		return fail(c, fiber.StatusForbidden, CodeForbidden, "You may only view your own stats")
	}

	var sessions, approved, materials, bookings int64
	database.DB.Model(&models.StudySession{}).Where("tutor_email = ?", email).Count(&sessions)
	database.DB.Model(&models.StudySession{}).Where("tutor_email = ? AND status = ?", email, models.SessionStatusApproved).Count(&approved)
	database.DB.Model(&models.Material{}).Where("tutor_email = ?", email).Count(&materials)
	database.DB.Model(&models.Booking{}).Where("tutor_email = ?", email).Count(&bookings)

	return c.JSON(fiber.Map{
		"totalSessions":    sessions,
		"approvedSessions": approved,
		"totalMaterials":   materials,
		"totalBookings":    bookings,
	})
}

func GetStudentStats(c *fiber.Ctx) error {
	email := c.Params("email")
	if email != middleware.ClaimEmail(c) && middleware.ClaimRole(c) != "admin" {
		return fail(c, fiber.StatusForbidden, CodeForbidden, "You may only view your own stats")
	}

	var bookings, notes, reviews int64
	database.DB.Model(&models.Booking{}).Where("student_email = ?", email).Count(&bookings)
	database.DB.Model(&models.Note{}).Where("owner_email = ?", email).Count(&notes)
	database.DB.Model(&models.Review{}).Where("student_email = ?", email).Count(&reviews)

	return c.JSON(fiber.Map{
		"bookedSessions": bookings,
		"totalNotes":     notes,
		"totalReviews":   reviews,
	})
}
