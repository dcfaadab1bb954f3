package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SessionStatusPending  = "pending"
	SessionStatusApproved = "approved"
	SessionStatusRejected = "rejected"
)

type StudySession struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	TutorName   string    `gorm:"size:255;not null" json:"tutorName"`
	TutorEmail  string    `gorm:"size:255;not null;index" json:"tutorEmail"`
	BannerImage *string   `gorm:"size:255" json:"bannerImage"`

	RegistrationStartDate time.Time `gorm:"not null" json:"registrationStartDate"`
	RegistrationEndDate   time.Time `gorm:"not null" json:"registrationEndDate"`
	ClassStartDate        time.Time `gorm:"not null" json:"classStartDate"`
	ClassEndDate          time.Time `gorm:"not null" json:"classEndDate"`
	SessionDurationMonths int       `gorm:"not null" json:"sessionDuration"`

	// Assigned by an admin at approval time, never by the tutor. Zero means free.
	Fee float64 `gorm:"type:numeric(10,2);not null;default:0" json:"fee"`

	Status          string  `gorm:"size:20;not null;default:'pending';index" json:"status"`
	RejectionReason *string `gorm:"type:text" json:"rejectionReason,omitempty"`
	AdminFeedback   *string `gorm:"type:text" json:"adminFeedback,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (s *StudySession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
