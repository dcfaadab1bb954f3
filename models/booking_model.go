package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Booking struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	SessionID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_session_student" json:"sessionId"`
	StudentEmail string    `gorm:"size:255;not null;uniqueIndex:idx_session_student;index" json:"studentEmail"`
	TutorEmail   string    `gorm:"size:255;not null" json:"tutorEmail"`
	ReceiptURL   *string   `gorm:"size:255" json:"receiptUrl,omitempty"`

	Session StudySession `gorm:"foreignkey:SessionID" json:"session,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
