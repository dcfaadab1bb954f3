package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Payment struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	SessionID    uuid.UUID `gorm:"type:uuid;not null;index" json:"session_id"`
	StudentEmail string    `gorm:"size:255;not null;index" json:"student_email"`
	Amount       float64   `gorm:"type:numeric(10,2);not null" json:"amount"`
	Currency     string    `gorm:"size:3;not null" json:"currency"`
	Provider     string    `gorm:"size:20;not null" json:"provider"`

	ProviderOrderID *string `gorm:"size:255;index" json:"provider_order_id,omitempty"`
	Status          string  `gorm:"size:20;not null;default:'pending'" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
