package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PaymentStatusPending   = "pending"
	PaymentStatusSucceeded = "succeeded"
	PaymentStatusFailed    = "failed"
)

type Payment struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	StudentID       uuid.UUID `gorm:"type:uuid;not null;index" json:"student_id"`
	CourseID        uuid.UUID `gorm:"type:uuid;not null" json:"course_id"`
	Amount          float64   `gorm:"type:numeric(10,2);not null" json:"amount"`
	Currency        string    `gorm:"size:3;default:'USD'" json:"currency"`
	Provider        string    `gorm:"size:50;not null" json:"provider"`
	ProviderOrderID *string   `gorm:"size:255;unique" json:"provider_order_id,omitempty"`
	ProviderTxnID   *string   `gorm:"size:255;unique" json:"provider_txn_id,omitempty"`
	Status          string    `gorm:"size:20;not null;default:'pending'" json:"status"`

	Student User   `gorm:"foreignkey:StudentID" json:"-"`
	Course  Course `gorm:"foreignkey:CourseID" json:"course,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
