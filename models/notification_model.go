package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	NotificationTypeInfo       = "info"
	NotificationTypeAssignment = "assignment"
	NotificationTypeGrade      = "grade"
	NotificationTypePayment    = "payment"
	NotificationTypeMessage    = "message"
	NotificationTypeReminder   = "reminder"
)

type Notification struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	UserID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Title         string     `gorm:"size:255;not null" json:"title"`
	Message       string     `gorm:"type:text;not null" json:"message"`
	Type          string     `gorm:"size:30;not null;default:'info'" json:"type"`
	ReferenceType *string    `gorm:"size:50" json:"reference_type,omitempty"`
	ReferenceID   *uuid.UUID `gorm:"type:uuid" json:"reference_id,omitempty"`
	ActionURL     *string    `gorm:"size:255" json:"action_url,omitempty"`
	IsRead        bool       `gorm:"default:false;index" json:"is_read"`
	ReadAt        *time.Time `json:"read_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
