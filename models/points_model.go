package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserPoints holds the per-user gamification balances. Level is always kept
// equal to floor(experience/100)+1; the point-transaction ledger must sum to
// TotalEarned.
type UserPoints struct {
	ID               uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	UserID           uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Points           int        `gorm:"default:0" json:"points"`
	TotalEarned      int        `gorm:"default:0" json:"total_earned"`
	Experience       int        `gorm:"default:0" json:"experience"`
	Level            int        `gorm:"default:1" json:"level"`
	StreakDays       int        `gorm:"default:0" json:"streak_days"`
	LastActivityDate *time.Time `json:"last_activity_date,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *UserPoints) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// PointTransaction is an append-only ledger row; rows are never updated or
// deleted after creation.
type PointTransaction struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	UserID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Points        int        `gorm:"not null" json:"points"`
	ActionType    string     `gorm:"size:50;not null" json:"action_type"`
	Description   string     `gorm:"type:text" json:"description"`
	ReferenceType *string    `gorm:"size:50" json:"reference_type,omitempty"`
	ReferenceID   *uuid.UUID `gorm:"type:uuid" json:"reference_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (t *PointTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
