package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Badge struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name         string    `gorm:"size:255;not null;unique" json:"name"`
	Description  string    `gorm:"type:text;not null" json:"description"`
	IconURL      string    `gorm:"size:255" json:"icon_url"`
	Criteria     string    `gorm:"size:50;not null" json:"criteria"`
	PointsReward int       `gorm:"default:0" json:"points_reward"`
	CreatedAt    time.Time `json:"created_at"`
}

func (b *Badge) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// UserBadge is the award record joining users and badges. The composite
// primary key makes a second award of the same badge a constraint violation,
// which callers treat as a no-op.
type UserBadge struct {
	UserID   uuid.UUID `gorm:"type:uuid;primary_key" json:"user_id"`
	BadgeID  uuid.UUID `gorm:"type:uuid;primary_key" json:"badge_id"`
	EarnedAt time.Time `gorm:"autoCreateTime" json:"earned_at"`
}
