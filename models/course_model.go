package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Course struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	Description  string    `gorm:"type:text" json:"description"`
	InstructorID uuid.UUID `gorm:"type:uuid;not null;index" json:"instructor_id"`
	Price        float64   `gorm:"type:numeric(10,2);default:0.00" json:"price"`
	Category     string    `gorm:"size:100;index" json:"category"`
	Level        string    `gorm:"size:50" json:"level"`
	IsPublished  bool      `gorm:"default:false" json:"is_published"`

	Instructor User           `gorm:"foreignkey:InstructorID" json:"instructor,omitempty"`
	Modules    []CourseModule `json:"modules,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (c *Course) IsFree() bool {
	return c.Price == 0
}
