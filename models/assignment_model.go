package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Assignment struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	CourseID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"course_id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	MaxScore    float64    `gorm:"default:100" json:"max_score"`

	Course Course `gorm:"foreignkey:CourseID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Assignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

type Submission struct {
	ID           uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	AssignmentID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_assignment_student" json:"assignment_id"`
	StudentID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_assignment_student" json:"student_id"`
	Content      string     `gorm:"type:text" json:"content"`
	FileURL      *string    `gorm:"size:255" json:"file_url,omitempty"`
	Score        *float64   `json:"score,omitempty"`
	Feedback     *string    `gorm:"type:text" json:"feedback,omitempty"`
	GradedAt     *time.Time `json:"graded_at,omitempty"`

	Assignment Assignment `gorm:"foreignkey:AssignmentID" json:"-"`
	Student    User       `gorm:"foreignkey:StudentID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Submission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
