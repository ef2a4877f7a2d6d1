package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LessonProgress is the source of truth for completion; course and module
// percentages are derived from it at read time.
type LessonProgress struct {
	ID             uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	StudentID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_student_course_lesson" json:"student_id"`
	CourseID       uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_student_course_lesson" json:"course_id"`
	LessonID       uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_student_course_lesson" json:"lesson_id"`
	Completed      bool       `gorm:"default:false" json:"completed"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	LastAccessedAt time.Time  `json:"last_accessed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *LessonProgress) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// CourseStats is a denormalized cache per (student, course). It is recomputed
// whenever a lesson is completed or a submission is graded, never hand-edited.
type CourseStats struct {
	ID               uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	StudentID        uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_stats_student_course" json:"student_id"`
	CourseID         uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_stats_student_course" json:"course_id"`
	TotalLessons     int        `gorm:"default:0" json:"total_lessons"`
	CompletedLessons int        `gorm:"default:0" json:"completed_lessons"`
	AverageScore     *float64   `json:"average_score,omitempty"`
	LastActivityAt   *time.Time `json:"last_activity_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *CourseStats) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
