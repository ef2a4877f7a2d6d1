package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Certificate struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	StudentID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cert_student_course" json:"student_id"`
	CourseID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cert_student_course" json:"course_id"`
	CourseTitle    string    `gorm:"size:255;not null" json:"course_title"`
	SerialNumber   string    `gorm:"size:20;not null;unique" json:"serial_number"`
	CompletionDate time.Time `json:"completion_date"`
	CertificateURL string    `gorm:"size:255" json:"certificate_url"`

	CreatedAt time.Time `json:"created_at"`
}

func (c *Certificate) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
