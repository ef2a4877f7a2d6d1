package services

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Package-level service instances wired in main after the database connects.
var (
	Gamification  *GamificationService
	Progress      *ProgressService
	Notifications *NotificationService
)

func Init(db *gorm.DB, push PushFunc) {
	Gamification = NewGamificationService(db)
	Progress = NewProgressService(db, Gamification)
	Notifications = NewNotificationService(db, push)

	Progress.SetCourseCompletedHook(func(studentID, courseID uuid.UUID) {
		go GenerateCourseCertificate(studentID, courseID)
	})
}
