package services

import (
	"github.com/campusnorma/campus_norma/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// badgeRules maps a badge's Criteria key to the predicate deciding whether a
// user has met it. Badges whose criteria have no registered rule are skipped.
var badgeRules = map[string]func(tx *gorm.DB, userID uuid.UUID) (bool, error){
	"first_lesson":     completedLessons(1),
	"ten_lessons":      completedLessons(10),
	"seven_day_streak": streakAtLeast(7),
	"course_completed": coursesCompleted(1),
	"first_thread":     threadsAuthored(1),
}

func completedLessons(n int64) func(tx *gorm.DB, userID uuid.UUID) (bool, error) {
	return func(tx *gorm.DB, userID uuid.UUID) (bool, error) {
		var count int64
		err := tx.Model(&models.LessonProgress{}).
			Where("student_id = ? AND completed = ?", userID, true).
			Count(&count).Error
		return count >= n, err
	}
}

func streakAtLeast(days int) func(tx *gorm.DB, userID uuid.UUID) (bool, error) {
	return func(tx *gorm.DB, userID uuid.UUID) (bool, error) {
		var points models.UserPoints
		err := tx.Where("user_id = ?", userID).First(&points).Error
		if err == gorm.ErrRecordNotFound {
			return false, nil
		}
		return points.StreakDays >= days, err
	}
}

func coursesCompleted(n int64) func(tx *gorm.DB, userID uuid.UUID) (bool, error) {
	return func(tx *gorm.DB, userID uuid.UUID) (bool, error) {
		var count int64
		err := tx.Model(&models.Enrollment{}).
			Where("student_id = ? AND completed = ?", userID, true).
			Count(&count).Error
		return count >= n, err
	}
}

func threadsAuthored(n int64) func(tx *gorm.DB, userID uuid.UUID) (bool, error) {
	return func(tx *gorm.DB, userID uuid.UUID) (bool, error) {
		var count int64
		err := tx.Model(&models.ForumThread{}).
			Where("author_id = ?", userID).
			Count(&count).Error
		return count >= n, err
	}
}
