package jobs

import (
	"log"
	"time"

	"github.com/campusnorma/campus_norma/database"
	"github.com/campusnorma/campus_norma/models"
	"github.com/campusnorma/campus_norma/services"
	"github.com/google/uuid"
)

// SendAssignmentDueReminders notifies enrolled students about assignments due
// within the next 24 hours that they have not submitted yet. Re-runs skip
// students who already hold a reminder for the same assignment.
func SendAssignmentDueReminders() {
	log.Println("Running job: SendAssignmentDueReminders...")

	now := time.Now()
	upperBound := now.Add(24 * time.Hour)

	var dueSoon []models.Assignment
	err := database.DB.
		Where("due_date IS NOT NULL AND due_date BETWEEN ? AND ?", now, upperBound).
		Find(&dueSoon).Error
	if err != nil {
		log.Printf("Error checking for due assignments: %v", err)
		return
	}
	if len(dueSoon) == 0 {
		return
	}

	sent := 0
	for _, assignment := range dueSoon {
		var studentIDs []uuid.UUID
		err := database.DB.Model(&models.Enrollment{}).
			Where("course_id = ?", assignment.CourseID).
			Pluck("student_id", &studentIDs).Error
		if err != nil {
			log.Printf("Error loading enrollments for assignment %s: %v", assignment.ID, err)
			continue
		}

		for _, studentID := range studentIDs {
			var submitted int64
			database.DB.Model(&models.Submission{}).
				Where("assignment_id = ? AND student_id = ?", assignment.ID, studentID).
				Count(&submitted)
			if submitted > 0 {
				continue
			}

			var reminded int64
			database.DB.Model(&models.Notification{}).
				Where("user_id = ? AND type = ? AND reference_type = ? AND reference_id = ?",
					studentID, models.NotificationTypeReminder, "assignment", assignment.ID).
				Count(&reminded)
			if reminded > 0 {
				continue
			}

			if err := services.Notifications.NotifyAssignmentDueSoon(studentID, &assignment, *assignment.DueDate); err != nil {
				log.Printf("Error sending due reminder to %s: %v", studentID, err)
				continue
			}
			sent++
		}
	}

	if sent > 0 {
		log.Printf("Sent %d assignment due reminder(s).", sent)
	}
}
