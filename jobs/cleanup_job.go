package jobs

import (
	"log"
	"time"

	"github.com/campusnorma/campus_norma/database"
	"github.com/campusnorma/campus_norma/models"
)

// PurgeOldNotifications deletes read notifications older than 30 days.
func PurgeOldNotifications() {
	log.Println("Running job: PurgeOldNotifications...")

	cutoff := time.Now().AddDate(0, 0, -30)

	result := database.DB.
		Where("is_read = ? AND created_at < ?", true, cutoff).
		Delete(&models.Notification{})
	if result.Error != nil {
		log.Printf("Error purging old notifications: %v", result.Error)
		return
	}

	if result.RowsAffected > 0 {
		log.Printf("Purged %d old notification(s).", result.RowsAffected)
	}
}
