package services

import (
	"fmt"
	"log"
	"time"

	"github.com/campusnorma/campus_norma/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PushFunc delivers a payload to a connected user over the realtime channel.
// Delivery is best-effort; the persisted row is the source of truth.
type PushFunc func(userID uuid.UUID, payload interface{})

type NotificationService struct {
	db   *gorm.DB
	push PushFunc
}

func NewNotificationService(db *gorm.DB, push PushFunc) *NotificationService {
	return &NotificationService{db: db, push: push}
}

// Create persists one notification and attempts a realtime push. The type
// defaults to "info".
func (s *NotificationService) Create(n *models.Notification) error {
	if n.Type == "" {
		n.Type = models.NotificationTypeInfo
	}
	if err := s.db.Create(n).Error; err != nil {
		return err
	}
	s.tryPush(n)
	return nil
}

// CreateBulk persists each notification independently, in sequence. A failure
// partway through leaves the earlier rows committed.
func (s *NotificationService) CreateBulk(list []models.Notification) error {
	for i := range list {
		if err := s.Create(&list[i]); err != nil {
			log.Printf("🔥 Failed to create notification for user %s: %v", list[i].UserID, err)
			return err
		}
	}
	return nil
}

func (s *NotificationService) tryPush(n *models.Notification) {
	if s.push == nil {
		return
	}
	s.push(n.UserID, n)
}

func (s *NotificationService) UnreadCount(userID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (s *NotificationService) List(userID uuid.UUID, page, pageSize int, unreadOnly bool) ([]models.Notification, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	query := s.db.Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var notifications []models.Notification
	err := query.Order("created_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&notifications).Error
	return notifications, err
}

// MarkRead flips one notification to read. Only the owner's rows are matched.
func (s *NotificationService) MarkRead(userID, notificationID uuid.UUID) error {
	now := time.Now()
	result := s.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Updates(map[string]interface{}{"is_read": true, "read_at": now})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *NotificationService) MarkAllRead(userID uuid.UUID) error {
	now := time.Now()
	return s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": now}).Error
}

func (s *NotificationService) Delete(userID, notificationID uuid.UUID) error {
	result := s.db.Where("id = ? AND user_id = ?", notificationID, userID).
		Delete(&models.Notification{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Domain-event helpers. Each only templates a title/message and delegates to
// Create/CreateBulk.

func (s *NotificationService) NotifyNewAssignment(studentIDs []uuid.UUID, assignment *models.Assignment, courseTitle string) error {
	refType := "assignment"
	list := make([]models.Notification, 0, len(studentIDs))
	for _, studentID := range studentIDs {
		refID := assignment.ID
		list = append(list, models.Notification{
			UserID:        studentID,
			Title:         "New assignment",
			Message:       fmt.Sprintf("A new assignment %q was posted in %s", assignment.Title, courseTitle),
			Type:          models.NotificationTypeAssignment,
			ReferenceType: &refType,
			ReferenceID:   &refID,
		})
	}
	return s.CreateBulk(list)
}

func (s *NotificationService) NotifyAssignmentGraded(studentID uuid.UUID, assignment *models.Assignment, score, maxScore float64) error {
	refType := "assignment"
	refID := assignment.ID
	return s.Create(&models.Notification{
		UserID:        studentID,
		Title:         "Assignment graded",
		Message:       fmt.Sprintf("Your submission for %q was graded: %.1f/%.1f", assignment.Title, score, maxScore),
		Type:          models.NotificationTypeGrade,
		ReferenceType: &refType,
		ReferenceID:   &refID,
	})
}

func (s *NotificationService) NotifyPaymentApproved(studentID uuid.UUID, payment *models.Payment, courseTitle string) error {
	refType := "payment"
	refID := payment.ID
	return s.Create(&models.Notification{
		UserID:        studentID,
		Title:         "Payment approved",
		Message:       fmt.Sprintf("Your payment of %.2f %s for %q was approved. You are now enrolled.", payment.Amount, payment.Currency, courseTitle),
		Type:          models.NotificationTypePayment,
		ReferenceType: &refType,
		ReferenceID:   &refID,
	})
}

func (s *NotificationService) NotifyNewMessage(recipientID uuid.UUID, senderName string, conversationID uuid.UUID) error {
	refType := "conversation"
	refID := conversationID
	return s.Create(&models.Notification{
		UserID:        recipientID,
		Title:         "New message",
		Message:       fmt.Sprintf("%s sent you a message", senderName),
		Type:          models.NotificationTypeMessage,
		ReferenceType: &refType,
		ReferenceID:   &refID,
	})
}

func (s *NotificationService) NotifyAssignmentDueSoon(studentID uuid.UUID, assignment *models.Assignment, due time.Time) error {
	refType := "assignment"
	refID := assignment.ID
	return s.Create(&models.Notification{
		UserID:        studentID,
		Title:         "Assignment due soon",
		Message:       fmt.Sprintf("%q is due %s", assignment.Title, due.Format("Jan 2 15:04")),
		Type:          models.NotificationTypeReminder,
		ReferenceType: &refType,
		ReferenceID:   &refID,
	})
}
