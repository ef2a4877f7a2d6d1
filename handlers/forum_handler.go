package handlers

import (
	"errors"
	"log"

	"github.com/campusnorma/campus_norma/database"
	"github.com/campusnorma/campus_norma/models"
	"github.com/campusnorma/campus_norma/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ThreadRequest struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
}

func CreateThread(c *fiber.Ctx) error {
	authorID := currentUserID(c)
	courseID, err := uuid.Parse(c.Params("courseId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid course ID"})
	}

	var course models.Course
	if err := database.DB.First(&course, "id = ?", courseID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
	}

	var req ThreadRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	thread := models.ForumThread{
		CourseID: courseID,
		AuthorID: authorID,
		Title:    req.Title,
		Content:  req.Content,
	}
	if err := database.DB.Create(&thread).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create thread"})
	}

	if err := services.Gamification.CheckBadges(authorID); err != nil {
		// badge evaluation must never fail thread creation
		log.Printf("🔥 Badge check failed for %s: %v", authorID, err)
	}

	return c.Status(fiber.StatusCreated).JSON(thread)
}

func ListThreads(c *fiber.Ctx) error {
	courseID := c.Params("courseId")

	var threads []models.ForumThread
	err := database.DB.Preload("Author").
		Where("course_id = ?", courseID).
		Order("is_pinned DESC, created_at DESC").
		Find(&threads).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch threads"})
	}
	return c.JSON(threads)
}

// GetThread returns one thread with its replies and vote scores. Every read
// bumps the view counter.
func GetThread(c *fiber.Ctx) error {
	threadID := c.Params("threadId")

	var thread models.ForumThread
	err := database.DB.Preload("Author").
		Preload("Replies", func(db *gorm.DB) *gorm.DB { return db.Order("forum_replies.created_at ASC") }).
		Preload("Replies.Author").
		First(&thread, "id = ?", threadID).Error
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Thread not found"})
	}

	database.DB.Model(&thread).UpdateColumn("views", gorm.Expr("views + 1"))
	thread.Views++

	return c.JSON(fiber.Map{
		"thread": thread,
		"score":  voteScore(models.VotableThread, thread.ID),
	})
}

func UpdateThread(c *fiber.Ctx) error {
	thread, errResp := loadThreadForWrite(c, false)
	if thread == nil {
		return errResp
	}

	var req ThreadRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	thread.Title = req.Title
	thread.Content = req.Content
	if err := database.DB.Save(thread).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update thread"})
	}
	return c.JSON(thread)
}

func DeleteThread(c *fiber.Ctx) error {
	thread, errResp := loadThreadForWrite(c, true)
	if thread == nil {
		return errResp
	}

	if err := database.DB.Delete(thread).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete thread"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// PinThread toggles the pinned flag; staff only (enforced by the route).
func PinThread(c *fiber.Ctx) error {
	return toggleThreadFlag(c, "is_pinned")
}

// LockThread toggles the locked flag; staff only (enforced by the route).
func LockThread(c *fiber.Ctx) error {
	return toggleThreadFlag(c, "is_locked")
}

func toggleThreadFlag(c *fiber.Ctx, column string) error {
	var thread models.ForumThread
	if err := database.DB.First(&thread, "id = ?", c.Params("threadId")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Thread not found"})
	}

	type Request struct {
		Value bool `json:"value"`
	}
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	if err := database.DB.Model(&thread).UpdateColumn(column, req.Value).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update thread"})
	}
	return c.JSON(fiber.Map{"message": "Thread updated"})
}

type ReplyRequest struct {
	Content       string  `json:"content" validate:"required"`
	ParentReplyID *string `json:"parent_reply_id"`
}

func CreateReply(c *fiber.Ctx) error {
	authorID := currentUserID(c)

	var thread models.ForumThread
	if err := database.DB.First(&thread, "id = ?", c.Params("threadId")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Thread not found"})
	}
	if thread.IsLocked {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Thread is locked"})
	}

	var req ReplyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	reply := models.ForumReply{
		ThreadID: thread.ID,
		AuthorID: authorID,
		Content:  req.Content,
	}
	if req.ParentReplyID != nil {
		parentID, err := uuid.Parse(*req.ParentReplyID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid parent reply ID"})
		}
		var parent models.ForumReply
		if err := database.DB.First(&parent, "id = ? AND thread_id = ?", parentID, thread.ID).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Parent reply not found"})
		}
		reply.ParentReplyID = &parentID
	}

	if err := database.DB.Create(&reply).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create reply"})
	}
	return c.Status(fiber.StatusCreated).JSON(reply)
}

// MarkBestAnswer flags one reply as the thread's best answer, clearing any
// previous one. Only the thread author or staff may do this.
func MarkBestAnswer(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var reply models.ForumReply
	if err := database.DB.First(&reply, "id = ?", c.Params("replyId")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Reply not found"})
	}

	var thread models.ForumThread
	if err := database.DB.First(&thread, "id = ?", reply.ThreadID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Thread not found"})
	}

	role := currentRole(c)
	if thread.AuthorID != userID && role != models.RoleAdmin && role != models.RoleProfessor {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Only the thread author or staff can mark the best answer"})
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ForumReply{}).
			Where("thread_id = ? AND is_best_answer = ?", thread.ID, true).
			UpdateColumn("is_best_answer", false).Error; err != nil {
			return err
		}
		return tx.Model(&reply).UpdateColumn("is_best_answer", true).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to mark best answer"})
	}
	return c.JSON(fiber.Map{"message": "Best answer marked"})
}

type VoteRequest struct {
	VotableType string `json:"votable_type" validate:"required,oneof=thread reply"`
	VotableID   string `json:"votable_id" validate:"required,uuid"`
	VoteType    int    `json:"vote_type" validate:"required,oneof=1 -1"`
}

// CastVote upserts the caller's vote: a repeat vote with a different direction
// updates the existing row, never creating a second one.
func CastVote(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req VoteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	votableID, _ := uuid.Parse(req.VotableID)

	if errResp := ensureVotableExists(c, req.VotableType, votableID); errResp != nil {
		return errResp
	}

	var vote models.ForumVote
	err := database.DB.Where("user_id = ? AND votable_type = ? AND votable_id = ?", userID, req.VotableType, votableID).
		First(&vote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		vote = models.ForumVote{
			UserID:      userID,
			VotableType: req.VotableType,
			VotableID:   votableID,
			VoteType:    req.VoteType,
		}
		if err := database.DB.Create(&vote).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to cast vote"})
		}
	} else if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to cast vote"})
	} else {
		vote.VoteType = req.VoteType
		if err := database.DB.Save(&vote).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update vote"})
		}
	}

	return c.JSON(fiber.Map{
		"vote":  vote,
		"score": voteScore(req.VotableType, votableID),
	})
}

// RemoveVote deletes the caller's vote if one exists; removing a vote that was
// never cast succeeds silently.
func RemoveVote(c *fiber.Ctx) error {
	userID := currentUserID(c)
	votableType := c.Params("votableType")
	votableID, err := uuid.Parse(c.Params("votableId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid votable ID"})
	}
	if votableType != models.VotableThread && votableType != models.VotableReply {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid votable type"})
	}

	result := database.DB.Where("user_id = ? AND votable_type = ? AND votable_id = ?", userID, votableType, votableID).
		Delete(&models.ForumVote{})
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to remove vote"})
	}

	return c.JSON(fiber.Map{
		"message": "Vote removed",
		"score":   voteScore(votableType, votableID),
	})
}

func ensureVotableExists(c *fiber.Ctx, votableType string, votableID uuid.UUID) error {
	var err error
	switch votableType {
	case models.VotableThread:
		err = database.DB.First(&models.ForumThread{}, "id = ?", votableID).Error
	case models.VotableReply:
		err = database.DB.First(&models.ForumReply{}, "id = ?", votableID).Error
	}
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Votable not found"})
	}
	return nil
}

func voteScore(votableType string, votableID uuid.UUID) int {
	var score *int
	err := database.DB.Model(&models.ForumVote{}).
		Select("sum(vote_type)").
		Where("votable_type = ? AND votable_id = ?", votableType, votableID).
		Row().Scan(&score)
	if err != nil {
		log.Printf("🔥 Failed to compute vote score for %s %s: %v", votableType, votableID, err)
		return 0
	}
	if score == nil {
		return 0
	}
	return *score
}

func loadThreadForWrite(c *fiber.Ctx, allowStaff bool) (*models.ForumThread, error) {
	var thread models.ForumThread
	if err := database.DB.First(&thread, "id = ?", c.Params("threadId")).Error; err != nil {
		return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Thread not found"})
	}

	userID := currentUserID(c)
	role := currentRole(c)
	staff := role == models.RoleAdmin || role == models.RoleProfessor
	if thread.AuthorID != userID && !(allowStaff && staff) {
		return nil, c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You do not own this thread"})
	}
	return &thread, nil
}
