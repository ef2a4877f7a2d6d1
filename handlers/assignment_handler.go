package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	config "github.com/campusnorma/campus_norma/configs"
	"github.com/campusnorma/campus_norma/database"
	"github.com/campusnorma/campus_norma/models"
	"github.com/campusnorma/campus_norma/services"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AssignmentRequest struct {
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	MaxScore    float64    `json:"max_score" validate:"gt=0"`
}

// CreateAssignment posts an assignment to a course and bulk-notifies every
// enrolled student.
func CreateAssignment(c *fiber.Ctx) error {
	course, errResp := loadOwnedCourse(c)
	if course == nil {
		return errResp
	}

	var req AssignmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	assignment := models.Assignment{
		CourseID:    course.ID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		MaxScore:    req.MaxScore,
	}
	if err := database.DB.Create(&assignment).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create assignment"})
	}

	var studentIDs []uuid.UUID
	if err := database.DB.Model(&models.Enrollment{}).
		Where("course_id = ?", course.ID).
		Pluck("student_id", &studentIDs).Error; err == nil && len(studentIDs) > 0 {
		if err := services.Notifications.NotifyNewAssignment(studentIDs, &assignment, course.Title); err != nil {
			log.Printf("🔥 Failed to notify students of new assignment %s: %v", assignment.ID, err)
		}
	}

	return c.Status(fiber.StatusCreated).JSON(assignment)
}

func ListAssignments(c *fiber.Ctx) error {
	courseID := c.Params("courseId")

	var assignments []models.Assignment
	err := database.DB.Where("course_id = ?", courseID).
		Order("due_date ASC NULLS LAST, created_at ASC").
		Find(&assignments).Error
	if err != nil {
		// NULLS LAST is postgres-only; fall back for other dialects
		err = database.DB.Where("course_id = ?", courseID).
			Order("created_at ASC").
			Find(&assignments).Error
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch assignments"})
	}
	return c.JSON(assignments)
}

type SubmissionRequest struct {
	Content string  `json:"content" validate:"required"`
	FileURL *string `json:"file_url"`
}

// SubmitAssignment creates or, before grading, replaces the student's
// submission. Graded submissions are immutable.
func SubmitAssignment(c *fiber.Ctx) error {
	studentID := currentUserID(c)

	var assignment models.Assignment
	if err := database.DB.First(&assignment, "id = ?", c.Params("assignmentId")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Assignment not found"})
	}

	var enrollment models.Enrollment
	if err := database.DB.Where("student_id = ? AND course_id = ?", studentID, assignment.CourseID).First(&enrollment).Error; err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You are not enrolled in this course"})
	}

	var req SubmissionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var submission models.Submission
	err := database.DB.Where("assignment_id = ? AND student_id = ?", assignment.ID, studentID).First(&submission).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		submission = models.Submission{
			AssignmentID: assignment.ID,
			StudentID:    studentID,
			Content:      req.Content,
			FileURL:      req.FileURL,
		}
		if err := database.DB.Create(&submission).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to submit"})
		}
		return c.Status(fiber.StatusCreated).JSON(submission)
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to submit"})
	}

	if submission.GradedAt != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":      "Submission already graded",
			"submission": submission,
		})
	}

	submission.Content = req.Content
	submission.FileURL = req.FileURL
	if err := database.DB.Save(&submission).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to submit"})
	}
	return c.JSON(submission)
}

// UploadSubmissionFile stores an attachment on Cloudinary and returns its URL
// for use in a subsequent submit call.
func UploadSubmissionFile(c *fiber.Ctx) error {
	studentID := currentUserID(c)
	assignmentID := c.Params("assignmentId")

	var assignment models.Assignment
	if err := database.DB.First(&assignment, "id = ?", assignmentID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Assignment not found"})
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "File is required"})
	}

	cld, err := cloudinary.NewFromURL(config.Config("CLOUDINARY_URL"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Upload service unavailable"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uploadResult, err := cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:   "campus_norma_submissions",
		PublicID: fmt.Sprintf("assignment_%s_%s_%s", assignmentID, studentID, file.Filename),
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to upload file"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"file_url": uploadResult.SecureURL})
}

func ListSubmissions(c *fiber.Ctx) error {
	var assignment models.Assignment
	if err := database.DB.First(&assignment, "id = ?", c.Params("assignmentId")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Assignment not found"})
	}

	var course models.Course
	if err := database.DB.First(&course, "id = ?", assignment.CourseID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
	}
	if currentRole(c) != models.RoleAdmin && course.InstructorID != currentUserID(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You do not own this course"})
	}

	var submissions []models.Submission
	if err := database.DB.Where("assignment_id = ?", assignment.ID).
		Order("created_at ASC").
		Find(&submissions).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch submissions"})
	}
	return c.JSON(submissions)
}

func GetMySubmission(c *fiber.Ctx) error {
	studentID := currentUserID(c)

	var submission models.Submission
	err := database.DB.Where("assignment_id = ? AND student_id = ?", c.Params("assignmentId"), studentID).
		First(&submission).Error
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Submission not found"})
	}
	return c.JSON(submission)
}

type GradeRequest struct {
	Score    float64 `json:"score" validate:"gte=0"`
	Feedback *string `json:"feedback"`
}

// GradeSubmission scores a submission, refreshes the student's denormalized
// course stats, notifies them, and grants points.
func GradeSubmission(c *fiber.Ctx) error {
	var submission models.Submission
	if err := database.DB.First(&submission, "id = ?", c.Params("submissionId")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Submission not found"})
	}

	var assignment models.Assignment
	if err := database.DB.First(&assignment, "id = ?", submission.AssignmentID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Assignment not found"})
	}

	var course models.Course
	if err := database.DB.First(&course, "id = ?", assignment.CourseID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
	}
	if currentRole(c) != models.RoleAdmin && course.InstructorID != currentUserID(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You do not own this course"})
	}

	var req GradeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if req.Score > assignment.MaxScore {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Score exceeds the assignment maximum"})
	}

	firstGrade := submission.GradedAt == nil
	now := time.Now()

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		submission.Score = &req.Score
		submission.Feedback = req.Feedback
		submission.GradedAt = &now
		if err := tx.Save(&submission).Error; err != nil {
			return err
		}
		return services.Progress.RecomputeStatsTx(tx, submission.StudentID, assignment.CourseID)
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to grade submission"})
	}

	if err := services.Notifications.NotifyAssignmentGraded(submission.StudentID, &assignment, req.Score, assignment.MaxScore); err != nil {
		log.Printf("🔥 Failed to notify student %s of grade: %v", submission.StudentID, err)
	}

	if firstGrade {
		refType := "submission"
		refID := submission.ID
		if err := services.Gamification.AddPoints(submission.StudentID, services.PointsAssignmentGraded, services.ActionAssignmentGraded, "Assignment graded", &refType, &refID); err != nil {
			log.Printf("🔥 Failed to grant points to student %s: %v", submission.StudentID, err)
		}
	}

	return c.JSON(submission)
}
