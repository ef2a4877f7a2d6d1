package handlers

import (
	"github.com/campusnorma/campus_norma/database"
	"github.com/campusnorma/campus_norma/models"
	"github.com/gofiber/fiber/v2"
)

// EnrollFree enrolls the caller in a free published course. Enrolling twice
// returns a conflict with the existing enrollment attached.
func EnrollFree(c *fiber.Ctx) error {
	studentID := currentUserID(c)
	courseID := c.Params("courseId")

	var course models.Course
	if err := database.DB.First(&course, "id = ? AND is_published = ?", courseID, true).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
	}

	if !course.IsFree() {
		return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{"error": "This course is not free; create a payment first"})
	}

	var existing models.Enrollment
	if err := database.DB.Where("student_id = ? AND course_id = ?", studentID, course.ID).First(&existing).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":      "Already enrolled in this course",
			"enrollment": existing,
		})
	}

	enrollment := models.Enrollment{
		StudentID: studentID,
		CourseID:  course.ID,
	}
	if err := database.DB.Create(&enrollment).Error; err != nil {
		// a concurrent enroll may land first; the unique pair makes it benign
		if err := database.DB.Where("student_id = ? AND course_id = ?", studentID, course.ID).First(&existing).Error; err == nil {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error":      "Already enrolled in this course",
				"enrollment": existing,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to enroll"})
	}

	return c.Status(fiber.StatusCreated).JSON(enrollment)
}

func MyEnrollments(c *fiber.Ctx) error {
	studentID := currentUserID(c)

	var enrollments []models.Enrollment
	err := database.DB.Preload("Course").
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&enrollments).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch enrollments"})
	}
	return c.JSON(enrollments)
}
