package handlers

import (
	"errors"

	"github.com/campusnorma/campus_norma/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func RecordLessonAccess(c *fiber.Ctx) error {
	studentID := currentUserID(c)
	courseID, err1 := uuid.Parse(c.Params("courseId"))
	lessonID, err2 := uuid.Parse(c.Params("lessonId"))
	if err1 != nil || err2 != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid course or lesson ID"})
	}

	if err := services.Progress.RecordAccess(studentID, courseID, lessonID); err != nil {
		if errors.Is(err, services.ErrLessonNotInCourse) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Lesson not found in course"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to record access"})
	}
	return c.JSON(fiber.Map{"message": "Access recorded"})
}

func CompleteLesson(c *fiber.Ctx) error {
	studentID := currentUserID(c)
	courseID, err1 := uuid.Parse(c.Params("courseId"))
	lessonID, err2 := uuid.Parse(c.Params("lessonId"))
	if err1 != nil || err2 != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid course or lesson ID"})
	}

	if err := services.Progress.RecordCompletion(studentID, courseID, lessonID); err != nil {
		if errors.Is(err, services.ErrLessonNotInCourse) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Lesson not found in course"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to record completion"})
	}

	progress, err := services.Progress.CourseProgress(studentID, courseID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to compute progress"})
	}
	return c.JSON(progress)
}

func GetCourseProgress(c *fiber.Ctx) error {
	studentID := currentUserID(c)
	courseID, err := uuid.Parse(c.Params("courseId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid course ID"})
	}

	progress, err := services.Progress.CourseProgress(studentID, courseID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to compute progress"})
	}
	return c.JSON(progress)
}

func GetModuleProgress(c *fiber.Ctx) error {
	studentID := currentUserID(c)
	moduleID, err := uuid.Parse(c.Params("moduleId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid module ID"})
	}

	progress, err := services.Progress.ModuleProgress(studentID, moduleID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to compute progress"})
	}
	return c.JSON(progress)
}

func GetLessonsProgress(c *fiber.Ctx) error {
	studentID := currentUserID(c)
	courseID, err := uuid.Parse(c.Params("courseId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid course ID"})
	}

	statuses, err := services.Progress.LessonsProgress(studentID, courseID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch lesson progress"})
	}
	return c.JSON(statuses)
}

func GetAllCoursesProgress(c *fiber.Ctx) error {
	studentID := currentUserID(c)

	overviews, err := services.Progress.AllCoursesProgress(studentID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch progress"})
	}
	return c.JSON(overviews)
}
