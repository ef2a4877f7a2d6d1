package handlers

import (
	"github.com/campusnorma/campus_norma/database"
	"github.com/campusnorma/campus_norma/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ModuleRequest struct {
	Title    string `json:"title" validate:"required"`
	Position int    `json:"position"`
}

func CreateModule(c *fiber.Ctx) error {
	course, errResp := loadOwnedCourse(c)
	if course == nil {
		return errResp
	}

	var req ModuleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	module := models.CourseModule{
		CourseID: course.ID,
		Title:    req.Title,
		Position: req.Position,
	}
	if err := database.DB.Create(&module).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create module"})
	}
	return c.Status(fiber.StatusCreated).JSON(module)
}

func UpdateModule(c *fiber.Ctx) error {
	course, errResp := loadOwnedCourse(c)
	if course == nil {
		return errResp
	}

	var module models.CourseModule
	if err := database.DB.First(&module, "id = ? AND course_id = ?", c.Params("moduleId"), course.ID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Module not found"})
	}

	var req ModuleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	module.Title = req.Title
	module.Position = req.Position
	if err := database.DB.Save(&module).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update module"})
	}
	return c.JSON(module)
}

func DeleteModule(c *fiber.Ctx) error {
	course, errResp := loadOwnedCourse(c)
	if course == nil {
		return errResp
	}

	result := database.DB.Where("id = ? AND course_id = ?", c.Params("moduleId"), course.ID).
		Delete(&models.CourseModule{})
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete module"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Module not found"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type LessonRequest struct {
	Title    string  `json:"title" validate:"required"`
	Content  string  `json:"content"`
	VideoURL *string `json:"video_url"`
	Position int     `json:"position"`
}

func CreateLesson(c *fiber.Ctx) error {
	course, errResp := loadOwnedCourse(c)
	if course == nil {
		return errResp
	}

	moduleID, err := uuid.Parse(c.Params("moduleId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid module ID"})
	}
	var module models.CourseModule
	if err := database.DB.First(&module, "id = ? AND course_id = ?", moduleID, course.ID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Module not found"})
	}

	var req LessonRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	lesson := models.Lesson{
		ModuleID: module.ID,
		Title:    req.Title,
		Content:  req.Content,
		VideoURL: req.VideoURL,
		Position: req.Position,
	}
	if err := database.DB.Create(&lesson).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create lesson"})
	}
	return c.Status(fiber.StatusCreated).JSON(lesson)
}

func UpdateLesson(c *fiber.Ctx) error {
	course, errResp := loadOwnedCourse(c)
	if course == nil {
		return errResp
	}

	var lesson models.Lesson
	err := database.DB.
		Joins("JOIN course_modules ON course_modules.id = lessons.module_id").
		Where("lessons.id = ? AND course_modules.course_id = ?", c.Params("lessonId"), course.ID).
		First(&lesson).Error
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Lesson not found"})
	}

	var req LessonRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	lesson.Title = req.Title
	lesson.Content = req.Content
	lesson.VideoURL = req.VideoURL
	lesson.Position = req.Position
	if err := database.DB.Save(&lesson).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update lesson"})
	}
	return c.JSON(lesson)
}

func DeleteLesson(c *fiber.Ctx) error {
	course, errResp := loadOwnedCourse(c)
	if course == nil {
		return errResp
	}

	var lesson models.Lesson
	err := database.DB.
		Joins("JOIN course_modules ON course_modules.id = lessons.module_id").
		Where("lessons.id = ? AND course_modules.course_id = ?", c.Params("lessonId"), course.ID).
		First(&lesson).Error
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Lesson not found"})
	}

	if err := database.DB.Delete(&lesson).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete lesson"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
