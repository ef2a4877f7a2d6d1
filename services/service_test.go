package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/campusnorma/campus_norma/database"
	"github.com/campusnorma/campus_norma/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.MigrateWith(db))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, name string) models.User {
	t.Helper()

	user := models.User{
		FullName: name,
		Email:    strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com",
		Password: "hashed",
		Role:     models.RoleStudent,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createTestCourse(t *testing.T, db *gorm.DB, instructor models.User, lessonsPerModule ...int) (models.Course, []models.Lesson) {
	t.Helper()

	course := models.Course{
		Title:        "Test Course",
		Description:  "A course for tests",
		InstructorID: instructor.ID,
		IsPublished:  true,
	}
	require.NoError(t, db.Create(&course).Error)

	var lessons []models.Lesson
	for m, count := range lessonsPerModule {
		module := models.CourseModule{
			CourseID: course.ID,
			Title:    fmt.Sprintf("Module %d", m+1),
			Position: m + 1,
		}
		require.NoError(t, db.Create(&module).Error)

		for l := 0; l < count; l++ {
			lesson := models.Lesson{
				ModuleID: module.ID,
				Title:    fmt.Sprintf("Lesson %d.%d", m+1, l+1),
				Position: l + 1,
			}
			require.NoError(t, db.Create(&lesson).Error)
			lessons = append(lessons, lesson)
		}
	}
	return course, lessons
}

func enroll(t *testing.T, db *gorm.DB, student models.User, course models.Course) models.Enrollment {
	t.Helper()

	enrollment := models.Enrollment{StudentID: student.ID, CourseID: course.ID}
	require.NoError(t, db.Create(&enrollment).Error)
	return enrollment
}
