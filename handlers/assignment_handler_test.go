package handlers_test

import (
	"testing"

	"github.com/campusnorma/campus_norma/models"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedAssignmentCourse(t *testing.T, db *gorm.DB) (models.User, models.User, models.Course) {
	t.Helper()

	professor := createUser(t, db, "Assign Prof "+t.Name(), models.RoleProfessor)
	student := createUser(t, db, "Assign Student "+t.Name(), models.RoleStudent)
	course := models.Course{Title: "Assignment Course", InstructorID: professor.ID, IsPublished: true}
	require.NoError(t, db.Create(&course).Error)
	require.NoError(t, db.Create(&models.Enrollment{StudentID: student.ID, CourseID: course.ID}).Error)
	return professor, student, course
}

func TestCreateAssignmentNotifiesEnrolled(t *testing.T) {
	app, db := setupApp(t)
	professor, student, course := seedAssignmentCourse(t, db)

	resp := doJSON(t, app, "POST", "/api/v1/courses/"+course.ID.String()+"/assignments", tokenFor(t, professor), map[string]interface{}{
		"title":     "Week 1 Essay",
		"max_score": 100,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var n models.Notification
	require.NoError(t, db.Where("user_id = ? AND type = ?", student.ID, models.NotificationTypeAssignment).First(&n).Error)
	assert.Contains(t, n.Message, "Week 1 Essay")
}

func TestSubmitRequiresEnrollment(t *testing.T) {
	app, db := setupApp(t)
	_, _, course := seedAssignmentCourse(t, db)
	outsider := createUser(t, db, "Outsider", models.RoleStudent)

	assignment := models.Assignment{CourseID: course.ID, Title: "Essay", MaxScore: 100}
	require.NoError(t, db.Create(&assignment).Error)

	resp := doJSON(t, app, "POST", "/api/v1/assignments/"+assignment.ID.String()+"/submissions", tokenFor(t, outsider), map[string]string{
		"content": "my work",
	})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestResubmitBeforeGradingReplacesContent(t *testing.T) {
	app, db := setupApp(t)
	_, student, course := seedAssignmentCourse(t, db)

	assignment := models.Assignment{CourseID: course.ID, Title: "Essay", MaxScore: 100}
	require.NoError(t, db.Create(&assignment).Error)

	token := tokenFor(t, student)
	path := "/api/v1/assignments/" + assignment.ID.String() + "/submissions"

	resp := doJSON(t, app, "POST", path, token, map[string]string{"content": "draft"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = doJSON(t, app, "POST", path, token, map[string]string{"content": "final"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var submissions []models.Submission
	require.NoError(t, db.Where("assignment_id = ? AND student_id = ?", assignment.ID, student.ID).Find(&submissions).Error)
	require.Len(t, submissions, 1)
	assert.Equal(t, "final", submissions[0].Content)
}

func TestGradeSubmissionFlow(t *testing.T) {
	app, db := setupApp(t)
	professor, student, course := seedAssignmentCourse(t, db)

	assignment := models.Assignment{CourseID: course.ID, Title: "Essay", MaxScore: 100}
	require.NoError(t, db.Create(&assignment).Error)
	submission := models.Submission{AssignmentID: assignment.ID, StudentID: student.ID, Content: "work"}
	require.NoError(t, db.Create(&submission).Error)

	feedback := "Solid effort"
	resp := doJSON(t, app, "POST", "/api/v1/submissions/"+submission.ID.String()+"/grade", tokenFor(t, professor), map[string]interface{}{
		"score":    85,
		"feedback": feedback,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var graded models.Submission
	require.NoError(t, db.First(&graded, "id = ?", submission.ID).Error)
	require.NotNil(t, graded.Score)
	assert.InDelta(t, 85, *graded.Score, 0.001)
	assert.NotNil(t, graded.GradedAt)

	// stats cache picked up the score
	var stats models.CourseStats
	require.NoError(t, db.Where("student_id = ? AND course_id = ?", student.ID, course.ID).First(&stats).Error)
	require.NotNil(t, stats.AverageScore)
	assert.InDelta(t, 85, *stats.AverageScore, 0.001)

	// grade notification and points granted once
	var n models.Notification
	require.NoError(t, db.Where("user_id = ? AND type = ?", student.ID, models.NotificationTypeGrade).First(&n).Error)

	var points models.UserPoints
	require.NoError(t, db.Where("user_id = ?", student.ID).First(&points).Error)
	assert.Equal(t, 15, points.TotalEarned)

	// regrading adjusts the score but not the points
	resp = doJSON(t, app, "POST", "/api/v1/submissions/"+submission.ID.String()+"/grade", tokenFor(t, professor), map[string]interface{}{
		"score": 90,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.NoError(t, db.Where("user_id = ?", student.ID).First(&points).Error)
	assert.Equal(t, 15, points.TotalEarned)
}

func TestGradeAboveMaxRejected(t *testing.T) {
	app, db := setupApp(t)
	professor, student, course := seedAssignmentCourse(t, db)

	assignment := models.Assignment{CourseID: course.ID, Title: "Quiz", MaxScore: 10}
	require.NoError(t, db.Create(&assignment).Error)
	submission := models.Submission{AssignmentID: assignment.ID, StudentID: student.ID, Content: "answers"}
	require.NoError(t, db.Create(&submission).Error)

	resp := doJSON(t, app, "POST", "/api/v1/submissions/"+submission.ID.String()+"/grade", tokenFor(t, professor), map[string]interface{}{
		"score": 11,
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestGradeOtherProfessorsCourseForbidden(t *testing.T) {
	app, db := setupApp(t)
	_, student, course := seedAssignmentCourse(t, db)
	rival := createUser(t, db, "Rival Prof", models.RoleProfessor)

	assignment := models.Assignment{CourseID: course.ID, Title: "Essay", MaxScore: 100}
	require.NoError(t, db.Create(&assignment).Error)
	submission := models.Submission{AssignmentID: assignment.ID, StudentID: student.ID, Content: "work"}
	require.NoError(t, db.Create(&submission).Error)

	resp := doJSON(t, app, "POST", "/api/v1/submissions/"+submission.ID.String()+"/grade", tokenFor(t, rival), map[string]interface{}{
		"score": 50,
	})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
