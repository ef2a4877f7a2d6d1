package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/campusnorma/campus_norma/database"
	"github.com/campusnorma/campus_norma/models"
	"github.com/campusnorma/campus_norma/routes"
	"github.com/campusnorma/campus_norma/services"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "testsecret"

func setupApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	t.Setenv("JWT_SECRET", testSecret)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.MigrateWith(db))
	require.NoError(t, database.SeedBadgesWith(db))

	database.DB = db
	services.Init(db, nil)

	app := fiber.New()
	routes.AuthRoutes(app)
	routes.CourseRoutes(app)
	routes.EnrollmentRoutes(app)
	routes.ProgressRoutes(app)
	routes.GamificationRoutes(app)
	routes.NotificationRoutes(app)
	routes.ForumRoutes(app)
	routes.MessagingRoutes(app)
	routes.AssignmentRoutes(app)
	return app, db
}

func createUser(t *testing.T, db *gorm.DB, name, role string) models.User {
	t.Helper()

	user := models.User{
		FullName: name,
		Email:    strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com",
		Password: "$2a$10$placeholderplaceholderplaceholderplaceholder",
		Role:     role,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func tokenFor(t *testing.T, user models.User) string {
	t.Helper()

	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"role":    user.Role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestRegisterLoginAndMe(t *testing.T) {
	app, _ := setupApp(t)

	resp := doJSON(t, app, "POST", "/api/v1/auth/register", "", map[string]string{
		"full_name": "New Student",
		"email":     "new.student@example.com",
		"password":  "secret123",
	})
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = doJSON(t, app, "POST", "/api/v1/auth/login", "", map[string]string{
		"email":    "new.student@example.com",
		"password": "secret123",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var loginBody map[string]string
	decodeBody(t, resp, &loginBody)
	require.NotEmpty(t, loginBody["token"])

	resp = doJSON(t, app, "GET", "/api/v1/users/me", loginBody["token"], nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var me map[string]interface{}
	decodeBody(t, resp, &me)
	assert.Equal(t, "New Student", me["full_name"])
}

func TestRegisterDuplicateEmail(t *testing.T) {
	app, _ := setupApp(t)

	payload := map[string]string{
		"full_name": "Twin One",
		"email":     "twin@example.com",
		"password":  "secret123",
	}
	resp := doJSON(t, app, "POST", "/api/v1/auth/register", "", payload)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	payload["full_name"] = "Twin Two"
	resp = doJSON(t, app, "POST", "/api/v1/auth/register", "", payload)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestCreateCourseRequiresProfessor(t *testing.T) {
	app, db := setupApp(t)
	student := createUser(t, db, "Plain Student", models.RoleStudent)

	resp := doJSON(t, app, "POST", "/api/v1/courses", tokenFor(t, student), map[string]interface{}{
		"title": "Not Allowed",
	})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestEnrollTwiceReturnsConflict(t *testing.T) {
	app, db := setupApp(t)
	professor := createUser(t, db, "Conflict Prof", models.RoleProfessor)
	student := createUser(t, db, "Conflict Student", models.RoleStudent)

	course := models.Course{Title: "Free Course", InstructorID: professor.ID, IsPublished: true}
	require.NoError(t, db.Create(&course).Error)

	token := tokenFor(t, student)
	path := "/api/v1/enrollments/courses/" + course.ID.String()

	resp := doJSON(t, app, "POST", path, token, nil)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = doJSON(t, app, "POST", path, token, nil)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	var body map[string]interface{}
	decodeBody(t, resp, &body)
	assert.NotNil(t, body["enrollment"])

	var count int64
	require.NoError(t, db.Model(&models.Enrollment{}).
		Where("student_id = ? AND course_id = ?", student.ID, course.ID).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestEnrollPricedCourseRequiresPayment(t *testing.T) {
	app, db := setupApp(t)
	professor := createUser(t, db, "Paid Prof", models.RoleProfessor)
	student := createUser(t, db, "Paid Student", models.RoleStudent)

	course := models.Course{Title: "Paid Course", InstructorID: professor.ID, IsPublished: true, Price: 49.99}
	require.NoError(t, db.Create(&course).Error)

	resp := doJSON(t, app, "POST", "/api/v1/enrollments/courses/"+course.ID.String(), tokenFor(t, student), nil)
	assert.Equal(t, fiber.StatusPaymentRequired, resp.StatusCode)
}

func TestEnrollUnpublishedCourseNotFound(t *testing.T) {
	app, db := setupApp(t)
	professor := createUser(t, db, "Draft Prof", models.RoleProfessor)
	student := createUser(t, db, "Draft Student", models.RoleStudent)

	course := models.Course{Title: "Draft Course", InstructorID: professor.ID, IsPublished: false}
	require.NoError(t, db.Create(&course).Error)

	resp := doJSON(t, app, "POST", "/api/v1/enrollments/courses/"+course.ID.String(), tokenFor(t, student), nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestVoteChangesInPlace(t *testing.T) {
	app, db := setupApp(t)
	professor := createUser(t, db, "Forum Prof", models.RoleProfessor)
	author := createUser(t, db, "Thread Author", models.RoleStudent)
	voter := createUser(t, db, "Voter", models.RoleStudent)

	course := models.Course{Title: "Forum Course", InstructorID: professor.ID, IsPublished: true}
	require.NoError(t, db.Create(&course).Error)
	thread := models.ForumThread{CourseID: course.ID, AuthorID: author.ID, Title: "Question", Content: "Why?"}
	require.NoError(t, db.Create(&thread).Error)

	token := tokenFor(t, voter)
	vote := map[string]interface{}{
		"votable_type": models.VotableThread,
		"votable_id":   thread.ID.String(),
		"vote_type":    1,
	}
	resp := doJSON(t, app, "POST", "/api/v1/forum/votes", token, vote)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	vote["vote_type"] = -1
	resp = doJSON(t, app, "POST", "/api/v1/forum/votes", token, vote)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var votes []models.ForumVote
	require.NoError(t, db.Where("user_id = ?", voter.ID).Find(&votes).Error)
	require.Len(t, votes, 1)
	assert.Equal(t, -1, votes[0].VoteType)

	var body map[string]interface{}
	decodeBody(t, resp, &body)
	assert.Equal(t, float64(-1), body["score"])
}

func TestRemoveMissingVoteIsNoOp(t *testing.T) {
	app, db := setupApp(t)
	professor := createUser(t, db, "Unvote Prof", models.RoleProfessor)
	author := createUser(t, db, "Unvote Author", models.RoleStudent)
	voter := createUser(t, db, "Unvoter", models.RoleStudent)

	course := models.Course{Title: "Unvote Course", InstructorID: professor.ID, IsPublished: true}
	require.NoError(t, db.Create(&course).Error)
	thread := models.ForumThread{CourseID: course.ID, AuthorID: author.ID, Title: "Question", Content: "Why?"}
	require.NoError(t, db.Create(&thread).Error)

	path := "/api/v1/forum/votes/" + models.VotableThread + "/" + thread.ID.String()
	resp := doJSON(t, app, "DELETE", path, tokenFor(t, voter), nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestReplyToLockedThreadForbidden(t *testing.T) {
	app, db := setupApp(t)
	professor := createUser(t, db, "Lock Prof", models.RoleProfessor)
	author := createUser(t, db, "Lock Author", models.RoleStudent)

	course := models.Course{Title: "Lock Course", InstructorID: professor.ID, IsPublished: true}
	require.NoError(t, db.Create(&course).Error)
	thread := models.ForumThread{CourseID: course.ID, AuthorID: author.ID, Title: "Closed", Content: "Done", IsLocked: true}
	require.NoError(t, db.Create(&thread).Error)

	resp := doJSON(t, app, "POST", "/api/v1/forum/threads/"+thread.ID.String()+"/replies", tokenFor(t, author), map[string]string{
		"content": "One more thing",
	})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestNotificationEndpoints(t *testing.T) {
	app, db := setupApp(t)
	user := createUser(t, db, "Inbox User", models.RoleStudent)

	require.NoError(t, services.Notifications.Create(&models.Notification{
		UserID: user.ID, Title: "Ping", Message: "m",
	}))
	require.NoError(t, services.Notifications.Create(&models.Notification{
		UserID: user.ID, Title: "Pong", Message: "m",
	}))

	token := tokenFor(t, user)

	resp := doJSON(t, app, "GET", "/api/v1/notifications/unread-count", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var countBody map[string]interface{}
	decodeBody(t, resp, &countBody)
	assert.Equal(t, float64(2), countBody["unread"])

	resp = doJSON(t, app, "POST", "/api/v1/notifications/read-all", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, "GET", "/api/v1/notifications/unread-count", token, nil)
	decodeBody(t, resp, &countBody)
	assert.Equal(t, float64(0), countBody["unread"])
}

func TestCompleteLessonThroughAPI(t *testing.T) {
	app, db := setupApp(t)
	professor := createUser(t, db, "Flow Prof", models.RoleProfessor)
	student := createUser(t, db, "Flow Student", models.RoleStudent)

	course := models.Course{Title: "Flow Course", InstructorID: professor.ID, IsPublished: true}
	require.NoError(t, db.Create(&course).Error)
	module := models.CourseModule{CourseID: course.ID, Title: "M1", Position: 1}
	require.NoError(t, db.Create(&module).Error)
	lesson := models.Lesson{ModuleID: module.ID, Title: "L1", Position: 1}
	require.NoError(t, db.Create(&lesson).Error)
	require.NoError(t, db.Create(&models.Enrollment{StudentID: student.ID, CourseID: course.ID}).Error)

	token := tokenFor(t, student)
	path := fmt.Sprintf("/api/v1/progress/courses/%s/lessons/%s/complete", course.ID, lesson.ID)

	resp := doJSON(t, app, "POST", path, token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var progress map[string]interface{}
	decodeBody(t, resp, &progress)
	assert.Equal(t, float64(100), progress["percent"])

	var enrollment models.Enrollment
	require.NoError(t, db.Where("student_id = ?", student.ID).First(&enrollment).Error)
	assert.True(t, enrollment.Completed)

	// leaderboard now carries the student
	resp = doJSON(t, app, "GET", "/api/v1/gamification/leaderboard", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var board map[string]interface{}
	decodeBody(t, resp, &board)
	entries, ok := board["leaderboard"].([]interface{})
	require.True(t, ok)
	assert.NotEmpty(t, entries)
}

func TestAdminUserManagement(t *testing.T) {
	app, db := setupApp(t)
	admin := createUser(t, db, "Root Admin", models.RoleAdmin)
	student := createUser(t, db, "Target Student", models.RoleStudent)

	adminToken := tokenFor(t, admin)
	studentToken := tokenFor(t, student)

	// non-admins are rejected
	resp := doJSON(t, app, "GET", "/api/v1/admin/users", studentToken, nil)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, app, "GET", "/api/v1/admin/users", adminToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	path := fmt.Sprintf("/api/v1/admin/users/%s/deactivate", student.ID)
	resp = doJSON(t, app, "POST", path, adminToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var updated models.User
	require.NoError(t, db.First(&updated, "id = ?", student.ID).Error)
	assert.False(t, updated.IsActive)

	// deactivated accounts cannot log in anymore
	resp = doJSON(t, app, "POST", "/api/v1/auth/login", "", fiber.Map{
		"email":    student.Email,
		"password": "password123",
	})
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// admins cannot remove themselves
	path = fmt.Sprintf("/api/v1/admin/users/%s", admin.ID)
	resp = doJSON(t, app, "DELETE", path, adminToken, nil)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	path = fmt.Sprintf("/api/v1/admin/users/%s", student.ID)
	resp = doJSON(t, app, "DELETE", path, adminToken, nil)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	var count int64
	db.Model(&models.User{}).Where("id = ?", student.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestCompleteFabricatedLessonReturnsNotFound(t *testing.T) {
	app, db := setupApp(t)
	professor := createUser(t, db, "Guard Prof", models.RoleProfessor)
	student := createUser(t, db, "Guard Student", models.RoleStudent)

	course := models.Course{Title: "Guard Course", InstructorID: professor.ID, IsPublished: true}
	require.NoError(t, db.Create(&course).Error)
	module := models.CourseModule{CourseID: course.ID, Title: "M1", Position: 1}
	require.NoError(t, db.Create(&module).Error)
	lesson := models.Lesson{ModuleID: module.ID, Title: "L1", Position: 1}
	require.NoError(t, db.Create(&lesson).Error)
	require.NoError(t, db.Create(&models.Enrollment{StudentID: student.ID, CourseID: course.ID}).Error)

	token := tokenFor(t, student)
	path := fmt.Sprintf("/api/v1/progress/courses/%s/lessons/%s/complete", course.ID, uuid.New())

	resp := doJSON(t, app, "POST", path, token, nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var enrollment models.Enrollment
	require.NoError(t, db.Where("student_id = ?", student.ID).First(&enrollment).Error)
	assert.False(t, enrollment.Completed)
	assert.Equal(t, 0, enrollment.ProgressPercent)

	// the genuine lesson still completes normally afterwards
	path = fmt.Sprintf("/api/v1/progress/courses/%s/lessons/%s/complete", course.ID, lesson.ID)
	resp = doJSON(t, app, "POST", path, token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var progress map[string]interface{}
	decodeBody(t, resp, &progress)
	assert.Equal(t, float64(100), progress["percent"])
}

func TestConversationListPaginates(t *testing.T) {
	app, db := setupApp(t)
	alice := createUser(t, db, "Page Alice", models.RoleStudent)
	token := tokenFor(t, alice)

	for i := 0; i < 3; i++ {
		peer := createUser(t, db, fmt.Sprintf("Page Peer %d", i), models.RoleStudent)
		conversation := models.Conversation{Participants: []*models.User{&alice, &peer}}
		require.NoError(t, db.Create(&conversation).Error)
	}

	resp := doJSON(t, app, "GET", "/api/v1/conversations?page=1&page_size=2", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var first []map[string]interface{}
	decodeBody(t, resp, &first)
	assert.Len(t, first, 2)

	resp = doJSON(t, app, "GET", "/api/v1/conversations?page=2&page_size=2", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var second []map[string]interface{}
	decodeBody(t, resp, &second)
	assert.Len(t, second, 1)

	// only conversations the caller belongs to are listed
	outsider := createUser(t, db, "Page Outsider", models.RoleStudent)
	resp = doJSON(t, app, "GET", "/api/v1/conversations", tokenFor(t, outsider), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var none []map[string]interface{}
	decodeBody(t, resp, &none)
	assert.Empty(t, none)
}
