package services

import (
	"sync"
	"testing"

	"github.com/campusnorma/campus_norma/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCourseProgressNoLessons(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db, NewGamificationService(db))
	instructor := createTestUser(t, db, "Empty Prof")
	student := createTestUser(t, db, "Empty Student")
	course, _ := createTestCourse(t, db, instructor)
	enroll(t, db, student, course)

	progress, err := svc.CourseProgress(student.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, progress.TotalLessons)
	assert.Equal(t, 0, progress.Percent)
}

func TestRecordCompletionSingleLessonCourse(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db, NewGamificationService(db))
	instructor := createTestUser(t, db, "Solo Prof")
	student := createTestUser(t, db, "Solo Student")
	course, lessons := createTestCourse(t, db, instructor, 1)
	enroll(t, db, student, course)

	var hookMu sync.Mutex
	var hookCalls []uuid.UUID
	svc.SetCourseCompletedHook(func(studentID, courseID uuid.UUID) {
		hookMu.Lock()
		hookCalls = append(hookCalls, courseID)
		hookMu.Unlock()
	})

	require.NoError(t, svc.RecordCompletion(student.ID, course.ID, lessons[0].ID))

	progress, err := svc.CourseProgress(student.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, progress.Percent)

	var enrollment models.Enrollment
	require.NoError(t, db.Where("student_id = ? AND course_id = ?", student.ID, course.ID).First(&enrollment).Error)
	assert.True(t, enrollment.Completed)
	assert.Equal(t, 100, enrollment.ProgressPercent)

	hookMu.Lock()
	defer hookMu.Unlock()
	require.Len(t, hookCalls, 1)
	assert.Equal(t, course.ID, hookCalls[0])

	// lesson points, course-complete points, streak of 1
	var points models.UserPoints
	require.NoError(t, db.Where("user_id = ?", student.ID).First(&points).Error)
	assert.Equal(t, PointsLessonComplete+PointsCourseComplete, points.TotalEarned)
	assert.Equal(t, 1, points.StreakDays)
}

func TestRecordCompletionIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db, NewGamificationService(db))
	instructor := createTestUser(t, db, "Repeat Prof")
	student := createTestUser(t, db, "Repeat Student")
	course, lessons := createTestCourse(t, db, instructor, 2)
	enroll(t, db, student, course)

	require.NoError(t, svc.RecordCompletion(student.ID, course.ID, lessons[0].ID))
	require.NoError(t, svc.RecordCompletion(student.ID, course.ID, lessons[0].ID))

	var rows int64
	require.NoError(t, db.Model(&models.LessonProgress{}).
		Where("student_id = ? AND lesson_id = ?", student.ID, lessons[0].ID).
		Count(&rows).Error)
	assert.Equal(t, int64(1), rows)

	// points granted once only
	var points models.UserPoints
	require.NoError(t, db.Where("user_id = ?", student.ID).First(&points).Error)
	assert.Equal(t, PointsLessonComplete, points.TotalEarned)

	progress, err := svc.CourseProgress(student.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, progress.Percent)
}

func TestRecordCompletionFinishingCourse(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db, NewGamificationService(db))
	instructor := createTestUser(t, db, "Finish Prof")
	student := createTestUser(t, db, "Finish Student")
	course, lessons := createTestCourse(t, db, instructor, 1, 1)
	enroll(t, db, student, course)

	require.NoError(t, svc.RecordCompletion(student.ID, course.ID, lessons[0].ID))

	var enrollment models.Enrollment
	require.NoError(t, db.Where("student_id = ?", student.ID).First(&enrollment).Error)
	assert.False(t, enrollment.Completed)
	assert.Equal(t, 50, enrollment.ProgressPercent)

	require.NoError(t, svc.RecordCompletion(student.ID, course.ID, lessons[1].ID))

	require.NoError(t, db.Where("student_id = ?", student.ID).First(&enrollment).Error)
	assert.True(t, enrollment.Completed)
	assert.Equal(t, 100, enrollment.ProgressPercent)

	var points models.UserPoints
	require.NoError(t, db.Where("user_id = ?", student.ID).First(&points).Error)
	assert.Equal(t, 2*PointsLessonComplete+PointsCourseComplete, points.TotalEarned)
}

func TestRecordAccessDoesNotComplete(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db, NewGamificationService(db))
	instructor := createTestUser(t, db, "Access Prof")
	student := createTestUser(t, db, "Access Student")
	course, lessons := createTestCourse(t, db, instructor, 1)
	enroll(t, db, student, course)

	require.NoError(t, svc.RecordAccess(student.ID, course.ID, lessons[0].ID))
	require.NoError(t, svc.RecordAccess(student.ID, course.ID, lessons[0].ID))

	var progress models.LessonProgress
	require.NoError(t, db.Where("student_id = ? AND lesson_id = ?", student.ID, lessons[0].ID).First(&progress).Error)
	assert.False(t, progress.Completed)
	assert.False(t, progress.LastAccessedAt.IsZero())

	cp, err := svc.CourseProgress(student.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, cp.Percent)
}

func TestRecomputeStatsAverageScore(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db, NewGamificationService(db))
	instructor := createTestUser(t, db, "Stats Prof")
	student := createTestUser(t, db, "Stats Student")
	course, _ := createTestCourse(t, db, instructor, 1)
	enroll(t, db, student, course)

	assignment := models.Assignment{CourseID: course.ID, Title: "Essay", MaxScore: 100}
	require.NoError(t, db.Create(&assignment).Error)
	score := 80.0
	submission := models.Submission{AssignmentID: assignment.ID, StudentID: student.ID, Content: "text", Score: &score}
	require.NoError(t, db.Create(&submission).Error)

	require.NoError(t, svc.RecomputeStatsTx(db, student.ID, course.ID))

	var stats models.CourseStats
	require.NoError(t, db.Where("student_id = ? AND course_id = ?", student.ID, course.ID).First(&stats).Error)
	require.NotNil(t, stats.AverageScore)
	assert.InDelta(t, 80.0, *stats.AverageScore, 0.001)
	assert.Equal(t, 1, stats.TotalLessons)
	assert.Equal(t, 0, stats.CompletedLessons)
}

func TestLessonsProgressOrdering(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db, NewGamificationService(db))
	instructor := createTestUser(t, db, "Order Prof")
	student := createTestUser(t, db, "Order Student")
	course, lessons := createTestCourse(t, db, instructor, 2, 1)
	enroll(t, db, student, course)

	require.NoError(t, svc.RecordCompletion(student.ID, course.ID, lessons[1].ID))

	statuses, err := svc.LessonsProgress(student.ID, course.ID)
	require.NoError(t, err)
	require.Len(t, statuses, 3)
	assert.Equal(t, lessons[0].ID, statuses[0].LessonID)
	assert.False(t, statuses[0].Completed)
	assert.Equal(t, lessons[1].ID, statuses[1].LessonID)
	assert.True(t, statuses[1].Completed)
	assert.Equal(t, lessons[2].ID, statuses[2].LessonID)
}

func TestRecordCompletionRejectsLessonOutsideCourse(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db, NewGamificationService(db))
	instructor := createTestUser(t, db, "Strict Prof")
	student := createTestUser(t, db, "Strict Student")
	course, _ := createTestCourse(t, db, instructor, 1)
	enroll(t, db, student, course)

	err := svc.RecordCompletion(student.ID, course.ID, uuid.New())
	require.ErrorIs(t, err, ErrLessonNotInCourse)

	progress, err := svc.CourseProgress(student.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, progress.TotalLessons)
	assert.Equal(t, 0, progress.CompletedLessons)
	assert.Equal(t, 0, progress.Percent)

	var enrollment models.Enrollment
	require.NoError(t, db.Where("student_id = ? AND course_id = ?", student.ID, course.ID).First(&enrollment).Error)
	assert.False(t, enrollment.Completed)
	assert.Equal(t, 0, enrollment.ProgressPercent)

	var rows int64
	db.Model(&models.LessonProgress{}).Where("student_id = ?", student.ID).Count(&rows)
	assert.Equal(t, int64(0), rows)

	var txns int64
	db.Model(&models.PointTransaction{}).Where("user_id = ?", student.ID).Count(&txns)
	assert.Equal(t, int64(0), txns)
}

func TestRecordCompletionRejectsLessonOfOtherCourse(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db, NewGamificationService(db))
	instructor := createTestUser(t, db, "Cross Prof")
	student := createTestUser(t, db, "Cross Student")
	course, _ := createTestCourse(t, db, instructor, 1)
	other, otherLessons := createTestCourse(t, db, instructor, 1)
	enroll(t, db, student, course)

	err := svc.RecordCompletion(student.ID, course.ID, otherLessons[0].ID)
	require.ErrorIs(t, err, ErrLessonNotInCourse)

	progress, err := svc.CourseProgress(student.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, progress.CompletedLessons)

	// the other course saw nothing either
	otherProgress, err := svc.CourseProgress(student.ID, other.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, otherProgress.CompletedLessons)
}

func TestRecordAccessRejectsLessonOutsideCourse(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db, NewGamificationService(db))
	instructor := createTestUser(t, db, "Access Prof")
	student := createTestUser(t, db, "Access Student")
	course, _ := createTestCourse(t, db, instructor, 1)
	enroll(t, db, student, course)

	err := svc.RecordAccess(student.ID, course.ID, uuid.New())
	require.ErrorIs(t, err, ErrLessonNotInCourse)

	var rows int64
	db.Model(&models.LessonProgress{}).Where("student_id = ?", student.ID).Count(&rows)
	assert.Equal(t, int64(0), rows)
}

func TestLessonCountsIgnoreStrayProgressRows(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db, NewGamificationService(db))
	instructor := createTestUser(t, db, "Stray Prof")
	student := createTestUser(t, db, "Stray Student")
	course, _ := createTestCourse(t, db, instructor, 1)
	enroll(t, db, student, course)

	// a row written before membership validation existed must not count
	require.NoError(t, db.Create(&models.LessonProgress{
		StudentID: student.ID,
		CourseID:  course.ID,
		LessonID:  uuid.New(),
		Completed: true,
	}).Error)

	progress, err := svc.CourseProgress(student.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, progress.TotalLessons)
	assert.Equal(t, 0, progress.CompletedLessons)
	assert.Equal(t, 0, progress.Percent)
}
