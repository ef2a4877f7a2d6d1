package services

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/campusnorma/campus_norma/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrLessonNotInCourse is returned when a progress write names a lesson that
// does not belong to the course.
var ErrLessonNotInCourse = errors.New("lesson does not belong to course")

type ProgressService struct {
	db           *gorm.DB
	gamification *GamificationService

	// invoked after a course first reaches 100%, outside the transaction
	onCourseCompleted func(studentID, courseID uuid.UUID)
}

func NewProgressService(db *gorm.DB, gamification *GamificationService) *ProgressService {
	return &ProgressService{db: db, gamification: gamification}
}

func (s *ProgressService) SetCourseCompletedHook(fn func(studentID, courseID uuid.UUID)) {
	s.onCourseCompleted = fn
}

// RecordAccess stamps the student's last-accessed time on a lesson. It never
// touches completion state.
func (s *ProgressService) RecordAccess(studentID, courseID, lessonID uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := lessonInCourse(tx, lessonID, courseID); err != nil {
			return err
		}

		now := time.Now()
		var progress models.LessonProgress
		err := tx.Where("student_id = ? AND course_id = ? AND lesson_id = ?", studentID, courseID, lessonID).
			First(&progress).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			progress = models.LessonProgress{
				StudentID:      studentID,
				CourseID:       courseID,
				LessonID:       lessonID,
				LastAccessedAt: now,
			}
			if err := tx.Create(&progress).Error; err != nil && !isDuplicateKey(err) {
				return err
			}
			return nil
		}
		if err != nil {
			return err
		}
		progress.LastAccessedAt = now
		return tx.Save(&progress).Error
	})
}

// RecordCompletion marks a lesson complete and recomputes the denormalized
// per-course stats. Completing an already-complete lesson only refreshes the
// access time; points, streak, and badge evaluation run on the first
// completion only.
func (s *ProgressService) RecordCompletion(studentID, courseID, lessonID uuid.UUID) error {
	var courseFinished bool

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := lessonInCourse(tx, lessonID, courseID); err != nil {
			return err
		}

		now := time.Now()
		firstCompletion := false

		var progress models.LessonProgress
		err := tx.Where("student_id = ? AND course_id = ? AND lesson_id = ?", studentID, courseID, lessonID).
			First(&progress).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			progress = models.LessonProgress{
				StudentID:      studentID,
				CourseID:       courseID,
				LessonID:       lessonID,
				Completed:      true,
				CompletedAt:    &now,
				LastAccessedAt: now,
			}
			if err := tx.Create(&progress).Error; err != nil {
				return err
			}
			firstCompletion = true
		} else if err != nil {
			return err
		} else {
			if !progress.Completed {
				progress.Completed = true
				progress.CompletedAt = &now
				firstCompletion = true
			}
			progress.LastAccessedAt = now
			if err := tx.Save(&progress).Error; err != nil {
				return err
			}
		}

		if err := s.RecomputeStatsTx(tx, studentID, courseID); err != nil {
			return err
		}

		finished, err := s.syncEnrollment(tx, studentID, courseID)
		if err != nil {
			return err
		}
		courseFinished = finished

		if !firstCompletion {
			return nil
		}

		refType := "lesson"
		refID := lessonID
		if err := s.gamification.addPoints(tx, studentID, PointsLessonComplete, ActionLessonComplete, "Completed a lesson", &refType, &refID); err != nil {
			return err
		}
		if courseFinished {
			courseRef := "course"
			cid := courseID
			if err := s.gamification.addPoints(tx, studentID, PointsCourseComplete, ActionCourseComplete, "Completed a course", &courseRef, &cid); err != nil {
				return err
			}
		}
		if err := s.gamification.UpdateStreakTx(tx, studentID); err != nil {
			return err
		}
		return s.gamification.checkBadges(tx, studentID)
	})
	if err != nil {
		return err
	}

	if courseFinished && s.onCourseCompleted != nil {
		s.onCourseCompleted(studentID, courseID)
	}
	return nil
}

// RecomputeStatsTx rebuilds the CourseStats cache row for (student, course).
// Called on lesson completion and on submission grading.
func (s *ProgressService) RecomputeStatsTx(tx *gorm.DB, studentID, courseID uuid.UUID) error {
	total, completed, err := lessonCounts(tx, studentID, courseID)
	if err != nil {
		return err
	}

	var avg *float64
	row := tx.Model(&models.Submission{}).
		Select("avg(submissions.score)").
		Joins("JOIN assignments ON assignments.id = submissions.assignment_id").
		Where("submissions.student_id = ? AND assignments.course_id = ? AND submissions.score IS NOT NULL", studentID, courseID).
		Row()
	if err := row.Scan(&avg); err != nil {
		return err
	}

	now := time.Now()

	var stats models.CourseStats
	err = tx.Where("student_id = ? AND course_id = ?", studentID, courseID).First(&stats).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		stats = models.CourseStats{StudentID: studentID, CourseID: courseID}
	} else if err != nil {
		return err
	}

	stats.TotalLessons = int(total)
	stats.CompletedLessons = int(completed)
	stats.AverageScore = avg
	stats.LastActivityAt = &now
	return tx.Save(&stats).Error
}

// syncEnrollment pushes the derived percentage onto the enrollment row and
// reports whether the course just transitioned to completed.
func (s *ProgressService) syncEnrollment(tx *gorm.DB, studentID, courseID uuid.UUID) (bool, error) {
	total, completed, err := lessonCounts(tx, studentID, courseID)
	if err != nil {
		return false, err
	}
	percent := progressPercent(total, completed)

	var enrollment models.Enrollment
	err = tx.Where("student_id = ? AND course_id = ?", studentID, courseID).First(&enrollment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// progress is computable without an enrollment; nothing to sync
		return false, nil
	}
	if err != nil {
		return false, err
	}

	finished := total > 0 && completed == total && !enrollment.Completed
	enrollment.ProgressPercent = percent
	if finished {
		enrollment.Completed = true
	}
	return finished, tx.Save(&enrollment).Error
}

type CourseProgress struct {
	CourseID         uuid.UUID `json:"course_id"`
	TotalLessons     int       `json:"total_lessons"`
	CompletedLessons int       `json:"completed_lessons"`
	Percent          int       `json:"percent"`
}

// CourseProgress aggregates completion across the whole course at read time.
// A course with no lessons reports 0%.
func (s *ProgressService) CourseProgress(studentID, courseID uuid.UUID) (*CourseProgress, error) {
	total, completed, err := lessonCounts(s.db, studentID, courseID)
	if err != nil {
		return nil, err
	}
	return &CourseProgress{
		CourseID:         courseID,
		TotalLessons:     int(total),
		CompletedLessons: int(completed),
		Percent:          progressPercent(total, completed),
	}, nil
}

type ModuleProgress struct {
	ModuleID         uuid.UUID `json:"module_id"`
	TotalLessons     int       `json:"total_lessons"`
	CompletedLessons int       `json:"completed_lessons"`
	Percent          int       `json:"percent"`
}

func (s *ProgressService) ModuleProgress(studentID, moduleID uuid.UUID) (*ModuleProgress, error) {
	var total int64
	if err := s.db.Model(&models.Lesson{}).Where("module_id = ?", moduleID).Count(&total).Error; err != nil {
		return nil, err
	}

	var completed int64
	err := s.db.Model(&models.LessonProgress{}).
		Joins("JOIN lessons ON lessons.id = lesson_progresses.lesson_id").
		Where("lesson_progresses.student_id = ? AND lessons.module_id = ? AND lesson_progresses.completed = ?", studentID, moduleID, true).
		Count(&completed).Error
	if err != nil {
		return nil, err
	}

	return &ModuleProgress{
		ModuleID:         moduleID,
		TotalLessons:     int(total),
		CompletedLessons: int(completed),
		Percent:          progressPercent(total, completed),
	}, nil
}

type LessonStatus struct {
	LessonID       uuid.UUID  `json:"lesson_id"`
	Title          string     `json:"title"`
	Completed      bool       `json:"completed"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	LastAccessedAt *time.Time `json:"last_accessed_at,omitempty"`
}

// LessonsProgress lists every lesson of the course with the student's per-lesson
// completion flag, in module and lesson order.
func (s *ProgressService) LessonsProgress(studentID, courseID uuid.UUID) ([]LessonStatus, error) {
	var lessons []models.Lesson
	err := s.db.
		Joins("JOIN course_modules ON course_modules.id = lessons.module_id").
		Where("course_modules.course_id = ?", courseID).
		Order("course_modules.position ASC, lessons.position ASC").
		Find(&lessons).Error
	if err != nil {
		return nil, err
	}

	var progress []models.LessonProgress
	if err := s.db.Where("student_id = ? AND course_id = ?", studentID, courseID).Find(&progress).Error; err != nil {
		return nil, err
	}
	byLesson := make(map[uuid.UUID]models.LessonProgress, len(progress))
	for _, p := range progress {
		byLesson[p.LessonID] = p
	}

	statuses := make([]LessonStatus, 0, len(lessons))
	for _, lesson := range lessons {
		status := LessonStatus{LessonID: lesson.ID, Title: lesson.Title}
		if p, ok := byLesson[lesson.ID]; ok {
			status.Completed = p.Completed
			status.CompletedAt = p.CompletedAt
			last := p.LastAccessedAt
			status.LastAccessedAt = &last
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

type CourseOverview struct {
	CourseID         uuid.UUID  `json:"course_id"`
	Title            string     `json:"title"`
	TotalLessons     int        `json:"total_lessons"`
	CompletedLessons int        `json:"completed_lessons"`
	Percent          int        `json:"percent"`
	Completed        bool       `json:"completed"`
	LastActivityAt   *time.Time `json:"last_activity_at,omitempty"`
}

// AllCoursesProgress reports progress for every enrolled course, most recently
// accessed first.
func (s *ProgressService) AllCoursesProgress(studentID uuid.UUID) ([]CourseOverview, error) {
	var enrollments []models.Enrollment
	if err := s.db.Preload("Course").Where("student_id = ?", studentID).Find(&enrollments).Error; err != nil {
		return nil, err
	}

	overviews := make([]CourseOverview, 0, len(enrollments))
	for _, enrollment := range enrollments {
		total, completed, err := lessonCounts(s.db, studentID, enrollment.CourseID)
		if err != nil {
			return nil, err
		}

		overview := CourseOverview{
			CourseID:         enrollment.CourseID,
			Title:            enrollment.Course.Title,
			TotalLessons:     int(total),
			CompletedLessons: int(completed),
			Percent:          progressPercent(total, completed),
			Completed:        enrollment.Completed,
		}

		var stats models.CourseStats
		if err := s.db.Where("student_id = ? AND course_id = ?", studentID, enrollment.CourseID).First(&stats).Error; err == nil {
			overview.LastActivityAt = stats.LastActivityAt
		}
		overviews = append(overviews, overview)
	}

	sort.SliceStable(overviews, func(i, j int) bool {
		a, b := overviews[i].LastActivityAt, overviews[j].LastActivityAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
	return overviews, nil
}

// lessonInCourse verifies the lesson belongs to the course through the
// modules join. Writes for foreign or nonexistent lessons are rejected so
// they can never inflate the completed count.
func lessonInCourse(tx *gorm.DB, lessonID, courseID uuid.UUID) error {
	var count int64
	err := tx.Model(&models.Lesson{}).
		Joins("JOIN course_modules ON course_modules.id = lessons.module_id").
		Where("lessons.id = ? AND course_modules.course_id = ?", lessonID, courseID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrLessonNotInCourse
	}
	return nil
}

// lessonCounts derives both counts from the same modules→lessons join, so a
// stray progress row pointing outside the course can never push completed
// past total.
func lessonCounts(tx *gorm.DB, studentID, courseID uuid.UUID) (total, completed int64, err error) {
	err = tx.Model(&models.Lesson{}).
		Joins("JOIN course_modules ON course_modules.id = lessons.module_id").
		Where("course_modules.course_id = ?", courseID).
		Count(&total).Error
	if err != nil {
		return 0, 0, err
	}

	courseLessons := tx.Model(&models.Lesson{}).
		Select("lessons.id").
		Joins("JOIN course_modules ON course_modules.id = lessons.module_id").
		Where("course_modules.course_id = ?", courseID)
	err = tx.Model(&models.LessonProgress{}).
		Where("student_id = ? AND completed = ? AND lesson_id IN (?)", studentID, true, courseLessons).
		Count(&completed).Error
	if err != nil {
		return 0, 0, fmt.Errorf("counting completed lessons: %w", err)
	}
	return total, completed, nil
}

func progressPercent(total, completed int64) int {
	if total == 0 {
		return 0
	}
	return int(completed * 100 / total)
}
