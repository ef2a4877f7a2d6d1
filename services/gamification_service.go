package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/campusnorma/campus_norma/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	pointsPerLevel       = 100
	levelUpBonusFactor   = 10
	streakBonusInterval  = 7
	streakBonusPerDay    = 5
	maxLevelUpIterations = 20

	PointsLessonComplete   = 10
	PointsAssignmentGraded = 15
	PointsCourseComplete   = 25
)

const (
	ActionLessonComplete   = "lesson_complete"
	ActionAssignmentGraded = "assignment_graded"
	ActionCourseComplete   = "course_complete"
	ActionLevelUp          = "level_up"
	ActionStreakBonus      = "streak_bonus"
	ActionBadgeEarned      = "badge_earned"
)

type GamificationService struct {
	db *gorm.DB
}

func NewGamificationService(db *gorm.DB) *GamificationService {
	return &GamificationService{db: db}
}

func levelForExperience(experience int) int {
	return experience/pointsPerLevel + 1
}

// AddPoints appends a ledger row, updates the user's balances and level, and
// re-evaluates badge criteria, all in one transaction.
func (s *GamificationService) AddPoints(userID uuid.UUID, amount int, actionType, description string, refType *string, refID *uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.addPoints(tx, userID, amount, actionType, description, refType, refID); err != nil {
			return err
		}
		return s.checkBadges(tx, userID)
	})
}

// AddPointsTx is AddPoints for callers already inside a transaction.
func (s *GamificationService) AddPointsTx(tx *gorm.DB, userID uuid.UUID, amount int, actionType, description string, refType *string, refID *uuid.UUID) error {
	if err := s.addPoints(tx, userID, amount, actionType, description, refType, refID); err != nil {
		return err
	}
	return s.checkBadges(tx, userID)
}

// addPoints does the ledger-then-balance write. The ledger row is committed
// before the balance so a crash between the two under-counts the balance,
// which is safe to reconcile by replay.
func (s *GamificationService) addPoints(tx *gorm.DB, userID uuid.UUID, amount int, actionType, description string, refType *string, refID *uuid.UUID) error {
	txn := models.PointTransaction{
		UserID:        userID,
		Points:        amount,
		ActionType:    actionType,
		Description:   description,
		ReferenceType: refType,
		ReferenceID:   refID,
	}
	if err := tx.Create(&txn).Error; err != nil {
		return err
	}

	points, err := getOrCreatePoints(tx, userID)
	if err != nil {
		return err
	}

	points.Points += amount
	points.TotalEarned += amount
	points.Experience += amount

	// Level-ups are a bounded loop rather than recursion: each bonus feeds
	// experience, which may cross another threshold.
	for i := 0; ; i++ {
		newLevel := levelForExperience(points.Experience)
		if newLevel <= points.Level {
			break
		}
		if i >= maxLevelUpIterations {
			log.Printf("🔥 Level-up loop exceeded %d iterations for user %s, stopping at level %d", maxLevelUpIterations, userID, points.Level)
			break
		}

		points.Level = newLevel
		bonus := newLevel * levelUpBonusFactor
		bonusTxn := models.PointTransaction{
			UserID:      userID,
			Points:      bonus,
			ActionType:  ActionLevelUp,
			Description: fmt.Sprintf("Reached level %d", newLevel),
		}
		if err := tx.Create(&bonusTxn).Error; err != nil {
			return err
		}
		points.Points += bonus
		points.TotalEarned += bonus
		points.Experience += bonus
	}

	return tx.Save(points).Error
}

// UpdateStreak advances the user's daily streak. Calling it more than once on
// the same calendar day is a no-op; every 7th consecutive day grants a bonus.
func (s *GamificationService) UpdateStreak(userID uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.UpdateStreakTx(tx, userID)
	})
}

func (s *GamificationService) UpdateStreakTx(tx *gorm.DB, userID uuid.UUID) error {
	points, err := getOrCreatePoints(tx, userID)
	if err != nil {
		return err
	}

	today := startOfDay(time.Now())
	if points.LastActivityDate != nil && sameDay(*points.LastActivityDate, today) {
		return nil
	}

	if points.LastActivityDate != nil && sameDay(*points.LastActivityDate, today.AddDate(0, 0, -1)) {
		points.StreakDays++
	} else {
		points.StreakDays = 1
	}
	points.LastActivityDate = &today

	if err := tx.Save(points).Error; err != nil {
		return err
	}

	if points.StreakDays%streakBonusInterval == 0 {
		bonus := points.StreakDays * streakBonusPerDay
		desc := fmt.Sprintf("%d-day streak bonus", points.StreakDays)
		return s.addPoints(tx, userID, bonus, ActionStreakBonus, desc, nil, nil)
	}
	return nil
}

// CheckBadges evaluates every badge rule for the user and awards whatever is
// newly met. Awards are idempotent.
func (s *GamificationService) CheckBadges(userID uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.checkBadges(tx, userID)
	})
}

func (s *GamificationService) checkBadges(tx *gorm.DB, userID uuid.UUID) error {
	var badges []models.Badge
	if err := tx.Find(&badges).Error; err != nil {
		return err
	}

	for _, badge := range badges {
		rule, ok := badgeRules[badge.Criteria]
		if !ok {
			continue
		}

		var held int64
		if err := tx.Model(&models.UserBadge{}).
			Where("user_id = ? AND badge_id = ?", userID, badge.ID).
			Count(&held).Error; err != nil {
			return err
		}
		if held > 0 {
			continue
		}

		met, err := rule(tx, userID)
		if err != nil {
			return err
		}
		if !met {
			continue
		}

		if err := s.awardBadge(tx, userID, &badge); err != nil {
			return err
		}
	}
	return nil
}

// AwardBadge grants a badge directly, outside rule evaluation.
func (s *GamificationService) AwardBadge(userID, badgeID uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var badge models.Badge
		if err := tx.First(&badge, "id = ?", badgeID).Error; err != nil {
			return err
		}
		return s.awardBadge(tx, userID, &badge)
	})
}

func (s *GamificationService) awardBadge(tx *gorm.DB, userID uuid.UUID, badge *models.Badge) error {
	award := models.UserBadge{UserID: userID, BadgeID: badge.ID}
	if err := tx.Create(&award).Error; err != nil {
		if isDuplicateKey(err) {
			return nil
		}
		return err
	}

	if badge.PointsReward == 0 {
		return nil
	}
	refType := "badge"
	refID := badge.ID
	desc := fmt.Sprintf("Earned badge: %s", badge.Name)
	return s.addPoints(tx, userID, badge.PointsReward, ActionBadgeEarned, desc, &refType, &refID)
}

type LeaderboardEntry struct {
	UserID     uuid.UUID `json:"user_id"`
	FullName   string    `json:"full_name"`
	Points     int       `json:"points"`
	Level      int       `json:"level"`
	BadgeCount int       `json:"badge_count"`
	Rank       int       `json:"rank"`
}

// Leaderboard returns the top-N users by points (user id breaks ties) plus the
// requester's 1-based rank, or nil when they fall outside the top N.
func (s *GamificationService) Leaderboard(limit int, requester uuid.UUID) ([]LeaderboardEntry, *int, error) {
	if limit <= 0 {
		limit = 10
	}

	var entries []LeaderboardEntry
	err := s.db.Table("user_points").
		Select("user_points.user_id, users.full_name, user_points.points, user_points.level, count(user_badges.badge_id) as badge_count").
		Joins("JOIN users ON users.id = user_points.user_id").
		Joins("LEFT JOIN user_badges ON user_badges.user_id = user_points.user_id").
		Group("user_points.user_id, users.full_name, user_points.points, user_points.level").
		Order("user_points.points DESC, user_points.user_id ASC").
		Limit(limit).
		Scan(&entries).Error
	if err != nil {
		return nil, nil, err
	}

	var rank *int
	for i := range entries {
		entries[i].Rank = i + 1
		if entries[i].UserID == requester {
			r := i + 1
			rank = &r
		}
	}
	return entries, rank, nil
}

// UserStats returns the points row for a user, a zero-value row if they have
// never earned anything.
func (s *GamificationService) UserStats(userID uuid.UUID) (*models.UserPoints, error) {
	var points models.UserPoints
	err := s.db.Where("user_id = ?", userID).First(&points).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.UserPoints{UserID: userID, Level: 1}, nil
	}
	return &points, err
}

func (s *GamificationService) Transactions(userID uuid.UUID, page, pageSize int) ([]models.PointTransaction, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	var txns []models.PointTransaction
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&txns).Error
	return txns, err
}

func getOrCreatePoints(tx *gorm.DB, userID uuid.UUID) (*models.UserPoints, error) {
	var points models.UserPoints
	err := tx.Where("user_id = ?", userID).First(&points).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		points = models.UserPoints{UserID: userID, Level: 1}
		if err := tx.Create(&points).Error; err != nil {
			return nil, err
		}
		return &points, nil
	}
	if err != nil {
		return nil, err
	}
	return &points, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint failed")
}
