package database

import (
	"fmt"
	"log"

	config "github.com/campusnorma/campus_norma/configs"
	"github.com/campusnorma/campus_norma/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() {
	var err error
	dsn := config.Config("DATABASE_URL")

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		PrepareStmt:            false,
		SkipDefaultTransaction: true,
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		log.Fatalf("🔥 Failed to connect to database: %v", err)
	}

	fmt.Println("✅ Database connected successfully")
}

func Migrate() {
	if err := MigrateWith(DB); err != nil {
		log.Fatalf("🔥 Failed to migrate database: %v", err)
	}
	fmt.Println("✅ Database migration successful")
}

// MigrateWith runs the schema migration against an explicit handle so tests
// can migrate their own database.
func MigrateWith(db *gorm.DB) error {
	if err := db.SetupJoinTable(&models.User{}, "Badges", &models.UserBadge{}); err != nil {
		return err
	}

	return db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.CourseModule{},
		&models.Lesson{},
		&models.Enrollment{},
		&models.LessonProgress{},
		&models.CourseStats{},
		&models.UserPoints{},
		&models.PointTransaction{},
		&models.Badge{},
		&models.Notification{},
		&models.ForumThread{},
		&models.ForumReply{},
		&models.ForumVote{},
		&models.Conversation{},
		&models.Message{},
		&models.Assignment{},
		&models.Submission{},
		&models.Payment{},
		&models.Certificate{},
	)
}

func SeedAdmin() {
	adminEmail := config.Config("ADMIN_EMAIL")
	adminPassword := config.Config("ADMIN_PASSWORD")

	var count int64
	err := DB.Model(&models.User{}).Where("email = ?", adminEmail).Count(&count).Error
	if err != nil {
		log.Fatalf("🔥 Failed to check for admin user: %v", err)
		return
	}

	if count > 0 {
		log.Println("Admin user already exists.")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("🔥 Failed to hash admin password: %v", err)
		return
	}

	adminUser := models.User{
		FullName: config.Config("ADMIN_FULL_NAME"),
		Email:    adminEmail,
		Password: string(hashedPassword),
		Role:     models.RoleAdmin,
	}

	if err := DB.Create(&adminUser).Error; err != nil {
		log.Fatalf("🔥 Failed to seed admin user: %v", err)
		return
	}

	log.Println("✅ Admin user seeded successfully")
}

// SeedBadges inserts the badge catalog. The Criteria values are the keys the
// gamification rule registry evaluates against.
func SeedBadges() {
	if err := SeedBadgesWith(DB); err != nil {
		log.Fatalf("🔥 Failed to seed badges: %v", err)
	}
}

func SeedBadgesWith(db *gorm.DB) error {
	catalog := []models.Badge{
		{Name: "First Steps", Description: "Complete your first lesson", Criteria: "first_lesson", PointsReward: 10},
		{Name: "Dedicated Learner", Description: "Complete 10 lessons", Criteria: "ten_lessons", PointsReward: 50},
		{Name: "Week Warrior", Description: "Keep a 7-day learning streak", Criteria: "seven_day_streak", PointsReward: 70},
		{Name: "Course Conqueror", Description: "Finish an entire course", Criteria: "course_completed", PointsReward: 100},
		{Name: "Conversation Starter", Description: "Open your first forum thread", Criteria: "first_thread", PointsReward: 15},
	}

	for _, badge := range catalog {
		var count int64
		if err := db.Model(&models.Badge{}).Where("name = ?", badge.Name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := db.Create(&badge).Error; err != nil {
			return err
		}
	}
	return nil
}
