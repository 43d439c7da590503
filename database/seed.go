package database

import (
	"fmt"
	"log"
	"os"

	"github.com/sreevasthav1710/study10/model"
	"github.com/sreevasthav1710/study10/utils/auth"
	"gorm.io/gorm"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// SeedAll runs all seed functions
func (s *Seeder) SeedAll() error {
	log.Println("🌱 Starting database seeding...")

	if err := s.SeedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	if err := s.SeedSubjects(); err != nil {
		return fmt.Errorf("failed to seed subjects: %w", err)
	}

	log.Println("✅ Database seeding completed successfully!")
	return nil
}

// SeedAdminUser creates the admin account from ADMIN_EMAIL and
// ADMIN_PASSWORD. Registration through the API only ever creates
// students, so this is the one path that provisions an admin.
func (s *Seeder) SeedAdminUser() error {
	var count int64
	if err := s.db.Model(&model.User{}).Where("role = ?", "admin").Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("⏭️  Admin user already exists, skipping...")
		return nil
	}

	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminEmail == "" || adminPassword == "" {
		log.Println("⚠️  ADMIN_EMAIL and ADMIN_PASSWORD environment variables not set, skipping admin user creation")
		return nil
	}

	passwordHash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &model.User{
		Email:        adminEmail,
		PasswordHash: passwordHash,
		Username:     "admin",
		Role:         "admin",
		TokenVersion: 0,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Created admin user: %s\n", admin.Email)
	return nil
}

// SeedSubjects creates a couple of starter subjects so a fresh install
// has a tree to click around in
func (s *Seeder) SeedSubjects() error {
	var count int64
	if err := s.db.Model(&model.Subject{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("⏭️  Subjects already exist, skipping...")
		return nil
	}

	var admin model.User
	if err := s.db.Where("role = ?", "admin").First(&admin).Error; err != nil {
		log.Println("⚠️  No admin user found, skipping subject seeding")
		return nil
	}

	subjects := []model.Subject{
		{Name: "Mathematics", Color: "#3b82f6", Icon: "📐", SortOrder: 0, CreatedBy: admin.ID},
		{Name: "Physics", Color: "#8b5cf6", Icon: "🔭", SortOrder: 1, CreatedBy: admin.ID},
	}

	for i := range subjects {
		if err := s.db.Create(&subjects[i]).Error; err != nil {
			return err
		}
	}

	log.Printf("✅ Created %d starter subjects\n", len(subjects))
	return nil
}

// RunSeeds is the entrypoint used by cmd/seed
func RunSeeds(db *gorm.DB) error {
	return NewSeeder(db).SeedAll()
}
