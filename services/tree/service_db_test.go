package tree

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/sreevasthav1710/study10/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB connects to the database named by the DB_* environment
// variables, the same ones the server uses. Tests that need it are
// skipped when the variables are unset or the database is unreachable.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	for _, v := range []string{"DB_HOST", "DB_USER_NAME", "DB_PASSWORD", "DB_NAME", "DB_PORT"} {
		if os.Getenv(v) == "" {
			t.Skipf("%s not set, skipping database-backed test", v)
		}
	}

	sslMode := os.Getenv("DB_SSL_MODE")
	if sslMode == "" {
		sslMode = "disable"
	}

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER_NAME"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		sslMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Skipf("database unavailable: %v", err)
	}

	err = db.AutoMigrate(
		&model.User{},
		&model.Subject{},
		&model.StudyNode{},
		&model.NodeProgress{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func TestSetProgressTogglePairIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	svc := NewTreeService(db, nil)

	student := model.User{
		Email:        fmt.Sprintf("toggle-%d@example.com", time.Now().UnixNano()),
		PasswordHash: "x",
		Username:     "toggle_student",
		Role:         "student",
	}
	if err := db.Create(&student).Error; err != nil {
		t.Fatalf("failed to create student: %v", err)
	}
	subject := model.Subject{Name: "History", CreatedBy: student.ID}
	if err := db.Create(&subject).Error; err != nil {
		t.Fatalf("failed to create subject: %v", err)
	}
	node := model.StudyNode{Name: "The Mughal Empire", SubjectID: subject.ID, NodeLevel: model.NodeLevelChapter}
	if err := db.Create(&node).Error; err != nil {
		t.Fatalf("failed to create node: %v", err)
	}
	t.Cleanup(func() {
		db.Unscoped().Where("node_id = ?", node.ID).Delete(&model.NodeProgress{})
		db.Unscoped().Delete(&model.StudyNode{}, node.ID)
		db.Unscoped().Delete(&model.Subject{}, subject.ID)
		db.Unscoped().Delete(&model.User{}, student.ID)
	})

	first, err := svc.SetProgress(ctx, node.ID, student.ID, true)
	if err != nil {
		t.Fatalf("failed to mark complete: %v", err)
	}
	if first.ID == 0 {
		t.Fatal("upsert returned a progress mark without its primary key")
	}
	if !first.Completed || first.CompletedAt == nil {
		t.Fatalf("mark not completed: %+v", first)
	}

	second, err := svc.SetProgress(ctx, node.ID, student.ID, false)
	if err != nil {
		t.Fatalf("failed to unmark: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("conflict branch returned id %d, want the existing row %d", second.ID, first.ID)
	}
	if second.Completed || second.CompletedAt != nil {
		t.Fatalf("unmark left completion set: %+v", second)
	}

	// The pair lands back on the original state with a single stored row.
	var stored model.NodeProgress
	if err := db.First(&stored, first.ID).Error; err != nil {
		t.Fatalf("failed to fetch stored mark: %v", err)
	}
	if stored.Completed || stored.CompletedAt != nil {
		t.Fatalf("stored mark still completed: %+v", stored)
	}
	var count int64
	if err := db.Model(&model.NodeProgress{}).
		Where("node_id = ? AND user_id = ?", node.ID, student.ID).
		Count(&count).Error; err != nil {
		t.Fatalf("failed to count progress rows: %v", err)
	}
	if count != 1 {
		t.Fatalf("got %d progress rows, want 1", count)
	}

	// Toggling back on reuses the same row too.
	third, err := svc.SetProgress(ctx, node.ID, student.ID, true)
	if err != nil {
		t.Fatalf("failed to re-mark: %v", err)
	}
	if third.ID != first.ID || !third.Completed {
		t.Fatalf("re-mark did not restore the existing row: %+v", third)
	}
}
