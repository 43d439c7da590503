package doubts

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
		&model.Doubt{},
		&model.DoubtReply{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func TestDoubtStatusTransitions(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	svc := NewDoubtService(db, NewHub())

	student := model.User{
		Email:        fmt.Sprintf("doubt-%d@example.com", time.Now().UnixNano()),
		PasswordHash: "x",
		Username:     "doubt_student",
		Role:         "student",
	}
	if err := db.Create(&student).Error; err != nil {
		t.Fatalf("failed to create student: %v", err)
	}
	tutor := model.User{
		Email:        fmt.Sprintf("tutor-%d@example.com", time.Now().UnixNano()),
		PasswordHash: "x",
		Username:     "doubt_tutor",
		Role:         "admin",
	}
	if err := db.Create(&tutor).Error; err != nil {
		t.Fatalf("failed to create tutor: %v", err)
	}
	subject := model.Subject{Name: "Biology", CreatedBy: tutor.ID}
	if err := db.Create(&subject).Error; err != nil {
		t.Fatalf("failed to create subject: %v", err)
	}
	node := model.StudyNode{Name: "Photosynthesis", SubjectID: subject.ID, NodeLevel: model.NodeLevelChapter}
	if err := db.Create(&node).Error; err != nil {
		t.Fatalf("failed to create node: %v", err)
	}
	t.Cleanup(func() {
		db.Unscoped().Where("user_id IN ?", []uint{student.ID, tutor.ID}).Delete(&model.DoubtReply{})
		db.Unscoped().Where("student_id = ?", student.ID).Delete(&model.Doubt{})
		db.Unscoped().Delete(&model.StudyNode{}, node.ID)
		db.Unscoped().Delete(&model.Subject{}, subject.ID)
		db.Unscoped().Delete(&model.User{}, student.ID)
		db.Unscoped().Delete(&model.User{}, tutor.ID)
	})

	doubt, err := svc.Create(ctx, node.ID, student.ID, "Why do leaves look green?")
	if err != nil {
		t.Fatalf("failed to create doubt: %v", err)
	}
	if doubt.Status != model.DoubtStatusPending {
		t.Fatalf("new doubt has status %q, want %q", doubt.Status, model.DoubtStatusPending)
	}

	if _, err := svc.Reply(ctx, doubt.ID, tutor.ID, "Chlorophyll reflects green light."); err != nil {
		t.Fatalf("failed to reply: %v", err)
	}
	got, err := svc.Get(ctx, doubt.ID)
	if err != nil {
		t.Fatalf("failed to fetch doubt: %v", err)
	}
	if got.Status != model.DoubtStatusReplied {
		t.Fatalf("after reply status is %q, want %q", got.Status, model.DoubtStatusReplied)
	}
	if len(got.Replies) != 1 {
		t.Fatalf("got %d replies, want 1", len(got.Replies))
	}

	resolved, err := svc.Resolve(ctx, doubt.ID)
	if err != nil {
		t.Fatalf("failed to resolve: %v", err)
	}
	if resolved.Status != model.DoubtStatusResolved {
		t.Fatalf("after resolve status is %q, want %q", resolved.Status, model.DoubtStatusResolved)
	}
	got, err = svc.Get(ctx, doubt.ID)
	if err != nil {
		t.Fatalf("failed to re-fetch doubt: %v", err)
	}
	if got.Status != model.DoubtStatusResolved {
		t.Fatalf("resolution did not persist, status is %q", got.Status)
	}

	// A later reply reopens the thread to replied; resolution only ever
	// comes from the explicit admin action.
	if _, err := svc.Reply(ctx, doubt.ID, student.ID, "What about red leaves?"); err != nil {
		t.Fatalf("failed to reply after resolve: %v", err)
	}
	got, err = svc.Get(ctx, doubt.ID)
	if err != nil {
		t.Fatalf("failed to fetch reopened doubt: %v", err)
	}
	if got.Status != model.DoubtStatusReplied {
		t.Fatalf("reply after resolve left status %q, want %q", got.Status, model.DoubtStatusReplied)
	}
	if len(got.Replies) != 2 {
		t.Fatalf("got %d replies, want 2", len(got.Replies))
	}
}
