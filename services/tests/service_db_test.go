package tests

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
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
		&model.Test{},
		&model.TestQuestion{},
		&model.TestSubmission{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

// seedTestWithQuestions creates a student, a chapter node and a two-question
// test, registering cleanup for everything it creates.
func seedTestWithQuestions(t *testing.T, db *gorm.DB) (*model.User, *model.Test, []model.TestQuestion) {
	t.Helper()

	student := model.User{
		Email:        fmt.Sprintf("attempt-%d@example.com", time.Now().UnixNano()),
		PasswordHash: "x",
		Username:     "attempt_student",
		Role:         "student",
	}
	if err := db.Create(&student).Error; err != nil {
		t.Fatalf("failed to create student: %v", err)
	}

	subject := model.Subject{Name: "Chemistry", CreatedBy: student.ID}
	if err := db.Create(&subject).Error; err != nil {
		t.Fatalf("failed to create subject: %v", err)
	}

	node := model.StudyNode{Name: "Stoichiometry", SubjectID: subject.ID, NodeLevel: model.NodeLevelChapter}
	if err := db.Create(&node).Error; err != nil {
		t.Fatalf("failed to create node: %v", err)
	}

	test := model.Test{ChapterNodeID: node.ID, Title: "Mole ratios", TimerMinutes: 10, CreatedBy: student.ID}
	if err := db.Create(&test).Error; err != nil {
		t.Fatalf("failed to create test: %v", err)
	}

	questions := []model.TestQuestion{
		{TestID: test.ID, QuestionText: "q1", OptionA: "1", OptionB: "2", OptionC: "3", OptionD: "4", CorrectOption: "a", SortOrder: 0},
		{TestID: test.ID, QuestionText: "q2", OptionA: "1", OptionB: "2", OptionC: "3", OptionD: "4", CorrectOption: "c", SortOrder: 1},
	}
	for i := range questions {
		if err := db.Create(&questions[i]).Error; err != nil {
			t.Fatalf("failed to create question: %v", err)
		}
	}

	t.Cleanup(func() {
		db.Unscoped().Where("test_id = ?", test.ID).Delete(&model.TestSubmission{})
		db.Unscoped().Where("test_id = ?", test.ID).Delete(&model.TestQuestion{})
		db.Unscoped().Delete(&model.Test{}, test.ID)
		db.Unscoped().Delete(&model.StudyNode{}, node.ID)
		db.Unscoped().Delete(&model.Subject{}, subject.ID)
		db.Unscoped().Delete(&model.User{}, student.ID)
	})

	return &student, &test, questions
}

func TestSubmitOnceFirstAnswersWin(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	svc := NewTestService(db)

	student, test, questions := seedTestWithQuestions(t, db)

	started, err := svc.StartAttempt(ctx, test.ID, student.ID)
	if err != nil {
		t.Fatalf("failed to start attempt: %v", err)
	}
	if started.State != StateInProgress {
		t.Fatalf("got state %q, want %q", started.State, StateInProgress)
	}

	// Starting again returns the same row, not a fresh countdown.
	restarted, err := svc.StartAttempt(ctx, test.ID, student.ID)
	if err != nil {
		t.Fatalf("failed to restart attempt: %v", err)
	}
	if restarted.Submission.ID != started.Submission.ID {
		t.Fatalf("restart created a new submission: %d vs %d", restarted.Submission.ID, started.Submission.ID)
	}

	if _, err := svc.SaveAnswer(ctx, test.ID, student.ID, questions[0].ID, "a"); err != nil {
		t.Fatalf("failed to save answer: %v", err)
	}

	first, err := svc.Submit(ctx, test.ID, student.ID)
	if err != nil {
		t.Fatalf("failed to submit: %v", err)
	}
	if first.State != StateSubmitted {
		t.Fatalf("got state %q, want %q", first.State, StateSubmitted)
	}
	if first.Submission.Score != 1 || first.Submission.Total != 2 {
		t.Fatalf("got score %d/%d, want 1/2", first.Submission.Score, first.Submission.Total)
	}

	// Answering after submission is refused.
	if _, err := svc.SaveAnswer(ctx, test.ID, student.ID, questions[1].ID, "c"); !errors.Is(err, ErrAlreadySubmitted) {
		t.Fatalf("got %v, want ErrAlreadySubmitted", err)
	}

	// A second submit is a no-op returning the first result.
	second, err := svc.Submit(ctx, test.ID, student.ID)
	if err != nil {
		t.Fatalf("failed to re-submit: %v", err)
	}
	if second.Submission.Score != 1 {
		t.Fatalf("re-submit changed the score to %d", second.Submission.Score)
	}
	if !second.Submission.SubmittedAt.Equal(*first.Submission.SubmittedAt) {
		t.Fatalf("re-submit moved submitted_at: %v vs %v", second.Submission.SubmittedAt, first.Submission.SubmittedAt)
	}

	// A stale writer that raced past the submitted check cannot regrade:
	// the guard in finalize only matches open rows.
	loaded, err := svc.loadTest(ctx, test.ID)
	if err != nil {
		t.Fatalf("failed to load test: %v", err)
	}
	lateAnswers, _ := json.Marshal(AnswerMap{
		strconv.FormatUint(uint64(questions[0].ID), 10): "a",
		strconv.FormatUint(uint64(questions[1].ID), 10): "c",
	})
	stale := &model.TestSubmission{ID: first.Submission.ID, Answers: lateAnswers}
	if err := svc.finalize(ctx, loaded, stale); err != nil {
		t.Fatalf("stale finalize errored: %v", err)
	}

	var stored model.TestSubmission
	if err := db.First(&stored, first.Submission.ID).Error; err != nil {
		t.Fatalf("failed to fetch stored submission: %v", err)
	}
	if stored.Score != 1 {
		t.Fatalf("stale finalize regraded the attempt to %d", stored.Score)
	}
	answers := AnswerMap{}
	if err := json.Unmarshal(stored.Answers, &answers); err != nil {
		t.Fatalf("failed to decode stored answers: %v", err)
	}
	if len(answers) != 1 {
		t.Fatalf("first submission's answers were overwritten: %v", answers)
	}
	if !stored.SubmittedAt.Equal(*first.Submission.SubmittedAt) {
		t.Fatalf("stale finalize moved submitted_at: %v vs %v", stored.SubmittedAt, first.Submission.SubmittedAt)
	}

	// Exactly one persisted record for the (test, student) pair.
	var count int64
	if err := db.Model(&model.TestSubmission{}).
		Where("test_id = ? AND student_id = ?", test.ID, student.ID).
		Count(&count).Error; err != nil {
		t.Fatalf("failed to count submissions: %v", err)
	}
	if count != 1 {
		t.Fatalf("got %d submission rows, want 1", count)
	}
}
