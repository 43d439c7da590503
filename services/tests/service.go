package tests

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/sreevasthav1710/study10/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrTestNotFound      = errors.New("test not found")
	ErrAttemptNotStarted = errors.New("attempt has not been started")
	ErrAlreadySubmitted  = errors.New("attempt has already been submitted")
	ErrQuestionNotInTest = errors.New("question does not belong to this test")
	ErrInvalidOption     = errors.New("option must be one of a, b, c, d")
)

// AttemptState is the student's position in the attempt lifecycle.
// Submitted is terminal; a reload never restarts the countdown.
type AttemptState string

const (
	StateNotStarted AttemptState = "not_started"
	StateInProgress AttemptState = "in_progress"
	StateSubmitted  AttemptState = "submitted"
)

// Attempt is the hydrated view of a student's relationship to one test.
type Attempt struct {
	State      AttemptState          `json:"state"`
	Submission *model.TestSubmission `json:"submission,omitempty"`
	ExpiresAt  *time.Time            `json:"expires_at,omitempty"`
}

// TestService owns the attempt state machine: start, answer, submit and the
// expiry sweep. Admin CRUD on tests and questions lives in the handlers.
type TestService struct {
	db *gorm.DB
}

// NewTestService creates a new test service
func NewTestService(db *gorm.DB) *TestService {
	return &TestService{db: db}
}

func (s *TestService) loadTest(ctx context.Context, testID uint) (*model.Test, error) {
	var test model.Test
	err := s.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		}).
		First(&test, testID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to fetch test: %w", err)
	}
	return &test, nil
}

func (s *TestService) findSubmission(ctx context.Context, testID, studentID uint) (*model.TestSubmission, error) {
	var sub model.TestSubmission
	err := s.db.WithContext(ctx).
		Where("test_id = ? AND student_id = ?", testID, studentID).
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch submission: %w", err)
	}
	return &sub, nil
}

func attemptFor(test *model.Test, sub *model.TestSubmission) *Attempt {
	if sub == nil {
		return &Attempt{State: StateNotStarted}
	}
	if sub.Submitted() {
		return &Attempt{State: StateSubmitted, Submission: sub}
	}
	expires := sub.ExpiresAt(test.TimerMinutes)
	return &Attempt{State: StateInProgress, Submission: sub, ExpiresAt: &expires}
}

// GetAttempt returns the student's current state for a test without changing
// anything. Used when the test view loads or reloads.
func (s *TestService) GetAttempt(ctx context.Context, testID, studentID uint) (*Attempt, error) {
	test, err := s.loadTest(ctx, testID)
	if err != nil {
		return nil, err
	}
	sub, err := s.findSubmission(ctx, testID, studentID)
	if err != nil {
		return nil, err
	}
	return attemptFor(test, sub), nil
}

// StartAttempt opens (or re-opens) the student's attempt. Starting is
// idempotent: an in-progress attempt is returned with its original countdown,
// and a submitted attempt comes back hydrated and read-only. The test's
// deadline column is deliberately not checked here.
func (s *TestService) StartAttempt(ctx context.Context, testID, studentID uint) (*Attempt, error) {
	test, err := s.loadTest(ctx, testID)
	if err != nil {
		return nil, err
	}

	sub, err := s.findSubmission(ctx, testID, studentID)
	if err != nil {
		return nil, err
	}
	if sub != nil {
		return attemptFor(test, sub), nil
	}

	fresh := model.TestSubmission{
		TestID:    testID,
		StudentID: studentID,
		Answers:   []byte("{}"),
		StartedAt: time.Now(),
	}
	// Two racing starts collapse onto the one row for the pair.
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "test_id"}, {Name: "student_id"}},
		DoNothing: true,
	}).Create(&fresh).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}

	sub, err = s.findSubmission(ctx, testID, studentID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, fmt.Errorf("submission vanished after create")
	}
	return attemptFor(test, sub), nil
}

// SaveAnswer records one chosen option for a question, overwriting any prior
// choice. Only an in-progress attempt accepts answers.
func (s *TestService) SaveAnswer(ctx context.Context, testID, studentID, questionID uint, option string) (*Attempt, error) {
	if !ValidOption(option) {
		return nil, ErrInvalidOption
	}

	test, err := s.loadTest(ctx, testID)
	if err != nil {
		return nil, err
	}

	valid := false
	for _, q := range test.Questions {
		if q.ID == questionID {
			valid = true
			break
		}
	}
	if !valid {
		return nil, ErrQuestionNotInTest
	}

	sub, err := s.findSubmission(ctx, testID, studentID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, ErrAttemptNotStarted
	}
	if sub.Submitted() {
		return nil, ErrAlreadySubmitted
	}

	answers := AnswerMap{}
	if len(sub.Answers) > 0 {
		if err := json.Unmarshal(sub.Answers, &answers); err != nil {
			return nil, fmt.Errorf("failed to decode answers: %w", err)
		}
	}
	answers[strconv.FormatUint(uint64(questionID), 10)] = option

	raw, err := json.Marshal(answers)
	if err != nil {
		return nil, fmt.Errorf("failed to encode answers: %w", err)
	}

	err = s.db.WithContext(ctx).Model(&model.TestSubmission{}).
		Where("id = ? AND submitted_at IS NULL", sub.ID).
		Update("answers", raw).Error
	if err != nil {
		return nil, fmt.Errorf("failed to save answer: %w", err)
	}

	sub.Answers = raw
	return attemptFor(test, sub), nil
}

// Submit finalizes the attempt: grades whatever answers were saved and sets
// submitted_at. Submitting twice is a no-op that returns the first result;
// the first submission's answers always win. Submitting after the countdown
// ran out is accepted, it is exactly how the client auto-submits on expiry.
func (s *TestService) Submit(ctx context.Context, testID, studentID uint) (*Attempt, error) {
	test, err := s.loadTest(ctx, testID)
	if err != nil {
		return nil, err
	}

	sub, err := s.findSubmission(ctx, testID, studentID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, ErrAttemptNotStarted
	}
	if sub.Submitted() {
		return attemptFor(test, sub), nil
	}

	if err := s.finalize(ctx, test, sub); err != nil {
		return nil, err
	}

	// Re-fetch: a concurrent submit may have won the guard.
	sub, err = s.findSubmission(ctx, testID, studentID)
	if err != nil {
		return nil, err
	}
	return attemptFor(test, sub), nil
}

// finalize grades sub and stamps submitted_at, guarded so only the first
// writer wins for the (test, student) pair.
func (s *TestService) finalize(ctx context.Context, test *model.Test, sub *model.TestSubmission) error {
	answers := AnswerMap{}
	if len(sub.Answers) > 0 {
		if err := json.Unmarshal(sub.Answers, &answers); err != nil {
			return fmt.Errorf("failed to decode answers: %w", err)
		}
	}

	score, total := Score(test.Questions, answers)
	now := time.Now()

	err := s.db.WithContext(ctx).Model(&model.TestSubmission{}).
		Where("id = ? AND submitted_at IS NULL", sub.ID).
		Updates(map[string]interface{}{
			"score":        score,
			"total":        total,
			"submitted_at": now,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to finalize submission: %w", err)
	}
	return nil
}

// FinalizeExpired sweeps in-progress attempts whose countdown has run out and
// grades them with whatever answers were saved. Returns the number finalized.
// Called from the cron manager.
func (s *TestService) FinalizeExpired(ctx context.Context) (int, error) {
	var open []model.TestSubmission
	if err := s.db.WithContext(ctx).
		Where("submitted_at IS NULL").
		Find(&open).Error; err != nil {
		return 0, fmt.Errorf("failed to fetch open submissions: %w", err)
	}
	if len(open) == 0 {
		return 0, nil
	}

	testCache := make(map[uint]*model.Test)
	finalized := 0
	now := time.Now()

	for i := range open {
		sub := &open[i]
		test, ok := testCache[sub.TestID]
		if !ok {
			var err error
			test, err = s.loadTest(ctx, sub.TestID)
			if err != nil {
				log.Printf("Skipping submission %d: %v", sub.ID, err)
				continue
			}
			testCache[sub.TestID] = test
		}

		if now.Before(sub.ExpiresAt(test.TimerMinutes)) {
			continue
		}
		if err := s.finalize(ctx, test, sub); err != nil {
			log.Printf("Failed to finalize expired submission %d: %v", sub.ID, err)
			continue
		}
		finalized++
	}

	return finalized, nil
}
