package tests

import (
	"testing"
	"time"

	"github.com/sreevasthav1710/study10/model"
)

func TestAttemptForNotStarted(t *testing.T) {
	test := &model.Test{TimerMinutes: 10}

	attempt := attemptFor(test, nil)
	if attempt.State != StateNotStarted {
		t.Fatalf("got state %q, want %q", attempt.State, StateNotStarted)
	}
	if attempt.Submission != nil || attempt.ExpiresAt != nil {
		t.Fatal("not-started attempt must carry no submission or expiry")
	}
}

func TestAttemptForInProgress(t *testing.T) {
	test := &model.Test{TimerMinutes: 10}
	started := time.Now().Add(-3 * time.Minute)
	sub := &model.TestSubmission{StartedAt: started}

	attempt := attemptFor(test, sub)
	if attempt.State != StateInProgress {
		t.Fatalf("got state %q, want %q", attempt.State, StateInProgress)
	}
	want := started.Add(10 * time.Minute)
	if attempt.ExpiresAt == nil || !attempt.ExpiresAt.Equal(want) {
		t.Fatalf("expiry = %v, want %v", attempt.ExpiresAt, want)
	}
}

func TestAttemptForSubmittedIsTerminal(t *testing.T) {
	test := &model.Test{TimerMinutes: 10}
	submitted := time.Now().Add(-time.Hour)
	sub := &model.TestSubmission{
		StartedAt:   submitted.Add(-10 * time.Minute),
		SubmittedAt: &submitted,
		Score:       3,
		Total:       5,
	}

	// A reload of a graded attempt hydrates the result, never a countdown.
	attempt := attemptFor(test, sub)
	if attempt.State != StateSubmitted {
		t.Fatalf("got state %q, want %q", attempt.State, StateSubmitted)
	}
	if attempt.ExpiresAt != nil {
		t.Fatal("submitted attempt must not expose an expiry")
	}
	if attempt.Submission.Score != 3 || attempt.Submission.Total != 5 {
		t.Fatalf("hydrated result lost the score: %+v", attempt.Submission)
	}
}

func TestSubmissionExpiresAt(t *testing.T) {
	started := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	sub := &model.TestSubmission{StartedAt: started}

	got := sub.ExpiresAt(25)
	want := started.Add(25 * time.Minute)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if sub.Submitted() {
		t.Fatal("open attempt reported as submitted")
	}
}
